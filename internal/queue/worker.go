package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const retryHeader = "x-retry-count"

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry hands every delivery of queue to handler. A failed delivery is
// republished with an incremented retry header after retryDelay; once maxRetries is
// reached it is rejected and the broker dead letters it. It returns when ctx is done or
// the channel closes.
func (c *Client) ConsumeWithRetry(ctx context.Context, queue string, handler HandlerFunc, maxRetries int, retryDelay time.Duration, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		var msg amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok = <-msgs:
		}
		if !ok {
			return errors.New("consumer closed")
		}

		err := handler(ctx, msg.Body)
		if err == nil {
			_ = msg.Ack(false)
			continue
		}

		retryCount := getRetryCount(msg.Headers)
		if retryCount >= maxRetries {
			logger.Warn("message dead lettered", zap.String("queue", queue), zap.Int("retries", retryCount), zap.Error(err))
			_ = msg.Nack(false, false)
			continue
		}

		headers := amqp.Table{}
		for k, v := range msg.Headers {
			headers[k] = v
		}
		headers[retryHeader] = int32(retryCount + 1)

		select {
		case <-ctx.Done():
			_ = msg.Nack(false, true)
			return ctx.Err()
		case <-time.After(retryDelay):
		}
		if pubErr := c.publish(ctx, "", queue, amqp.Publishing{
			ContentType: msg.ContentType,
			Body:        msg.Body,
			Headers:     headers,
			Timestamp:   time.Now(),
		}); pubErr != nil {
			logger.Warn("retry publish failed", zap.String("queue", queue), zap.Error(pubErr))
			_ = msg.Nack(false, true)
			continue
		}
		_ = msg.Ack(false)
	}
}

func getRetryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch t := headers[retryHeader].(type) {
	case int32:
		return int(t)
	case int64:
		return int(t)
	case int:
		return t
	}
	return 0
}
