package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"restaurant-order-service/internal/events"

	"go.uber.org/zap"
)

// Publisher sends events to the topic exchange, keyed by event type. When the broker
// refuses a message the event is handed to fallback so local subscribers still see it.
type Publisher struct {
	client   *Client
	exchange string
	fallback events.Publisher
	logger   *zap.Logger
}

func NewPublisher(client *Client, exchange string, fallback events.Publisher, logger *zap.Logger) *Publisher {
	if fallback == nil {
		fallback = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, exchange: exchange, fallback: fallback, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, e events.Event) error {
	if err := p.client.PublishJSON(ctx, p.exchange, e.RoutingKey(), e); err != nil {
		p.logger.Warn("broker publish failed, delivering locally",
			zap.String("type", string(e.Type)),
			zap.String("orderId", e.OrderID),
			zap.Error(err),
		)
		return p.fallback.Publish(ctx, e)
	}
	return nil
}

// Relay moves events from this instance's queue into a local publisher, usually the
// websocket hub.
type Relay struct {
	client     *Client
	queue      string
	target     events.Publisher
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
}

func NewRelay(client *Client, queue string, target events.Publisher, logger *zap.Logger, maxRetries int, retryDelay time.Duration) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		client:     client,
		queue:      queue,
		target:     target,
		logger:     logger,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("realtime relay started", zap.String("queue", r.queue))
	return r.client.ConsumeWithRetry(ctx, r.queue, r.handle, r.maxRetries, r.retryDelay, r.logger)
}

func (r *Relay) handle(ctx context.Context, body []byte) error {
	e, err := DecodeEvent(body)
	if err != nil {
		// Malformed messages will never decode; drop them instead of retrying.
		r.logger.Warn("dropping malformed event", zap.Error(err))
		return nil
	}
	return r.target.Publish(ctx, e)
}

func DecodeEvent(body []byte) (events.Event, error) {
	var e events.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return e, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return e, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
