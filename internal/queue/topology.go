package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const deadRoutingKey = "dead"

// Topology names the broker objects the realtime relay uses.
type Topology struct {
	Exchange   string
	DeadLetter string
	DLQ        string
	Queue      string
}

func topologyFor(exchange string) Topology {
	return Topology{
		Exchange:   exchange,
		DeadLetter: exchange + ".dlx",
		DLQ:        exchange + ".dlq",
	}
}

// EnsureRealtimeTopology declares the events exchange, its dead letter exchange and queue,
// and the relay queue bound to every routing key. queueName may be empty.
func EnsureRealtimeTopology(qc *Client, exchange, queueName string) (Topology, error) {
	t := topologyFor(exchange)

	if err := qc.EnsureExchange(t.Exchange, amqp.ExchangeTopic); err != nil {
		return t, err
	}
	if err := qc.EnsureExchange(t.DeadLetter, amqp.ExchangeDirect); err != nil {
		return t, err
	}
	if _, err := qc.EnsureQueue(t.DLQ, nil); err != nil {
		return t, err
	}
	if err := qc.BindQueue(t.DLQ, t.DeadLetter, deadRoutingKey); err != nil {
		return t, err
	}

	q, err := qc.EnsureQueue(queueName, amqp.Table{
		"x-dead-letter-exchange":    t.DeadLetter,
		"x-dead-letter-routing-key": deadRoutingKey,
	})
	if err != nil {
		return t, err
	}
	t.Queue = q.Name
	return t, qc.BindQueue(t.Queue, t.Exchange, "#")
}
