// Package ws pushes order, inventory and voucher events to websocket subscribers grouped
// by topic.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"restaurant-order-service/internal/events"

	"go.uber.org/zap"
)

const sendBuffer = 64

// Message is the frame written to subscribers.
type Message struct {
	Type  string        `json:"type"`
	Topic string        `json:"topic,omitempty"`
	Event *events.Event `json:"event,omitempty"`
	Data  any           `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}

type client struct {
	send   chan []byte
	topics []string
	once   sync.Once
	done   chan struct{}
}

func newClient(topics []string) *client {
	return &client{send: make(chan []byte, sendBuffer), topics: topics, done: make(chan struct{})}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans events out to the clients subscribed to any of the event's topics. A client
// that cannot keep up is disconnected instead of blocking publishers.
type Hub struct {
	logger *zap.Logger

	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{logger: logger, subs: make(map[string]map[*client]struct{})}
}

func (h *Hub) subscribe(c *client) (unsubscribe func()) {
	h.mu.Lock()
	for _, topic := range c.topics {
		if h.subs[topic] == nil {
			h.subs[topic] = make(map[*client]struct{})
		}
		h.subs[topic][c] = struct{}{}
	}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		for _, topic := range c.topics {
			clients := h.subs[topic]
			delete(clients, c)
			if len(clients) == 0 {
				delete(h.subs, topic)
			}
		}
		h.mu.Unlock()
		c.close()
	}
}

// Subscribers counts the clients listening on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

// Publish implements events.Publisher. It never fails; undeliverable frames are dropped.
func (h *Hub) Publish(_ context.Context, e events.Event) error {
	targets := make(map[*client]string)
	h.mu.RLock()
	for _, topic := range e.Topics() {
		for c := range h.subs[topic] {
			if _, seen := targets[c]; !seen {
				targets[c] = topic
			}
		}
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return nil
	}

	frames := make(map[string][]byte)
	for c, topic := range targets {
		frame, ok := frames[topic]
		if !ok {
			var err error
			frame, err = json.Marshal(Message{Type: "event", Topic: topic, Event: &e})
			if err != nil {
				h.logger.Warn("encode ws frame failed", zap.String("topic", topic), zap.Error(err))
				continue
			}
			frames[topic] = frame
		}
		select {
		case c.send <- frame:
		default:
			h.logger.Warn("ws subscriber too slow, disconnecting", zap.String("topic", topic))
			c.close()
		}
	}
	return nil
}
