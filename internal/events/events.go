// Package events describes the change notifications the service emits and the topics
// realtime subscribers receive them on.
package events

import (
	"context"
	"time"

	"restaurant-order-service/internal/model"
)

type Type string

const (
	OrderCreated        Type = "order.created"
	OrderStatusUpdated  Type = "order.status.updated"
	OrderPaymentUpdated Type = "order.payment.updated"
	OrderRiderLocation  Type = "order.rider.location"
	InventoryLowStock   Type = "inventory.low_stock"
	VoucherUpdated      Type = "voucher.updated"
)

const (
	TopicKitchen   = "kitchen"
	TopicStaff     = "staff"
	TopicRiderJobs = "rider.jobs"
	TopicInventory = "inventory"
	TopicVouchers  = "vouchers"
)

func OrderTopic(id string) string    { return "order:" + id }
func CustomerTopic(id string) string { return "customer:" + id }
func RiderTopic(id string) string    { return "rider:" + id }

type Event struct {
	Type          Type           `json:"type"`
	OrderID       string         `json:"orderId,omitempty"`
	Status        string         `json:"status,omitempty"`
	PrevStatus    string         `json:"prevStatus,omitempty"`
	PaymentStatus string         `json:"paymentStatus,omitempty"`
	OrderType     string         `json:"orderType,omitempty"`
	CustomerID    string         `json:"customerId,omitempty"`
	RiderID       string         `json:"riderId,omitempty"`
	Order         *model.Order   `json:"order,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	At            time.Time      `json:"at"`
}

// ForOrder builds an order event carrying a snapshot of o.
func ForOrder(t Type, o *model.Order, prev model.OrderStatus) Event {
	e := Event{
		Type:          t,
		OrderID:       o.ID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		OrderType:     string(o.Type),
		CustomerID:    o.CustomerID,
		RiderID:       o.RiderID,
		Order:         o.Clone(),
		At:            o.UpdatedAt,
	}
	if prev != "" && prev != o.Status {
		e.PrevStatus = string(prev)
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return e
}

// RoutingKey is the broker routing key of the event.
func (e Event) RoutingKey() string {
	return string(e.Type)
}

// Topics lists the realtime topics interested in e.
func (e Event) Topics() []string {
	switch e.Type {
	case InventoryLowStock:
		return []string{TopicInventory, TopicKitchen}
	case VoucherUpdated:
		return []string{TopicVouchers}
	}

	var topics []string
	if e.OrderID != "" {
		topics = append(topics, OrderTopic(e.OrderID))
	}
	if e.CustomerID != "" {
		topics = append(topics, CustomerTopic(e.CustomerID))
	}
	topics = append(topics, TopicStaff)
	if e.Type == OrderRiderLocation {
		return topics
	}

	if touchesKitchen(e.Status) || touchesKitchen(e.PrevStatus) {
		topics = append(topics, TopicKitchen)
	}
	rider := model.OrderType(e.OrderType).UsesRider()
	if rider && (e.Status == string(model.StatusReady) || e.PrevStatus == string(model.StatusReady)) {
		topics = append(topics, TopicRiderJobs)
	}
	if e.RiderID != "" {
		topics = append(topics, RiderTopic(e.RiderID))
	}
	return topics
}

func touchesKitchen(status string) bool {
	switch model.OrderStatus(status) {
	case model.StatusPending, model.StatusPreparing:
		return true
	}
	return false
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// LowStock reports an ingredient that reached its reorder threshold.
func LowStock(ing model.Ingredient) Event {
	at := ing.UpdatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return Event{
		Type: InventoryLowStock,
		Data: map[string]any{
			"ingredientId": ing.ID,
			"name":         ing.Name,
			"stock":        ing.Stock,
			"minStock":     ing.MinStock,
			"unit":         ing.Unit,
		},
		At: at,
	}
}
