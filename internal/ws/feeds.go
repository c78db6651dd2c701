package ws

import (
	"context"
	"strings"

	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/inventory"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/order"
	"restaurant-order-service/internal/voucher"
)

// Feeds decides who may follow a topic and renders the state a new subscriber starts from.
type Feeds struct {
	Orders    *order.Manager
	Inventory *inventory.Service
	Vouchers  *voucher.Service
}

func (f *Feeds) Authorize(ctx context.Context, u *model.User, topic string) bool {
	if u == nil {
		return false
	}
	if topic == events.TopicVouchers {
		return true
	}
	if u.Role == model.RoleAdmin {
		return knownTopic(topic)
	}

	switch topic {
	case events.TopicKitchen:
		return u.Role == model.RoleChef
	case events.TopicStaff:
		return u.Role == model.RoleStaff
	case events.TopicInventory:
		return u.Role == model.RoleChef || u.Role == model.RoleStaff
	case events.TopicRiderJobs:
		return u.Role == model.RoleRider
	}

	if id, ok := strings.CutPrefix(topic, "rider:"); ok {
		return u.Role == model.RoleRider && id == u.ID
	}
	if id, ok := strings.CutPrefix(topic, "customer:"); ok {
		return id == u.ID
	}
	if id, ok := strings.CutPrefix(topic, "order:"); ok {
		if u.Role != model.RoleCustomer {
			return true
		}
		o, err := f.Orders.Get(ctx, id)
		return err == nil && o.CustomerID == u.ID
	}
	return false
}

func knownTopic(topic string) bool {
	switch topic {
	case events.TopicKitchen, events.TopicStaff, events.TopicInventory, events.TopicRiderJobs, events.TopicVouchers:
		return true
	}
	for _, prefix := range []string{"rider:", "customer:", "order:"} {
		if id, ok := strings.CutPrefix(topic, prefix); ok && id != "" {
			return true
		}
	}
	return false
}

// Snapshot returns the current state of topic.
func (f *Feeds) Snapshot(ctx context.Context, topic string) (any, error) {
	switch topic {
	case events.TopicKitchen:
		return f.Orders.KitchenQueue(ctx)
	case events.TopicStaff:
		serve, err := f.Orders.ServeQueue(ctx)
		if err != nil {
			return nil, err
		}
		payment, err := f.Orders.PaymentQueue(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"serve": serve, "payment": payment}, nil
	case events.TopicRiderJobs:
		return f.Orders.AvailableJobs(ctx)
	case events.TopicInventory:
		if f.Inventory == nil {
			return nil, nil
		}
		return f.Inventory.LowStock(ctx)
	case events.TopicVouchers:
		if f.Vouchers == nil {
			return nil, nil
		}
		return f.Vouchers.List(ctx)
	}

	if id, ok := strings.CutPrefix(topic, "rider:"); ok {
		return f.Orders.CurrentDelivery(ctx, id)
	}
	if id, ok := strings.CutPrefix(topic, "customer:"); ok {
		return f.Orders.CustomerOrders(ctx, id)
	}
	if id, ok := strings.CutPrefix(topic, "order:"); ok {
		return f.Orders.Get(ctx, id)
	}
	return nil, nil
}
