package order

import (
	"context"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

func (m *Manager) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := m.store.Orders().Get(ctx, id)
	if err != nil {
		return nil, m.mapStoreErr(err, id)
	}
	return o, nil
}

// GetFor returns the order when actor may see it: customers only see their own.
func (m *Manager) GetFor(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	o, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleCustomer && o.CustomerID != actor.UserID {
		return nil, apperr.NotFound(apperr.ErrOrderNotFound, "Order not found")
	}
	return o, nil
}

func (m *Manager) List(ctx context.Context, f store.OrderFilter) ([]*model.Order, error) {
	return m.list(ctx, f)
}

// KitchenQueue lists pending and preparing orders, oldest first.
func (m *Manager) KitchenQueue(ctx context.Context) ([]*model.Order, error) {
	return m.list(ctx, store.OrderFilter{
		Statuses:    []model.OrderStatus{model.StatusPending, model.StatusPreparing},
		OldestFirst: true,
	})
}

// AvailableJobs lists ready delivery and takeaway orders no rider has claimed.
func (m *Manager) AvailableJobs(ctx context.Context) ([]*model.Order, error) {
	return m.list(ctx, store.OrderFilter{
		Statuses:    []model.OrderStatus{model.StatusReady},
		Types:       []model.OrderType{model.OrderTypeDelivery, model.OrderTypeTakeaway},
		Unassigned:  true,
		OldestFirst: true,
	})
}

// CurrentDelivery is the order the rider is delivering, nil when idle.
func (m *Manager) CurrentDelivery(ctx context.Context, riderID string) (*model.Order, error) {
	list, err := m.list(ctx, store.OrderFilter{
		Statuses: []model.OrderStatus{model.StatusDelivering},
		RiderID:  riderID,
		Limit:    1,
	})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (m *Manager) DeliveryHistory(ctx context.Context, riderID string, limit int) ([]*model.Order, error) {
	return m.list(ctx, store.OrderFilter{
		Statuses: []model.OrderStatus{model.StatusCompleted},
		RiderID:  riderID,
		Limit:    limit,
	})
}

// ServeQueue lists ready orders staff hands over at the counter.
func (m *Manager) ServeQueue(ctx context.Context) ([]*model.Order, error) {
	return m.list(ctx, store.OrderFilter{
		Statuses:    []model.OrderStatus{model.StatusReady},
		Unassigned:  true,
		OldestFirst: true,
	})
}

// PaymentQueue lists orders waiting on staff for money: served or delivered orders that
// are not yet completed, and any QR or counter payment still unconfirmed.
func (m *Manager) PaymentQueue(ctx context.Context) ([]*model.Order, error) {
	all, err := m.list(ctx, store.OrderFilter{OldestFirst: true})
	if err != nil {
		return nil, err
	}
	out := make([]*model.Order, 0)
	for _, o := range all {
		if o.Status == model.StatusCancelled {
			continue
		}
		awaiting := !o.IsPaid() && (o.PaymentStatus == model.PaymentStatusAwaiting || o.PaymentStatus == model.PaymentStatusAwaitingStaff)
		handedOver := o.Status == model.StatusServed || o.Status == model.StatusDelivered
		if awaiting || handedOver {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Manager) CustomerOrders(ctx context.Context, customerID string) ([]*model.Order, error) {
	return m.list(ctx, store.OrderFilter{CustomerID: customerID})
}

func (m *Manager) list(ctx context.Context, f store.OrderFilter) ([]*model.Order, error) {
	list, err := m.store.Orders().List(ctx, f)
	if err != nil {
		return nil, m.mapStoreErr(err, "")
	}
	if list == nil {
		list = []*model.Order{}
	}
	return list, nil
}
