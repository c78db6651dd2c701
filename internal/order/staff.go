package order

import (
	"context"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

// Serve hands a ready order over at the counter: dine-in orders become served, the
// other types delivered.
func (m *Manager) Serve(ctx context.Context, staff Actor, id string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if err := requireStatus(o, model.StatusReady, "serve"); err != nil {
			return nil, err
		}
		if o.RiderID != "" {
			return nil, apperr.InvalidState("Order is assigned to a rider")
		}
		o.Status = o.Type.ServedStatus()
		o.ServedBy = staff.Username
		o.ServedAt = stamp(m.now())
		return nil, nil
	})
}

// RecordPayment collects payment for a served or delivered order and completes it. An
// order already paid by QR or at the counter is completed with its payment untouched.
func (m *Manager) RecordPayment(ctx context.Context, staff Actor, id string, method model.PaymentMethod) (*model.Order, error) {
	if !method.IsCollectedMethod() {
		return nil, apperr.BadRequest(apperr.ErrInvalidPaymentMethod, "Payment method must be cash, card or transfer")
	}
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if o.Status != model.StatusServed && o.Status != model.StatusDelivered {
			return nil, apperr.InvalidState("Cannot take payment for an order that is %s", o.Status)
		}
		now := m.now()
		o.Status = model.StatusCompleted
		o.CompletedAt = stamp(now)
		if o.IsPaid() {
			if o.ProcessedBy == "" {
				o.ProcessedBy = staff.Username
			}
			return nil, nil
		}
		o.PaymentMethod = method
		o.PaymentStatus = model.PaymentStatusPaid
		o.PaidAt = stamp(now)
		o.ProcessedBy = staff.Username
		return nil, nil
	})
}

// ConfirmQRPayment marks a QR order as paid without touching its status.
func (m *Manager) ConfirmQRPayment(ctx context.Context, staff Actor, id string) (*model.Order, error) {
	return m.confirmPayment(ctx, staff, id, func(o *model.Order) bool {
		return o.PaymentMethod == model.PaymentQR
	}, "Only QR orders can be confirmed here")
}

// ConfirmStaffPayment marks an order paid at the counter. Legacy dine-in orders stored
// with cod are accepted too.
func (m *Manager) ConfirmStaffPayment(ctx context.Context, staff Actor, id string) (*model.Order, error) {
	return m.confirmPayment(ctx, staff, id, func(o *model.Order) bool {
		return o.PaymentMethod == model.PaymentStaff ||
			(o.Type == model.OrderTypeDineIn && o.PaymentMethod == model.PaymentCOD)
	}, "Only orders paid at the counter can be confirmed here")
}

func (m *Manager) confirmPayment(ctx context.Context, staff Actor, id string, eligible func(*model.Order) bool, reject string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderPaymentUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if !eligible(o) {
			return nil, apperr.BadRequest(apperr.ErrInvalidPaymentMethod, reject)
		}
		if o.IsPaid() {
			return nil, apperr.Conflict(apperr.ErrAlreadyPaid, "Order is already paid")
		}
		if o.Status == model.StatusCancelled {
			return nil, apperr.InvalidState("Cannot confirm payment for a cancelled order")
		}
		o.PaymentStatus = model.PaymentStatusPaid
		o.PaidAt = stamp(m.now())
		o.ProcessedBy = staff.Username
		return nil, nil
	})
}
