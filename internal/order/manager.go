// Package order owns the order lifecycle: checkout, the kitchen, rider and staff
// transitions, and the payment flag. Every transition is a compare-and-set on the order
// version, so concurrent actors cannot both win.
package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Config struct {
	DeliveryFee                float64
	Capacity                   int64
	EstimatedPrepMinutes       int
	CatalogDiscountsAtCheckout bool
}

// Actor is the authenticated caller an operation is attributed to.
type Actor struct {
	UserID   string
	Username string
	Name     string
	Role     model.Role
}

// Idempotency remembers which order answered a client supplied key.
type Idempotency interface {
	// Claim binds key to orderID unless it is already bound, in which case it returns the
	// bound id and false.
	Claim(ctx context.Context, key, orderID string) (string, bool, error)
	Release(ctx context.Context, key string) error
}

type Manager struct {
	store     store.Store
	events    events.Publisher
	snapshots snapshot.Marker
	idem      Idempotency
	logger    *zap.Logger
	cfg       Config

	now   func() time.Time
	newID func() string
}

type Option func(*Manager)

func WithIdempotency(idem Idempotency) Option {
	return func(m *Manager) { m.idem = idem }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(st store.Store, pub events.Publisher, marker snapshot.Marker, logger *zap.Logger, cfg Config, opts ...Option) *Manager {
	if pub == nil {
		pub = events.Nop{}
	}
	if marker == nil {
		marker = snapshot.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 999
	}
	if cfg.EstimatedPrepMinutes <= 0 {
		cfg.EstimatedPrepMinutes = 30
	}
	m := &Manager{
		store:     st,
		events:    pub,
		snapshots: marker,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return "order_" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// mutation inspects and edits a private copy of an order inside a transaction. It returns
// an *apperr.Error when a precondition fails, and any extra events to publish once the
// transaction commits.
type mutation func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error)

// apply loads the order, runs fn on a copy and commits it if the stored version is still
// the one fn saw.
func (m *Manager) apply(ctx context.Context, id string, kind events.Type, fn mutation) (*model.Order, error) {
	var (
		updated *model.Order
		prev    model.OrderStatus
		after   []events.Event
	)
	err := m.store.InTx(ctx, func(r store.Repositories) error {
		current, err := r.Orders().Get(ctx, id)
		if err != nil {
			return err
		}
		prev = current.Status
		draft := current.Clone()

		extra, err := fn(ctx, r, draft)
		if err != nil {
			return err
		}
		draft.UpdatedAt = m.now()
		if err := r.Orders().Update(ctx, draft, current.Version); err != nil {
			return err
		}
		updated = draft
		after = extra
		return nil
	})
	if err != nil {
		return nil, m.mapStoreErr(err, id)
	}

	m.snapshots.MarkDirty(snapshot.KeyOrders)
	m.publish(ctx, events.ForOrder(kind, updated, prev))
	for _, e := range after {
		m.publish(ctx, e)
	}
	return updated, nil
}

func (m *Manager) publish(ctx context.Context, e events.Event) {
	if err := m.events.Publish(ctx, e); err != nil {
		m.logger.Warn("event publish failed",
			zap.String("type", string(e.Type)),
			zap.String("orderId", e.OrderID),
			zap.Error(err))
	}
}

func (m *Manager) mapStoreErr(err error, orderID string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(apperr.ErrOrderNotFound, "Order not found")
	case errors.Is(err, store.ErrConflict):
		return apperr.Conflict(apperr.ErrOrderConflict, "Order was changed by someone else, reload and retry")
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	m.logger.Error("order update failed", zap.String("orderId", orderID), zap.Error(err))
	return apperr.New(apperr.ErrInternal, "Failed to update order", http.StatusInternalServerError, nil)
}

func requireStatus(o *model.Order, want model.OrderStatus, action string) error {
	if o.Status != want {
		return apperr.InvalidState("Cannot %s an order that is %s", action, o.Status)
	}
	return nil
}

func stamp(t time.Time) *time.Time {
	return &t
}
