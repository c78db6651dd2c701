package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"

	"go.uber.org/zap"
)

// Mirror collects dirty keys and rewrites their documents after a short quiet period, so a
// burst of mutations produces one write per key.
type Mirror struct {
	repos  store.Repositories
	sink   Sink
	logger *zap.Logger
	delay  time.Duration

	mu    sync.Mutex
	dirty map[string]struct{}
	wake  chan struct{}
}

func NewMirror(repos store.Repositories, sink Sink, logger *zap.Logger, delay time.Duration) *Mirror {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Mirror{
		repos:  repos,
		sink:   sink,
		logger: logger,
		delay:  delay,
		dirty:  map[string]struct{}{},
		wake:   make(chan struct{}, 1),
	}
}

func (m *Mirror) MarkDirty(keys ...string) {
	if len(keys) == 0 {
		return
	}
	m.mu.Lock()
	for _, k := range keys {
		m.dirty[k] = struct{}{}
	}
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Run flushes dirty keys until ctx is cancelled, then flushes once more.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.Flush(flushCtx)
			cancel()
			return
		case <-m.wake:
			timer := time.NewTimer(m.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
			m.Flush(ctx)
		}
	}
}

// Flush writes every pending document now. Failures are logged and dropped.
func (m *Mirror) Flush(ctx context.Context) {
	m.mu.Lock()
	keys := make([]string, 0, len(m.dirty))
	for k := range m.dirty {
		keys = append(keys, k)
	}
	m.dirty = map[string]struct{}{}
	m.mu.Unlock()
	sort.Strings(keys)

	for _, key := range keys {
		doc, err := m.render(ctx, key)
		if err == nil {
			err = m.sink.Put(ctx, key, doc)
		}
		if err != nil {
			m.logger.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (m *Mirror) render(ctx context.Context, key string) ([]byte, error) {
	value, err := m.document(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

func (m *Mirror) document(ctx context.Context, key string) (any, error) {
	switch key {
	case KeyMenuItems:
		return nonNil(m.repos.Menu().List(ctx))
	case KeyIngredients:
		return nonNil(m.repos.Ingredients().List(ctx))
	case KeyOrders:
		return nonNil(m.repos.Orders().List(ctx, store.OrderFilter{}))
	case KeySets:
		return nonNil(m.repos.Sets().List(ctx))
	case KeyVouchers:
		return nonNil(m.repos.Vouchers().List(ctx))
	case KeyUsers:
		return nonNil(m.repos.Users().List(ctx))
	case KeyDiscounts:
		items, err := m.repos.Discounts().List(ctx, model.DiscountTargetItem)
		if err != nil {
			return nil, err
		}
		sets, err := m.repos.Discounts().List(ctx, model.DiscountTargetSet)
		if err != nil {
			return nil, err
		}
		return map[string]map[string]model.Discount{"items": items, "sets": sets}, nil
	}

	prefix, scope, ok := scopeOf(key)
	if !ok {
		return nil, fmt.Errorf("unknown snapshot key %q", key)
	}
	switch prefix {
	case cartPrefix:
		cart, err := m.repos.Scopes().Cart(ctx, scope)
		if err != nil {
			return nil, err
		}
		return nonNil(cart.Lines, nil)
	case favoritesPrefix:
		return nonNil(m.repos.Scopes().Favorites(ctx, scope))
	default:
		return m.repos.Scopes().SelectedVoucher(ctx, scope)
	}
}

// nonNil keeps empty collections rendered as [] rather than null.
func nonNil[T any](list []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}
