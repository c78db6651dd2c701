package order

import (
	"context"
	"errors"
	"sort"

	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StartCooking moves a pending order to preparing and deducts the ingredients its items
// use, in the same transaction.
func (m *Manager) StartCooking(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	deducted := false
	o, err := m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if err := requireStatus(o, model.StatusPending, "start cooking"); err != nil {
			return nil, err
		}
		now := m.now()
		o.Status = model.StatusPreparing
		o.PreparedBy = actor.Username
		o.PreparedAt = stamp(now)

		low, n, err := m.deductIngredients(ctx, r, o, actor)
		deducted = n > 0
		return low, err
	})
	if err != nil {
		return nil, err
	}
	if deducted {
		m.snapshots.MarkDirty(snapshot.KeyIngredients)
	}
	return o, nil
}

// deductIngredients lowers stock by usage × quantity for every line, floored at zero, and
// returns low stock events for ingredients that crossed their threshold.
func (m *Manager) deductIngredients(ctx context.Context, r store.Repositories, o *model.Order, actor Actor) ([]events.Event, int, error) {
	var (
		low     []events.Event
		changed int
	)
	for _, line := range o.Items {
		item, err := r.Menu().Get(ctx, line.MenuItemID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}

		ingredientIDs := make([]string, 0, len(item.IngredientsUsage))
		for ingID := range item.IngredientsUsage {
			ingredientIDs = append(ingredientIDs, ingID)
		}
		sort.Strings(ingredientIDs)

		for _, ingID := range ingredientIDs {
			usage := decimal.NewFromFloat(item.IngredientsUsage[ingID]).Mul(decimal.NewFromInt(int64(qty)))
			if !usage.IsPositive() {
				continue
			}
			ing, err := r.Ingredients().Get(ctx, ingID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, 0, err
			}

			wasLow := ing.IsLow()
			before := decimal.NewFromFloat(ing.Stock)
			after := decimal.Max(decimal.Zero, before.Sub(usage))
			ing.Stock = after.InexactFloat64()
			ing.UpdatedAt = m.now()
			if err := r.Ingredients().Save(ctx, ing); err != nil {
				return nil, 0, err
			}
			err = r.Ingredients().AddTransaction(ctx, model.InventoryTransaction{
				ID:           "invtx_" + uuid.NewString(),
				IngredientID: ing.ID,
				Kind:         model.TransactionOut,
				Quantity:     before.Sub(after).InexactFloat64(),
				Reason:       "order:" + o.ID,
				StockAfter:   ing.Stock,
				CreatedBy:    actor.Username,
				CreatedAt:    m.now(),
			})
			if err != nil {
				return nil, 0, err
			}
			changed++
			if !wasLow && ing.IsLow() {
				low = append(low, events.LowStock(*ing))
			}
		}
	}
	return low, changed, nil
}

func (m *Manager) FinishCooking(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if err := requireStatus(o, model.StatusPreparing, "finish cooking"); err != nil {
			return nil, err
		}
		o.Status = model.StatusReady
		o.ReadyAt = stamp(m.now())
		if o.PreparedBy == "" {
			o.PreparedBy = actor.Username
		}
		return nil, nil
	})
}

// Cancel stops an order that has not left the kitchen. Stock already deducted stays
// deducted.
func (m *Manager) Cancel(ctx context.Context, actor Actor, id string) (*model.Order, error) {
	return m.apply(ctx, id, events.OrderStatusUpdated, func(ctx context.Context, r store.Repositories, o *model.Order) ([]events.Event, error) {
		if !o.Status.CanTransitionTo(model.StatusCancelled) {
			return nil, requireStatus(o, model.StatusPending, "cancel")
		}
		o.Status = model.StatusCancelled
		m.logger.Info("order cancelled", zap.String("orderId", o.ID), zap.String("by", actor.Username))
		return nil, nil
	})
}
