// Package inventory tracks ingredient stock. Stock is never negative: every adjustment
// is clamped at zero and logged as an in or out transaction.
package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	store     store.Store
	events    events.Publisher
	snapshots snapshot.Marker
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(st store.Store, pub events.Publisher, marker snapshot.Marker, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if marker == nil {
		marker = snapshot.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, events: pub, snapshots: marker, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

type IngredientView struct {
	model.Ingredient
	Low bool `json:"low"`
}

type IngredientInput struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Stock    float64 `json:"stock" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"max=20"`
	MinStock float64 `json:"minStock" validate:"gte=0"`
}

// Adjustment changes stock either by Delta or, when Set is given, to an absolute value.
type Adjustment struct {
	Delta  float64  `json:"delta"`
	Set    *float64 `json:"set"`
	Reason string   `json:"reason" validate:"max=200"`
}

func (s *Service) List(ctx context.Context) ([]IngredientView, error) {
	list, err := s.store.Ingredients().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]IngredientView, 0, len(list))
	for _, ing := range list {
		out = append(out, IngredientView{Ingredient: *ing, Low: ing.IsLow()})
	}
	return out, nil
}

// LowStock lists ingredients at or below their minimum.
func (s *Service) LowStock(ctx context.Context) ([]IngredientView, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]IngredientView, 0)
	for _, v := range all {
		if v.Low {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in IngredientInput) (*model.Ingredient, error) {
	ing := &model.Ingredient{
		ID:        "ing_" + uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Stock:     in.Stock,
		Unit:      strings.TrimSpace(in.Unit),
		MinStock:  in.MinStock,
		UpdatedAt: s.now(),
	}
	if err := s.store.Ingredients().Save(ctx, ing); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.KeyIngredients)
	return ing, nil
}

// Adjust applies a manual stock change on behalf of actor.
func (s *Service) Adjust(ctx context.Context, id string, adj Adjustment, actor string) (*model.Ingredient, error) {
	var (
		updated *model.Ingredient
		crossed bool
	)
	err := s.store.InTx(ctx, func(r store.Repositories) error {
		ing, err := r.Ingredients().Get(ctx, id)
		if err != nil {
			return err
		}
		wasLow := ing.IsLow()

		before := decimal.NewFromFloat(ing.Stock)
		after := before.Add(decimal.NewFromFloat(adj.Delta))
		if adj.Set != nil {
			after = decimal.NewFromFloat(*adj.Set)
		}
		after = decimal.Max(decimal.Zero, after)
		if after.Equal(before) {
			updated = ing
			return nil
		}

		kind := model.TransactionIn
		if after.LessThan(before) {
			kind = model.TransactionOut
		}
		reason := strings.TrimSpace(adj.Reason)
		if reason == "" {
			reason = "manual"
		}

		now := s.now()
		ing.Stock = after.InexactFloat64()
		ing.UpdatedAt = now
		if err := r.Ingredients().Save(ctx, ing); err != nil {
			return err
		}
		err = r.Ingredients().AddTransaction(ctx, model.InventoryTransaction{
			ID:           "invtx_" + uuid.NewString(),
			IngredientID: ing.ID,
			Kind:         kind,
			Quantity:     after.Sub(before).Abs().InexactFloat64(),
			Reason:       reason,
			StockAfter:   ing.Stock,
			CreatedBy:    actor,
			CreatedAt:    now,
		})
		if err != nil {
			return err
		}
		updated = ing
		crossed = !wasLow && ing.IsLow()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(apperr.ErrIngredientNotFound, "Ingredient not found")
	}
	if err != nil {
		return nil, err
	}

	s.snapshots.MarkDirty(snapshot.KeyIngredients)
	if crossed {
		if err := s.events.Publish(ctx, events.LowStock(*updated)); err != nil {
			s.logger.Warn("low stock publish failed", zap.String("ingredientId", id), zap.Error(err))
		}
	}
	return updated, nil
}

func (s *Service) Transactions(ctx context.Context, ingredientID string, limit int) ([]model.InventoryTransaction, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	txs, err := s.store.Ingredients().Transactions(ctx, ingredientID, limit)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []model.InventoryTransaction{}
	}
	return txs, nil
}
