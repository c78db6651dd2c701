// Package catalog manages menu items, food sets and their discounts, and renders the
// discounted preview prices shown to customers and admins.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/pricing"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	store     store.Store
	snapshots snapshot.Marker
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(st store.Store, marker snapshot.Marker, logger *zap.Logger) *Service {
	if marker == nil {
		marker = snapshot.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, snapshots: marker, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// MenuView is a menu item with its current discount applied.
type MenuView struct {
	*model.MenuItem
	Discount   model.Discount `json:"discount"`
	FinalPrice float64        `json:"finalPrice"`
}

type SetView struct {
	*model.FoodSet
	Discount model.Discount `json:"discount"`
	pricing.Preview
}

type MenuItemInput struct {
	Name             string             `json:"name" validate:"required,max=120"`
	Category         model.MenuCategory `json:"category" validate:"omitempty,oneof=appetizer main dessert beverage other"`
	Price            float64            `json:"price" validate:"gte=0"`
	Description      string             `json:"description" validate:"max=1000"`
	Image            string             `json:"image" validate:"max=2048"`
	Available        *bool              `json:"available"`
	IngredientsUsage map[string]float64 `json:"ingredientsUsage" validate:"omitempty,dive,gte=0"`
}

type SetInput struct {
	Name  string          `json:"name" validate:"required,max=120"`
	Image string          `json:"image" validate:"max=2048"`
	Items []model.SetItem `json:"items" validate:"required,min=1,dive"`
}

// ListMenu returns the menu with preview prices. Unavailable items are left out unless
// includeUnavailable is set.
func (s *Service) ListMenu(ctx context.Context, includeUnavailable bool) ([]MenuView, error) {
	items, err := s.store.Menu().List(ctx)
	if err != nil {
		return nil, err
	}
	discounts, err := s.store.Discounts().List(ctx, model.DiscountTargetItem)
	if err != nil {
		return nil, err
	}
	out := make([]MenuView, 0, len(items))
	for _, item := range items {
		if !item.Available && !includeUnavailable {
			continue
		}
		d := discounts[item.ID]
		out = append(out, MenuView{MenuItem: item, Discount: d, FinalPrice: pricing.ItemPrice(*item, d)})
	}
	return out, nil
}

func (s *Service) GetMenuItem(ctx context.Context, id string) (*model.MenuItem, error) {
	item, err := s.store.Menu().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(apperr.ErrMenuItemNotFound, "Menu item not found")
	}
	return item, err
}

func (s *Service) CreateMenuItem(ctx context.Context, in MenuItemInput) (*model.MenuItem, error) {
	now := s.now()
	item := &model.MenuItem{
		ID:        "menu_" + uuid.NewString(),
		Available: true,
		CreatedAt: now,
	}
	applyMenuInput(item, in)
	item.UpdatedAt = now
	if err := s.store.Menu().Save(ctx, item); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.KeyMenuItems)
	s.logger.Info("menu item created", zap.String("id", item.ID), zap.String("name", item.Name))
	return item, nil
}

func (s *Service) UpdateMenuItem(ctx context.Context, id string, in MenuItemInput) (*model.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	applyMenuInput(item, in)
	item.UpdatedAt = s.now()
	if err := s.store.Menu().Save(ctx, item); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.KeyMenuItems)
	return item, nil
}

func applyMenuInput(item *model.MenuItem, in MenuItemInput) {
	item.Name = strings.TrimSpace(in.Name)
	item.Category = in.Category
	if item.Category == "" {
		item.Category = model.CategoryOther
	}
	item.Price = in.Price
	item.Description = strings.TrimSpace(in.Description)
	if in.Image != "" {
		item.Image = in.Image
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.IngredientsUsage != nil {
		usage := make(map[string]float64, len(in.IngredientsUsage))
		for ingID, qty := range in.IngredientsUsage {
			if qty > 0 {
				usage[ingID] = qty
			}
		}
		item.IngredientsUsage = usage
	}
}

// ToggleAvailability flips whether customers can order the item.
func (s *Service) ToggleAvailability(ctx context.Context, id string) (*model.MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Available = !item.Available
	item.UpdatedAt = s.now()
	if err := s.store.Menu().Save(ctx, item); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.KeyMenuItems)
	return item, nil
}

// DeleteMenuItem removes the item and its discount. Sets keep referencing the id and
// price it at zero.
func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(r store.Repositories) error {
		if err := r.Menu().Delete(ctx, id); err != nil {
			return err
		}
		return r.Discounts().Delete(ctx, model.DiscountTargetItem, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(apperr.ErrMenuItemNotFound, "Menu item not found")
	}
	if err != nil {
		return err
	}
	s.snapshots.MarkDirty(snapshot.KeyMenuItems, snapshot.KeyDiscounts)
	return nil
}

// SetImage stores a new image URL on a menu item or set and returns the previous one.
func (s *Service) SetImage(ctx context.Context, target model.DiscountTarget, id, url string) (string, error) {
	switch target {
	case model.DiscountTargetItem:
		item, err := s.GetMenuItem(ctx, id)
		if err != nil {
			return "", err
		}
		prev := item.Image
		item.Image = url
		item.UpdatedAt = s.now()
		if err := s.store.Menu().Save(ctx, item); err != nil {
			return "", err
		}
		s.snapshots.MarkDirty(snapshot.KeyMenuItems)
		return prev, nil
	case model.DiscountTargetSet:
		set, err := s.GetSet(ctx, id)
		if err != nil {
			return "", err
		}
		prev := set.Image
		set.Image = url
		set.UpdatedAt = s.now()
		if err := s.store.Sets().Save(ctx, set); err != nil {
			return "", err
		}
		s.snapshots.MarkDirty(snapshot.KeySets)
		return prev, nil
	}
	return "", apperr.Validation("Unknown image target", map[string]any{"target": target})
}

func menuIndex(items []*model.MenuItem) map[string]model.MenuItem {
	out := make(map[string]model.MenuItem, len(items))
	for _, item := range items {
		out[item.ID] = *item
	}
	return out
}

func mapNotFound(err error, code apperr.ErrorCode, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(code, message)
	}
	return err
}
