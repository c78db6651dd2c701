package catalog

import (
	"context"
	"errors"
	"strings"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/pricing"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"

	"github.com/google/uuid"
)

func (s *Service) ListSets(ctx context.Context) ([]SetView, error) {
	sets, err := s.store.Sets().List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Menu().List(ctx)
	if err != nil {
		return nil, err
	}
	discounts, err := s.store.Discounts().List(ctx, model.DiscountTargetSet)
	if err != nil {
		return nil, err
	}
	menu := menuIndex(items)
	out := make([]SetView, 0, len(sets))
	for _, set := range sets {
		d := discounts[set.ID]
		out = append(out, SetView{FoodSet: set, Discount: d, Preview: pricing.SetPrice(*set, menu, d)})
	}
	return out, nil
}

func (s *Service) GetSet(ctx context.Context, id string) (*model.FoodSet, error) {
	set, err := s.store.Sets().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(apperr.ErrSetNotFound, "Set not found")
	}
	return set, err
}

func (s *Service) CreateSet(ctx context.Context, in SetInput) (*model.FoodSet, error) {
	items, err := s.checkSetItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	now := s.now()
	set := &model.FoodSet{
		ID:        "set_" + uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Image:     in.Image,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Sets().Save(ctx, set); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.KeySets)
	return set, nil
}

func (s *Service) UpdateSet(ctx context.Context, id string, in SetInput) (*model.FoodSet, error) {
	set, err := s.GetSet(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.checkSetItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	set.Name = strings.TrimSpace(in.Name)
	if in.Image != "" {
		set.Image = in.Image
	}
	set.Items = items
	set.UpdatedAt = s.now()
	if err := s.store.Sets().Save(ctx, set); err != nil {
		return nil, err
	}
	s.snapshots.MarkDirty(snapshot.KeySets)
	return set, nil
}

func (s *Service) DeleteSet(ctx context.Context, id string) error {
	err := s.store.InTx(ctx, func(r store.Repositories) error {
		if err := r.Sets().Delete(ctx, id); err != nil {
			return err
		}
		return r.Discounts().Delete(ctx, model.DiscountTargetSet, id)
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(apperr.ErrSetNotFound, "Set not found")
	}
	if err != nil {
		return err
	}
	s.snapshots.MarkDirty(snapshot.KeySets, snapshot.KeyDiscounts)
	return nil
}

// checkSetItems requires every entry to name an existing menu item and defaults the
// quantity to one.
func (s *Service) checkSetItems(ctx context.Context, entries []model.SetItem) ([]model.SetItem, error) {
	if len(entries) == 0 {
		return nil, apperr.Validation("A set needs at least one item", nil)
	}
	out := make([]model.SetItem, 0, len(entries))
	for _, entry := range entries {
		if _, err := s.GetMenuItem(ctx, entry.MenuItemID); err != nil {
			return nil, err
		}
		if entry.Quantity <= 0 {
			entry.Quantity = 1
		}
		out = append(out, entry)
	}
	return out, nil
}
