package catalog

import (
	"context"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/pricing"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"
)

// SetDiscount configures the discount of a menu item or set. A none kind clears it.
func (s *Service) SetDiscount(ctx context.Context, target model.DiscountTarget, id string, d model.Discount) (pricing.Preview, error) {
	if !target.IsValid() {
		return pricing.Preview{}, apperr.Validation("Discount target must be item or set", nil)
	}
	if d.Kind == "" {
		d.Kind = model.DiscountNone
	}
	if !d.Kind.IsValid() {
		return pricing.Preview{}, apperr.Validation("Discount type must be none, percent or fixed", nil)
	}
	if d.Value < 0 || (d.Kind == model.DiscountPercent && d.Value > 100) {
		return pricing.Preview{}, apperr.Validation("Discount value out of range", map[string]any{"value": d.Value})
	}

	err := s.store.InTx(ctx, func(r store.Repositories) error {
		if err := requireTarget(ctx, r, target, id); err != nil {
			return err
		}
		if d.Kind == model.DiscountNone {
			return r.Discounts().Delete(ctx, target, id)
		}
		return r.Discounts().Set(ctx, target, id, d)
	})
	if err != nil {
		return pricing.Preview{}, err
	}
	s.snapshots.MarkDirty(snapshot.KeyDiscounts)
	return s.Preview(ctx, target, id)
}

func (s *Service) ClearDiscount(ctx context.Context, target model.DiscountTarget, id string) error {
	if err := s.store.Discounts().Delete(ctx, target, id); err != nil {
		return err
	}
	s.snapshots.MarkDirty(snapshot.KeyDiscounts)
	return nil
}

// Preview returns the base and discounted price of an item or set.
func (s *Service) Preview(ctx context.Context, target model.DiscountTarget, id string) (pricing.Preview, error) {
	d, err := s.store.Discounts().Get(ctx, target, id)
	if err != nil {
		return pricing.Preview{}, err
	}
	switch target {
	case model.DiscountTargetItem:
		item, err := s.GetMenuItem(ctx, id)
		if err != nil {
			return pricing.Preview{}, err
		}
		return pricing.Preview{Base: item.Price, Final: pricing.ItemPrice(*item, d)}, nil
	case model.DiscountTargetSet:
		set, err := s.GetSet(ctx, id)
		if err != nil {
			return pricing.Preview{}, err
		}
		items, err := s.store.Menu().List(ctx)
		if err != nil {
			return pricing.Preview{}, err
		}
		return pricing.SetPrice(*set, menuIndex(items), d), nil
	}
	return pricing.Preview{}, apperr.Validation("Discount target must be item or set", nil)
}

func requireTarget(ctx context.Context, r store.Repositories, target model.DiscountTarget, id string) error {
	var err error
	if target == model.DiscountTargetItem {
		_, err = r.Menu().Get(ctx, id)
		if err != nil {
			return mapNotFound(err, apperr.ErrMenuItemNotFound, "Menu item not found")
		}
		return nil
	}
	_, err = r.Sets().Get(ctx, id)
	if err != nil {
		return mapNotFound(err, apperr.ErrSetNotFound, "Set not found")
	}
	return nil
}
