// Package cart keeps each storage scope's cart and favorites.
package cart

import (
	"context"
	"errors"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/pricing"
	"restaurant-order-service/internal/snapshot"
	"restaurant-order-service/internal/store"
	"restaurant-order-service/internal/voucher"
)

type Service struct {
	store       store.Store
	vouchers    *voucher.Service
	snapshots   snapshot.Marker
	deliveryFee float64
}

func NewService(st store.Store, vouchers *voucher.Service, marker snapshot.Marker, deliveryFee float64) *Service {
	if marker == nil {
		marker = snapshot.Nop{}
	}
	return &Service{store: st, vouchers: vouchers, snapshots: marker, deliveryFee: deliveryFee}
}

// View is a cart with the price it would check out at for an order type.
type View struct {
	model.Cart
	Quote pricing.Quote `json:"quote"`
}

func (s *Service) Get(ctx context.Context, scope string, orderType model.OrderType) (View, error) {
	cart, err := s.store.Scopes().Cart(ctx, scope)
	if err != nil {
		return View{}, err
	}
	return s.view(ctx, cart, orderType)
}

func (s *Service) view(ctx context.Context, cart model.Cart, orderType model.OrderType) (View, error) {
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}
	if orderType == "" {
		orderType = model.OrderTypeDelivery
	}
	lines := make([]model.LineItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, model.LineItem{MenuItemID: l.MenuItemID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	var selected *model.Voucher
	if s.vouchers != nil {
		v, err := s.vouchers.Selected(ctx, cart.Scope)
		if err != nil {
			return View{}, err
		}
		selected = v
	}
	quote := pricing.ComputeQuote(pricing.QuoteInput{
		Lines:       lines,
		OrderType:   orderType,
		DeliveryFee: s.deliveryFee,
		Voucher:     selected,
	})
	return View{Cart: cart, Quote: quote}, nil
}

// Add puts qty more of a menu item in the cart, priced at its current base price.
func (s *Service) Add(ctx context.Context, scope, menuItemID string, qty int) (model.Cart, error) {
	if qty <= 0 {
		qty = 1
	}
	return s.update(ctx, scope, func(r store.Repositories, cart *model.Cart) error {
		item, err := r.Menu().Get(ctx, menuItemID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(apperr.ErrMenuItemNotFound, "Menu item not found")
		}
		if err != nil {
			return err
		}
		if !item.Available {
			return apperr.BadRequest(apperr.ErrMenuItemUnavailable, item.Name+" is not available right now")
		}
		for i := range cart.Lines {
			if cart.Lines[i].MenuItemID == item.ID {
				cart.Lines[i].Quantity += qty
				return nil
			}
		}
		cart.Lines = append(cart.Lines, model.CartLine{
			MenuItemID: item.ID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   qty,
			Image:      item.Image,
		})
		return nil
	})
}

// SetQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) SetQuantity(ctx context.Context, scope, menuItemID string, qty int) (model.Cart, error) {
	return s.update(ctx, scope, func(r store.Repositories, cart *model.Cart) error {
		for i := range cart.Lines {
			if cart.Lines[i].MenuItemID != menuItemID {
				continue
			}
			if qty <= 0 {
				cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			} else {
				cart.Lines[i].Quantity = qty
			}
			return nil
		}
		if qty <= 0 {
			return nil
		}
		return apperr.NotFound(apperr.ErrMenuItemNotFound, "Item is not in the cart")
	})
}

func (s *Service) Remove(ctx context.Context, scope, menuItemID string) (model.Cart, error) {
	return s.SetQuantity(ctx, scope, menuItemID, 0)
}

func (s *Service) Clear(ctx context.Context, scope string) error {
	if err := s.store.Scopes().SaveCart(ctx, model.Cart{Scope: scope}); err != nil {
		return err
	}
	s.snapshots.MarkDirty(snapshot.CartKey(scope))
	return nil
}

func (s *Service) update(ctx context.Context, scope string, fn func(r store.Repositories, cart *model.Cart) error) (model.Cart, error) {
	var out model.Cart
	err := s.store.InTx(ctx, func(r store.Repositories) error {
		cart, err := r.Scopes().Cart(ctx, scope)
		if err != nil {
			return err
		}
		if err := fn(r, &cart); err != nil {
			return err
		}
		out = cart
		return r.Scopes().SaveCart(ctx, cart)
	})
	if err != nil {
		return model.Cart{}, err
	}
	s.snapshots.MarkDirty(snapshot.CartKey(scope))
	return out, nil
}

func (s *Service) Favorites(ctx context.Context, scope string) ([]string, error) {
	ids, err := s.store.Scopes().Favorites(ctx, scope)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// ToggleFavorite adds or removes a menu item from favorites and reports whether it is now
// a favorite.
func (s *Service) ToggleFavorite(ctx context.Context, scope, menuItemID string) (bool, error) {
	var added bool
	err := s.store.InTx(ctx, func(r store.Repositories) error {
		if _, err := r.Menu().Get(ctx, menuItemID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound(apperr.ErrMenuItemNotFound, "Menu item not found")
			}
			return err
		}
		ids, err := r.Scopes().Favorites(ctx, scope)
		if err != nil {
			return err
		}
		out := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			if id != menuItemID {
				out = append(out, id)
			}
		}
		added = len(out) == len(ids)
		if added {
			out = append(out, menuItemID)
		}
		return r.Scopes().SaveFavorites(ctx, scope, out)
	})
	if err != nil {
		return false, err
	}
	s.snapshots.MarkDirty(snapshot.FavoritesKey(scope))
	return added, nil
}
