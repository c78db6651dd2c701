package memory

import (
	"context"
	"sort"
	"strings"

	"restaurant-order-service/internal/model"
)

type scopes struct{ v view }

func (r scopes) Cart(ctx context.Context, scope string) (model.Cart, error) {
	out := model.Cart{Scope: scope}
	err := r.v.read(func(st *state) error {
		if cart, ok := st.carts[scope]; ok {
			out.Lines = append([]model.CartLine(nil), cart.Lines...)
		}
		return nil
	})
	return out, err
}

func (r scopes) SaveCart(ctx context.Context, cart model.Cart) error {
	return r.v.write(func(st *state) error {
		if len(cart.Lines) == 0 {
			delete(st.carts, cart.Scope)
			return nil
		}
		st.carts[cart.Scope] = model.Cart{Scope: cart.Scope, Lines: append([]model.CartLine(nil), cart.Lines...)}
		return nil
	})
}

func (r scopes) Favorites(ctx context.Context, scope string) ([]string, error) {
	var out []string
	err := r.v.read(func(st *state) error {
		out = append(out, st.favorites[scope]...)
		return nil
	})
	return out, err
}

func (r scopes) SaveFavorites(ctx context.Context, scope string, menuItemIDs []string) error {
	return r.v.write(func(st *state) error {
		st.favorites[scope] = append([]string(nil), menuItemIDs...)
		return nil
	})
}

func (r scopes) SelectedVoucher(ctx context.Context, scope string) (string, error) {
	var out string
	err := r.v.read(func(st *state) error {
		out = st.selected[scope]
		return nil
	})
	return out, err
}

func (r scopes) SelectVoucher(ctx context.Context, scope, code string) error {
	return r.v.write(func(st *state) error {
		if code == "" {
			delete(st.selected, scope)
			return nil
		}
		st.selected[scope] = code
		return nil
	})
}

func (r scopes) ClearVoucherSelections(ctx context.Context, code string) ([]string, error) {
	var cleared []string
	err := r.v.write(func(st *state) error {
		for scope, selected := range st.selected {
			if strings.EqualFold(selected, code) {
				delete(st.selected, scope)
				cleared = append(cleared, scope)
			}
		}
		return nil
	})
	sort.Strings(cleared)
	return cleared, err
}
