package postgres

import (
	"context"
	"errors"

	"restaurant-order-service/internal/model"

	"github.com/jackc/pgx/v5"
)

type scopes repos

func (r scopes) Cart(ctx context.Context, scope string) (model.Cart, error) {
	cart := model.Cart{Scope: scope}
	err := r.q.QueryRow(ctx, `select cart from scope_state where scope = $1`, scope).Scan(&cart.Lines)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return cart, err
	}
	return cart, nil
}

func (r scopes) SaveCart(ctx context.Context, cart model.Cart) error {
	lines := cart.Lines
	if lines == nil {
		lines = []model.CartLine{}
	}
	_, err := r.q.Exec(ctx, `
		insert into scope_state (scope, cart, updated_at) values ($1, $2, now())
		on conflict (scope) do update set cart = excluded.cart, updated_at = now()
	`, cart.Scope, lines)
	return err
}

func (r scopes) Favorites(ctx context.Context, scope string) ([]string, error) {
	var ids []string
	err := r.q.QueryRow(ctx, `select favorites from scope_state where scope = $1`, scope).Scan(&ids)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return ids, nil
}

func (r scopes) SaveFavorites(ctx context.Context, scope string, menuItemIDs []string) error {
	if menuItemIDs == nil {
		menuItemIDs = []string{}
	}
	_, err := r.q.Exec(ctx, `
		insert into scope_state (scope, favorites, updated_at) values ($1, $2::jsonb, now())
		on conflict (scope) do update set favorites = excluded.favorites, updated_at = now()
	`, scope, menuItemIDs)
	return err
}

func (r scopes) SelectedVoucher(ctx context.Context, scope string) (string, error) {
	var code string
	err := r.q.QueryRow(ctx, `select selected_voucher from scope_state where scope = $1`, scope).Scan(&code)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	return code, nil
}

func (r scopes) SelectVoucher(ctx context.Context, scope, code string) error {
	_, err := r.q.Exec(ctx, `
		insert into scope_state (scope, selected_voucher, updated_at) values ($1, $2, now())
		on conflict (scope) do update set selected_voucher = excluded.selected_voucher, updated_at = now()
	`, scope, code)
	return err
}

func (r scopes) ClearVoucherSelections(ctx context.Context, code string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		update scope_state set selected_voucher = '', updated_at = now()
		where selected_voucher <> '' and upper(selected_voucher) = upper($1)
		returning scope
	`, code)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
