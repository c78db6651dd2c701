package postgres

import (
	"context"

	"restaurant-order-service/internal/model"
)

type ingredients repos

func scanIngredient(row rowScanner) (*model.Ingredient, error) {
	var ing model.Ingredient
	if err := row.Scan(&ing.ID, &ing.Name, &ing.Stock, &ing.Unit, &ing.MinStock, &ing.UpdatedAt); err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r ingredients) List(ctx context.Context) ([]*model.Ingredient, error) {
	rows, err := r.q.Query(ctx, `select id, name, stock, unit, min_stock, updated_at from ingredients order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r ingredients) Get(ctx context.Context, id string) (*model.Ingredient, error) {
	ing, err := scanIngredient(r.q.QueryRow(ctx,
		`select id, name, stock, unit, min_stock, updated_at from ingredients where id = $1`+repos(r).forUpdate(), id))
	return ing, mapErr(err)
}

func (r ingredients) Save(ctx context.Context, ing *model.Ingredient) error {
	_, err := r.q.Exec(ctx, `
		insert into ingredients (id, name, stock, unit, min_stock, updated_at)
		values ($1, $2, $3, $4, $5, $6)
		on conflict (id) do update set
			name = excluded.name, stock = excluded.stock, unit = excluded.unit,
			min_stock = excluded.min_stock, updated_at = excluded.updated_at
	`, ing.ID, ing.Name, ing.Stock, ing.Unit, ing.MinStock, ing.UpdatedAt)
	return mapErr(err)
}

func (r ingredients) AddTransaction(ctx context.Context, tx model.InventoryTransaction) error {
	_, err := r.q.Exec(ctx, `
		insert into inventory_transactions (id, ingredient_id, kind, quantity, reason, stock_after, created_by, created_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
	`, tx.ID, tx.IngredientID, string(tx.Kind), tx.Quantity, tx.Reason, tx.StockAfter, tx.CreatedBy, tx.CreatedAt)
	return mapErr(err)
}

func (r ingredients) Transactions(ctx context.Context, ingredientID string, limit int) ([]model.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.Query(ctx, `
		select id, ingredient_id, kind, quantity, reason, stock_after, created_by, created_at
		from inventory_transactions
		where ($1 = '' or ingredient_id = $1)
		order by created_at desc, id desc
		limit $2
	`, ingredientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.InventoryTransaction
	for rows.Next() {
		var (
			tx   model.InventoryTransaction
			kind string
		)
		if err := rows.Scan(&tx.ID, &tx.IngredientID, &kind, &tx.Quantity, &tx.Reason, &tx.StockAfter, &tx.CreatedBy, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Kind = model.TransactionKind(kind)
		out = append(out, tx)
	}
	return out, rows.Err()
}
