package memory

import (
	"context"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type ingredients struct{ v view }

func (r ingredients) List(ctx context.Context) ([]*model.Ingredient, error) {
	var out []*model.Ingredient
	err := r.v.read(func(st *state) error {
		for _, id := range st.ingIDs {
			ing := *st.ingredients[id]
			out = append(out, &ing)
		}
		return nil
	})
	return out, err
}

func (r ingredients) Get(ctx context.Context, id string) (*model.Ingredient, error) {
	var out *model.Ingredient
	err := r.v.read(func(st *state) error {
		ing, ok := st.ingredients[id]
		if !ok {
			return store.ErrNotFound
		}
		cp := *ing
		out = &cp
		return nil
	})
	return out, err
}

func (r ingredients) Save(ctx context.Context, ing *model.Ingredient) error {
	return r.v.write(func(st *state) error {
		if _, exists := st.ingredients[ing.ID]; !exists {
			st.ingIDs = append(st.ingIDs, ing.ID)
		}
		cp := *ing
		st.ingredients[ing.ID] = &cp
		return nil
	})
}

func (r ingredients) AddTransaction(ctx context.Context, tx model.InventoryTransaction) error {
	return r.v.write(func(st *state) error {
		st.inventoryTx = append(st.inventoryTx, tx)
		return nil
	})
}

func (r ingredients) Transactions(ctx context.Context, ingredientID string, limit int) ([]model.InventoryTransaction, error) {
	var out []model.InventoryTransaction
	err := r.v.read(func(st *state) error {
		for i := len(st.inventoryTx) - 1; i >= 0; i-- {
			tx := st.inventoryTx[i]
			if ingredientID != "" && tx.IngredientID != ingredientID {
				continue
			}
			out = append(out, tx)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
