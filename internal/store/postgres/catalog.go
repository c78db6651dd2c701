package postgres

import (
	"context"
	"errors"

	"restaurant-order-service/internal/model"

	"github.com/jackc/pgx/v5"
)

type menu repos

const menuColumns = `id, name, category, price, description, image, available, ingredients_usage, created_at, updated_at`

func scanMenuItem(row rowScanner) (*model.MenuItem, error) {
	var (
		item     model.MenuItem
		category string
	)
	if err := row.Scan(&item.ID, &item.Name, &category, &item.Price, &item.Description, &item.Image,
		&item.Available, &item.IngredientsUsage, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	item.Category = model.MenuCategory(category)
	return &item, nil
}

func (r menu) List(ctx context.Context) ([]*model.MenuItem, error) {
	rows, err := r.q.Query(ctx, `select `+menuColumns+` from menu_items order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r menu) Get(ctx context.Context, id string) (*model.MenuItem, error) {
	item, err := scanMenuItem(r.q.QueryRow(ctx, `select `+menuColumns+` from menu_items where id = $1`, id))
	return item, mapErr(err)
}

func (r menu) Save(ctx context.Context, item *model.MenuItem) error {
	usage := item.IngredientsUsage
	if usage == nil {
		usage = map[string]float64{}
	}
	_, err := r.q.Exec(ctx, `
		insert into menu_items (`+menuColumns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		on conflict (id) do update set
			name = excluded.name, category = excluded.category, price = excluded.price,
			description = excluded.description, image = excluded.image, available = excluded.available,
			ingredients_usage = excluded.ingredients_usage, updated_at = excluded.updated_at
	`, item.ID, item.Name, string(item.Category), item.Price, item.Description, item.Image,
		item.Available, usage, item.CreatedAt, item.UpdatedAt)
	return mapErr(err)
}

func (r menu) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `delete from menu_items where id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

type sets repos

func scanSet(row rowScanner) (*model.FoodSet, error) {
	var set model.FoodSet
	if err := row.Scan(&set.ID, &set.Name, &set.Image, &set.Items, &set.CreatedAt, &set.UpdatedAt); err != nil {
		return nil, err
	}
	return &set, nil
}

func (r sets) List(ctx context.Context) ([]*model.FoodSet, error) {
	rows, err := r.q.Query(ctx, `select id, name, image, items, created_at, updated_at from food_sets order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.FoodSet
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, rows.Err()
}

func (r sets) Get(ctx context.Context, id string) (*model.FoodSet, error) {
	set, err := scanSet(r.q.QueryRow(ctx, `select id, name, image, items, created_at, updated_at from food_sets where id = $1`, id))
	return set, mapErr(err)
}

func (r sets) Save(ctx context.Context, set *model.FoodSet) error {
	items := set.Items
	if items == nil {
		items = []model.SetItem{}
	}
	_, err := r.q.Exec(ctx, `
		insert into food_sets (id, name, image, items, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6)
		on conflict (id) do update set
			name = excluded.name, image = excluded.image, items = excluded.items, updated_at = excluded.updated_at
	`, set.ID, set.Name, set.Image, items, set.CreatedAt, set.UpdatedAt)
	return mapErr(err)
}

func (r sets) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `delete from food_sets where id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

type discounts repos

func (r discounts) List(ctx context.Context, target model.DiscountTarget) (map[string]model.Discount, error) {
	rows, err := r.q.Query(ctx, `select ref_id, kind, value, active from discounts where target = $1`, string(target))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]model.Discount{}
	for rows.Next() {
		var (
			refID string
			kind  string
			d     model.Discount
		)
		if err := rows.Scan(&refID, &kind, &d.Value, &d.Active); err != nil {
			return nil, err
		}
		d.Kind = model.DiscountKind(kind)
		out[refID] = d
	}
	return out, rows.Err()
}

func (r discounts) Get(ctx context.Context, target model.DiscountTarget, id string) (model.Discount, error) {
	var (
		kind string
		d    model.Discount
	)
	err := r.q.QueryRow(ctx, `select kind, value, active from discounts where target = $1 and ref_id = $2`,
		string(target), id).Scan(&kind, &d.Value, &d.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Discount{}, nil
		}
		return model.Discount{}, err
	}
	d.Kind = model.DiscountKind(kind)
	return d, nil
}

func (r discounts) Set(ctx context.Context, target model.DiscountTarget, id string, d model.Discount) error {
	_, err := r.q.Exec(ctx, `
		insert into discounts (target, ref_id, kind, value, active) values ($1, $2, $3, $4, $5)
		on conflict (target, ref_id) do update set kind = excluded.kind, value = excluded.value, active = excluded.active
	`, string(target), id, string(d.Kind), d.Value, d.Active)
	return err
}

func (r discounts) Delete(ctx context.Context, target model.DiscountTarget, id string) error {
	_, err := r.q.Exec(ctx, `delete from discounts where target = $1 and ref_id = $2`, string(target), id)
	return err
}
