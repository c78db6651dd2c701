package memory

import (
	"context"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type menu struct{ v view }

func (r menu) List(ctx context.Context) ([]*model.MenuItem, error) {
	var out []*model.MenuItem
	err := r.v.read(func(st *state) error {
		for _, id := range st.menuIDs {
			out = append(out, st.menu[id].Clone())
		}
		return nil
	})
	return out, err
}

func (r menu) Get(ctx context.Context, id string) (*model.MenuItem, error) {
	var out *model.MenuItem
	err := r.v.read(func(st *state) error {
		item, ok := st.menu[id]
		if !ok {
			return store.ErrNotFound
		}
		out = item.Clone()
		return nil
	})
	return out, err
}

func (r menu) Save(ctx context.Context, item *model.MenuItem) error {
	return r.v.write(func(st *state) error {
		if _, exists := st.menu[item.ID]; !exists {
			st.menuIDs = append(st.menuIDs, item.ID)
		}
		st.menu[item.ID] = item.Clone()
		return nil
	})
}

func (r menu) Delete(ctx context.Context, id string) error {
	return r.v.write(func(st *state) error {
		if _, exists := st.menu[id]; !exists {
			return store.ErrNotFound
		}
		delete(st.menu, id)
		st.menuIDs = removeID(st.menuIDs, id)
		return nil
	})
}

type sets struct{ v view }

func (r sets) List(ctx context.Context) ([]*model.FoodSet, error) {
	var out []*model.FoodSet
	err := r.v.read(func(st *state) error {
		for _, id := range st.setIDs {
			out = append(out, st.sets[id].Clone())
		}
		return nil
	})
	return out, err
}

func (r sets) Get(ctx context.Context, id string) (*model.FoodSet, error) {
	var out *model.FoodSet
	err := r.v.read(func(st *state) error {
		set, ok := st.sets[id]
		if !ok {
			return store.ErrNotFound
		}
		out = set.Clone()
		return nil
	})
	return out, err
}

func (r sets) Save(ctx context.Context, set *model.FoodSet) error {
	return r.v.write(func(st *state) error {
		if _, exists := st.sets[set.ID]; !exists {
			st.setIDs = append(st.setIDs, set.ID)
		}
		st.sets[set.ID] = set.Clone()
		return nil
	})
}

func (r sets) Delete(ctx context.Context, id string) error {
	return r.v.write(func(st *state) error {
		if _, exists := st.sets[id]; !exists {
			return store.ErrNotFound
		}
		delete(st.sets, id)
		st.setIDs = removeID(st.setIDs, id)
		return nil
	})
}

type discounts struct{ v view }

func (r discounts) List(ctx context.Context, target model.DiscountTarget) (map[string]model.Discount, error) {
	out := map[string]model.Discount{}
	err := r.v.read(func(st *state) error {
		for k, d := range st.discounts[target] {
			out[k] = d
		}
		return nil
	})
	return out, err
}

func (r discounts) Get(ctx context.Context, target model.DiscountTarget, id string) (model.Discount, error) {
	var out model.Discount
	err := r.v.read(func(st *state) error {
		out = st.discounts[target][id]
		return nil
	})
	return out, err
}

func (r discounts) Set(ctx context.Context, target model.DiscountTarget, id string, d model.Discount) error {
	return r.v.write(func(st *state) error {
		entries, ok := st.discounts[target]
		if !ok {
			entries = map[string]model.Discount{}
			st.discounts[target] = entries
		}
		entries[id] = d
		return nil
	})
}

func (r discounts) Delete(ctx context.Context, target model.DiscountTarget, id string) error {
	return r.v.write(func(st *state) error {
		delete(st.discounts[target], id)
		return nil
	})
}
