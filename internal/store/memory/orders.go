package memory

import (
	"context"
	"sort"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type orders struct{ v view }

func (r orders) Create(ctx context.Context, o *model.Order) error {
	return r.v.write(func(st *state) error {
		if _, exists := st.orders[o.ID]; exists {
			return store.ErrDuplicate
		}
		if o.Version == 0 {
			o.Version = 1
		}
		st.orders[o.ID] = o.Clone()
		st.orderIDs = append(st.orderIDs, o.ID)
		return nil
	})
}

func (r orders) Get(ctx context.Context, id string) (*model.Order, error) {
	var out *model.Order
	err := r.v.read(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return store.ErrNotFound
		}
		out = o.Clone()
		return nil
	})
	return out, err
}

func (r orders) List(ctx context.Context, f store.OrderFilter) ([]*model.Order, error) {
	var out []*model.Order
	err := r.v.read(func(st *state) error {
		for _, id := range st.orderIDs {
			o := st.orders[id]
			if f.Matches(o) {
				out = append(out, o.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if f.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r orders) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.v.read(func(st *state) error {
		n = int64(len(st.orders))
		return nil
	})
	return n, err
}

func (r orders) Update(ctx context.Context, o *model.Order, expectedVersion int64) error {
	return r.v.write(func(st *state) error {
		current, ok := st.orders[o.ID]
		if !ok {
			return store.ErrNotFound
		}
		if current.Version != expectedVersion {
			return store.ErrConflict
		}
		o.Version = expectedVersion + 1
		st.orders[o.ID] = o.Clone()
		return nil
	})
}
