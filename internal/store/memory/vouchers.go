package memory

import (
	"context"
	"strings"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type vouchers struct{ v view }

func (r vouchers) List(ctx context.Context) ([]model.Voucher, error) {
	var out []model.Voucher
	err := r.v.read(func(st *state) error {
		out = append(out, st.vouchers...)
		return nil
	})
	return out, err
}

func (r vouchers) Get(ctx context.Context, code string) (model.Voucher, error) {
	var out model.Voucher
	err := r.v.read(func(st *state) error {
		idx := indexVoucher(st.vouchers, code)
		if idx < 0 {
			return store.ErrNotFound
		}
		out = st.vouchers[idx]
		return nil
	})
	return out, err
}

func (r vouchers) Create(ctx context.Context, v model.Voucher) error {
	return r.v.write(func(st *state) error {
		if indexVoucher(st.vouchers, v.Code) >= 0 {
			return store.ErrDuplicate
		}
		st.vouchers = append(st.vouchers, v)
		return nil
	})
}

func (r vouchers) Save(ctx context.Context, v model.Voucher) error {
	return r.v.write(func(st *state) error {
		idx := indexVoucher(st.vouchers, v.Code)
		if idx < 0 {
			return store.ErrNotFound
		}
		st.vouchers[idx] = v
		return nil
	})
}

func (r vouchers) Delete(ctx context.Context, code string) error {
	return r.v.write(func(st *state) error {
		idx := indexVoucher(st.vouchers, code)
		if idx < 0 {
			return store.ErrNotFound
		}
		st.vouchers = append(st.vouchers[:idx:idx], st.vouchers[idx+1:]...)
		return nil
	})
}

func indexVoucher(list []model.Voucher, code string) int {
	for i, v := range list {
		if strings.EqualFold(v.Code, code) {
			return i
		}
	}
	return -1
}
