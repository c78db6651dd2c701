package postgres

import (
	"context"

	"restaurant-order-service/internal/model"
)

type vouchers repos

func scanVoucher(row rowScanner) (model.Voucher, error) {
	var (
		v   model.Voucher
		typ string
	)
	if err := row.Scan(&v.Code, &typ, &v.Value, &v.Min, &v.Active, &v.CreatedAt); err != nil {
		return model.Voucher{}, err
	}
	v.Type = model.VoucherType(typ)
	return v, nil
}

func (r vouchers) List(ctx context.Context) ([]model.Voucher, error) {
	rows, err := r.q.Query(ctx, `select code, type, value, min_amount, active, created_at from vouchers order by created_at, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r vouchers) Get(ctx context.Context, code string) (model.Voucher, error) {
	v, err := scanVoucher(r.q.QueryRow(ctx,
		`select code, type, value, min_amount, active, created_at from vouchers where upper(code) = upper($1)`, code))
	return v, mapErr(err)
}

func (r vouchers) Create(ctx context.Context, v model.Voucher) error {
	_, err := r.q.Exec(ctx, `
		insert into vouchers (code, type, value, min_amount, active, created_at) values ($1, $2, $3, $4, $5, $6)
	`, v.Code, string(v.Type), v.Value, v.Min, v.Active, v.CreatedAt)
	return mapErr(err)
}

func (r vouchers) Save(ctx context.Context, v model.Voucher) error {
	tag, err := r.q.Exec(ctx, `
		update vouchers set type = $2, value = $3, min_amount = $4, active = $5 where upper(code) = upper($1)
	`, v.Code, string(v.Type), v.Value, v.Min, v.Active)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}

func (r vouchers) Delete(ctx context.Context, code string) error {
	tag, err := r.q.Exec(ctx, `delete from vouchers where upper(code) = upper($1)`, code)
	if err != nil {
		return err
	}
	return requireAffected(tag)
}
