package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type orders repos

func (r orders) Create(ctx context.Context, o *model.Order) error {
	if o.Version == 0 {
		o.Version = 1
	}
	_, err := r.q.Exec(ctx, `
		insert into orders (id, customer_id, rider_id, status, type, payment_status, created_at, updated_at, version, data)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.CustomerID, o.RiderID, string(o.Status), string(o.Type), string(o.PaymentStatus),
		o.CreatedAt, updatedAt(o), o.Version, o)
	return mapErr(err)
}

func (r orders) Get(ctx context.Context, id string) (*model.Order, error) {
	row := r.q.QueryRow(ctx, `select version, data from orders where id = $1`+repos(r).forUpdate(), id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func (r orders) List(ctx context.Context, f store.OrderFilter) ([]*model.Order, error) {
	where, args := orderFilterSQL(f)
	query := `select version, data from orders` + where
	if f.OldestFirst {
		query += ` order by created_at asc, id asc`
	} else {
		query += ` order by created_at desc, id desc`
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` limit $%d`, len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r orders) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `select count(*) from orders`).Scan(&n)
	return n, err
}

func (r orders) Update(ctx context.Context, o *model.Order, expectedVersion int64) error {
	next := *o
	next.Version = expectedVersion + 1

	tag, err := r.q.Exec(ctx, `
		update orders
		set customer_id = $2, rider_id = $3, status = $4, type = $5, payment_status = $6,
		    updated_at = $7, version = $8, data = $9
		where id = $1 and version = $10
	`, o.ID, o.CustomerID, o.RiderID, string(o.Status), string(o.Type), string(o.PaymentStatus),
		updatedAt(o), next.Version, &next, expectedVersion)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `select exists(select 1 from orders where id = $1)`, o.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	o.Version = next.Version
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		version int64
		o       model.Order
	)
	if err := row.Scan(&version, &o); err != nil {
		return nil, err
	}
	o.Version = version
	return &o, nil
}

func updatedAt(o *model.Order) time.Time {
	if o.UpdatedAt.IsZero() {
		return time.Now().UTC()
	}
	return o.UpdatedAt
}

// orderFilterSQL renders the filter as a WHERE clause with positional arguments.
func orderFilterSQL(f store.OrderFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			statuses = append(statuses, string(s))
		}
		add("status = any($%d)", statuses)
	}
	if len(f.Types) > 0 {
		types := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			types = append(types, string(t))
		}
		add("type = any($%d)", types)
	}
	if f.CustomerID != "" {
		add("customer_id = $%d", f.CustomerID)
	}
	if f.RiderID != "" {
		add("rider_id = $%d", f.RiderID)
	}
	if f.Unassigned {
		clauses = append(clauses, "rider_id = ''")
	}
	if !f.Since.IsZero() {
		add("created_at >= $%d", f.Since)
	}
	if !f.Until.IsZero() {
		add("created_at < $%d", f.Until)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " where " + strings.Join(clauses, " and "), args
}
