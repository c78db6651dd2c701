// Package postgres implements store.Store on a pgx pool. Order writes are conditional on
// the version column; rows read inside InTx are locked with FOR UPDATE.
package postgres

import (
	"context"
	"errors"

	"restaurant-order-service/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	repos
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: repos{q: pool}}
}

func (s *Store) InTx(ctx context.Context, fn func(r store.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(repos{q: tx, locking: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

type repos struct {
	q       querier
	locking bool
}

func (r repos) Orders() store.Orders           { return orders(r) }
func (r repos) Menu() store.Menu               { return menu(r) }
func (r repos) Sets() store.Sets               { return sets(r) }
func (r repos) Discounts() store.Discounts     { return discounts(r) }
func (r repos) Ingredients() store.Ingredients { return ingredients(r) }
func (r repos) Vouchers() store.Vouchers       { return vouchers(r) }
func (r repos) Users() store.Users             { return users(r) }
func (r repos) Scopes() store.Scopes           { return scopes(r) }

func (r repos) forUpdate() string {
	if r.locking {
		return " for update"
	}
	return ""
}

var _ store.Store = (*Store)(nil)

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}

func requireAffected(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
