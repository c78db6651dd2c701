package postgres

import (
	"context"

	"restaurant-order-service/internal/model"
)

type users repos

const userColumns = `id, username, name, email, phone, role, password_hash, created_at`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.Phone, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}

func (r users) Create(ctx context.Context, u *model.User) error {
	_, err := r.q.Exec(ctx, `insert into users (`+userColumns+`) values ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Name, u.Email, u.Phone, string(u.Role), u.PasswordHash, u.CreatedAt)
	return mapErr(err)
}

func (r users) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `select `+userColumns+` from users where id = $1`, id))
	return u, mapErr(err)
}

func (r users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `select `+userColumns+` from users where lower(username) = lower($1)`, username))
	return u, mapErr(err)
}

func (r users) FindByLogin(ctx context.Context, identifier string) (*model.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `
		select `+userColumns+` from users
		where $1 <> '' and (lower(username) = lower($1) or (email <> '' and lower(email) = lower($1)) or (phone <> '' and phone = $1))
		order by case when lower(username) = lower($1) then 0 else 1 end
		limit 1
	`, identifier))
	return u, mapErr(err)
}

func (r users) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.q.Query(ctx, `select `+userColumns+` from users order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
