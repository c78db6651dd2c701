package memory

import (
	"context"
	"strings"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type users struct{ v view }

func (r users) Create(ctx context.Context, u *model.User) error {
	return r.v.write(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Username, u.Username) {
				return store.ErrDuplicate
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		st.userIDs = append(st.userIDs, u.ID)
		return nil
	})
}

func (r users) Get(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID == id })
}

func (r users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r users) FindByLogin(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, store.ErrNotFound
	}
	return r.find(func(u *model.User) bool {
		return strings.EqualFold(u.Username, identifier) ||
			(u.Email != "" && strings.EqualFold(u.Email, identifier)) ||
			(u.Phone != "" && u.Phone == identifier)
	})
}

func (r users) List(ctx context.Context) ([]*model.User, error) {
	var out []*model.User
	err := r.v.read(func(st *state) error {
		for _, id := range st.userIDs {
			cp := *st.users[id]
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

func (r users) find(match func(u *model.User) bool) (*model.User, error) {
	var out *model.User
	err := r.v.read(func(st *state) error {
		for _, id := range st.userIDs {
			if u := st.users[id]; match(u) {
				cp := *u
				out = &cp
				return nil
			}
		}
		return store.ErrNotFound
	})
	return out, err
}
