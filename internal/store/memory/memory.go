// Package memory is a single-writer, process-local implementation of store.Store.
// Transactions work on a copy of the state that replaces the live state on success.
package memory

import (
	"context"
	"sync"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"
)

type state struct {
	orders      map[string]*model.Order
	orderIDs    []string
	menu        map[string]*model.MenuItem
	menuIDs     []string
	sets        map[string]*model.FoodSet
	setIDs      []string
	discounts   map[model.DiscountTarget]map[string]model.Discount
	ingredients map[string]*model.Ingredient
	ingIDs      []string
	inventoryTx []model.InventoryTransaction
	vouchers    []model.Voucher
	users       map[string]*model.User
	userIDs     []string
	carts       map[string]model.Cart
	favorites   map[string][]string
	selected    map[string]string
}

func newState() *state {
	return &state{
		orders:      map[string]*model.Order{},
		menu:        map[string]*model.MenuItem{},
		sets:        map[string]*model.FoodSet{},
		discounts:   map[model.DiscountTarget]map[string]model.Discount{model.DiscountTargetItem: {}, model.DiscountTargetSet: {}},
		ingredients: map[string]*model.Ingredient{},
		users:       map[string]*model.User{},
		carts:       map[string]model.Cart{},
		favorites:   map[string][]string{},
		selected:    map[string]string{},
	}
}

// clone copies everything a transaction may mutate. Stored values are already private
// copies, so pointer maps copy the entries shallowly and repositories clone on write.
// Cart lines and favorites slices are shared with the live state too: a repository must
// replace a stored slice, never modify it in place, or a rolled back draft leaks into it.
func (s *state) clone() *state {
	cp := &state{
		orders:      make(map[string]*model.Order, len(s.orders)),
		orderIDs:    append([]string(nil), s.orderIDs...),
		menu:        make(map[string]*model.MenuItem, len(s.menu)),
		menuIDs:     append([]string(nil), s.menuIDs...),
		sets:        make(map[string]*model.FoodSet, len(s.sets)),
		setIDs:      append([]string(nil), s.setIDs...),
		discounts:   map[model.DiscountTarget]map[string]model.Discount{},
		ingredients: make(map[string]*model.Ingredient, len(s.ingredients)),
		ingIDs:      append([]string(nil), s.ingIDs...),
		inventoryTx: append([]model.InventoryTransaction(nil), s.inventoryTx...),
		vouchers:    append([]model.Voucher(nil), s.vouchers...),
		users:       make(map[string]*model.User, len(s.users)),
		userIDs:     append([]string(nil), s.userIDs...),
		carts:       make(map[string]model.Cart, len(s.carts)),
		favorites:   make(map[string][]string, len(s.favorites)),
		selected:    make(map[string]string, len(s.selected)),
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	for k, v := range s.menu {
		cp.menu[k] = v
	}
	for k, v := range s.sets {
		cp.sets[k] = v
	}
	for target, entries := range s.discounts {
		m := make(map[string]model.Discount, len(entries))
		for k, v := range entries {
			m[k] = v
		}
		cp.discounts[target] = m
	}
	for k, v := range s.ingredients {
		cp.ingredients[k] = v
	}
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.carts {
		cp.carts[k] = v
	}
	for k, v := range s.favorites {
		cp.favorites[k] = v
	}
	for k, v := range s.selected {
		cp.selected[k] = v
	}
	return cp
}

type Store struct {
	mu    sync.RWMutex
	state *state
	view
}

func New() *Store {
	s := &Store{state: newState()}
	s.view = view{store: s}
	return s
}

func (s *Store) InTx(ctx context.Context, fn func(r store.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(view{store: s, draft: draft}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

func (s *Store) Close() {}

// view routes repository calls either to the live state under the store lock or, inside
// InTx, to the draft state whose lock is already held.
type view struct {
	store *Store
	draft *state
}

func (v view) read(fn func(st *state) error) error {
	if v.draft != nil {
		return fn(v.draft)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.state)
}

func (v view) write(fn func(st *state) error) error {
	if v.draft != nil {
		return fn(v.draft)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func (v view) Orders() store.Orders           { return orders{v} }
func (v view) Menu() store.Menu               { return menu{v} }
func (v view) Sets() store.Sets               { return sets{v} }
func (v view) Discounts() store.Discounts     { return discounts{v} }
func (v view) Ingredients() store.Ingredients { return ingredients{v} }
func (v view) Vouchers() store.Vouchers       { return vouchers{v} }
func (v view) Users() store.Users             { return users{v} }
func (v view) Scopes() store.Scopes           { return scopes{v} }

var _ store.Store = (*Store)(nil)

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
