// Package store defines the repositories that own all service state. Implementations live
// in store/memory (single writer, for demos and tests) and store/postgres.
package store

import (
	"context"
	"errors"
	"time"

	"restaurant-order-service/internal/model"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrConflict  = errors.New("store: version conflict")
	ErrDuplicate = errors.New("store: duplicate key")
)

type OrderFilter struct {
	Statuses   []model.OrderStatus
	Types      []model.OrderType
	CustomerID string
	RiderID    string
	// Unassigned keeps only orders without a rider.
	Unassigned  bool
	Since       time.Time
	Until       time.Time
	OldestFirst bool
	Limit       int
}

// Matches applies the filter to a single order. Sorting and limiting are left to List.
func (f OrderFilter) Matches(o *model.Order) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, o.Type) {
		return false
	}
	if f.CustomerID != "" && o.CustomerID != f.CustomerID {
		return false
	}
	if f.RiderID != "" && o.RiderID != f.RiderID {
		return false
	}
	if f.Unassigned && o.RiderID != "" {
		return false
	}
	if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !o.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

func containsStatus(list []model.OrderStatus, s model.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsType(list []model.OrderType, t model.OrderType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

type Orders interface {
	Create(ctx context.Context, o *model.Order) error
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, f OrderFilter) ([]*model.Order, error)
	Count(ctx context.Context) (int64, error)
	// Update stores o only if the persisted version still equals expectedVersion, then
	// sets o.Version to the new version. A stale version yields ErrConflict.
	Update(ctx context.Context, o *model.Order, expectedVersion int64) error
}

type Menu interface {
	List(ctx context.Context) ([]*model.MenuItem, error)
	Get(ctx context.Context, id string) (*model.MenuItem, error)
	Save(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id string) error
}

type Sets interface {
	List(ctx context.Context) ([]*model.FoodSet, error)
	Get(ctx context.Context, id string) (*model.FoodSet, error)
	Save(ctx context.Context, set *model.FoodSet) error
	Delete(ctx context.Context, id string) error
}

type Discounts interface {
	List(ctx context.Context, target model.DiscountTarget) (map[string]model.Discount, error)
	// Get returns the zero Discount when none is configured.
	Get(ctx context.Context, target model.DiscountTarget, id string) (model.Discount, error)
	Set(ctx context.Context, target model.DiscountTarget, id string, d model.Discount) error
	Delete(ctx context.Context, target model.DiscountTarget, id string) error
}

type Ingredients interface {
	List(ctx context.Context) ([]*model.Ingredient, error)
	Get(ctx context.Context, id string) (*model.Ingredient, error)
	Save(ctx context.Context, ing *model.Ingredient) error
	AddTransaction(ctx context.Context, tx model.InventoryTransaction) error
	// Transactions lists the newest entries first; an empty ingredientID lists all.
	Transactions(ctx context.Context, ingredientID string, limit int) ([]model.InventoryTransaction, error)
}

type Vouchers interface {
	List(ctx context.Context) ([]model.Voucher, error)
	Get(ctx context.Context, code string) (model.Voucher, error)
	// Create fails with ErrDuplicate when the code exists, compared case-insensitively.
	Create(ctx context.Context, v model.Voucher) error
	Save(ctx context.Context, v model.Voucher) error
	Delete(ctx context.Context, code string) error
}

type Users interface {
	Create(ctx context.Context, u *model.User) error
	Get(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// FindByLogin resolves a username, email or phone number.
	FindByLogin(ctx context.Context, identifier string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

// Scopes holds the per storage scope cart, favorites and voucher selection.
type Scopes interface {
	Cart(ctx context.Context, scope string) (model.Cart, error)
	SaveCart(ctx context.Context, cart model.Cart) error
	Favorites(ctx context.Context, scope string) ([]string, error)
	SaveFavorites(ctx context.Context, scope string, menuItemIDs []string) error
	SelectedVoucher(ctx context.Context, scope string) (string, error)
	// SelectVoucher stores code for scope; an empty code clears the selection.
	SelectVoucher(ctx context.Context, scope, code string) error
	// ClearVoucherSelections drops code from every scope selecting it and returns those scopes.
	ClearVoucherSelections(ctx context.Context, code string) ([]string, error)
}

type Repositories interface {
	Orders() Orders
	Menu() Menu
	Sets() Sets
	Discounts() Discounts
	Ingredients() Ingredients
	Vouchers() Vouchers
	Users() Users
	Scopes() Scopes
}

type Store interface {
	Repositories
	// InTx runs fn against repositories whose writes commit together. When fn returns an
	// error nothing it wrote is kept. fn must only use the repositories it is given.
	InTx(ctx context.Context, fn func(r Repositories) error) error
	Close()
}
