// Package snapshot mirrors collections into JSON documents under the storage key layout
// of the original browser client. The mirror is best effort: the store stays the source
// of truth and a failed write is only logged.
package snapshot

import "strings"

const (
	KeyMenuItems    = "restaurant_menu_items"
	KeyIngredients  = "restaurant_ingredients"
	KeyOrders       = "restaurant_orders"
	KeySets         = "restaurant_sets"
	KeyDiscounts    = "restaurant_discounts"
	KeyVouchers     = "restaurant_vouchers"
	KeyUsers        = "restaurant_users"
	cartPrefix      = "restaurant_cart:"
	favoritesPrefix = "restaurant_favorites:"
	selectedPrefix  = "restaurant_selected_voucher:"
)

func CartKey(scope string) string            { return cartPrefix + scope }
func FavoritesKey(scope string) string       { return favoritesPrefix + scope }
func SelectedVoucherKey(scope string) string { return selectedPrefix + scope }

// scopeOf splits a scoped key into its prefix and scope.
func scopeOf(key string) (prefix, scope string, ok bool) {
	for _, p := range []string{cartPrefix, favoritesPrefix, selectedPrefix} {
		if strings.HasPrefix(key, p) {
			return p, strings.TrimPrefix(key, p), true
		}
	}
	return "", "", false
}

// Marker is told which snapshot documents went stale.
type Marker interface {
	MarkDirty(keys ...string)
}

type Nop struct{}

func (Nop) MarkDirty(...string) {}
