package pricing

import (
	"restaurant-order-service/internal/model"

	"github.com/shopspring/decimal"
)

// ComputeSetBasePrice sums item price × quantity over the set. Items missing from menu
// contribute zero; a non-positive quantity counts as one.
func ComputeSetBasePrice(set model.FoodSet, menu map[string]model.MenuItem) float64 {
	total := decimal.Zero
	for _, entry := range set.Items {
		item, ok := menu[entry.MenuItemID]
		if !ok {
			continue
		}
		qty := entry.Quantity
		if qty <= 0 {
			qty = 1
		}
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.InexactFloat64()
}

// SetPrice is the catalog preview of a set: its base price and the price after d.
func SetPrice(set model.FoodSet, menu map[string]model.MenuItem, d model.Discount) Preview {
	base := ComputeSetBasePrice(set, menu)
	return Preview{Base: base, Final: ApplyDiscount(base, d)}
}
