// Package pricing holds the side-effect free price arithmetic shared by checkout and the
// catalog preview. Amounts are whole currency units; intermediate math uses decimals so
// percentages such as 10% of 240 land exactly on 216.
package pricing

import (
	"restaurant-order-service/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ApplyDiscount returns price after d, rounded to the nearest whole unit.
// Inactive or kind-less discounts only round. Discounted results never go below zero.
func ApplyDiscount(price float64, d model.Discount) float64 {
	base := decimal.NewFromFloat(price)
	if !d.Active {
		return base.Round(0).InexactFloat64()
	}

	value := decimal.NewFromFloat(d.Value)
	var final decimal.Decimal
	switch d.Kind {
	case model.DiscountPercent:
		final = base.Mul(decimal.NewFromInt(1).Sub(value.Div(hundred)))
	case model.DiscountFixed:
		final = base.Sub(value)
	default:
		return base.Round(0).InexactFloat64()
	}

	final = final.Round(0)
	if final.IsNegative() {
		return 0
	}
	return final.InexactFloat64()
}

// ItemPrice is the catalog preview price of a single menu item.
func ItemPrice(item model.MenuItem, d model.Discount) float64 {
	return ApplyDiscount(item.Price, d)
}

// Preview pairs a base price with its discounted final price.
type Preview struct {
	Base  float64 `json:"base"`
	Final float64 `json:"final"`
}
