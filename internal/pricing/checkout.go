package pricing

import (
	"restaurant-order-service/internal/model"

	"github.com/shopspring/decimal"
)

type QuoteInput struct {
	Lines       []model.LineItem
	OrderType   model.OrderType
	DeliveryFee float64
	// Voucher is the selected voucher, nil when the customer picked none.
	Voucher *model.Voucher
}

type Quote struct {
	Subtotal        float64                `json:"subtotal"`
	DeliveryFee     float64                `json:"deliveryFee"`
	VoucherCode     string                 `json:"voucherCode,omitempty"`
	VoucherDiscount float64                `json:"voucherDiscount"`
	Voucher         *model.VoucherSnapshot `json:"voucher"`
	Total           float64                `json:"total"`
}

// ComputeQuote prices a checkout:
//
//  1. subtotal is the sum of snapshotted line price × quantity
//  2. the flat delivery fee applies to delivery orders only
//  3. the voucher discounts the subtotal when it is active and the subtotal meets its minimum
//  4. total = max(0, subtotal - voucherDiscount) + deliveryFee
//
// Catalog item and set discounts do not take part here; the lines already carry whatever
// unit price the caller snapshotted.
func ComputeQuote(in QuoteInput) Quote {
	subtotal := decimal.Zero
	for _, line := range in.Lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	fee := decimal.Zero
	if in.OrderType == model.OrderTypeDelivery {
		fee = decimal.NewFromFloat(in.DeliveryFee)
	}

	q := Quote{Subtotal: subtotal.InexactFloat64(), DeliveryFee: fee.InexactFloat64()}

	discount := decimal.Zero
	if in.Voucher != nil && VoucherQualifies(*in.Voucher, q.Subtotal) {
		after := decimal.NewFromFloat(ApplyDiscount(q.Subtotal, in.Voucher.AsDiscount()))
		// Rounding the discounted price can push it above a fractional subtotal, which makes
		// the discount negative; it is kept as is so the total equals the rounded price.
		discount = subtotal.Sub(after)
		q.VoucherCode = in.Voucher.Code
		q.Voucher = in.Voucher.Snapshot()
	}
	q.VoucherDiscount = discount.InexactFloat64()

	q.Total = decimal.Max(decimal.Zero, subtotal.Sub(discount)).Add(fee).InexactFloat64()
	return q
}
