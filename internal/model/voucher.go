package model

import "time"

type VoucherType string

const (
	VoucherPercent VoucherType = "percent"
	VoucherFixed   VoucherType = "fixed"
)

func (t VoucherType) IsValid() bool {
	return t == VoucherPercent || t == VoucherFixed
}

type Voucher struct {
	Code      string      `json:"code"`
	Type      VoucherType `json:"type"`
	Value     float64     `json:"value"`
	Min       float64     `json:"min"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AsDiscount expresses the voucher as an active discount on a subtotal.
func (v Voucher) AsDiscount() Discount {
	return Discount{Kind: DiscountKind(v.Type), Value: v.Value, Active: true}
}

func (v Voucher) Snapshot() *VoucherSnapshot {
	return &VoucherSnapshot{Code: v.Code, Type: v.Type, Value: v.Value, Min: v.Min}
}
