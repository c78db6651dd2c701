package model

import "time"

type LineItem struct {
	MenuItemID string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Image      string  `json:"image,omitempty"`
}

// VoucherSnapshot freezes the voucher terms an order was priced with.
type VoucherSnapshot struct {
	Code  string      `json:"code"`
	Type  VoucherType `json:"type"`
	Value float64     `json:"value"`
	Min   float64     `json:"min"`
}

type Order struct {
	ID              string           `json:"id"`
	CustomerID      string           `json:"customerId"`
	CustomerName    string           `json:"customerName"`
	Items           []LineItem       `json:"items"`
	Type            OrderType        `json:"type"`
	Address         string           `json:"address"`
	TableNumber     string           `json:"tableNumber"`
	Lat             *float64         `json:"lat"`
	Lng             *float64         `json:"lng"`
	RiderLat        *float64         `json:"riderLat,omitempty"`
	RiderLng        *float64         `json:"riderLng,omitempty"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	PaymentStatus   PaymentStatus    `json:"paymentStatus"`
	Status          OrderStatus      `json:"status"`
	Subtotal        float64          `json:"subtotal"`
	DeliveryFee     float64          `json:"deliveryFee"`
	VoucherCode     string           `json:"voucherCode,omitempty"`
	VoucherDiscount float64          `json:"voucherDiscount"`
	Voucher         *VoucherSnapshot `json:"voucher"`
	Total           float64          `json:"total"`
	EstimatedTime   int              `json:"estimatedTime"`
	PreparedBy      string           `json:"preparedBy,omitempty"`
	ServedBy        string           `json:"servedBy,omitempty"`
	ProcessedBy     string           `json:"processedBy,omitempty"`
	RiderID         string           `json:"riderId,omitempty"`
	CreatedAt       time.Time        `json:"timestamp"`
	PreparedAt      *time.Time       `json:"preparedAt,omitempty"`
	ReadyAt         *time.Time       `json:"readyAt,omitempty"`
	AcceptedAt      *time.Time       `json:"acceptedAt,omitempty"`
	ServedAt        *time.Time       `json:"servedAt,omitempty"`
	PaidAt          *time.Time       `json:"paidAt,omitempty"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Version         int64            `json:"version"`
}

// IsPaid reports whether the payment flag has been settled.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Items = append([]LineItem(nil), o.Items...)
	cp.Lat = cloneFloat(o.Lat)
	cp.Lng = cloneFloat(o.Lng)
	cp.RiderLat = cloneFloat(o.RiderLat)
	cp.RiderLng = cloneFloat(o.RiderLng)
	if o.Voucher != nil {
		v := *o.Voucher
		cp.Voucher = &v
	}
	cp.PreparedAt = cloneTime(o.PreparedAt)
	cp.ReadyAt = cloneTime(o.ReadyAt)
	cp.AcceptedAt = cloneTime(o.AcceptedAt)
	cp.ServedAt = cloneTime(o.ServedAt)
	cp.PaidAt = cloneTime(o.PaidAt)
	cp.CompletedAt = cloneTime(o.CompletedAt)
	return &cp
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
