package pricing

import "restaurant-order-service/internal/model"

// VoucherQualifies reports whether v may discount an order with the given subtotal.
func VoucherQualifies(v model.Voucher, subtotal float64) bool {
	return v.Active && subtotal >= v.Min
}

// ApplicableVouchers filters vouchers down to the ones that qualify for subtotal,
// keeping their order.
func ApplicableVouchers(vouchers []model.Voucher, subtotal float64) []model.Voucher {
	out := make([]model.Voucher, 0, len(vouchers))
	for _, v := range vouchers {
		if VoucherQualifies(v, subtotal) {
			out = append(out, v)
		}
	}
	return out
}
