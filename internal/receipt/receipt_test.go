package receipt

import (
	"bytes"
	"testing"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderReceipt(t *testing.T) {
	paid := time.Date(2024, 5, 15, 8, 30, 0, 0, time.UTC)
	o := &model.Order{
		ID:   "order_0123456789abcdef",
		Type: model.OrderTypeDelivery,
		Items: []model.LineItem{
			{MenuItemID: "menu_padthai", Name: "Pad Thai", Price: 120, Quantity: 2},
			{MenuItemID: "menu_tea", Name: "Café Thai Tea", Price: 40, Quantity: 1},
		},
		Address:         "99 Sukhumvit Rd",
		Subtotal:        280,
		DeliveryFee:     30,
		VoucherCode:     "SAVE10",
		VoucherDiscount: 28,
		Total:           282,
		PaymentMethod:   model.PaymentQR,
		PaymentStatus:   model.PaymentStatusPaid,
		CreatedAt:       paid.Add(-time.Hour),
		PaidAt:          &paid,
	}

	out, err := Order(o, Header{Name: "Delicious Restaurant", Phone: "02-123-4567"}, time.UTC)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Equal(t, "receipt-89abcdef.pdf", Filename(o))
}

func TestDailyReport(t *testing.T) {
	r := &report.Daily{
		Date:           "2024-05-15",
		TotalOrders:    2,
		Completed:      1,
		Revenue:        150,
		PaymentMethods: []report.Count{{Key: "qr", Count: 1}},
		TopItems:       []report.TopItem{{Name: "Pad Thai", Quantity: 1, Revenue: 120}},
		Orders:         []*model.Order{{ID: "order_1", Total: 150, Status: model.StatusCompleted}},
	}
	out, err := Daily(r, Header{Name: "Delicious Restaurant"}, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "23456789", shortID("order_123456789"))
}
