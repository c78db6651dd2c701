package postgres

import (
	"testing"
	"time"

	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestOrderFilterSQL(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		filter    store.OrderFilter
		wantWhere string
		wantArgs  int
	}{
		{name: "empty", filter: store.OrderFilter{}, wantWhere: ""},
		{
			name: "available jobs",
			filter: store.OrderFilter{
				Statuses:   []model.OrderStatus{model.StatusReady},
				Types:      []model.OrderType{model.OrderTypeDelivery, model.OrderTypeTakeaway},
				Unassigned: true,
			},
			wantWhere: " where status = any($1) and type = any($2) and rider_id = ''",
			wantArgs:  2,
		},
		{
			name:      "customer since",
			filter:    store.OrderFilter{CustomerID: "u1", Since: since, Until: since.AddDate(0, 0, 1)},
			wantWhere: " where customer_id = $1 and created_at >= $2 and created_at < $3",
			wantArgs:  3,
		},
		{
			name:      "rider",
			filter:    store.OrderFilter{RiderID: "r1", Statuses: []model.OrderStatus{model.StatusDelivering}},
			wantWhere: " where status = any($1) and rider_id = $2",
			wantArgs:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := orderFilterSQL(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestForUpdateOnlyInsideTx(t *testing.T) {
	assert.Empty(t, repos{}.forUpdate())
	assert.Equal(t, " for update", repos{locking: true}.forUpdate())
}
