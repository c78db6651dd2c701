package inventory

import (
	"context"
	"testing"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *[]events.Event) {
	t.Helper()
	published := &[]events.Event{}
	pub := events.PublisherFunc(func(_ context.Context, e events.Event) error {
		*published = append(*published, e)
		return nil
	})
	svc := NewService(memory.New(), pub, nil, zap.NewNop())
	return svc, published
}

func floatPtr(v float64) *float64 { return &v }

func TestAdjust(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		adj       Adjustment
		wantStock float64
		wantKind  model.TransactionKind
		wantLow   bool
	}{
		{name: "restock", adj: Adjustment{Delta: 5.5}, wantStock: 15.5, wantKind: model.TransactionIn},
		{name: "use some", adj: Adjustment{Delta: -2.25}, wantStock: 7.75, wantKind: model.TransactionOut},
		{name: "clamped at zero", adj: Adjustment{Delta: -40}, wantStock: 0, wantKind: model.TransactionOut, wantLow: true},
		{name: "set absolute", adj: Adjustment{Set: floatPtr(3)}, wantStock: 3, wantKind: model.TransactionOut, wantLow: true},
		{name: "set negative clamps", adj: Adjustment{Set: floatPtr(-1)}, wantStock: 0, wantKind: model.TransactionOut, wantLow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, published := newService(t)
			ing, err := svc.Create(ctx, IngredientInput{Name: "Shrimp", Stock: 10, Unit: "kg", MinStock: 4})
			require.NoError(t, err)

			got, err := svc.Adjust(ctx, ing.ID, tt.adj, "chef1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStock, got.Stock)

			txs, err := svc.Transactions(ctx, ing.ID, 0)
			require.NoError(t, err)
			require.Len(t, txs, 1)
			assert.Equal(t, tt.wantKind, txs[0].Kind)
			assert.Equal(t, "manual", txs[0].Reason)
			assert.Equal(t, "chef1", txs[0].CreatedBy)

			if tt.wantLow {
				require.Len(t, *published, 1)
				assert.Equal(t, events.InventoryLowStock, (*published)[0].Type)
			} else {
				assert.Empty(t, *published)
			}
		})
	}
}

func TestAdjustWithoutChangeWritesNothing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	ing, err := svc.Create(ctx, IngredientInput{Name: "Rice", Stock: 0, MinStock: 1})
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, ing.ID, Adjustment{Delta: -3}, "chef1")
	require.NoError(t, err)

	txs, err := svc.Transactions(ctx, ing.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAdjustUnknownIngredient(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Adjust(context.Background(), "ing_ghost", Adjustment{Delta: 1}, "chef1")
	assert.True(t, apperr.HasCode(err, apperr.ErrIngredientNotFound))
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Create(ctx, IngredientInput{Name: "Shrimp", Stock: 2, MinStock: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, IngredientInput{Name: "Noodles", Stock: 20, MinStock: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, IngredientInput{Name: "Lime", Stock: 5, MinStock: 5})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(low))
	for _, v := range low {
		names = append(names, v.Name)
	}
	assert.ElementsMatch(t, []string{"Shrimp", "Lime"}, names)
}
