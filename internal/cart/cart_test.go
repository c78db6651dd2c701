package cart

import (
	"context"
	"testing"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store/memory"
	"restaurant-order-service/internal/voucher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Menu().Save(ctx, &model.MenuItem{ID: "menu_padthai", Name: "Pad Thai", Price: 120, Available: true}))
	require.NoError(t, st.Menu().Save(ctx, &model.MenuItem{ID: "menu_tea", Name: "Thai Tea", Price: 45, Available: true}))
	require.NoError(t, st.Menu().Save(ctx, &model.MenuItem{ID: "menu_off", Name: "Off Menu", Price: 10}))
	vouchers := voucher.NewService(st, nil, nil, zap.NewNop())
	return NewService(st, vouchers, nil, 30), st
}

func TestAddAndQuantities(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	const scope = "user:alice"

	_, err := svc.Add(ctx, scope, "menu_padthai", 0)
	require.NoError(t, err)
	cart, err := svc.Add(ctx, scope, "menu_padthai", 1)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	cart, err = svc.Add(ctx, scope, "menu_tea", 3)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 2)

	cart, err = svc.SetQuantity(ctx, scope, "menu_tea", 0)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)

	_, err = svc.SetQuantity(ctx, scope, "menu_tea", 2)
	assert.True(t, apperr.HasCode(err, apperr.ErrMenuItemNotFound))

	_, err = svc.Add(ctx, scope, "menu_off", 1)
	assert.True(t, apperr.HasCode(err, apperr.ErrMenuItemUnavailable))

	require.NoError(t, svc.Clear(ctx, scope))
	view, err := svc.Get(ctx, scope, model.OrderTypeDelivery)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, 30.0, view.Quote.Total)
}

func TestScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Add(ctx, model.StorageScope("alice"), "menu_padthai", 1)
	require.NoError(t, err)

	view, err := svc.Get(ctx, model.StorageScope("demo_customer"), model.OrderTypeTakeaway)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	view, err = svc.Get(ctx, model.StorageScope(""), model.OrderTypeTakeaway)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestQuoteUsesSelectedVoucher(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)
	const scope = "guest"
	require.NoError(t, st.Vouchers().Create(ctx, model.Voucher{Code: "SAVE10", Type: model.VoucherPercent, Value: 10, Min: 100, Active: true}))

	_, err := svc.Add(ctx, scope, "menu_padthai", 2)
	require.NoError(t, err)
	require.NoError(t, st.Scopes().SelectVoucher(ctx, scope, "SAVE10"))

	view, err := svc.Get(ctx, scope, model.OrderTypeDelivery)
	require.NoError(t, err)
	assert.Equal(t, 240.0, view.Quote.Subtotal)
	assert.Equal(t, 24.0, view.Quote.VoucherDiscount)
	assert.Equal(t, 246.0, view.Quote.Total)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	added, err := svc.ToggleFavorite(ctx, "guest", "menu_tea")
	require.NoError(t, err)
	assert.True(t, added)

	favs, err := svc.Favorites(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, []string{"menu_tea"}, favs)

	added, err = svc.ToggleFavorite(ctx, "guest", "menu_tea")
	require.NoError(t, err)
	assert.False(t, added)

	favs, err = svc.Favorites(ctx, "guest")
	require.NoError(t, err)
	assert.Empty(t, favs)

	_, err = svc.ToggleFavorite(ctx, "guest", "menu_ghost")
	assert.True(t, apperr.HasCode(err, apperr.ErrMenuItemNotFound))
}
