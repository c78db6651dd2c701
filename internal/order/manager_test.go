package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

var (
	alice = Actor{UserID: "u_alice", Username: "alice", Name: "Alice", Role: model.RoleCustomer}
	chef  = Actor{UserID: "u_chef", Username: "chef1", Name: "Chef", Role: model.RoleChef}
	staff = Actor{UserID: "u_staff", Username: "staff1", Name: "Staff", Role: model.RoleStaff}
	rider = Actor{UserID: "u_rider", Username: "rider1", Name: "Rider", Role: model.RoleRider}
)

type fixture struct {
	store *memory.Store
	pub   *recorder
	mgr   *Manager
}

func newFixture(t *testing.T, cfg Config, opts ...Option) fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Menu().Save(ctx, &model.MenuItem{
		ID: "menu_padthai", Name: "Pad Thai", Category: model.CategoryMain, Price: 120, Available: true,
		IngredientsUsage: map[string]float64{"ing_shrimp": 0.12},
	}))
	require.NoError(t, st.Menu().Save(ctx, &model.MenuItem{ID: "menu_soldout", Name: "Sold Out", Price: 80}))
	require.NoError(t, st.Ingredients().Save(ctx, &model.Ingredient{ID: "ing_shrimp", Name: "Shrimp", Stock: 50, Unit: "kg", MinStock: 5}))
	require.NoError(t, st.Vouchers().Create(ctx, model.Voucher{Code: "SAVE10", Type: model.VoucherPercent, Value: 10, Min: 100, Active: true}))
	for i, id := range []string{rider.UserID, "u_rider2"} {
		require.NoError(t, st.Users().Create(ctx, &model.User{ID: id, Username: fmt.Sprintf("rider%d", i+1), Role: model.RoleRider}))
	}

	if cfg.DeliveryFee == 0 {
		cfg.DeliveryFee = 30
	}
	pub := &recorder{}
	return fixture{store: st, pub: pub, mgr: NewManager(st, pub, nil, zap.NewNop(), cfg, opts...)}
}

func (f fixture) checkout(t *testing.T, req CheckoutRequest) *model.Order {
	t.Helper()
	if req.Actor.UserID == "" {
		req.Actor = alice
	}
	if req.OrderType == "" {
		req.OrderType = model.OrderTypeDelivery
		req.Address = "1 Sukhumvit Rd"
	}
	if len(req.Items) == 0 {
		req.Items = []ItemRequest{{MenuItemID: "menu_padthai", Quantity: 2}}
	}
	o, err := f.mgr.Checkout(context.Background(), req)
	require.NoError(t, err)
	return o
}

func requireCode(t *testing.T, err error, code apperr.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok, "expected app error, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestDeliveryLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	o := f.checkout(t, CheckoutRequest{})
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, model.PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, model.PaymentCOD, o.PaymentMethod)
	assert.Equal(t, 240.0, o.Subtotal)
	assert.Equal(t, 270.0, o.Total)
	assert.Equal(t, 30, o.EstimatedTime)

	o, err := f.mgr.StartCooking(ctx, chef, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, o.Status)
	assert.Equal(t, "chef1", o.PreparedBy)
	require.NotNil(t, o.PreparedAt)

	o, err = f.mgr.FinishCooking(ctx, chef, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReady, o.Status)

	jobs, err := f.mgr.AvailableJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	o, err = f.mgr.AcceptDelivery(ctx, rider, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivering, o.Status)
	assert.Equal(t, rider.UserID, o.RiderID)

	current, err := f.mgr.CurrentDelivery(ctx, rider.UserID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, o.ID, current.ID)

	o, err = f.mgr.CompleteDelivery(ctx, rider, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, o.Status)
	assert.Equal(t, int64(5), o.Version)

	history, err := f.mgr.DeliveryHistory(ctx, rider.UserID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.Equal(t, []events.Type{
		events.OrderCreated,
		events.OrderStatusUpdated,
		events.OrderStatusUpdated,
		events.OrderStatusUpdated,
		events.OrderStatusUpdated,
	}, f.pub.types())
}

func TestStartCookingDeductsIngredients(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	o := f.checkout(t, CheckoutRequest{})

	_, err := f.mgr.StartCooking(ctx, chef, o.ID)
	require.NoError(t, err)

	ing, err := f.store.Ingredients().Get(ctx, "ing_shrimp")
	require.NoError(t, err)
	assert.InDelta(t, 49.76, ing.Stock, 1e-9)

	txs, err := f.store.Ingredients().Transactions(ctx, "ing_shrimp", 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, model.TransactionOut, txs[0].Kind)
	assert.Equal(t, "order:"+o.ID, txs[0].Reason)
	assert.InDelta(t, 0.24, txs[0].Quantity, 1e-9)
}

func TestStartCookingClampsStockAndRaisesLowStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	require.NoError(t, f.store.Ingredients().Save(ctx, &model.Ingredient{ID: "ing_shrimp", Name: "Shrimp", Stock: 6.1, MinStock: 6}))
	o := f.checkout(t, CheckoutRequest{Items: []ItemRequest{{MenuItemID: "menu_padthai", Quantity: 100}}})

	_, err := f.mgr.StartCooking(ctx, chef, o.ID)
	require.NoError(t, err)

	ing, err := f.store.Ingredients().Get(ctx, "ing_shrimp")
	require.NoError(t, err)
	assert.Equal(t, 0.0, ing.Stock)
	assert.Contains(t, f.pub.types(), events.InventoryLowStock)
}

func TestStartCookingIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	o := f.checkout(t, CheckoutRequest{})

	_, err := f.mgr.StartCooking(ctx, chef, o.ID)
	require.NoError(t, err)
	_, err = f.mgr.StartCooking(ctx, chef, o.ID)
	requireCode(t, err, apperr.ErrInvalidState)

	ing, err := f.store.Ingredients().Get(ctx, "ing_shrimp")
	require.NoError(t, err)
	assert.InDelta(t, 49.76, ing.Stock, 1e-9)
}

func readyOrder(t *testing.T, f fixture, req CheckoutRequest) *model.Order {
	t.Helper()
	ctx := context.Background()
	o := f.checkout(t, req)
	_, err := f.mgr.StartCooking(ctx, chef, o.ID)
	require.NoError(t, err)
	o, err = f.mgr.FinishCooking(ctx, chef, o.ID)
	require.NoError(t, err)
	return o
}

func TestAcceptDeliveryHasSingleWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	o := readyOrder(t, f, CheckoutRequest{})

	const riders = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses []error
	)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := Actor{UserID: fmt.Sprintf("u_rider_%d", i), Role: model.RoleRider}
			_, err := f.mgr.AcceptDelivery(ctx, r, o.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			losses = append(losses, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	require.Len(t, losses, riders-1)
	for _, err := range losses {
		assert.True(t, apperr.HasCode(err, apperr.ErrAlreadyAccepted) || apperr.HasCode(err, apperr.ErrOrderConflict), err.Error())
	}
}

func TestAcceptDeliveryRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	pending := f.checkout(t, CheckoutRequest{})
	_, err := f.mgr.AcceptDelivery(ctx, rider, pending.ID)
	requireCode(t, err, apperr.ErrInvalidState)

	dineIn := readyOrder(t, f, CheckoutRequest{OrderType: model.OrderTypeDineIn, TableNumber: "5"})
	_, err = f.mgr.AcceptDelivery(ctx, rider, dineIn.ID)
	requireCode(t, err, apperr.ErrInvalidState)

	ready := readyOrder(t, f, CheckoutRequest{})
	_, err = f.mgr.AcceptDelivery(ctx, rider, ready.ID)
	require.NoError(t, err)
	_, err = f.mgr.AcceptDelivery(ctx, Actor{UserID: "u_rider2", Role: model.RoleRider}, ready.ID)
	requireCode(t, err, apperr.ErrAlreadyAccepted)
	assert.Equal(t, "Already accepted by another rider", err.Error())

	_, err = f.mgr.AcceptDelivery(ctx, rider, "order_missing")
	requireCode(t, err, apperr.ErrOrderNotFound)
}

func TestAssignRider(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	o := readyOrder(t, f, CheckoutRequest{OrderType: model.OrderTypeTakeaway})

	_, err := f.mgr.AssignRider(ctx, staff, o.ID, "u_nobody")
	requireCode(t, err, apperr.ErrUserNotFound)

	o, err = f.mgr.AssignRider(ctx, staff, o.ID, "u_rider2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivering, o.Status)
	assert.Equal(t, "u_rider2", o.RiderID)

	_, err = f.mgr.CompleteDelivery(ctx, rider, o.ID)
	requireCode(t, err, apperr.ErrNotAssignedRider)
}

func TestRiderLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	o := readyOrder(t, f, CheckoutRequest{})
	_, err := f.mgr.AcceptDelivery(ctx, rider, o.ID)
	require.NoError(t, err)

	_, err = f.mgr.UpdateRiderLocation(ctx, rider, o.ID, 91, 0)
	requireCode(t, err, apperr.ErrValidation)

	o, err = f.mgr.UpdateRiderLocation(ctx, rider, o.ID, 13.75, 100.5)
	require.NoError(t, err)
	require.NotNil(t, o.RiderLat)
	assert.Equal(t, 13.75, *o.RiderLat)
	assert.Equal(t, model.StatusDelivering, o.Status)
	assert.Equal(t, events.OrderRiderLocation, f.pub.types()[len(f.pub.types())-1])
}

func TestServeAndRecordPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	dineIn := readyOrder(t, f, CheckoutRequest{OrderType: model.OrderTypeDineIn, TableNumber: "7"})
	assert.Equal(t, model.PaymentStaff, dineIn.PaymentMethod)
	assert.Equal(t, model.PaymentStatusAwaitingStaff, dineIn.PaymentStatus)

	queue, err := f.mgr.ServeQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)

	served, err := f.mgr.Serve(ctx, staff, dineIn.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusServed, served.Status)
	assert.Equal(t, "staff1", served.ServedBy)

	_, err = f.mgr.RecordPayment(ctx, staff, served.ID, model.PaymentQR)
	requireCode(t, err, apperr.ErrInvalidPaymentMethod)

	paid, err := f.mgr.RecordPayment(ctx, staff, served.ID, model.PaymentCash)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, paid.Status)
	assert.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, model.PaymentCash, paid.PaymentMethod)
	assert.Equal(t, "staff1", paid.ProcessedBy)
	require.NotNil(t, paid.PaidAt)

	takeaway := readyOrder(t, f, CheckoutRequest{OrderType: model.OrderTypeTakeaway})
	delivered, err := f.mgr.Serve(ctx, staff, takeaway.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, delivered.Status)

	_, err = f.mgr.RecordPayment(ctx, staff, f.checkout(t, CheckoutRequest{}).ID, model.PaymentCard)
	requireCode(t, err, apperr.ErrInvalidState)
}

func TestConfirmPayments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	qr := f.checkout(t, CheckoutRequest{PaymentMethod: model.PaymentQR})
	assert.Equal(t, model.PaymentStatusAwaiting, qr.PaymentStatus)

	_, err := f.mgr.ConfirmStaffPayment(ctx, staff, qr.ID)
	requireCode(t, err, apperr.ErrInvalidPaymentMethod)

	confirmed, err := f.mgr.ConfirmQRPayment(ctx, staff, qr.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, model.StatusPending, confirmed.Status)

	_, err = f.mgr.ConfirmQRPayment(ctx, staff, qr.ID)
	requireCode(t, err, apperr.ErrAlreadyPaid)

	counter := f.checkout(t, CheckoutRequest{OrderType: model.OrderTypeDineIn, TableNumber: "3"})
	_, err = f.mgr.ConfirmQRPayment(ctx, staff, counter.ID)
	requireCode(t, err, apperr.ErrInvalidPaymentMethod)
	confirmed, err = f.mgr.ConfirmStaffPayment(ctx, staff, counter.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsPaid())

	assert.Contains(t, f.pub.types(), events.OrderPaymentUpdated)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	admin := Actor{UserID: "u_admin", Username: "admin", Role: model.RoleAdmin}

	o := f.checkout(t, CheckoutRequest{})
	o, err := f.mgr.Cancel(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, o.Status)

	_, err = f.mgr.StartCooking(ctx, chef, o.ID)
	requireCode(t, err, apperr.ErrInvalidState)

	ready := readyOrder(t, f, CheckoutRequest{})
	_, err = f.mgr.Cancel(ctx, admin, ready.ID)
	requireCode(t, err, apperr.ErrInvalidState)
}

func TestCheckoutValidation(t *testing.T) {
	lat, lng := 13.7, 100.5
	tests := []struct {
		name string
		req  CheckoutRequest
		code apperr.ErrorCode
	}{
		{
			name: "empty cart",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeTakeaway},
			code: apperr.ErrCartEmpty,
		},
		{
			name: "delivery without address or coordinates",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeDelivery, Lat: &lat, Items: []ItemRequest{{MenuItemID: "menu_padthai"}}},
			code: apperr.ErrValidation,
		},
		{
			name: "dine-in without table",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeDineIn, Items: []ItemRequest{{MenuItemID: "menu_padthai"}}},
			code: apperr.ErrValidation,
		},
		{
			name: "dine-in with cash on delivery",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeDineIn, TableNumber: "2", PaymentMethod: model.PaymentCOD, Items: []ItemRequest{{MenuItemID: "menu_padthai"}}},
			code: apperr.ErrInvalidPaymentMethod,
		},
		{
			name: "collection method at checkout",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeTakeaway, PaymentMethod: model.PaymentCash, Items: []ItemRequest{{MenuItemID: "menu_padthai"}}},
			code: apperr.ErrInvalidPaymentMethod,
		},
		{
			name: "unavailable item",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeTakeaway, Items: []ItemRequest{{MenuItemID: "menu_soldout"}}},
			code: apperr.ErrMenuItemUnavailable,
		},
		{
			name: "unknown item",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeTakeaway, Items: []ItemRequest{{MenuItemID: "menu_ghost"}}},
			code: apperr.ErrMenuItemUnavailable,
		},
		{
			name: "unknown explicit voucher",
			req:  CheckoutRequest{Actor: alice, OrderType: model.OrderTypeTakeaway, VoucherCode: "nope", Items: []ItemRequest{{MenuItemID: "menu_padthai"}}},
			code: apperr.ErrVoucherNotFound,
		},
		{
			name: "unknown type",
			req:  CheckoutRequest{Actor: alice, OrderType: "drive-thru"},
			code: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Config{})
			_, err := f.mgr.Checkout(context.Background(), tt.req)
			requireCode(t, err, tt.code)

			count, err := f.store.Orders().Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}

	t.Run("delivery with coordinates only", func(t *testing.T) {
		f := newFixture(t, Config{})
		o, err := f.mgr.Checkout(context.Background(), CheckoutRequest{
			Actor:     alice,
			OrderType: model.OrderTypeDelivery,
			Lat:       &lat,
			Lng:       &lng,
			Items:     []ItemRequest{{MenuItemID: "menu_padthai"}},
		})
		require.NoError(t, err)
		require.NotNil(t, o.Lat)
		require.NotNil(t, o.Lng)
		assert.Equal(t, 13.7, *o.Lat)
		assert.Equal(t, 100.5, *o.Lng)
		assert.Empty(t, o.Address)
	})
}

func TestCheckoutFromCartWithSelectedVoucher(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	scope := model.StorageScope(alice.Username)
	require.NoError(t, f.store.Scopes().SaveCart(ctx, model.Cart{Scope: scope, Lines: []model.CartLine{
		{MenuItemID: "menu_padthai", Name: "Pad Thai", Price: 99, Quantity: 2},
	}}))
	require.NoError(t, f.store.Scopes().SelectVoucher(ctx, scope, "SAVE10"))

	o, err := f.mgr.Checkout(ctx, CheckoutRequest{Actor: alice, OrderType: model.OrderTypeDelivery, Address: "1 Silom"})
	require.NoError(t, err)

	assert.Equal(t, 120.0, o.Items[0].Price)
	assert.Equal(t, 240.0, o.Subtotal)
	assert.Equal(t, 24.0, o.VoucherDiscount)
	assert.Equal(t, 246.0, o.Total)
	assert.Equal(t, "SAVE10", o.VoucherCode)
	require.NotNil(t, o.Voucher)
	assert.Equal(t, model.VoucherPercent, o.Voucher.Type)

	cart, err := f.store.Scopes().Cart(ctx, scope)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCheckoutCatalogDiscountMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{CatalogDiscountsAtCheckout: true})
	require.NoError(t, f.store.Discounts().Set(ctx, model.DiscountTargetItem, "menu_padthai", model.Discount{Kind: model.DiscountPercent, Value: 10, Active: true}))

	o := f.checkout(t, CheckoutRequest{OrderType: model.OrderTypeTakeaway})

	assert.Equal(t, 108.0, o.Items[0].Price)
	assert.Equal(t, 216.0, o.Total)
}

func TestCheckoutCapacity(t *testing.T) {
	f := newFixture(t, Config{Capacity: 1})
	f.checkout(t, CheckoutRequest{})

	_, err := f.mgr.Checkout(context.Background(), CheckoutRequest{
		Actor: alice, OrderType: model.OrderTypeTakeaway,
		Items: []ItemRequest{{MenuItemID: "menu_padthai"}},
	})
	requireCode(t, err, apperr.ErrCapacityReached)
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func (m *memoryIdempotency) Claim(_ context.Context, key, orderID string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keys[key]; ok {
		return existing, false, nil
	}
	m.keys[key] = orderID
	return orderID, true, nil
}

func (m *memoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func TestCheckoutIdempotencyKey(t *testing.T) {
	idem := &memoryIdempotency{keys: map[string]string{}}
	f := newFixture(t, Config{}, WithIdempotency(idem))

	first := f.checkout(t, CheckoutRequest{IdempotencyKey: "abc"})
	second := f.checkout(t, CheckoutRequest{IdempotencyKey: "abc"})
	assert.Equal(t, first.ID, second.ID)

	count, err := f.store.Orders().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = f.mgr.Checkout(context.Background(), CheckoutRequest{Actor: alice, OrderType: model.OrderTypeTakeaway, IdempotencyKey: "empty"})
	requireCode(t, err, apperr.ErrCartEmpty)
	assert.NotContains(t, idem.keys, alice.UserID+":empty")
}

func TestReorder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	o := f.checkout(t, CheckoutRequest{})

	cart, skipped, err := f.mgr.Reorder(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	_, _, err = f.mgr.Reorder(ctx, Actor{UserID: "u_bob", Username: "bob", Role: model.RoleCustomer}, o.ID)
	requireCode(t, err, apperr.ErrForbidden)
}

func TestPaymentQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	qr := f.checkout(t, CheckoutRequest{PaymentMethod: model.PaymentQR})
	f.checkout(t, CheckoutRequest{})

	queue, err := f.mgr.PaymentQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, qr.ID, queue[0].ID)
}

func TestMapsLink(t *testing.T) {
	lat, lng := 13.7563, 100.5018
	tests := []struct {
		name  string
		order model.Order
		want  string
	}{
		{"coordinates", model.Order{Lat: &lat, Lng: &lng, Address: "ignored"}, "https://www.google.com/maps/dir/?api=1&destination=13.7563,100.5018"},
		{"address", model.Order{Address: "99 Rama IV & Co"}, "https://www.google.com/maps/dir/?api=1&destination=99%20Rama%20IV%20%26%20Co"},
		{"nothing", model.Order{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapsLink(&tt.order))
		})
	}
}

func TestClockIsUsedForStamps(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, Config{}, WithClock(func() time.Time { return fixed }))

	o := f.checkout(t, CheckoutRequest{})

	assert.Equal(t, fixed, o.CreatedAt)
}
