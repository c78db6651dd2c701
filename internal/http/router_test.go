package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/cart"
	"restaurant-order-service/internal/catalog"
	"restaurant-order-service/internal/config"
	"restaurant-order-service/internal/http/handlers"
	"restaurant-order-service/internal/inventory"
	"restaurant-order-service/internal/media"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/order"
	"restaurant-order-service/internal/report"
	"restaurant-order-service/internal/storage"
	"restaurant-order-service/internal/store/memory"
	"restaurant-order-service/internal/voucher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type apiFixture struct {
	t       *testing.T
	store   *memory.Store
	objects *storage.MemoryStore
	server  *httptest.Server
	tokens  map[string]string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Menu().Save(ctx, &model.MenuItem{
		ID: "menu_padthai", Name: "Pad Thai", Category: model.CategoryMain, Price: 120, Available: true,
		IngredientsUsage: map[string]float64{"ing_shrimp": 0.1},
	}))
	require.NoError(t, st.Ingredients().Save(ctx, &model.Ingredient{ID: "ing_shrimp", Name: "Shrimp", Stock: 10, Unit: "kg", MinStock: 1}))

	cfg := config.Config{
		Env:            "test",
		JWTSecret:      testSecret,
		TrackingSecret: "tracking-secret",
		RestaurantName: "Test Kitchen",
	}
	logger := zap.NewNop()
	objects := storage.NewMemoryStore("https://cdn.test")
	vouchers := voucher.NewService(st, nil, nil, logger)
	h := &handlers.Handler{
		Logger:    logger,
		Config:    cfg,
		Accounts:  auth.NewAccounts(st, nil, logger, testSecret, time.Hour),
		Orders:    order.NewManager(st, nil, nil, logger, order.Config{DeliveryFee: 30}),
		Catalog:   catalog.NewService(st, nil, logger),
		Inventory: inventory.NewService(st, nil, nil, logger),
		Vouchers:  vouchers,
		Carts:     cart.NewService(st, vouchers, nil, 30),
		Reports:   report.NewService(st, time.UTC),
		Uploads:   media.NewUploader(objects, 1<<20, logger),
	}

	f := &apiFixture{t: t, store: st, objects: objects, tokens: map[string]string{}}
	for _, u := range []*model.User{
		{ID: "u_alice", Username: "alice", Name: "Alice", Role: model.RoleCustomer},
		{ID: "u_bob", Username: "bob", Name: "Bob", Role: model.RoleCustomer},
		{ID: "u_chef", Username: "chef1", Name: "Chef", Role: model.RoleChef},
		{ID: "u_staff", Username: "staff1", Name: "Staff", Role: model.RoleStaff},
		{ID: "u_rider1", Username: "rider1", Name: "Rider One", Role: model.RoleRider},
		{ID: "u_rider2", Username: "rider2", Name: "Rider Two", Role: model.RoleRider},
		{ID: "u_admin", Username: "admin", Name: "Admin", Role: model.RoleAdmin},
	} {
		require.NoError(t, st.Users().Create(ctx, u))
		token, _, err := auth.IssueAccessToken(u, testSecret, time.Hour, time.Now())
		require.NoError(t, err)
		f.tokens[u.Username] = token
	}

	f.server = httptest.NewServer(NewRouter(h, logger, cfg, nil, nil))
	t.Cleanup(f.server.Close)
	return f
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

func (f *apiFixture) do(method, path, user string, body any) (int, envelope) {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(f.t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[user])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(f.t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (f *apiFixture) placeOrder(user string, body map[string]any) model.Order {
	f.t.Helper()
	status, env := f.do(http.MethodPost, "/api/orders", user, body)
	require.Equal(f.t, http.StatusCreated, status, env.Message)
	return decodeData[model.Order](f.t, env)
}

func TestHealth(t *testing.T) {
	f := newAPI(t)
	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestRegisterLoginAndMe(t *testing.T) {
	f := newAPI(t)

	status, env := f.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "carol", "password": "secret1", "name": "Carol",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	session := decodeData[auth.Session](t, env)
	assert.Equal(t, model.RoleCustomer, session.User.Role)

	status, env = f.do(http.MethodPost, "/api/auth/login", "", map[string]any{"identifier": "carol", "password": "wrong1"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error)

	status, env = f.do(http.MethodPost, "/api/auth/register", "", map[string]any{"username": "x", "password": "1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)
	assert.Contains(t, env.Details, "username")

	f.tokens["carol"] = session.Token
	status, env = f.do(http.MethodGet, "/api/me", "carol", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "carol", decodeData[model.User](t, env).Username)

	status, env = f.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error)
}

func TestRolePermissions(t *testing.T) {
	f := newAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		want   int
	}{
		{"customer cannot cook", http.MethodPost, "/api/kitchen/orders/x/start", "alice", http.StatusForbidden},
		{"rider cannot serve", http.MethodPost, "/api/staff/orders/x/serve", "rider1", http.StatusForbidden},
		{"chef cannot open admin", http.MethodGet, "/api/admin/users", "chef1", http.StatusForbidden},
		{"staff cannot place orders", http.MethodPost, "/api/orders", "staff1", http.StatusForbidden},
		{"staff reads inventory", http.MethodGet, "/api/inventory", "staff1", http.StatusOK},
		{"staff cannot adjust stock", http.MethodPost, "/api/inventory/ing_shrimp/adjust", "staff1", http.StatusForbidden},
		{"admin lists users", http.MethodGet, "/api/admin/users", "admin", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := f.do(tt.method, tt.path, tt.user, nil)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestDeliveryFlowOverHTTP(t *testing.T) {
	f := newAPI(t)

	status, env := f.do(http.MethodPost, "/api/cart/items", "alice", map[string]any{"id": "menu_padthai", "quantity": 2})
	require.Equal(t, http.StatusOK, status, env.Message)

	o := f.placeOrder("alice", map[string]any{"orderType": "delivery", "address": "1 Sukhumvit Rd", "paymentMethod": "cod"})
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, 240.0, o.Subtotal)
	assert.Equal(t, 270.0, o.Total)

	status, env = f.do(http.MethodGet, "/api/cart", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeData[cart.View](t, env).Lines)

	status, _ = f.do(http.MethodGet, "/api/orders/"+o.ID, "bob", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = f.do(http.MethodPost, "/api/kitchen/orders/"+o.ID+"/start", "chef1", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	status, _ = f.do(http.MethodPost, "/api/kitchen/orders/"+o.ID+"/finish", "chef1", nil)
	require.Equal(t, http.StatusOK, status)

	status, env = f.do(http.MethodGet, "/api/rider/jobs", "rider1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeData[[]model.Order](t, env), 1)

	status, env = f.do(http.MethodPost, "/api/rider/orders/"+o.ID+"/accept", "rider1", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	accepted := decodeData[struct {
		Order    model.Order `json:"order"`
		MapsLink string      `json:"mapsLink"`
	}](t, env)
	assert.Equal(t, model.StatusDelivering, accepted.Order.Status)
	assert.Contains(t, accepted.MapsLink, "destination=1%20Sukhumvit%20Rd")

	status, env = f.do(http.MethodPost, "/api/rider/orders/"+o.ID+"/accept", "rider2", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_ACCEPTED", env.Error)

	status, env = f.do(http.MethodPost, "/api/rider/orders/"+o.ID+"/complete", "rider2", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "NOT_ASSIGNED_RIDER", env.Error)

	status, env = f.do(http.MethodPost, "/api/rider/orders/"+o.ID+"/complete", "rider1", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, model.StatusCompleted, decodeData[model.Order](t, env).Status)

	ing, err := f.store.Ingredients().Get(context.Background(), "ing_shrimp")
	require.NoError(t, err)
	assert.InDelta(t, 9.8, ing.Stock, 1e-9)
}

func TestCheckoutValidationOverHTTP(t *testing.T) {
	f := newAPI(t)
	items := []map[string]any{{"id": "menu_padthai", "quantity": 1}}

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"unknown type", map[string]any{"orderType": "drone", "items": items}, "VALIDATION_ERROR"},
		{"dine-in cod", map[string]any{"orderType": "dine-in", "tableNumber": "4", "paymentMethod": "cod", "items": items}, "INVALID_PAYMENT_METHOD"},
		{"dine-in without table", map[string]any{"orderType": "dine-in", "items": items}, "VALIDATION_ERROR"},
		{"empty cart", map[string]any{"orderType": "takeaway"}, "CART_EMPTY"},
		{"unknown voucher", map[string]any{"orderType": "takeaway", "voucherCode": "NOPE", "items": items}, "VOUCHER_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := f.do(http.MethodPost, "/api/orders", "alice", tt.body)
			assert.GreaterOrEqual(t, status, 400)
			assert.Equal(t, tt.want, env.Error)
		})
	}
}

func TestGuestCartIsSeparateFromUserCart(t *testing.T) {
	f := newAPI(t)

	status, _ := f.do(http.MethodPost, "/api/cart/items", "", map[string]any{"id": "menu_padthai"})
	require.Equal(t, http.StatusOK, status)

	_, env := f.do(http.MethodGet, "/api/cart?type=takeaway", "", nil)
	guest := decodeData[cart.View](t, env)
	assert.Equal(t, model.GuestScope, guest.Scope)
	require.Len(t, guest.Lines, 1)
	assert.Equal(t, 120.0, guest.Quote.Total)

	_, env = f.do(http.MethodGet, "/api/cart", "alice", nil)
	assert.Empty(t, decodeData[cart.View](t, env).Lines)
}

func TestDineInPaymentOverHTTP(t *testing.T) {
	f := newAPI(t)
	o := f.placeOrder("alice", map[string]any{
		"orderType": "dine-in", "tableNumber": "7",
		"items": []map[string]any{{"id": "menu_padthai", "quantity": 1}},
	})
	assert.Equal(t, model.PaymentStatusAwaitingStaff, o.PaymentStatus)

	for _, step := range []string{"start", "finish"} {
		status, _ := f.do(http.MethodPost, "/api/kitchen/orders/"+o.ID+"/"+step, "chef1", nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, env := f.do(http.MethodPost, "/api/staff/orders/"+o.ID+"/serve", "staff1", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, model.StatusServed, decodeData[model.Order](t, env).Status)

	status, env = f.do(http.MethodPost, "/api/staff/orders/"+o.ID+"/payment", "staff1", map[string]any{"method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)

	status, env = f.do(http.MethodPost, "/api/staff/orders/"+o.ID+"/payment", "staff1", map[string]any{"method": "card"})
	require.Equal(t, http.StatusOK, status, env.Message)
	paid := decodeData[model.Order](t, env)
	assert.Equal(t, model.StatusCompleted, paid.Status)
	assert.Equal(t, model.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, "staff1", paid.ProcessedBy)
}

func TestTrackingAndReceipt(t *testing.T) {
	f := newAPI(t)
	o := f.placeOrder("alice", map[string]any{
		"orderType": "takeaway", "items": []map[string]any{{"id": "menu_padthai", "quantity": 1}},
	})

	status, env := f.do(http.MethodGet, "/api/orders/"+o.ID+"/tracking-token", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	token := decodeData[map[string]string](t, env)["token"]
	require.NotEmpty(t, token)

	status, env = f.do(http.MethodGet, "/api/track/"+o.ID+"?token="+token, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pending", decodeData[map[string]any](t, env)["status"])

	status, _ = f.do(http.MethodGet, "/api/track/"+o.ID+"?token=forged", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/api/orders/"+o.ID+"/receipt.pdf", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+f.tokens["alice"])
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestAdminVouchersAndSelection(t *testing.T) {
	f := newAPI(t)

	status, env := f.do(http.MethodPost, "/api/admin/vouchers", "admin", map[string]any{"code": "save10", "type": "percent", "value": 10, "min": 100})
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, "SAVE10", decodeData[model.Voucher](t, env).Code)

	status, env = f.do(http.MethodPost, "/api/admin/vouchers", "admin", map[string]any{"code": "SAVE10", "type": "fixed", "value": 5})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "VOUCHER_ALREADY_EXISTS", env.Error)

	status, env = f.do(http.MethodPut, "/api/vouchers/selected", "alice", map[string]any{"code": "SAVE10"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VOUCHER_MIN_ORDER_NOT_MET", env.Error)

	f.do(http.MethodPost, "/api/cart/items", "alice", map[string]any{"id": "menu_padthai"})
	status, env = f.do(http.MethodPut, "/api/vouchers/selected", "alice", map[string]any{"code": "save10"})
	require.Equal(t, http.StatusOK, status, env.Message)

	o := f.placeOrder("alice", map[string]any{"orderType": "takeaway"})
	assert.Equal(t, "SAVE10", o.VoucherCode)
	assert.Equal(t, 12.0, o.VoucherDiscount)
	assert.Equal(t, 108.0, o.Total)

	status, _ = f.do(http.MethodDelete, "/api/admin/vouchers/save10", "admin", nil)
	assert.Equal(t, http.StatusOK, status)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMenuImageUpload(t *testing.T) {
	f := newAPI(t)

	upload := func(user, path string, data []byte) (int, envelope) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "dish.png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, f.server.URL+path, &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+f.tokens[user])
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		return resp.StatusCode, env
	}

	status, env := upload("chef1", "/api/kitchen/menu/menu_padthai/image", pngBytes(t, 64, 48))
	require.Equal(t, http.StatusOK, status, env.Message)
	first := decodeData[media.Uploaded](t, env)
	assert.True(t, strings.HasPrefix(first.URL, "https://cdn.test/menu/menu_padthai/"))

	item, err := f.store.Menu().Get(context.Background(), "menu_padthai")
	require.NoError(t, err)
	assert.Equal(t, first.URL, item.Image)
	assert.Len(t, f.objects.Keys(), 2)

	status, env = upload("chef1", "/api/kitchen/menu/menu_padthai/image", pngBytes(t, 32, 32))
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Len(t, f.objects.Keys(), 2, "replaced image and thumbnail are removed")

	status, env = upload("chef1", "/api/kitchen/menu/menu_padthai/image", []byte("not an image"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_IMAGE", env.Error)

	status, _ = upload("chef1", "/api/kitchen/menu/missing/image", pngBytes(t, 8, 8))
	assert.Equal(t, http.StatusNotFound, status)
}
