package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/order"
	"restaurant-order-service/internal/store/memory"
	"restaurant-order-service/internal/tracking"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	jwtSecret   = "ws-jwt"
	trackSecret = "ws-track"
)

func TestHubPublishRoutesByTopic(t *testing.T) {
	hub := NewHub(zap.NewNop())
	kitchen := newClient([]string{events.TopicKitchen})
	customer := newClient([]string{events.CustomerTopic("cust_1"), events.OrderTopic("order_1")})
	rider := newClient([]string{events.TopicRiderJobs})
	defer hub.subscribe(kitchen)()
	defer hub.subscribe(customer)()
	defer hub.subscribe(rider)()

	o := &model.Order{ID: "order_1", CustomerID: "cust_1", Status: model.StatusPending, Type: model.OrderTypeDelivery}
	require.NoError(t, hub.Publish(context.Background(), events.ForOrder(events.OrderCreated, o, "")))

	assert.Len(t, kitchen.send, 1)
	assert.Len(t, customer.send, 1, "one frame per event even with two matching topics")
	assert.Len(t, rider.send, 0)

	var msg Message
	require.NoError(t, json.Unmarshal(<-kitchen.send, &msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, events.TopicKitchen, msg.Topic)
	require.NotNil(t, msg.Event)
	assert.Equal(t, events.OrderCreated, msg.Event.Type)
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newClient([]string{events.TopicVouchers})
	unsubscribe := hub.subscribe(c)
	defer unsubscribe()

	e := events.Event{Type: events.VoucherUpdated}
	for i := 0; i < sendBuffer+1; i++ {
		_ = hub.Publish(context.Background(), e)
	}
	select {
	case <-c.done:
	default:
		t.Fatal("slow client was not closed")
	}
}

func TestHubSharesFramesAcrossClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	voucherA := newClient([]string{events.TopicVouchers})
	voucherB := newClient([]string{events.TopicVouchers})
	staff := newClient([]string{events.TopicStaff})
	defer hub.subscribe(voucherA)()
	defer hub.subscribe(voucherB)()
	defer hub.subscribe(staff)()

	bad := events.Event{Type: events.VoucherUpdated, Data: map[string]any{"callback": func() {}}}
	require.NoError(t, hub.Publish(context.Background(), bad))
	assert.Len(t, voucherA.send, 0)
	assert.Len(t, voucherB.send, 0)

	o := &model.Order{ID: "order_9", Status: model.StatusPending, Type: model.OrderTypeTakeaway}
	require.NoError(t, hub.Publish(context.Background(), events.ForOrder(events.OrderCreated, o, "")))
	require.NoError(t, hub.Publish(context.Background(), events.Event{Type: events.VoucherUpdated}))

	assert.Len(t, voucherA.send, 1)
	assert.Len(t, voucherB.send, 1)
	assert.Len(t, staff.send, 1)
	assert.Equal(t, <-voucherA.send, <-voucherB.send)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(nil)
	c := newClient([]string{events.TopicStaff})
	unsubscribe := hub.subscribe(c)
	assert.Equal(t, 1, hub.Subscribers(events.TopicStaff))
	unsubscribe()
	assert.Equal(t, 0, hub.Subscribers(events.TopicStaff))
}

func TestParseTopics(t *testing.T) {
	assert.Equal(t, []string{"kitchen", "order:1"}, parseTopics(" kitchen, order:1,,kitchen "))
	assert.Empty(t, parseTopics(""))
}

type fixture struct {
	srv   *httptest.Server
	hub   *Hub
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	hub := NewHub(zap.NewNop())
	mgr := order.NewManager(st, hub, nil, zap.NewNop(), order.Config{DeliveryFee: 30, Capacity: 10, EstimatedPrepMinutes: 30})
	s := &Server{
		Hub:            hub,
		Feeds:          &Feeds{Orders: mgr},
		Logger:         zap.NewNop(),
		JWTSecret:      jwtSecret,
		TrackingSecret: trackSecret,
		Heartbeat:      time.Second,
	}
	r := chi.NewRouter()
	r.Get("/ws", s.Subscribe)
	r.Get("/ws/track/{id}", s.Track)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	require.NoError(t, st.Orders().Create(context.Background(), &model.Order{
		ID: "order_1", CustomerID: "cust_1", Status: model.StatusPending, Type: model.OrderTypeDineIn,
		PaymentStatus: model.PaymentStatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))
	return &fixture{srv: srv, hub: hub, store: st}
}

func (f *fixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func userToken(t *testing.T, id string, role model.Role) string {
	t.Helper()
	token, _, err := auth.IssueAccessToken(&model.User{ID: id, Username: id, Role: role}, jwtSecret, time.Hour, time.Now())
	require.NoError(t, err)
	return token
}

func TestSubscribeSendsSnapshotThenEvents(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, "/ws?token="+userToken(t, "chef_1", model.RoleChef)+"&topics=kitchen")

	snap := readMessage(t, conn)
	assert.Equal(t, "snapshot", snap.Type)
	assert.Equal(t, events.TopicKitchen, snap.Topic)
	assert.Len(t, snap.Data, 1)

	require.Eventually(t, func() bool { return f.hub.Subscribers(events.TopicKitchen) == 1 }, time.Second, 10*time.Millisecond)
	o := &model.Order{ID: "order_1", Status: model.StatusPreparing, Type: model.OrderTypeDineIn}
	require.NoError(t, f.hub.Publish(context.Background(), events.ForOrder(events.OrderStatusUpdated, o, model.StatusPending)))

	ev := readMessage(t, conn)
	assert.Equal(t, "event", ev.Type)
	require.NotNil(t, ev.Event)
	assert.Equal(t, "preparing", ev.Event.Status)
}

func TestSubscribeRejectsBadTokenAndForeignTopics(t *testing.T) {
	f := newFixture(t)

	conn := f.dial(t, "/ws?token=bad")
	assert.Equal(t, "unauthorized", readMessage(t, conn).Error)

	conn = f.dial(t, "/ws?token="+userToken(t, "cust_2", model.RoleCustomer)+"&topics=kitchen,order:order_1")
	first := readMessage(t, conn)
	assert.Equal(t, "forbidden topic", first.Error)
	assert.Equal(t, events.TopicKitchen, first.Topic)
	second := readMessage(t, conn)
	assert.Equal(t, "order:order_1", second.Topic)
	assert.Equal(t, "forbidden topic", second.Error)
	assert.Equal(t, "no topics", readMessage(t, conn).Error)
}

func TestTrackRequiresSignedToken(t *testing.T) {
	f := newFixture(t)

	conn := f.dial(t, "/ws/track/order_1?token=forged")
	assert.Equal(t, "order not found", readMessage(t, conn).Error)

	conn = f.dial(t, "/ws/track/order_1?token="+tracking.Token(trackSecret, "order_1"))
	snap := readMessage(t, conn)
	assert.Equal(t, "snapshot", snap.Type)
	assert.Equal(t, "order:order_1", snap.Topic)
}

func TestFeedsAuthorize(t *testing.T) {
	f := newFixture(t)
	feeds := &Feeds{Orders: order.NewManager(f.store, nil, nil, nil, order.Config{})}
	ctx := context.Background()

	tests := []struct {
		user  *model.User
		topic string
		want  bool
	}{
		{&model.User{ID: "cust_1", Role: model.RoleCustomer}, "order:order_1", true},
		{&model.User{ID: "cust_2", Role: model.RoleCustomer}, "order:order_1", false},
		{&model.User{ID: "cust_1", Role: model.RoleCustomer}, "customer:cust_1", true},
		{&model.User{ID: "cust_1", Role: model.RoleCustomer}, "customer:cust_2", false},
		{&model.User{ID: "r1", Role: model.RoleRider}, "rider:r1", true},
		{&model.User{ID: "r1", Role: model.RoleRider}, "rider:r2", false},
		{&model.User{ID: "s1", Role: model.RoleStaff}, "inventory", true},
		{&model.User{ID: "s1", Role: model.RoleStaff}, "kitchen", false},
		{&model.User{ID: "a1", Role: model.RoleAdmin}, "rider:r2", true},
		{&model.User{ID: "a1", Role: model.RoleAdmin}, "bogus", false},
		{nil, "vouchers", false},
	}
	for _, tt := range tests {
		name := tt.topic
		if tt.user != nil {
			name = string(tt.user.Role) + " " + tt.topic
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, feeds.Authorize(ctx, tt.user, tt.topic))
		})
	}
}

