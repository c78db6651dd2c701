package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/events"
	"restaurant-order-service/internal/model"
	"restaurant-order-service/internal/tracking"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	maxTopics      = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	Hub            *Hub
	Feeds          *Feeds
	Logger         *zap.Logger
	JWTSecret      string
	TrackingSecret string
	Heartbeat      time.Duration
}

// Subscribe serves /ws?token=<jwt>&topics=a,b. Without topics the role's default feeds are
// followed.
func (s *Server) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		token = auth.ParseBearerToken(r.Header.Get("Authorization"))
	}
	claims, err := auth.VerifyAccessToken(token, s.JWTSecret)
	if err != nil {
		writeError(conn, "unauthorized")
		return
	}
	user := &model.User{ID: claims.UserID, Username: claims.Username, Name: claims.Name, Role: claims.Role}

	requested := parseTopics(r.URL.Query().Get("topics"))
	if len(requested) == 0 {
		requested = defaultTopics(user)
	}
	topics := make([]string, 0, len(requested))
	for _, topic := range requested {
		if s.Feeds.Authorize(r.Context(), user, topic) {
			topics = append(topics, topic)
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(Message{Type: "error", Topic: topic, Error: "forbidden topic"})
	}
	if len(topics) == 0 {
		writeError(conn, "no topics")
		return
	}

	s.serve(r.Context(), conn, topics, user.ID)
}

// Track serves /ws/track/{id}?token=<tracking token> for guests following one order.
func (s *Server) Track(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	orderID := chi.URLParam(r, "id")
	token := r.URL.Query().Get("token")
	if orderID == "" || !tracking.Verify(s.TrackingSecret, token, orderID) {
		writeError(conn, "order not found")
		return
	}
	if _, err := s.Feeds.Orders.Get(r.Context(), orderID); err != nil {
		writeError(conn, "order not found")
		return
	}

	s.serve(r.Context(), conn, []string{events.OrderTopic(orderID)}, "")
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn, topics []string, userID string) {
	c := newClient(topics)
	unsubscribe := s.Hub.subscribe(c)
	defer unsubscribe()

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("ws subscribed", zap.Strings("topics", topics), zap.String("userId", userID))

	// Subscribed before snapshots render: a client may receive an event older than the
	// snapshot and keeps the higher order version.
	for _, topic := range topics {
		data, err := s.Feeds.Snapshot(ctx, topic)
		if err != nil {
			logger.Warn("ws snapshot failed", zap.String("topic", topic), zap.Error(err))
			continue
		}
		frame, err := json.Marshal(Message{Type: "snapshot", Topic: topic, Data: data})
		if err != nil {
			continue
		}
		select {
		case c.send <- frame:
		default:
		}
	}

	heartbeat := s.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	pongWait := heartbeat * 2

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case frame := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeError(conn *websocket.Conn, message string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(Message{Type: "error", Error: message})
}

func parseTopics(raw string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, ",") {
		topic := strings.TrimSpace(part)
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		out = append(out, topic)
		if len(out) == maxTopics {
			break
		}
	}
	return out
}

func defaultTopics(u *model.User) []string {
	switch u.Role {
	case model.RoleChef:
		return []string{events.TopicKitchen, events.TopicInventory}
	case model.RoleStaff:
		return []string{events.TopicStaff}
	case model.RoleRider:
		return []string{events.TopicRiderJobs, events.RiderTopic(u.ID)}
	case model.RoleAdmin:
		return []string{events.TopicKitchen, events.TopicStaff, events.TopicInventory}
	default:
		return []string{events.CustomerTopic(u.ID), events.TopicVouchers}
	}
}
