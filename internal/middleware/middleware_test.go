package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "mw-secret"

func tokenFor(t *testing.T, role model.Role) string {
	t.Helper()
	token, _, err := auth.IssueAccessToken(&model.User{ID: "user_" + string(role), Username: string(role), Role: role}, secret, time.Hour, time.Now())
	require.NoError(t, err)
	return token
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := GetAuthContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("guest"))
			return
		}
		_, _ = w.Write([]byte(ac.UserID))
	})
}

func TestAuth(t *testing.T) {
	h := Auth(secret)(echoUser())

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		query  bool
		status int
		body   string
	}{
		{name: "missing token", method: http.MethodGet, path: "/api/kitchen/queue", status: http.StatusUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/kitchen/queue", token: "nope", status: http.StatusUnauthorized},
		{name: "chef on kitchen", method: http.MethodGet, path: "/api/kitchen/queue", token: tokenFor(t, model.RoleChef), status: http.StatusOK, body: "user_chef"},
		{name: "rider on kitchen", method: http.MethodGet, path: "/api/kitchen/queue", token: tokenFor(t, model.RoleRider), status: http.StatusForbidden},
		{name: "token in query", method: http.MethodGet, path: "/ws", token: tokenFor(t, model.RoleCustomer), query: true, status: http.StatusOK, body: "user_customer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.path
			if tt.query {
				target += "?token=" + tt.token
			}
			req := httptest.NewRequest(tt.method, target, nil)
			if tt.token != "" && !tt.query {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	h := OptionalAuth(secret)(echoUser())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, "guest", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.RoleCustomer))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "user_customer", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer broken")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	h := Auth(secret)(RequireRoles(model.RoleAdmin)(echoUser()))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/history", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.RoleStaff))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "corr-1", seen)
	assert.Equal(t, "corr-1", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestTelemetryKeepsStatus(t *testing.T) {
	h := Telemetry(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestQuantile(t *testing.T) {
	values := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, int64(5), quantile(values, 0.5))
	assert.Equal(t, int64(10), quantile(values, 0.95))
	assert.Equal(t, int64(0), quantile(nil, 0.5))
}
