package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"restaurant-order-service/internal/auth"
	"restaurant-order-service/internal/model"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID   string
	Username string
	Name     string
	Role     model.Role
}

// User reports the requester as a model user, without credentials.
func (a *AuthContext) User() *model.User {
	return &model.User{ID: a.UserID, Username: a.Username, Name: a.Name, Role: a.Role}
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok && ac != nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeAuthErrorDebug(w, status, message, "")
}

func writeAuthErrorDebug(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}
	payload := map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	}
	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}

	_ = json.NewEncoder(w).Encode(payload)
}

// requestToken reads the bearer header and falls back to the token query parameter,
// which browsers need for websocket upgrades.
func requestToken(r *http.Request) string {
	if token := auth.ParseBearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func contextFromClaims(claims *auth.Claims) *AuthContext {
	return &AuthContext{
		UserID:   claims.UserID,
		Username: claims.Username,
		Name:     claims.Name,
		Role:     claims.Role,
	}
}

// Auth rejects requests without a valid access token and enforces the role map.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.VerifyAccessToken(requestToken(r), jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}
			if !auth.Allowed(claims.Role, r.URL.Path, r.Method) {
				writeAuthError(w, http.StatusForbidden, "You do not have permission to access this resource")
				return
			}
			ctx := WithAuthContext(r.Context(), contextFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the requester when a valid token is sent and lets guests through.
// An invalid token is rejected rather than silently downgraded to a guest.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.VerifyAccessToken(token, jwtSecret)
			if err != nil {
				writeAuthErrorDebug(w, http.StatusUnauthorized, "Invalid token", err.Error())
				return
			}
			ctx := WithAuthContext(r.Context(), contextFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles narrows a route group to roles, on top of Auth.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := GetAuthContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}
			for _, role := range roles {
				if ac.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, "You do not have permission to access this resource")
		})
	}
}
