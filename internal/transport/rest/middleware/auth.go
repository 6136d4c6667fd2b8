package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"seabattle/internal/service"
)

type contextKey string

const (
	SlotIDKey   contextKey = "slotId"
	GameCodeKey contextKey = "gameCode"
)

// AuthMiddleware provides slot-token authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireSlot validates the slot JWT from the Authorization header (or a
// token query param) and checks it against the game code in the route.
func (m *AuthMiddleware) RequireSlot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateSlotToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		if code := mux.Vars(r)["code"]; code != "" && claims.GameCode != code {
			http.Error(w, `{"error":"token not valid for this game"}`, http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), SlotIDKey, claims.SlotID)
		ctx = context.WithValue(ctx, GameCodeKey, claims.GameCode)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSlotID extracts the authenticated slot ID from the request context.
func GetSlotID(ctx context.Context) string {
	if v, ok := ctx.Value(SlotIDKey).(string); ok {
		return v
	}
	return ""
}

// GetGameCode extracts the authenticated game code from the request context.
func GetGameCode(ctx context.Context) string {
	if v, ok := ctx.Value(GameCodeKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
