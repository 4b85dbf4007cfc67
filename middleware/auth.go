package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/alexander-edwards/asana-clone-app-fullstack/logging"
)

type contextKey string

const userIDKey contextKey = "userID"

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

// JWTAuth rejects requests without a valid token. The token is read from the
// Authorization header, or from the token query parameter for websocket clients.
func JWTAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_TOKEN, Description: No token for request to %s %s", r.Method, r.URL.Path)
				writeError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			userID, err := auth.Authenticate(token)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for request to %s %s: %v", r.Method, r.URL.Path, err)
				writeError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the authenticated user, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}
