package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dom/coinshelf/internal/domain"
	"github.com/dom/coinshelf/internal/logger"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
)

// Authenticator resolves a bearer token to its user. Token problems are
// reported as domain.ErrInvalidToken.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth rejects requests without a valid bearer token for an existing user.
func Auth(authService Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				http.Error(w, "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			user, err := authService.Authenticate(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) {
					logger.Log.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
					http.Error(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				logger.Log.Error("authenticate request",
					zap.String("path", r.URL.Path),
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.Error(err),
				)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			setRequestUser(r.Context(), user.ID)
			ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
