package middleware

import (
	"context"
	"net/http"
	"strings"

	"member-service/config"
	"member-service/models"
	"member-service/utils"
)

type contextKey string

const userKey contextKey = "user"

// AuthMiddleware verifies the externally issued access token and places the
// authenticated user on the request context. Requests without a valid token
// are rejected; the gate's own anonymous handling covers library callers.
func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cfg.Auth.AccessCookieName)
			if token == "" {
				http.Error(w, "No token provided", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ParseToken(token, cfg.Auth.AccessTokenSecret)
			if err != nil || claims.Subject == "" {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			user := &models.User{
				UserID:   claims.Subject,
				Email:    claims.Email,
				Username: claims.Username,
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	return strings.TrimPrefix(authHeader, "Bearer ")
}
