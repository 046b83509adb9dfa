package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/marcus/code-playground/internal/domain"
	"github.com/marcus/code-playground/internal/service"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"

	// SessionCookieName is the cookie the session credential travels in.
	SessionCookieName = "auth_token"
)

// Auth validates the session credential from the auth_token cookie (or a
// Bearer header for non-browser clients) and attaches the resulting Identity
// to the request context. No store lookup happens here; the claims are
// trusted as signed.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}
			if token == "" {
				if parts := strings.Split(r.Header.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
					token = parts[1]
				}
			}
			if token == "" {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			identity, err := authService.ValidateToken(token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetIdentity(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*domain.Identity)
	return identity, ok
}
