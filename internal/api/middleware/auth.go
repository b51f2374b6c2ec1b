package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/ewright/todo-backend/internal/service"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
)

// Auth resolves the bearer token into the caller's identity. A missing or
// undecodable token is downgraded to "no session"; operations behind this
// middleware all require one, so that uniformly becomes 401 Not authenticated.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := resolveIdentity(authService, r)
			if !ok {
				http.Error(w, "Not authenticated", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(authService *service.AuthService, r *http.Request) (*service.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		log.Printf("ERROR [middleware.Auth] invalid authorization header format")
		return nil, false
	}

	identity, err := authService.DecodeToken(parts[1])
	if err != nil {
		log.Printf("ERROR [middleware.Auth] token decode failed: %v", err)
		return nil, false
	}

	return identity, true
}

func GetIdentity(ctx context.Context) (*service.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*service.Identity)
	return identity, ok
}
