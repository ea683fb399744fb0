package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/elousi1010/quanlyveso-sub000/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified access token claims
	ContextKeyClaims ContextKey = "claims"
	// ContextKeyAccessToken stores the raw bearer token
	ContextKeyAccessToken ContextKey = "access_token"
	// ContextKeyRequestID stores the request correlation ID
	ContextKeyRequestID ContextKey = "request_id"
)

// RequireAuth is middleware that validates a Bearer access token and
// injects its claims into the request context
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorMessage(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
				writeErrorMessage(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}
			rawToken := strings.TrimSpace(parts[1])

			claims, err := s.accounts.Authenticate(rawToken)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, rawToken)
			next(w, r.WithContext(ctx))
		}
	}
}

// ClaimsFromContext returns the claims injected by RequireAuth
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok
}

func accessTokenFromContext(ctx context.Context) string {
	raw, _ := ctx.Value(ContextKeyAccessToken).(string)
	return raw
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}
