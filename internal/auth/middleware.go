package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/inkwell-labs/bookstore-api/internal/models"
	pkghttp "github.com/inkwell-labs/bookstore-api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AccountContextKey is the key for storing token claims in context
	AccountContextKey contextKey = "account"
)

// AccountFetcher loads accounts for role checks.
type AccountFetcher interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

// Middleware validates bearer access tokens and injects the claims into
// the request context.
func Middleware(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "Missing authorization header.")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "Invalid authorization header format.")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token.")
				return
			}

			// Only access tokens grant API access; refresh tokens are
			// exchanged exclusively at the refresh endpoint.
			if claims.Type != models.TokenTypeAccess {
				pkghttp.WriteUnauthorized(w, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), AccountContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the administrative flag. Must run after Middleware.
func RequireAdmin(accounts AccountFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetAccountFromContext(r)
			if claims == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required.")
				return
			}

			account, err := accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil || !account.IsAdmin {
				pkghttp.WriteForbidden(w, "Administrator access required.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetAccountFromContext extracts token claims injected by Middleware.
func GetAccountFromContext(r *http.Request) *models.TokenClaims {
	claims, _ := r.Context().Value(AccountContextKey).(*models.TokenClaims)
	return claims
}
