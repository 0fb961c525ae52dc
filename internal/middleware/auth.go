package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/envelopezero/backend/internal/models"
	"github.com/envelopezero/backend/internal/services"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticate resolves the bearer session on every request and rejects the
// request with 401 when it is missing, malformed, expired or revoked.
func Authenticate(lookup services.SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := services.Authenticate(r.Context(), lookup, r.Header.Get("Authorization"))
			if err != nil {
				if services.StatusFor(err) != http.StatusUnauthorized {
					log.Printf("[AUTH] Session lookup failed: %v", err)
				}
				services.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}
