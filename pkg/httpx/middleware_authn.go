package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

// BearerToken extracts the token from the Authorization header. It accepts
// the standard "Bearer <token>" form (scheme case-insensitive) as well as a
// bare token value. Returns "" when the header is absent or empty.
func BearerToken(r *http.Request) string {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}

	if len(authz) > 6 && strings.EqualFold(authz[:6], "bearer") {
		return strings.TrimSpace(authz[6:])
	}
	return authz
}

// AuthnMiddleware verifies the bearer token and injects the session claims
// into the request context. Missing or invalid tokens get 401 with the
// standard error envelope.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := BearerToken(r)
			if raw == "" {
				WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
