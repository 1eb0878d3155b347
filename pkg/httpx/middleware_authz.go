package httpx

import "net/http"

// AdminRole implicitly satisfies every role check.
const AdminRole = "admin"

// RequireRole rejects the request with 403 unless the authenticated caller
// holds one of the given roles. Admins pass every check. Must run after
// AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if claims.Role == AdminRole {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := want[claims.Role]; !ok {
				WriteError(w, http.StatusForbidden, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
