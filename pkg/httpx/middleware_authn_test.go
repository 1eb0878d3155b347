package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stagedoorhq/stagedoor/pkg/httpx"
	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"standard form", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"mixed case scheme", "BeArEr abc123", "abc123"},
		{"bare token", "abc123", "abc123"},
		{"surrounding whitespace", "  Bearer   abc123  ", "abc123"},
		{"absent", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			require.Equal(t, tc.want, httpx.BearerToken(req))
		})
	}
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test")
	require.NoError(t, err)

	var gotUserID string
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID = httpx.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(signer),
	)

	t.Run("missing token is 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches handler with identity", func(t *testing.T) {
		claims := jwtx.NewSessionClaims("user-7", "a@b.c", "A", "developer", "org-1",
			time.Hour, "test", time.Now().UTC())
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-7", gotUserID)
	})
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "test")
	require.NoError(t, err)

	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(signer),
		httpx.RequireRole("developer"),
	)

	do := func(role string) int {
		claims := jwtx.NewSessionClaims("u1", "a@b.c", "A", role, "org-1",
			time.Hour, "test", time.Now().UTC())
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("developer"))
	require.Equal(t, http.StatusOK, do("admin"), "admin satisfies every role check")
	require.Equal(t, http.StatusForbidden, do("client"))
}
