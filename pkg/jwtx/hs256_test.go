package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "stagedoor-test"

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestNewHS256FailsClosed(t *testing.T) {
	t.Parallel()

	t.Run("empty secret rejected", func(t *testing.T) {
		_, err := NewHS256(nil, testIssuer)
		require.ErrorIs(t, err, ErrWeakSecret)
	})

	t.Run("short secret rejected", func(t *testing.T) {
		_, err := NewHS256([]byte("too-short"), testIssuer)
		require.ErrorIs(t, err, ErrWeakSecret)
	})

	t.Run("32 byte secret accepted", func(t *testing.T) {
		_, err := NewHS256(testSecret(), testIssuer)
		require.NoError(t, err)
	})
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	h, err := NewHS256(testSecret(), testIssuer)
	require.NoError(t, err)

	claims := NewSessionClaims(
		"01JSOMEUSERID", "dev@acme.test", "Dev Eloper", "developer", "org-1",
		DefaultSessionTTL, testIssuer, time.Now().UTC(),
	)

	token, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01JSOMEUSERID", got.Subject)
	require.Equal(t, "dev@acme.test", got.Email)
	require.Equal(t, "developer", got.Role)
	require.Equal(t, "org-1", got.OrganizationID)
	require.NoError(t, got.ValidateExpiry())
}

func TestVerifyRejections(t *testing.T) {
	t.Parallel()

	h, err := NewHS256(testSecret(), testIssuer)
	require.NoError(t, err)

	now := time.Now().UTC()

	t.Run("expired token", func(t *testing.T) {
		claims := NewSessionClaims("u1", "a@b.c", "A", "client", "org-1",
			time.Minute, testIssuer, now.Add(-time.Hour))
		token, err := h.Sign(claims)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewHS256([]byte("ffffffffffffffffffffffffffffffff"), testIssuer)
		require.NoError(t, err)

		claims := NewSessionClaims("u1", "a@b.c", "A", "client", "org-1",
			time.Minute, testIssuer, now)
		token, err := other.Sign(claims)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		claims := NewSessionClaims("u1", "a@b.c", "A", "client", "org-1",
			time.Minute, testIssuer, now)
		token, err := h.Sign(claims)
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		parts[1] = parts[1][:len(parts[1])-2] + "xx"

		_, err = h.Verify(strings.Join(parts, "."))
		require.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := h.Verify("not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)

		_, err = h.Verify("")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		claims := NewSessionClaims("u1", "a@b.c", "A", "client", "org-1",
			time.Minute, "someone-else", now)
		token, err := h.Sign(claims)
		require.NoError(t, err)

		_, err = h.Verify(token)
		require.ErrorIs(t, err, ErrIssuer)
	})
}
