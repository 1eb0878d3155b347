package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/pkg/jwtx"
)

func testSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()
	signer, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "stagedoor-test")
	require.NoError(t, err)
	return signer
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	signer := testSigner(t)
	svc := &AuthService{Store: st, Signer: signer, Issuer: "stagedoor-test"}
	seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

	t.Run("round trip", func(t *testing.T) {
		user, token, err := svc.Login(ctx, "Dev@Acme.Test", "correct horse battery")
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotNil(t, user.LastLogin)

		claims, err := signer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, user.Email, claims.Email)
		assert.Equal(t, string(user.Role), claims.Role)
		assert.Equal(t, user.OrganizationID, claims.OrganizationID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "dev@acme.test", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost@acme.test", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginInactiveAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthService{Store: st, Signer: testSigner(t), Issuer: "stagedoor-test"}
	u := seedUser(t, st, domain.RoleClient, "client@acme.test")

	u.IsActive = false
	require.NoError(t, st.Users().UpdateUser(ctx, u))

	_, _, err := svc.Login(ctx, "client@acme.test", "correct horse battery")
	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AuthService{Store: st, Signer: testSigner(t), Issuer: "stagedoor-test", TokenTTL: time.Hour}
	u := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

	t.Run("active account refreshes", func(t *testing.T) {
		_, token, err := svc.Refresh(ctx, u.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("deactivation cuts refresh off", func(t *testing.T) {
		deactivated := u
		deactivated.IsActive = false
		require.NoError(t, st.Users().UpdateUser(ctx, deactivated))

		_, _, err := svc.Refresh(ctx, u.ID)
		assert.ErrorIs(t, err, ErrAccountInactive)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, _, err := svc.Refresh(ctx, "missing")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "dev@acme.test", NormalizeEmail("  Dev@Acme.Test "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
