package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the default lifetime of a session token. The service
// issues long-lived tokens and relies on account deactivation plus the
// refresh endpoint rather than short expiries.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Claims are the session-token claims issued at login and registration.
type Claims struct {
	jwt.RegisteredClaims

	// Email is the account email at issue time (lowercased).
	Email string `json:"email,omitempty"`

	// Name is the display name for the user.
	Name string `json:"name,omitempty"`

	// Role is one of "admin", "developer", "client".
	Role string `json:"role,omitempty"`

	// OrganizationID scopes every query the token can make.
	OrganizationID string `json:"org_id,omitempty"`
}

// NewSessionClaims builds claims for a user session. Subject is the user id.
func NewSessionClaims(
	subject, email, name, role, organizationID string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:          email,
		Name:           name,
		Role:           role,
		OrganizationID: organizationID,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
