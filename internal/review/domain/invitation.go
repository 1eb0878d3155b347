package domain

import "time"

// DefaultInvitationTTL is how long an invitation stays redeemable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation is a one-shot token granting account creation with a
// preassigned role and project list. Expiry is computed at read time;
// there is no stored "expired" state.
type Invitation struct {
	ID         string
	Email      string // lowercased
	TokenHash  string // SHA-256 fingerprint of the opaque token
	Role       Role   // client or developer, never admin
	ProjectIDs []string

	InvitedBy      string
	InvitedByName  string
	OrganizationID string

	ExpiresAt  time.Time
	CreatedAt  time.Time
	AcceptedAt *time.Time
	IsUsed     bool
}

// Expired reports whether the invitation is past its expiry at the given time.
func (i Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Active reports whether the invitation can still be redeemed.
func (i Invitation) Active(now time.Time) bool {
	return !i.IsUsed && !i.Expired(now)
}
