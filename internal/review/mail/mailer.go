// Package mail is the email-delivery port. Invitation dispatch is
// best-effort: a delivery failure never fails the operation that requested
// it, the caller just reports emailSent=false.
package mail

import (
	"context"
	"log/slog"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

// Invitation carries everything the invitation email needs.
type Invitation struct {
	ToEmail       string
	InvitedByName string
	Role          domain.Role
	RegisterURL   string // full link including the opaque token
	ExpiresAt     string // already formatted for display
}

// Mailer sends transactional email.
type Mailer interface {
	SendInvitation(ctx context.Context, inv Invitation) error
}

// LogMailer is the development fallback when SMTP is not configured. It logs
// the invitation link instead of delivering it, and always succeeds.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendInvitation(_ context.Context, inv Invitation) error {
	m.Logger.Info("invitation email (smtp disabled)",
		"to", inv.ToEmail,
		"role", string(inv.Role),
		"register_url", inv.RegisterURL,
		"expires_at", inv.ExpiresAt,
	)
	return nil
}
