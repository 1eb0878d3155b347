package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/mail"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/pkg/cryptox"
	"github.com/stagedoorhq/stagedoor/pkg/idx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

var (
	ErrInvalidInviteRequest   = errors.New("invalid invitation request")
	ErrInviteRoleNotPermitted = errors.New("role grant not permitted")
	ErrActiveInvitationExists = errors.New("active invitation already exists")
	ErrEmailTaken             = errors.New("an account with this email already exists")
	ErrInvitationNotFound     = errors.New("invitation not found or expired")
	ErrInvitationUsed         = errors.New("invitation has already been used")
	ErrWeakPassword           = errors.New("Password must be at least 8 characters")
	ErrInvitedProjectNotFound = errors.New("referenced project not found")
)

// MinPasswordLength applies to registration.
const MinPasswordLength = 8

// InviteService owns the invitation lifecycle: create, validate, redeem.
// An invitation is a one-shot token; once redeemed it stays used forever,
// and expiry is computed at read time rather than swept.
type InviteService struct {
	Store  store.Store
	Mailer mail.Mailer

	// AppBaseURL is the public UI origin used in invitation links.
	AppBaseURL string

	// InviteTTL defaults to domain.DefaultInvitationTTL.
	InviteTTL time.Duration
}

// CreateInvitation mints an invitation for email with the given role and
// project preassignments. The raw token is returned exactly once; the store
// only ever sees its fingerprint. Email dispatch is best-effort and its
// outcome is reported via emailSent.
//
// The one-active-invitation-per-email rule is a read-then-insert with no
// store-level guard: two concurrent invites for the same email can both
// land active. This shares the replace-semantics caveat on UpdateUser et
// al.; the user-email UNIQUE constraint still caps redemption at one
// account.
func (s *InviteService) CreateInvitation(
	ctx context.Context,
	actor domain.User,
	email string,
	role domain.Role,
	projectIDs []string,
) (inv domain.Invitation, token string, emailSent bool, err error) {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	if email == "" || !role.Valid() {
		return domain.Invitation{}, "", false, ErrInvalidInviteRequest
	}

	if !policy.CanInviteRole(actor, role) {
		log.Warn("invitation rejected by role-grant rule",
			"actor_id", actor.ID,
			"actor_role", string(actor.Role),
			"granted_role", string(role),
		)
		return domain.Invitation{}, "", false, ErrInviteRoleNotPermitted
	}

	// An email can hold at most one active invitation.
	if _, err := s.Store.Invitations().GetActiveInvitationByEmail(ctx, email); err == nil {
		return domain.Invitation{}, "", false, ErrActiveInvitationExists
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check existing invitations", "err", err)
		return domain.Invitation{}, "", false, err
	}

	// Nor may it already belong to an account.
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.Invitation{}, "", false, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to check existing account", "err", err)
		return domain.Invitation{}, "", false, err
	}

	// Preassigned projects must exist in the actor's organization.
	for _, pid := range projectIDs {
		p, err := s.Store.Projects().GetProjectByID(ctx, pid)
		if err != nil || p.OrganizationID != actor.OrganizationID {
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Error("failed to fetch preassigned project", "project_id", pid, "err", err)
				return domain.Invitation{}, "", false, err
			}
			return domain.Invitation{}, "", false, ErrInvitedProjectNotFound
		}
	}

	token, err = cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invitation token", "err", err)
		return domain.Invitation{}, "", false, err
	}

	ttl := s.InviteTTL
	if ttl <= 0 {
		ttl = domain.DefaultInvitationTTL
	}

	now := time.Now().UTC()
	inv = domain.Invitation{
		ID:             idx.New().String(),
		Email:          email,
		TokenHash:      cryptox.FingerprintToken(token),
		Role:           role,
		ProjectIDs:     projectIDs,
		InvitedBy:      actor.ID,
		InvitedByName:  actor.Name,
		OrganizationID: actor.OrganizationID,
		ExpiresAt:      now.Add(ttl),
		CreatedAt:      now,
	}

	if err := s.Store.Invitations().CreateInvitation(ctx, inv); err != nil {
		log.Error("failed to persist invitation", "invitation_id", inv.ID, "err", err)
		return domain.Invitation{}, "", false, err
	}

	log.Info("invitation created",
		"invitation_id", inv.ID,
		"role", string(role),
		"invited_by", actor.ID,
		"expires_at", inv.ExpiresAt,
	)

	// Dispatch is best-effort: failure downgrades emailSent, never the call.
	emailSent = true
	if err := s.Mailer.SendInvitation(ctx, mail.Invitation{
		ToEmail:       inv.Email,
		InvitedByName: inv.InvitedByName,
		Role:          inv.Role,
		RegisterURL:   s.registerURL(token),
		ExpiresAt:     inv.ExpiresAt.Format(time.RFC1123),
	}); err != nil {
		log.Warn("invitation email dispatch failed", "invitation_id", inv.ID, "err", err)
		emailSent = false
	}

	return inv, token, emailSent, nil
}

// ValidateInvitation is the read-only preflight for the registration form.
// It never mutates state, so repeated calls return identical results.
func (s *InviteService) ValidateInvitation(ctx context.Context, token string) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, ErrInvitationNotFound
	}

	inv, err := s.Store.Invitations().GetInvitationByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrInvitationNotFound
		}
		return domain.Invitation{}, err
	}

	if inv.IsUsed {
		return domain.Invitation{}, ErrInvitationUsed
	}
	if inv.Expired(time.Now().UTC()) {
		return domain.Invitation{}, ErrInvitationNotFound
	}

	return inv, nil
}

// RedeemInvitation consumes a token and creates the account. The user row,
// the invitation consumption, and the project back-fills land in a single
// transaction, ordered so that a crash can only ever leave a created user
// with an unconsumed invitation, never the reverse.
func (s *InviteService) RedeemInvitation(
	ctx context.Context,
	token, name, password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if token == "" || name == "" {
		return domain.User{}, ErrInvalidInviteRequest
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	inv, err := s.ValidateInvitation(ctx, token)
	if err != nil {
		log.Warn("invitation redemption rejected", "err", err)
		return domain.User{}, err
	}

	// Race check: another registration may have claimed the email since the
	// invitation was minted.
	if _, err := s.Store.Users().GetUserByEmail(ctx, inv.Email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", "err", err)
		return domain.User{}, err
	}

	now := time.Now().UTC()
	newUser := domain.User{
		ID:               idx.New().String(),
		Email:            inv.Email,
		Name:             name,
		PasswordHash:     passwordHash,
		Role:             inv.Role,
		OrganizationID:   inv.OrganizationID,
		AssignedProjects: inv.ProjectIDs,
		IsActive:         true,
		CreatedAt:        now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, newUser); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		if err := tx.Invitations().MarkInvitationUsed(ctx, inv.ID, now); err != nil {
			// A not-found here means a concurrent redemption won.
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationUsed
			}
			return fmt.Errorf("mark invitation used: %w", err)
		}

		// Back-fill reviewer assignment on each preassigned project.
		for _, pid := range inv.ProjectIDs {
			p, err := tx.Projects().GetProjectByID(ctx, pid)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					continue // project deleted since the invite; skip
				}
				return fmt.Errorf("fetch project %s: %w", pid, err)
			}
			if !p.HasClient(newUser.ID) {
				p.AssignedClients = append(p.AssignedClients, newUser.ID)
				p.UpdatedAt = now
				if err := tx.Projects().UpdateProject(ctx, p); err != nil {
					return fmt.Errorf("assign user to project %s: %w", pid, err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return domain.User{}, err
	}

	log.Info("user registered via invitation",
		"user_id", newUser.ID,
		"invitation_id", inv.ID,
		"role", string(newUser.Role),
	)

	return newUser, nil
}

// ListInvitations returns every invitation in the actor's organization.
func (s *InviteService) ListInvitations(ctx context.Context, actor domain.User) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListInvitationsByOrganization(ctx, actor.OrganizationID)
}

func (s *InviteService) registerURL(token string) string {
	base := s.AppBaseURL
	if base == "" {
		base = "http://localhost:3000"
	}
	return base + "/register?token=" + url.QueryEscape(token)
}
