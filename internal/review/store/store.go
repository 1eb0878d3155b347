package store

import (
	"context"
	"errors"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories per record kind to keep
// concerns tidy and testable.
//
// Updates are replace-style: read, merge, write. There is no optimistic
// concurrency token, so concurrent writers to the same record race and the
// last writer wins.
type Store interface {
	Users() Users
	Projects() Projects
	Feedback() Feedback
	Invitations() Invitations

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed. Use it for multi-step
	// operations that must land together (invitation redemption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Tx starts a transaction and returns a Tx-scoped Store. The caller MUST
	// Commit or Rollback. Prefer WithTx.
	Tx(ctx context.Context) (Tx, error)

	// Close releases underlying resources.
	Close() error

	// Ping verifies the backing database is reachable.
	Ping(ctx context.Context) error
}

// Tx is a transactional store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by lowercased email. Used by login and by the
	// invitation duplicate checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser replaces all mutable fields of the user row.
	UpdateUser(ctx context.Context, u domain.User) error

	// SetLastLogin stamps last_login.
	SetLastLogin(ctx context.Context, userID string, at time.Time) error

	// ListUsersByOrganization returns all users in an organization, newest
	// first, optionally filtered by role (empty role means all).
	ListUsersByOrganization(ctx context.Context, orgID string, role domain.Role) ([]domain.User, error)

	// CountUsersByOrganizationRole counts users holding the given role.
	CountUsersByOrganizationRole(ctx context.Context, orgID string, role domain.Role) (int, error)
}

type Projects interface {
	GetProjectByID(ctx context.Context, id string) (domain.Project, error)

	// ListProjectsByOrganization returns every project in an organization,
	// newest first. Role-based narrowing happens in the policy layer.
	ListProjectsByOrganization(ctx context.Context, orgID string) ([]domain.Project, error)

	CreateProject(ctx context.Context, p domain.Project) error

	// UpdateProject replaces all mutable fields and bumps updated_at.
	UpdateProject(ctx context.Context, p domain.Project) error

	// DeleteProject removes the project; feedback cascades per schema.
	DeleteProject(ctx context.Context, id string) error
}

type Feedback interface {
	GetFeedbackByID(ctx context.Context, id string) (domain.Feedback, error)

	// ListFeedbackByProject returns a project's feedback, newest first.
	ListFeedbackByProject(ctx context.Context, projectID string) ([]domain.Feedback, error)

	// ListFeedbackByOrganization returns feedback across all of an
	// organization's projects, newest first.
	ListFeedbackByOrganization(ctx context.Context, orgID string) ([]domain.Feedback, error)

	CreateFeedback(ctx context.Context, f domain.Feedback) error

	// UpdateFeedback replaces all mutable fields and bumps updated_at.
	UpdateFeedback(ctx context.Context, f domain.Feedback) error
}

type Invitations interface {
	// CreateInvitation writes a new invitation (token_hash is the SHA-256
	// fingerprint of the opaque token).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByTokenHash returns the invitation regardless of state;
	// callers decide between used, expired, and active.
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// GetActiveInvitationByEmail returns the unused, unexpired invitation
	// for an email, if any. Backs the one-active-invitation rule.
	GetActiveInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// MarkInvitationUsed flips is_used and stamps accepted_at.
	MarkInvitationUsed(ctx context.Context, id string, acceptedAt time.Time) error

	// ListInvitationsByOrganization returns all invitations, newest first.
	ListInvitationsByOrganization(ctx context.Context, orgID string) ([]domain.Invitation, error)

	// CountActiveByOrganization counts unused, unexpired invitations.
	CountActiveByOrganization(ctx context.Context, orgID string) (int, error)

	// DeleteExpiredInvitations is housekeeping; lazy expiry checks govern
	// correctness regardless.
	DeleteExpiredInvitations(ctx context.Context) error
}
