// Package policy holds the role-scoped authorization rules consumed by every
// endpoint. The rules are pure functions over domain values; persistence and
// transport never make access decisions on their own.
package policy

import (
	"errors"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

var (
	// ErrForbidden is a blanket role/ownership violation.
	ErrForbidden = errors.New("policy: forbidden")

	// ErrForbiddenField reports a client attempting to update anything other
	// than status=approved. The whole request is rejected, nothing is
	// partially applied.
	ErrForbiddenField = errors.New("policy: field not permitted for role")

	// ErrInvalidTransition reports a status edge the state machine forbids.
	ErrInvalidTransition = errors.New("policy: invalid status transition")
)

// HasRole reports whether the user satisfies at least one required role.
// Admin implicitly satisfies every check.
func HasRole(u domain.User, roles ...domain.Role) bool {
	if u.Role == domain.RoleAdmin {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// CanViewProject applies the visibility rule: admins and developers see every
// project in their organization; clients only those they are assigned to.
func CanViewProject(u domain.User, p domain.Project) bool {
	if u.OrganizationID != p.OrganizationID {
		return false
	}
	if HasRole(u, domain.RoleDeveloper) {
		return true
	}
	return p.HasClient(u.ID)
}

// CanViewFeedback mirrors project visibility: feedback is visible exactly
// when its project is.
func CanViewFeedback(u domain.User, p domain.Project) bool {
	return CanViewProject(u, p)
}

// CanInviteRole applies the role-grant rule: developers and admins may invite
// clients, only admins may invite developers, and nobody invites admins.
func CanInviteRole(actor domain.User, granted domain.Role) bool {
	if !granted.Invitable() {
		return false
	}
	switch granted {
	case domain.RoleClient:
		return HasRole(actor, domain.RoleDeveloper)
	case domain.RoleDeveloper:
		return actor.Role == domain.RoleAdmin
	default:
		return false
	}
}

// ProjectPatch is the set of requested project changes. Nil fields were not
// requested.
type ProjectPatch struct {
	Name            *string
	Client          *string
	URL             *string
	Description     *string
	Thumbnail       *string
	Status          *domain.ProjectStatus
	AssignedClients []string
}

// Empty reports whether the patch requests no change at all.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Client == nil && p.URL == nil &&
		p.Description == nil && p.Thumbnail == nil && p.Status == nil &&
		p.AssignedClients == nil
}

// ApplyProjectUpdate enforces the field-level update rule and, on success,
// returns the project with the patch applied.
//
// Developers and admins may change any field; status changes must follow the
// state machine. Assigned clients may request exactly one thing: status
// approved. Any other field or status value in a client request is a policy
// violation for the whole request.
func ApplyProjectUpdate(actor domain.User, p domain.Project, patch ProjectPatch) (domain.Project, error) {
	if HasRole(actor, domain.RoleDeveloper) {
		return applyFull(p, patch)
	}

	if actor.Role != domain.RoleClient || !p.HasClient(actor.ID) {
		return domain.Project{}, ErrForbidden
	}

	// Clients: only {status: approved}, nothing else, no partial application.
	if patch.Name != nil || patch.Client != nil || patch.URL != nil ||
		patch.Description != nil || patch.Thumbnail != nil || patch.AssignedClients != nil {
		return domain.Project{}, ErrForbiddenField
	}
	if patch.Status == nil || *patch.Status != domain.StatusApproved {
		return domain.Project{}, ErrForbiddenField
	}
	if !domain.CanTransition(p.Status, domain.StatusApproved) {
		return domain.Project{}, ErrInvalidTransition
	}

	p.Status = domain.StatusApproved
	return p, nil
}

func applyFull(p domain.Project, patch ProjectPatch) (domain.Project, error) {
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.Project{}, ErrInvalidTransition
		}
		if !domain.CanTransition(p.Status, *patch.Status) {
			return domain.Project{}, ErrInvalidTransition
		}
		p.Status = *patch.Status
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Client != nil {
		p.Client = *patch.Client
	}
	if patch.URL != nil {
		normalized, err := domain.NormalizeURL(*patch.URL)
		if err != nil {
			return domain.Project{}, err
		}
		p.URL = normalized
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Thumbnail != nil {
		p.Thumbnail = *patch.Thumbnail
	}
	if patch.AssignedClients != nil {
		p.AssignedClients = patch.AssignedClients
	}
	return p, nil
}

// UserPatch is the set of requested user changes.
type UserPatch struct {
	Name     *string
	Role     *domain.Role
	IsActive *bool
}

// ApplyUserUpdate enforces who may change what on a user record: users may
// rename themselves; admins may additionally change role and active status.
// Role can never be set to a value outside the known set.
func ApplyUserUpdate(actor, target domain.User, patch UserPatch) (domain.User, error) {
	self := actor.ID == target.ID

	if !self && actor.Role != domain.RoleAdmin {
		return domain.User{}, ErrForbidden
	}
	if actor.OrganizationID != target.OrganizationID {
		return domain.User{}, ErrForbidden
	}

	if patch.Role != nil || patch.IsActive != nil {
		if actor.Role != domain.RoleAdmin {
			return domain.User{}, ErrForbiddenField
		}
	}

	if patch.Name != nil {
		target.Name = *patch.Name
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return domain.User{}, ErrForbiddenField
		}
		target.Role = *patch.Role
	}
	if patch.IsActive != nil {
		target.IsActive = *patch.IsActive
	}

	return target, nil
}
