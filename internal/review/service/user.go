package service

import (
	"context"
	"errors"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

// UserService owns account listing and updates.
type UserService struct {
	Store store.Store
}

// ListUsers returns every account in the actor's organization.
func (s *UserService) ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error) {
	return s.Store.Users().ListUsersByOrganization(ctx, actor.OrganizationID, "")
}

// ListClients returns client-role accounts only.
func (s *UserService) ListClients(ctx context.Context, actor domain.User) ([]domain.User, error) {
	return s.Store.Users().ListUsersByOrganization(ctx, actor.OrganizationID, domain.RoleClient)
}

// UpdateUser applies a patch under the user-update policy: self-rename, or
// admin changes to name, role, and active flag. Accounts are deactivated,
// never deleted.
func (s *UserService) UpdateUser(
	ctx context.Context,
	actor domain.User,
	targetID string,
	patch policy.UserPatch,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	target, err := s.Store.Users().GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if target.OrganizationID != actor.OrganizationID {
		return domain.User{}, ErrUserNotFound
	}

	updated, err := policy.ApplyUserUpdate(actor, target, patch)
	if err != nil {
		log.Warn("user update rejected",
			"actor_id", actor.ID,
			"target_id", targetID,
			"err", err,
		)
		return domain.User{}, err
	}

	if err := s.Store.Users().UpdateUser(ctx, updated); err != nil {
		log.Error("failed to update user", "target_id", targetID, "err", err)
		return domain.User{}, err
	}

	return updated, nil
}
