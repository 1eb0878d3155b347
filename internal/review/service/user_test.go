package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
)

func boolptr(b bool) *bool { return &b }

func roleptr(r domain.Role) *domain.Role { return &r }

func TestUserServiceLists(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st}
	admin := seedUser(t, st, domain.RoleAdmin, "admin@acme.test")
	seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
	seedUser(t, st, domain.RoleClient, "client@acme.test")

	all, err := svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	clients, err := svc.ListClients(ctx, admin)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, domain.RoleClient, clients[0].Role)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("self rename", func(t *testing.T) {
		st := newTestStore(t)
		svc := &UserService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

		got, err := svc.UpdateUser(ctx, dev, dev.ID, policy.UserPatch{Name: strptr("Devon")})
		require.NoError(t, err)
		assert.Equal(t, "Devon", got.Name)
	})

	t.Run("non-admin cannot touch other accounts", func(t *testing.T) {
		st := newTestStore(t)
		svc := &UserService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		client := seedUser(t, st, domain.RoleClient, "client@acme.test")

		_, err := svc.UpdateUser(ctx, dev, client.ID, policy.UserPatch{
			Role: roleptr(domain.RoleDeveloper),
		})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("non-admin cannot promote themselves", func(t *testing.T) {
		st := newTestStore(t)
		svc := &UserService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

		_, err := svc.UpdateUser(ctx, dev, dev.ID, policy.UserPatch{
			Role: roleptr(domain.RoleAdmin),
		})
		assert.ErrorIs(t, err, policy.ErrForbiddenField)
	})

	t.Run("admin deactivates an account", func(t *testing.T) {
		st := newTestStore(t)
		svc := &UserService{Store: st}
		admin := seedUser(t, st, domain.RoleAdmin, "admin@acme.test")
		client := seedUser(t, st, domain.RoleClient, "client@acme.test")

		got, err := svc.UpdateUser(ctx, admin, client.ID, policy.UserPatch{
			IsActive: boolptr(false),
		})
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		// The row, not just the return value, reflects it.
		stored, err := st.Users().GetUserByID(ctx, client.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
	})

	t.Run("cross-org target reads as not found", func(t *testing.T) {
		st := newTestStore(t)
		svc := &UserService{Store: st}
		admin := seedUser(t, st, domain.RoleAdmin, "admin@acme.test")
		client := seedUser(t, st, domain.RoleClient, "client@acme.test")

		admin.OrganizationID = "org-other"
		_, err := svc.UpdateUser(ctx, admin, client.ID, policy.UserPatch{Name: strptr("X")})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("unknown target", func(t *testing.T) {
		st := newTestStore(t)
		svc := &UserService{Store: st}
		admin := seedUser(t, st, domain.RoleAdmin, "admin@acme.test")

		_, err := svc.UpdateUser(ctx, admin, "missing", policy.UserPatch{Name: strptr("X")})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	projects := &ProjectService{Store: st}
	feedback := &FeedbackService{Store: st}
	svc := &StatsService{Store: st, Projects: projects, Feedback: feedback}

	dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
	client := seedUser(t, st, domain.RoleClient, "client@acme.test")
	shared := seedProject(t, st, "shared", client.ID)
	seedProject(t, st, "internal-only")

	_, err := feedback.CreateFeedback(ctx, client, shared.ID, CreateFeedbackParams{
		Type: domain.FeedbackApproval, Text: "Approved",
	})
	require.NoError(t, err)

	inviter := newInviteService(st)
	_, _, _, err = inviter.CreateInvitation(ctx, dev, "pending@acme.test", domain.RoleClient, nil)
	require.NoError(t, err)

	t.Run("developer sees whole-org counters", func(t *testing.T) {
		got, err := svc.Stats(ctx, dev)
		require.NoError(t, err)
		assert.Equal(t, 2, got.TotalProjects)
		assert.Equal(t, 1, got.Approved)
		assert.Equal(t, 1, got.TotalFeedback)
		assert.Equal(t, 0, got.OpenFeedback) // approval feedback lands resolved
		require.NotNil(t, got.TotalClients)
		assert.Equal(t, 1, *got.TotalClients)
		require.NotNil(t, got.PendingInvitations)
		assert.Equal(t, 1, *got.PendingInvitations)
	})

	t.Run("client counters stop at assigned projects", func(t *testing.T) {
		got, err := svc.Stats(ctx, client)
		require.NoError(t, err)
		assert.Equal(t, 1, got.TotalProjects)
		assert.Equal(t, 1, got.Approved)
		assert.Nil(t, got.TotalClients)
		assert.Nil(t, got.PendingInvitations)
	})
}
