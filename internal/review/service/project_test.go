package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
)

func strptr(s string) *string { return &s }

func statusptr(s domain.ProjectStatus) *domain.ProjectStatus { return &s }

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes scheme-less urls", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

		p, err := svc.CreateProject(ctx, dev, CreateProjectParams{
			Name:   "Acme Redesign",
			Client: "Acme Corp",
			URL:    "preview.acme.test/redesign",
		})
		require.NoError(t, err)
		assert.Equal(t, "https://preview.acme.test/redesign", p.URL)
		assert.Equal(t, domain.StatusPending, p.Status)
		assert.Equal(t, dev.ID, p.CreatedBy)
	})

	t.Run("keeps explicit http scheme", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

		p, err := svc.CreateProject(ctx, dev, CreateProjectParams{
			Name:   "Legacy",
			Client: "Acme Corp",
			URL:    "http://staging.acme.test",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://staging.acme.test", p.URL)
	})

	t.Run("rejects malformed urls", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")

		_, err := svc.CreateProject(ctx, dev, CreateProjectParams{
			Name:   "Broken",
			Client: "Acme Corp",
			URL:    "ftp://files.acme.test",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidURL)
	})

	t.Run("rejects non-client assignment", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		other := seedUser(t, st, domain.RoleDeveloper, "dev2@acme.test")

		_, err := svc.CreateProject(ctx, dev, CreateProjectParams{
			Name:            "Bad Assignment",
			Client:          "Acme Corp",
			URL:             "preview.acme.test",
			AssignedClients: []string{other.ID},
		})
		assert.ErrorIs(t, err, ErrInvalidAssignment)
	})
}

func TestGetProjectVisibility(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &ProjectService{Store: st}
	dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
	assigned := seedUser(t, st, domain.RoleClient, "assigned@acme.test")
	stranger := seedUser(t, st, domain.RoleClient, "stranger@acme.test")
	p := seedProject(t, st, "alpha", assigned.ID)

	t.Run("developer sees everything in the org", func(t *testing.T) {
		got, err := svc.GetProject(ctx, dev, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("assigned client sees the project", func(t *testing.T) {
		_, err := svc.GetProject(ctx, assigned, p.ID)
		require.NoError(t, err)
	})

	t.Run("unassigned client is forbidden", func(t *testing.T) {
		_, err := svc.GetProject(ctx, stranger, p.ID)
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("cross-org actor gets not found", func(t *testing.T) {
		outsider := dev
		outsider.OrganizationID = "org-other"
		_, err := svc.GetProject(ctx, outsider, p.ID)
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})
}

func TestListProjectsFiltersForClients(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &ProjectService{Store: st}
	dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
	client := seedUser(t, st, domain.RoleClient, "client@acme.test")
	visible := seedProject(t, st, "visible", client.ID)
	seedProject(t, st, "hidden")

	devList, err := svc.ListProjects(ctx, dev)
	require.NoError(t, err)
	assert.Len(t, devList, 2)

	clientList, err := svc.ListProjects(ctx, client)
	require.NoError(t, err)
	require.Len(t, clientList, 1)
	assert.Equal(t, visible.ID, clientList[0].ID)
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("developer edits fields and moves status", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		p := seedProject(t, st, "alpha")

		got, err := svc.UpdateProject(ctx, dev, p.ID, policy.ProjectPatch{
			Name:   strptr("Alpha v2"),
			Status: statusptr(domain.StatusInReview),
		})
		require.NoError(t, err)
		assert.Equal(t, "Alpha v2", got.Name)
		assert.Equal(t, domain.StatusInReview, got.Status)
	})

	t.Run("illegal status jump rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		p := seedProject(t, st, "alpha")

		// pending cannot go straight to approved
		_, err := svc.UpdateProject(ctx, dev, p.ID, policy.ProjectPatch{
			Status: statusptr(domain.StatusApproved),
		})
		assert.ErrorIs(t, err, policy.ErrInvalidTransition)
	})

	t.Run("archived is terminal", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		p := seedProject(t, st, "alpha")

		_, err := svc.UpdateProject(ctx, dev, p.ID, policy.ProjectPatch{
			Status: statusptr(domain.StatusArchived),
		})
		require.NoError(t, err)

		_, err = svc.UpdateProject(ctx, dev, p.ID, policy.ProjectPatch{
			Status: statusptr(domain.StatusInReview),
		})
		assert.ErrorIs(t, err, policy.ErrInvalidTransition)
	})

	t.Run("assigned client may only approve", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		client := seedUser(t, st, domain.RoleClient, "client@acme.test")
		p := seedProject(t, st, "alpha", client.ID)

		_, err := svc.UpdateProject(ctx, dev, p.ID, policy.ProjectPatch{
			Status: statusptr(domain.StatusInReview),
		})
		require.NoError(t, err)

		got, err := svc.UpdateProject(ctx, client, p.ID, policy.ProjectPatch{
			Status: statusptr(domain.StatusApproved),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, got.Status)
	})

	t.Run("client touching any other field is rejected whole", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		client := seedUser(t, st, domain.RoleClient, "client@acme.test")
		p := seedProject(t, st, "alpha", client.ID)

		_, err := svc.UpdateProject(ctx, client, p.ID, policy.ProjectPatch{
			Name:   strptr("Sneaky Rename"),
			Status: statusptr(domain.StatusApproved),
		})
		assert.ErrorIs(t, err, policy.ErrForbiddenField)

		// Nothing applied.
		got, err := st.Projects().GetProjectByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "alpha", got.Name)
		assert.Equal(t, domain.StatusPending, got.Status)
	})

	t.Run("unassigned client is forbidden outright", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		stranger := seedUser(t, st, domain.RoleClient, "stranger@acme.test")
		p := seedProject(t, st, "alpha")

		_, err := svc.UpdateProject(ctx, stranger, p.ID, policy.ProjectPatch{
			Status: statusptr(domain.StatusApproved),
		})
		assert.ErrorIs(t, err, policy.ErrForbidden)
	})

	t.Run("empty patch rejected", func(t *testing.T) {
		st := newTestStore(t)
		svc := &ProjectService{Store: st}
		dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
		p := seedProject(t, st, "alpha")

		_, err := svc.UpdateProject(ctx, dev, p.ID, policy.ProjectPatch{})
		assert.ErrorIs(t, err, ErrNoValidFields)
	})
}

func TestAssignClientsReplacesList(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &ProjectService{Store: st}
	dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
	a := seedUser(t, st, domain.RoleClient, "a@acme.test")
	b := seedUser(t, st, domain.RoleClient, "b@acme.test")
	p := seedProject(t, st, "alpha", a.ID)

	got, err := svc.AssignClients(ctx, dev, p.ID, []string{b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, got.AssignedClients)
}

func TestDeleteProjectCascadesFeedback(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	projects := &ProjectService{Store: st}
	feedback := &FeedbackService{Store: st}
	dev := seedUser(t, st, domain.RoleDeveloper, "dev@acme.test")
	p := seedProject(t, st, "alpha")

	_, err := feedback.CreateFeedback(ctx, dev, p.ID, CreateFeedbackParams{
		Type: domain.FeedbackGeneral,
		Text: "Looks good overall",
	})
	require.NoError(t, err)

	require.NoError(t, projects.DeleteProject(ctx, dev, p.ID))

	list, err := st.Feedback().ListFeedbackByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
