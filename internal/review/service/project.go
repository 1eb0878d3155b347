package service

import (
	"context"
	"errors"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/pkg/idx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrInvalidProject    = errors.New("invalid project")
	ErrNoValidFields     = errors.New("no valid fields to update")
	ErrInvalidAssignment = errors.New("assigned user is not a client in this organization")
)

// ProjectService owns project CRUD and visibility.
type ProjectService struct {
	Store store.Store
}

// CreateProjectParams are the caller-supplied fields for a new project.
type CreateProjectParams struct {
	Name            string
	Client          string
	URL             string
	Description     string
	Thumbnail       string
	AssignedClients []string
}

// CreateProject creates a project in pending state. The URL is normalized
// (https:// prefixed when the scheme is omitted) and must be well-formed.
func (s *ProjectService) CreateProject(
	ctx context.Context,
	actor domain.User,
	params CreateProjectParams,
) (domain.Project, error) {
	log := slogx.FromContext(ctx)

	if params.Name == "" || params.Client == "" {
		return domain.Project{}, ErrInvalidProject
	}

	normalized, err := domain.NormalizeURL(params.URL)
	if err != nil {
		return domain.Project{}, err
	}

	if err := s.validateClients(ctx, actor.OrganizationID, params.AssignedClients); err != nil {
		return domain.Project{}, err
	}

	now := time.Now().UTC()
	p := domain.Project{
		ID:              idx.New().String(),
		Name:            params.Name,
		Client:          params.Client,
		URL:             normalized,
		Description:     params.Description,
		Thumbnail:       params.Thumbnail,
		Status:          domain.StatusPending,
		OrganizationID:  actor.OrganizationID,
		CreatedBy:       actor.ID,
		AssignedClients: params.AssignedClients,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Store.Projects().CreateProject(ctx, p); err != nil {
		log.Error("failed to create project", "err", err)
		return domain.Project{}, err
	}

	log.Info("project created", "project_id", p.ID, "created_by", actor.ID)
	return p, nil
}

// GetProject fetches one project the actor may see. Projects outside the
// actor's organization read as not found; an unassigned client gets a
// distinct forbidden error.
func (s *ProjectService) GetProject(ctx context.Context, actor domain.User, id string) (domain.Project, error) {
	p, err := s.Store.Projects().GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}

	if p.OrganizationID != actor.OrganizationID {
		return domain.Project{}, ErrProjectNotFound
	}
	if !policy.CanViewProject(actor, p) {
		return domain.Project{}, policy.ErrForbidden
	}

	return p, nil
}

// ListProjects returns the projects visible to the actor per the
// visibility rule.
func (s *ProjectService) ListProjects(ctx context.Context, actor domain.User) ([]domain.Project, error) {
	all, err := s.Store.Projects().ListProjectsByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if policy.CanViewProject(actor, p) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// UpdateProject applies a patch under the field-level policy rule and
// replaces the stored row. Replace semantics: concurrent updates race and
// the last writer wins.
func (s *ProjectService) UpdateProject(
	ctx context.Context,
	actor domain.User,
	id string,
	patch policy.ProjectPatch,
) (domain.Project, error) {
	log := slogx.FromContext(ctx)

	if patch.Empty() {
		return domain.Project{}, ErrNoValidFields
	}

	p, err := s.Store.Projects().GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	if p.OrganizationID != actor.OrganizationID {
		return domain.Project{}, ErrProjectNotFound
	}

	updated, err := policy.ApplyProjectUpdate(actor, p, patch)
	if err != nil {
		log.Warn("project update rejected",
			"project_id", id,
			"actor_id", actor.ID,
			"err", err,
		)
		return domain.Project{}, err
	}

	if patch.AssignedClients != nil {
		if err := s.validateClients(ctx, actor.OrganizationID, patch.AssignedClients); err != nil {
			return domain.Project{}, err
		}
	}

	updated.UpdatedAt = time.Now().UTC()
	if err := s.Store.Projects().UpdateProject(ctx, updated); err != nil {
		log.Error("failed to update project", "project_id", id, "err", err)
		return domain.Project{}, err
	}

	return updated, nil
}

// DeleteProject removes a project and, via schema cascade, its feedback.
func (s *ProjectService) DeleteProject(ctx context.Context, actor domain.User, id string) error {
	p, err := s.Store.Projects().GetProjectByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return err
	}
	if p.OrganizationID != actor.OrganizationID {
		return ErrProjectNotFound
	}

	if err := s.Store.Projects().DeleteProject(ctx, id); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("project deleted", "project_id", id, "deleted_by", actor.ID)
	return nil
}

// AssignClients replaces the project's reviewer list.
func (s *ProjectService) AssignClients(
	ctx context.Context,
	actor domain.User,
	id string,
	clientIDs []string,
) (domain.Project, error) {
	return s.UpdateProject(ctx, actor, id, policy.ProjectPatch{AssignedClients: clientIDs})
}

// validateClients checks that every id names a client-role user in the
// organization.
func (s *ProjectService) validateClients(ctx context.Context, orgID string, clientIDs []string) error {
	for _, cid := range clientIDs {
		u, err := s.Store.Users().GetUserByID(ctx, cid)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidAssignment
			}
			return err
		}
		if u.OrganizationID != orgID || u.Role != domain.RoleClient {
			return ErrInvalidAssignment
		}
	}
	return nil
}
