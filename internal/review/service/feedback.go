package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
	"github.com/stagedoorhq/stagedoor/pkg/idx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

var (
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrInvalidFeedback  = errors.New("invalid feedback")
)

// FeedbackService owns review comments and their project status side
// effects.
type FeedbackService struct {
	Store store.Store
}

// CreateFeedbackParams are the caller-supplied fields for a new comment.
type CreateFeedbackParams struct {
	Type     domain.FeedbackType
	Priority domain.FeedbackPriority
	Text     string
}

// CreateFeedback adds a comment to a project the actor can see and applies
// the status side effects in the same transaction: the first feedback on a
// pending project moves it to in-review, and an approval from an assigned
// client moves it to approved. Approval-type feedback is created
// pre-resolved.
func (s *FeedbackService) CreateFeedback(
	ctx context.Context,
	actor domain.User,
	projectID string,
	params CreateFeedbackParams,
) (domain.Feedback, error) {
	log := slogx.FromContext(ctx)

	if !params.Type.Valid() || params.Text == "" {
		return domain.Feedback{}, ErrInvalidFeedback
	}
	if params.Priority == "" {
		params.Priority = domain.PriorityMedium
	}
	if !params.Priority.Valid() {
		return domain.Feedback{}, ErrInvalidFeedback
	}

	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Feedback{}, ErrProjectNotFound
		}
		return domain.Feedback{}, err
	}
	if p.OrganizationID != actor.OrganizationID {
		return domain.Feedback{}, ErrProjectNotFound
	}
	if !policy.CanViewProject(actor, p) {
		return domain.Feedback{}, policy.ErrForbidden
	}

	now := time.Now().UTC()
	f := domain.Feedback{
		ID:         idx.New().String(),
		ProjectID:  p.ID,
		Type:       params.Type,
		Priority:   params.Priority,
		Text:       params.Text,
		Status:     domain.FeedbackOpen,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		AuthorRole: actor.Role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if f.Type == domain.FeedbackApproval {
		f.Status = domain.FeedbackResolved
		f.ResolvedAt = &now
		f.ResolvedBy = actor.ID
	}

	next := nextProjectStatus(p.Status, f.Type, actor.Role)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Feedback().CreateFeedback(ctx, f); err != nil {
			return fmt.Errorf("create feedback: %w", err)
		}
		if next != p.Status {
			p.Status = next
			p.UpdatedAt = now
			if err := tx.Projects().UpdateProject(ctx, p); err != nil {
				return fmt.Errorf("advance project status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create feedback", "project_id", projectID, "err", err)
		return domain.Feedback{}, err
	}

	log.Info("feedback created",
		"feedback_id", f.ID,
		"project_id", p.ID,
		"type", string(f.Type),
		"project_status", string(next),
	)
	return f, nil
}

// nextProjectStatus computes the status side effect of a new comment.
// Feedback of any kind moves a pending project into review; a client's
// approval moves a reviewable project to approved in the same call.
func nextProjectStatus(
	current domain.ProjectStatus,
	ftype domain.FeedbackType,
	authorRole domain.Role,
) domain.ProjectStatus {
	status := current
	if status == domain.StatusPending {
		status = domain.StatusInReview
	}
	if ftype == domain.FeedbackApproval && authorRole == domain.RoleClient &&
		domain.CanTransition(status, domain.StatusApproved) {
		status = domain.StatusApproved
	}
	return status
}

// ListForProject returns a project's feedback if the actor can see the
// project.
func (s *FeedbackService) ListForProject(
	ctx context.Context,
	actor domain.User,
	projectID string,
) ([]domain.Feedback, error) {
	p, err := s.Store.Projects().GetProjectByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if p.OrganizationID != actor.OrganizationID {
		return nil, ErrProjectNotFound
	}
	if !policy.CanViewFeedback(actor, p) {
		return nil, policy.ErrForbidden
	}

	return s.Store.Feedback().ListFeedbackByProject(ctx, projectID)
}

// ListForOrganization returns all feedback the actor can see: everything in
// the organization for developers and admins, only assigned projects for
// clients.
func (s *FeedbackService) ListForOrganization(
	ctx context.Context,
	actor domain.User,
) ([]domain.Feedback, error) {
	all, err := s.Store.Feedback().ListFeedbackByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if policy.HasRole(actor, domain.RoleDeveloper) {
		return all, nil
	}

	visible := make(map[string]bool)
	for _, pid := range actor.AssignedProjects {
		visible[pid] = true
	}
	// AssignedProjects can lag behind project.AssignedClients edits, so
	// check the projects too.
	projects, err := s.Store.Projects().ListProjectsByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.HasClient(actor.ID) {
			visible[p.ID] = true
		}
	}

	filtered := make([]domain.Feedback, 0, len(all))
	for _, f := range all {
		if visible[f.ProjectID] {
			filtered = append(filtered, f)
		}
	}
	return filtered, nil
}

// UpdateStatus moves a comment between open, in-progress, and resolved.
// Only developers and admins triage; resolution is stamped, reopening
// clears the stamp.
func (s *FeedbackService) UpdateStatus(
	ctx context.Context,
	actor domain.User,
	feedbackID string,
	status domain.FeedbackStatus,
) (domain.Feedback, error) {
	if !status.Valid() {
		return domain.Feedback{}, ErrInvalidFeedback
	}
	if !policy.HasRole(actor, domain.RoleDeveloper) {
		return domain.Feedback{}, policy.ErrForbidden
	}

	f, err := s.Store.Feedback().GetFeedbackByID(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Feedback{}, ErrFeedbackNotFound
		}
		return domain.Feedback{}, err
	}

	p, err := s.Store.Projects().GetProjectByID(ctx, f.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Feedback{}, ErrFeedbackNotFound
		}
		return domain.Feedback{}, err
	}
	if p.OrganizationID != actor.OrganizationID {
		return domain.Feedback{}, ErrFeedbackNotFound
	}

	now := time.Now().UTC()
	f.Status = status
	f.UpdatedAt = now
	if status == domain.FeedbackResolved {
		f.ResolvedAt = &now
		f.ResolvedBy = actor.ID
	} else {
		f.ResolvedAt = nil
		f.ResolvedBy = ""
	}

	if err := s.Store.Feedback().UpdateFeedback(ctx, f); err != nil {
		return domain.Feedback{}, err
	}
	return f, nil
}
