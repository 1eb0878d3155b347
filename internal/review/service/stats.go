package service

import (
	"context"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
	"github.com/stagedoorhq/stagedoor/internal/review/store"
)

// Stats summarizes the actor's visible slice of the organization.
// TotalClients and PendingInvitations are only populated for developers
// and admins.
type Stats struct {
	TotalProjects  int `json:"totalProjects"`
	PendingReviews int `json:"pendingReviews"`
	Approved       int `json:"approved"`
	TotalFeedback  int `json:"totalFeedback"`
	OpenFeedback   int `json:"openFeedback"`

	TotalClients       *int `json:"totalClients,omitempty"`
	PendingInvitations *int `json:"pendingInvitations,omitempty"`
}

// StatsService computes dashboard counters. Counts are scoped by the same
// visibility rules as the list endpoints, so clients only count what they
// can see.
type StatsService struct {
	Store    store.Store
	Projects *ProjectService
	Feedback *FeedbackService
}

func (s *StatsService) Stats(ctx context.Context, actor domain.User) (Stats, error) {
	projects, err := s.Projects.ListProjects(ctx, actor)
	if err != nil {
		return Stats{}, err
	}

	feedback, err := s.Feedback.ListForOrganization(ctx, actor)
	if err != nil {
		return Stats{}, err
	}

	var out Stats
	out.TotalProjects = len(projects)
	for _, p := range projects {
		switch p.Status {
		case domain.StatusInReview:
			out.PendingReviews++
		case domain.StatusApproved:
			out.Approved++
		}
	}

	out.TotalFeedback = len(feedback)
	for _, f := range feedback {
		if f.Status != domain.FeedbackResolved {
			out.OpenFeedback++
		}
	}

	if policy.HasRole(actor, domain.RoleDeveloper) {
		clients, err := s.Store.Users().CountUsersByOrganizationRole(
			ctx, actor.OrganizationID, domain.RoleClient)
		if err != nil {
			return Stats{}, err
		}
		pending, err := s.Store.Invitations().CountActiveByOrganization(
			ctx, actor.OrganizationID)
		if err != nil {
			return Stats{}, err
		}
		out.TotalClients = &clients
		out.PendingInvitations = &pending
	}

	return out, nil
}
