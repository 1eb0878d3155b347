package http

import (
	"time"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
)

// UserResponse is the API shape of an account. The password hash is not a
// field here, so it can never leak through serialization.
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	OrganizationID   string     `json:"organizationId"`
	AssignedProjects []string   `json:"assignedProjects,omitempty"`
	IsActive         bool       `json:"isActive"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             string(u.Role),
		OrganizationID:   u.OrganizationID,
		AssignedProjects: u.AssignedProjects,
		IsActive:         u.IsActive,
		CreatedAt:        u.CreatedAt,
		LastLogin:        u.LastLogin,
	}
}

func toUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

type ProjectResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Client          string    `json:"client"`
	URL             string    `json:"url"`
	Description     string    `json:"description,omitempty"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	Status          string    `json:"status"`
	OrganizationID  string    `json:"organizationId"`
	CreatedBy       string    `json:"createdBy"`
	AssignedClients []string  `json:"assignedClients"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toProjectResponse(p domain.Project) ProjectResponse {
	clients := p.AssignedClients
	if clients == nil {
		clients = []string{}
	}
	return ProjectResponse{
		ID:              p.ID,
		Name:            p.Name,
		Client:          p.Client,
		URL:             p.URL,
		Description:     p.Description,
		Thumbnail:       p.Thumbnail,
		Status:          string(p.Status),
		OrganizationID:  p.OrganizationID,
		CreatedBy:       p.CreatedBy,
		AssignedClients: clients,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	return out
}

type FeedbackResponse struct {
	ID         string     `json:"id"`
	ProjectID  string     `json:"projectId"`
	Type       string     `json:"type"`
	Priority   string     `json:"priority"`
	Text       string     `json:"text"`
	Status     string     `json:"status"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName"`
	AuthorRole string     `json:"authorRole"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy string     `json:"resolvedBy,omitempty"`
}

func toFeedbackResponse(f domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID,
		ProjectID:  f.ProjectID,
		Type:       string(f.Type),
		Priority:   string(f.Priority),
		Text:       f.Text,
		Status:     string(f.Status),
		AuthorID:   f.AuthorID,
		AuthorName: f.AuthorName,
		AuthorRole: string(f.AuthorRole),
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
		ResolvedAt: f.ResolvedAt,
		ResolvedBy: f.ResolvedBy,
	}
}

func toFeedbackResponses(list []domain.Feedback) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(list))
	for _, f := range list {
		out = append(out, toFeedbackResponse(f))
	}
	return out
}

// InvitationResponse never carries the token or its hash; the raw token is
// returned once from the create call only.
type InvitationResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	ProjectIDs    []string   `json:"projectIds,omitempty"`
	InvitedBy     string     `json:"invitedBy"`
	InvitedByName string     `json:"invitedByName"`
	ExpiresAt     time.Time  `json:"expiresAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	AcceptedAt    *time.Time `json:"acceptedAt,omitempty"`
	IsUsed        bool       `json:"isUsed"`
}

func toInvitationResponse(inv domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:            inv.ID,
		Email:         inv.Email,
		Role:          string(inv.Role),
		ProjectIDs:    inv.ProjectIDs,
		InvitedBy:     inv.InvitedBy,
		InvitedByName: inv.InvitedByName,
		ExpiresAt:     inv.ExpiresAt,
		CreatedAt:     inv.CreatedAt,
		AcceptedAt:    inv.AcceptedAt,
		IsUsed:        inv.IsUsed,
	}
}

func toInvitationResponses(list []domain.Invitation) []InvitationResponse {
	out := make([]InvitationResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, toInvitationResponse(inv))
	}
	return out
}

// SessionResponse is returned by login, register, and refresh.
type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Entity and collection payloads are keyed by resource name at the top
// level; no endpoint returns a bare array.
type userEnvelope struct {
	User UserResponse `json:"user"`
}

type projectEnvelope struct {
	Project ProjectResponse `json:"project"`
}

type feedbackEnvelope struct {
	Feedback FeedbackResponse `json:"feedback"`
}

type projectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type feedbackListResponse struct {
	Feedback []FeedbackResponse `json:"feedback"`
}

type userListResponse struct {
	Users []UserResponse `json:"users"`
}

type clientListResponse struct {
	Clients []UserResponse `json:"clients"`
}

type invitationListResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
}

type messageResponse struct {
	Message string `json:"message"`
}
