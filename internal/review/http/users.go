package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stagedoorhq/stagedoor/internal/review/domain"
	"github.com/stagedoorhq/stagedoor/internal/review/policy"
	"github.com/stagedoorhq/stagedoor/internal/review/service"
	"github.com/stagedoorhq/stagedoor/pkg/httpx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

type UsersHandler struct {
	UserService   *service.UserService
	InviteService *service.InviteService
	Router        *Router
}

type inviteRequest struct {
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	ProjectIDs []string `json:"projectIds"`
}

type inviteResponse struct {
	Invitation InvitationResponse `json:"invitation"`
	EmailSent  bool               `json:"emailSent"`
}

// HandleInvite mints an invitation. The raw token travels by email only;
// the response reports whether that dispatch worked.
func (h *UsersHandler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, _, emailSent, err := h.InviteService.CreateInvitation(
		ctx, actor, req.Email, domain.Role(req.Role), req.ProjectIDs)
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inviteResponse{
		Invitation: toInvitationResponse(inv),
		EmailSent:  emailSent,
	})
}

func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	users, err := h.UserService.ListUsers(ctx, actor)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userListResponse{Users: toUserResponses(users)})
}

func (h *UsersHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	clients, err := h.UserService.ListClients(ctx, actor)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list clients", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientListResponse{Clients: toUserResponses(clients)})
}

func (h *UsersHandler) HandleListInvitations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	invitations, err := h.InviteService.ListInvitations(ctx, actor)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list invitations", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, invitationListResponse{Invitations: toInvitationResponses(invitations)})
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (h *UsersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := policy.UserPatch{
		Name:     req.Name,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.Valid() {
			httpx.WriteError(w, http.StatusBadRequest, "unknown role")
			return
		}
		patch.Role = &role
	}

	user, err := h.UserService.UpdateUser(ctx, actor, r.PathValue("id"), patch)
	if err != nil {
		writeUserError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

func writeUserError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrInvalidInviteRequest):
		httpx.WriteError(w, http.StatusBadRequest, "email and a valid role are required")
	case errors.Is(err, service.ErrInviteRoleNotPermitted):
		httpx.WriteError(w, http.StatusForbidden, "you may not grant this role")
	case errors.Is(err, service.ErrActiveInvitationExists):
		httpx.WriteError(w, http.StatusBadRequest, "an active invitation already exists for this email")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest, "an account with this email already exists")
	case errors.Is(err, service.ErrInvitedProjectNotFound):
		httpx.WriteError(w, http.StatusBadRequest, "a referenced project does not exist")
	case errors.Is(err, policy.ErrForbiddenField):
		httpx.WriteError(w, http.StatusForbidden, "you may not change these fields")
	case errors.Is(err, policy.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "you may not update this user")
	default:
		slogx.FromContext(ctx).Error("user operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
