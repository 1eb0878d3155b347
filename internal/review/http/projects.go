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

type ProjectsHandler struct {
	ProjectService *service.ProjectService
	Router         *Router
}

func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	projects, err := h.ProjectService.ListProjects(ctx, actor)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list projects", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, projectListResponse{Projects: toProjectResponses(projects)})
}

func (h *ProjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	p, err := h.ProjectService.GetProject(ctx, actor, r.PathValue("id"))
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, projectEnvelope{Project: toProjectResponse(p)})
}

type createProjectRequest struct {
	Name            string   `json:"name"`
	Client          string   `json:"client"`
	URL             string   `json:"url"`
	Description     string   `json:"description"`
	Thumbnail       string   `json:"thumbnail"`
	AssignedClients []string `json:"assignedClients"`
}

func (h *ProjectsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.ProjectService.CreateProject(ctx, actor, service.CreateProjectParams{
		Name:            req.Name,
		Client:          req.Client,
		URL:             req.URL,
		Description:     req.Description,
		Thumbnail:       req.Thumbnail,
		AssignedClients: req.AssignedClients,
	})
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, projectEnvelope{Project: toProjectResponse(p)})
}

type updateProjectRequest struct {
	Name            *string  `json:"name"`
	Client          *string  `json:"client"`
	URL             *string  `json:"url"`
	Description     *string  `json:"description"`
	Thumbnail       *string  `json:"thumbnail"`
	Status          *string  `json:"status"`
	AssignedClients []string `json:"assignedClients"`
}

func (h *ProjectsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req updateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := policy.ProjectPatch{
		Name:            req.Name,
		Client:          req.Client,
		URL:             req.URL,
		Description:     req.Description,
		Thumbnail:       req.Thumbnail,
		AssignedClients: req.AssignedClients,
	}
	if req.Status != nil {
		status := domain.ProjectStatus(*req.Status)
		if !status.Valid() {
			httpx.WriteError(w, http.StatusBadRequest, "unknown project status")
			return
		}
		patch.Status = &status
	}

	p, err := h.ProjectService.UpdateProject(ctx, actor, r.PathValue("id"), patch)
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, projectEnvelope{Project: toProjectResponse(p)})
}

func (h *ProjectsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	if err := h.ProjectService.DeleteProject(ctx, actor, r.PathValue("id")); err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, messageResponse{Message: "project deleted"})
}

type assignClientsRequest struct {
	ClientIDs []string `json:"clientIds"`
}

// HandleAssign replaces the project's reviewer list in one shot.
func (h *ProjectsHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req assignClientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClientIDs == nil {
		req.ClientIDs = []string{}
	}

	p, err := h.ProjectService.AssignClients(ctx, actor, r.PathValue("id"), req.ClientIDs)
	if err != nil {
		writeProjectError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, projectEnvelope{Project: toProjectResponse(p)})
}

// writeProjectError maps project service errors onto status codes.
func writeProjectError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		httpx.WriteError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrInvalidProject):
		httpx.WriteError(w, http.StatusBadRequest, "name and client are required")
	case errors.Is(err, domain.ErrInvalidURL):
		httpx.WriteError(w, http.StatusBadRequest, "url must be a valid http or https address")
	case errors.Is(err, service.ErrInvalidAssignment):
		httpx.WriteError(w, http.StatusBadRequest, "assigned clients must be client accounts in your organization")
	case errors.Is(err, service.ErrNoValidFields):
		httpx.WriteError(w, http.StatusBadRequest, "no updatable fields in request")
	case errors.Is(err, policy.ErrForbiddenField):
		httpx.WriteError(w, http.StatusForbidden, "clients may only approve a project")
	case errors.Is(err, policy.ErrInvalidTransition):
		httpx.WriteError(w, http.StatusBadRequest, "status change is not allowed from the current state")
	case errors.Is(err, policy.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "you do not have access to this project")
	default:
		slogx.FromContext(ctx).Error("project operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
