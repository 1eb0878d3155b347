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

type FeedbackHandler struct {
	FeedbackService *service.FeedbackService
	Router          *Router
}

type createFeedbackRequest struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Text     string `json:"text"`
}

func (h *FeedbackHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req createFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.FeedbackService.CreateFeedback(ctx, actor, r.PathValue("id"), service.CreateFeedbackParams{
		Type:     domain.FeedbackType(req.Type),
		Priority: domain.FeedbackPriority(req.Priority),
		Text:     req.Text,
	})
	if err != nil {
		writeFeedbackError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, feedbackEnvelope{Feedback: toFeedbackResponse(f)})
}

func (h *FeedbackHandler) HandleListForProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	list, err := h.FeedbackService.ListForProject(ctx, actor, r.PathValue("id"))
	if err != nil {
		writeFeedbackError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, feedbackListResponse{Feedback: toFeedbackResponses(list)})
}

func (h *FeedbackHandler) HandleListForOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	list, err := h.FeedbackService.ListForOrganization(ctx, actor)
	if err != nil {
		writeFeedbackError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, feedbackListResponse{Feedback: toFeedbackResponses(list)})
}

type updateFeedbackRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus accepts status changes only; feedback text is
// immutable once posted.
func (h *FeedbackHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	var req updateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := h.FeedbackService.UpdateStatus(ctx, actor, r.PathValue("id"), domain.FeedbackStatus(req.Status))
	if err != nil {
		writeFeedbackError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, feedbackEnvelope{Feedback: toFeedbackResponse(f)})
}

func writeFeedbackError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		httpx.WriteError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrFeedbackNotFound):
		httpx.WriteError(w, http.StatusNotFound, "feedback not found")
	case errors.Is(err, service.ErrInvalidFeedback):
		httpx.WriteError(w, http.StatusBadRequest, "feedback type, priority, or text is invalid")
	case errors.Is(err, policy.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "you do not have access to this feedback")
	default:
		slogx.FromContext(ctx).Error("feedback operation failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
