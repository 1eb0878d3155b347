package http

import (
	"net/http"

	"github.com/stagedoorhq/stagedoor/internal/review/service"
	"github.com/stagedoorhq/stagedoor/pkg/httpx"
	"github.com/stagedoorhq/stagedoor/pkg/slogx"
)

type StatsHandler struct {
	StatsService *service.StatsService
	Router       *Router
}

func (h *StatsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.Router.actor(ctx, w)
	if !ok {
		return
	}

	stats, err := h.StatsService.Stats(ctx, actor)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to compute stats", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}
