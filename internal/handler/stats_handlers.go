package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mtlprog/taskreview/internal/handler/dto"
	"github.com/mtlprog/taskreview/internal/repository"
)

// handleGetStats returns dispatcher review statistics.
// @Summary Get statistics
// @Description Per-dispatcher review workload, rewards and penalties. Dispatchers see only their own row.
// @Tags stats
// @Produce json
// @Param dispatcher_id query string false "Filter by dispatcher UUID (admin only)"
// @Success 200 {object} dto.StatsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stats [get]
func (h *Handler) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	// Parse dispatcher_id filter
	var requested *string
	if raw := r.URL.Query().Get("dispatcher_id"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "dispatcher_id must be a valid UUID")
			return
		}
		requested = &raw
	}

	dispatcherID, allowed := scopeToDispatcher(user, requested)
	if !allowed {
		respondError(w, http.StatusForbidden, "INSUFFICIENT_ACCESS", "only dispatchers and admins can view statistics")
		return
	}

	now := h.now()
	stats, err := h.taskRepo.GetDispatcherStats(ctx, repository.StatsFilters{
		DispatcherID: dispatcherID,
		Now:          now,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch dispatcher stats")
		return
	}

	respondJSON(w, http.StatusOK, dto.StatsResponse{
		GeneratedAt: now,
		Dispatchers: dto.ToDispatcherStats(stats),
	})
}
