package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mtlprog/taskreview/internal/config"
	"github.com/mtlprog/taskreview/internal/domain"
	"github.com/mtlprog/taskreview/internal/handler/dto"
	"github.com/mtlprog/taskreview/internal/repository"
)

// parseReviewQueueFilters reads pagination and the dispatcher filter from the query string.
func parseReviewQueueFilters(r *http.Request) (dto.ReviewQueueFilters, string) {
	query := r.URL.Query()
	filters := dto.ReviewQueueFilters{Limit: config.DefaultQueueLimit}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > config.MaxQueueLimit {
			return filters, "limit must be between 1 and " + strconv.Itoa(config.MaxQueueLimit)
		}
		filters.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filters, "offset must be a non-negative integer"
		}
		filters.Offset = offset
	}

	if raw := query.Get("dispatcher_id"); raw != "" {
		if _, err := uuid.Parse(raw); err != nil {
			return filters, "dispatcher_id must be a valid UUID"
		}
		filters.DispatcherID = &raw
	}

	return filters, ""
}

// scopeToDispatcher limits a dispatcher to their own data; admins keep the requested filter.
func scopeToDispatcher(user *domain.User, requested *string) (*string, bool) {
	switch user.Role {
	case domain.RoleAdmin:
		return requested, true
	case domain.RoleDispatcher:
		if requested != nil && *requested != user.ID {
			return nil, false
		}
		id := user.ID
		return &id, true
	default:
		return nil, false
	}
}

// handleReviewQueue lists tasks waiting for review.
// @Summary Review queue
// @Description Under-review tasks ordered by due date. Dispatchers see their own queue; admins may filter by dispatcher_id.
// @Tags review
// @Produce json
// @Param dispatcher_id query string false "Dispatcher UUID (admin only)"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ReviewQueueResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /review-queue [get]
func (h *Handler) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	filters, problem := parseReviewQueueFilters(r)
	if problem != "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", problem)
		return
	}

	dispatcherID, allowed := scopeToDispatcher(user, filters.DispatcherID)
	if !allowed {
		respondError(w, http.StatusForbidden, "INSUFFICIENT_ACCESS", "only dispatchers and admins can view review queues")
		return
	}

	queue, err := h.taskRepo.ReviewQueue(ctx, repository.ReviewQueueFilters{
		DispatcherID: dispatcherID,
		Now:          h.now(),
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch review queue")
		return
	}

	respondJSON(w, http.StatusOK, dto.ToReviewQueueResponse(queue, filters.Limit, filters.Offset))
}
