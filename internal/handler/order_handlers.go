package handler

import (
	"net/http"

	"github.com/mtlprog/taskreview/internal/handler/dto"
)

// handleOrderTasks returns the ids of the tasks that belong to an order.
// @Summary List order tasks
// @Description The order's task list, derived from the tasks themselves
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} dto.OrderTasksResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /orders/{id}/tasks [get]
func (h *Handler) handleOrderTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentActor(w, r); !ok {
		return
	}

	orderID, ok := extractID(w, r, "order")
	if !ok {
		return
	}

	ids, err := h.taskService.OrderTaskIDs(ctx, orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.OrderTasksResponse{OrderID: orderID, TaskIDs: ids})
}
