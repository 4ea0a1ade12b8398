package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mtlprog/taskreview/internal/domain"
	"github.com/mtlprog/taskreview/internal/handler/dto"
)

// handleGetTask retrieves task details with the review ledger.
// @Summary Get task details
// @Description Get the task, its review-return ledger, penalties and projected compensation
// @Tags tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.TaskDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := currentActor(w, r); !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	penalties, err := h.penaltyRepo.ListByTask(ctx, taskID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch penalties")
		return
	}

	response := dto.TaskDetailResponse{
		Task:          dto.ToTaskDetail(task, h.now()),
		ReviewReturns: dto.ToReviewReturnInfos(task.ReviewReturns),
		Penalties:     make([]dto.PenaltyInfo, len(penalties)),
	}
	for i, p := range penalties {
		response.Penalties[i] = dto.ToPenaltyInfo(p)
	}

	respondJSON(w, http.StatusOK, response)
}

// handleSubmitTask sends a task to review.
// @Summary Submit task for review
// @Description Locks the task, snapshots its deadline and assigns the stage's default dispatcher. No money moves.
// @Tags workflow
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.SubmitResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/submit [post]
func (h *Handler) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	result, err := h.taskService.SubmitForReview(ctx, taskID, domain.ActorOf(user))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToSubmitResponse(result, h.now()))
}

// handleApproveTask approves a task under review.
// @Summary Approve task
// @Description Completes the task, credits the dispatcher reward and pays the worker. A failed worker payment is returned as a warning.
// @Tags workflow
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.ApprovalResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/approve [post]
func (h *Handler) handleApproveTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	result, err := h.taskService.ApproveTask(ctx, taskID, domain.ActorOf(user))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToApprovalResponse(result))
}

// handleReturnTask sends a task back for rework.
// @Summary Return task for rework
// @Description Appends a numbered entry to the review ledger and reopens the task
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body dto.ReturnTaskRequest true "Rework comment"
// @Success 200 {object} dto.ReturnResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/return [post]
func (h *Handler) handleReturnTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	// a missing body is an empty comment
	var req dto.ReturnTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	entry, err := h.taskService.ReturnTask(ctx, taskID, domain.ActorOf(user), req.Comment)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToReturnResponse(entry))
}

// handlePenalty penalizes the task's dispatcher.
// @Summary Penalize dispatcher
// @Description Admin only. Debits twice the applied dispatcher reward, at most once per task.
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param request body dto.PenaltyRequest false "Optional reason"
// @Success 200 {object} dto.PenaltyResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/penalty [post]
func (h *Handler) handlePenalty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	// the body is optional
	var req dto.PenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	result, err := h.taskService.ApplyDispatcherPenalty(ctx, taskID, domain.ActorOf(user), req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToPenaltyResponse(result))
}

// handleDeleteTask permanently deletes a task.
// @Summary Delete task
// @Description Admin only. Reverses the worker's salary credit for a completed task, then deletes it. Reversal failures are returned as warnings.
// @Tags workflow
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} dto.DeletionResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentActor(w, r)
	if !ok {
		return
	}

	taskID, ok := extractID(w, r, "task")
	if !ok {
		return
	}

	result, err := h.taskService.DeleteTask(ctx, taskID, domain.ActorOf(user))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToDeletionResponse(result))
}
