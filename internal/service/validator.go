package service

import (
	"fmt"

	"github.com/mtlprog/taskreview/internal/domain"
)

// Validator handles permission and state guards for the workflow operations.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// CanSubmit validates that actor may send task to review.
func (v *Validator) CanSubmit(task *domain.Task, actor domain.Actor) error {
	if !actor.IsAdmin() && !task.IsAssignedTo(actor.ID) {
		return fmt.Errorf("%w: user %s cannot submit task %d", domain.ErrNotTaskWorker, actor.ID, task.ID)
	}

	switch {
	case task.Status.IsActive():
		return nil
	case task.Status == domain.TaskStatusUnderReview:
		return fmt.Errorf("%w: task %d is already under review", domain.ErrTaskLocked, task.ID)
	default:
		return fmt.Errorf("%w: task %d is %s, expected pending or in_progress", domain.ErrInvalidTransition, task.ID, task.Status)
	}
}

// CanReview validates that actor may approve or return task.
// Only the assigned dispatcher or an admin reviews; an unassigned task is admin-only.
func (v *Validator) CanReview(task *domain.Task, actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != domain.RoleDispatcher || !task.IsReviewedBy(actor.ID) {
		return fmt.Errorf("%w: user %s cannot review task %d", domain.ErrNotTaskDispatcher, actor.ID, task.ID)
	}
	return nil
}

// CanApprove validates the task state for approval.
func (v *Validator) CanApprove(task *domain.Task) error {
	if task.DispatcherRewardApplied || task.Status == domain.TaskStatusCompleted {
		return fmt.Errorf("%w: task %d", domain.ErrAlreadySettled, task.ID)
	}
	if task.Status != domain.TaskStatusUnderReview {
		return fmt.Errorf("%w: task %d is %s, expected under_review", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanReturn validates the task state for a rework request.
func (v *Validator) CanReturn(task *domain.Task) error {
	if task.Status != domain.TaskStatusUnderReview {
		return fmt.Errorf("%w: task %d is %s, expected under_review", domain.ErrInvalidTransition, task.ID, task.Status)
	}
	return nil
}

// CanPenalize validates that an admin penalty may be applied to task.
func (v *Validator) CanPenalize(task *domain.Task, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can penalize dispatchers", domain.ErrPermissionDenied)
	}
	if !task.DispatcherRewardApplied || task.DispatcherRewardAmount == nil || task.DispatcherID == nil {
		return fmt.Errorf("%w: task %d", domain.ErrNoRewardToPenalize, task.ID)
	}
	if task.PenaltyApplied {
		return fmt.Errorf("%w: task %d", domain.ErrPenaltyAlreadyApplied, task.ID)
	}
	return nil
}

// CanDelete validates that actor may permanently remove tasks.
func (v *Validator) CanDelete(actor domain.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins can delete tasks", domain.ErrPermissionDenied)
	}
	return nil
}
