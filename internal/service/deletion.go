package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

// DeletionResult describes what the reversal managed to undo before the task was removed.
type DeletionResult struct {
	TaskID        int64
	WorkerID      string
	WorkerDebited decimal.Decimal
	WorkerSalary  *decimal.Decimal
	Warnings      []string
}

// DeleteTask permanently removes a task and reverses its effect on the worker.
//
// Reversal steps are best effort: a failure is logged and returned as a warning,
// and deletion proceeds. Only the final delete decides success. The debit uses
// the task's base salary, not the possibly discounted amount that was paid.
// The review ledger goes with the task, and the order's task list is derived
// from tasks so it needs no patching.
func (s *TaskService) DeleteTask(ctx context.Context, taskID int64, actor domain.Actor) (*DeletionResult, error) {
	if err := s.validator.CanDelete(actor); err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	result := &DeletionResult{TaskID: taskID}

	if task.Status == domain.TaskStatusCompleted && task.HasSalary() && task.ResponsibleUserID != nil {
		workerID := *task.ResponsibleUserID
		result.WorkerID = workerID

		salary, err := s.users.ReverseWorkerCredit(ctx, workerID, taskID, *task.Salary)
		if err != nil {
			slog.Warn("worker reversal failed, deleting anyway",
				"task_id", taskID,
				"worker_id", workerID,
				"amount", task.Salary,
				"error", err,
			)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("worker %s salary was not reversed: %v", workerID, err))
		} else {
			result.WorkerDebited = *task.Salary
			result.WorkerSalary = &salary
		}
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return nil, fmt.Errorf("delete task %d: %w", taskID, err)
	}

	slog.Info("task deleted",
		"task_id", taskID,
		"actor_id", actor.ID,
		"status", task.Status,
		"worker_debited", result.WorkerDebited,
		"warnings", len(result.Warnings),
	)

	return result, nil
}
