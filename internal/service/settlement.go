package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mtlprog/taskreview/internal/domain"
)

// SettleWorkerCredits retries the worker payment for approved tasks whose
// credit never landed. The overdue discount is evaluated at the completion
// time, so a late sweep pays the same amount the approval would have.
// Returns the number of tasks credited, and an error if any task failed.
func (s *TaskService) SettleWorkerCredits(ctx context.Context) (int, error) {
	tasks, err := s.tasks.ListUncreditedSettlements(ctx)
	if err != nil {
		return 0, fmt.Errorf("find uncredited settlements: %w", err)
	}

	if len(tasks) == 0 {
		slog.Info("no uncredited settlements found")
		return 0, nil
	}

	count := 0
	var errs []error
	for _, task := range tasks {
		if err := s.creditWorker(ctx, task); err != nil {
			slog.Error("failed to credit worker",
				"task_id", task.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("task %d: %w", task.ID, err))
			continue
		}
		count++
	}

	slog.Info("settled worker credits",
		"total", len(tasks),
		"successful", count,
		"failed", len(errs),
	)

	if len(errs) > 0 {
		return count, fmt.Errorf("credited %d/%d tasks: %w", count, len(tasks), errors.Join(errs...))
	}

	return count, nil
}

// creditWorker pays the worker of a single settled task.
func (s *TaskService) creditWorker(ctx context.Context, task *domain.Task) error {
	if task.ResponsibleUserID == nil || task.CompletedAt == nil || !task.HasSalary() {
		return fmt.Errorf("%w: task %d is not a creditable settlement", domain.ErrInvalidTransition, task.ID)
	}

	comp := CalculateCompensation(task, *task.CompletedAt)

	credited, err := s.users.CreditWorkerForTask(ctx, *task.ResponsibleUserID, task.ID, comp.WorkerPayment, comp.Overdue)
	if err != nil {
		return fmt.Errorf("credit worker %s: %w", *task.ResponsibleUserID, err)
	}

	slog.Info("worker credited by sweep",
		"task_id", task.ID,
		"worker_id", *task.ResponsibleUserID,
		"payment", comp.WorkerPayment,
		"overdue", comp.Overdue,
		"newly_credited", credited,
	)

	return nil
}
