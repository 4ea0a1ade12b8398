package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

// TaskService coordinates the review lifecycle and the compensation it triggers.
type TaskService struct {
	tasks     TaskStore
	users     UserStore
	orders    OrderReader
	penalties PenaltyLog
	resolver  *DispatcherResolver
	validator *Validator
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	tasks TaskStore,
	users UserStore,
	orders OrderReader,
	settings AutomationReader,
	penalties PenaltyLog,
) *TaskService {
	return &TaskService{
		tasks:     tasks,
		users:     users,
		orders:    orders,
		penalties: penalties,
		resolver:  NewDispatcherResolver(orders, settings),
		validator: NewValidator(),
		now:       time.Now,
	}
}

// SubmitResult describes a task that entered review.
type SubmitResult struct {
	Task               *domain.Task
	DispatcherAssigned bool
	Warnings           []string
}

// ApprovalResult describes the financial outcome of an approval.
type ApprovalResult struct {
	TaskID           int64
	CompletedAt      time.Time
	RewardApplied    bool
	Overdue          bool
	DispatcherID     string
	DispatcherReward decimal.Decimal
	DispatcherSalary decimal.Decimal
	WorkerID         string
	WorkerPayment    decimal.Decimal
	WorkerCredited   bool
	Warnings         []string
}

// SubmitForReview implements the worker's submit operation: the task is locked
// for review, its deadline snapshotted and, when possible, a dispatcher assigned.
// No money moves here.
func (s *TaskService) SubmitForReview(ctx context.Context, taskID int64, actor domain.Actor) (*SubmitResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanSubmit(task, actor); err != nil {
		return nil, err
	}

	result := &SubmitResult{}

	var assignment *domain.DispatcherAssignment
	if task.DispatcherID == nil && task.OrderID != nil {
		assignment, err = s.resolver.Resolve(ctx, *task.OrderID)
		if err != nil {
			slog.Warn("dispatcher resolution failed",
				"task_id", taskID,
				"order_id", *task.OrderID,
				"error", err,
			)
			assignment = nil
		}
	}

	updated, err := s.tasks.SubmitForReview(ctx, taskID, assignment)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("%w: task %d left pending/in_progress during submission", domain.ErrInvalidTransition, taskID)
		}
		return nil, fmt.Errorf("submit task for review: %w", err)
	}
	updated.ReviewReturns = task.ReviewReturns

	result.Task = updated
	result.DispatcherAssigned = assignment != nil && updated.IsReviewedBy(assignment.DispatcherID)
	if updated.DispatcherID == nil {
		result.Warnings = append(result.Warnings, "no dispatcher assigned; the task cannot be reviewed until one is set")
	}

	slog.Info("task submitted for review",
		"task_id", taskID,
		"actor_id", actor.ID,
		"dispatcher_assigned", result.DispatcherAssigned,
		"original_deadline", updated.OriginalDeadline,
	)

	return result, nil
}

// ApproveTask implements the dispatcher's approve operation.
//
// The task is settled first with a single conditional update, so a second or
// concurrent approval can never move money twice. Then the dispatcher reward
// is credited (reverting the settlement if that fails) and finally the worker
// is paid through the idempotent credit procedure. A failed worker credit is
// reported as a warning and left for the settlement sweep.
func (s *TaskService) ApproveTask(ctx context.Context, taskID int64, actor domain.Actor) (*ApprovalResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanReview(task, actor); err != nil {
		return nil, err
	}
	if err := s.validator.CanApprove(task); err != nil {
		return nil, err
	}

	now := s.now()
	comp := CalculateCompensation(task, now)

	// without a reward the task stays under review until it is fixed
	if !comp.Settleable {
		return nil, fmt.Errorf("%w: task %d needs a dispatcher, percentage and salary", domain.ErrNotSettleable, taskID)
	}

	reward := comp.DispatcherReward
	settlement := domain.Settlement{
		CompletedAt:          now,
		ExecutionTimeSeconds: ExecutionTime(task.CreatedAt, now),
		RewardAmount:         &reward,
	}

	if err := s.tasks.Settle(ctx, taskID, settlement); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, s.explainSettleConflict(ctx, taskID)
		}
		return nil, fmt.Errorf("settle task: %w", err)
	}

	dispatcherID := *task.DispatcherID
	result := &ApprovalResult{
		TaskID:           taskID,
		CompletedAt:      now,
		RewardApplied:    true,
		Overdue:          comp.Overdue,
		DispatcherID:     dispatcherID,
		DispatcherReward: comp.DispatcherReward,
		WorkerPayment:    comp.WorkerPayment,
	}

	dispatcherSalary, err := s.users.AdjustSalary(ctx, dispatcherID, comp.DispatcherReward)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			err = fmt.Errorf("%w: %s", domain.ErrDispatcherNotFound, dispatcherID)
		}
		return nil, rollback(ctx, fmt.Errorf("credit dispatcher: %w", err), compensation{
			name: "revert settlement",
			undo: func(ctx context.Context) error { return s.tasks.Unsettle(ctx, taskID) },
		})
	}
	result.DispatcherSalary = dispatcherSalary

	if task.ResponsibleUserID != nil {
		workerID := *task.ResponsibleUserID
		result.WorkerID = workerID

		if _, err := s.users.CreditWorkerForTask(ctx, workerID, taskID, comp.WorkerPayment, comp.Overdue); err != nil {
			slog.Warn("worker credit failed, approval kept",
				"task_id", taskID,
				"worker_id", workerID,
				"payment", comp.WorkerPayment,
				"error", err,
			)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("task approved but worker %s was not paid: %v", workerID, err))
		} else {
			result.WorkerCredited = true
		}
	}

	slog.Info("task approved",
		"task_id", taskID,
		"actor_id", actor.ID,
		"dispatcher_id", dispatcherID,
		"dispatcher_reward", comp.DispatcherReward,
		"worker_payment", comp.WorkerPayment,
		"overdue", comp.Overdue,
		"worker_credited", result.WorkerCredited,
	)

	return result, nil
}

// explainSettleConflict re-reads a task whose settlement update matched no row.
func (s *TaskService) explainSettleConflict(ctx context.Context, taskID int64) error {
	current, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if current.DispatcherRewardApplied || current.Status == domain.TaskStatusCompleted {
		return fmt.Errorf("%w: task %d was settled concurrently", domain.ErrAlreadySettled, taskID)
	}
	return fmt.Errorf("%w: task %d is %s", domain.ErrConcurrentUpdate, taskID, current.Status)
}

// ReturnTask implements the dispatcher's return-for-rework operation.
func (s *TaskService) ReturnTask(
	ctx context.Context,
	taskID int64,
	actor domain.Actor,
	comment string,
) (*domain.ReviewReturn, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, domain.ErrEmptyComment
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanReview(task, actor); err != nil {
		return nil, err
	}
	if err := s.validator.CanReturn(task); err != nil {
		return nil, err
	}

	entry, err := s.tasks.ReturnForRework(ctx, taskID, comment, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("%w: task %d left review during return", domain.ErrInvalidTransition, taskID)
		}
		return nil, fmt.Errorf("return task for rework: %w", err)
	}

	slog.Info("task returned for rework",
		"task_id", taskID,
		"actor_id", actor.ID,
		"return_number", entry.ReturnNumber,
	)

	return entry, nil
}

// GetTask returns a task with its review ledger.
func (s *TaskService) GetTask(ctx context.Context, taskID int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, taskID)
}

// OrderTaskIDs returns the ids of the tasks that belong to an order.
func (s *TaskService) OrderTaskIDs(ctx context.Context, orderID int64) ([]int64, error) {
	return s.orders.ListTaskIDs(ctx, orderID)
}
