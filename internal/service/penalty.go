package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/config"
	"github.com/mtlprog/taskreview/internal/domain"
)

// PenaltyResult describes an applied admin penalty.
type PenaltyResult struct {
	TaskID           int64
	DispatcherID     string
	Amount           decimal.Decimal
	DispatcherSalary decimal.Decimal
	Entry            *domain.AdminPenaltyLogEntry
}

// ApplyDispatcherPenalty debits the task's dispatcher twice the reward they
// received and records the penalty in the audit log. A task can be penalized
// at most once. The balance is allowed to go negative.
//
// The penalty flag is claimed first; if the debit or the log append fails,
// the earlier steps are undone in reverse order.
func (s *TaskService) ApplyDispatcherPenalty(
	ctx context.Context,
	taskID int64,
	actor domain.Actor,
	reason string,
) (*PenaltyResult, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := s.validator.CanPenalize(task, actor); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = config.DefaultPenaltyReason
	}

	dispatcherID := *task.DispatcherID
	amount := PenaltyAmount(*task.DispatcherRewardAmount)

	if err := s.tasks.ClaimPenalty(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, fmt.Errorf("%w: task %d was penalized concurrently", domain.ErrPenaltyAlreadyApplied, taskID)
		}
		return nil, fmt.Errorf("claim penalty: %w", err)
	}

	releaseFlag := compensation{
		name: "release penalty flag",
		undo: func(ctx context.Context) error { return s.tasks.ReleasePenalty(ctx, taskID) },
	}

	salary, err := s.users.AdjustSalary(ctx, dispatcherID, amount.Neg())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			err = fmt.Errorf("%w: %s", domain.ErrDispatcherNotFound, dispatcherID)
		}
		return nil, rollback(ctx, fmt.Errorf("debit dispatcher: %w", err), releaseFlag)
	}

	entry := &domain.AdminPenaltyLogEntry{
		TaskID:        taskID,
		AdminID:       actor.ID,
		DispatcherID:  dispatcherID,
		PenaltyAmount: amount,
		Reason:        reason,
	}
	if err := s.penalties.Append(ctx, entry); err != nil {
		return nil, rollback(ctx, fmt.Errorf("append penalty log: %w", err),
			compensation{
				name: "refund dispatcher",
				undo: func(ctx context.Context) error {
					_, err := s.users.AdjustSalary(ctx, dispatcherID, amount)
					return err
				},
			},
			releaseFlag,
		)
	}

	slog.Info("dispatcher penalized",
		"task_id", taskID,
		"admin_id", actor.ID,
		"dispatcher_id", dispatcherID,
		"penalty_amount", amount,
		"log_id", entry.ID,
	)

	return &PenaltyResult{
		TaskID:           taskID,
		DispatcherID:     dispatcherID,
		Amount:           amount,
		DispatcherSalary: salary,
		Entry:            entry,
	}, nil
}
