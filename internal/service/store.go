package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

// TaskStore is the task side of the persistence contract. Every mutating
// method is a single conditional update: when the row is not in the expected
// state it returns domain.ErrConcurrentUpdate and writes nothing.
type TaskStore interface {
	GetByID(ctx context.Context, taskID int64) (*domain.Task, error)

	// SubmitForReview moves an active task to under_review, locks it and snapshots
	// the original deadline. The assignment is only written when no dispatcher is set.
	SubmitForReview(ctx context.Context, taskID int64, assignment *domain.DispatcherAssignment) (*domain.Task, error)

	// ReturnForRework appends the next ledger entry and reopens the task.
	ReturnForRework(ctx context.Context, taskID int64, comment string, returnedAt time.Time) (*domain.ReviewReturn, error)

	// Settle completes an under-review task whose reward has not been applied yet.
	Settle(ctx context.Context, taskID int64, settlement domain.Settlement) error
	// Unsettle reverts Settle for a task that has not been penalized.
	Unsettle(ctx context.Context, taskID int64) error

	// ClaimPenalty sets penalty_applied on a rewarded, unpenalized task.
	ClaimPenalty(ctx context.Context, taskID int64) error
	// ReleasePenalty clears penalty_applied.
	ReleasePenalty(ctx context.Context, taskID int64) error

	Delete(ctx context.Context, taskID int64) error

	// ListUncreditedSettlements returns rewarded tasks whose worker has no completed-task entry.
	ListUncreditedSettlements(ctx context.Context) ([]*domain.Task, error)
}

// UserStore is the user side of the persistence contract. Salary changes are
// applied atomically per row, never as read-then-write.
type UserStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// AdjustSalary adds delta (possibly negative, no floor) and returns the new balance.
	AdjustSalary(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)

	// CreditWorkerForTask records the worker payment and credits it once per task.
	// It reports false when the task was already credited.
	CreditWorkerForTask(ctx context.Context, workerID string, taskID int64, payment decimal.Decimal, hasPenalty bool) (bool, error)

	// ReverseWorkerCredit debits amount with a floor at zero and removes the
	// completed-task entry. It returns the new balance.
	ReverseWorkerCredit(ctx context.Context, workerID string, taskID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// OrderReader exposes the order data the workflows read.
type OrderReader interface {
	GetStage(ctx context.Context, orderID int64) (string, error)
	ListTaskIDs(ctx context.Context, orderID int64) ([]int64, error)
}

// AutomationReader reads the default dispatcher configured for an order stage.
type AutomationReader interface {
	GetByStage(ctx context.Context, stageID string) (*domain.AutomationSetting, error)
}

// PenaltyLog is the append-only admin penalty audit trail.
type PenaltyLog interface {
	Append(ctx context.Context, entry *domain.AdminPenaltyLogEntry) error
}
