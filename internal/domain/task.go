package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskStatus represents the status of a task in the review state machine.
type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"
	TaskStatusInProgress  TaskStatus = "in_progress"
	TaskStatusUnderReview TaskStatus = "under_review"
	TaskStatusCompleted   TaskStatus = "completed"
)

// IsTerminal returns true if the lifecycle controller allows no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted
}

// IsActive returns true for statuses a worker can submit from.
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusPending || s == TaskStatusInProgress
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusUnderReview, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Task is a unit of work whose lifecycle and compensation fields the workflows mutate.
type Task struct {
	ID          int64
	UUID        string
	Title       string
	Description string
	Status      TaskStatus

	ResponsibleUserID *string
	OrderID           *int64

	DueDate          *time.Time
	OriginalDeadline *time.Time // snapshot of DueDate at first submission
	IsLocked         bool

	Salary                    *decimal.Decimal
	DispatcherID              *string
	DispatcherPercentage      *decimal.Decimal
	DispatcherRewardAmount    *decimal.Decimal
	DispatcherRewardApplied   bool
	DispatcherRewardAppliedAt *time.Time
	PenaltyApplied            bool

	CompletedAt          *time.Time
	ExecutionTimeSeconds *int64

	ReviewReturns ReviewLedger

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAssignedTo checks if the task's responsible worker is the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.ResponsibleUserID != nil && *t.ResponsibleUserID == userID
}

// IsReviewedBy checks if the given user is the task's dispatcher.
func (t *Task) IsReviewedBy(userID string) bool {
	return t.DispatcherID != nil && *t.DispatcherID == userID
}

// IsOverdue reports whether the original deadline passed before at.
// Tasks that were never submitted have no original deadline and are never overdue.
func (t *Task) IsOverdue(at time.Time) bool {
	return t.OriginalDeadline != nil && t.OriginalDeadline.Before(at)
}

// EffectiveDeadline is the deadline shown to reviewers: the snapshot if taken, else the due date.
func (t *Task) EffectiveDeadline() *time.Time {
	if t.OriginalDeadline != nil {
		return t.OriginalDeadline
	}
	return t.DueDate
}

// HasSalary reports whether the task carries a positive base salary.
func (t *Task) HasSalary() bool {
	return t.Salary != nil && t.Salary.IsPositive()
}

// CanBePenalized reports whether an admin penalty is still possible.
func (t *Task) CanBePenalized() bool {
	return t.DispatcherRewardApplied && t.DispatcherRewardAmount != nil && !t.PenaltyApplied
}

// DispatcherAssignment is the dispatcher and cut resolved for a task entering review.
type DispatcherAssignment struct {
	DispatcherID         string
	DispatcherPercentage decimal.Decimal
}

// Settlement holds the fields written when an under-review task is approved.
// RewardAmount is nil when the task completes without financial effect.
type Settlement struct {
	CompletedAt          time.Time
	ExecutionTimeSeconds int64
	RewardAmount         *decimal.Decimal
}

// RewardApplied reports whether this settlement credits the dispatcher.
func (s Settlement) RewardApplied() bool {
	return s.RewardAmount != nil
}
