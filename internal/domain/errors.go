package domain

import "errors"

// Domain-specific errors for workflow validation and guards.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTaskLocked        = errors.New("task is locked for review")
	ErrConcurrentUpdate  = errors.New("task was modified concurrently")

	// Settlement guards
	ErrAlreadySettled        = errors.New("task reward already settled")
	ErrNoRewardToPenalize    = errors.New("no reward to penalize against")
	ErrPenaltyAlreadyApplied = errors.New("penalty already applied")
	ErrPartiallyApplied      = errors.New("workflow partially applied")
	ErrNotSettleable         = errors.New("task has no dispatcher reward to settle")

	// Permission errors
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotTaskWorker     = errors.New("not the responsible worker")
	ErrNotTaskDispatcher = errors.New("not the task dispatcher")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDispatcherNotFound = errors.New("dispatcher not found")
	ErrInvalidToken       = errors.New("invalid authentication token")

	// Order and automation errors
	ErrOrderNotFound             = errors.New("order not found")
	ErrAutomationSettingNotFound = errors.New("automation setting not found")

	// Validation errors
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidTaskID     = errors.New("invalid task id")
	ErrInvalidPercentage = errors.New("dispatcher percentage must be in (0, 100]")
	ErrEmptyComment      = errors.New("comment is required")
)
