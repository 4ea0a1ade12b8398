package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mtlprog/taskreview/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Partial effects first: they wrap the error that triggered the rollback
	case errors.Is(err, domain.ErrPartiallyApplied):
		slog.Error("workflow partially applied", "error", err)
		return http.StatusInternalServerError, "PARTIALLY_APPLIED", message

	// Not found
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrDispatcherNotFound):
		return http.StatusNotFound, "DISPATCHER_NOT_FOUND", message
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND", message
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND", message
	case errors.Is(err, domain.ErrAutomationSettingNotFound):
		return http.StatusNotFound, "AUTOMATION_SETTING_NOT_FOUND", message

	// Guards
	case errors.Is(err, domain.ErrAlreadySettled):
		return http.StatusConflict, "ALREADY_SETTLED", message
	case errors.Is(err, domain.ErrNotSettleable):
		return http.StatusConflict, "NOT_SETTLEABLE", message
	case errors.Is(err, domain.ErrNoRewardToPenalize):
		return http.StatusConflict, "NO_REWARD_TO_PENALIZE", message
	case errors.Is(err, domain.ErrPenaltyAlreadyApplied):
		return http.StatusConflict, "PENALTY_ALREADY_APPLIED", message
	case errors.Is(err, domain.ErrTaskLocked):
		return http.StatusConflict, "TASK_LOCKED", message
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION", message
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return http.StatusConflict, "CONCURRENT_UPDATE", message

	// Permission errors
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message
	case errors.Is(err, domain.ErrNotTaskWorker):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message
	case errors.Is(err, domain.ErrNotTaskDispatcher):
		return http.StatusForbidden, "INSUFFICIENT_ACCESS", message
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", message

	// Validation errors
	case errors.Is(err, domain.ErrEmptyComment):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidTaskID):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidPercentage):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
