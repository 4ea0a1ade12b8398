package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mtlprog/taskreview/internal/domain"
)

// compensation undoes one already-applied workflow step.
type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// rollback runs compensations in order after cause aborted a workflow.
// It returns cause when every compensation succeeds; otherwise the result
// wraps domain.ErrPartiallyApplied together with cause and each failure.
func rollback(ctx context.Context, cause error, steps ...compensation) error {
	var failures []error
	for _, step := range steps {
		if err := step.undo(ctx); err != nil {
			slog.Error("compensation failed",
				"step", step.name,
				"cause", cause,
				"error", err,
			)
			failures = append(failures, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	if len(failures) == 0 {
		return cause
	}
	return fmt.Errorf("%w: %w (compensation: %w)", domain.ErrPartiallyApplied, cause, errors.Join(failures...))
}
