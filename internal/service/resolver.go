package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/mtlprog/taskreview/internal/domain"
)

// DispatcherResolver finds the default dispatcher for a task entering review,
// keyed by its order's current stage.
type DispatcherResolver struct {
	orders   OrderReader
	settings AutomationReader
	group    singleflight.Group
}

// NewDispatcherResolver creates a new DispatcherResolver.
func NewDispatcherResolver(orders OrderReader, settings AutomationReader) *DispatcherResolver {
	return &DispatcherResolver{orders: orders, settings: settings}
}

// Resolve returns the assignment configured for the order's stage.
// Concurrent submissions for the same stage share one settings lookup.
func (r *DispatcherResolver) Resolve(ctx context.Context, orderID int64) (*domain.DispatcherAssignment, error) {
	stage, err := r.orders.GetStage(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get stage of order %d: %w", orderID, err)
	}

	v, err, _ := r.group.Do(stage, func() (interface{}, error) {
		return r.settings.GetByStage(ctx, stage)
	})
	if err != nil {
		return nil, fmt.Errorf("get automation setting for stage %q: %w", stage, err)
	}

	setting := v.(*domain.AutomationSetting)
	if err := setting.Validate(); err != nil {
		return nil, err
	}

	assignment := setting.Assignment()
	return &assignment, nil
}
