package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order groups tasks and carries the stage that drives dispatcher auto-assignment.
type Order struct {
	ID         int64
	Title      string
	ClientName string
	Stage      string
	CreatedAt  time.Time
}

// AutomationSetting maps an order stage to the default dispatcher for tasks entering review.
type AutomationSetting struct {
	StageID              string
	DispatcherID         string
	DispatcherPercentage decimal.Decimal
	UpdatedAt            time.Time
}

var hundred = decimal.NewFromInt(100)

// Validate checks the percentage bounds.
func (s *AutomationSetting) Validate() error {
	if s.StageID == "" {
		return fmt.Errorf("automation setting: stage id is required")
	}
	if s.DispatcherID == "" {
		return fmt.Errorf("automation setting %s: dispatcher id is required", s.StageID)
	}
	if !s.DispatcherPercentage.IsPositive() || s.DispatcherPercentage.GreaterThan(hundred) {
		return fmt.Errorf("%w: stage %s has %s", ErrInvalidPercentage, s.StageID, s.DispatcherPercentage)
	}
	return nil
}

// Assignment converts the setting into a task dispatcher assignment.
func (s *AutomationSetting) Assignment() DispatcherAssignment {
	return DispatcherAssignment{
		DispatcherID:         s.DispatcherID,
		DispatcherPercentage: s.DispatcherPercentage,
	}
}
