package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mtlprog/taskreview/internal/domain"
)

func TestTaskStatus(t *testing.T) {
	assert.True(t, domain.TaskStatusPending.IsActive())
	assert.True(t, domain.TaskStatusInProgress.IsActive())
	assert.False(t, domain.TaskStatusUnderReview.IsActive())
	assert.False(t, domain.TaskStatusCompleted.IsActive())

	assert.True(t, domain.TaskStatusCompleted.IsTerminal())
	assert.False(t, domain.TaskStatusUnderReview.IsTerminal())

	assert.True(t, domain.TaskStatusUnderReview.IsValid())
	assert.False(t, domain.TaskStatus("done").IsValid())
}

func TestTask_IsOverdueUsesOriginalDeadline(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	task := &domain.Task{DueDate: &past}
	assert.False(t, task.IsOverdue(now), "no snapshot means never overdue")

	task.OriginalDeadline = &future
	assert.False(t, task.IsOverdue(now), "due date changes do not matter once snapshotted")

	task.OriginalDeadline = &past
	task.DueDate = &future
	assert.True(t, task.IsOverdue(now))
	assert.Equal(t, &past, task.EffectiveDeadline())
}

func TestTask_CanBePenalized(t *testing.T) {
	reward := decimal.NewFromInt(100)

	task := &domain.Task{}
	assert.False(t, task.CanBePenalized())

	task.DispatcherRewardApplied = true
	assert.False(t, task.CanBePenalized(), "reward amount is required")

	task.DispatcherRewardAmount = &reward
	assert.True(t, task.CanBePenalized())

	task.PenaltyApplied = true
	assert.False(t, task.CanBePenalized())
}

func TestAutomationSetting_Validate(t *testing.T) {
	s := &domain.AutomationSetting{StageID: "assembly", DispatcherID: "d", DispatcherPercentage: decimal.NewFromInt(10)}
	assert.NoError(t, s.Validate())

	s.DispatcherPercentage = decimal.Zero
	assert.ErrorIs(t, s.Validate(), domain.ErrInvalidPercentage)

	s.DispatcherPercentage = decimal.NewFromInt(101)
	assert.ErrorIs(t, s.Validate(), domain.ErrInvalidPercentage)

	s.DispatcherPercentage = decimal.NewFromInt(100)
	assert.NoError(t, s.Validate())
}
