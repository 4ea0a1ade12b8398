package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

var (
	// overdueRate is the share of the base salary paid for a late task.
	overdueRate = decimal.RequireFromString("0.9")

	// penaltyMultiplier scales the applied dispatcher reward into the admin penalty.
	penaltyMultiplier = decimal.NewFromInt(2)

	hundred = decimal.NewFromInt(100)
)

// Compensation is the outcome of the calculator for one task at one instant.
type Compensation struct {
	// Settleable is false when dispatcher, percentage or salary is missing;
	// such an approval moves no money.
	Settleable       bool
	Overdue          bool
	BaseSalary       decimal.Decimal
	WorkerPayment    decimal.Decimal
	DispatcherReward decimal.Decimal
}

// CalculateCompensation computes the worker payment and dispatcher reward for
// task as of at. The dispatcher reward is always taken from the base salary,
// never from the overdue-discounted worker payment.
func CalculateCompensation(task *domain.Task, at time.Time) Compensation {
	c := Compensation{Overdue: task.IsOverdue(at)}
	if task.Salary == nil {
		return c
	}

	c.BaseSalary = *task.Salary
	c.WorkerPayment = WorkerPayment(c.BaseSalary, c.Overdue)

	if task.DispatcherID == nil || task.DispatcherPercentage == nil {
		return c
	}
	if !c.BaseSalary.IsPositive() || !task.DispatcherPercentage.IsPositive() {
		return c
	}

	c.DispatcherReward = DispatcherReward(c.BaseSalary, *task.DispatcherPercentage)
	// a reward that rounds to zero cents cannot be penalized later
	c.Settleable = c.DispatcherReward.IsPositive()
	return c
}

// WorkerPayment is the base salary, or 90% of it rounded to a whole unit when overdue.
func WorkerPayment(salary decimal.Decimal, overdue bool) decimal.Decimal {
	if !overdue {
		return salary
	}
	return salary.Mul(overdueRate).Round(0)
}

// DispatcherReward is salary * percentage / 100, rounded to cents.
func DispatcherReward(salary, percentage decimal.Decimal) decimal.Decimal {
	return salary.Mul(percentage).Div(hundred).Round(2)
}

// PenaltyAmount is twice the applied dispatcher reward.
func PenaltyAmount(reward decimal.Decimal) decimal.Decimal {
	return reward.Mul(penaltyMultiplier)
}

// ExecutionTime returns whole seconds between creation and completion, never negative.
func ExecutionTime(createdAt, completedAt time.Time) int64 {
	if createdAt.IsZero() || completedAt.Before(createdAt) {
		return 0
	}
	return int64(completedAt.Sub(createdAt) / time.Second)
}
