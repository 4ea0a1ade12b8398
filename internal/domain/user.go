package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the coarse permission class of a user.
type Role string

const (
	RoleWorker     Role = "worker"
	RoleDispatcher Role = "dispatcher"
	RoleAdmin      Role = "admin"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	return r == RoleWorker || r == RoleDispatcher || r == RoleAdmin
}

// User is a worker, dispatcher or admin with a running salary balance.
type User struct {
	ID             string
	FullName       string
	Role           Role
	Token          string
	Salary         decimal.Decimal
	CompletedTasks []CompletedTask
	CreatedAt      time.Time
}

// CompletedTask records a worker payment for one task.
type CompletedTask struct {
	TaskID      int64
	Payment     decimal.Decimal
	HasPenalty  bool
	CompletedAt time.Time
}

// HasCompleted reports whether the worker has been credited for the task.
func (u *User) HasCompleted(taskID int64) bool {
	for _, ct := range u.CompletedTasks {
		if ct.TaskID == taskID {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin returns true for admin callers.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ActorOf returns the Actor view of a user.
func ActorOf(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
