package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdminPenaltyLogEntry is an immutable audit record of a penalty against a dispatcher.
type AdminPenaltyLogEntry struct {
	ID            int64
	TaskID        int64
	AdminID       string
	DispatcherID  string
	PenaltyAmount decimal.Decimal
	Reason        string
	CreatedAt     time.Time
}
