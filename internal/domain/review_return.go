package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReviewReturn is one rework cycle: a dispatcher sent the task back with a comment.
type ReviewReturn struct {
	TaskID       int64
	ReturnNumber int
	Comment      string
	ReturnedAt   time.Time
}

// ReviewLedger is the append-only, ordered history of a task's review returns.
type ReviewLedger []ReviewReturn

// Count returns the number of rework cycles so far.
func (l ReviewLedger) Count() int {
	return len(l)
}

// Next builds the entry that would be appended for a new return.
// The number is always Count()+1; the comment is trimmed and must not be empty.
func (l ReviewLedger) Next(taskID int64, comment string, at time.Time) (ReviewReturn, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ReviewReturn{}, ErrEmptyComment
	}
	return ReviewReturn{
		TaskID:       taskID,
		ReturnNumber: l.Count() + 1,
		Comment:      comment,
		ReturnedAt:   at,
	}, nil
}

// Append validates entry against the ledger and returns the extended ledger.
func (l ReviewLedger) Append(entry ReviewReturn) (ReviewLedger, error) {
	if entry.ReturnNumber != l.Count()+1 {
		return l, fmt.Errorf("%w: return number %d, expected %d", ErrConcurrentUpdate, entry.ReturnNumber, l.Count()+1)
	}
	if strings.TrimSpace(entry.Comment) == "" {
		return l, ErrEmptyComment
	}
	out := make(ReviewLedger, len(l), len(l)+1)
	copy(out, l)
	return append(out, entry), nil
}

// Last returns the most recent return, if any.
func (l ReviewLedger) Last() (ReviewReturn, bool) {
	if len(l) == 0 {
		return ReviewReturn{}, false
	}
	return l[len(l)-1], true
}
