package models

import "time"

// CheckState is the state of a single URL check.
type CheckState string

const (
	CheckStatePending   CheckState = "PENDING"
	CheckStateFetching  CheckState = "FETCHING"
	CheckStateUnchanged CheckState = "UNCHANGED"
	CheckStateChanged   CheckState = "CHANGED"
	CheckStateFailed    CheckState = "FAILED"
)

// IsTerminal reports whether no further transition is possible
func (s CheckState) IsTerminal() bool {
	switch s {
	case CheckStateUnchanged, CheckStateChanged, CheckStateFailed:
		return true
	default:
		return false
	}
}

// CheckResult is the outcome of checking one URL.
type CheckResult struct {
	Entry       URLEntry
	State       CheckState
	OldHash     string
	NewHash     string
	ContentType string
	Size        int
	Attempts    int
	Stage       string // Step that failed: "fetch", "store_payload", "store_hash", "cancelled"
	Err         error
	CheckedAt   time.Time
	Duration    time.Duration
}

// ErrorMessage returns the failure text, or an empty string on success.
func (r CheckResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
