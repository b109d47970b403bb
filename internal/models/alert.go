package models

import "time"

// AlertEvent describes a detected content change.
type AlertEvent struct {
	URLIdentifier string
	URL           string
	OldHash       string // Empty when the URL had no previous hash
	NewHash       string
	Timestamp     time.Time
}

// IsFirstSighting reports whether the change is the first hash recorded for the URL.
func (a AlertEvent) IsFirstSighting() bool {
	return a.OldHash == ""
}
