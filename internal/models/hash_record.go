package models

import "time"

// HashRecord is the persisted ledger entry for one URL.
type HashRecord struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Identifier string    `json:"identifier"`
	Hash       string    `json:"hash"`
	CheckedAt  time.Time `json:"checked_at"`
}

// PayloadRecord is a stored copy of the content that produced a hash.
type PayloadRecord struct {
	Key         string
	URL         string
	Hash        string
	ContentType string
	Content     []byte
}
