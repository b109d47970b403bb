package models

// URLEntry is one monitored URL as it moves through a run.
type URLEntry struct {
	Identifier  string // Configuration slot, e.g. "URL_1"
	URL         string
	Key         string // Stable ledger key derived from the URL
	StoredHash  string // Hash from the ledger, empty when the URL has never been seen
	CurrentHash string // Hash of the content fetched in this run
}

// HasBaseline reports whether the ledger already held a hash for this URL.
func (e URLEntry) HasBaseline() bool {
	return e.StoredHash != ""
}
