package models

import "time"

// RunHistoryRecord is one row of the per-run Parquet archive.
type RunHistoryRecord struct {
	RunID         string    `parquet:"run_id,zstd"`
	URLIdentifier string    `parquet:"url_identifier,zstd"`
	URL           string    `parquet:"url,zstd"`
	Key           string    `parquet:"key,zstd"`
	State         string    `parquet:"state,zstd"`
	OldHash       string    `parquet:"old_hash,zstd,optional"`
	NewHash       string    `parquet:"new_hash,zstd,optional"`
	ContentType   string    `parquet:"content_type,zstd,optional"`
	Size          int64     `parquet:"size"`
	Attempts      int32     `parquet:"attempts"`
	Error         string    `parquet:"error,zstd,optional"`
	CheckedAt     time.Time `parquet:"checked_at"`
	DurationMs    int64     `parquet:"duration_ms"`
}

// NewRunHistoryRecord flattens a check result into a history row.
func NewRunHistoryRecord(runID string, r CheckResult) RunHistoryRecord {
	return RunHistoryRecord{
		RunID:         runID,
		URLIdentifier: r.Entry.Identifier,
		URL:           r.Entry.URL,
		Key:           r.Entry.Key,
		State:         string(r.State),
		OldHash:       r.OldHash,
		NewHash:       r.NewHash,
		ContentType:   r.ContentType,
		Size:          int64(r.Size),
		Attempts:      int32(r.Attempts),
		Error:         r.ErrorMessage(),
		CheckedAt:     r.CheckedAt,
		DurationMs:    r.Duration.Milliseconds(),
	}
}
