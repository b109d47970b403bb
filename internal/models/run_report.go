package models

import "time"

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunStatusCompleted      RunStatus = "COMPLETED"
	RunStatusPartialFailure RunStatus = "PARTIAL_FAILURE"
)

// IsSuccess checks if the run had no failed URLs
func (s RunStatus) IsSuccess() bool {
	return s == RunStatusCompleted
}

// RunReport summarises one run.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CheckResult // Configuration order
	Changed    int
	Unchanged  int
	Failed     int
	Status     RunStatus
}

// NewRunReport builds a report from results and computes the counters and status.
func NewRunReport(runID string, startedAt, finishedAt time.Time, results []CheckResult) *RunReport {
	report := &RunReport{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Results:    results,
	}
	for _, r := range results {
		switch r.State {
		case CheckStateChanged:
			report.Changed++
		case CheckStateUnchanged:
			report.Unchanged++
		default:
			report.Failed++
		}
	}
	report.Status = RunStatusCompleted
	if report.Failed > 0 {
		report.Status = RunStatusPartialFailure
	}
	return report
}

// Total returns the number of URLs checked.
func (r *RunReport) Total() int {
	return len(r.Results)
}

// Duration returns the wall-clock time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedResults returns the results in the FAILED state.
func (r *RunReport) FailedResults() []CheckResult {
	var failed []CheckResult
	for _, res := range r.Results {
		if res.State == CheckStateFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// ChangedResults returns the results in the CHANGED state.
func (r *RunReport) ChangedResults() []CheckResult {
	var changed []CheckResult
	for _, res := range r.Results {
		if res.State == CheckStateChanged {
			changed = append(changed, res)
		}
	}
	return changed
}
