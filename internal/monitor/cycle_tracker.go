package monitor

import (
	"sort"
	"sync"

	"github.com/aleister1102/hashwatch/internal/models"
)

// CycleTracker collects the results of one run. Results are kept in configuration
// order regardless of completion order.
type CycleTracker struct {
	mutex       sync.RWMutex
	results     []models.CheckResult
	changedURLs map[string]struct{}
}

// NewCycleTracker creates a new CycleTracker
func NewCycleTracker() *CycleTracker {
	return &CycleTracker{
		changedURLs: make(map[string]struct{}),
	}
}

// StartCycle resets the tracker with one PENDING slot per entry.
func (ct *CycleTracker) StartCycle(entries []models.URLEntry) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	ct.changedURLs = make(map[string]struct{})
	ct.results = make([]models.CheckResult, len(entries))
	for i, entry := range entries {
		ct.results[i] = models.CheckResult{
			Entry:   entry,
			State:   models.CheckStatePending,
			OldHash: entry.StoredHash,
		}
	}
}

// Record stores the result for the entry at index.
func (ct *CycleTracker) Record(index int, result models.CheckResult) {
	ct.mutex.Lock()
	defer ct.mutex.Unlock()

	if index < 0 || index >= len(ct.results) {
		return
	}
	ct.results[index] = result
	if result.State == models.CheckStateChanged {
		ct.changedURLs[result.Entry.URL] = struct{}{}
	}
}

// Results returns a copy of all slots in configuration order.
func (ct *CycleTracker) Results() []models.CheckResult {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	results := make([]models.CheckResult, len(ct.results))
	copy(results, ct.results)
	return results
}

// GetChangedURLs returns the URLs that changed in the current cycle, sorted
func (ct *CycleTracker) GetChangedURLs() []string {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()

	urls := make([]string, 0, len(ct.changedURLs))
	for url := range ct.changedURLs {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// HasChanges returns true if there are changes in the current cycle
func (ct *CycleTracker) HasChanges() bool {
	return ct.GetChangeCount() > 0
}

// GetChangeCount returns the number of changed URLs in the current cycle
func (ct *CycleTracker) GetChangeCount() int {
	ct.mutex.RLock()
	defer ct.mutex.RUnlock()
	return len(ct.changedURLs)
}
