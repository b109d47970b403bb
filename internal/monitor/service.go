package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aleister1102/hashwatch/internal/common"
	"github.com/aleister1102/hashwatch/internal/config"
	"github.com/aleister1102/hashwatch/internal/datastore"
	"github.com/aleister1102/hashwatch/internal/models"
)

// HashLedger is the hash store as seen by a run.
type HashLedger interface {
	HashWriter
	Load(ctx context.Context) (map[string]models.HashRecord, error)
}

// HistoryWriter archives per-run results.
type HistoryWriter interface {
	StoreRun(ctx context.Context, report *models.RunReport) (string, error)
}

// RunNotifier delivers change alerts and the end-of-run failure summary.
type RunNotifier interface {
	AlertNotifier
	NotifyRunFailure(ctx context.Context, report *models.RunReport) error
}

// MetricsObserver records run outcomes.
type MetricsObserver interface {
	ObserveResult(result models.CheckResult)
	ObserveRun(report *models.RunReport)
}

// Dependencies are the collaborators of a MonitoringService. History and Metrics are optional.
type Dependencies struct {
	Fetcher  ContentFetcher
	Hashes   HashLedger
	Payloads PayloadWriter
	Notifier RunNotifier
	History  HistoryWriter
	Metrics  MetricsObserver
}

// ErrBaselineUnavailable wraps failures to read the hash ledger at the start of a run.
var ErrBaselineUnavailable = errors.New("hash baseline unavailable")

// MonitoringService runs one check of every configured URL. It keeps no state between runs.
type MonitoringService struct {
	cfg      *config.RunConfig
	deps     Dependencies
	checker  *URLChecker
	keys     *datastore.URLHashGenerator
	logger   zerolog.Logger
	newRunID func() string
	now      func() time.Time
}

// NewMonitoringService creates a new instance of MonitoringService.
func NewMonitoringService(cfg *config.RunConfig, deps Dependencies, logger zerolog.Logger) (*MonitoringService, error) {
	if cfg == nil {
		return nil, common.NewError("run config is required")
	}
	if deps.Fetcher == nil || deps.Hashes == nil || deps.Payloads == nil || deps.Notifier == nil {
		return nil, common.NewError("fetcher, hash store, payload store and notifier are required")
	}

	instanceLogger := logger.With().Str("component", "MonitoringService").Logger()
	checker := NewURLChecker(
		logger,
		NewFetcher(deps.Fetcher, logger),
		NewProcessor(logger),
		deps.Hashes,
		deps.Payloads,
		deps.Notifier,
	)

	return &MonitoringService{
		cfg:      cfg,
		deps:     deps,
		checker:  checker,
		keys:     datastore.NewURLHashGenerator(datastore.FullHashLength),
		logger:   instanceLogger,
		newRunID: uuid.NewString,
		now:      time.Now,
	}, nil
}

// Run loads the baseline, checks every URL with bounded concurrency and returns the
// report. The only error is a baseline load failure (wrapping ErrBaselineUnavailable);
// per-URL failures are part of the report.
func (s *MonitoringService) Run(ctx context.Context) (*models.RunReport, error) {
	runID := s.newRunID()
	startedAt := s.now()
	logger := s.logger.With().Str("run_id", runID).Logger()

	baseline, err := s.deps.Hashes.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load hash baseline")
		return nil, fmt.Errorf("%w: %w", ErrBaselineUnavailable, err)
	}

	entries := s.buildEntries(baseline)
	logger.Info().
		Int("urls", len(entries)).
		Int("baseline_records", len(baseline)).
		Int("max_concurrent_checks", s.cfg.Monitor.MaxConcurrentChecks).
		Dur("run_timeout", s.cfg.Monitor.RunTimeout.Std()).
		Msg("Starting run")

	runCtx := ctx
	if timeout := s.cfg.Monitor.RunTimeout.Std(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tracker := NewCycleTracker()
	tracker.StartCycle(entries)

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.Monitor.MaxConcurrentChecks))
	for i, entry := range entries {
		g.Go(func() error {
			if runCtx.Err() != nil {
				return nil
			}
			tracker.Record(i, s.checker.CheckURL(runCtx, entry))
			return nil
		})
	}
	_ = g.Wait()

	results := s.finalizeResults(runCtx, tracker.Results())
	report := models.NewRunReport(runID, startedAt, s.now(), results)

	var failures common.ErrorCollector
	for _, r := range report.FailedResults() {
		failures.AddWithContext(r.Err, r.Entry.Identifier)
	}
	if failures.HasErrors() {
		logger.Warn().Err(failures.Error()).Int("failed", failures.Count()).Msg("Some URLs could not be checked")
	}
	if tracker.HasChanges() {
		logger.Info().Strs("changed_urls", tracker.GetChangedURLs()).Msg("Changes detected")
	}

	if s.deps.Metrics != nil {
		for _, r := range report.Results {
			s.deps.Metrics.ObserveResult(r)
		}
		s.deps.Metrics.ObserveRun(report)
	}

	s.archive(ctx, logger, report)

	if err := s.deps.Notifier.NotifyRunFailure(ctx, report); err != nil {
		logger.Warn().Err(err).Msg("Run failure notification could not be delivered")
	}

	return report, nil
}

// buildEntries pairs each configured URL with its ledger key and stored hash.
func (s *MonitoringService) buildEntries(baseline map[string]models.HashRecord) []models.URLEntry {
	entries := make([]models.URLEntry, 0, len(s.cfg.URLs))
	for _, u := range s.cfg.URLs {
		key := s.keys.GenerateHash(u.URL)
		entries = append(entries, models.URLEntry{
			Identifier: u.Identifier,
			URL:        u.URL,
			Key:        key,
			StoredHash: baseline[key].Hash,
		})
	}
	return entries
}

// finalizeResults fails every slot that never reached a terminal state.
func (s *MonitoringService) finalizeResults(runCtx context.Context, results []models.CheckResult) []models.CheckResult {
	cause := runCtx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	for i := range results {
		if results[i].State.IsTerminal() {
			continue
		}
		results[i].State = models.CheckStateFailed
		results[i].Stage = StageCancelled
		results[i].Err = common.WrapError(cause, "run ended before the check started")
		results[i].CheckedAt = s.now()
	}
	return results
}

func (s *MonitoringService) archive(ctx context.Context, logger zerolog.Logger, report *models.RunReport) {
	if s.deps.History == nil || !s.cfg.Monitor.HistoryEnabled {
		return
	}
	key, err := s.deps.History.StoreRun(ctx, report)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to archive run history")
		return
	}
	logger.Debug().Str("key", key).Msg("Run history archived")
}
