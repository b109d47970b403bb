package monitor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/hashwatch/internal/common"
	"github.com/aleister1102/hashwatch/internal/models"
)

// Failure stages recorded on FAILED results
const (
	StageFetch        = "fetch"
	StageStorePayload = "store_payload"
	StageStoreHash    = "store_hash"
	StageCancelled    = "cancelled"
)

// HashWriter advances the hash ledger.
type HashWriter interface {
	Put(ctx context.Context, record models.HashRecord) error
}

// PayloadWriter stores changed content.
type PayloadWriter interface {
	Put(ctx context.Context, record models.PayloadRecord) error
}

// AlertNotifier receives change alerts. Implementations decide whether a recipient exists.
type AlertNotifier interface {
	Notify(ctx context.Context, event models.AlertEvent) error
}

// URLChecker moves one URL through PENDING -> FETCHING -> UNCHANGED | CHANGED | FAILED.
type URLChecker struct {
	logger    zerolog.Logger
	fetcher   *Fetcher
	processor *Processor
	hashes    HashWriter
	payloads  PayloadWriter
	notifier  AlertNotifier
	now       func() time.Time
}

// NewURLChecker creates a new URLChecker
func NewURLChecker(
	logger zerolog.Logger,
	fetcher *Fetcher,
	processor *Processor,
	hashes HashWriter,
	payloads PayloadWriter,
	notifier AlertNotifier,
) *URLChecker {
	return &URLChecker{
		logger:    logger.With().Str("component", "URLChecker").Logger(),
		fetcher:   fetcher,
		processor: processor,
		hashes:    hashes,
		payloads:  payloads,
		notifier:  notifier,
		now:       time.Now,
	}
}

// CheckURL checks a single URL for changes. It never panics or returns an error: every
// failure is reported as a FAILED result.
func (uc *URLChecker) CheckURL(ctx context.Context, entry models.URLEntry) models.CheckResult {
	start := uc.now()
	result := models.CheckResult{
		Entry:     entry,
		State:     models.CheckStatePending,
		OldHash:   entry.StoredHash,
		CheckedAt: start,
	}
	log := uc.logger.With().Str("url_id", entry.Identifier).Str("url", entry.URL).Logger()

	result.State = models.CheckStateFetching
	fetchResult, err := uc.fetcher.FetchFileContent(ctx, entry.URL)
	if err != nil {
		result.Attempts = fetchAttempts(err)
		return uc.fail(log, result, StageFetch, err)
	}
	result.Attempts = fetchResult.Attempts

	update := uc.processor.ProcessContent(entry.URL, fetchResult.Content, fetchResult.ContentType)
	result.NewHash = update.NewHash
	result.ContentType = update.ContentType
	result.Size = update.Size
	result.Entry.CurrentHash = update.NewHash

	if entry.HasBaseline() && entry.StoredHash == update.NewHash {
		result.State = models.CheckStateUnchanged
		result.Duration = uc.now().Sub(start)
		log.Info().Str("hash", update.NewHash).Msg("Hash unchanged")
		return result
	}

	// Payload first: the hash record is the commit point.
	err = uc.payloads.Put(ctx, models.PayloadRecord{
		Key:         entry.Key,
		URL:         entry.URL,
		Hash:        update.NewHash,
		ContentType: update.ContentType,
		Content:     fetchResult.Content,
	})
	if err != nil {
		return uc.fail(log, result, StageStorePayload, common.WrapError(err, "failed to store payload"))
	}

	err = uc.hashes.Put(ctx, models.HashRecord{
		Key:        entry.Key,
		URL:        entry.URL,
		Identifier: entry.Identifier,
		Hash:       update.NewHash,
		CheckedAt:  update.FetchedAt.UTC(),
	})
	if err != nil {
		return uc.fail(log, result, StageStoreHash, common.WrapError(err, "failed to store hash"))
	}

	result.State = models.CheckStateChanged
	result.Duration = uc.now().Sub(start)
	log.Info().
		Str("old_hash", entry.StoredHash).
		Str("new_hash", update.NewHash).
		Bool("first_sighting", !entry.HasBaseline()).
		Msg("Hash changed")

	event := models.AlertEvent{
		URLIdentifier: entry.Identifier,
		URL:           entry.URL,
		OldHash:       entry.StoredHash,
		NewHash:       update.NewHash,
		Timestamp:     update.FetchedAt,
	}
	if err := uc.notifier.Notify(ctx, event); err != nil {
		log.Warn().Err(err).Msg("Change alert could not be delivered")
	}

	return result
}

func (uc *URLChecker) fail(log zerolog.Logger, result models.CheckResult, stage string, err error) models.CheckResult {
	result.State = models.CheckStateFailed
	result.Stage = stage
	result.Err = err
	result.Duration = uc.now().Sub(result.CheckedAt)
	log.Error().Err(err).Str("stage", stage).Int("attempts", result.Attempts).Msg("URL check failed")
	return result
}
