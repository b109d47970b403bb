package httpclient

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandler handles fetch retries with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"` // Retried in addition to every 5xx
}

// DefaultRetryHandlerConfig returns two retries with jittered exponential backoff
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        500 * time.Millisecond,
		MaxDelay:         10 * time.Second,
		EnableJitter:     true,
		RetryStatusCodes: []int{http.StatusTooManyRequests},
	}
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	maxDelay := config.MaxDelay
	if maxDelay < config.BaseDelay {
		maxDelay = config.BaseDelay
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         maxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// IsRetryable reports whether a failure of this kind may succeed on another attempt.
// Timeouts, connection failures, 5xx and the configured status codes are retried.
// Client errors, oversized bodies and invalid URLs never are.
func (rh *RetryHandler) IsRetryable(err *FetchError) bool {
	switch err.Kind {
	case KindTimeout, KindConnectionFailed:
		return true
	case KindHTTPError:
		return err.StatusCode >= 500 || rh.retryStatusCodes[err.StatusCode]
	default:
		return false
	}
}

// ShouldRetry determines if another attempt is allowed after the given zero-based attempt
func (rh *RetryHandler) ShouldRetry(err *FetchError, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.IsRetryable(err)
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	delay := rh.baseDelay
	if attempt > 0 {
		// Exponential backoff: baseDelay * 2^attempt
		delay = rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	}

	if delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	// Add up to 10% jitter to prevent thundering herd
	if rh.enableJitter && delay >= 10 {
		delay += time.Duration(rand.Int63n(int64(delay / 10)))
	}

	return delay
}

// WaitForRetry waits for the calculated delay before retrying
func (rh *RetryHandler) WaitForRetry(ctx context.Context, attempt int, fetchErr *FetchError) error {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Warn().
		Str("url", fetchErr.URL).
		Str("kind", string(fetchErr.Kind)).
		Int("status_code", fetchErr.StatusCode).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Fetch attempt failed, waiting before retry")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DoWithRetry runs doFunc until it succeeds, fails with a non-retryable error, runs
// out of retries or ctx is done. The returned FetchError carries the attempt count.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, url string, doFunc func(context.Context) (*Response, *FetchError)) (*Response, int, error) {
	var lastErr *FetchError
	attempts := 0

	for attempt := 0; attempt <= rh.maxRetries; attempt++ {
		if ctx.Err() != nil {
			if lastErr == nil {
				lastErr = classifyTransportError(url, ctx.Err())
			}
			break
		}

		attempts++
		resp, fetchErr := doFunc(ctx)
		if fetchErr == nil {
			return resp, attempts, nil
		}
		lastErr = fetchErr

		if !rh.ShouldRetry(fetchErr, attempt) {
			break
		}

		if err := rh.WaitForRetry(ctx, attempt, fetchErr); err != nil {
			break
		}
	}

	lastErr.Attempts = attempts
	return nil, attempts, lastErr
}
