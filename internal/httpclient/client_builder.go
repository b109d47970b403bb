package httpclient

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aleister1102/hashwatch/internal/config"
)

// HTTPClientBuilder builds HTTP clients with fluent interface
type HTTPClientBuilder struct {
	config HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPClientBuilder creates a new HTTPClientBuilder with default configuration
func NewHTTPClientBuilder(logger zerolog.Logger) *HTTPClientBuilder {
	return &HTTPClientBuilder{
		config: DefaultHTTPClientConfig(),
		logger: logger,
	}
}

// WithFetchConfig applies the fetch section of the run configuration.
func (b *HTTPClientBuilder) WithFetchConfig(cfg config.FetchConfig) *HTTPClientBuilder {
	for key, value := range cfg.Headers {
		b.WithCustomHeader(key, value)
	}
	return b.
		WithTimeout(cfg.Timeout.Std()).
		WithURLBudget(cfg.URLBudget.Std()).
		WithRetry(cfg.Retries, cfg.BaseDelay.Std(), cfg.MaxDelay.Std(), cfg.EnableJitter).
		WithMaxContentSize(cfg.MaxContentSize).
		WithRateLimit(cfg.RateLimitPerHost, cfg.RateLimitBurst).
		WithUserAgent(cfg.UserAgent).
		WithMaxRedirects(cfg.MaxRedirects).
		WithInsecureSkipVerify(cfg.InsecureSkipVerify).
		WithHTTP2(cfg.EnableHTTP2).
		WithProxy(cfg.Proxy).
		WithConnectionPooling(b.config.MaxIdleConns, b.config.MaxIdleConnsPerHost, cfg.MaxConnsPerHost)
}

// WithTimeout sets the per-attempt timeout
func (b *HTTPClientBuilder) WithTimeout(timeout time.Duration) *HTTPClientBuilder {
	b.config.Timeout = timeout
	return b
}

// WithURLBudget sets the total time allowed for all attempts of one URL
func (b *HTTPClientBuilder) WithURLBudget(budget time.Duration) *HTTPClientBuilder {
	b.config.URLBudget = budget
	return b
}

// WithRetry sets the retry count and backoff bounds
func (b *HTTPClientBuilder) WithRetry(maxRetries int, baseDelay, maxDelay time.Duration, jitter bool) *HTTPClientBuilder {
	b.config.Retry.MaxRetries = maxRetries
	b.config.Retry.BaseDelay = baseDelay
	b.config.Retry.MaxDelay = maxDelay
	b.config.Retry.EnableJitter = jitter
	return b
}

// WithRateLimit sets the per-host request rate. A non-positive rate disables limiting.
func (b *HTTPClientBuilder) WithRateLimit(requestsPerSecond float64, burst int) *HTTPClientBuilder {
	b.config.RateLimitPerHost = requestsPerSecond
	b.config.RateLimitBurst = burst
	return b
}

// WithInsecureSkipVerify sets whether to skip TLS verification
func (b *HTTPClientBuilder) WithInsecureSkipVerify(skip bool) *HTTPClientBuilder {
	b.config.InsecureSkipVerify = skip
	return b
}

// WithMaxRedirects sets the maximum number of redirects to follow, 0 to not follow any
func (b *HTTPClientBuilder) WithMaxRedirects(max int) *HTTPClientBuilder {
	b.config.MaxRedirects = max
	return b
}

// WithUserAgent sets the User-Agent header
func (b *HTTPClientBuilder) WithUserAgent(userAgent string) *HTTPClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

// WithMaxContentSize sets the maximum content size to fetch in bytes (0 for no limit)
func (b *HTTPClientBuilder) WithMaxContentSize(size int64) *HTTPClientBuilder {
	b.config.MaxContentSize = size
	return b
}

// WithCustomHeader adds a header sent with every request
func (b *HTTPClientBuilder) WithCustomHeader(key, value string) *HTTPClientBuilder {
	if b.config.CustomHeaders == nil {
		b.config.CustomHeaders = make(map[string]string)
	}
	b.config.CustomHeaders[key] = value
	return b
}

// WithProxy routes requests through the given proxy URL
func (b *HTTPClientBuilder) WithProxy(proxy string) *HTTPClientBuilder {
	b.config.Proxy = proxy
	return b
}

// WithConnectionPooling sets connection pooling parameters
func (b *HTTPClientBuilder) WithConnectionPooling(maxIdle, maxIdlePerHost, maxPerHost int) *HTTPClientBuilder {
	b.config.MaxIdleConns = maxIdle
	b.config.MaxIdleConnsPerHost = maxIdlePerHost
	b.config.MaxConnsPerHost = maxPerHost
	return b
}

// WithHTTP2 enables or disables HTTP/2 support
func (b *HTTPClientBuilder) WithHTTP2(enabled bool) *HTTPClientBuilder {
	b.config.EnableHTTP2 = enabled
	return b
}

// Config returns a copy of the configuration accumulated so far
func (b *HTTPClientBuilder) Config() HTTPClientConfig {
	return b.config
}

// Build creates and returns a new HTTPClient
func (b *HTTPClientBuilder) Build() (*HTTPClient, error) {
	return NewHTTPClient(b.config, b.logger)
}
