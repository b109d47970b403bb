package httpclient

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// Response is a successful (2xx) response with its full body.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// FetchContentResult holds results from FetchContent.
type FetchContentResult struct {
	Content        []byte
	ContentType    string
	HTTPStatusCode int
	Attempts       int
}

// HTTPClient wraps net/http.Client with retries, a per-URL budget, a body size cap
// and per-host rate limiting.
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
	rateLimiter  *HostRateLimiter
}

// NewHTTPClient creates a new HTTP client with the given configuration using net/http
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	logger = logger.With().Str("component", "HTTPClient").Logger()

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		} else {
			logger.Debug().Msg("HTTP/2 support enabled")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	// Attempt timeouts are applied through the request context.
	client := &http.Client{Transport: transport}

	if config.MaxRedirects <= 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Dur("url_budget", config.URLBudget).
		Int("max_retries", config.Retry.MaxRetries).
		Int64("max_content_size", config.MaxContentSize).
		Float64("rate_limit_per_host", config.RateLimitPerHost).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client:       client,
		config:       config,
		logger:       logger,
		retryHandler: NewRetryHandler(config.Retry, logger),
		rateLimiter:  NewHostRateLimiter(config.RateLimitPerHost, config.RateLimitBurst),
	}, nil
}

// FetchContent downloads rawURL with retries. Failures are returned as *FetchError.
func (c *HTTPClient) FetchContent(ctx context.Context, rawURL string) (*FetchContentResult, error) {
	target, fetchErr := parseTargetURL(rawURL)
	if fetchErr != nil {
		fetchErr.Attempts = 0
		return nil, fetchErr
	}

	if c.config.URLBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.URLBudget)
		defer cancel()
	}

	resp, attempts, err := c.retryHandler.DoWithRetry(ctx, rawURL, func(attemptCtx context.Context) (*Response, *FetchError) {
		if err := c.rateLimiter.Wait(attemptCtx, target.Host); err != nil {
			return nil, newFetchError(KindTimeout, rawURL, err)
		}
		return c.get(attemptCtx, rawURL)
	})
	if err != nil {
		c.logger.Debug().Err(err).Str("url", rawURL).Int("attempts", attempts).Msg("Fetch failed")
		return nil, err
	}

	c.logger.Debug().
		Str("url", rawURL).
		Int("content_size", len(resp.Body)).
		Str("content_type", resp.ContentType).
		Int("attempts", attempts).
		Msg("Successfully fetched content")

	return &FetchContentResult{
		Content:        resp.Body,
		ContentType:    resp.ContentType,
		HTTPStatusCode: resp.StatusCode,
		Attempts:       attempts,
	}, nil
}

// get performs a single GET attempt bounded by the per-attempt timeout.
func (c *HTTPClient) get(ctx context.Context, rawURL string) (*Response, *FetchError) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newFetchError(KindInvalidURL, rawURL, err)
	}

	for key, value := range c.config.CustomHeaders {
		req.Header.Set(key, value)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "*/*")
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, newHTTPStatusError(rawURL, resp.StatusCode)
	}

	limit := c.config.MaxContentSize
	if limit > 0 && resp.ContentLength > limit {
		return nil, newFetchError(KindTooLarge, rawURL, fmt.Errorf("content length %d exceeds limit %d", resp.ContentLength, limit))
	}

	var reader io.Reader = resp.Body
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, classifyTransportError(rawURL, err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, newFetchError(KindTooLarge, rawURL, fmt.Errorf("body exceeds limit %d", limit))
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

var errUnsupportedScheme = errors.New("only absolute http and https URLs are supported")

func parseTargetURL(rawURL string) (*url.URL, *FetchError) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, newFetchError(KindInvalidURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, newFetchError(KindInvalidURL, rawURL, errUnsupportedScheme)
	}
	return u, nil
}
