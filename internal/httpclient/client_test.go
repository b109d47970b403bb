package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/hashwatch/internal/common"
	"github.com/aleister1102/hashwatch/internal/config"
)

func newTestClient(t *testing.T, configure func(b *HTTPClientBuilder)) *HTTPClient {
	t.Helper()
	builder := NewHTTPClientBuilder(zerolog.Nop()).
		WithTimeout(2*time.Second).
		WithURLBudget(5*time.Second).
		WithRetry(2, time.Millisecond, 5*time.Millisecond, false).
		WithHTTP2(false)
	if configure != nil {
		configure(builder)
	}
	client, err := builder.Build()
	require.NoError(t, err)
	return client
}

func requireFetchError(t *testing.T, err error) *FetchError {
	t.Helper()
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	return fetchErr
}

func TestFetchContent_Success(t *testing.T) {
	var userAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, "abc")
	}))
	defer server.Close()

	client := newTestClient(t, func(b *HTTPClientBuilder) { b.WithUserAgent("hashwatch-test") })

	result, err := client.FetchContent(context.Background(), server.URL+"/app.js")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), result.Content)
	assert.Equal(t, "application/javascript", result.ContentType)
	assert.Equal(t, http.StatusOK, result.HTTPStatusCode)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, "hashwatch-test", userAgent.Load())
}

func TestFetchContent_RetriesTransientStatus(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusTooManyRequests} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var requests int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if atomic.AddInt32(&requests, 1) <= 2 {
					w.WriteHeader(status)
					return
				}
				fmt.Fprint(w, "recovered")
			}))
			defer server.Close()

			client := newTestClient(t, nil)

			result, err := client.FetchContent(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, "recovered", string(result.Content))
			assert.Equal(t, 3, result.Attempts)
			assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
		})
	}
}

func TestFetchContent_RetriesExhausted(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, nil)

	_, err := client.FetchContent(context.Background(), server.URL)
	fetchErr := requireFetchError(t, err)
	assert.Equal(t, KindHTTPError, fetchErr.Kind)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
	assert.Equal(t, 3, fetchErr.Attempts)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestFetchContent_NotFoundIsNotRetried(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, nil)

	_, err := client.FetchContent(context.Background(), server.URL)
	fetchErr := requireFetchError(t, err)
	assert.Equal(t, KindHTTPError, fetchErr.Kind)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestFetchContent_TooLarge(t *testing.T) {
	t.Run("declared length", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, strings.Repeat("x", 20))
		}))
		defer server.Close()

		client := newTestClient(t, func(b *HTTPClientBuilder) { b.WithMaxContentSize(10) })

		_, err := client.FetchContent(context.Background(), server.URL)
		fetchErr := requireFetchError(t, err)
		assert.Equal(t, KindTooLarge, fetchErr.Kind)
		assert.Equal(t, 1, fetchErr.Attempts)
	})

	t.Run("streamed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, strings.Repeat("x", 5))
			w.(http.Flusher).Flush()
			fmt.Fprint(w, strings.Repeat("y", 15))
		}))
		defer server.Close()

		client := newTestClient(t, func(b *HTTPClientBuilder) { b.WithMaxContentSize(10) })

		_, err := client.FetchContent(context.Background(), server.URL)
		fetchErr := requireFetchError(t, err)
		assert.Equal(t, KindTooLarge, fetchErr.Kind)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, strings.Repeat("x", 10))
		}))
		defer server.Close()

		client := newTestClient(t, func(b *HTTPClientBuilder) { b.WithMaxContentSize(10) })

		result, err := client.FetchContent(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Len(t, result.Content, 10)
	})
}

func TestFetchContent_InvalidURL(t *testing.T) {
	client := newTestClient(t, nil)

	for _, raw := range []string{"not a url", "ftp://example.com/file.js", "http://", "://broken"} {
		t.Run(raw, func(t *testing.T) {
			_, err := client.FetchContent(context.Background(), raw)
			fetchErr := requireFetchError(t, err)
			assert.Equal(t, KindInvalidURL, fetchErr.Kind)
			assert.Equal(t, 0, fetchErr.Attempts)
		})
	}
}

func TestFetchContent_AttemptTimeout(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, func(b *HTTPClientBuilder) {
		b.WithTimeout(50*time.Millisecond).WithRetry(1, time.Millisecond, time.Millisecond, false)
	})

	_, err := client.FetchContent(context.Background(), server.URL)
	fetchErr := requireFetchError(t, err)
	assert.Equal(t, KindTimeout, fetchErr.Kind)
	assert.ErrorIs(t, err, common.ErrTimeout)
	assert.Equal(t, 2, fetchErr.Attempts)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestFetchContent_URLBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(t, func(b *HTTPClientBuilder) {
		b.WithTimeout(3*time.Second).
			WithURLBudget(100*time.Millisecond).
			WithRetry(5, time.Millisecond, time.Millisecond, false)
	})

	start := time.Now()
	_, err := client.FetchContent(context.Background(), server.URL)
	elapsed := time.Since(start)

	fetchErr := requireFetchError(t, err)
	assert.Equal(t, KindTimeout, fetchErr.Kind)
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestFetchContent_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	client := newTestClient(t, func(b *HTTPClientBuilder) {
		b.WithRetry(1, time.Millisecond, time.Millisecond, false)
	})

	_, err := client.FetchContent(context.Background(), target)
	fetchErr := requireFetchError(t, err)
	assert.Equal(t, KindConnectionFailed, fetchErr.Kind)
	assert.Equal(t, 2, fetchErr.Attempts)
}

func TestHostRateLimiter(t *testing.T) {
	unlimited := NewHostRateLimiter(0, 1)
	for i := 0; i < 100; i++ {
		require.NoError(t, unlimited.Wait(context.Background(), "example.com"))
	}

	limited := NewHostRateLimiter(0.001, 1)
	require.NoError(t, limited.Wait(context.Background(), "example.com"))
	require.NoError(t, limited.Wait(context.Background(), "other.example.com"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limited.Wait(ctx, "example.com"))
}

func TestHTTPClientBuilder_Config(t *testing.T) {
	builder := NewHTTPClientBuilder(zerolog.Nop())
	cfg := builder.Config()
	assert.Equal(t, 2, cfg.Retry.MaxRetries)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxContentSize)

	builder.WithMaxContentSize(42).WithRateLimit(2.5, 3).WithCustomHeader("X-Test", "1")
	cfg = builder.Config()
	assert.Equal(t, int64(42), cfg.MaxContentSize)
	assert.Equal(t, 2.5, cfg.RateLimitPerHost)
	assert.Equal(t, 3, cfg.RateLimitBurst)
	assert.Equal(t, "1", cfg.CustomHeaders["X-Test"])
}

func TestHTTPClientBuilder_WithFetchConfig(t *testing.T) {
	fetchCfg := config.NewDefaultFetchConfig()
	fetchCfg.Retries = 4
	fetchCfg.Timeout = config.Duration(7 * time.Second)
	fetchCfg.UserAgent = "custom-agent"
	fetchCfg.Proxy = "http://proxy.internal:3128"
	fetchCfg.EnableHTTP2 = false
	fetchCfg.MaxConnsPerHost = 4
	fetchCfg.Headers = map[string]string{"Authorization": "Bearer token"}

	cfg := NewHTTPClientBuilder(zerolog.Nop()).WithFetchConfig(fetchCfg).Config()
	assert.Equal(t, 4, cfg.Retry.MaxRetries)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, fetchCfg.URLBudget.Std(), cfg.URLBudget)
	assert.Equal(t, "custom-agent", cfg.UserAgent)
	assert.Equal(t, fetchCfg.MaxContentSize, cfg.MaxContentSize)
	assert.Equal(t, "http://proxy.internal:3128", cfg.Proxy)
	assert.False(t, cfg.EnableHTTP2)
	assert.Equal(t, 4, cfg.MaxConnsPerHost)
	assert.Equal(t, 100, cfg.MaxIdleConns)
	assert.Equal(t, "Bearer token", cfg.CustomHeaders["Authorization"])
}

func TestFetchContent_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old.js", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new.js", http.StatusFound)
	})
	mux.HandleFunc("/new.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "moved")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	following := newTestClient(t, func(b *HTTPClientBuilder) { b.WithMaxRedirects(3) })
	result, err := following.FetchContent(context.Background(), server.URL+"/old.js")
	require.NoError(t, err)
	assert.Equal(t, "moved", string(result.Content))

	notFollowing := newTestClient(t, func(b *HTTPClientBuilder) { b.WithMaxRedirects(0) })
	_, err = notFollowing.FetchContent(context.Background(), server.URL+"/old.js")
	fetchErr := requireFetchError(t, err)
	assert.Equal(t, KindHTTPError, fetchErr.Kind)
	assert.Equal(t, http.StatusFound, fetchErr.StatusCode)
	assert.Equal(t, 1, fetchErr.Attempts)
}
