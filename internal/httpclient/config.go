package httpclient

import "time"

// HTTPClientConfig holds configuration for HTTPClient
type HTTPClientConfig struct {
	Timeout               time.Duration // Per-attempt timeout
	URLBudget             time.Duration // Wall-clock budget for all attempts of one URL, 0 for none
	InsecureSkipVerify    bool
	MaxRedirects          int // 0 returns the redirect response itself
	UserAgent             string
	MaxContentSize        int64 // Bytes, 0 for no limit
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
	Proxy                 string
	CustomHeaders         map[string]string
	Retry                 RetryHandlerConfig
	RateLimitPerHost      float64 // Requests per second per host, 0 for unlimited
	RateLimitBurst        int
}

// DefaultHTTPClientConfig returns the default client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		URLBudget:             2 * time.Minute,
		MaxRedirects:          10,
		UserAgent:             "hashwatch/1.0",
		MaxContentSize:        10 * 1024 * 1024,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       0,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
		CustomHeaders:         map[string]string{},
		Retry:                 DefaultRetryHandlerConfig(),
		RateLimitBurst:        1,
	}
}
