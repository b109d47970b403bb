package config

// FetchConfig defines how remote files are downloaded
type FetchConfig struct {
	Timeout            Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" env:"FETCH_TIMEOUT" validate:"gt=0"`
	Retries            int      `json:"retries" yaml:"retries" env:"FETCH_RETRIES" validate:"min=0,max=10"`
	URLBudget          Duration `json:"url_budget,omitempty" yaml:"url_budget,omitempty" env:"FETCH_URL_BUDGET" validate:"gt=0"`
	BaseDelay          Duration `json:"base_delay,omitempty" yaml:"base_delay,omitempty" validate:"gt=0"`
	MaxDelay           Duration `json:"max_delay,omitempty" yaml:"max_delay,omitempty" validate:"gtefield=BaseDelay"`
	EnableJitter       bool     `json:"enable_jitter" yaml:"enable_jitter"`
	MaxContentSize     int64    `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" env:"MAX_CONTENT_SIZE" validate:"gt=0"`
	RateLimitPerHost   float64  `json:"rate_limit_per_host,omitempty" yaml:"rate_limit_per_host,omitempty" env:"RATE_LIMIT_PER_HOST" validate:"min=0"`
	RateLimitBurst     int      `json:"rate_limit_burst,omitempty" yaml:"rate_limit_burst,omitempty" validate:"min=1"`
	UserAgent          string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty" env:"USER_AGENT" validate:"required"`
	MaxRedirects       int      `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	EnableHTTP2        bool     `json:"enable_http2" yaml:"enable_http2"`
	Proxy              string   `json:"proxy,omitempty" yaml:"proxy,omitempty" env:"FETCH_PROXY" validate:"omitempty,url"`
	MaxConnsPerHost    int      `json:"max_conns_per_host,omitempty" yaml:"max_conns_per_host,omitempty" validate:"min=0"`

	// Headers are sent with every request, after which User-Agent is applied.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// NewDefaultFetchConfig creates default fetch configuration
func NewDefaultFetchConfig() FetchConfig {
	return FetchConfig{
		Timeout:          Duration(DefaultFetchTimeout),
		Retries:          DefaultFetchRetries,
		URLBudget:        Duration(DefaultFetchURLBudget),
		BaseDelay:        Duration(DefaultFetchBaseDelay),
		MaxDelay:         Duration(DefaultFetchMaxDelay),
		EnableJitter:     true,
		MaxContentSize:   DefaultMaxContentSize,
		RateLimitPerHost: DefaultRateLimitPerHost,
		RateLimitBurst:   DefaultRateLimitBurst,
		UserAgent:        DefaultUserAgent,
		MaxRedirects:     DefaultMaxRedirects,
		EnableHTTP2:      true,
	}
}

func (c *FetchConfig) applyEnv(l *envLoader) {
	applyDuration(l, EnvFetchTimeout, &c.Timeout)
	apply(l, EnvFetchRetries, &c.Retries, l.env.Int)
	applyDuration(l, EnvFetchURLBudget, &c.URLBudget)
	apply(l, EnvMaxContentSize, &c.MaxContentSize, l.env.Int64)
	apply(l, EnvRateLimitPerHost, &c.RateLimitPerHost, l.env.Float)
	apply(l, EnvUserAgent, &c.UserAgent, l.env.str)
	apply(l, EnvFetchProxy, &c.Proxy, l.env.str)
}
