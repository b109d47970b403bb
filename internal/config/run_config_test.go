package config

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/hashwatch/internal/common"
)

// recordingLookup remembers every key that was requested.
type recordingLookup struct {
	mu     sync.Mutex
	values map[string]string
	seen   []string
}

func (r *recordingLookup) lookup(key string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, key)
	v, ok := r.values[key]
	return v, ok
}

func (r *recordingLookup) requested(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.seen {
		if k == key {
			return true
		}
	}
	return false
}

func load(t *testing.T, env map[string]string) (*RunConfig, error) {
	t.Helper()
	return LoadRunConfig(MapLookup(env), nil, zerolog.Nop())
}

func requireConfigError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
	assert.Equal(t, field, cfgErr.Field)
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestLoadRunConfig_ParsesContiguousURLsInOrder(t *testing.T) {
	for n := 1; n <= 5; n++ {
		env := map[string]string{EnvDataBucket: "s3://watch-data"}
		var want []string
		for i := 1; i <= n; i++ {
			u := fmt.Sprintf("https://cdn.example.com/file%d.js", i)
			env[fmt.Sprintf("URL_%d", i)] = u
			want = append(want, u)
		}

		cfg, err := load(t, env)
		require.NoError(t, err)
		require.Len(t, cfg.URLs, n)
		for i, u := range cfg.URLs {
			assert.Equal(t, want[i], u.URL)
			assert.Equal(t, fmt.Sprintf("URL_%d", i+1), u.Identifier)
		}
	}
}

func TestLoadRunConfig_Defaults(t *testing.T) {
	cfg, err := load(t, map[string]string{
		EnvDataBucket: "my-bucket",
		"URL_1":       "https://example.com/app.js",
	})
	require.NoError(t, err)

	assert.Equal(t, "my-bucket", cfg.StorageLocation)
	assert.Equal(t, SchemeS3, cfg.Location.Scheme)
	assert.Equal(t, "my-bucket", cfg.Location.Bucket)
	assert.Equal(t, HashPathPrefix, cfg.HashPathPrefix)
	assert.Equal(t, DataPathPrefix, cfg.DataPathPrefix)
	assert.Empty(t, cfg.AlertEmail)
	assert.False(t, cfg.AlertsEnabled())
	assert.False(t, cfg.Debug)
	assert.Equal(t, DefaultFetchTimeout, cfg.Fetch.Timeout.Std())
	assert.Equal(t, DefaultFetchRetries, cfg.Fetch.Retries)
	assert.Equal(t, DefaultMaxConcurrentChecks, cfg.Monitor.MaxConcurrentChecks)
	assert.Equal(t, DefaultRunTimeout, cfg.Monitor.RunTimeout.Std())
}

func TestLoadRunConfig_FatalConditions(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "data bucket unset",
			env:   map[string]string{"URL_1": "https://example.com/a.js"},
			field: EnvDataBucket,
		},
		{
			name:  "data bucket empty",
			env:   map[string]string{EnvDataBucket: "  ", "URL_1": "https://example.com/a.js"},
			field: EnvDataBucket,
		},
		{
			name:  "data bucket unsupported scheme",
			env:   map[string]string{EnvDataBucket: "ftp://host/dir", "URL_1": "https://example.com/a.js"},
			field: EnvDataBucket,
		},
		{
			name:  "url 1 unset",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_2": "https://example.com/b.js"},
			field: "URL_1",
		},
		{
			name:  "malformed alert email",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_1": "https://example.com/a.js", EnvAlertEmail: "not-an-email"},
			field: EnvAlertEmail,
		},
		{
			name:  "alert email without domain",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_1": "https://example.com/a.js", EnvAlertEmail: "ops@"},
			field: EnvAlertEmail,
		},
		{
			name:  "alert email set but empty",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_1": "https://example.com/a.js", EnvAlertEmail: ""},
			field: EnvAlertEmail,
		},
		{
			name:  "alert email whitespace only",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_1": "https://example.com/a.js", EnvAlertEmail: "   "},
			field: EnvAlertEmail,
		},
		{
			name:  "unparseable tunable",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_1": "https://example.com/a.js", EnvFetchRetries: "many"},
			field: EnvFetchRetries,
		},
		{
			name:  "tunable out of range",
			env:   map[string]string{EnvDataBucket: "bucket", "URL_1": "https://example.com/a.js", EnvMaxConcurrentChecks: "0"},
			field: EnvMaxConcurrentChecks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(t, tt.env)
			assert.Nil(t, cfg)
			requireConfigError(t, err, tt.field)
		})
	}
}

func TestLoadRunConfig_StopsAtFirstGap(t *testing.T) {
	rec := &recordingLookup{values: map[string]string{
		EnvDataBucket: "bucket",
		"URL_1":       "https://example.com/one.js",
		"URL_3":       "https://example.com/three.js",
	}}

	cfg, err := LoadRunConfig(rec.lookup, nil, zerolog.Nop())
	require.NoError(t, err)

	require.Len(t, cfg.URLs, 1)
	assert.Equal(t, "https://example.com/one.js", cfg.URLs[0].URL)
	assert.True(t, rec.requested("URL_2"))
	assert.False(t, rec.requested("URL_3"))
}

func TestLoadRunConfig_AlertEmail(t *testing.T) {
	cfg, err := load(t, map[string]string{
		EnvDataBucket: "bucket",
		"URL_1":       "https://example.com/a.js",
		EnvAlertEmail: "ops@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", cfg.AlertEmail)
	assert.True(t, cfg.AlertsEnabled())
}

func TestLoadRunConfig_DebugTruthiness(t *testing.T) {
	tests := map[string]bool{
		"1":     true,
		"true":  true,
		"TRUE":  true,
		"yes":   true,
		"On":    true,
		"0":     false,
		"false": false,
		"no":    false,
		"debug": false,
	}

	for value, want := range tests {
		t.Run(value, func(t *testing.T) {
			cfg, err := load(t, map[string]string{
				EnvDataBucket: "bucket",
				"URL_1":       "https://example.com/a.js",
				EnvDebug:      value,
			})
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Debug)
			assert.Equal(t, want, cfg.Log.Debug)
		})
	}
}

func TestLoadRunConfig_EmptyTunablesUseDefaults(t *testing.T) {
	cfg, err := load(t, map[string]string{
		EnvDataBucket:   "bucket",
		"URL_1":         "https://example.com/a.js",
		EnvFetchTimeout: "",
		EnvFetchRetries: "  ",
	})
	require.NoError(t, err)
	assert.Empty(t, cfg.AlertEmail)
	assert.False(t, cfg.AlertsEnabled())
	assert.Equal(t, DefaultFetchTimeout, cfg.Fetch.Timeout.Std())
	assert.Equal(t, DefaultFetchRetries, cfg.Fetch.Retries)
}

func TestLoadRunConfig_EmptyURLKeepsItsSlot(t *testing.T) {
	cfg, err := load(t, map[string]string{
		EnvDataBucket: "bucket",
		"URL_1":       "https://example.com/a.js",
		"URL_2":       "",
		"URL_3":       "https://example.com/c.js",
	})
	require.NoError(t, err)

	require.Len(t, cfg.URLs, 3)
	assert.Equal(t, "URL_2", cfg.URLs[1].Identifier)
	assert.Empty(t, cfg.URLs[1].URL)
	assert.Equal(t, "URL_3", cfg.URLs[2].Identifier)
}

func TestLoadRunConfig_DuplicatesAndMalformedURLs(t *testing.T) {
	cfg, err := load(t, map[string]string{
		EnvDataBucket: "bucket",
		"URL_1":       "https://example.com/a.js",
		"URL_2":       "https://example.com/a.js",
		"URL_3":       "not a url",
		"URL_4":       "https://example.com/d.js",
	})
	require.NoError(t, err)

	require.Len(t, cfg.URLs, 3)
	assert.Equal(t, "URL_1", cfg.URLs[0].Identifier)
	assert.Equal(t, "URL_3", cfg.URLs[1].Identifier)
	assert.Equal(t, "not a url", cfg.URLs[1].URL)
	assert.Equal(t, "URL_4", cfg.URLs[2].Identifier)
}

func TestLoadRunConfig_TunablesOverrideSettings(t *testing.T) {
	base := NewDefaultSettings()
	base.Fetch.Retries = 5
	base.Monitor.MaxConcurrentChecks = 8

	cfg, err := LoadRunConfig(MapLookup(map[string]string{
		EnvDataBucket:          "sqlite:///var/lib/hashwatch/state.db",
		"URL_1":                "https://example.com/a.js",
		EnvFetchTimeout:        "5s",
		EnvFetchURLBudget:      "90",
		EnvRunTimeout:          "1m",
		EnvMaxConcurrentChecks: "3",
		EnvMaxContentSize:      "2048",
		EnvRateLimitPerHost:    "2.5",
		EnvHistoryEnabled:      "false",
		EnvS3UseSSL:            "false",
		EnvSMTPHost:            "smtp.example.com",
		EnvSMTPPort:            "2525",
		EnvDiscordWebhookURL:   "https://discord.com/api/webhooks/1/abc",
		EnvLogFormat:           "json",
	}), base, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, SchemeSQLite, cfg.Location.Scheme)
	assert.Equal(t, "/var/lib/hashwatch/state.db", cfg.Location.Path)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout.Std())
	assert.Equal(t, 90*time.Second, cfg.Fetch.URLBudget.Std())
	assert.Equal(t, 5, cfg.Fetch.Retries)
	assert.Equal(t, time.Minute, cfg.Monitor.RunTimeout.Std())
	assert.Equal(t, 3, cfg.Monitor.MaxConcurrentChecks)
	assert.Equal(t, int64(2048), cfg.Fetch.MaxContentSize)
	assert.InDelta(t, 2.5, cfg.Fetch.RateLimitPerHost, 0.0001)
	assert.False(t, cfg.Monitor.HistoryEnabled)
	assert.False(t, cfg.Storage.S3UseSSL)
	assert.Equal(t, "smtp.example.com", cfg.Notification.SMTP.Host)
	assert.Equal(t, 2525, cfg.Notification.SMTP.Port)
	assert.Equal(t, "json", cfg.Log.LogFormat)

	// base is not modified
	assert.Equal(t, 8, base.Monitor.MaxConcurrentChecks)
	assert.Equal(t, DefaultFetchTimeout, base.Fetch.Timeout.Std())
}

func TestLoadLogConfig(t *testing.T) {
	cfg := LoadLogConfig(MapLookup(map[string]string{
		EnvLogFormat: "json",
		EnvLogFile:   "/tmp/hashwatch.log",
		EnvDebug:     "yes",
	}), NewDefaultLogConfig())

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/hashwatch.log", cfg.LogFile)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.True(t, cfg.Debug)
}
