package config

import (
	"strconv"

	"github.com/rs/zerolog"
)

// MonitoredURL is one URL_n entry in configuration order.
type MonitoredURL struct {
	Identifier string `validate:"required"`
	URL        string
}

// RunConfig is the immutable configuration of a single run. It is only built by
// LoadRunConfig.
type RunConfig struct {
	URLs            []MonitoredURL  `validate:"min=1,dive"`
	AlertEmail      string          `env:"ALERT_EMAIL" validate:"omitempty,alertaddr"`
	Debug           bool            `env:"DEBUG"`
	StorageLocation string          `env:"DATA_BUCKET" validate:"required,storagelocation"`
	Location        StorageLocation `validate:"-"`
	HashPathPrefix  string          `validate:"required"`
	DataPathPrefix  string          `validate:"required"`

	Settings
}

// AlertsEnabled reports whether change alerts have a recipient.
func (c *RunConfig) AlertsEnabled() bool {
	return c.AlertEmail != ""
}

// LoadRunConfig builds a RunConfig from environment lookups on top of base settings
// (nil means defaults). It fails with a *ConfigError when DATA_BUCKET or URL_1 is
// missing, when ALERT_EMAIL is malformed, or when a tunable cannot be parsed.
//
// URL_1, URL_2, ... are read in order and the first unset index ends the list;
// later indices are never looked up. A URL_n set to an empty value keeps its slot
// and fails when fetched. ALERT_EMAIL is validated whenever it is set, even to "".
func LoadRunConfig(lookup LookupFunc, base *Settings, logger zerolog.Logger) (*RunConfig, error) {
	if base == nil {
		base = NewDefaultSettings()
	}
	logger = logger.With().Str("component", "ConfigLoader").Logger()
	l := &envLoader{env: envReader{lookup: lookup}, logger: logger}

	bucket, ok := l.env.value(EnvDataBucket)
	if !ok {
		return nil, newConfigError(EnvDataBucket, "required environment variable is not set", nil)
	}
	l.record(EnvDataBucket, bucket)

	location, err := ParseStorageLocation(bucket)
	if err != nil {
		return nil, newConfigError(EnvDataBucket, "invalid storage location", err)
	}

	urls, err := loadURLs(l)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{
		URLs:            urls,
		StorageLocation: bucket,
		Location:        location,
		HashPathPrefix:  HashPathPrefix,
		DataPathPrefix:  DataPathPrefix,
		Settings:        base.clone(),
	}

	if v, ok := l.env.present(EnvAlertEmail); ok {
		if !IsValidAlertAddress(v) {
			return nil, newConfigError(EnvAlertEmail, "expected an address of the form local-part@domain", nil)
		}
		cfg.AlertEmail = v
		l.record(EnvAlertEmail, v)
	}

	if v, ok := l.env.value(EnvDebug); ok {
		cfg.Debug = isTruthy(v)
		l.record(EnvDebug, cfg.Debug)
	}
	cfg.Log.Debug = cfg.Debug

	cfg.Settings.applyEnv(l)
	if l.err != nil {
		return nil, l.err
	}

	if err := validateStruct(cfg); err != nil {
		return nil, err
	}

	logger.Info().
		Int("url_count", len(cfg.URLs)).
		Str("storage", location.String()).
		Bool("alerts_enabled", cfg.AlertsEnabled()).
		Bool("debug", cfg.Debug).
		Msg("Configuration loaded")

	return cfg, nil
}

func loadURLs(l *envLoader) ([]MonitoredURL, error) {
	var urls []MonitoredURL
	seen := make(map[string]string)

	for i := 1; ; i++ {
		identifier := EnvURLPrefix + strconv.Itoa(i)
		raw, ok := l.env.present(identifier)
		if !ok {
			break
		}
		l.record(identifier, raw)

		if first, dup := seen[raw]; dup {
			l.logger.Warn().Str("variable", identifier).Str("duplicate_of", first).Str("url", raw).Msg("Duplicate URL ignored")
			continue
		}
		seen[raw] = identifier

		if !IsFetchableURL(raw) {
			l.logger.Warn().Str("variable", identifier).Str("url", raw).Msg("URL is not an absolute http(s) URL, it will fail when fetched")
		}
		urls = append(urls, MonitoredURL{Identifier: identifier, URL: raw})
	}

	if len(urls) == 0 {
		return nil, newConfigError(EnvURLPrefix+"1", "at least one URL is required", nil)
	}
	return urls, nil
}
