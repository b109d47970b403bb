package config

// LogConfig defines configuration for logging
type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty" env:"LOG_FILE"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" env:"LOG_FORMAT" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"LOG_LEVEL" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty"`
	Debug         bool   `json:"-" yaml:"-" env:"DEBUG"`
}

// NewDefaultLogConfig creates default log configuration
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFile:       DefaultLogFile,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
	}
}

// LoadLogConfig overlays the logging variables from the environment on base.
// It never fails: unknown formats and levels are rejected later by LoadRunConfig,
// and the logger falls back to its defaults until then.
func LoadLogConfig(lookup LookupFunc, base LogConfig) LogConfig {
	env := envReader{lookup: lookup}
	cfg := base
	cfg.LogFile = env.String(EnvLogFile, cfg.LogFile)
	cfg.LogFormat = env.String(EnvLogFormat, cfg.LogFormat)
	cfg.LogLevel = env.String(EnvLogLevel, cfg.LogLevel)
	if v, ok := env.value(EnvDebug); ok {
		cfg.Debug = isTruthy(v)
	}
	return cfg
}
