package config

// MonitorConfig defines configuration for a monitoring run
type MonitorConfig struct {
	MaxConcurrentChecks int      `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" env:"MAX_CONCURRENT_CHECKS" validate:"min=1,max=100"`
	RunTimeout          Duration `json:"run_timeout,omitempty" yaml:"run_timeout,omitempty" env:"RUN_TIMEOUT" validate:"gt=0"`
	HistoryEnabled      bool     `json:"history_enabled" yaml:"history_enabled" env:"HISTORY_ENABLED"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		MaxConcurrentChecks: DefaultMaxConcurrentChecks,
		RunTimeout:          Duration(DefaultRunTimeout),
		HistoryEnabled:      DefaultHistoryEnabled,
	}
}

func (c *MonitorConfig) applyEnv(l *envLoader) {
	apply(l, EnvMaxConcurrentChecks, &c.MaxConcurrentChecks, l.env.Int)
	applyDuration(l, EnvRunTimeout, &c.RunTimeout)
	apply(l, EnvHistoryEnabled, &c.HistoryEnabled, l.env.Bool)
}

// MetricsConfig defines where run metrics are exported
type MetricsConfig struct {
	TextfilePath string `json:"textfile_path,omitempty" yaml:"textfile_path,omitempty" env:"METRICS_TEXTFILE"`
}

func (c *MetricsConfig) applyEnv(l *envLoader) {
	apply(l, EnvMetricsTextfile, &c.TextfilePath, l.env.str)
}
