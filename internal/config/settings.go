package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aleister1102/hashwatch/internal/common"
	"gopkg.in/yaml.v3"
)

const maxSettingsFileSize = 1 << 20

// Settings holds every tunable that is not part of the URL list. It is read from an
// optional YAML or JSON file and then overridden by environment variables.
type Settings struct {
	Fetch        FetchConfig        `json:"fetch_config,omitempty" yaml:"fetch_config,omitempty"`
	Monitor      MonitorConfig      `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	Notification NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	Storage      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	Log          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	Metrics      MetricsConfig      `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
}

// NewDefaultSettings creates Settings with default values
func NewDefaultSettings() *Settings {
	return &Settings{
		Fetch:        NewDefaultFetchConfig(),
		Monitor:      NewDefaultMonitorConfig(),
		Notification: NewDefaultNotificationConfig(),
		Storage:      NewDefaultStorageConfig(),
		Log:          NewDefaultLogConfig(),
	}
}

// LoadSettings reads the tunables file at path on top of the defaults.
// An empty path returns the defaults.
func LoadSettings(path string) (*Settings, error) {
	cfg := NewDefaultSettings()
	if path == "" {
		return cfg, nil
	}

	if !fileExists(path) {
		return nil, newConfigError("config_file", fmt.Sprintf("config file '%s' does not exist", path), nil)
	}

	data, err := readSettingsFile(path)
	if err != nil {
		return nil, newConfigError("config_file", "failed to load config file content", err)
	}

	if err := parseSettingsContent(data, path, cfg); err != nil {
		return nil, newConfigError("config_file", "failed to parse config content", err)
	}

	return cfg, nil
}

func readSettingsFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSettingsFileSize {
		return nil, common.NewError("config file '%s' is larger than %d bytes", path, maxSettingsFileSize)
	}
	return os.ReadFile(path)
}

func parseSettingsContent(data []byte, path string, cfg *Settings) error {
	ext := filepath.Ext(path)
	if isYAMLFile(ext) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return common.NewError("failed to unmarshal YAML from '%s': %w", path, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.NewError("failed to unmarshal JSON from '%s': %w", path, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func (s *Settings) applyEnv(l *envLoader) {
	s.Fetch.applyEnv(l)
	s.Monitor.applyEnv(l)
	s.Notification.applyEnv(l)
	s.Storage.applyEnv(l)
	s.Metrics.applyEnv(l)
	apply(l, EnvLogFile, &s.Log.LogFile, l.env.str)
	apply(l, EnvLogFormat, &s.Log.LogFormat, l.env.str)
	apply(l, EnvLogLevel, &s.Log.LogLevel, l.env.str)
}

func (s *Settings) clone() Settings {
	out := *s
	out.Notification.MentionRoleIDs = append([]string(nil), s.Notification.MentionRoleIDs...)
	if s.Fetch.Headers != nil {
		out.Fetch.Headers = make(map[string]string, len(s.Fetch.Headers))
		for k, v := range s.Fetch.Headers {
			out.Fetch.Headers[k] = v
		}
	}
	return out
}
