package config

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// GetConfigPath determines the tunables file path.
// Priority:
// 1. -config command-line flag
// 2. HASHWATCH_CONFIG_PATH environment variable
// 3. hashwatch.yaml, hashwatch.yml or hashwatch.json in the current working directory
// An empty result means no file: built-in defaults apply.
func GetConfigPath(configFilePathFlag string, lookup LookupFunc) string {
	if configFilePathFlag != "" {
		return configFilePathFlag
	}

	if envPath, ok := (envReader{lookup: lookup}).value(EnvConfigPath); ok {
		return envPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for _, name := range []string{"hashwatch.yaml", "hashwatch.yml", "hashwatch.json"} {
		path := filepath.Join(cwd, name)
		if fileExists(path) {
			return path
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

var redactedVariables = map[string]bool{
	EnvSMTPPassword: true,
	EnvS3SecretKey:  true,
	EnvS3AccessKey:  true,
}

// envLoader overlays environment variables on config fields and logs every value it
// parses. The first parse error sticks and stops further reads.
type envLoader struct {
	env    envReader
	logger zerolog.Logger
	err    error
}

func (l *envLoader) record(key string, value interface{}) {
	if redactedVariables[key] {
		value = "<redacted>"
	}
	l.logger.Debug().Str("variable", key).Interface("value", value).Msg("Parsed configuration value")
}

func apply[T any](l *envLoader, key string, dst *T, read func(string, T) (T, error)) {
	if l.err != nil {
		return
	}
	if _, ok := l.env.value(key); !ok {
		return
	}
	v, err := read(key, *dst)
	if err != nil {
		l.err = err
		return
	}
	*dst = v
	l.record(key, v)
}

func applyDuration(l *envLoader, key string, dst *Duration) {
	d := dst.Std()
	apply(l, key, &d, l.env.Duration)
	*dst = Duration(d)
}
