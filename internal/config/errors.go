package config

import (
	"fmt"

	"github.com/aleister1102/hashwatch/internal/common"
)

// ConfigError reports a configuration problem that prevents a run from starting.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches common.ErrInvalidConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == common.ErrInvalidConfiguration
}

func newConfigError(field, reason string, err error) *ConfigError {
	return &ConfigError{Field: field, Reason: reason, Err: err}
}
