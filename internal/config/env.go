package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves an environment variable. It has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// OSLookup reads from the process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup resolves variables from a fixed map.
func MapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

// envReader wraps a LookupFunc. For tunables, empty or whitespace-only values count
// as unset; present reports variables that exist even with an empty value.
type envReader struct {
	lookup LookupFunc
}

func (r envReader) present(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (r envReader) value(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

func (r envReader) String(key string, def string) string {
	if v, ok := r.value(key); ok {
		return v
	}
	return def
}

func (r envReader) Bool(key string, def bool) (bool, error) {
	if v, ok := r.value(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, newConfigError(key, "expected a boolean", err)
		}
		return b, nil
	}
	return def, nil
}

func (r envReader) Int(key string, def int) (int, error) {
	if v, ok := r.value(key); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, newConfigError(key, "expected an integer", err)
		}
		return i, nil
	}
	return def, nil
}

func (r envReader) Int64(key string, def int64) (int64, error) {
	if v, ok := r.value(key); ok {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, newConfigError(key, "expected an integer", err)
		}
		return i, nil
	}
	return def, nil
}

func (r envReader) Float(key string, def float64) (float64, error) {
	if v, ok := r.value(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, newConfigError(key, "expected a number", err)
		}
		return f, nil
	}
	return def, nil
}

// Duration accepts Go duration syntax ("30s", "2m") or a bare number of seconds.
func (r envReader) Duration(key string, def time.Duration) (time.Duration, error) {
	if v, ok := r.value(key); ok {
		d, err := parseDuration(v)
		if err != nil {
			return 0, newConfigError(key, "expected a duration", err)
		}
		return d, nil
	}
	return def, nil
}

// isTruthy reports whether v is one of 1, true, yes, on (case-insensitive).
func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// str adapts String to the (value, error) shape shared by the typed readers.
func (r envReader) str(key string, def string) (string, error) {
	return r.String(key, def), nil
}
