package config

import (
	"fmt"
	"strings"
)

// LocationScheme identifies the storage backend behind DATA_BUCKET.
type LocationScheme string

const (
	SchemeS3     LocationScheme = "s3"
	SchemeFile   LocationScheme = "file"
	SchemeSQLite LocationScheme = "sqlite"
)

// StorageLocation is a parsed DATA_BUCKET value.
//
//	s3://bucket[/prefix]   S3-compatible object store
//	bucket[/prefix]        same as s3://
//	file:///abs/dir        local directory
//	/abs/dir, ./rel/dir    local directory
//	sqlite:///path/to/db   single SQLite file
type StorageLocation struct {
	Raw    string
	Scheme LocationScheme
	Bucket string
	Prefix string
	Path   string
}

func (l StorageLocation) String() string {
	switch l.Scheme {
	case SchemeS3:
		if l.Prefix == "" {
			return "s3://" + l.Bucket
		}
		return "s3://" + l.Bucket + "/" + l.Prefix
	default:
		return string(l.Scheme) + "://" + l.Path
	}
}

// ParseStorageLocation parses a DATA_BUCKET value.
func ParseStorageLocation(raw string) (StorageLocation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StorageLocation{}, fmt.Errorf("empty storage location")
	}

	loc := StorageLocation{Raw: raw}
	scheme, rest, hasScheme := strings.Cut(raw, "://")
	if !hasScheme {
		if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ".") {
			loc.Scheme = SchemeFile
			loc.Path = raw
			return loc, nil
		}
		scheme, rest = string(SchemeS3), raw
	}

	switch LocationScheme(strings.ToLower(scheme)) {
	case SchemeS3:
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return StorageLocation{}, fmt.Errorf("storage location %q has no bucket name", raw)
		}
		loc.Scheme = SchemeS3
		loc.Bucket = bucket
		loc.Prefix = strings.Trim(prefix, "/")
	case SchemeFile:
		if rest == "" {
			return StorageLocation{}, fmt.Errorf("storage location %q has no directory", raw)
		}
		loc.Scheme = SchemeFile
		loc.Path = rest
	case SchemeSQLite:
		if rest == "" {
			return StorageLocation{}, fmt.Errorf("storage location %q has no database path", raw)
		}
		loc.Scheme = SchemeSQLite
		loc.Path = rest
	default:
		return StorageLocation{}, fmt.Errorf("unsupported storage scheme %q", scheme)
	}
	return loc, nil
}
