package storage

import (
	"errors"
	"fmt"

	"github.com/aleister1102/hashwatch/internal/common"
)

var (
	// ErrObjectNotFound indicates that the requested key does not exist
	ErrObjectNotFound = fmt.Errorf("object %w", common.ErrNotFound)
	// ErrBucketNotFound indicates that the backing bucket, directory or database does not exist
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrInvalidKey indicates a key that is empty or escapes the bucket root
	ErrInvalidKey = errors.New("invalid object key")
)

// StorageError represents a failed storage operation.
type StorageError struct {
	Op       string // "get", "put", "list", "open"
	Location string
	Key      string
	Err      error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s '%s' at %s: %v", e.Op, e.Key, e.Location, e.Err)
	}
	return fmt.Sprintf("storage %s at %s: %v", e.Op, e.Location, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new storage error
func NewStorageError(op, location, key string, err error) *StorageError {
	return &StorageError{Op: op, Location: location, Key: key, Err: err}
}

// IsNotFound reports whether err means a missing object or bucket.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrBucketNotFound)
}
