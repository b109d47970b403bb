package storage

import (
	"context"
	"path"
	"strings"
)

// Object is a stored blob with its attributes.
type Object struct {
	Key         string
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// Bucket is a flat key/value object store. Put replaces an object in a single
// atomic write: readers observe either the previous object or the new one.
type Bucket interface {
	// Get returns ErrObjectNotFound when the key does not exist.
	Get(ctx context.Context, key string) (*Object, error)
	Put(ctx context.Context, obj Object) error
	// List returns the keys under prefix in lexical order. It returns
	// ErrBucketNotFound when the backing store itself does not exist.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
	String() string
}

// validateKey rejects keys that could escape the bucket root.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// joinKey joins a root prefix and a key with "/".
func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

func cloneMetadata(md map[string]string) map[string]string {
	if len(md) == 0 {
		return nil
	}
	out := make(map[string]string, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
