package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

const (
	metaSuffix    = ".meta.json"
	tempPrefix    = ".tmp-"
	fileDirPerm   = 0755
	fileWritePerm = 0644
)

type fileMeta struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FileBucket stores objects as files below a root directory. Writes go to a
// temporary file in the target directory followed by a rename.
type FileBucket struct {
	root   string
	logger zerolog.Logger
}

// NewFileBucket creates a bucket rooted at dir. The directory is created on first write.
func NewFileBucket(dir string, logger zerolog.Logger) *FileBucket {
	return &FileBucket{
		root:   filepath.Clean(dir),
		logger: logger.With().Str("component", "FileBucket").Str("root", dir).Logger(),
	}
}

func (b *FileBucket) String() string {
	return "file://" + b.root
}

func (b *FileBucket) path(key string) string {
	return filepath.Join(b.root, filepath.FromSlash(key))
}

// Get reads an object and its metadata sidecar.
func (b *FileBucket) Get(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("get", b.String(), key, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewStorageError("get", b.String(), key, err)
	}

	body, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageError("get", b.String(), key, ErrObjectNotFound)
		}
		return nil, NewStorageError("get", b.String(), key, err)
	}

	obj := &Object{Key: key, Body: body}
	metaBytes, err := os.ReadFile(b.path(key) + metaSuffix)
	switch {
	case err == nil:
		var meta fileMeta
		if jsonErr := json.Unmarshal(metaBytes, &meta); jsonErr != nil {
			b.logger.Warn().Err(jsonErr).Str("key", key).Msg("Ignoring unreadable metadata sidecar")
		} else {
			obj.ContentType = meta.ContentType
			obj.Metadata = meta.Metadata
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, NewStorageError("get", b.String(), key, err)
	}
	return obj, nil
}

// Put atomically replaces the object file and then its metadata sidecar. A failed
// body write leaves the previous object and sidecar untouched.
func (b *FileBucket) Put(ctx context.Context, obj Object) error {
	if err := validateKey(obj.Key); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}
	if err := ctx.Err(); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}

	target := b.path(obj.Key)
	if err := os.MkdirAll(filepath.Dir(target), fileDirPerm); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}

	if err := writeFileAtomic(target, obj.Body); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}

	if obj.ContentType == "" && len(obj.Metadata) == 0 {
		if err := os.Remove(target + metaSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return NewStorageError("put", b.String(), obj.Key, err)
		}
		return nil
	}

	metaBytes, err := json.Marshal(fileMeta{ContentType: obj.ContentType, Metadata: obj.Metadata})
	if err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}
	if err := writeFileAtomic(target+metaSuffix, metaBytes); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}
	return nil
}

// List walks the directory under prefix.
func (b *FileBucket) List(ctx context.Context, prefix string) ([]string, error) {
	if info, err := os.Stat(b.root); err != nil || !info.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageError("list", b.String(), prefix, ErrBucketNotFound)
		}
		return nil, NewStorageError("list", b.String(), prefix, err)
	}

	start := b.root
	if prefix != "" {
		start = b.path(strings.TrimSuffix(prefix, "/"))
	}

	var keys []string
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == start {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if d.IsDir() || strings.HasSuffix(name, metaSuffix) || strings.HasPrefix(name, tempPrefix) {
			return nil
		}
		rel, relErr := filepath.Rel(b.root, p)
		if relErr != nil {
			return relErr
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, NewStorageError("list", b.String(), prefix, err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the file bucket.
func (b *FileBucket) Close() error {
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, tempPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, fileWritePerm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
