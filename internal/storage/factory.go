package storage

import (
	"context"
	"fmt"

	"github.com/aleister1102/hashwatch/internal/config"
	"github.com/rs/zerolog"
)

// Open returns the bucket implementation for a parsed storage location.
func Open(ctx context.Context, loc config.StorageLocation, cfg config.StorageConfig, logger zerolog.Logger) (Bucket, error) {
	switch loc.Scheme {
	case config.SchemeS3:
		client, err := NewS3Client(cfg)
		if err != nil {
			return nil, NewStorageError("open", loc.String(), "", err)
		}
		return NewS3Bucket(ctx, client, loc.Bucket, loc.Prefix, cfg.S3Region, cfg.S3CreateBucket, logger)
	case config.SchemeFile:
		return NewFileBucket(loc.Path, logger), nil
	case config.SchemeSQLite:
		b, err := NewSQLiteBucket(loc.Path, logger)
		if err != nil {
			return nil, NewStorageError("open", loc.String(), "", err)
		}
		return b, nil
	default:
		return nil, NewStorageError("open", loc.Raw, "", fmt.Errorf("unsupported storage scheme %q", loc.Scheme))
	}
}
