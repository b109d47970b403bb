package datastore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aleister1102/hashwatch/internal/models"
	"github.com/aleister1102/hashwatch/internal/storage"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// HistoryStore archives the per-URL outcomes of each run as one Parquet object.
type HistoryStore struct {
	bucket      storage.Bucket
	keys        *ObjectKeyBuilder
	compression parquet.WriterOption
	logger      zerolog.Logger
}

// NewHistoryStore creates a history store writing with the given compression codec
// ("zstd", "gzip", "snappy" or "none").
func NewHistoryStore(bucket storage.Bucket, keys *ObjectKeyBuilder, codec string, logger zerolog.Logger) *HistoryStore {
	hs := &HistoryStore{
		bucket: bucket,
		keys:   keys,
		logger: logger.With().Str("component", "HistoryStore").Logger(),
	}
	hs.compression = hs.compressionOption(codec)
	return hs
}

func (hs *HistoryStore) compressionOption(codec string) parquet.WriterOption {
	switch strings.ToLower(codec) {
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "zstd":
		return parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		hs.logger.Warn().Str("codec", codec).Msg("Unsupported compression codec string, defaulting to Uncompressed")
		return parquet.Compression(&parquet.Uncompressed)
	}
}

// StoreRun writes the report as history/<date>/<run id>.parquet and returns the key.
func (hs *HistoryStore) StoreRun(ctx context.Context, report *models.RunReport) (string, error) {
	var buf bytes.Buffer
	writer := parquet.NewWriter(&buf, parquet.SchemaOf(models.RunHistoryRecord{}), hs.compression)
	for _, result := range report.Results {
		if err := writer.Write(models.NewRunHistoryRecord(report.RunID, result)); err != nil {
			return "", fmt.Errorf("writing history row for %s: %w", result.Entry.Identifier, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("closing Parquet writer: %w", err)
	}

	key := hs.keys.HistoryKey(report.RunID, report.StartedAt)
	if err := hs.bucket.Put(ctx, storage.Object{
		Key:         key,
		Body:        buf.Bytes(),
		ContentType: "application/vnd.apache.parquet",
	}); err != nil {
		return "", err
	}

	hs.logger.Debug().Str("key", key).Int("rows", len(report.Results)).Msg("Run history stored")
	return key, nil
}
