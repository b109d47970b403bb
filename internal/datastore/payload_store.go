package datastore

import (
	"context"

	"github.com/aleister1102/hashwatch/internal/models"
	"github.com/aleister1102/hashwatch/internal/storage"
	"github.com/rs/zerolog"
)

// Metadata keys attached to stored payloads
const (
	MetadataHash      = "Sha256"
	MetadataSourceURL = "Source-Url"
)

const defaultPayloadContentType = "application/octet-stream"

// PayloadStore keeps the latest content of each URL. It is write-only from the
// monitor's point of view.
type PayloadStore struct {
	bucket storage.Bucket
	keys   *ObjectKeyBuilder
	logger zerolog.Logger
}

// NewPayloadStore creates a payload store on top of bucket
func NewPayloadStore(bucket storage.Bucket, keys *ObjectKeyBuilder, logger zerolog.Logger) *PayloadStore {
	return &PayloadStore{
		bucket: bucket,
		keys:   keys,
		logger: logger.With().Str("component", "PayloadStore").Logger(),
	}
}

// Put stores the raw content with the producing hash as object metadata.
func (ps *PayloadStore) Put(ctx context.Context, record models.PayloadRecord) error {
	contentType := record.ContentType
	if contentType == "" {
		contentType = defaultPayloadContentType
	}

	err := ps.bucket.Put(ctx, storage.Object{
		Key:         ps.keys.PayloadKey(record.Key),
		Body:        record.Content,
		ContentType: contentType,
		Metadata: map[string]string{
			MetadataHash:      record.Hash,
			MetadataSourceURL: record.URL,
		},
	})
	if err != nil {
		return err
	}

	ps.logger.Debug().Str("key", record.Key).Int("size", len(record.Content)).Msg("Payload stored")
	return nil
}
