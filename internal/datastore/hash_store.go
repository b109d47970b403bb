package datastore

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/aleister1102/hashwatch/internal/models"
	"github.com/aleister1102/hashwatch/internal/storage"
	"github.com/rs/zerolog"
)

// HashStore is the persisted ledger of the last known content hash per URL.
// Each URL is one JSON object, so a Put never touches other entries.
type HashStore struct {
	bucket storage.Bucket
	keys   *ObjectKeyBuilder
	logger zerolog.Logger
}

// NewHashStore creates a hash ledger on top of bucket
func NewHashStore(bucket storage.Bucket, keys *ObjectKeyBuilder, logger zerolog.Logger) *HashStore {
	return &HashStore{
		bucket: bucket,
		keys:   keys,
		logger: logger.With().Str("component", "HashStore").Logger(),
	}
}

// Load returns every ledger record keyed by URL key. A missing bucket or an empty
// prefix yields an empty map. Any other read failure is returned as a
// *storage.StorageError. Records that cannot be decoded are skipped with a warning,
// so their URL is treated as never seen.
func (hs *HashStore) Load(ctx context.Context) (map[string]models.HashRecord, error) {
	records := make(map[string]models.HashRecord)

	objectKeys, err := hs.bucket.List(ctx, hs.keys.HashListPrefix())
	if err != nil {
		if errors.Is(err, storage.ErrBucketNotFound) {
			hs.logger.Info().Str("location", hs.bucket.String()).Msg("Hash ledger does not exist yet, starting with an empty baseline")
			return records, nil
		}
		return nil, err
	}

	for _, objectKey := range objectKeys {
		key, ok := hs.keys.KeyFromHashObject(objectKey)
		if !ok {
			continue
		}

		obj, err := hs.bucket.Get(ctx, objectKey)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				continue
			}
			return nil, err
		}

		var record models.HashRecord
		if err := json.Unmarshal(obj.Body, &record); err != nil {
			hs.logger.Warn().Err(err).Str("object", objectKey).Msg("Skipping undecodable hash record")
			continue
		}
		if !isSHA256Hex(record.Hash) {
			hs.logger.Warn().Str("object", objectKey).Str("hash", record.Hash).Msg("Skipping hash record with an invalid digest")
			continue
		}
		record.Key = key
		records[key] = record
	}

	hs.logger.Debug().Int("records", len(records)).Msg("Hash ledger loaded")
	return records, nil
}

// Put replaces the ledger record for record.Key with one object write.
func (hs *HashStore) Put(ctx context.Context, record models.HashRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return storage.NewStorageError("put", hs.bucket.String(), record.Key, err)
	}

	return hs.bucket.Put(ctx, storage.Object{
		Key:         hs.keys.HashKey(record.Key),
		Body:        body,
		ContentType: "application/json",
	})
}

func isSHA256Hex(s string) bool {
	if len(s) != FullHashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
