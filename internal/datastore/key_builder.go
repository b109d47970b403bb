package datastore

import (
	"fmt"
	"path"
	"strings"
	"time"
)

const (
	hashObjectSuffix = ".json"
	historyPrefix    = "history"
)

// ObjectKeyBuilder lays out object keys inside the bucket:
//
//	<hash prefix>/<key>.json
//	<data prefix>/<key>
//	history/<YYYY-MM-DD>/<run id>.parquet
type ObjectKeyBuilder struct {
	hashPrefix string
	dataPrefix string
}

// NewObjectKeyBuilder creates a key builder for the given prefixes
func NewObjectKeyBuilder(hashPrefix, dataPrefix string) *ObjectKeyBuilder {
	return &ObjectKeyBuilder{
		hashPrefix: strings.Trim(hashPrefix, "/"),
		dataPrefix: strings.Trim(dataPrefix, "/"),
	}
}

// HashListPrefix is the listing prefix of the hash ledger
func (b *ObjectKeyBuilder) HashListPrefix() string {
	return b.hashPrefix + "/"
}

// HashKey returns the ledger object key for a URL key
func (b *ObjectKeyBuilder) HashKey(key string) string {
	return path.Join(b.hashPrefix, key+hashObjectSuffix)
}

// PayloadKey returns the payload object key for a URL key
func (b *ObjectKeyBuilder) PayloadKey(key string) string {
	return path.Join(b.dataPrefix, key)
}

// HistoryKey returns the Parquet archive key for a run
func (b *ObjectKeyBuilder) HistoryKey(runID string, startedAt time.Time) string {
	return path.Join(historyPrefix, startedAt.UTC().Format("2006-01-02"), fmt.Sprintf("%s.parquet", runID))
}

// KeyFromHashObject extracts the URL key from a ledger object key. The second
// result is false for objects that are not ledger entries.
func (b *ObjectKeyBuilder) KeyFromHashObject(objectKey string) (string, bool) {
	rest, ok := strings.CutPrefix(objectKey, b.HashListPrefix())
	if !ok || strings.Contains(rest, "/") {
		return "", false
	}
	key, ok := strings.CutSuffix(rest, hashObjectSuffix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
