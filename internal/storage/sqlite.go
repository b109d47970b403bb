package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteBucket stores objects as rows of a single SQLite table. Each Put is one
// UPSERT statement.
type SQLiteBucket struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// NewSQLiteBucket opens (and creates if needed) the database at dataSourceName.
func NewSQLiteBucket(dataSourceName string, logger zerolog.Logger) (*SQLiteBucket, error) {
	logger = logger.With().Str("component", "SQLiteBucket").Str("db_path", dataSourceName).Logger()

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	db.SetMaxOpenConns(1)

	b := &SQLiteBucket{db: db, path: dataSourceName, logger: logger}
	if err := b.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Msg("Object database ready")
	return b, nil
}

func (b *SQLiteBucket) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS objects (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		content_type TEXT,
		metadata TEXT,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := b.db.Exec(query)
	return err
}

func (b *SQLiteBucket) String() string {
	return "sqlite://" + b.path
}

// Get reads one row.
func (b *SQLiteBucket) Get(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("get", b.String(), key, err)
	}

	var (
		body        []byte
		contentType sql.NullString
		metadata    sql.NullString
	)
	row := b.db.QueryRowContext(ctx, `SELECT body, content_type, metadata FROM objects WHERE key = ?`, key)
	if err := row.Scan(&body, &contentType, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStorageError("get", b.String(), key, ErrObjectNotFound)
		}
		return nil, NewStorageError("get", b.String(), key, err)
	}

	obj := &Object{Key: key, Body: body, ContentType: contentType.String}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &obj.Metadata); err != nil {
			return nil, NewStorageError("get", b.String(), key, err)
		}
	}
	return obj, nil
}

// Put inserts or replaces one row.
func (b *SQLiteBucket) Put(ctx context.Context, obj Object) error {
	if err := validateKey(obj.Key); err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}

	var metadata sql.NullString
	if len(obj.Metadata) > 0 {
		encoded, err := json.Marshal(obj.Metadata)
		if err != nil {
			return NewStorageError("put", b.String(), obj.Key, err)
		}
		metadata = sql.NullString{String: string(encoded), Valid: true}
	}

	body := obj.Body
	if body == nil {
		body = []byte{}
	}

	query := `INSERT INTO objects (key, body, content_type, metadata, updated_at) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET body = excluded.body, content_type = excluded.content_type,
		metadata = excluded.metadata, updated_at = excluded.updated_at`
	_, err := b.db.ExecContext(ctx, query, obj.Key, body,
		sql.NullString{String: obj.ContentType, Valid: obj.ContentType != ""}, metadata, time.Now().UTC())
	if err != nil {
		return NewStorageError("put", b.String(), obj.Key, err)
	}
	return nil
}

// List returns keys starting with prefix.
func (b *SQLiteBucket) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT key FROM objects WHERE substr(key, 1, ?) = ? ORDER BY key`, len(prefix), prefix)
	if err != nil {
		return nil, NewStorageError("list", b.String(), prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, NewStorageError("list", b.String(), prefix, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("list", b.String(), prefix, err)
	}
	return keys, nil
}

// Close closes the database connection.
func (b *SQLiteBucket) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
