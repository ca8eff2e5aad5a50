package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/kailas-cloud/lowcms/internal/db"
)

// Get retrieves a live value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		data      []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `SELECT value, expires_at FROM kv WHERE key = ?`, key).
		Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	if expiresAt.Valid && expiresAt.Int64 <= s.now().UnixMilli() {
		// Expired rows are removed lazily on read.
		_, _ = s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ? AND expires_at <= ?`, key, expiresAt.Int64)
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

// Set stores a value at the given key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value with an expiration. A non-positive ttl stores
// the value without one.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: s.now().Add(ttl).UnixMilli(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt,
	)
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}
