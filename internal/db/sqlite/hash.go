package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kailas-cloud/lowcms/internal/db"
)

const upsertField = `INSERT INTO hashes (key, field, value) VALUES (?, ?, ?)
ON CONFLICT(key, field) DO UPDATE SET value = excluded.value`

// HSet writes record fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	return s.HSetMulti(ctx, []db.HashSetItem{{Key: key, Fields: fields}})
}

// HSetMulti stores multiple records in one transaction.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertField)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, item := range items {
			for f, v := range item.Fields {
				if _, err := stmt.ExecContext(ctx, item.Key, f, v); err != nil {
					return fmt.Errorf("key %s: %w", item.Key, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a record, or db.ErrKeyNotFound.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.hgetall(ctx, key)
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	if len(m) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return m, nil
}

// HGetAllMulti fetches multiple records. Missing keys yield empty maps at
// their position.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, err := s.hgetall(ctx, key)
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", key, err)}
		}
		out[i] = m
	}
	return out, nil
}

func (s *Store) hgetall(ctx context.Context, key string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM hashes WHERE key = ?`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var f, v string
		if err := rows.Scan(&f, &v); err != nil {
			return nil, err
		}
		m[f] = v
	}
	return m, rows.Err()
}

// Del deletes a key from both record and value tables.
func (s *Store) Del(ctx context.Context, key string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM hashes WHERE key = ?`, key); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return err
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key holds a record or a live value.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.db.QueryRowContext(ctx, `SELECT
		EXISTS (SELECT 1 FROM hashes WHERE key = ?)
		OR EXISTS (SELECT 1 FROM kv WHERE key = ? AND (expires_at IS NULL OR expires_at > ?))`,
		key, key, s.now().UnixMilli(),
	).Scan(&found)
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return found, nil
}

// Scan returns keys matching a Redis-style glob pattern. SQLite GLOB
// shares the *, ? and [...] syntax.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT key FROM hashes WHERE key GLOB ?
		UNION
		SELECT key FROM kv WHERE key GLOB ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY 1`,
		pattern, pattern, s.now().UnixMilli(),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
