package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain"
	domdb "github.com/kailas-cloud/lowcms/internal/domain/database"
)

// store is the consumer interface for database configs (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/catalog.DatabaseRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a database config repository. Keys are {prefix}database:{id}.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create stores a new config.
func (r *Repo) Create(ctx context.Context, cfg domdb.Config) error {
	key := r.key(cfg.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	if err := r.store.HSet(ctx, key, configToHash(cfg)); err != nil {
		return fmt.Errorf("hset database %s: %w", cfg.ID(), err)
	}
	return nil
}

// Get retrieves a config by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdb.Config, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return domdb.Config{}, domain.ErrNotFound
	}
	if err != nil {
		return domdb.Config{}, fmt.Errorf("hgetall database %s: %w", id, err)
	}
	if len(m) == 0 {
		return domdb.Config{}, domain.ErrNotFound
	}
	return configFromHash(m)
}

// List returns all configs sorted by CreatedAt.
func (r *Repo) List(ctx context.Context) ([]domdb.Config, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan databases: %w", err)
	}
	if len(keys) == 0 {
		return []domdb.Config{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi databases: %w", err)
	}

	configs := make([]domdb.Config, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		cfg, err := configFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse database %s: %w", keys[i], err)
		}
		configs = append(configs, cfg)
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].CreatedAt().Before(configs[j].CreatedAt())
	})
	return configs, nil
}

// Delete removes a config.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.key(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del database %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%sdatabase:%s", r.prefix, id)
}
