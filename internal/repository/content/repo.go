package content

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain"
	domcontent "github.com/kailas-cloud/lowcms/internal/domain/content"
)

// store is the consumer interface for contents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/catalog.ContentRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a content repository. Keys are {prefix}content:{id}.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create stores a new content.
func (r *Repo) Create(ctx context.Context, c domcontent.Content) error {
	key := r.key(c.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	if err := r.store.HSet(ctx, key, contentToHash(c)); err != nil {
		return fmt.Errorf("hset content %s: %w", c.ID(), err)
	}
	return nil
}

// Update overwrites an existing content.
func (r *Repo) Update(ctx context.Context, c domcontent.Content) error {
	key := r.key(c.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.HSet(ctx, key, contentToHash(c)); err != nil {
		return fmt.Errorf("hset content %s: %w", c.ID(), err)
	}
	return nil
}

// Get retrieves a content by ID.
func (r *Repo) Get(ctx context.Context, id string) (domcontent.Content, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return domcontent.Content{}, domain.ErrNotFound
	}
	if err != nil {
		return domcontent.Content{}, fmt.Errorf("hgetall content %s: %w", id, err)
	}
	if len(m) == 0 {
		return domcontent.Content{}, domain.ErrNotFound
	}
	return contentFromHash(m)
}

// ListByDatabase returns the contents of one database sorted by CreatedAt.
func (r *Repo) ListByDatabase(ctx context.Context, databaseID string) ([]domcontent.Content, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan contents: %w", err)
	}
	out := []domcontent.Content{}
	if len(keys) == 0 {
		return out, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi contents: %w", err)
	}

	for i, m := range results {
		if len(m) == 0 || m["database_id"] != databaseID {
			continue
		}
		c, err := contentFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse content %s: %w", keys[i], err)
		}
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

// Delete removes a content.
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
		return fmt.Errorf("del content %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%scontent:%s", r.prefix, id)
}
