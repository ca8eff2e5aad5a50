package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain"
	domschema "github.com/kailas-cloud/lowcms/internal/domain/schema"
)

// store is the consumer interface for schemas (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/catalog.SchemaRepository.
type Repo struct {
	store  store
	prefix string
}

// New creates a schema repository. Keys are {prefix}schema:{id}.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create stores a new schema.
func (r *Repo) Create(ctx context.Context, rec domschema.Record) error {
	key := r.key(rec.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.put(ctx, key, rec)
}

// Update overwrites an existing schema.
func (r *Repo) Update(ctx context.Context, rec domschema.Record) error {
	key := r.key(rec.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return r.put(ctx, key, rec)
}

func (r *Repo) put(ctx context.Context, key string, rec domschema.Record) error {
	hash, err := recordToHash(rec)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, key, hash); err != nil {
		return fmt.Errorf("hset schema %s: %w", rec.ID(), err)
	}
	return nil
}

// Get retrieves a schema by ID.
func (r *Repo) Get(ctx context.Context, id string) (domschema.Record, error) {
	m, err := r.store.HGetAll(ctx, r.key(id))
	if errors.Is(err, db.ErrKeyNotFound) {
		return domschema.Record{}, domain.ErrNotFound
	}
	if err != nil {
		return domschema.Record{}, fmt.Errorf("hgetall schema %s: %w", id, err)
	}
	if len(m) == 0 {
		return domschema.Record{}, domain.ErrNotFound
	}
	return recordFromHash(m)
}

// List returns one page of schemas and the total count.
func (r *Repo) List(ctx context.Context, opts domschema.ListOptions) ([]domschema.Record, int, error) {
	opts = opts.WithDefaults()

	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, 0, fmt.Errorf("scan schemas: %w", err)
	}
	if len(keys) == 0 {
		return []domschema.Record{}, 0, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, 0, fmt.Errorf("hgetall multi schemas: %w", err)
	}

	records := make([]domschema.Record, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		rec, err := recordFromHash(m)
		if err != nil {
			return nil, 0, fmt.Errorf("parse schema %s: %w", keys[i], err)
		}
		records = append(records, rec)
	}

	sortRecords(records, opts)

	total := len(records)
	start := opts.Offset()
	if start >= total {
		return []domschema.Record{}, total, nil
	}
	end := min(start+opts.Limit, total)
	return records[start:end], total, nil
}

// sortRecords orders by the chosen timestamp, ties broken by ID.
func sortRecords(records []domschema.Record, opts domschema.ListOptions) {
	ts := func(r domschema.Record) int64 {
		if opts.OrderBy == domschema.OrderByCreatedAt {
			return r.CreatedAt().UnixMilli()
		}
		return r.UpdatedAt().UnixMilli()
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := ts(records[i]), ts(records[j])
		if a == b {
			return records[i].ID() < records[j].ID()
		}
		if opts.Order == domschema.OrderAsc {
			return a < b
		}
		return a > b
	})
}

// Delete removes a schema.
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
		return fmt.Errorf("del schema %s: %w", id, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return fmt.Sprintf("%sschema:%s", r.prefix, id)
}
