package database

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain"
)

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	var stored map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		if key != "lowcms:database:db1" {
			t.Errorf("unexpected key: %s", key)
		}
		stored = fields
		return nil
	}

	if err := repo.Create(context.Background(), testConfig(t, "db1", 1700000000000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored["tags_json"] != `["web"]` || stored["storage_option"] != "local" || stored["created_at"] != "1700000000000" {
		t.Errorf("unexpected hash: %v", stored)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	err := repo.Create(context.Background(), testConfig(t, "db1", 1))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

// --- Get ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	want := testConfig(t, "db1", 1700000000000)
	ms.hgetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return configToHash(want), nil
	}

	got, err := repo.Get(context.Background(), "db1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "db1" || got.Directory() != "blog" || len(got.Tags()) != 1 {
		t.Errorf("unexpected config: %+v", got)
	}
	if !got.CreatedAt().Equal(want.CreatedAt()) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt(), want.CreatedAt())
	}
}

func TestGet_NotFound(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, string) (map[string]string, error)
	}{
		{"key not found", func(context.Context, string) (map[string]string, error) { return nil, db.ErrKeyNotFound }},
		{"empty hash", func(context.Context, string) (map[string]string, error) { return map[string]string{}, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.hgetAllFn = tt.fn
			_, err := repo.Get(context.Background(), "nope")
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hgetAllFn = func(context.Context, string) (map[string]string, error) {
		return nil, &db.Error{Op: db.OpHGetAll, Err: errors.New("timeout")}
	}
	_, err := repo.Get(context.Background(), "db1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

// --- List ---

func TestList_SortedByCreatedAt(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "lowcms:database:*" {
			t.Errorf("unexpected pattern: %s", pattern)
		}
		return []string{"lowcms:database:b", "lowcms:database:gone", "lowcms:database:a"}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, _ []string) ([]map[string]string, error) {
		return []map[string]string{
			configToHash(testConfig(t, "b", 2000)),
			{},
			configToHash(testConfig(t, "a", 1000)),
		}, nil
	}

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID() != "a" || got[1].ID() != "b" {
		t.Errorf("unexpected order: %v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)
	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

// --- Delete ---

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	var deleted string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}
	if err := repo.Delete(context.Background(), "db1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "lowcms:database:db1" {
		t.Errorf("deleted %q", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	if err := repo.Delete(context.Background(), "db1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
