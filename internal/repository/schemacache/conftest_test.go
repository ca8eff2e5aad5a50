package schemacache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
)

const testPrefix = "lowcms:"

type mockDeriver struct {
	node  *schema.Node
	err   error
	calls int
}

func (m *mockDeriver) Derive(_ context.Context, _ any) (*schema.Node, error) {
	m.calls++
	return m.node, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedDeriver(t *testing.T, inner *mockDeriver) (*CachedDeriver, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	return New(inner, ms, testPrefix, time.Hour, nil, zap.NewNop()), ms
}
