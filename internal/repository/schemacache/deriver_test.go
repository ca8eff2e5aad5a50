package schemacache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

func sample(t *testing.T, s string) any {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return v
}

func TestDerive_CacheMiss(t *testing.T) {
	inner := &mockDeriver{node: &schema.Node{Type: "object", Title: "fresh"}}
	cd, ms := newTestCachedDeriver(t, inner)

	var setKey string
	var setTTL time.Duration
	var setData []byte
	ms.setFn = func(_ context.Context, key string, data []byte, ttl time.Duration) error {
		setKey, setData, setTTL = key, data, ttl
		return nil
	}

	node, err := cd.Derive(context.Background(), sample(t, `{"a":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node.Title != "fresh" || inner.calls != 1 {
		t.Fatalf("node = %+v, calls = %d", node, inner.calls)
	}
	if !strings.HasPrefix(setKey, "lowcms:schema_cache:") || len(setKey) != len("lowcms:schema_cache:")+64 {
		t.Errorf("unexpected key: %s", setKey)
	}
	if setTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", setTTL)
	}
	if string(setData) != `{"title":"fresh","type":"object"}` {
		t.Errorf("cached data = %s", setData)
	}
}

func TestDerive_CacheHit(t *testing.T) {
	inner := &mockDeriver{node: &schema.Node{Type: "object"}}
	cd, ms := newTestCachedDeriver(t, inner)

	ms.getFn = func(context.Context, string) ([]byte, error) {
		return []byte(`{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"number"}}}`), nil
	}

	node, err := cd.Derive(context.Background(), sample(t, `{"b":"x","a":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner called %d times on hit", inner.calls)
	}
	if names := node.Properties.Names(); len(names) != 2 || names[0] != "b" {
		t.Errorf("properties = %v", names)
	}
}

func TestDerive_EnumSurvivesCache(t *testing.T) {
	derived := schema.Derive(sample(t, `{"tags":["go","cms","go"]}`))
	inner := &mockDeriver{node: derived}
	cd, ms := newTestCachedDeriver(t, inner)

	entries := map[string][]byte{}
	ms.setFn = func(_ context.Context, key string, data []byte, _ time.Duration) error {
		entries[key] = data
		return nil
	}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if data, ok := entries[key]; ok {
			return data, nil
		}
		return nil, db.ErrKeyNotFound
	}

	in := sample(t, `{"tags":["go","cms","go"]}`)
	if _, err := cd.Derive(context.Background(), in); err != nil {
		t.Fatalf("first derive: %v", err)
	}
	node, err := cd.Derive(context.Background(), in)
	if err != nil {
		t.Fatalf("second derive: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner called %d times, want 1", inner.calls)
	}

	tags, ok := node.Properties.Get("tags")
	if !ok || tags.Items == nil {
		t.Fatalf("tags = %+v", tags)
	}
	if len(tags.Items.Enum) != 2 || tags.Items.Enum[0] != "go" || tags.Items.Enum[1] != "cms" {
		t.Errorf("cached enum = %v, want [go cms]", tags.Items.Enum)
	}
}

func TestDerive_KeyDependsOnKeyOrder(t *testing.T) {
	cd, _ := newTestCachedDeriver(t, &mockDeriver{})
	a, _ := value.Marshal(sample(t, `{"a":1,"b":2}`))
	b, _ := value.Marshal(sample(t, `{"b":2,"a":1}`))
	if cd.cacheKey(a) == cd.cacheKey(b) {
		t.Error("samples with different key order must not share a cache entry")
	}
}

func TestDerive_CorruptEntryFallsThrough(t *testing.T) {
	inner := &mockDeriver{node: &schema.Node{Type: "object"}}
	cd, ms := newTestCachedDeriver(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return []byte("{"), nil }

	if _, err := cd.Derive(context.Background(), sample(t, `{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected inner to be called, calls = %d", inner.calls)
	}
}

func TestDerive_StoreErrorsAreNotFatal(t *testing.T) {
	inner := &mockDeriver{node: &schema.Node{Type: "object"}}
	cd, ms := newTestCachedDeriver(t, inner)
	ms.getFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("conn refused") }
	ms.setFn = func(context.Context, string, []byte, time.Duration) error { return errors.New("conn refused") }

	node, err := cd.Derive(context.Background(), sample(t, `{}`))
	if err != nil || node == nil {
		t.Fatalf("Derive = %v, %v", node, err)
	}
}

func TestDerive_InnerError(t *testing.T) {
	inner := &mockDeriver{err: errors.New("boom")}
	cd, ms := newTestCachedDeriver(t, inner)
	var setCalled bool
	ms.setFn = func(context.Context, string, []byte, time.Duration) error {
		setCalled = true
		return nil
	}

	if _, err := cd.Derive(context.Background(), sample(t, `{}`)); err == nil {
		t.Fatal("expected error")
	}
	if setCalled {
		t.Error("failed derivations must not be cached")
	}
}

func TestDerive_CountsHitsAndMisses(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_schema_cache_total"}, []string{"result"})
	inner := &mockDeriver{node: &schema.Node{Type: "object"}}
	ms := &mockKVStore{}
	cd := New(inner, ms, testPrefix, 0, total, zap.NewNop())

	stored := map[string][]byte{}
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if d, ok := stored[key]; ok {
			return d, nil
		}
		return nil, db.ErrKeyNotFound
	}
	ms.setFn = func(_ context.Context, key string, data []byte, _ time.Duration) error {
		stored[key] = data
		return nil
	}

	for i := 0; i < 3; i++ {
		if _, err := cd.Derive(context.Background(), sample(t, `{"a":1}`)); err != nil {
			t.Fatalf("Derive: %v", err)
		}
	}
	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 2 {
		t.Errorf("hit = %v, want 2", got)
	}
}
