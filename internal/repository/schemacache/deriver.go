package schemacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/db"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// store is the consumer interface for the derivation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedDeriver caches derived schemas in a key-value store, keyed by the
// SHA-256 of the sample as serialized with its key order.
type CachedDeriver struct {
	inner      schema.Deriver
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	codec      *codec
	logger     *zap.Logger
}

// New creates a caching decorator. Keys are {prefix}schema_cache:{sha256}.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
// A zero ttl keeps entries forever. Entries above 4KB are zstd-compressed.
func New(
	inner schema.Deriver,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedDeriver {
	cd, err := newCodec()
	if err != nil {
		logger.Warn("Schema cache compression disabled", zap.Error(err))
	}
	return &CachedDeriver{
		inner:      inner,
		codec:      cd,
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Derive returns a cached schema or calls the inner deriver. Cache failures
// are logged and never fail the derivation.
func (c *CachedDeriver) Derive(ctx context.Context, sample any) (*schema.Node, error) {
	canonical, err := value.Marshal(value.Normalize(sample))
	if err != nil {
		// Unserializable samples bypass the cache.
		c.logger.Warn("Failed to serialize sample for cache key", zap.Error(err))
		return c.inner.Derive(ctx, sample)
	}
	key := c.cacheKey(canonical)

	if node, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return node, nil
	}

	c.incCache("miss")

	node, err := c.inner.Derive(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("derive schema: %w", err)
	}

	c.putToCache(ctx, key, node)
	return node, nil
}

func (c *CachedDeriver) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedDeriver) cacheKey(canonical []byte) string {
	h := sha256.Sum256(canonical)
	return c.prefix + "schema_cache:" + hex.EncodeToString(h[:])
}

func (c *CachedDeriver) getFromCache(ctx context.Context, key string) (*schema.Node, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached schema", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	data, err = c.codec.decode(data)
	if err != nil {
		c.logger.Warn("Failed to decode cached schema", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	node := &schema.Node{}
	if err := json.Unmarshal(data, node); err != nil {
		c.logger.Warn("Failed to parse cached schema", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return node, true
}

func (c *CachedDeriver) putToCache(ctx context.Context, key string, node *schema.Node) {
	data, err := json.Marshal(node)
	if err != nil {
		c.logger.Warn("Failed to encode schema for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, c.codec.encode(data), c.ttl); err != nil {
		c.logger.Warn("Failed to cache schema", zap.String("key", key), zap.Error(err))
	}
}
