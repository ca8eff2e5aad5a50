package lowcms

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "redis" or "sqlite"
	addrs      []string
	password   string
	sqlitePath string
	keyPrefix  string

	workspace      string
	maxSampleBytes int64
	cacheTTL       time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores records in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSQLite stores records in a SQLite file.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "sqlite"
		c.sqlitePath = path
	})
}

// WithKeyPrefix namespaces every stored key. Default: "lowcms:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithWorkspace sets the directory database directories are resolved
// against. Default: the working directory.
func WithWorkspace(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.workspace = dir
	})
}

// WithMaxSampleBytes limits the size of content files read. Default: 32 MiB.
func WithMaxSampleBytes(n int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxSampleBytes = n
	})
}

// WithSchemaCache caches derived schemas in the record store for ttl.
// Disabled by default.
func WithSchemaCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
