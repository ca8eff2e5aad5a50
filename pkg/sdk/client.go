package lowcms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/lowcms/internal/db"
	dbRedis "github.com/kailas-cloud/lowcms/internal/db/redis"
	"github.com/kailas-cloud/lowcms/internal/db/sqlite"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/i18n"
	contentrepo "github.com/kailas-cloud/lowcms/internal/repository/content"
	databaserepo "github.com/kailas-cloud/lowcms/internal/repository/database"
	schemarepo "github.com/kailas-cloud/lowcms/internal/repository/schema"
	"github.com/kailas-cloud/lowcms/internal/repository/schemacache"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lowcms/internal/usecase/health"
	inferenceuc "github.com/kailas-cloud/lowcms/internal/usecase/inference"
	queryuc "github.com/kailas-cloud/lowcms/internal/usecase/query"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "lowcms:"
	defaultMaxSampleBytes   = 32 << 20
)

// Internal interfaces, swapped for mocks in tests.
type catalogUseCase interface {
	CreateDatabase(ctx context.Context, in cataloguc.DatabaseInput) (database.Config, error)
	GetDatabase(ctx context.Context, id string) (database.Config, error)
	ListDatabases(ctx context.Context) ([]database.Config, error)
	DeleteDatabase(ctx context.Context, id string) error
	Directory(ctx context.Context, databaseID, dir string) (workspace.Listing, error)
	Load(ctx context.Context, databaseID string) (cataloguc.View, error)

	CreateContent(ctx context.Context, databaseID string, in cataloguc.ContentInput) (content.Content, error)
	GetContent(ctx context.Context, id string) (content.Content, error)
	DeleteContent(ctx context.Context, id string) error
	AttachSchema(ctx context.Context, contentID, schemaID string) (content.Content, error)

	CreateSchema(ctx context.Context, in cataloguc.SchemaInput) (schema.Record, error)
	UpdateSchema(ctx context.Context, id string, in cataloguc.SchemaInput) (schema.Record, error)
	GetSchema(ctx context.Context, id string) (schema.Record, error)
	ListSchemas(ctx context.Context, opts schema.ListOptions) ([]schema.Record, int, error)
	DeleteSchema(ctx context.Context, id string) error
}

type inferenceUseCase interface {
	DeriveSample(ctx context.Context, raw []byte) (inferenceuc.Result, error)
	DeriveContent(ctx context.Context, contentID string) (inferenceuc.Result, error)
}

type queryUseCase interface {
	SearchContent(ctx context.Context, contentID string, p filter.Predicate) ([]any, error)
	Operators(n *schema.Node, lang language.Tag) []queryuc.OperatorOption
}

// Client is the lowcms SDK entry point.
type Client struct {
	store        db.Store
	ws           *workspace.Workspace
	catalogSvc   catalogUseCase
	inferenceSvc inferenceUseCase
	querySvc     queryUseCase
	healthSvc    healthUseCase
	obs          *observer
}

// New creates a Client, connects to the record store and opens the
// workspace. The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:      defaultKeyPrefix,
		workspace:      ".",
		maxSampleBytes: defaultMaxSampleBytes,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("lowcms: record store required (use WithRedis or WithSQLite)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("lowcms: record store not ready: %w", err)
	}

	ws, err := workspace.Open(cfg.workspace)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("lowcms: %w", err)
	}

	return wireClient(store, ws, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("lowcms: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("lowcms: create redis store: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(cfg.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("lowcms: open sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("lowcms: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, ws *workspace.Workspace, cfg *clientConfig, obs *observer) *Client {
	databases := databaserepo.New(store, cfg.keyPrefix)
	contents := contentrepo.New(store, cfg.keyPrefix)
	schemas := schemarepo.New(store, cfg.keyPrefix)

	var deriver schema.Deriver = schema.Engine{}
	if cfg.cacheTTL > 0 {
		// SDK metrics go through the observer; cache counters stay off.
		deriver = schemacache.New(deriver, store, cfg.keyPrefix, cfg.cacheTTL, nil, zap.NewNop())
	}

	catalogSvc := cataloguc.New(databases, contents, schemas, ws, cfg.maxSampleBytes)

	return &Client{
		store:        store,
		ws:           ws,
		catalogSvc:   catalogSvc,
		inferenceSvc: inferenceuc.New(deriver, catalogSvc),
		querySvc:     queryuc.New(catalogSvc, i18n.NewLabeler()),
		healthSvc:    healthuc.New(store, ws),
		obs:          obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.ws != nil {
		_ = c.ws.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks record store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Databases returns the database service.
func (c *Client) Databases() *DatabaseService {
	return &DatabaseService{svc: c.catalogSvc, obs: c.obs}
}

// Contents returns the content service.
func (c *Client) Contents() *ContentService {
	return &ContentService{
		catalog:   c.catalogSvc,
		inference: c.inferenceSvc,
		query:     c.querySvc,
		obs:       c.obs,
	}
}

// Schemas returns the schema service.
func (c *Client) Schemas() *SchemaService {
	return &SchemaService{
		catalog:   c.catalogSvc,
		inference: c.inferenceSvc,
		query:     c.querySvc,
		obs:       c.obs,
	}
}
