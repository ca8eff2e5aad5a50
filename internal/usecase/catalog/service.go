// Package catalog manages database configs, their contents and the shared
// schema library, and loads the combined view of one database.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/jsonpath"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/logger"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

// loadSchemaLimit caps the schemas returned with a database view.
const loadSchemaLimit = 999

// Service handles catalog operations.
type Service struct {
	databases DatabaseRepository
	contents  ContentRepository
	schemas   SchemaRepository
	ws        Workspace
	maxBytes  int64
	now       func() time.Time
	newID     func() string
}

// New creates a catalog service. maxSampleBytes limits content files read
// from the workspace; zero disables the limit.
func New(
	databases DatabaseRepository,
	contents ContentRepository,
	schemas SchemaRepository,
	ws Workspace,
	maxSampleBytes int64,
) *Service {
	return &Service{
		databases: databases,
		contents:  contents,
		schemas:   schemas,
		ws:        ws,
		maxBytes:  maxSampleBytes,
		// Records store millisecond timestamps.
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:     uuid.NewString,
	}
}

// DatabaseInput carries the fields of a new database config.
type DatabaseInput struct {
	Name          string
	Description   string
	Tags          []string
	StorageOption database.StorageOption
	Directory     string
}

// CreateDatabase validates and stores a new database config. Local
// databases must point at an existing workspace directory.
func (s *Service) CreateDatabase(ctx context.Context, in DatabaseInput) (database.Config, error) {
	cfg, err := database.New(s.newID(), in.Name, in.Description, in.Tags, in.StorageOption, in.Directory, s.now())
	if err != nil {
		return database.Config{}, fmt.Errorf("validate database: %w: %w", domain.ErrInvalidRecord, err)
	}
	if cfg.StorageOption() == database.StorageLocal {
		if _, err := s.ws.Permission(cfg.Directory()); err != nil {
			return database.Config{}, fmt.Errorf("check directory: %w", err)
		}
	}
	if err := s.databases.Create(ctx, cfg); err != nil {
		return database.Config{}, fmt.Errorf("create database: %w", err)
	}
	logger.FromContext(ctx).Info("Database created",
		zap.String("database_id", cfg.ID()), zap.String("directory", cfg.Directory()))
	return cfg, nil
}

// GetDatabase retrieves a database config.
func (s *Service) GetDatabase(ctx context.Context, id string) (database.Config, error) {
	cfg, err := s.databases.Get(ctx, id)
	if err != nil {
		return database.Config{}, fmt.Errorf("get database: %w", err)
	}
	return cfg, nil
}

// ListDatabases returns all database configs.
func (s *Service) ListDatabases(ctx context.Context) ([]database.Config, error) {
	cfgs, err := s.databases.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return cfgs, nil
}

// DeleteDatabase removes a database config and its contents. Schemas are
// shared and stay.
func (s *Service) DeleteDatabase(ctx context.Context, id string) error {
	if _, err := s.databases.Get(ctx, id); err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	contents, err := s.contents.ListByDatabase(ctx, id)
	if err != nil {
		return fmt.Errorf("list contents: %w", err)
	}
	for _, c := range contents {
		if err := s.contents.Delete(ctx, c.ID()); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete content %s: %w", c.ID(), err)
		}
	}
	if err := s.databases.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete database: %w", err)
	}
	return nil
}

// Directory lists dir inside the database directory.
func (s *Service) Directory(ctx context.Context, databaseID, dir string) (workspace.Listing, error) {
	cfg, err := s.localDatabase(ctx, databaseID)
	if err != nil {
		return workspace.Listing{}, err
	}
	l, err := s.ws.Enumerate(path.Join(cfg.Directory(), dir))
	if err != nil {
		return workspace.Listing{}, fmt.Errorf("enumerate directory: %w", err)
	}
	return l, nil
}

// ContentInput carries the fields of a new content.
type ContentInput struct {
	Name        string
	Description string
	Tags        []string
	SchemaID    string
	Type        content.Type
	FilePath    string
	JSONPath    string
	In          content.Location
	DataType    content.DataType
}

// CreateContent validates and stores a content of databaseID. The
// database and, when given, the schema must exist.
func (s *Service) CreateContent(ctx context.Context, databaseID string, in ContentInput) (content.Content, error) {
	if _, err := s.databases.Get(ctx, databaseID); err != nil {
		return content.Content{}, fmt.Errorf("get database: %w", err)
	}
	if in.SchemaID != "" {
		if _, err := s.schemas.Get(ctx, in.SchemaID); err != nil {
			return content.Content{}, fmt.Errorf("get schema: %w", err)
		}
	}

	c, err := content.New(content.Params{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		Tags:        in.Tags,
		DatabaseID:  databaseID,
		SchemaID:    in.SchemaID,
		Type:        in.Type,
		FilePath:    in.FilePath,
		FileType:    fileType(in.FilePath),
		JSONPath:    in.JSONPath,
		In:          in.In,
		DataType:    in.DataType,
	}, s.now())
	if err != nil {
		return content.Content{}, fmt.Errorf("validate content: %w: %w", domain.ErrInvalidRecord, err)
	}
	if err := s.contents.Create(ctx, c); err != nil {
		return content.Content{}, fmt.Errorf("create content: %w", err)
	}
	return c, nil
}

// GetContent retrieves a content.
func (s *Service) GetContent(ctx context.Context, id string) (content.Content, error) {
	c, err := s.contents.Get(ctx, id)
	if err != nil {
		return content.Content{}, fmt.Errorf("get content: %w", err)
	}
	return c, nil
}

// DeleteContent removes a content. The file is left untouched.
func (s *Service) DeleteContent(ctx context.Context, id string) error {
	if err := s.contents.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// AttachSchema points a content at a stored schema.
func (s *Service) AttachSchema(ctx context.Context, contentID, schemaID string) (content.Content, error) {
	c, err := s.contents.Get(ctx, contentID)
	if err != nil {
		return content.Content{}, fmt.Errorf("get content: %w", err)
	}
	if _, err := s.schemas.Get(ctx, schemaID); err != nil {
		return content.Content{}, fmt.Errorf("get schema: %w", err)
	}
	updated := c.WithSchema(schemaID, s.now())
	if err := s.contents.Update(ctx, updated); err != nil {
		return content.Content{}, fmt.Errorf("update content: %w", err)
	}
	return updated, nil
}

// ReadContent reads the content file and narrows it to the content's JSON
// path when the content lives in a specific field.
func (s *Service) ReadContent(ctx context.Context, contentID string) (content.Content, any, error) {
	c, err := s.contents.Get(ctx, contentID)
	if err != nil {
		return content.Content{}, nil, fmt.Errorf("get content: %w", err)
	}
	cfg, err := s.localDatabase(ctx, c.DatabaseID())
	if err != nil {
		return content.Content{}, nil, err
	}

	data, err := s.ws.ReadJSON(path.Join(cfg.Directory(), c.FilePath()), s.maxBytes)
	if err != nil {
		return content.Content{}, nil, fmt.Errorf("read content file: %w", err)
	}
	if c.In() != content.InSpecificField {
		return c, data, nil
	}

	narrowed, ok := jsonpath.Get(data, jsonpath.Parse(c.JSONPath()))
	if !ok {
		return content.Content{}, nil, fmt.Errorf("%w: json path %q not found in %s",
			domain.ErrInvalidSample, c.JSONPath(), c.FilePath())
	}
	return c, narrowed, nil
}

// SchemaInput carries the editable fields of a schema.
type SchemaInput struct {
	Title       string
	Description string
	Tags        []string
	Node        *schema.Node
}

// CreateSchema validates and stores a new schema. A non-empty Title
// overrides the document title.
func (s *Service) CreateSchema(ctx context.Context, in SchemaInput) (schema.Record, error) {
	rec, err := schema.NewRecord(s.newID(), in.Description, in.Tags, titled(in), s.now())
	if err != nil {
		return schema.Record{}, fmt.Errorf("validate schema: %w: %w", domain.ErrInvalidSchema, err)
	}
	if err := s.schemas.Create(ctx, rec); err != nil {
		return schema.Record{}, fmt.Errorf("create schema: %w", err)
	}
	return rec, nil
}

// UpdateSchema replaces the document and metadata of a stored schema.
func (s *Service) UpdateSchema(ctx context.Context, id string, in SchemaInput) (schema.Record, error) {
	cur, err := s.schemas.Get(ctx, id)
	if err != nil {
		return schema.Record{}, fmt.Errorf("get schema: %w", err)
	}
	if _, err := schema.NewRecord(id, in.Description, in.Tags, titled(in), s.now()); err != nil {
		return schema.Record{}, fmt.Errorf("validate schema: %w: %w", domain.ErrInvalidSchema, err)
	}
	updated := cur.WithNode(titled(in), in.Description, in.Tags, s.now())
	if err := s.schemas.Update(ctx, updated); err != nil {
		return schema.Record{}, fmt.Errorf("update schema: %w", err)
	}
	return updated, nil
}

func titled(in SchemaInput) *schema.Node {
	if in.Node != nil && in.Title != "" {
		in.Node.Title = in.Title
	}
	return in.Node
}

// GetSchema retrieves a schema.
func (s *Service) GetSchema(ctx context.Context, id string) (schema.Record, error) {
	rec, err := s.schemas.Get(ctx, id)
	if err != nil {
		return schema.Record{}, fmt.Errorf("get schema: %w", err)
	}
	return rec, nil
}

// ListSchemas returns one page of schemas and the total count.
func (s *Service) ListSchemas(ctx context.Context, opts schema.ListOptions) ([]schema.Record, int, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, 0, fmt.Errorf("list options: %w: %w", domain.ErrInvalidRecord, err)
	}
	recs, total, err := s.schemas.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list schemas: %w", err)
	}
	return recs, total, nil
}

// DeleteSchema removes a schema.
func (s *Service) DeleteSchema(ctx context.Context, id string) error {
	if err := s.schemas.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}
	return nil
}

// localDatabase loads a database whose directory the server can read.
func (s *Service) localDatabase(ctx context.Context, id string) (database.Config, error) {
	cfg, err := s.databases.Get(ctx, id)
	if err != nil {
		return database.Config{}, fmt.Errorf("get database: %w", err)
	}
	if cfg.StorageOption() != database.StorageLocal {
		return database.Config{}, fmt.Errorf("%w: database %s is stored in the browser", domain.ErrPermissionDenied, id)
	}
	return cfg, nil
}

func fileType(p string) string {
	if ext := path.Ext(p); len(ext) > 1 {
		return ext[1:]
	}
	return ""
}
