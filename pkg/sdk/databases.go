package lowcms

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/lowcms/internal/domain/database"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
)

// DatabaseService manages databases.
type DatabaseService struct {
	svc catalogUseCase
	obs *observer
}

// Create stores a new database. Local databases must point at an existing
// directory inside the workspace.
func (s *DatabaseService) Create(ctx context.Context, in DatabaseInput) (_ Database, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.create", start, err) }()

	cfg, err := s.svc.CreateDatabase(ctx, cataloguc.DatabaseInput{
		Name:          in.Name,
		Description:   in.Description,
		Tags:          in.Tags,
		StorageOption: database.StorageOption(in.StorageOption),
		Directory:     in.Directory,
	})
	if err != nil {
		return Database{}, fmt.Errorf("create database: %w", err)
	}
	return fromInternalDatabase(cfg), nil
}

// Get retrieves a database by ID.
func (s *DatabaseService) Get(ctx context.Context, id string) (_ Database, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.get", start, err) }()

	cfg, err := s.svc.GetDatabase(ctx, id)
	if err != nil {
		return Database{}, fmt.Errorf("get database: %w", err)
	}
	return fromInternalDatabase(cfg), nil
}

// List returns all databases.
func (s *DatabaseService) List(ctx context.Context) (_ []Database, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.list", start, err) }()

	cfgs, err := s.svc.ListDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	out := make([]Database, len(cfgs))
	for i, cfg := range cfgs {
		out[i] = fromInternalDatabase(cfg)
	}
	return out, nil
}

// Delete removes a database and its contents.
func (s *DatabaseService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.delete", start, err) }()

	if err = s.svc.DeleteDatabase(ctx, id); err != nil {
		return fmt.Errorf("delete database: %w", err)
	}
	return nil
}

// Load returns the database with its contents, schemas and directory
// permission. A missing database gives Found == false and no error.
func (s *DatabaseService) Load(ctx context.Context, id string) (_ DatabaseView, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.load", start, err) }()

	v, err := s.svc.Load(ctx, id)
	if err != nil {
		return DatabaseView{}, fmt.Errorf("load database: %w", err)
	}
	return fromInternalView(v), nil
}

// Directory lists dir, relative to the database directory.
func (s *DatabaseService) Directory(ctx context.Context, id, dir string) (_ Listing, err error) {
	start := time.Now()
	defer func() { s.obs.observe("database.directory", start, err) }()

	l, err := s.svc.Directory(ctx, id, dir)
	if err != nil {
		return Listing{}, fmt.Errorf("list directory: %w", err)
	}
	return fromInternalListing(l), nil
}
