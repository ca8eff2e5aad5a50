package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/logger"
)

// LoadStatus is the outcome of loading a database view.
type LoadStatus string

const (
	// LoadSuccess means the database was found.
	LoadSuccess LoadStatus = "success"
	// LoadNotFound means no database has the requested ID.
	LoadNotFound LoadStatus = "not-found"
)

// View is everything a client needs to open one database.
type View struct {
	Status LoadStatus
	// Database, Contents and Schemas are zero when Status is LoadNotFound.
	Database database.Config
	Contents []content.Content
	Schemas  []schema.Record
	// Permitted reports read-write access to the database directory.
	Permitted bool
}

// Load assembles the view of databaseID. A missing database is reported
// through Status, not as an error.
func (s *Service) Load(ctx context.Context, databaseID string) (View, error) {
	cfg, err := s.databases.Get(ctx, databaseID)
	if errors.Is(err, domain.ErrNotFound) {
		return View{Status: LoadNotFound}, nil
	}
	if err != nil {
		return View{}, fmt.Errorf("get database: %w", err)
	}

	contents, err := s.contents.ListByDatabase(ctx, databaseID)
	if err != nil {
		return View{}, fmt.Errorf("list contents: %w", err)
	}
	schemas, _, err := s.schemas.List(ctx, schema.ListOptions{Limit: loadSchemaLimit}.WithDefaults())
	if err != nil {
		return View{}, fmt.Errorf("list schemas: %w", err)
	}

	v := View{Status: LoadSuccess, Database: cfg, Contents: contents, Schemas: schemas}
	if cfg.StorageOption() == database.StorageLocal {
		perm, err := s.ws.Permission(cfg.Directory())
		if err != nil {
			// An unreachable directory is reported as not permitted.
			logger.FromContext(ctx).Warn("Database directory not accessible",
				zap.String("database_id", databaseID), zap.Error(err))
		}
		v.Permitted = perm.Granted()
	}
	return v, nil
}
