package catalog

import (
	"context"

	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

// DatabaseRepository defines the storage contract for database configs.
type DatabaseRepository interface {
	Create(ctx context.Context, cfg database.Config) error
	Get(ctx context.Context, id string) (database.Config, error)
	List(ctx context.Context) ([]database.Config, error)
	Delete(ctx context.Context, id string) error
}

// ContentRepository defines the storage contract for contents.
type ContentRepository interface {
	Create(ctx context.Context, c content.Content) error
	Update(ctx context.Context, c content.Content) error
	Get(ctx context.Context, id string) (content.Content, error)
	ListByDatabase(ctx context.Context, databaseID string) ([]content.Content, error)
	Delete(ctx context.Context, id string) error
}

// SchemaRepository defines the storage contract for schemas.
type SchemaRepository interface {
	Create(ctx context.Context, rec schema.Record) error
	Update(ctx context.Context, rec schema.Record) error
	Get(ctx context.Context, id string) (schema.Record, error)
	List(ctx context.Context, opts schema.ListOptions) ([]schema.Record, int, error)
	Delete(ctx context.Context, id string) error
}

// Workspace is the file system collaborator.
type Workspace interface {
	Enumerate(dir string) (workspace.Listing, error)
	Permission(dir string) (workspace.Permission, error)
	ReadJSON(file string, maxBytes int64) (any, error)
}
