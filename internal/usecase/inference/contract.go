package inference

import (
	"context"

	"github.com/kailas-cloud/lowcms/internal/domain/content"
)

// ContentReader loads the records of a stored content.
type ContentReader interface {
	ReadContent(ctx context.Context, contentID string) (content.Content, any, error)
}
