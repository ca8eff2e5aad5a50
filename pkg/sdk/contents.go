package lowcms

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
)

// ContentService manages contents and reads their records.
type ContentService struct {
	catalog   catalogUseCase
	inference inferenceUseCase
	query     queryUseCase
	obs       *observer
}

// Create stores a new content of databaseID.
func (s *ContentService) Create(ctx context.Context, databaseID string, in ContentInput) (_ Content, err error) {
	start := time.Now()
	defer func() { s.obs.observe("content.create", start, err) }()

	c, err := s.catalog.CreateContent(ctx, databaseID, cataloguc.ContentInput{
		Name:        in.Name,
		Description: in.Description,
		Tags:        in.Tags,
		SchemaID:    in.SchemaID,
		Type:        content.Type(in.Type),
		FilePath:    in.FilePath,
		JSONPath:    in.JSONPath,
		In:          content.Location(in.In),
		DataType:    content.DataType(in.DataType),
	})
	if err != nil {
		return Content{}, fmt.Errorf("create content: %w", err)
	}
	return fromInternalContent(c), nil
}

// Get retrieves a content by ID.
func (s *ContentService) Get(ctx context.Context, id string) (_ Content, err error) {
	start := time.Now()
	defer func() { s.obs.observe("content.get", start, err) }()

	c, err := s.catalog.GetContent(ctx, id)
	if err != nil {
		return Content{}, fmt.Errorf("get content: %w", err)
	}
	return fromInternalContent(c), nil
}

// Delete removes a content. Its file is left alone.
func (s *ContentService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("content.delete", start, err) }()

	if err = s.catalog.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// AttachSchema links a stored schema to a content.
func (s *ContentService) AttachSchema(ctx context.Context, id, schemaID string) (_ Content, err error) {
	start := time.Now()
	defer func() { s.obs.observe("content.attach_schema", start, err) }()

	c, err := s.catalog.AttachSchema(ctx, id, schemaID)
	if err != nil {
		return Content{}, fmt.Errorf("attach schema: %w", err)
	}
	return fromInternalContent(c), nil
}

// Derive infers a schema from the content's data.
func (s *ContentService) Derive(ctx context.Context, id string) (_ Derivation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("content.derive", start, err) }()

	res, err := s.inference.DeriveContent(ctx, id)
	if err != nil {
		return Derivation{}, fmt.Errorf("derive content: %w", err)
	}
	return toDerivation(res)
}

// Search returns the content records matching predicate, a Mongo-style
// filter document. An empty predicate returns every record. Records keep
// the key order of the file.
func (s *ContentService) Search(ctx context.Context, id string, predicate []byte) (_ []json.RawMessage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("content.search", start, err) }()

	var p filter.Predicate
	if len(predicate) > 0 {
		if err = p.UnmarshalJSON(predicate); err != nil {
			return nil, fmt.Errorf("search content: %w: %w", domain.ErrInvalidFilter, err)
		}
	}
	records, err := s.query.SearchContent(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		b, err := value.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		out[i] = b
	}
	return out, nil
}
