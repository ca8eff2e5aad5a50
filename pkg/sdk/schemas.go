package lowcms

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/i18n"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
)

// SchemaService derives and stores JSON schemas.
type SchemaService struct {
	catalog   catalogUseCase
	inference inferenceUseCase
	query     queryUseCase
	obs       *observer
}

// OperatorOption is a filter operator offered for a field, with its label.
type OperatorOption struct {
	Operator string
	Label    string
}

// Derive infers a schema from sample, an object or an array of objects.
func (s *SchemaService) Derive(ctx context.Context, sample []byte) (_ Derivation, err error) {
	start := time.Now()
	defer func() { s.obs.observe("schema.derive", start, err) }()

	res, err := s.inference.DeriveSample(ctx, sample)
	if err != nil {
		return Derivation{}, fmt.Errorf("derive schema: %w", err)
	}
	return toDerivation(res)
}

// Create stores a new schema.
func (s *SchemaService) Create(ctx context.Context, in SchemaInput) (_ Schema, err error) {
	start := time.Now()
	defer func() { s.obs.observe("schema.create", start, err) }()

	sin, err := toInternalSchemaInput(in)
	if err != nil {
		return Schema{}, fmt.Errorf("create schema: %w", err)
	}
	rec, err := s.catalog.CreateSchema(ctx, sin)
	if err != nil {
		return Schema{}, fmt.Errorf("create schema: %w", err)
	}
	return fromInternalSchema(rec)
}

// Update replaces a stored schema's document and metadata.
func (s *SchemaService) Update(ctx context.Context, id string, in SchemaInput) (_ Schema, err error) {
	start := time.Now()
	defer func() { s.obs.observe("schema.update", start, err) }()

	sin, err := toInternalSchemaInput(in)
	if err != nil {
		return Schema{}, fmt.Errorf("update schema: %w", err)
	}
	rec, err := s.catalog.UpdateSchema(ctx, id, sin)
	if err != nil {
		return Schema{}, fmt.Errorf("update schema: %w", err)
	}
	return fromInternalSchema(rec)
}

// Get retrieves a schema by ID.
func (s *SchemaService) Get(ctx context.Context, id string) (_ Schema, err error) {
	start := time.Now()
	defer func() { s.obs.observe("schema.get", start, err) }()

	rec, err := s.catalog.GetSchema(ctx, id)
	if err != nil {
		return Schema{}, fmt.Errorf("get schema: %w", err)
	}
	return fromInternalSchema(rec)
}

// List returns one page of schemas and the total count.
func (s *SchemaService) List(ctx context.Context, opts ListOptions) (_ []Schema, _ int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("schema.list", start, err) }()

	recs, total, err := s.catalog.ListSchemas(ctx, schema.ListOptions{
		Page:    opts.Page,
		Limit:   opts.Limit,
		OrderBy: schema.OrderBy(opts.OrderBy),
		Order:   schema.Order(opts.Order),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list schemas: %w", err)
	}
	out := make([]Schema, len(recs))
	for i, rec := range recs {
		if out[i], err = fromInternalSchema(rec); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// Delete removes a schema.
func (s *SchemaService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("schema.delete", start, err) }()

	if err = s.catalog.DeleteSchema(ctx, id); err != nil {
		return fmt.Errorf("delete schema: %w", err)
	}
	return nil
}

// Operators lists the filter operators for a field schema document,
// labelled in lang ("en" or "zh"; anything else falls back to English).
func (s *SchemaService) Operators(field json.RawMessage, lang string) ([]OperatorOption, error) {
	var node *schema.Node
	if len(field) > 0 {
		node = &schema.Node{}
		if err := json.Unmarshal(field, node); err != nil {
			return nil, fmt.Errorf("%w: decode field schema: %w", domain.ErrInvalidSchema, err)
		}
	}
	opts := s.query.Operators(node, i18n.Match(lang))
	out := make([]OperatorOption, len(opts))
	for i, o := range opts {
		out[i] = OperatorOption{Operator: o.Operator.Name(), Label: o.Label}
	}
	return out, nil
}

func toInternalSchemaInput(in SchemaInput) (cataloguc.SchemaInput, error) {
	out := cataloguc.SchemaInput{Title: in.Title, Description: in.Description, Tags: in.Tags}
	if len(in.Document) == 0 {
		return out, nil
	}
	out.Node = &schema.Node{}
	if err := json.Unmarshal(in.Document, out.Node); err != nil {
		return cataloguc.SchemaInput{}, fmt.Errorf("%w: decode document: %w", domain.ErrInvalidSchema, err)
	}
	return out, nil
}
