// Package inference derives JSON schemas from raw samples and from the files
// behind stored contents.
package inference

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
	"github.com/kailas-cloud/lowcms/internal/logger"
	"github.com/kailas-cloud/lowcms/internal/metrics"
)

// Derivation modes, used as the metrics label.
const (
	ModeSample  = "sample"
	ModeContent = "content"
)

// Result is a derived schema.
type Result struct {
	Schema *schema.Node
	// HasUnknown reports that some field type could not be inferred,
	// typically from empty arrays.
	HasUnknown bool
}

// Service handles schema derivation.
type Service struct {
	deriver  schema.Deriver
	contents ContentReader
}

// New creates an inference service.
func New(deriver schema.Deriver, contents ContentReader) *Service {
	return &Service{deriver: deriver, contents: contents}
}

// DeriveSample derives a schema from a raw JSON sample.
func (s *Service) DeriveSample(ctx context.Context, raw []byte) (Result, error) {
	sample, err := value.Parse(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidSample, err)
	}
	return s.derive(ctx, ModeSample, sample)
}

// DeriveValue derives a schema from an already decoded sample.
func (s *Service) DeriveValue(ctx context.Context, sample any) (Result, error) {
	return s.derive(ctx, ModeSample, sample)
}

// DeriveContent reads the file behind a content, narrows it to the
// content's JSON path and derives its schema.
func (s *Service) DeriveContent(ctx context.Context, contentID string) (Result, error) {
	c, data, err := s.contents.ReadContent(ctx, contentID)
	if err != nil {
		return Result{}, fmt.Errorf("read content: %w", err)
	}
	if err := checkShape(c, data); err != nil {
		return Result{}, err
	}

	res, err := s.derive(ctx, ModeContent, data)
	if err != nil {
		return Result{}, err
	}
	logger.FromContext(ctx).Debug("Content schema derived",
		zap.String("content_id", contentID),
		zap.Bool("has_unknown", res.HasUnknown),
	)
	return res, nil
}

func (s *Service) derive(ctx context.Context, mode string, sample any) (Result, error) {
	node, err := s.deriver.Derive(ctx, sample)
	if err != nil {
		return Result{}, fmt.Errorf("derive: %w", err)
	}
	metrics.SchemaDerivationsTotal.WithLabelValues(mode).Inc()
	return Result{Schema: node, HasUnknown: schema.HasTypes(node, schema.TypeUnknown)}, nil
}

// checkShape rejects files whose top-level value does not match the
// declared data type.
func checkShape(c content.Content, data any) error {
	switch c.DataType() {
	case content.DataArrayOfObjects:
		if _, ok := data.([]any); !ok {
			return fmt.Errorf("%w: %s is not an array of objects", domain.ErrInvalidSample, c.FilePath())
		}
	case content.DataObject:
		if !value.IsObject(data) {
			return fmt.Errorf("%w: %s is not an object", domain.ErrInvalidSample, c.FilePath())
		}
	}
	return nil
}
