// Package query edits filter trees and runs predicates over content records.
package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
	"github.com/kailas-cloud/lowcms/internal/i18n"
	"github.com/kailas-cloud/lowcms/internal/logger"
	"github.com/kailas-cloud/lowcms/internal/metrics"
)

// Service handles filter editing and record search.
type Service struct {
	contents ContentReader
	labels   *i18n.Labeler
}

// New creates a query service.
func New(contents ContentReader, labels *i18n.Labeler) *Service {
	return &Service{contents: contents, labels: labels}
}

// Mutation is one operator entry applied to a tree.
type Mutation struct {
	Field    string
	Schema   *schema.Node
	Operator string
	Value    any
}

// Apply records m in tree and returns the updated tree. A nil tree starts
// empty. Operators the field's schema cannot take leave the tree unchanged.
func (s *Service) Apply(_ context.Context, tree *filter.Tree, m Mutation) (*filter.Tree, error) {
	if m.Field == "" {
		return nil, fmt.Errorf("%w: field is required", domain.ErrInvalidFilter)
	}
	op, err := filter.ParseOperator(m.Operator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	if tree == nil {
		tree = &filter.Tree{}
	}
	if !tree.IsEmpty() {
		if err := tree.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
	}

	filter.Apply(tree, m.Field, m.Schema, op, m.Value)
	metrics.FilterMutationsTotal.WithLabelValues(op.Name()).Inc()
	return tree, nil
}

// Locate finds field and its operator in tree. nil means the field is not
// filtered.
func (s *Service) Locate(_ context.Context, tree *filter.Tree, field, operator string) (*filter.Location, error) {
	op, err := filter.ParseOperator(operator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}
	return filter.Locate(tree, field, op.Name()), nil
}

// OperatorOption is one selectable operator with its display label.
type OperatorOption struct {
	Operator filter.Operator
	Label    string
}

// Operators lists the operators offered for a field with schema n, labelled
// in lang.
func (s *Service) Operators(n *schema.Node, lang language.Tag) []OperatorOption {
	ops := filter.OperatorsFor(n)
	out := make([]OperatorOption, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperatorOption{Operator: op, Label: s.labels.Operator(lang, string(op))})
	}
	return out
}

// SearchContent returns the records of a content matching p. A document
// content yields its single object when it matches.
func (s *Service) SearchContent(ctx context.Context, contentID string, p filter.Predicate) ([]any, error) {
	_, data, err := s.contents.ReadContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	var records []any
	switch {
	case value.IsObject(data):
		records = []any{data}
	default:
		arr, ok := data.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: content %s holds no records", domain.ErrInvalidSample, contentID)
		}
		records = arr
	}

	matched := filter.Search(records, p)
	metrics.FilterSearchesTotal.Inc()
	metrics.FilterMatchedRecords.Observe(float64(len(matched)))
	logger.FromContext(ctx).Debug("Content searched",
		zap.String("content_id", contentID),
		zap.Int("records", len(records)),
		zap.Int("matched", len(matched)),
	)
	return matched, nil
}
