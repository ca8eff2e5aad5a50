package lowcms

import (
	"context"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	inferenceuc "github.com/kailas-cloud/lowcms/internal/usecase/inference"
	queryuc "github.com/kailas-cloud/lowcms/internal/usecase/query"
)

// --- catalogUseCase mock ---

// mockCatalogUC implements the methods the tests set; calling any other
// method panics through the nil embedded interface.
type mockCatalogUC struct {
	catalogUseCase

	getDatabaseFn   func(ctx context.Context, id string) (database.Config, error)
	loadFn          func(ctx context.Context, id string) (cataloguc.View, error)
	createContentFn func(ctx context.Context, databaseID string, in cataloguc.ContentInput) (content.Content, error)
	createSchemaFn  func(ctx context.Context, in cataloguc.SchemaInput) (schema.Record, error)
	listSchemasFn   func(ctx context.Context, opts schema.ListOptions) ([]schema.Record, int, error)
}

func (m *mockCatalogUC) GetDatabase(ctx context.Context, id string) (database.Config, error) {
	return m.getDatabaseFn(ctx, id)
}

func (m *mockCatalogUC) Load(ctx context.Context, id string) (cataloguc.View, error) {
	return m.loadFn(ctx, id)
}

func (m *mockCatalogUC) CreateContent(
	ctx context.Context, databaseID string, in cataloguc.ContentInput,
) (content.Content, error) {
	return m.createContentFn(ctx, databaseID, in)
}

func (m *mockCatalogUC) CreateSchema(ctx context.Context, in cataloguc.SchemaInput) (schema.Record, error) {
	return m.createSchemaFn(ctx, in)
}

func (m *mockCatalogUC) ListSchemas(ctx context.Context, opts schema.ListOptions) ([]schema.Record, int, error) {
	return m.listSchemasFn(ctx, opts)
}

// --- inferenceUseCase mock ---

type mockInferenceUC struct {
	deriveSampleFn  func(ctx context.Context, raw []byte) (inferenceuc.Result, error)
	deriveContentFn func(ctx context.Context, id string) (inferenceuc.Result, error)
}

func (m *mockInferenceUC) DeriveSample(ctx context.Context, raw []byte) (inferenceuc.Result, error) {
	return m.deriveSampleFn(ctx, raw)
}

func (m *mockInferenceUC) DeriveContent(ctx context.Context, id string) (inferenceuc.Result, error) {
	return m.deriveContentFn(ctx, id)
}

// --- queryUseCase mock ---

type mockQueryUC struct {
	searchFn    func(ctx context.Context, id string, p filter.Predicate) ([]any, error)
	operatorsFn func(n *schema.Node, lang language.Tag) []queryuc.OperatorOption
}

func (m *mockQueryUC) SearchContent(ctx context.Context, id string, p filter.Predicate) ([]any, error) {
	return m.searchFn(ctx, id, p)
}

func (m *mockQueryUC) Operators(n *schema.Node, lang language.Tag) []queryuc.OperatorOption {
	return m.operatorsFn(n, lang)
}
