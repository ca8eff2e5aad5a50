package lowcms

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	inferenceuc "github.com/kailas-cloud/lowcms/internal/usecase/inference"
	queryuc "github.com/kailas-cloud/lowcms/internal/usecase/query"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- DatabaseService ---

func TestDatabaseService_Get(t *testing.T) {
	cfg := database.Reconstruct("db-1", "blog", "", []string{"web"}, database.StorageLocal, "blog", testTime, testTime)
	mock := &mockCatalogUC{
		getDatabaseFn: func(_ context.Context, id string) (database.Config, error) {
			if id != "db-1" {
				t.Errorf("id = %q, want db-1", id)
			}
			return cfg, nil
		},
	}

	svc := &DatabaseService{svc: mock}
	got, err := svc.Get(context.Background(), "db-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "blog" || got.StorageOption != StorageLocal || got.Directory != "blog" {
		t.Errorf("database = %+v", got)
	}
}

func TestDatabaseService_Get_NotFound(t *testing.T) {
	mock := &mockCatalogUC{
		getDatabaseFn: func(_ context.Context, _ string) (database.Config, error) {
			return database.Config{}, domain.ErrNotFound
		},
	}

	svc := &DatabaseService{svc: mock}
	_, err := svc.Get(context.Background(), "x")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDatabaseService_Load(t *testing.T) {
	cfg := database.Reconstruct("db-1", "blog", "", nil, database.StorageLocal, "blog", testTime, testTime)
	c := content.Reconstruct(content.Params{ID: "c-1", DatabaseID: "db-1", Name: "posts", Type: content.TypeCollection}, testTime, testTime)
	rec := schema.ReconstructRecord("s-1", "", nil, &schema.Node{Type: "object", Title: "Post"}, testTime, testTime)

	tests := []struct {
		name      string
		view      cataloguc.View
		wantFound bool
	}{
		{
			name: "found",
			view: cataloguc.View{
				Status: cataloguc.LoadSuccess, Database: cfg,
				Contents: []content.Content{c}, Schemas: []schema.Record{rec}, Permitted: true,
			},
			wantFound: true,
		},
		{name: "not found", view: cataloguc.View{Status: cataloguc.LoadNotFound}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCatalogUC{
				loadFn: func(_ context.Context, _ string) (cataloguc.View, error) { return tt.view, nil },
			}
			svc := &DatabaseService{svc: mock}
			v, err := svc.Load(context.Background(), "db-1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Found != tt.wantFound {
				t.Fatalf("Found = %v, want %v", v.Found, tt.wantFound)
			}
			if !tt.wantFound {
				return
			}
			if len(v.Contents) != 1 || v.Contents[0].Type != ContentCollection {
				t.Errorf("contents = %+v", v.Contents)
			}
			if len(v.Schemas) != 1 || v.Schemas[0].Title != "Post" {
				t.Errorf("schemas = %+v", v.Schemas)
			}
			if !v.Permitted {
				t.Error("expected Permitted")
			}
		})
	}
}

// --- ContentService ---

func TestContentService_Create_PassesFields(t *testing.T) {
	mock := &mockCatalogUC{
		createContentFn: func(_ context.Context, dbID string, in cataloguc.ContentInput) (content.Content, error) {
			if dbID != "db-1" || in.Type != content.TypeDocument || in.In != content.InSpecificField || in.JSONPath != "meta" {
				t.Errorf("input = %s %+v", dbID, in)
			}
			return content.Reconstruct(content.Params{
				ID: "c-1", DatabaseID: dbID, Name: in.Name, Type: in.Type, JSONPath: in.JSONPath, In: in.In,
			}, testTime, testTime), nil
		},
	}

	svc := &ContentService{catalog: mock}
	c, err := svc.Create(context.Background(), "db-1", ContentInput{
		Name: "meta", Type: ContentDocument, FilePath: "site.json", JSONPath: "meta", In: InSpecificField,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "c-1" || c.In != InSpecificField {
		t.Errorf("content = %+v", c)
	}
}

func TestContentService_Derive(t *testing.T) {
	node := schema.Derive(mustParse(t, `{"a":[]}`))
	mock := &mockInferenceUC{
		deriveContentFn: func(_ context.Context, _ string) (inferenceuc.Result, error) {
			return inferenceuc.Result{Schema: node, HasUnknown: true}, nil
		},
	}

	svc := &ContentService{inference: mock}
	d, err := svc.Derive(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.HasUnknown {
		t.Error("expected HasUnknown")
	}
	if string(d.Schema) == "" || d.Schema[0] != '{' {
		t.Errorf("schema = %s", d.Schema)
	}
}

func TestContentService_Search(t *testing.T) {
	mock := &mockQueryUC{
		searchFn: func(_ context.Context, id string, p filter.Predicate) ([]any, error) {
			if p.IsEmpty() {
				t.Error("expected a predicate")
			}
			return []any{mustParse(t, `{"z":1,"a":2}`)}, nil
		},
	}

	svc := &ContentService{query: mock}
	got, err := svc.Search(context.Background(), "c-1", []byte(`{"a":2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || string(got[0]) != `{"z":1,"a":2}` {
		t.Errorf("records = %s", got)
	}
}

func TestContentService_Search_InvalidFilter(t *testing.T) {
	svc := &ContentService{query: &mockQueryUC{}}
	_, err := svc.Search(context.Background(), "c-1", []byte(`{"$nor":[]}`))
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatalf("error = %v, want ErrInvalidFilter", err)
	}
}

// --- SchemaService ---

func TestSchemaService_Create(t *testing.T) {
	mock := &mockCatalogUC{
		createSchemaFn: func(_ context.Context, in cataloguc.SchemaInput) (schema.Record, error) {
			if in.Node == nil || in.Node.Type != "object" || in.Node.Properties.Len() != 2 {
				t.Errorf("node = %+v", in.Node)
			}
			in.Node.Title = in.Title
			return schema.ReconstructRecord("s-1", in.Description, in.Tags, in.Node, testTime, testTime), nil
		},
	}

	svc := &SchemaService{catalog: mock}
	s, err := svc.Create(context.Background(), SchemaInput{
		Title:    "Post",
		Document: []byte(`{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"number"}}}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "Post" {
		t.Errorf("Title = %q, want Post", s.Title)
	}
	want := `{"title":"Post","type":"object","properties":{"b":{"type":"string"},"a":{"type":"number"}}}`
	if string(s.Document) != want {
		t.Errorf("Document = %s\nwant       %s", s.Document, want)
	}
}

func TestSchemaService_Create_InvalidDocument(t *testing.T) {
	svc := &SchemaService{catalog: &mockCatalogUC{}}
	_, err := svc.Create(context.Background(), SchemaInput{Document: []byte(`{"type":`)})
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("error = %v, want ErrInvalidSchema", err)
	}
}

func TestSchemaService_List_PassesOptions(t *testing.T) {
	mock := &mockCatalogUC{
		listSchemasFn: func(_ context.Context, opts schema.ListOptions) ([]schema.Record, int, error) {
			if opts.Page != 2 || opts.Limit != 5 || opts.OrderBy != schema.OrderByCreatedAt || opts.Order != schema.OrderAsc {
				t.Errorf("opts = %+v", opts)
			}
			return nil, 7, nil
		},
	}

	svc := &SchemaService{catalog: mock}
	list, total, err := svc.List(context.Background(), ListOptions{Page: 2, Limit: 5, OrderBy: "createdAt", Order: "asc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 || total != 7 {
		t.Errorf("list = %v, total = %d", list, total)
	}
}

func TestSchemaService_Derive_Error(t *testing.T) {
	mock := &mockInferenceUC{
		deriveSampleFn: func(_ context.Context, _ []byte) (inferenceuc.Result, error) {
			return inferenceuc.Result{}, domain.ErrInvalidSample
		},
	}

	svc := &SchemaService{inference: mock}
	_, err := svc.Derive(context.Background(), []byte(`nope`))
	if !errors.Is(err, ErrInvalidSample) {
		t.Fatalf("error = %v, want ErrInvalidSample", err)
	}
}

func TestSchemaService_Operators(t *testing.T) {
	mock := &mockQueryUC{
		operatorsFn: func(n *schema.Node, lang language.Tag) []queryuc.OperatorOption {
			if n == nil || n.Type != "boolean" {
				t.Errorf("node = %+v", n)
			}
			if lang != language.Chinese {
				t.Errorf("lang = %v, want zh", lang)
			}
			return []queryuc.OperatorOption{{Operator: filter.OpEq, Label: "等于"}}
		},
	}

	svc := &SchemaService{query: mock}
	got, err := svc.Operators([]byte(`{"type":"boolean"}`), "zh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Operator != "eq" || got[0].Label != "等于" {
		t.Errorf("options = %+v", got)
	}
}

func mustParse(t *testing.T, s string) any {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return v
}
