package query

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
	"github.com/kailas-cloud/lowcms/internal/i18n"
	"github.com/kailas-cloud/lowcms/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDomainMetrics()
	os.Exit(m.Run())
}

type mockContents struct {
	data any
	err  error
}

func (m *mockContents) ReadContent(_ context.Context, _ string) (content.Content, any, error) {
	return content.Content{}, m.data, m.err
}

func mustParse(t *testing.T, s string) any {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return v
}

func treeJSON(t *testing.T, tree *filter.Tree) string {
	t.Helper()
	b, err := tree.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

var numberField = &schema.Node{Type: "number"}

func TestApply(t *testing.T) {
	svc := New(&mockContents{}, i18n.NewLabeler())
	before := testutil.ToFloat64(metrics.FilterMutationsTotal.WithLabelValues("gt"))

	tree, err := svc.Apply(context.Background(), nil, Mutation{Field: "age", Schema: numberField, Operator: "gt", Value: 20.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := treeJSON(t, tree); s != `{"$and":[{"$or":[{"age":{"$gt":20}}]}]}` {
		t.Errorf("tree = %s", s)
	}
	if got := testutil.ToFloat64(metrics.FilterMutationsTotal.WithLabelValues("gt")); got != before+1 {
		t.Errorf("mutations = %f, want %f", got, before+1)
	}
}

func TestApply_Errors(t *testing.T) {
	svc := New(&mockContents{}, i18n.NewLabeler())

	tests := []struct {
		name string
		tree *filter.Tree
		m    Mutation
	}{
		{"missing field", nil, Mutation{Operator: "eq"}},
		{"unknown operator", nil, Mutation{Field: "a", Operator: "nin"}},
		{"invalid tree", &filter.Tree{And: []filter.Block{}}, Mutation{Field: "a", Operator: "eq"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), tt.tree, tt.m)
			if !errors.Is(err, domain.ErrInvalidFilter) {
				t.Errorf("expected ErrInvalidFilter, got %v", err)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	svc := New(&mockContents{}, i18n.NewLabeler())
	tree := filter.Apply(&filter.Tree{}, "age", numberField, filter.OpLte, 5.0)

	loc, err := svc.Locate(context.Background(), tree, "age", "$lte")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loc.HasOperator() || loc.OpValue != 5.0 {
		t.Errorf("loc = %+v", loc)
	}

	if _, err := svc.Locate(context.Background(), tree, "age", "near"); !errors.Is(err, domain.ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestOperators(t *testing.T) {
	svc := New(&mockContents{}, i18n.NewLabeler())

	got := svc.Operators(&schema.Node{Type: "boolean"}, language.Chinese)
	if len(got) != 2 {
		t.Fatalf("options = %+v", got)
	}
	if got[0].Operator != filter.OpEq || got[0].Label != "等于" {
		t.Errorf("first option = %+v", got[0])
	}
	if got[1].Operator != filter.OpExists || got[1].Label != "存在" {
		t.Errorf("second option = %+v", got[1])
	}

	en := svc.Operators(nil, language.English)
	if len(en) != 1 || en[0].Label != "exist" {
		t.Errorf("options = %+v", en)
	}
}

func TestSearchContent(t *testing.T) {
	tree := filter.Apply(&filter.Tree{}, "age", numberField, filter.OpGte, 18.0)

	tests := []struct {
		name    string
		data    string
		want    int
		wantErr error
	}{
		{"collection", `[{"age":12},{"age":18},{"age":40}]`, 2, nil},
		{"document match", `{"age":30}`, 1, nil},
		{"document miss", `{"age":3}`, 0, nil},
		{"scalar", `"x"`, 0, domain.ErrInvalidSample},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockContents{data: mustParse(t, tt.data)}, i18n.NewLabeler())

			got, err := svc.SearchContent(context.Background(), "c1", tree.Predicate())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("matched %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSearchContent_ReadError(t *testing.T) {
	svc := New(&mockContents{err: domain.ErrPermissionDenied}, i18n.NewLabeler())

	_, err := svc.SearchContent(context.Background(), "c1", filter.Predicate{})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}
