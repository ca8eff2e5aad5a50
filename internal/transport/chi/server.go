// Package chi exposes the lowcms use cases over HTTP.
package chi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lowcms/internal/domain"
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	"github.com/kailas-cloud/lowcms/internal/i18n"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/lowcms/internal/usecase/health"
	inferenceuc "github.com/kailas-cloud/lowcms/internal/usecase/inference"
	queryuc "github.com/kailas-cloud/lowcms/internal/usecase/query"
)

// maxBodyBytes bounds request bodies other than derivation samples.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	catalog        *cataloguc.Service
	inference      *inferenceuc.Service
	query          *queryuc.Service
	health         *healthuc.Service
	logger         *zap.Logger
	maxSampleBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. maxSampleBytes bounds inline
// derivation samples; zero falls back to the default body limit.
func NewServer(
	catalog *cataloguc.Service,
	inference *inferenceuc.Service,
	query *queryuc.Service,
	health *healthuc.Service,
	maxSampleBytes int64,
	logger *zap.Logger,
) *Server {
	if maxSampleBytes <= 0 {
		maxSampleBytes = maxBodyBytes
	}
	s := &Server{
		catalog:        catalog,
		inference:      inference,
		query:          query,
		health:         health,
		logger:         logger,
		maxSampleBytes: maxSampleBytes,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, ErrorCodeInvalidSchema),
		sentinelHandler(domain.ErrInvalidSample, http.StatusUnprocessableEntity, ErrorCodeInvalidSample),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorCodeInvalidFilter),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrPermissionDenied, http.StatusForbidden, ErrorCodeForbidden),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/schemas", func(r chi.Router) {
		r.Post("/derive", s.DeriveSchema)
		r.Get("/", s.ListSchemas)
		r.Post("/", s.CreateSchema)
		r.Get("/{id}", s.GetSchema)
		r.Put("/{id}", s.UpdateSchema)
		r.Delete("/{id}", s.DeleteSchema)
	})

	r.Route("/databases", func(r chi.Router) {
		r.Get("/", s.ListDatabases)
		r.Post("/", s.CreateDatabase)
		r.Get("/{id}", s.LoadDatabase)
		r.Delete("/{id}", s.DeleteDatabase)
		r.Get("/{id}/directory", s.ListDirectory)
		r.Post("/{id}/contents", s.CreateContent)
	})

	r.Route("/contents", func(r chi.Router) {
		r.Get("/{id}", s.GetContent)
		r.Delete("/{id}", s.DeleteContent)
		r.Post("/{id}/schema", s.AttachSchema)
		r.Post("/{id}/search", s.SearchContent)
	})

	r.Route("/filters", func(r chi.Router) {
		r.Post("/apply", s.ApplyFilter)
		r.Post("/locate", s.LocateFilter)
		r.Get("/operators", s.ListOperators)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// DeriveSchema handles POST /schemas/derive.
func (s *Server) DeriveSchema(w http.ResponseWriter, r *http.Request) {
	var req DeriveRequest
	if !s.decode(w, r, s.maxSampleBytes, &req) {
		return
	}

	var (
		res inferenceuc.Result
		err error
	)
	switch {
	case req.ContentID != "":
		res, err = s.inference.DeriveContent(r.Context(), req.ContentID)
	case len(req.Sample) > 0:
		res, err = s.inference.DeriveSample(r.Context(), req.Sample)
	default:
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "sample or contentId is required")
		return
	}
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeriveResponse{Schema: res.Schema, HasUnknown: res.HasUnknown})
}

// ListSchemas handles GET /schemas.
func (s *Server) ListSchemas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := schema.ListOptions{
		OrderBy: schema.OrderBy(q.Get("orderBy")),
		Order:   schema.Order(q.Get("order")),
	}
	var err error
	if opts.Page, err = intParam(q.Get("page")); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "page must be an integer")
		return
	}
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "limit must be an integer")
		return
	}

	recs, total, err := s.catalog.ListSchemas(r.Context(), opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	opts = opts.WithDefaults()
	items := make([]Schema, len(recs))
	for i, rec := range recs {
		items[i] = schemaToAPI(rec)
	}
	writeJSON(w, http.StatusOK, SchemaListResponse{Items: items, Page: opts.Page, Limit: opts.Limit, Total: total})
}

// CreateSchema handles POST /schemas.
func (s *Server) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var req SchemaRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	rec, err := s.catalog.CreateSchema(r.Context(), schemaInput(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/schemas/"+rec.ID())
	writeJSON(w, http.StatusCreated, schemaToAPI(rec))
}

// GetSchema handles GET /schemas/{id}.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetSchema(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schemaToAPI(rec))
}

// UpdateSchema handles PUT /schemas/{id}.
func (s *Server) UpdateSchema(w http.ResponseWriter, r *http.Request) {
	var req SchemaRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	rec, err := s.catalog.UpdateSchema(r.Context(), chi.URLParam(r, "id"), schemaInput(req))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schemaToAPI(rec))
}

// DeleteSchema handles DELETE /schemas/{id}.
func (s *Server) DeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteSchema(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDatabases handles GET /databases.
func (s *Server) ListDatabases(w http.ResponseWriter, r *http.Request) {
	cfgs, err := s.catalog.ListDatabases(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]Database, len(cfgs))
	for i, c := range cfgs {
		items[i] = databaseToAPI(c)
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateDatabase handles POST /databases.
func (s *Server) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	cfg, err := s.catalog.CreateDatabase(r.Context(), cataloguc.DatabaseInput{
		Name:          req.Name,
		Description:   req.Description,
		Tags:          req.Tags,
		StorageOption: database.StorageOption(req.StorageOption),
		Directory:     req.Directory,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/databases/"+cfg.ID())
	writeJSON(w, http.StatusCreated, databaseToAPI(cfg))
}

// LoadDatabase handles GET /databases/{id}. A missing database is answered
// with 404 and status "not-found".
func (s *Server) LoadDatabase(w http.ResponseWriter, r *http.Request) {
	v, err := s.catalog.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if v.Status == cataloguc.LoadNotFound {
		writeJSON(w, http.StatusNotFound, DatabaseView{
			Status:   string(v.Status),
			Contents: []Content{},
			Schemas:  []Schema{},
		})
		return
	}
	writeJSON(w, http.StatusOK, viewToAPI(v))
}

// DeleteDatabase handles DELETE /databases/{id}.
func (s *Server) DeleteDatabase(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteDatabase(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDirectory handles GET /databases/{id}/directory.
func (s *Server) ListDirectory(w http.ResponseWriter, r *http.Request) {
	l, err := s.catalog.Directory(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("path"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listingToAPI(l))
}

// CreateContent handles POST /databases/{id}/contents.
func (s *Server) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	c, err := s.catalog.CreateContent(r.Context(), chi.URLParam(r, "id"), cataloguc.ContentInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		SchemaID:    req.SchemaID,
		Type:        content.Type(req.Type),
		FilePath:    req.FilePath,
		JSONPath:    req.JSONPath,
		In:          content.Location(req.ContentIn),
		DataType:    content.DataType(req.DataType),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/contents/"+c.ID())
	writeJSON(w, http.StatusCreated, contentToAPI(c))
}

// GetContent handles GET /contents/{id}.
func (s *Server) GetContent(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.GetContent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contentToAPI(c))
}

// DeleteContent handles DELETE /contents/{id}.
func (s *Server) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteContent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AttachSchema handles POST /contents/{id}/schema.
func (s *Server) AttachSchema(w http.ResponseWriter, r *http.Request) {
	var req AttachSchemaRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}
	if req.SchemaID == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "schemaId is required")
		return
	}

	c, err := s.catalog.AttachSchema(r.Context(), chi.URLParam(r, "id"), req.SchemaID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contentToAPI(c))
}

// SearchContent handles POST /contents/{id}/search.
func (s *Server) SearchContent(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	var p filter.Predicate
	if len(req.Filter) > 0 {
		if err := p.UnmarshalJSON(req.Filter); err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeInvalidFilter, err.Error())
			return
		}
	}

	records, err := s.query.SearchContent(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if records == nil {
		records = []any{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: records, Total: len(records)})
}

// ApplyFilter handles POST /filters/apply.
func (s *Server) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	var req ApplyFilterRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	tree, err := s.query.Apply(r.Context(), req.Tree, queryuc.Mutation{
		Field:    req.Field,
		Schema:   req.Schema,
		Operator: req.Operator,
		Value:    req.Value,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tree)
}

// LocateFilter handles POST /filters/locate.
func (s *Server) LocateFilter(w http.ResponseWriter, r *http.Request) {
	var req LocateFilterRequest
	if !s.decode(w, r, maxBodyBytes, &req) {
		return
	}

	loc, err := s.query.Locate(r.Context(), req.Tree, req.Field, req.Operator)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, locationToAPI(loc))
}

// ListOperators handles GET /filters/operators?type=&items=&lang=.
// lang falls back to Accept-Language.
func (s *Server) ListOperators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var node *schema.Node
	if t := q.Get("type"); t != "" {
		node = &schema.Node{Type: t}
		if items := q.Get("items"); items != "" {
			node.Items = &schema.Node{Type: items}
		}
	}

	lang := q.Get("lang")
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}

	opts := s.query.Operators(node, i18n.Match(lang))
	out := make([]OperatorOption, len(opts))
	for i, o := range opts {
		out[i] = OperatorOption{Value: string(o.Operator), Label: o.Label}
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON body of at most limit bytes into v and answers 400 on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err //nolint:wrapcheck // mapped to a 400 by the caller
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client message without exposing internals.
// Validation errors carry their detail; storage failures do not.
func safeDomainMessage(err error) string {
	detailed := []error{
		domain.ErrInvalidSchema,
		domain.ErrInvalidSample,
		domain.ErrInvalidFilter,
		domain.ErrInvalidRecord,
	}
	for _, s := range detailed {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrPermissionDenied,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
