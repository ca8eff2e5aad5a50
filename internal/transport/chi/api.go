package chi

import (
	"time"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeAlreadyExists    ErrorCode = "already_exists"
	ErrorCodeInvalidSchema    ErrorCode = "invalid_schema"
	ErrorCodeInvalidSample    ErrorCode = "invalid_sample"
	ErrorCodeInvalidFilter    ErrorCode = "invalid_filter"
	ErrorCodeForbidden        ErrorCode = "permission_denied"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// DatabaseRequest creates a database.
type DatabaseRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	StorageOption string   `json:"storageOption"`
	Directory     string   `json:"directory"`
}

// Database is a stored database config.
type Database struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	StorageOption string    `json:"storageOption"`
	Directory     string    `json:"directory,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DatabaseView is the body of GET /databases/{id}.
type DatabaseView struct {
	Status     string    `json:"status"`
	Database   *Database `json:"database,omitempty"`
	Contents   []Content `json:"contents"`
	Schemas    []Schema  `json:"schemas"`
	Permission bool      `json:"permission"`
}

// DirectoryEntry is one entry of a directory listing.
type DirectoryEntry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"modTime"`
}

// DirectoryListing is the body of GET /databases/{id}/directory.
type DirectoryListing struct {
	Path        string           `json:"path"`
	Directories []DirectoryEntry `json:"directories"`
	Files       []DirectoryEntry `json:"files"`
}

// ContentRequest creates a content.
type ContentRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	SchemaID    string   `json:"schemaId"`
	Type        string   `json:"type"`
	FilePath    string   `json:"filePath"`
	JSONPath    string   `json:"jsonPath"`
	ContentIn   string   `json:"contentIn"`
	DataType    string   `json:"contentJsonInFileType"`
}

// Content is a stored content.
type Content struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	DatabaseID  string    `json:"databaseId"`
	SchemaID    string    `json:"schemaId,omitempty"`
	Type        string    `json:"type"`
	FilePath    string    `json:"filePath"`
	FileType    string    `json:"fileType"`
	JSONPath    string    `json:"jsonPath,omitempty"`
	ContentIn   string    `json:"contentIn"`
	DataType    string    `json:"contentJsonInFileType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AttachSchemaRequest points a content at a schema.
type AttachSchemaRequest struct {
	SchemaID string `json:"schemaId"`
}

// SchemaRequest creates or replaces a schema.
type SchemaRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	Schema      *schema.Node `json:"schema"`
}

// Schema is a stored schema.
type Schema struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Tags        []string     `json:"tags"`
	Schema      *schema.Node `json:"schema"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// SchemaListResponse is one page of schemas.
type SchemaListResponse struct {
	Items []Schema `json:"items"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
	Total int      `json:"total"`
}

// DeriveRequest carries either an inline sample or a content to read.
type DeriveRequest struct {
	Sample    json.RawMessage `json:"sample"`
	ContentID string          `json:"contentId"`
}

// DeriveResponse is a derived schema.
type DeriveResponse struct {
	Schema     *schema.Node `json:"schema"`
	HasUnknown bool         `json:"hasUnknown"`
}

// ApplyFilterRequest applies one operator entry to a tree.
type ApplyFilterRequest struct {
	Tree     *filter.Tree `json:"tree"`
	Field    string       `json:"field"`
	Schema   *schema.Node `json:"schema"`
	Operator string       `json:"operator"`
	Value    any          `json:"value"`
}

// LocateFilterRequest looks up a field and operator in a tree.
type LocateFilterRequest struct {
	Tree     *filter.Tree `json:"tree"`
	Field    string       `json:"field"`
	Operator string       `json:"operator"`
}

// LocateFilterResponse is where a field sits in a tree. Found is false when
// the field is not filtered.
type LocateFilterResponse struct {
	Found       bool   `json:"found"`
	FieldIndex  int    `json:"fieldIndex"`
	HasOperator bool   `json:"hasOperator"`
	OpIndex     int    `json:"opIndex"`
	Value       any    `json:"value,omitempty"`
	Raw         string `json:"raw,omitempty"`
}

// OperatorOption is a selectable filter operator.
type OperatorOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SearchRequest filters the records of a content. Filter is either a
// builder tree or any Mongo-style predicate.
type SearchRequest struct {
	Filter json.RawMessage `json:"filter"`
}

// SearchResponse holds matching records.
type SearchResponse struct {
	Items []any `json:"items"`
	Total int   `json:"total"`
}
