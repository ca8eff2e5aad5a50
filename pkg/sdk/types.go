package lowcms

import (
	"time"

	json "github.com/goccy/go-json"
)

// StorageOption is where a database keeps its files.
type StorageOption string

// Storage options.
const (
	StorageLocal   StorageOption = "local"
	StorageBrowser StorageOption = "browser"
)

// ContentType distinguishes record lists from single documents.
type ContentType string

// Content types.
const (
	ContentCollection ContentType = "collection"
	ContentDocument   ContentType = "document"
)

// ContentLocation says whether content is a whole file or one field of it.
type ContentLocation string

// Content locations.
const (
	InEntireFile    ContentLocation = "entire-file"
	InSpecificField ContentLocation = "specific-field"
)

// DataType is the JSON shape of a content.
type DataType string

// Data types.
const (
	DataArrayOfObjects DataType = "array-of-objects"
	DataObject         DataType = "object"
)

// Database is a named directory of content files.
type Database struct {
	ID            string
	Name          string
	Description   string
	Tags          []string
	StorageOption StorageOption
	Directory     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DatabaseInput holds the fields of a new database. StorageOption defaults
// to StorageLocal.
type DatabaseInput struct {
	Name          string
	Description   string
	Tags          []string
	StorageOption StorageOption
	Directory     string
}

// DatabaseView is a database with its contents and schemas.
type DatabaseView struct {
	Found     bool
	Database  Database
	Contents  []Content
	Schemas   []Schema
	Permitted bool
}

// Entry is one directory or file of a listing.
type Entry struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Listing holds the directories and files of a directory, sorted by name.
type Listing struct {
	Path        string
	Directories []Entry
	Files       []Entry
}

// Content is a JSON file, or a field of one, inside a database.
type Content struct {
	ID          string
	DatabaseID  string
	SchemaID    string
	Name        string
	Description string
	Tags        []string
	Type        ContentType
	FilePath    string
	FileType    string
	JSONPath    string
	In          ContentLocation
	DataType    DataType
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContentInput holds the fields of a new content. Type is required, In
// defaults to InEntireFile and DataType follows Type.
type ContentInput struct {
	Name        string
	Description string
	Tags        []string
	SchemaID    string
	Type        ContentType
	FilePath    string
	JSONPath    string
	In          ContentLocation
	DataType    DataType
}

// Schema is a stored JSON Schema document.
type Schema struct {
	ID          string
	Title       string
	Description string
	Tags        []string
	Document    json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SchemaInput holds the editable fields of a schema. A non-empty Title
// overrides the document title.
type SchemaInput struct {
	Title       string
	Description string
	Tags        []string
	Document    json.RawMessage
}

// ListOptions pages through schemas. Zero fields take the defaults: page 1,
// limit 10, ordered by updatedAt desc.
type ListOptions struct {
	Page    int
	Limit   int
	OrderBy string // "updatedAt" | "createdAt"
	Order   string // "desc" | "asc"
}

// Derivation is a schema derived from a sample.
type Derivation struct {
	Schema json.RawMessage
	// HasUnknown reports fields whose type could not be inferred.
	HasUnknown bool
}
