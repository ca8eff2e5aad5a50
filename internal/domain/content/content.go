// Package content holds the content aggregate: one JSON file (or a field
// inside it) managed within a database and described by a schema.
package content

import (
	"fmt"
	"strings"
	"time"
)

// Type distinguishes collections (arrays of objects) from single documents.
type Type string

const (
	// TypeCollection is an array of objects.
	TypeCollection Type = "collection"
	// TypeDocument is a single object.
	TypeDocument Type = "document"
)

// IsValid checks if the content type is supported.
func (t Type) IsValid() bool {
	return t == TypeCollection || t == TypeDocument
}

// Location says whether the content is the whole file or a field in it.
type Location string

const (
	// InEntireFile uses the whole parsed file.
	InEntireFile Location = "entire-file"
	// InSpecificField narrows the file to JSONPath.
	InSpecificField Location = "specific-field"
)

// IsValid checks if the location is supported.
func (l Location) IsValid() bool {
	return l == InEntireFile || l == InSpecificField
}

// DataType is the JSON shape of the content.
type DataType string

const (
	// DataArrayOfObjects is a JSON array of objects.
	DataArrayOfObjects DataType = "array-of-objects"
	// DataObject is a JSON object.
	DataObject DataType = "object"
)

// IsValid checks if the data type is supported.
func (d DataType) IsValid() bool {
	return d == DataArrayOfObjects || d == DataObject
}

// Content is the managed content aggregate (immutable value object).
type Content struct {
	id          string
	name        string
	description string
	tags        []string
	databaseID  string
	schemaID    string
	contentType Type
	filePath    string
	fileType    string
	jsonPath    string
	in          Location
	dataType    DataType
	createdAt   time.Time
	updatedAt   time.Time
}

// Params carries the caller-provided fields of a Content.
type Params struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	DatabaseID  string
	SchemaID    string
	Type        Type
	FilePath    string
	FileType    string
	JSONPath    string
	In          Location
	DataType    DataType
}

// New validates and creates a Content stamped with now.
// Location defaults to entire-file and the data type follows the content type.
func New(p Params, now time.Time) (Content, error) {
	if p.ID == "" {
		return Content{}, fmt.Errorf("content ID is required")
	}
	if p.DatabaseID == "" {
		return Content{}, fmt.Errorf("database ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return Content{}, fmt.Errorf("content name is required")
	}
	if !p.Type.IsValid() {
		return Content{}, fmt.Errorf("invalid content type: %q", p.Type)
	}
	if p.FilePath == "" {
		return Content{}, fmt.Errorf("file path is required")
	}
	if p.In == "" {
		p.In = InEntireFile
	}
	if !p.In.IsValid() {
		return Content{}, fmt.Errorf("invalid content location: %q", p.In)
	}
	if p.In == InSpecificField && p.JSONPath == "" {
		return Content{}, fmt.Errorf("json path is required for specific-field content")
	}
	if p.DataType == "" {
		p.DataType = DataObject
		if p.Type == TypeCollection {
			p.DataType = DataArrayOfObjects
		}
	}
	if !p.DataType.IsValid() {
		return Content{}, fmt.Errorf("invalid content data type: %q", p.DataType)
	}
	if p.FileType == "" {
		p.FileType = "json"
	}

	c := Reconstruct(p, now, now)
	c.name = strings.TrimSpace(p.Name)
	c.tags = append([]string(nil), p.Tags...)
	return c, nil
}

// Reconstruct creates a Content without validation (storage hydration).
func Reconstruct(p Params, createdAt, updatedAt time.Time) Content {
	return Content{
		id:          p.ID,
		name:        p.Name,
		description: p.Description,
		tags:        p.Tags,
		databaseID:  p.DatabaseID,
		schemaID:    p.SchemaID,
		contentType: p.Type,
		filePath:    p.FilePath,
		fileType:    p.FileType,
		jsonPath:    p.JSONPath,
		in:          p.In,
		dataType:    p.DataType,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the content identifier.
func (c Content) ID() string { return c.id }

// Name returns the display name.
func (c Content) Name() string { return c.name }

// Description returns the description.
func (c Content) Description() string { return c.description }

// Tags returns the tags.
func (c Content) Tags() []string { return c.tags }

// DatabaseID returns the owning database.
func (c Content) DatabaseID() string { return c.databaseID }

// SchemaID returns the describing schema, empty when none is attached yet.
func (c Content) SchemaID() string { return c.schemaID }

// Type returns collection or document.
func (c Content) Type() Type { return c.contentType }

// FilePath returns the path of the JSON file relative to the database directory.
func (c Content) FilePath() string { return c.filePath }

// FileType returns the file type, "json" by default.
func (c Content) FileType() string { return c.fileType }

// JSONPath returns the dot-separated path to the content inside the file.
func (c Content) JSONPath() string { return c.jsonPath }

// In returns where the content lives in the file.
func (c Content) In() Location { return c.in }

// DataType returns the JSON shape of the content.
func (c Content) DataType() DataType { return c.dataType }

// CreatedAt returns the creation time.
func (c Content) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last update time.
func (c Content) UpdatedAt() time.Time { return c.updatedAt }

// WithSchema returns a copy attached to schemaID and touched at now.
func (c Content) WithSchema(schemaID string, now time.Time) Content {
	c.schemaID = schemaID
	c.updatedAt = now
	return c
}

// Params returns the fields of c as Params.
func (c Content) Params() Params {
	return Params{
		ID: c.id, Name: c.name, Description: c.description, Tags: c.tags,
		DatabaseID: c.databaseID, SchemaID: c.schemaID, Type: c.contentType,
		FilePath: c.filePath, FileType: c.fileType, JSONPath: c.jsonPath,
		In: c.in, DataType: c.dataType,
	}
}
