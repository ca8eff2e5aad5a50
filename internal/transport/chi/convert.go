package chi

import (
	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	"github.com/kailas-cloud/lowcms/internal/domain/search/filter"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

func databaseToAPI(c database.Config) Database {
	return Database{
		ID:            c.ID(),
		Name:          c.Name(),
		Description:   c.Description(),
		Tags:          nonNil(c.Tags()),
		StorageOption: string(c.StorageOption()),
		Directory:     c.Directory(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func contentToAPI(c content.Content) Content {
	return Content{
		ID:          c.ID(),
		Name:        c.Name(),
		Description: c.Description(),
		Tags:        nonNil(c.Tags()),
		DatabaseID:  c.DatabaseID(),
		SchemaID:    c.SchemaID(),
		Type:        string(c.Type()),
		FilePath:    c.FilePath(),
		FileType:    c.FileType(),
		JSONPath:    c.JSONPath(),
		ContentIn:   string(c.In()),
		DataType:    string(c.DataType()),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func schemaToAPI(r schema.Record) Schema {
	return Schema{
		ID:          r.ID(),
		Title:       r.Title(),
		Description: r.Description(),
		Tags:        nonNil(r.Tags()),
		Schema:      r.Node(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

func schemaInput(req SchemaRequest) cataloguc.SchemaInput {
	return cataloguc.SchemaInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Node:        req.Schema,
	}
}

func viewToAPI(v cataloguc.View) DatabaseView {
	db := databaseToAPI(v.Database)
	out := DatabaseView{
		Status:     string(v.Status),
		Database:   &db,
		Contents:   make([]Content, len(v.Contents)),
		Schemas:    make([]Schema, len(v.Schemas)),
		Permission: v.Permitted,
	}
	for i, c := range v.Contents {
		out.Contents[i] = contentToAPI(c)
	}
	for i, r := range v.Schemas {
		out.Schemas[i] = schemaToAPI(r)
	}
	return out
}

func listingToAPI(l workspace.Listing) DirectoryListing {
	return DirectoryListing{
		Path:        l.Path,
		Directories: entriesToAPI(l.Directories),
		Files:       entriesToAPI(l.Files),
	}
}

func entriesToAPI(entries []workspace.Entry) []DirectoryEntry {
	out := make([]DirectoryEntry, len(entries))
	for i, e := range entries {
		out[i] = DirectoryEntry{Name: e.Name, Path: e.Path, Size: e.Size, ModTime: e.ModTime}
	}
	return out
}

func locationToAPI(loc *filter.Location) LocateFilterResponse {
	if loc == nil {
		return LocateFilterResponse{FieldIndex: -1, OpIndex: -1}
	}
	out := LocateFilterResponse{
		Found:       true,
		FieldIndex:  loc.FieldIndex,
		HasOperator: loc.HasOperator(),
		OpIndex:     loc.OpIndex,
		Value:       loc.OpValue,
	}
	if c, ok := loc.Condition(); ok {
		out.Raw = c.Raw
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
