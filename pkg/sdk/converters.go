package lowcms

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain/content"
	"github.com/kailas-cloud/lowcms/internal/domain/database"
	"github.com/kailas-cloud/lowcms/internal/domain/schema"
	cataloguc "github.com/kailas-cloud/lowcms/internal/usecase/catalog"
	inferenceuc "github.com/kailas-cloud/lowcms/internal/usecase/inference"
	"github.com/kailas-cloud/lowcms/internal/workspace"
)

func fromInternalDatabase(c database.Config) Database {
	return Database{
		ID:            c.ID(),
		Name:          c.Name(),
		Description:   c.Description(),
		Tags:          c.Tags(),
		StorageOption: StorageOption(c.StorageOption()),
		Directory:     c.Directory(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func fromInternalContent(c content.Content) Content {
	return Content{
		ID:          c.ID(),
		DatabaseID:  c.DatabaseID(),
		SchemaID:    c.SchemaID(),
		Name:        c.Name(),
		Description: c.Description(),
		Tags:        c.Tags(),
		Type:        ContentType(c.Type()),
		FilePath:    c.FilePath(),
		FileType:    c.FileType(),
		JSONPath:    c.JSONPath(),
		In:          ContentLocation(c.In()),
		DataType:    DataType(c.DataType()),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
}

func fromInternalSchema(r schema.Record) (Schema, error) {
	doc, err := json.Marshal(r.Node())
	if err != nil {
		return Schema{}, fmt.Errorf("encode schema %s: %w", r.ID(), err)
	}
	return Schema{
		ID:          r.ID(),
		Title:       r.Title(),
		Description: r.Description(),
		Tags:        r.Tags(),
		Document:    doc,
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}, nil
}

func fromInternalView(v cataloguc.View) DatabaseView {
	if v.Status != cataloguc.LoadSuccess {
		return DatabaseView{}
	}
	out := DatabaseView{
		Found:     true,
		Database:  fromInternalDatabase(v.Database),
		Contents:  make([]Content, len(v.Contents)),
		Schemas:   make([]Schema, 0, len(v.Schemas)),
		Permitted: v.Permitted,
	}
	for i, c := range v.Contents {
		out.Contents[i] = fromInternalContent(c)
	}
	for _, r := range v.Schemas {
		// Unencodable schemas are left out of the view.
		if s, err := fromInternalSchema(r); err == nil {
			out.Schemas = append(out.Schemas, s)
		}
	}
	return out
}

func fromInternalListing(l workspace.Listing) Listing {
	return Listing{
		Path:        l.Path,
		Directories: fromInternalEntries(l.Directories),
		Files:       fromInternalEntries(l.Files),
	}
}

func fromInternalEntries(entries []workspace.Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Name: e.Name, Path: e.Path, Size: e.Size, ModTime: e.ModTime}
	}
	return out
}

func toDerivation(res inferenceuc.Result) (Derivation, error) {
	doc, err := json.Marshal(res.Schema)
	if err != nil {
		return Derivation{}, fmt.Errorf("encode schema: %w", err)
	}
	return Derivation{Schema: doc, HasUnknown: res.HasUnknown}, nil
}
