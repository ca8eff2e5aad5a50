package content

import (
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	domcontent "github.com/kailas-cloud/lowcms/internal/domain/content"
)

// contentToHash converts a domain Content to a map for HSET.
func contentToHash(c domcontent.Content) map[string]string {
	tags := c.Tags()
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags) // []string always marshals
	return map[string]string{
		"id":          c.ID(),
		"name":        c.Name(),
		"description": c.Description(),
		"tags_json":   string(tagsJSON),
		"database_id": c.DatabaseID(),
		"schema_id":   c.SchemaID(),
		"type":        string(c.Type()),
		"file_path":   c.FilePath(),
		"file_type":   c.FileType(),
		"json_path":   c.JSONPath(),
		"content_in":  string(c.In()),
		"data_type":   string(c.DataType()),
		"created_at":  strconv.FormatInt(c.CreatedAt().UnixMilli(), 10),
		"updated_at":  strconv.FormatInt(c.UpdatedAt().UnixMilli(), 10),
	}
}

// contentFromHash hydrates a domain Content from an HGETALL result map.
func contentFromHash(m map[string]string) (domcontent.Content, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domcontent.Content{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt := createdAt
	if s := m["updated_at"]; s != "" {
		if parsed, err := strconv.ParseInt(s, 10, 64); err == nil {
			updatedAt = parsed
		}
	}

	var tags []string
	if s := m["tags_json"]; s != "" {
		if err := json.Unmarshal([]byte(s), &tags); err != nil {
			return domcontent.Content{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	in := domcontent.Location(m["content_in"])
	if in == "" {
		in = domcontent.InEntireFile
	}

	return domcontent.Reconstruct(domcontent.Params{
		ID:          m["id"],
		Name:        m["name"],
		Description: m["description"],
		Tags:        tags,
		DatabaseID:  m["database_id"],
		SchemaID:    m["schema_id"],
		Type:        domcontent.Type(m["type"]),
		FilePath:    m["file_path"],
		FileType:    m["file_type"],
		JSONPath:    m["json_path"],
		In:          in,
		DataType:    domcontent.DataType(m["data_type"]),
	}, time.UnixMilli(createdAt).UTC(), time.UnixMilli(updatedAt).UTC()), nil
}
