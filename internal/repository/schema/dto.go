package schema

import (
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	domschema "github.com/kailas-cloud/lowcms/internal/domain/schema"
)

// recordToHash converts a schema Record to a map for HSET. The title is
// kept next to the document so listings can be read without decoding it.
func recordToHash(rec domschema.Record) (map[string]string, error) {
	nodeJSON, err := json.Marshal(rec.Node())
	if err != nil {
		return nil, fmt.Errorf("marshal schema document: %w", err)
	}
	tags := rec.Tags()
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return map[string]string{
		"id":          rec.ID(),
		"title":       rec.Title(),
		"description": rec.Description(),
		"tags_json":   string(tagsJSON),
		"schema_json": string(nodeJSON),
		"created_at":  strconv.FormatInt(rec.CreatedAt().UnixMilli(), 10),
		"updated_at":  strconv.FormatInt(rec.UpdatedAt().UnixMilli(), 10),
	}, nil
}

// recordFromHash hydrates a schema Record from an HGETALL result map.
func recordFromHash(m map[string]string) (domschema.Record, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domschema.Record{}, fmt.Errorf("invalid created_at: %w", err)
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
			return domschema.Record{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	node := &domschema.Node{}
	if err := json.Unmarshal([]byte(m["schema_json"]), node); err != nil {
		return domschema.Record{}, fmt.Errorf("unmarshal schema document: %w", err)
	}

	return domschema.ReconstructRecord(
		m["id"], m["description"], tags, node,
		time.UnixMilli(createdAt).UTC(), time.UnixMilli(updatedAt).UTC(),
	), nil
}
