package database

import (
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	domdb "github.com/kailas-cloud/lowcms/internal/domain/database"
)

// configToHash converts a domain Config to a map for HSET.
func configToHash(cfg domdb.Config) map[string]string {
	tags := cfg.Tags()
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags) // []string always marshals
	return map[string]string{
		"id":             cfg.ID(),
		"name":           cfg.Name(),
		"description":    cfg.Description(),
		"tags_json":      string(tagsJSON),
		"storage_option": string(cfg.StorageOption()),
		"directory":      cfg.Directory(),
		"created_at":     strconv.FormatInt(cfg.CreatedAt().UnixMilli(), 10),
		"updated_at":     strconv.FormatInt(cfg.UpdatedAt().UnixMilli(), 10),
	}
}

// configFromHash hydrates a domain Config from an HGETALL result map.
func configFromHash(m map[string]string) (domdb.Config, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domdb.Config{}, fmt.Errorf("invalid created_at: %w", err)
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
			return domdb.Config{}, fmt.Errorf("unmarshal tags: %w", err)
		}
	}

	return domdb.Reconstruct(
		m["id"], m["name"], m["description"], tags,
		domdb.StorageOption(m["storage_option"]), m["directory"],
		time.UnixMilli(createdAt).UTC(), time.UnixMilli(updatedAt).UTC(),
	), nil
}
