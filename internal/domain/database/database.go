// Package database holds the database configuration aggregate: a named
// pointer at a workspace directory whose JSON files are managed as contents.
package database

import (
	"fmt"
	"strings"
	"time"
)

// StorageOption says where the database directory lives.
type StorageOption string

const (
	// StorageLocal is a directory under the server workspace.
	StorageLocal StorageOption = "local"
	// StorageBrowser is a directory owned by a browser client.
	StorageBrowser StorageOption = "browser"
)

// IsValid checks if the storage option is supported.
func (o StorageOption) IsValid() bool {
	return o == StorageLocal || o == StorageBrowser
}

// Config is the database configuration aggregate (immutable value object).
type Config struct {
	id            string
	name          string
	description   string
	tags          []string
	storageOption StorageOption
	directory     string
	createdAt     time.Time
	updatedAt     time.Time
}

// New validates and creates a Config stamped with now.
// Name is required, up to 128 chars. StorageOption defaults to local.
func New(
	id, name, description string, tags []string,
	storage StorageOption, directory string, now time.Time,
) (Config, error) {
	if id == "" {
		return Config{}, fmt.Errorf("database ID is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Config{}, fmt.Errorf("database name is required")
	}
	if len(name) > 128 {
		return Config{}, fmt.Errorf("database name too long (max 128)")
	}
	if storage == "" {
		storage = StorageLocal
	}
	if !storage.IsValid() {
		return Config{}, fmt.Errorf("invalid storage option: %q", storage)
	}
	if storage == StorageLocal && directory == "" {
		return Config{}, fmt.Errorf("directory is required for local storage")
	}

	return Config{
		id:            id,
		name:          name,
		description:   description,
		tags:          append([]string(nil), tags...),
		storageOption: storage,
		directory:     directory,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstruct creates a Config without validation (storage hydration).
func Reconstruct(
	id, name, description string, tags []string,
	storage StorageOption, directory string, createdAt, updatedAt time.Time,
) Config {
	return Config{
		id:            id,
		name:          name,
		description:   description,
		tags:          tags,
		storageOption: storage,
		directory:     directory,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the database identifier.
func (c Config) ID() string { return c.id }

// Name returns the display name.
func (c Config) Name() string { return c.name }

// Description returns the description.
func (c Config) Description() string { return c.description }

// Tags returns the tags.
func (c Config) Tags() []string { return c.tags }

// StorageOption returns where the directory lives.
func (c Config) StorageOption() StorageOption { return c.storageOption }

// Directory returns the workspace-relative directory.
func (c Config) Directory() string { return c.directory }

// CreatedAt returns the creation time.
func (c Config) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last update time.
func (c Config) UpdatedAt() time.Time { return c.updatedAt }
