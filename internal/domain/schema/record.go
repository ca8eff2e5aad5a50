package schema

import (
	"fmt"
	"time"
)

// Record is a stored schema. Schemas are not bound to a database; the title
// lives in the schema document itself.
type Record struct {
	id          string
	description string
	tags        []string
	node        *Node
	createdAt   time.Time
	updatedAt   time.Time
}

// NewRecord validates and creates a Record stamped with now.
func NewRecord(id, description string, tags []string, node *Node, now time.Time) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("schema ID is required")
	}
	if node == nil {
		return Record{}, fmt.Errorf("schema document is required")
	}
	if node.Type != "object" && node.Type != "array" {
		return Record{}, fmt.Errorf("schema root type must be object or array, got %q", node.Type)
	}
	return Record{
		id:          id,
		description: description,
		tags:        append([]string(nil), tags...),
		node:        node,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructRecord creates a Record without validation (storage hydration).
func ReconstructRecord(id, description string, tags []string, node *Node, createdAt, updatedAt time.Time) Record {
	return Record{
		id: id, description: description, tags: tags, node: node,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the schema identifier.
func (r Record) ID() string { return r.id }

// Title returns the schema title.
func (r Record) Title() string {
	if r.node == nil {
		return ""
	}
	return r.node.Title
}

// Description returns the schema description.
func (r Record) Description() string { return r.description }

// Tags returns the schema tags.
func (r Record) Tags() []string { return r.tags }

// Node returns the schema document.
func (r Record) Node() *Node { return r.node }

// CreatedAt returns the creation time.
func (r Record) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last update time.
func (r Record) UpdatedAt() time.Time { return r.updatedAt }

// WithNode returns a copy carrying node and touched at now.
func (r Record) WithNode(node *Node, description string, tags []string, now time.Time) Record {
	return Record{
		id: r.id, description: description, tags: append([]string(nil), tags...), node: node,
		createdAt: r.createdAt, updatedAt: now,
	}
}

// OrderBy names the timestamp schemas are listed by.
type OrderBy string

const (
	// OrderByUpdatedAt lists by last update.
	OrderByUpdatedAt OrderBy = "updatedAt"
	// OrderByCreatedAt lists by creation.
	OrderByCreatedAt OrderBy = "createdAt"
)

// Order is the listing direction.
type Order string

const (
	// OrderDesc lists newest first.
	OrderDesc Order = "desc"
	// OrderAsc lists oldest first.
	OrderAsc Order = "asc"
)

// ListOptions pages through stored schemas.
type ListOptions struct {
	Page    int
	Limit   int
	OrderBy OrderBy
	Order   Order
}

// WithDefaults fills zero fields: page 1, limit 10, updatedAt desc.
func (o ListOptions) WithDefaults() ListOptions {
	if o.Page == 0 {
		o.Page = 1
	}
	if o.Limit == 0 {
		o.Limit = 10
	}
	if o.OrderBy == "" {
		o.OrderBy = OrderByUpdatedAt
	}
	if o.Order == "" {
		o.Order = OrderDesc
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o ListOptions) Validate() error {
	if o.Page < 1 {
		return fmt.Errorf("page must be >= 1")
	}
	if o.Limit < 1 {
		return fmt.Errorf("limit must be >= 1")
	}
	if o.OrderBy != OrderByUpdatedAt && o.OrderBy != OrderByCreatedAt {
		return fmt.Errorf("invalid orderBy: %q", o.OrderBy)
	}
	if o.Order != OrderDesc && o.Order != OrderAsc {
		return fmt.Errorf("invalid order: %q", o.Order)
	}
	return nil
}

// Offset returns the number of records skipped before the page.
func (o ListOptions) Offset() int { return (o.Page - 1) * o.Limit }
