package schema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/kailas-cloud/lowcms/internal/domain/lowtype"
	"github.com/kailas-cloud/lowcms/internal/domain/value"
)

// TypeUnknown is the non-standard schema type for fields whose type could not
// be determined from the sample.
const TypeUnknown = "unknown"

// Node is a JSON Schema (draft 7) shaped node. Type-specific keywords are
// always present as nil slots so the shape stays stable across samples; the
// schema editor fills them in.
type Node struct {
	ID          string `json:"$id,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// string keywords
	MinLength *int    `json:"minLength,omitempty"`
	MaxLength *int    `json:"maxLength,omitempty"`
	Pattern   *string `json:"pattern,omitempty"`

	// number / integer keywords
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty"`

	Items      *Node       `json:"items,omitempty"`
	Properties *Properties `json:"properties,omitempty"`
}

// MarshalJSON encodes the node through a method-free copy of its type so
// nested items keep every enum value.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	return json.Marshal(plain(n))
}

// NewRoot returns the base schema every top-level derivation starts from.
func NewRoot() *Node {
	return &Node{Type: "object", Properties: NewProperties()}
}

// Shape returns "array-of-<item type>s" for array nodes (e.g. array-of-strings)
// and the node's own type otherwise. Filters use it to decide whether $in is
// offered for an array field.
func (n *Node) Shape() lowtype.Type {
	if n == nil {
		return lowtype.Unknown
	}
	if n.Type == "array" {
		if n.Items == nil {
			return lowtype.Array
		}
		return lowtype.Type("array-of-" + n.Items.Type + "s")
	}
	return lowtype.Type(n.Type)
}

var keywordTable = map[string][]string{
	"string":  {"enum", "minLength", "maxLength", "pattern"},
	"number":  numericKeywords,
	"integer": numericKeywords,
	"array":   {"items"},
}

var numericKeywords = []string{"multipleOf", "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum"}

// KeywordsFor lists the editable keywords of a JSON Schema type.
func KeywordsFor(jsonType string) []string {
	kw := keywordTable[jsonType]
	out := make([]string, len(kw))
	copy(out, kw)
	return out
}

// Properties is an ordered mapping of field name to schema node. Order is the
// first-seen field order of the sample.
type Properties struct {
	names []string
	nodes map[string]*Node
}

// NewProperties creates an empty property set.
func NewProperties() *Properties {
	return &Properties{nodes: make(map[string]*Node)}
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}

// Names returns property names in order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Get returns the node for name.
func (p *Properties) Get(name string) (*Node, bool) {
	if p == nil {
		return nil, false
	}
	n, ok := p.nodes[name]
	return n, ok
}

// Set stores n under name, keeping the original position of an existing name.
func (p *Properties) Set(name string, n *Node) {
	if p.nodes == nil {
		p.nodes = make(map[string]*Node)
	}
	if _, ok := p.nodes[name]; !ok {
		p.names = append(p.names, name)
	}
	p.nodes[name] = n
}

// MarshalJSON encodes properties in order.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		nb, err := json.Marshal(p.nodes[name])
		if err != nil {
			return nil, fmt.Errorf("marshal property %q: %w", name, err)
		}
		buf.Write(nb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes properties keeping document order.
func (p *Properties) UnmarshalJSON(data []byte) error {
	var obj value.Object
	if err := obj.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode properties: %w", err)
	}
	out := NewProperties()
	for _, name := range obj.Keys() {
		raw, _ := obj.Get(name)
		b, err := value.Marshal(raw)
		if err != nil {
			return err
		}
		var n Node
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("decode property %q: %w", name, err)
		}
		out.Set(name, &n)
	}
	*p = *out
	return nil
}
