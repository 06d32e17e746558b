// Package catalog is the single source of truth for the operations this
// server exposes. The catalogue is built once at process start and never
// mutated; descriptors are effectively constant configuration.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// ToolDescriptor describes one invocable operation: its unique name, a
// human description, and the JSON-schema contract for its parameters.
type ToolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`

	// ReadOnly reports whether the operation mutates upstream state.
	ReadOnly bool `json:"-"`
}

// ToolDoesNotExistError reports a lookup for a name outside the catalogue.
type ToolDoesNotExistError struct {
	Name string
}

func (e *ToolDoesNotExistError) Error() string {
	return fmt.Sprintf("tool %s does not exist", e.Name)
}

func NewToolDoesNotExistError(name string) *ToolDoesNotExistError {
	return &ToolDoesNotExistError{Name: name}
}

// Catalog is an immutable, ordered collection of tool descriptors.
type Catalog struct {
	ordered []ToolDescriptor
	byName  map[string]ToolDescriptor
}

// New builds the full static catalogue. Order is stable across calls and
// across processes.
func New() *Catalog {
	tools := defaultTools()
	byName := make(map[string]ToolDescriptor, len(tools))
	for _, tool := range tools {
		if _, dup := byName[tool.Name]; dup {
			panic(fmt.Sprintf("duplicate tool name in catalogue: %s", tool.Name))
		}
		byName[tool.Name] = tool
	}
	return &Catalog{ordered: tools, byName: byName}
}

// Tools returns every descriptor in catalogue order.
func (c *Catalog) Tools() []ToolDescriptor {
	out := make([]ToolDescriptor, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Get returns the descriptor for name.
func (c *Catalog) Get(name string) (ToolDescriptor, error) {
	tool, ok := c.byName[name]
	if !ok {
		return ToolDescriptor{}, NewToolDoesNotExistError(name)
	}
	return tool, nil
}

// Schema construction helpers. Descriptors read better as data than as
// nested literals.

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func stringSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func enumSchema(desc string, values ...string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return &jsonschema.Schema{Type: "string", Description: desc, Enum: enum}
}

func withDefault(s *jsonschema.Schema, def any) *jsonschema.Schema {
	raw, err := json.Marshal(def)
	if err != nil {
		panic(fmt.Sprintf("unmarshalable schema default: %v", err))
	}
	s.Default = json.RawMessage(raw)
	return s
}

func intSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func boundedIntSchema(desc string, min, max float64) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: desc,
		Minimum:     &min,
		Maximum:     &max,
	}
}

func boolSchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: desc}
}

func stringArraySchema(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: desc,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}
