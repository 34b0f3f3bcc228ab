package object

import (
	"fmt"
	"sort"
)

// Module is a named, immutable attribute namespace.
type Module struct {
	name  string
	attrs map[string]any
}

// NewModule creates a module with the given dotted name and attributes.
// The attribute map is copied.
func NewModule(name string, attrs map[string]any) *Module {
	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Module{name: name, attrs: copied}
}

// Name returns the module's dotted name.
func (m *Module) Name() string {
	return m.name
}

// AttrNames returns the module's attribute names in sorted order.
func (m *Module) AttrNames() []string {
	names := make([]string, 0, len(m.attrs))
	for name := range m.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Module) GetAttr(name string) (any, bool) {
	if name == "__name__" {
		return m.name, true
	}
	value, found := m.attrs[name]
	return value, found
}

func (m *Module) Type() Type {
	return MODULE
}

func (m *Module) String() string {
	return fmt.Sprintf("module(%s)", m.name)
}
