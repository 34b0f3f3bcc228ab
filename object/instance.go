package object

import (
	"fmt"
	"sync"
)

// Instance is a mutable attribute bag, used for receivers and other
// attribute-bearing values that traced code may reference.
type Instance struct {
	mu    sync.RWMutex
	name  string
	attrs map[string]any
}

// NewInstance creates an instance with the given type name and initial
// attributes.
func NewInstance(name string, attrs map[string]any) *Instance {
	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return &Instance{name: name, attrs: copied}
}

// Name returns the instance's type name.
func (i *Instance) Name() string {
	return i.name
}

func (i *Instance) GetAttr(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	value, found := i.attrs[name]
	return value, found
}

// SetAttr sets an attribute on the instance.
func (i *Instance) SetAttr(name string, value any) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.attrs[name] = value
}

func (i *Instance) Type() Type {
	return INSTANCE
}

func (i *Instance) String() string {
	return fmt.Sprintf("instance(%s)", i.name)
}
