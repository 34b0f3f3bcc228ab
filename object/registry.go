package object

import "sync"

// The module registry is the import mechanism consulted by reference
// extraction: IMPORT_NAME resolves against it by dotted name. It is the one
// piece of process-wide state shared across concurrent extractions, and it
// is safe for concurrent reads.
var registry = struct {
	mu      sync.RWMutex
	modules map[string]*Module
}{
	modules: make(map[string]*Module),
}

// RegisterModule makes a module importable by its dotted name. Registering
// a module with an existing name replaces the previous registration.
func RegisterModule(m *Module) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.modules[m.Name()] = m
}

// LookupModule resolves a module by dotted name.
func LookupModule(name string) (*Module, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	m, found := registry.modules[name]
	return m, found
}

// UnregisterModule removes a module registration. Intended for tests.
func UnregisterModule(name string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.modules, name)
}
