// Package flow wires entities into a dependency graph and computes them
// with memoization: every entity's value is cached under a provenance
// fingerprint derived from its function's code (via codehash), its declared
// version tag, and the provenance of its dependencies, so unchanged
// computations are skipped on re-runs and stale values are never reused.
package flow

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/HiveWang/bionic/codehash"
	"github.com/HiveWang/bionic/object"
	"github.com/HiveWang/bionic/store"
)

// Evaluator executes a closure entity. Execution is injected: this package
// never interprets bytecode itself.
type Evaluator interface {
	Call(ctx context.Context, fn *object.Closure, args []any) (any, error)
}

type entity struct {
	name    string
	deps    []string
	closure *object.Closure
	builtin *object.Builtin
	value   any
	isValue bool
	version string
	persist bool
}

// EntityOption configures a derived entity.
type EntityOption func(*entity)

// WithVersion declares an explicit version tag for the entity function.
// Change the tag when the function's behavior changes in ways the code
// fingerprint cannot see (external data sources, native dependencies).
func WithVersion(tag string) EntityOption {
	return func(e *entity) {
		e.version = tag
	}
}

// WithPersist controls whether computed values are persisted to the
// artifact store. Defaults to true.
func WithPersist(enabled bool) EntityOption {
	return func(e *entity) {
		e.persist = enabled
	}
}

// WithDeps declares the entity's dependencies by name, overriding the
// default (the function's parameter names).
func WithDeps(names ...string) EntityOption {
	return func(e *entity) {
		e.deps = names
	}
}

// WithOutput renames the entity, using the given name instead of the
// function's own name.
func WithOutput(name string) EntityOption {
	return func(e *entity) {
		e.name = name
	}
}

// Builder accumulates entity definitions for a Flow.
type Builder struct {
	entities map[string]*entity
	store    store.Store
	eval     Evaluator
	log      zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithStore sets the artifact store used for persistent memoization.
func WithStore(s store.Store) BuilderOption {
	return func(b *Builder) {
		b.store = s
	}
}

// WithEvaluator sets the evaluator used to execute closure entities.
func WithEvaluator(e Evaluator) BuilderOption {
	return func(b *Builder) {
		b.eval = e
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		entities: make(map[string]*entity),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Assign defines a fixed-value entity.
func (b *Builder) Assign(name string, value any) {
	b.entities[name] = &entity{
		name:    name,
		value:   value,
		isValue: true,
		persist: true,
	}
}

// Derive defines a computed entity backed by a closure or a builtin.
// Closure entities default their dependencies to the function's parameter
// names; builtin entities declare dependencies with WithDeps.
func (b *Builder) Derive(name string, fn any, opts ...EntityOption) error {
	e := &entity{name: name, persist: true}
	switch fn := fn.(type) {
	case *object.Closure:
		e.closure = fn
		e.deps = fn.Function().Parameters()
	case *object.Builtin:
		e.builtin = fn
	default:
		return fmt.Errorf("flow: entity %q must be a closure or builtin, got %T", name, fn)
	}
	for _, opt := range opts {
		opt(e)
	}
	b.entities[e.name] = e
	return nil
}

// Build validates the dependency graph and returns a Flow.
func (b *Builder) Build() (*Flow, error) {
	for _, e := range b.entities {
		for _, dep := range e.deps {
			if _, found := b.entities[dep]; !found {
				return nil, fmt.Errorf("flow: entity %q depends on undefined entity %q",
					e.name, dep)
			}
		}
	}
	entities := make(map[string]*entity, len(b.entities))
	for name, e := range b.entities {
		entities[name] = e
	}
	return &Flow{
		entities:    entities,
		store:       b.store,
		eval:        b.eval,
		log:         b.log,
		results:     make(map[string]any),
		provenances: make(map[string]string),
	}, nil
}

// Flow computes entities on demand, memoizing in memory for its own
// lifetime and through the artifact store across lifetimes.
type Flow struct {
	entities map[string]*entity
	store    store.Store
	eval     Evaluator
	log      zerolog.Logger

	mu          sync.Mutex
	results     map[string]any
	provenances map[string]string
}

// Cache returns the artifact store backing this flow, or nil.
func (f *Flow) Cache() store.Store {
	return f.store
}

// Get computes (or recalls) the named entity's value.
func (f *Flow) Get(ctx context.Context, name string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, _, err := f.resolve(ctx, name, make(map[string]bool))
	return value, err
}

func (f *Flow) resolve(ctx context.Context, name string, visiting map[string]bool) (any, string, error) {
	if value, done := f.results[name]; done {
		return value, f.provenances[name], nil
	}
	e, found := f.entities[name]
	if !found {
		return nil, "", fmt.Errorf("flow: unknown entity %q", name)
	}
	if visiting[name] {
		return nil, "", fmt.Errorf("flow: dependency cycle detected at %q", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	args := make([]any, len(e.deps))
	parts := make([]string, 0, len(e.deps)+1)
	fingerprint, err := f.fingerprint(e)
	if err != nil {
		return nil, "", err
	}
	parts = append(parts, fingerprint)
	for i, dep := range e.deps {
		value, provenance, err := f.resolve(ctx, dep, visiting)
		if err != nil {
			return nil, "", err
		}
		args[i] = value
		parts = append(parts, provenance)
	}
	provenance := codehash.Combine(parts...)

	if e.persist && f.store != nil {
		artifact, err := f.store.Get(ctx, provenance)
		if err == nil {
			var value any
			if err := store.DecodeValue(artifact.Value, &value); err != nil {
				return nil, "", err
			}
			f.log.Debug().
				Str("entity", name).
				Str("provenance", provenance).
				Msg("cache hit")
			f.memoize(name, provenance, value)
			return value, provenance, nil
		}
		if !stderrors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
	}

	value, err := f.compute(ctx, e, args)
	if err != nil {
		return nil, "", err
	}
	f.log.Debug().
		Str("entity", name).
		Str("provenance", provenance).
		Msg("computed")

	if e.persist && f.store != nil {
		artifact, err := store.NewArtifact(name, provenance, value)
		if err != nil {
			return nil, "", err
		}
		if err := f.store.Put(ctx, artifact); err != nil {
			return nil, "", err
		}
	}
	f.memoize(name, provenance, value)
	return value, provenance, nil
}

func (f *Flow) memoize(name, provenance string, value any) {
	f.results[name] = value
	f.provenances[name] = provenance
}

func (f *Flow) fingerprint(e *entity) (string, error) {
	switch {
	case e.isValue:
		return codehash.FingerprintValue(e.value)
	case e.closure != nil:
		return codehash.Fingerprint(e.closure, codehash.WithVersion(e.version))
	default:
		return codehash.FingerprintBuiltin(e.builtin.Name(), e.version), nil
	}
}

func (f *Flow) compute(ctx context.Context, e *entity, args []any) (any, error) {
	switch {
	case e.isValue:
		return e.value, nil
	case e.builtin != nil:
		return e.builtin.Call(ctx, args...)
	default:
		if f.eval == nil {
			return nil, fmt.Errorf("flow: entity %q is a closure but no evaluator is configured",
				e.name)
		}
		return f.eval.Call(ctx, e.closure, args)
	}
}
