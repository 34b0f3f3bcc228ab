package object

import (
	"context"
	"fmt"
)

// BuiltinFunction is the signature for Go-native functions exposed to the
// pipeline layer.
type BuiltinFunction func(ctx context.Context, args ...any) (any, error)

// Builtin wraps a Go-native function with a name. Unlike a Closure, a
// builtin has no code object, so it is versioned by name and an explicit
// version tag rather than by code fingerprinting.
type Builtin struct {
	name string
	fn   BuiltinFunction
}

// NewBuiltin creates a named builtin.
func NewBuiltin(name string, fn BuiltinFunction) *Builtin {
	return &Builtin{name: name, fn: fn}
}

// Name returns the builtin's name.
func (b *Builtin) Name() string {
	return b.name
}

// Call invokes the underlying Go function.
func (b *Builtin) Call(ctx context.Context, args ...any) (any, error) {
	return b.fn(ctx, args...)
}

func (b *Builtin) Type() Type {
	return BUILTIN
}

func (b *Builtin) GetAttr(name string) (any, bool) {
	if name == "__name__" {
		return b.name, true
	}
	return nil, false
}

func (b *Builtin) String() string {
	return fmt.Sprintf("builtin(%s)", b.name)
}
