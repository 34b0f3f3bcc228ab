package coderefs

import "fmt"

type refKind int

const (
	refEmpty refKind = iota
	refResolved
	refUnresolved
)

// Reference is one entry in the extraction output: either a resolved value
// (closure, module, builtin, primitive) or, when resolution is impossible
// without invoking code, the bare symbol name. The two cases are explicit
// so that attribute-chain handling is exhaustive rather than relying on a
// runtime type check.
type Reference struct {
	kind  refKind
	value any
	name  string
}

// Resolved creates a reference to an actual value.
func Resolved(value any) Reference {
	return Reference{kind: refResolved, value: value}
}

// Unresolved creates a name-only reference, used when the value cannot be
// determined statically. The name may be dotted ("a.b.c") when an attribute
// chain is built on an unresolved base.
func Unresolved(name string) Reference {
	return Reference{kind: refUnresolved, name: name}
}

// IsZero reports whether the reference is empty. The zero Reference models
// "nothing on the stack".
func (r Reference) IsZero() bool {
	return r.kind == refEmpty
}

// IsResolved reports whether the reference holds an actual value.
func (r Reference) IsResolved() bool {
	return r.kind == refResolved
}

// Value returns the resolved value, or nil for unresolved or empty
// references.
func (r Reference) Value() any {
	return r.value
}

// Name returns the symbol name for an unresolved reference, or empty.
func (r Reference) Name() string {
	return r.name
}

// Interface returns the resolved value for resolved references and the
// symbol name for unresolved ones. Convenient for comparing extraction
// results against expected plain values.
func (r Reference) Interface() any {
	if r.kind == refResolved {
		return r.value
	}
	if r.kind == refUnresolved {
		return r.name
	}
	return nil
}

func (r Reference) String() string {
	switch r.kind {
	case refResolved:
		return fmt.Sprintf("ref(%v)", r.value)
	case refUnresolved:
		return fmt.Sprintf("ref(name=%s)", r.name)
	default:
		return "ref()"
	}
}

// Values flattens references via Interface, preserving order and
// duplicates.
func Values(refs []Reference) []any {
	values := make([]any, len(refs))
	for i, r := range refs {
		values[i] = r.Interface()
	}
	return values
}
