// Package object defines the runtime values that compiled code can
// reference: closures, builtins, modules, instances, and the cells used for
// closure variable capture. Primitive values (ints, strings, bools, floats)
// are represented as plain Go values rather than wrapper types.
package object

// Type identifies a category of runtime value.
type Type string

const (
	BUILTIN  Type = "builtin"
	CELL     Type = "cell"
	CLOSURE  Type = "closure"
	INSTANCE Type = "instance"
	MODULE   Type = "module"
)

// AttrGetter is implemented by values that expose attributes by name.
// Attribute resolution during reference extraction goes through this
// interface only, so a missing implementation means "no attributes" rather
// than an error.
type AttrGetter interface {
	GetAttr(name string) (any, bool)
}

// GetAttr resolves an attribute on an arbitrary value. It returns false both
// for values without attributes and for missing attribute names.
func GetAttr(value any, name string) (any, bool) {
	if getter, ok := value.(AttrGetter); ok {
		return getter.GetAttr(name)
	}
	return nil, false
}
