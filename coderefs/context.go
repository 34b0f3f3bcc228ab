// Package coderefs finds the external references of a compiled closure:
// globals, captured closure variables, imported modules, qualified
// attribute chains, and locally rebound names. The versioning hash for
// cache invalidation is computed over these references, so extraction must
// be complete or fail loudly: an under-extracted reference list would
// produce stale cache hits.
//
// BuildContext packages the closure's accessible-by-name environment and
// Walk simulates the instruction stream against it.
package coderefs

import (
	"fmt"

	"github.com/HiveWang/bionic/errors"
	"github.com/HiveWang/bionic/object"
)

// Context holds the environment needed to interpret symbolic loads while
// walking a closure's instructions.
//
// Globals aliases the closure's defining-module namespace and is never
// mutated here. Cells tracks all captured variables by name: variables
// exposed to nested closures map to their own name (their contents are not
// resolvable until the nested closure is traced separately), while
// variables captured from an enclosing scope map to the captured value.
// Varnames tracks local variable bindings discovered during one walk and is
// mutated only by Walk.
type Context struct {
	Globals  map[string]any
	Cells    map[string]Reference
	Varnames map[string]Reference

	// Carried for error enrichment.
	Filename string
	Function string
}

// BuildContext extracts the accessible-by-name environment of a closure.
// A closure whose free variable names do not pair one-to-one with its
// captured cells is malformed, and that inconsistency is a hard error.
func BuildContext(fn *object.Closure) (*Context, error) {
	code := fn.Code()

	cells := make(map[string]Reference, code.CellCount()+code.FreeCount())
	for i := 0; i < code.CellCount(); i++ {
		name := code.CellNameAt(i)
		cells[name] = Unresolved(name)
	}
	if code.FreeCount() != fn.FreeVarCount() {
		return nil, errors.NewCodeVersioningError(
			code.Filename(), 0, code.Name(),
			fmt.Errorf("free variable count %d does not match captured cell count %d",
				code.FreeCount(), fn.FreeVarCount()))
	}
	for i := 0; i < code.FreeCount(); i++ {
		cells[code.FreeNameAt(i)] = Resolved(fn.FreeVar(i).Value())
	}

	varnames := make(map[string]Reference)
	if fn.IsBound() {
		varnames["self"] = Resolved(fn.Receiver())
	}

	return &Context{
		Globals:  fn.Globals(),
		Cells:    cells,
		Varnames: varnames,
		Filename: code.Filename(),
		Function: code.Name(),
	}, nil
}
