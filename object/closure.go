package object

import (
	"fmt"

	"github.com/HiveWang/bionic/bytecode"
)

// Closure is a function instance: an immutable bytecode.Function template
// together with the globals of its defining module, any variables captured
// from enclosing scopes, and an optional bound receiver.
type Closure struct {
	fn       *bytecode.Function
	globals  map[string]any
	freeVars []*Cell
	receiver any
}

// NewClosure creates a closure over the given function template and module
// globals. The globals map is referenced, not copied: the closure sees the
// defining module's namespace as it currently is.
func NewClosure(fn *bytecode.Function, globals map[string]any) *Closure {
	return &Closure{fn: fn, globals: globals}
}

// CloneWithCaptures creates a new closure from an existing closure with
// captured variables. The cells must parallel the code's free variable
// names.
func CloneWithCaptures(c *Closure, freeVars []*Cell) *Closure {
	return &Closure{
		fn:       c.fn,
		globals:  c.globals,
		freeVars: freeVars,
		receiver: c.receiver,
	}
}

// Bind returns a copy of the closure bound to a receiver, making it a
// method. The receiver becomes accessible as the local variable "self".
func (c *Closure) Bind(receiver any) *Closure {
	return &Closure{
		fn:       c.fn,
		globals:  c.globals,
		freeVars: c.freeVars,
		receiver: receiver,
	}
}

// Name returns the function name (delegates to bytecode.Function).
func (c *Closure) Name() string {
	return c.fn.Name()
}

// Code returns the bytecode for this function's body.
func (c *Closure) Code() *bytecode.Code {
	return c.fn.Code()
}

// Function returns the underlying immutable function template.
func (c *Closure) Function() *bytecode.Function {
	return c.fn
}

// Globals returns the defining module's global namespace.
func (c *Closure) Globals() map[string]any {
	return c.globals
}

// FreeVarCount returns the number of captured variables.
func (c *Closure) FreeVarCount() int {
	return len(c.freeVars)
}

// FreeVar returns the captured variable at the given index.
func (c *Closure) FreeVar(index int) *Cell {
	return c.freeVars[index]
}

// IsBound reports whether the closure is bound to a receiver.
func (c *Closure) IsBound() bool {
	return c.receiver != nil
}

// Receiver returns the bound receiver, or nil.
func (c *Closure) Receiver() any {
	return c.receiver
}

func (c *Closure) Type() Type {
	return CLOSURE
}

func (c *Closure) GetAttr(name string) (any, bool) {
	if name == "__name__" {
		return c.fn.Name(), true
	}
	return nil, false
}

func (c *Closure) String() string {
	if c.fn.Name() != "" {
		return fmt.Sprintf("func %s() { ... }", c.fn.Name())
	}
	return "func() { ... }"
}
