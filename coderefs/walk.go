package coderefs

import (
	"fmt"

	"github.com/HiveWang/bionic/dis"
	"github.com/HiveWang/bionic/errors"
	"github.com/HiveWang/bionic/object"
	"github.com/HiveWang/bionic/op"
)

// walker simulates a single-register stack machine: tos is the one tracked
// stack slot, Varnames in the context is the side table, and refs is a
// monotonically growing log of consumed references.
type walker struct {
	ctx    *Context
	tos    Reference
	refs   []Reference
	lineno int
}

// Walk processes the decoded instruction stream of a closure and returns
// the references it reads, in consumption order, duplicates preserved.
// Any failure while processing an instruction is wrapped as a
// CodeVersioningError carrying the source file, the best-known line, and
// the function name.
func Walk(instructions []dis.Instruction, ctx *Context) ([]Reference, error) {
	w := &walker{ctx: ctx}
	for _, instr := range instructions {
		// Not every instruction carries a line; remember the last known
		// one so errors point users somewhat near the source.
		if instr.Line > 0 {
			w.lineno = instr.Line
		}
		if err := w.step(instr); err != nil {
			return nil, errors.NewCodeVersioningError(
				ctx.Filename, w.lineno, ctx.Function, err)
		}
	}
	// A value left in tos after the final instruction is dropped rather
	// than flushed. Compiled function bodies end with RETURN_VALUE, which
	// consumes tos via the default rule, so this only affects instruction
	// streams with a bare trailing load.
	return w.refs, nil
}

// Extract is the convenience composition of BuildContext, Disassemble, and
// Walk for a single closure.
func Extract(fn *object.Closure) ([]Reference, error) {
	ctx, err := BuildContext(fn)
	if err != nil {
		return nil, err
	}
	instructions, err := dis.Disassemble(fn.Code())
	if err != nil {
		return nil, errors.NewCodeVersioningError(
			ctx.Filename, 0, ctx.Function, err)
	}
	return Walk(instructions, ctx)
}

// commit retires the current tos into the reference log, if any, and
// replaces it with the given reference. Pushing a new value means whatever
// was on top has been read.
func (w *walker) commit(ref Reference) {
	if !w.tos.IsZero() {
		w.refs = append(w.refs, w.tos)
	}
	w.tos = ref
}

func (w *walker) step(instr dis.Instruction) error {
	switch instr.Opcode {
	case op.LoadGlobal:
		name, err := argName(instr)
		if err != nil {
			return err
		}
		if value, found := w.ctx.Globals[name]; found {
			w.commit(Resolved(value))
		} else {
			// Unknown global: reference it by name.
			w.commit(Unresolved(name))
		}

	case op.LoadFree, op.LoadClosure:
		name, err := argName(instr)
		if err != nil {
			return err
		}
		ref, found := w.ctx.Cells[name]
		if !found {
			return fmt.Errorf("closure cell missing for %q", name)
		}
		w.commit(ref)

	case op.ImportName:
		name, err := argName(instr)
		if err != nil {
			return err
		}
		if module, found := object.LookupModule(name); found {
			w.commit(Resolved(module))
		} else {
			w.commit(Unresolved(name))
		}

	case op.LoadAttr, op.LoadMethod, op.ImportFrom:
		name, err := argName(instr)
		if err != nil {
			return err
		}
		switch {
		case w.tos.IsZero():
			// Bare attribute with no tracked prefix.
			w.refs = append(w.refs, Unresolved(name))
		case !w.tos.IsResolved():
			// Extend the unresolved qualified-name chain.
			w.tos = Unresolved(w.tos.Name() + "." + name)
		default:
			value, found := object.GetAttr(w.tos.Value(), name)
			if !found {
				return fmt.Errorf("attribute %q not found on %s",
					name, describe(w.tos.Value()))
			}
			w.tos = Resolved(value)
		}

	case op.DeleteFast:
		if !w.tos.IsZero() {
			name, err := argName(instr)
			if err != nil {
				return err
			}
			// Deleting a local that was never stored means the pending
			// reference belongs to a pattern the walk does not understand.
			if _, found := w.ctx.Varnames[name]; !found {
				return fmt.Errorf("local %q deleted before being stored", name)
			}
			delete(w.ctx.Varnames, name)
			w.tos = Reference{}
		}

	case op.StoreFast:
		if !w.tos.IsZero() {
			name, err := argName(instr)
			if err != nil {
				return err
			}
			w.ctx.Varnames[name] = w.tos
			w.tos = Reference{}
		}

	case op.LoadFast:
		name, err := argName(instr)
		if err != nil {
			return err
		}
		// Untracked locals (typically parameters) are silently ignored.
		if ref, found := w.ctx.Varnames[name]; found {
			w.commit(ref)
		}

	default:
		// Conservative flush: any other instruction is assumed to consume
		// whatever is on top.
		if !w.tos.IsZero() {
			w.refs = append(w.refs, w.tos)
			w.tos = Reference{}
		}
	}
	return nil
}

func argName(instr dis.Instruction) (string, error) {
	name, ok := instr.Arg.(string)
	if !ok {
		return "", fmt.Errorf("malformed %s instruction: operand is %T, want name",
			instr.Name, instr.Arg)
	}
	return name, nil
}

func describe(value any) string {
	type named interface{ Name() string }
	if n, ok := value.(named); ok {
		return fmt.Sprintf("%T(%s)", value, n.Name())
	}
	return fmt.Sprintf("%T", value)
}
