package bytecode

import (
	"github.com/HiveWang/bionic/op"
)

// Assembler builds Code and Function objects programmatically. It maintains
// the constant, name, and variable tables that a compiler front-end would
// normally populate, interning entries as instructions reference them.
//
// The zero Assembler is not usable; create one with NewAssembler.
type Assembler struct {
	name       string
	filename   string
	source     string
	parameters []string

	instructions []op.Code
	constants    []any
	names        []string
	globalNames  []string
	localNames   []string
	freeNames    []string
	cellNames    []string
	locations    []SourceLocation

	current SourceLocation
}

// NewAssembler creates an Assembler for a function body with the given name.
func NewAssembler(name string) *Assembler {
	return &Assembler{name: name}
}

// SetFilename records the source file name for the assembled code.
func (a *Assembler) SetFilename(filename string) *Assembler {
	a.filename = filename
	return a
}

// SetSource records the source text for the assembled code.
func (a *Assembler) SetSource(source string) *Assembler {
	a.source = source
	return a
}

// Params declares the function parameters. Parameters are also local
// variables, so they are added to the local name table.
func (a *Assembler) Params(names ...string) *Assembler {
	for _, name := range names {
		a.parameters = append(a.parameters, name)
		a.local(name)
	}
	return a
}

// FreeVars declares variables captured from an enclosing scope.
func (a *Assembler) FreeVars(names ...string) *Assembler {
	for _, name := range names {
		a.free(name)
	}
	return a
}

// CellVars declares variables exposed to nested closures.
func (a *Assembler) CellVars(names ...string) *Assembler {
	for _, name := range names {
		a.cell(name)
	}
	return a
}

// At sets the source location recorded for subsequently emitted instructions.
func (a *Assembler) At(line, column int) *Assembler {
	a.current = SourceLocation{Line: line, Column: column}
	return a
}

// Emit appends a raw instruction with the given operands.
func (a *Assembler) Emit(code op.Code, operands ...op.Code) *Assembler {
	a.instructions = append(a.instructions, code)
	a.locations = append(a.locations, a.current)
	for _, operand := range operands {
		a.instructions = append(a.instructions, operand)
		a.locations = append(a.locations, a.current)
	}
	return a
}

// LoadConst pushes a constant value.
func (a *Assembler) LoadConst(value any) *Assembler {
	return a.Emit(op.LoadConst, a.constant(value))
}

// LoadGlobal loads a module-level variable by name.
func (a *Assembler) LoadGlobal(name string) *Assembler {
	return a.Emit(op.LoadGlobal, a.global(name))
}

// StoreGlobal stores the top of stack into a module-level variable.
func (a *Assembler) StoreGlobal(name string) *Assembler {
	return a.Emit(op.StoreGlobal, a.global(name))
}

// LoadFast loads a local variable by name.
func (a *Assembler) LoadFast(name string) *Assembler {
	return a.Emit(op.LoadFast, a.local(name))
}

// StoreFast stores the top of stack into a local variable.
func (a *Assembler) StoreFast(name string) *Assembler {
	return a.Emit(op.StoreFast, a.local(name))
}

// DeleteFast removes a local variable binding.
func (a *Assembler) DeleteFast(name string) *Assembler {
	return a.Emit(op.DeleteFast, a.local(name))
}

// LoadFree loads the value of a variable captured from an enclosing scope.
func (a *Assembler) LoadFree(name string) *Assembler {
	return a.Emit(op.LoadFree, a.free(name))
}

// LoadClosure loads the cell for a captured variable, for constructing a
// nested closure. The operand indexes cell variables first, then free
// variables, matching the decoder's resolution order.
func (a *Assembler) LoadClosure(name string) *Assembler {
	for i, cell := range a.cellNames {
		if cell == name {
			return a.Emit(op.LoadClosure, op.Code(i))
		}
	}
	for i, freeVar := range a.freeNames {
		if freeVar == name {
			return a.Emit(op.LoadClosure, op.Code(len(a.cellNames)+i))
		}
	}
	index := a.cell(name)
	return a.Emit(op.LoadClosure, index)
}

// LoadAttr reads an attribute from the top of stack.
func (a *Assembler) LoadAttr(name string) *Assembler {
	return a.Emit(op.LoadAttr, a.nameIndex(name))
}

// LoadMethod reads a method attribute from the top of stack.
func (a *Assembler) LoadMethod(name string) *Assembler {
	return a.Emit(op.LoadMethod, a.nameIndex(name))
}

// StoreAttr stores the top of stack into an attribute.
func (a *Assembler) StoreAttr(name string) *Assembler {
	return a.Emit(op.StoreAttr, a.nameIndex(name))
}

// ImportName imports a module by its dotted name.
func (a *Assembler) ImportName(name string) *Assembler {
	return a.Emit(op.ImportName, a.nameIndex(name))
}

// ImportFrom reads a named export from the module on the top of stack.
func (a *Assembler) ImportFrom(name string) *Assembler {
	return a.Emit(op.ImportFrom, a.nameIndex(name))
}

// MakeFunction creates a closure from the given function template, which is
// stored in the constant table.
func (a *Assembler) MakeFunction(fn *Function) *Assembler {
	return a.Emit(op.MakeFunction, a.constant(fn))
}

// Call invokes the callable below the arguments on the stack.
func (a *Assembler) Call(argc int) *Assembler {
	return a.Emit(op.Call, op.Code(argc))
}

// BinaryOp applies a binary operation to the top two stack values.
func (a *Assembler) BinaryOp(opType op.BinaryOpType) *Assembler {
	return a.Emit(op.BinaryOp, op.Code(opType))
}

// CompareOp applies a comparison to the top two stack values.
func (a *Assembler) CompareOp(opType op.CompareOpType) *Assembler {
	return a.Emit(op.CompareOp, op.Code(opType))
}

// PopTop discards the top of stack.
func (a *Assembler) PopTop() *Assembler {
	return a.Emit(op.PopTop)
}

// ReturnValue returns the top of stack to the caller.
func (a *Assembler) ReturnValue() *Assembler {
	return a.Emit(op.ReturnValue)
}

// Nil pushes the nil constant.
func (a *Assembler) Nil() *Assembler {
	return a.Emit(op.Nil)
}

// Code builds the immutable Code object for the assembled instructions.
func (a *Assembler) Code() *Code {
	return NewCode(CodeParams{
		Name:         a.name,
		Filename:     a.filename,
		Source:       a.source,
		Instructions: a.instructions,
		Constants:    a.constants,
		Names:        a.names,
		GlobalNames:  a.globalNames,
		LocalNames:   a.localNames,
		FreeNames:    a.freeNames,
		CellNames:    a.cellNames,
		Locations:    a.locations,
	})
}

// Function builds an immutable Function wrapping the assembled code.
func (a *Assembler) Function() *Function {
	return NewFunction(FunctionParams{
		Name:       a.name,
		Parameters: a.parameters,
		Code:       a.Code(),
	})
}

func (a *Assembler) constant(value any) op.Code {
	a.constants = append(a.constants, value)
	return op.Code(len(a.constants) - 1)
}

func (a *Assembler) nameIndex(name string) op.Code {
	return intern(&a.names, name)
}

func (a *Assembler) global(name string) op.Code {
	return intern(&a.globalNames, name)
}

func (a *Assembler) local(name string) op.Code {
	return intern(&a.localNames, name)
}

func (a *Assembler) free(name string) op.Code {
	return intern(&a.freeNames, name)
}

func (a *Assembler) cell(name string) op.Code {
	return intern(&a.cellNames, name)
}

func intern(table *[]string, name string) op.Code {
	for i, existing := range *table {
		if existing == name {
			return op.Code(i)
		}
	}
	*table = append(*table, name)
	return op.Code(len(*table) - 1)
}
