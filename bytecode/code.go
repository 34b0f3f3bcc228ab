package bytecode

import (
	"github.com/HiveWang/bionic/op"
)

// Code represents a compiled code block (a function body). It is immutable
// after creation and safe for concurrent use.
type Code struct {
	name     string
	filename string
	source   string

	instructions []op.Code
	constants    []any

	// Name tables. Attribute and import names live in names; the remaining
	// tables map operand indices to variable names by scope.
	names       []string
	globalNames []string
	localNames  []string
	freeNames   []string
	cellNames   []string

	// Source map: one location per instruction word, for error reporting.
	locations []SourceLocation
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Name         string
	Filename     string
	Source       string
	Instructions []op.Code
	Constants    []any
	Names        []string
	GlobalNames  []string
	LocalNames   []string
	FreeNames    []string
	CellNames    []string
	Locations    []SourceLocation
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied to ensure immutability. The Code is fully
// immutable after construction - there are no mutation methods.
func NewCode(params CodeParams) *Code {
	return &Code{
		name:         params.Name,
		filename:     params.Filename,
		source:       params.Source,
		instructions: copyInstructions(params.Instructions),
		constants:    copyAny(params.Constants),
		names:        copyStrings(params.Names),
		globalNames:  copyStrings(params.GlobalNames),
		localNames:   copyStrings(params.LocalNames),
		freeNames:    copyStrings(params.FreeNames),
		cellNames:    copyStrings(params.CellNames),
		locations:    copyLocations(params.Locations),
	}
}

// Name returns the name of this code block.
func (c *Code) Name() string {
	return c.name
}

// Filename returns the source file this code came from.
func (c *Code) Filename() string {
	return c.filename
}

// Source returns the source text for this code block, if recorded.
func (c *Code) Source() string {
	return c.source
}

// InstructionCount returns the number of instruction words, including
// operands.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction word at the given index.
func (c *Code) InstructionAt(index int) op.Code {
	return c.instructions[index]
}

// ConstantCount returns the number of constants.
func (c *Code) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Code) ConstantAt(index int) any {
	return c.constants[index]
}

// NameCount returns the number of attribute/import names.
func (c *Code) NameCount() int {
	return len(c.names)
}

// NameAt returns the attribute/import name at the given index.
func (c *Code) NameAt(index int) string {
	return c.names[index]
}

// GlobalCount returns the number of referenced global variable names.
func (c *Code) GlobalCount() int {
	return len(c.globalNames)
}

// GlobalNameAt returns the global variable name at the given index.
func (c *Code) GlobalNameAt(index int) string {
	return c.globalNames[index]
}

// LocalCount returns the number of local variable names.
func (c *Code) LocalCount() int {
	return len(c.localNames)
}

// LocalNameAt returns the local variable name at the given index.
func (c *Code) LocalNameAt(index int) string {
	return c.localNames[index]
}

// FreeCount returns the number of free variables, which are variables this
// code captures from an enclosing scope.
func (c *Code) FreeCount() int {
	return len(c.freeNames)
}

// FreeNameAt returns the free variable name at the given index.
func (c *Code) FreeNameAt(index int) string {
	return c.freeNames[index]
}

// FreeNames returns a copy of the free variable name table.
func (c *Code) FreeNames() []string {
	return copyStrings(c.freeNames)
}

// CellCount returns the number of cell variables, which are variables this
// code exposes to nested closures defined inside it.
func (c *Code) CellCount() int {
	return len(c.cellNames)
}

// CellNameAt returns the cell variable name at the given index.
func (c *Code) CellNameAt(index int) string {
	return c.cellNames[index]
}

// CellNames returns a copy of the cell variable name table.
func (c *Code) CellNames() []string {
	return copyStrings(c.cellNames)
}

// LocationAt returns the source location for the instruction word at the
// given index. If no location is recorded, an empty SourceLocation is
// returned.
func (c *Code) LocationAt(index int) SourceLocation {
	if index < 0 || index >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[index]
}

// LocationsCount returns the number of recorded source locations.
func (c *Code) LocationsCount() int {
	return len(c.locations)
}
