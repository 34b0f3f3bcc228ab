// Package dis supports analysis of bionic bytecode by disassembling it.
// This works with the opcodes defined in the `op` package and uses the
// InstructionIter type from the `bytecode` package.
//
// Disassemble is the decode capability that reference extraction is written
// against: it resolves every operand index into a name or value, so
// consumers never deal with raw index operands.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/HiveWang/bionic/bytecode"
	"github.com/HiveWang/bionic/op"
)

// Instruction represents a single decoded bytecode instruction. Arg holds
// the resolved operand: a variable or attribute name for loads and stores,
// the constant value for LOAD_CONST, or the raw operand for the remaining
// opcodes. Line is the 1-based source line, or 0 when unknown.
type Instruction struct {
	Offset int
	Name   string
	Opcode op.Code
	Arg    any
	Line   int
}

// Disassemble returns a parsed representation of the given bytecode.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	var instructions []Instruction
	var offset int
	iter := bytecode.NewInstructionIter(code)
	for {
		val, ok := iter.Next()
		if !ok {
			break
		}
		info := op.GetInfo(val[0])
		if info.Name == "" {
			return nil, fmt.Errorf("dis: unknown opcode %d at offset %d", val[0], offset)
		}
		var arg any
		var err error
		switch val[0] {
		case op.LoadFast, op.StoreFast, op.DeleteFast:
			arg, err = localVariableName(code, int(val[1]))
		case op.LoadGlobal, op.StoreGlobal:
			arg, err = globalVariableName(code, int(val[1]))
		case op.LoadAttr, op.LoadMethod, op.StoreAttr, op.ImportName, op.ImportFrom:
			arg, err = name(code, int(val[1]))
		case op.LoadFree:
			arg, err = freeVariableName(code, int(val[1]))
		case op.LoadClosure:
			arg, err = closureVariableName(code, int(val[1]))
		case op.LoadConst, op.MakeFunction:
			arg, err = constantValue(code, int(val[1]))
		case op.BinaryOp:
			arg = op.BinaryOpType(val[1])
		case op.CompareOp:
			arg = op.CompareOpType(val[1])
		default:
			if len(val) > 1 {
				arg = int(val[1])
			}
		}
		if err != nil {
			return nil, fmt.Errorf("dis: %w (opcode %s at offset %d)", err, info.Name, offset)
		}
		instructions = append(instructions, Instruction{
			Offset: offset,
			Name:   info.Name,
			Opcode: val[0],
			Arg:    arg,
			Line:   code.LocationAt(offset).Line,
		})
		offset += len(val)
	}
	return instructions, nil
}

// Print writes a string representation of the given instructions to the
// given writer.
func Print(instructions []Instruction, writer io.Writer) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	for _, instr := range instructions {
		arg := ""
		if instr.Arg != nil {
			arg = cyan.Sprintf("%v", instr.Arg)
		}
		line := ""
		if instr.Line > 0 {
			line = fmt.Sprintf("L%d", instr.Line)
		}
		fmt.Fprintf(writer, "%4s %6d  %s %s\n",
			line, instr.Offset, bold.Sprintf("%-28s", instr.Name), arg)
	}
}

func localVariableName(code *bytecode.Code, index int) (string, error) {
	if index >= code.LocalCount() {
		return "", fmt.Errorf("local variable index out of range: %d", index)
	}
	return code.LocalNameAt(index), nil
}

func name(code *bytecode.Code, index int) (string, error) {
	if index >= code.NameCount() {
		return "", fmt.Errorf("name index out of range: %d", index)
	}
	return code.NameAt(index), nil
}

func globalVariableName(code *bytecode.Code, index int) (string, error) {
	if index >= code.GlobalCount() {
		return "", fmt.Errorf("global variable index out of range: %d", index)
	}
	return code.GlobalNameAt(index), nil
}

func freeVariableName(code *bytecode.Code, index int) (string, error) {
	if index >= code.FreeCount() {
		return "", fmt.Errorf("free variable index out of range: %d", index)
	}
	return code.FreeNameAt(index), nil
}

// closureVariableName resolves a LOAD_CLOSURE operand, which indexes cell
// variables first and then free variables.
func closureVariableName(code *bytecode.Code, index int) (string, error) {
	if index < code.CellCount() {
		return code.CellNameAt(index), nil
	}
	index -= code.CellCount()
	if index < code.FreeCount() {
		return code.FreeNameAt(index), nil
	}
	return "", fmt.Errorf("closure variable index out of range: %d", index+code.CellCount())
}

func constantValue(code *bytecode.Code, index int) (any, error) {
	if index >= code.ConstantCount() {
		return nil, fmt.Errorf("constant index out of range: %d", index)
	}
	return code.ConstantAt(index), nil
}
