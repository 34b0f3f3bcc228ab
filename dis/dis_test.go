package dis

import (
	"bytes"
	"testing"

	"github.com/HiveWang/bionic/bytecode"
	"github.com/HiveWang/bionic/op"
	"github.com/stretchr/testify/require"
)

func TestDisassembleResolvesOperands(t *testing.T) {
	code := bytecode.NewAssembler("f").
		Params("p").
		At(1, 1).
		LoadGlobal("x").
		LoadAttr("attr").
		At(2, 1).
		LoadConst(int64(42)).
		StoreFast("p").
		ImportName("strings.utf8").
		ReturnValue().
		Code()

	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Len(t, instructions, 6)

	require.Equal(t, "LOAD_GLOBAL", instructions[0].Name)
	require.Equal(t, "x", instructions[0].Arg)
	require.Equal(t, 1, instructions[0].Line)

	require.Equal(t, "LOAD_ATTR", instructions[1].Name)
	require.Equal(t, "attr", instructions[1].Arg)

	require.Equal(t, "LOAD_CONST", instructions[2].Name)
	require.Equal(t, int64(42), instructions[2].Arg)
	require.Equal(t, 2, instructions[2].Line)

	require.Equal(t, "STORE_FAST", instructions[3].Name)
	require.Equal(t, "p", instructions[3].Arg)

	require.Equal(t, "IMPORT_NAME", instructions[4].Name)
	require.Equal(t, "strings.utf8", instructions[4].Arg)

	require.Equal(t, "RETURN_VALUE", instructions[5].Name)
	require.Nil(t, instructions[5].Arg)
}

func TestDisassembleOffsets(t *testing.T) {
	code := bytecode.NewAssembler("f").
		LoadGlobal("x").
		Call(0).
		PopTop().
		ReturnValue().
		Code()

	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Equal(t, 0, instructions[0].Offset)
	require.Equal(t, 2, instructions[1].Offset)
	require.Equal(t, 4, instructions[2].Offset)
	require.Equal(t, 5, instructions[3].Offset)
}

func TestDisassembleClosureVariables(t *testing.T) {
	code := bytecode.NewAssembler("f").
		CellVars("cell_val").
		FreeVars("free_val").
		LoadClosure("cell_val").
		LoadClosure("free_val").
		LoadFree("free_val").
		Code()

	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Equal(t, "cell_val", instructions[0].Arg)
	require.Equal(t, "free_val", instructions[1].Arg)
	require.Equal(t, "LOAD_FREE", instructions[2].Name)
	require.Equal(t, "free_val", instructions[2].Arg)
}

func TestDisassembleBinaryAndCompareOps(t *testing.T) {
	code := bytecode.NewAssembler("f").
		LoadConst(int64(1)).
		LoadConst(int64(2)).
		BinaryOp(op.Add).
		LoadConst(int64(3)).
		CompareOp(op.LessThan).
		ReturnValue().
		Code()

	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Equal(t, op.Add, instructions[2].Arg)
	require.Equal(t, op.LessThan, instructions[4].Arg)
}

func TestDisassembleNameTable(t *testing.T) {
	code := bytecode.NewAssembler("f").
		LoadGlobal("obj").
		LoadAttr("field").
		LoadMethod("method").
		ImportName("pkg").
		ImportFrom("export").
		ReturnValue().
		Code()

	instructions, err := Disassemble(code)
	require.NoError(t, err)
	require.Equal(t, "field", instructions[1].Arg)
	require.Equal(t, "method", instructions[2].Arg)
	require.Equal(t, "pkg", instructions[3].Arg)
	require.Equal(t, "export", instructions[4].Arg)
}

func TestDisassembleNameIndexOutOfRange(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name:         "broken",
		Instructions: []op.Code{op.LoadAttr, 2},
	})
	_, err := Disassemble(code)
	require.Error(t, err)
	require.Contains(t, err.Error(), "name index out of range")
}

func TestDisassembleIndexOutOfRange(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name:         "broken",
		Instructions: []op.Code{op.LoadGlobal, 3},
	})
	_, err := Disassemble(code)
	require.Error(t, err)
	require.Contains(t, err.Error(), "global variable index out of range")
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Name:         "broken",
		Instructions: []op.Code{250},
	})
	_, err := Disassemble(code)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown opcode")
}

func TestPrint(t *testing.T) {
	code := bytecode.NewAssembler("f").
		At(1, 1).
		LoadGlobal("x").
		ReturnValue().
		Code()
	instructions, err := Disassemble(code)
	require.NoError(t, err)

	var buf bytes.Buffer
	Print(instructions, &buf)
	out := buf.String()
	require.Contains(t, out, "LOAD_GLOBAL")
	require.Contains(t, out, "RETURN_VALUE")
	require.Contains(t, out, "L1")
}
