package coderefs

import (
	stderrors "errors"
	"testing"

	"github.com/HiveWang/bionic/bytecode"
	"github.com/HiveWang/bionic/dis"
	"github.com/HiveWang/bionic/errors"
	"github.com/HiveWang/bionic/object"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, fn *object.Closure) []any {
	t.Helper()
	refs, err := Extract(fn)
	require.NoError(t, err)
	return Values(refs)
}

func closure(asm *bytecode.Assembler, globals map[string]any) *object.Closure {
	return object.NewClosure(asm.Function(), globals)
}

func TestEmptyReferences(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		LoadConst(int64(42)).
		ReturnValue(), nil)
	require.Empty(t, extract(t, fn))

	// A parameter is an untracked local: reading it is not a reference.
	fn = closure(bytecode.NewAssembler("x").
		Params("val").
		LoadFast("val").
		ReturnValue(), nil)
	require.Empty(t, extract(t, fn))
}

func TestGlobalReferences(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("global_val").
		ReturnValue(),
		map[string]any{"global_val": int64(42)})
	require.Equal(t, []any{int64(42)}, extract(t, fn))
}

func TestUnknownGlobalIsNameReference(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("func_does_not_exist").
		Call(0).
		ReturnValue(), nil)
	require.Equal(t, []any{"func_does_not_exist"}, extract(t, fn))
}

func TestFreeReferences(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		FreeVars("free_val").
		LoadFree("free_val").
		ReturnValue(), nil)
	fn = object.CloneWithCaptures(fn, []*object.Cell{object.NewCell("42")})
	require.Equal(t, []any{"42"}, extract(t, fn))
}

func TestCellReferences(t *testing.T) {
	// Walking the outer function yields the cell variable's name, not its
	// value: the cell contents are only resolvable when the nested closure
	// is traced on its own.
	inner := bytecode.NewAssembler("y").
		FreeVars("cell_val").
		LoadFree("cell_val").
		ReturnValue().
		Function()

	fn := closure(bytecode.NewAssembler("x").
		CellVars("cell_val").
		LoadClosure("cell_val").
		MakeFunction(inner).
		StoreFast("y").
		Nil().
		ReturnValue(), nil)
	require.Equal(t, []any{"cell_val"}, extract(t, fn))
}

func TestImportReferences(t *testing.T) {
	mod := object.NewModule("jsonutil", nil)
	object.RegisterModule(mod)
	defer object.UnregisterModule("jsonutil")

	fn := closure(bytecode.NewAssembler("x").
		ImportName("jsonutil").
		ReturnValue(), nil)
	require.Equal(t, []any{mod}, extract(t, fn))
}

func TestImportMissingModule(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		ImportName("no.such.module").
		ReturnValue(), nil)
	require.Equal(t, []any{"no.such.module"}, extract(t, fn))
}

func TestFunctionCallReferences(t *testing.T) {
	callee := closure(bytecode.NewAssembler("x").
		LoadConst("42").
		ReturnValue(), nil)

	fn := closure(bytecode.NewAssembler("y").
		LoadGlobal("x").
		Call(0).
		ReturnValue(),
		map[string]any{"x": callee})
	require.Equal(t, []any{callee}, extract(t, fn))
}

func TestQualifiedNameOnUnresolvedBase(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("a").
		LoadAttr("b").
		LoadAttr("c").
		ReturnValue(), nil)
	require.Equal(t, []any{"a.b.c"}, extract(t, fn))
}

func TestQualifiedNameOnResolvedModule(t *testing.T) {
	syncManager := object.NewBuiltin("SyncManager", nil)
	managers := object.NewModule("multiprocessing.managers", map[string]any{
		"SyncManager": syncManager,
	})
	multiprocessing := object.NewModule("multiprocessing", map[string]any{
		"managers": managers,
	})

	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("multiprocessing").
		LoadAttr("managers").
		LoadAttr("SyncManager").
		Call(0).
		ReturnValue(),
		map[string]any{"multiprocessing": multiprocessing})
	require.Equal(t, []any{syncManager}, extract(t, fn))
}

func TestImportFromResolvesExport(t *testing.T) {
	syncManager := object.NewBuiltin("SyncManager", nil)
	managers := object.NewModule("multiprocessing.managers", map[string]any{
		"SyncManager": syncManager,
	})
	object.RegisterModule(managers)
	defer object.UnregisterModule("multiprocessing.managers")

	fn := closure(bytecode.NewAssembler("x").
		ImportName("multiprocessing.managers").
		ImportFrom("SyncManager").
		Call(0).
		ReturnValue(), nil)
	require.Equal(t, []any{syncManager}, extract(t, fn))
}

func TestMethodReferenceOnConstructedValue(t *testing.T) {
	// The constructor call is a function call, so the default rule flushes
	// the class reference and the local binding is never tracked. The
	// method access then degrades to a bare name reference.
	myClass := object.NewBuiltin("MyClass", nil)

	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("MyClass").
		Call(0).
		StoreFast("my_class").
		LoadFast("my_class").
		LoadMethod("log_val").
		Call(0).
		PopTop().
		Nil().
		ReturnValue(),
		map[string]any{"MyClass": myClass})
	require.Equal(t, []any{myClass, "log_val"}, extract(t, fn))
}

func TestMethodReferenceOnParameter(t *testing.T) {
	fn := closure(bytecode.NewAssembler("y").
		Params("my_class").
		LoadFast("my_class").
		LoadMethod("log_val").
		Call(0).
		Nil().
		ReturnValue(), nil)
	require.Equal(t, []any{"log_val"}, extract(t, fn))
}

func TestBoundMethodSelfReceiver(t *testing.T) {
	logVal := object.NewBuiltin("log_val", nil)
	receiver := object.NewInstance("MyClass", map[string]any{"log_val": logVal})

	fn := closure(bytecode.NewAssembler("log_twice").
		LoadFast("self").
		LoadMethod("log_val").
		Call(0).
		Nil().
		ReturnValue(), nil).
		Bind(receiver)
	require.Equal(t, []any{logVal}, extract(t, fn))
}

func TestStoreFastTracksResolvedValue(t *testing.T) {
	mod := object.NewModule("tracked", nil)

	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("m").
		StoreFast("p").
		LoadFast("p").
		Call(0).
		ReturnValue(),
		map[string]any{"m": mod})
	require.Equal(t, []any{mod}, extract(t, fn))
}

func TestDeleteFastUndoesTracking(t *testing.T) {
	mod := object.NewModule("tracked", nil)

	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("m").
		StoreFast("p").
		LoadFast("p").
		DeleteFast("p").
		LoadFast("p").
		Nil().
		ReturnValue(),
		map[string]any{"m": mod})
	require.Empty(t, extract(t, fn))
}

func TestDeleteUntrackedLocalIsExtractionError(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("v").
		DeleteFast("p").
		Nil().
		ReturnValue(),
		map[string]any{"v": int64(7)})

	_, err := Extract(fn)
	require.Error(t, err)

	var cve *errors.CodeVersioningError
	require.True(t, stderrors.As(err, &cve))
	require.Equal(t, "x", cve.Function)
	require.Contains(t, err.Error(), `local "p" deleted before being stored`)
}

func TestDuplicateReferencesPreserved(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("v").
		LoadGlobal("v").
		ReturnValue(),
		map[string]any{"v": int64(7)})
	require.Equal(t, []any{int64(7), int64(7)}, extract(t, fn))
}

func TestTrailingLoadIsDropped(t *testing.T) {
	// Known edge case: a value left on the stack by the very last
	// instruction is not reported. Function bodies normally end with
	// RETURN_VALUE, which consumes it.
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("v"),
		map[string]any{"v": int64(7)})
	require.Empty(t, extract(t, fn))
}

func TestDeterminism(t *testing.T) {
	managers := object.NewModule("multiprocessing.managers", map[string]any{
		"SyncManager": object.NewBuiltin("SyncManager", nil),
	})
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("a").
		LoadAttr("b").
		PopTop().
		LoadGlobal("mp").
		LoadAttr("SyncManager").
		Call(0).
		ReturnValue(),
		map[string]any{"mp": managers})

	first, err := Extract(fn)
	require.NoError(t, err)
	second, err := Extract(fn)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMismatchedFreeVarsAndCells(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		FreeVars("free_val").
		LoadFree("free_val").
		ReturnValue(), nil)
	// No captured cells were attached, so the counts cannot match.
	_, err := BuildContext(fn)
	require.Error(t, err)

	var cve *errors.CodeVersioningError
	require.True(t, stderrors.As(err, &cve))
	require.Equal(t, "x", cve.Function)
	require.Contains(t, err.Error(), "does not match captured cell count")
}

func TestMissingCellIsExtractionError(t *testing.T) {
	fn := closure(bytecode.NewAssembler("x").
		SetFilename("pipeline.bn").
		FreeVars("free_val").
		At(3, 1).
		LoadFree("free_val").
		ReturnValue(), nil)
	fn = object.CloneWithCaptures(fn, []*object.Cell{object.NewCell("42")})

	ctx, err := BuildContext(fn)
	require.NoError(t, err)
	// Simulate an inconsistent context to hit the walker's precondition.
	delete(ctx.Cells, "free_val")

	instructions, err := dis.Disassemble(fn.Code())
	require.NoError(t, err)
	_, err = Walk(instructions, ctx)
	require.Error(t, err)

	var cve *errors.CodeVersioningError
	require.True(t, stderrors.As(err, &cve))
	require.Equal(t, "x", cve.Function)
	require.Equal(t, "pipeline.bn", cve.Location.Filename)
	require.Equal(t, 3, cve.Location.Line)
	require.Contains(t, err.Error(), `closure cell missing for "free_val"`)
}

func TestAttributeMissingOnResolvedValue(t *testing.T) {
	mod := object.NewModule("m", nil)
	fn := closure(bytecode.NewAssembler("x").
		LoadGlobal("m").
		LoadAttr("missing").
		ReturnValue(),
		map[string]any{"m": mod})

	_, err := Extract(fn)
	require.Error(t, err)

	var cve *errors.CodeVersioningError
	require.True(t, stderrors.As(err, &cve))
	require.Contains(t, err.Error(), `attribute "missing" not found`)
}

func TestContextSeedsCellsAndSelf(t *testing.T) {
	receiver := object.NewInstance("T", nil)
	fn := closure(bytecode.NewAssembler("m").
		CellVars("cv").
		Nil().
		ReturnValue(), nil).
		Bind(receiver)

	ctx, err := BuildContext(fn)
	require.NoError(t, err)
	require.Equal(t, Unresolved("cv"), ctx.Cells["cv"])
	require.Equal(t, Resolved(receiver), ctx.Varnames["self"])
}
