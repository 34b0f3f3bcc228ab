package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(LoadGlobal)
	require.Equal(t, "LOAD_GLOBAL", info.Name)
	require.Equal(t, LoadGlobal, info.Code)
	require.Equal(t, 1, info.OperandCount)

	info = GetInfo(ReturnValue)
	require.Equal(t, "RETURN_VALUE", info.Name)
	require.Equal(t, 0, info.OperandCount)

	info = GetInfo(ForIter)
	require.Equal(t, "FOR_ITER", info.Name)
	require.Equal(t, 2, info.OperandCount)
}

func TestGetInfoInvalid(t *testing.T) {
	info := GetInfo(Invalid)
	require.Equal(t, "", info.Name)
	require.Equal(t, 0, info.OperandCount)
}

func TestBinaryOpString(t *testing.T) {
	require.Equal(t, "+", Add.String())
	require.Equal(t, "%", Modulo.String())
	require.Equal(t, "**", Power.String())
	require.Equal(t, "", BinaryOpType(0).String())
}

func TestCompareOpString(t *testing.T) {
	require.Equal(t, "<", LessThan.String())
	require.Equal(t, ">=", GreaterThanOrEqual.String())
	require.Equal(t, "", CompareOpType(0).String())
}
