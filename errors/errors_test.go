package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeVersioningError(t *testing.T) {
	cause := stderrors.New("closure cell missing for \"x\"")
	err := NewCodeVersioningError("pipeline.bn", 12, "transform", cause)

	require.Equal(t,
		`code versioning error: unable to version "transform" (pipeline.bn:12): closure cell missing for "x"`,
		err.Error())
	require.True(t, stderrors.Is(err, cause))

	var cve *CodeVersioningError
	require.True(t, stderrors.As(err, &cve))
	require.Equal(t, "transform", cve.Function)
	require.Equal(t, 12, cve.Location.Line)
}

func TestCodeVersioningErrorAnonymous(t *testing.T) {
	err := NewCodeVersioningError("", 0, "", stderrors.New("boom"))
	require.Contains(t, err.Error(), "<anonymous>")
	require.Contains(t, err.Error(), "unknown")
	require.Contains(t, err.FriendlyErrorMessage(), "please report it")
}

func TestSourceLocationString(t *testing.T) {
	require.Equal(t, "f.bn:3", SourceLocation{Filename: "f.bn", Line: 3}.String())
	require.Equal(t, "f.bn", SourceLocation{Filename: "f.bn"}.String())
	require.Equal(t, "line 3", SourceLocation{Line: 3}.String())
	require.Equal(t, "unknown", SourceLocation{}.String())
	require.True(t, SourceLocation{}.IsZero())
}
