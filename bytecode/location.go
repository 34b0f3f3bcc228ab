package bytecode

import "fmt"

// SourceLocation is a 1-based line and column position. The filename and
// source text live once on the Code object, so a location stays small
// enough to record per instruction word.
type SourceLocation struct {
	Line   int
	Column int
}

// String formats the location as "line:column".
func (s SourceLocation) String() string {
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero reports whether no location was recorded.
func (s SourceLocation) IsZero() bool {
	return s == SourceLocation{}
}
