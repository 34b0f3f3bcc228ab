package bytecode

import "github.com/HiveWang/bionic/op"

func copyStrings(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

func copyAny(s []any) []any {
	if len(s) == 0 {
		return nil
	}
	c := make([]any, len(s))
	copy(c, s)
	return c
}

func copyInstructions(s []op.Code) []op.Code {
	if len(s) == 0 {
		return nil
	}
	c := make([]op.Code, len(s))
	copy(c, s)
	return c
}

func copyLocations(s []SourceLocation) []SourceLocation {
	if len(s) == 0 {
		return nil
	}
	c := make([]SourceLocation, len(s))
	copy(c, s)
	return c
}
