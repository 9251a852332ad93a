package bms

import "fmt"

// ParseError is returned by Compile and GenerateTiming when the chart text
// cannot be turned into a usable result. Chart text is immutable, so the same
// input always fails the same way; there is nothing to retry. No partial
// result accompanies a ParseError.
type ParseError struct {
	Line   int // 1-based line number, or 0 when the failure is not tied to a line
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}
