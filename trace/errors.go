package trace

import (
	"errors"
	"fmt"
)

var (
	// MalformedTraceError is matched by every error returned from Parse.
	// It covers structural defects: missing or reordered block lines,
	// block indices that do not match their position, transitions that
	// dangle without a successor state.
	MalformedTraceError = errors.New("trace: Malformed trace text")

	// ConstraintParseError is matched by errors raised while reading a
	// Clock_constraints line, including a state block that has no such
	// line at all. A missing zone is never substituted with an empty one.
	ConstraintParseError = errors.New("trace: Malformed clock constraints")
)

// ParseError reports where in the trace text parsing failed.
// It matches MalformedTraceError under errors.Is, and additionally
// ConstraintParseError when the defect is in a zone.
type ParseError struct {
	// Line is the 1-based line number in the input text.
	Line int

	// Reason describes the defect.
	Reason string

	kind error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace: line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	if target == MalformedTraceError {
		return true
	}
	return target == e.kind
}

func malformedErr(line int, format string, args ...any) *ParseError {
	return &ParseError{
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
		kind:   MalformedTraceError,
	}
}

func constraintErr(line int, format string, args ...any) *ParseError {
	return &ParseError{
		Line:   line,
		Reason: fmt.Sprintf(format, args...),
		kind:   ConstraintParseError,
	}
}
