package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for percolate operations. All are returned synchronously
// from the operation that detects them; evaluation itself never errors.
var (
	// ErrUnknownField indicates an expression or event references a field
	// with no registered domain.
	ErrUnknownField = errors.New("unknown field")

	// ErrTypeMismatch indicates a literal or event value whose kind does not
	// match the field's domain kind.
	ErrTypeMismatch = errors.New("value kind does not match domain kind")

	// ErrOutOfRange indicates an integer literal or event value outside the
	// domain's declared inclusive range.
	ErrOutOfRange = errors.New("integer value outside domain range")

	// ErrInvalidOperator indicates an operator applied to a field whose
	// domain shape does not support it (e.g. null? on a non-nullable field).
	ErrInvalidOperator = errors.New("operator not valid for field domain")

	// ErrDuplicateDomain indicates re-registration of an existing domain name.
	ErrDuplicateDomain = errors.New("domain already registered")

	// ErrInvalidRange indicates an integer domain declared with min > max.
	ErrInvalidRange = errors.New("domain range min exceeds max")

	// ErrDuplicateID indicates insertion of an expression id already in use.
	ErrDuplicateID = errors.New("expression id already exists")

	// ErrUnknownID indicates removal of an expression id that does not exist.
	ErrUnknownID = errors.New("unknown expression id")

	// ErrTooManySetValues indicates a bracketed literal set exceeds
	// MaxSetValues elements.
	ErrTooManySetValues = errors.New("literal set has too many values")

	// ErrExpressionTooLarge indicates expression text exceeds MaxExpressionLength.
	ErrExpressionTooLarge = errors.New("expression text exceeds maximum length")
)

// ErrSyntax is the class sentinel for malformed expression text.
// Concrete failures carry a position via *SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports malformed expression text with the byte offset at
// which the problem was detected.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Is makes every *SyntaxError match the ErrSyntax sentinel, so callers can
// classify without caring about the position.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
