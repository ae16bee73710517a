package ast

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the builder and the evaluator.
var (
	// ErrMalformedRule indicates a rule whose tokens do not reduce to exactly one tree:
	// mismatched parentheses, missing operands, leftover tokens.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrUnsupportedOperator indicates a comparison operator outside the six
	// supported symbols, or a connective other than AND/OR.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrTypeMismatch indicates a record value that cannot be compared with
	// the rule's literal.
	ErrTypeMismatch = errors.New("type mismatch")
)

// SyntaxError wraps a builder failure with the offending token.
type SyntaxError struct {
	// Pos is the index of the token in the token sequence, or -1 at end of input.
	Pos int
	// Token is the offending token, empty at end of input.
	Token string
	// Msg describes what went wrong.
	Msg string
	// Err is ErrMalformedRule or ErrUnsupportedOperator.
	Err error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%v: %s at end of rule", e.Err, e.Msg)
	}
	return fmt.Sprintf("%v: %s at token %d %q", e.Err, e.Msg, e.Pos, e.Token)
}

// Unwrap returns the error kind for errors.Is support.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// ComparisonError wraps an evaluator failure with the comparison context.
type ComparisonError struct {
	Field string
	Op    Operator
	// Want is the rule literal.
	Want Value
	// Got is the raw record value.
	Got any
	Err error
}

// Error implements the error interface.
func (e *ComparisonError) Error() string {
	return fmt.Sprintf("%v: %s %s %s with record value %v (%T)", e.Err, e.Field, e.Op, e.Want, e.Got, e.Got)
}

// Unwrap returns the error kind for errors.Is support.
func (e *ComparisonError) Unwrap() error {
	return e.Err
}
