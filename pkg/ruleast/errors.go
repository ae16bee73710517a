package ruleast

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// Sentinel errors, shared with the ast package so errors.Is matches either.
var (
	// ErrMalformedRule indicates a rule that does not reduce to a single tree.
	ErrMalformedRule = ast.ErrMalformedRule

	// ErrUnsupportedOperator indicates an operator outside = != < <= > >=.
	ErrUnsupportedOperator = ast.ErrUnsupportedOperator

	// ErrTypeMismatch indicates a record value incomparable with the rule's literal.
	ErrTypeMismatch = ast.ErrTypeMismatch
)

// ErrNoRules indicates CombineRules was called with no rules.
var ErrNoRules = fmt.Errorf("%w: no rules to combine", ErrMalformedRule)

// CombineError identifies which input of a combine failed to build.
type CombineError struct {
	Index int
	Rule  string
	Err   error
}

// Error implements the error interface.
func (e *CombineError) Error() string {
	return fmt.Sprintf("rule %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *CombineError) Unwrap() error {
	return e.Err
}

// IsRuleError reports whether err is a rule failure (malformed rule,
// unsupported operator or type mismatch) rather than an internal error.
func IsRuleError(err error) bool {
	return errors.Is(err, ErrMalformedRule) ||
		errors.Is(err, ErrUnsupportedOperator) ||
		errors.Is(err, ErrTypeMismatch)
}
