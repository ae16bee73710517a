package eval

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// Compare applies op with left on the left-hand side: Compare(OpLess, l, r)
// reports l < r.
//
// Values of different kinds are never equal. Ordering values of different
// kinds returns ast.ErrTypeMismatch.
func Compare(op ast.Operator, left, right ast.Value) (bool, error) {
	if !op.Valid() {
		return false, fmt.Errorf("%w: %d", ast.ErrUnsupportedOperator, int(op))
	}
	if left.Kind != right.Kind {
		switch op {
		case ast.OpEqual:
			return false, nil
		case ast.OpNotEqual:
			return true, nil
		default:
			return false, fmt.Errorf("%w: %s %s %s", ast.ErrTypeMismatch, left.Kind, op, right.Kind)
		}
	}
	return ordered(op, cmpValues(left, right)), nil
}

// cmpValues returns -1, 0 or +1. Kinds must match.
func cmpValues(left, right ast.Value) int {
	if left.Kind == ast.KindString {
		return strings.Compare(left.Str, right.Str)
	}
	switch {
	case left.Int < right.Int:
		return -1
	case left.Int > right.Int:
		return 1
	default:
		return 0
	}
}

func ordered(op ast.Operator, c int) bool {
	switch op {
	case ast.OpEqual:
		return c == 0
	case ast.OpNotEqual:
		return c != 0
	case ast.OpLess:
		return c < 0
	case ast.OpLessEqual:
		return c <= 0
	case ast.OpGreater:
		return c > 0
	case ast.OpGreaterEqual:
		return c >= 0
	default:
		return false
	}
}
