package eval

import (
	"fmt"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// Record maps field names to integer or string values.
type Record = map[string]any

// Outcome is the three-valued result of resolving a subtree.
type Outcome int

const (
	// Unknown means every field the subtree depends on is absent.
	Unknown Outcome = iota
	False
	True
)

// String returns "unknown", "false" or "true".
func (o Outcome) String() string {
	switch o {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "unknown"
	}
}

func outcomeOf(b bool) Outcome {
	if b {
		return True
	}
	return False
}

// Evaluate resolves root against record and reports false only when the
// result is exactly False. Unknown counts as true, so a rule whose fields
// are all absent passes.
func Evaluate(root ast.Node, record Record) (bool, error) {
	o, err := Resolve(root, record)
	if err != nil {
		return false, err
	}
	return o != False, nil
}

// Resolve computes the three-valued outcome of a subtree.
//
// An operand whose field is missing from record is Unknown. A junction with
// one Unknown child takes the other child's outcome, for AND and OR alike;
// with two Unknown children it is Unknown.
func Resolve(node ast.Node, record Record) (Outcome, error) {
	switch n := node.(type) {
	case *ast.Operand:
		return check(n.Comparison, record)
	case *ast.Junction:
		left, err := Resolve(n.Left, record)
		if err != nil {
			return Unknown, err
		}
		right, err := Resolve(n.Right, record)
		if err != nil {
			return Unknown, err
		}
		return join(n.Conn, left, right)
	default:
		return Unknown, fmt.Errorf("%w: unexpected node %T", ast.ErrMalformedRule, node)
	}
}

func join(conn ast.Connective, left, right Outcome) (Outcome, error) {
	switch {
	case left == Unknown:
		return right, nil
	case right == Unknown:
		return left, nil
	}
	switch conn {
	case ast.And:
		return outcomeOf(left == True && right == True), nil
	case ast.Or:
		return outcomeOf(left == True || right == True), nil
	default:
		return Unknown, fmt.Errorf("%w: connective %s", ast.ErrUnsupportedOperator, conn)
	}
}

// check compares the record value against the rule literal as
// "record op literal", so "age > 30" holds for age 35.
func check(c ast.Comparison, record Record) (Outcome, error) {
	raw, ok := record[c.Field]
	if !ok {
		return Unknown, nil
	}
	got, ok := ToValue(raw)
	if !ok {
		return Unknown, &ast.ComparisonError{Field: c.Field, Op: c.Op, Want: c.Value, Got: raw, Err: ast.ErrTypeMismatch}
	}
	res, err := Compare(c.Op, got, c.Value)
	if err != nil {
		return Unknown, &ast.ComparisonError{Field: c.Field, Op: c.Op, Want: c.Value, Got: raw, Err: err}
	}
	return outcomeOf(res), nil
}
