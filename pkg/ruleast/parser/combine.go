package parser

import (
	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// Combine left-folds nodes into one tree joined by AND: the first node is
// the accumulator and each following node becomes the right child of a new
// junction. It returns nil for no nodes; callers must guard against that.
// The inputs become children of the result and must not be reused.
func Combine(nodes ...ast.Node) ast.Node {
	if len(nodes) == 0 {
		return nil
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = ast.NewJunction(ast.And, acc, n)
	}
	return acc
}

// CombineWith is Combine with a caller-chosen connective.
func CombineWith(conn ast.Connective, nodes ...ast.Node) (ast.Node, error) {
	if !conn.Valid() {
		return nil, &ast.SyntaxError{Pos: -1, Token: conn.String(), Msg: "invalid connective", Err: ast.ErrUnsupportedOperator}
	}
	if len(nodes) == 0 {
		return nil, &ast.SyntaxError{Pos: -1, Msg: "nothing to combine", Err: ast.ErrMalformedRule}
	}
	for _, n := range nodes {
		if n == nil {
			return nil, &ast.SyntaxError{Pos: -1, Msg: "nil tree", Err: ast.ErrMalformedRule}
		}
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = ast.NewJunction(conn, acc, n)
	}
	return acc, nil
}
