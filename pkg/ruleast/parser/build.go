package parser

import (
	"fmt"

	"github.com/randalmurphal/ruleast/pkg/ruleast/ast"
)

// Build tokenizes a rule and reduces it to a single tree.
// Errors wrap ast.ErrMalformedRule or ast.ErrUnsupportedOperator in an
// *ast.SyntaxError.
func Build(rule string) (ast.Node, error) {
	return BuildTokens(Tokenize(rule))
}

// BuildTokens reduces a token sequence to a single tree.
//
// Tokens are scanned once, left to right. Raw tokens and "(" markers go on
// an element stack; completed subtrees and junctions still waiting for their
// right operand go on a node stack. There is no precedence between AND and
// OR: each connective takes the most recent result at its nesting level as
// its left operand, so "a AND b OR c" builds as "(a AND b) OR c".
func BuildTokens(tokens []string) (ast.Node, error) {
	b := &builder{tokens: tokens}
	for i, tok := range tokens {
		b.pos = i
		var err error
		switch tok {
		case "(":
			b.elems = append(b.elems, elem{tok: tok, pos: i})
			b.depth++
		case ")":
			err = b.closeScope()
		case "AND", "OR":
			conn, _ := ast.ParseConnective(tok)
			err = b.connective(conn)
		default:
			b.elems = append(b.elems, elem{tok: tok, pos: i})
		}
		if err != nil {
			return nil, err
		}
	}
	return b.finish()
}

type elem struct {
	tok string
	pos int
}

// entry is a node stack slot: a completed subtree, or a partial junction
// when node is nil.
type entry struct {
	node  ast.Node
	conn  ast.Connective
	left  ast.Node
	depth int
}

func (e entry) partial() bool {
	return e.node == nil
}

type builder struct {
	tokens []string
	elems  []elem
	nodes  []entry
	depth  int
	pos    int
}

func (b *builder) fail(kind error, pos int, tok, msg string) error {
	return &ast.SyntaxError{Pos: pos, Token: tok, Msg: msg, Err: kind}
}

// malformed reports a structural error at the token being scanned.
func (b *builder) malformed(msg string) error {
	return b.fail(ast.ErrMalformedRule, b.pos, b.tokens[b.pos], msg)
}

// operand pops a trailing "field operator value" triple off the element
// stack. It returns nil when the current scope holds fewer than three raw
// elements.
func (b *builder) operand() (ast.Node, error) {
	n := len(b.elems)
	if n < 3 {
		return nil, nil
	}
	triple := b.elems[n-3:]
	for _, e := range triple {
		if e.tok == "(" {
			return nil, nil
		}
	}
	field, opTok, valTok := triple[0], triple[1], triple[2]

	if !isIdentifier(field.tok) {
		return nil, b.fail(ast.ErrMalformedRule, field.pos, field.tok, "invalid field name")
	}
	op, ok := ast.ParseOperator(opTok.tok)
	if !ok {
		return nil, b.fail(ast.ErrUnsupportedOperator, opTok.pos, opTok.tok, "not a comparison operator")
	}
	if isUnterminated(valTok.tok) {
		return nil, b.fail(ast.ErrMalformedRule, valTok.pos, valTok.tok, "unterminated string")
	}
	if !isLiteral(valTok.tok) {
		return nil, b.fail(ast.ErrMalformedRule, valTok.pos, valTok.tok, "invalid value")
	}

	b.elems = b.elems[:n-3]
	return ast.NewOperand(field.tok, op, ast.ParseLiteral(valTok.tok)), nil
}

// take returns the operand for the current scope: a trailing triple if
// present, else a completed node produced at the current depth.
func (b *builder) take() (ast.Node, error) {
	node, err := b.operand()
	if err != nil || node != nil {
		return node, err
	}
	if top, ok := b.top(); ok && !top.partial() && top.depth == b.depth {
		b.nodes = b.nodes[:len(b.nodes)-1]
		return top.node, nil
	}
	return nil, nil
}

func (b *builder) top() (entry, bool) {
	if len(b.nodes) == 0 {
		return entry{}, false
	}
	return b.nodes[len(b.nodes)-1], true
}

// completePending attaches right to a partial junction opened at the
// current depth. It reports false when there is none.
func (b *builder) completePending(right ast.Node) (ast.Node, bool) {
	top, ok := b.top()
	if !ok || !top.partial() || top.depth != b.depth {
		return nil, false
	}
	b.nodes = b.nodes[:len(b.nodes)-1]
	return ast.NewJunction(top.conn, top.left, right), true
}

func (b *builder) hasPending() bool {
	top, ok := b.top()
	return ok && top.partial() && top.depth == b.depth
}

func (b *builder) connective(conn ast.Connective) error {
	left, err := b.take()
	if err != nil {
		return err
	}
	if left == nil {
		return b.malformed("missing left operand")
	}
	if joined, ok := b.completePending(left); ok {
		left = joined
	}
	b.nodes = append(b.nodes, entry{conn: conn, left: left, depth: b.depth})
	return nil
}

func (b *builder) closeScope() error {
	if b.depth == 0 {
		return b.malformed("mismatched parenthesis")
	}
	result, err := b.take()
	if err != nil {
		return err
	}
	if b.hasPending() {
		if result == nil {
			return b.malformed("missing right operand")
		}
		result, _ = b.completePending(result)
	}
	if result == nil {
		return b.malformed("missing operand")
	}

	n := len(b.elems)
	if n == 0 || b.elems[n-1].tok != "(" {
		return b.malformed("mismatched parenthesis")
	}
	b.elems = b.elems[:n-1]
	b.depth--
	b.nodes = append(b.nodes, entry{node: result, depth: b.depth})
	return nil
}

func (b *builder) finish() (ast.Node, error) {
	if b.depth > 0 {
		return nil, b.fail(ast.ErrMalformedRule, -1, "", "unclosed parenthesis")
	}
	last, err := b.take()
	if err != nil {
		return nil, err
	}
	if b.hasPending() {
		if last == nil {
			return nil, b.fail(ast.ErrMalformedRule, -1, "", "missing right operand")
		}
		last, _ = b.completePending(last)
	}
	if last != nil {
		b.nodes = append(b.nodes, entry{node: last})
	}

	if len(b.elems) > 0 {
		e := b.elems[len(b.elems)-1]
		return nil, b.fail(ast.ErrMalformedRule, e.pos, e.tok, "unexpected token")
	}
	switch len(b.nodes) {
	case 0:
		return nil, b.fail(ast.ErrMalformedRule, -1, "", "empty rule")
	case 1:
		return b.nodes[0].node, nil
	default:
		return nil, b.fail(ast.ErrMalformedRule, -1, "",
			fmt.Sprintf("%d expressions not joined by AND/OR", len(b.nodes)))
	}
}

// isUnterminated reports whether tok opens a quote it never closes.
func isUnterminated(tok string) bool {
	return tok != "" && tok[0] == '\'' && (len(tok) < 2 || tok[len(tok)-1] != '\'')
}

// isLiteral reports whether tok can be a comparison value: an integer,
// a quoted string, or a bare word.
func isLiteral(tok string) bool {
	if tok == "" {
		return false
	}
	if tok[0] == '\'' {
		return !isUnterminated(tok)
	}
	if isDigit(tok[0]) {
		for i := 1; i < len(tok); i++ {
			if !isDigit(tok[i]) {
				return false
			}
		}
		return true
	}
	return isIdentifier(tok)
}
