package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Node {
	return NewJunction(Or,
		NewJunction(And,
			NewOperand("age", OpGreater, IntValue(30)),
			NewOperand("department", OpEqual, StringValue("Sales")),
		),
		NewOperand("age", OpLess, IntValue(25)),
	)
}

func TestNode_String(t *testing.T) {
	assert.Equal(t, "age > 30", NewOperand("age", OpGreater, IntValue(30)).String())
	assert.Equal(t,
		"((age > 30 AND department = 'Sales') OR age < 25)",
		sampleTree().String())
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"age", "department"}, Fields(sampleTree()))
	assert.Nil(t, Fields(nil))
}

func TestWalk_Stop(t *testing.T) {
	var visited int
	Walk(sampleTree(), func(n Node) bool {
		visited++
		_, isJunction := n.(*Junction)
		return !isJunction || visited == 1
	})
	// root, inner junction (stopped), right operand
	assert.Equal(t, 3, visited)
}

func TestMarshal_RoundTrip(t *testing.T) {
	tree := sampleTree()

	data, err := Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "operator",
		"connective": "OR",
		"left": {
			"type": "operator",
			"connective": "AND",
			"left": {"type": "operand", "field": "age", "operator": ">", "value": 30},
			"right": {"type": "operand", "field": "department", "operator": "=", "value": "Sales"}
		},
		"right": {"type": "operand", "field": "age", "operator": "<", "value": 25}
	}`, string(data))

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, tree, decoded)
}

func TestMarshal_PartialJunction(t *testing.T) {
	_, err := Marshal(&Junction{Conn: And, Left: NewOperand("a", OpEqual, IntValue(1))})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestUnmarshal_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"bad operator", `{"type":"operand","field":"a","operator":"==","value":1}`, ErrUnsupportedOperator},
		{"bad connective", `{"type":"operator","connective":"XOR","left":{"type":"operand","field":"a","operator":"=","value":1},"right":{"type":"operand","field":"a","operator":"=","value":1}}`, ErrUnsupportedOperator},
		{"missing right", `{"type":"operator","connective":"AND","left":{"type":"operand","field":"a","operator":"=","value":1}}`, ErrInvalidEncoding},
		{"fractional value", `{"type":"operand","field":"a","operator":"=","value":1.5}`, ErrInvalidEncoding},
		{"bool value", `{"type":"operand","field":"a","operator":"=","value":true}`, ErrInvalidEncoding},
		{"missing field", `{"type":"operand","operator":"=","value":1}`, ErrInvalidEncoding},
		{"unknown type", `{"type":"leaf"}`, ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSyntaxError(t *testing.T) {
	err := &SyntaxError{Pos: 3, Token: ")", Msg: "mismatched parenthesis", Err: ErrMalformedRule}
	assert.ErrorIs(t, err, ErrMalformedRule)
	assert.Equal(t, `malformed rule: mismatched parenthesis at token 3 ")"`, err.Error())

	end := &SyntaxError{Pos: -1, Msg: "unclosed parenthesis", Err: ErrMalformedRule}
	assert.Equal(t, "malformed rule: unclosed parenthesis at end of rule", end.Error())
}

func TestComparisonError(t *testing.T) {
	err := &ComparisonError{Field: "age", Op: OpGreater, Want: IntValue(30), Got: "old", Err: ErrTypeMismatch}
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "age > 30")
	assert.Contains(t, err.Error(), "(string)")
}
