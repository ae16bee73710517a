package ast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Node type tags used in the JSON encoding.
const (
	TypeOperand  = "operand"
	TypeOperator = "operator"
)

// wireNode is the JSON shape of a Node.
type wireNode struct {
	Type       string          `json:"type"`
	Field      string          `json:"field,omitempty"`
	Operator   string          `json:"operator,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	Connective string          `json:"connective,omitempty"`
	Left       *wireNode       `json:"left,omitempty"`
	Right      *wireNode       `json:"right,omitempty"`
}

// ErrInvalidEncoding indicates JSON that does not describe a complete tree.
var ErrInvalidEncoding = errors.New("invalid tree encoding")

// Marshal encodes a tree as JSON.
func Marshal(n Node) ([]byte, error) {
	w, err := toWire(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Unmarshal decodes a tree produced by Marshal.
// Operators and connectives are validated and every junction must have
// both children.
func Unmarshal(data []byte) (Node, error) {
	var w wireNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode tree: %w", err)
	}
	return fromWire(&w)
}

func toWire(n Node) (*wireNode, error) {
	switch n := n.(type) {
	case *Operand:
		c := n.Comparison
		raw, err := json.Marshal(c.Value.Any())
		if err != nil {
			return nil, err
		}
		return &wireNode{
			Type:     TypeOperand,
			Field:    c.Field,
			Operator: c.Op.String(),
			Value:    raw,
		}, nil
	case *Junction:
		if n.Left == nil || n.Right == nil {
			return nil, fmt.Errorf("%w: junction %s missing child", ErrInvalidEncoding, n.Conn)
		}
		left, err := toWire(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := toWire(n.Right)
		if err != nil {
			return nil, err
		}
		return &wireNode{
			Type:       TypeOperator,
			Connective: n.Conn.String(),
			Left:       left,
			Right:      right,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected node %T", ErrInvalidEncoding, n)
	}
}

func fromWire(w *wireNode) (Node, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: missing node", ErrInvalidEncoding)
	}
	switch w.Type {
	case TypeOperand:
		if w.Field == "" {
			return nil, fmt.Errorf("%w: operand without field", ErrInvalidEncoding)
		}
		op, ok := ParseOperator(w.Operator)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, w.Operator)
		}
		v, err := decodeValue(w.Value)
		if err != nil {
			return nil, err
		}
		return NewOperand(w.Field, op, v), nil
	case TypeOperator:
		conn, ok := ParseConnective(w.Connective)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, w.Connective)
		}
		left, err := fromWire(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := fromWire(w.Right)
		if err != nil {
			return nil, err
		}
		return NewJunction(conn, left, right), nil
	default:
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidEncoding, w.Type)
	}
}

func decodeValue(raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, fmt.Errorf("%w: value: %v", ErrInvalidEncoding, err)
	}
	switch v := v.(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: non-integer value %s", ErrInvalidEncoding, v)
		}
		return IntValue(i), nil
	case string:
		return StringValue(v), nil
	default:
		return Value{}, fmt.Errorf("%w: value of type %T", ErrInvalidEncoding, v)
	}
}
