package ast

import (
	"strconv"
)

// Kind identifies which member of a Value is set.
type Kind int

const (
	// KindInt marks an integer value.
	KindInt Kind = iota
	// KindString marks a string value.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is the right-hand literal of a comparison: an integer or a string.
type Value struct {
	Kind Kind
	Int  int64
	Str  string
}

// IntValue returns an integer Value.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// ParseLiteral converts a raw value token into a Value.
// Tokens accepted by strconv.ParseInt become integers. Anything else is a
// string, with one layer of single quotes removed when the token is longer
// than the two quotes themselves.
func ParseLiteral(tok string) Value {
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return IntValue(i)
	}
	if len(tok) > 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		return StringValue(tok[1 : len(tok)-1])
	}
	return StringValue(tok)
}

// Any returns the Go value held: int64 or string.
func (v Value) Any() any {
	if v.Kind == KindInt {
		return v.Int
	}
	return v.Str
}

// String renders ints in decimal and strings single-quoted, so that
// ParseLiteral(v.String()) == v for every value a rule can produce. The
// literal '' is its own rendering. Rules have no escape syntax: the empty
// string and strings holding a quote, which only decoded trees can carry,
// do not read back unchanged.
func (v Value) String() string {
	if v.Kind == KindInt {
		return strconv.FormatInt(v.Int, 10)
	}
	if v.Str == "''" {
		return v.Str
	}
	return "'" + v.Str + "'"
}
