package ast

// Operator is one of the six supported comparison operators.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

var operatorSymbols = [...]string{
	OpEqual:        "=",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
}

// ParseOperator maps a comparison symbol to its Operator.
func ParseOperator(s string) (Operator, bool) {
	for op, sym := range operatorSymbols {
		if sym == s {
			return Operator(op), true
		}
	}
	return 0, false
}

// Valid reports whether op is one of the defined operators.
func (op Operator) Valid() bool {
	return op >= OpEqual && op <= OpGreaterEqual
}

// Ordering reports whether op compares by order rather than equality.
func (op Operator) Ordering() bool {
	return op != OpEqual && op != OpNotEqual
}

// String returns the operator symbol.
func (op Operator) String() string {
	if !op.Valid() {
		return "?"
	}
	return operatorSymbols[op]
}

// Connective joins two sub-results.
type Connective int

const (
	And Connective = iota
	Or
)

// ParseConnective maps "AND" or "OR" to its Connective.
func ParseConnective(s string) (Connective, bool) {
	switch s {
	case "AND":
		return And, true
	case "OR":
		return Or, true
	default:
		return 0, false
	}
}

// Valid reports whether c is And or Or.
func (c Connective) Valid() bool {
	return c == And || c == Or
}

// String returns "AND" or "OR".
func (c Connective) String() string {
	switch c {
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return "?"
	}
}
