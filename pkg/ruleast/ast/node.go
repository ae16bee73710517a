package ast

// Comparison is a single field/operator/value test.
type Comparison struct {
	Field string
	Op    Operator
	Value Value
}

// String renders "field op value".
func (c Comparison) String() string {
	return c.Field + " " + c.Op.String() + " " + c.Value.String()
}

// Node is a node of a rule tree: either *Operand or *Junction.
// Trees are immutable once returned by a builder and may be read
// concurrently.
type Node interface {
	// String renders the subtree deterministically.
	String() string

	node()
}

// Operand is a leaf wrapping one comparison.
type Operand struct {
	Comparison Comparison
}

// Junction joins two subtrees with a connective.
// Both children are always set on trees returned by this module.
type Junction struct {
	Conn  Connective
	Left  Node
	Right Node
}

func (*Operand) node()  {}
func (*Junction) node() {}

// NewOperand returns a leaf for the given comparison.
func NewOperand(field string, op Operator, v Value) *Operand {
	return &Operand{Comparison: Comparison{Field: field, Op: op, Value: v}}
}

// NewJunction returns an internal node joining left and right.
func NewJunction(conn Connective, left, right Node) *Junction {
	return &Junction{Conn: conn, Left: left, Right: right}
}

// String renders the comparison.
func (o *Operand) String() string {
	return o.Comparison.String()
}

// String renders "(left CONN right)".
func (j *Junction) String() string {
	return "(" + j.Left.String() + " " + j.Conn.String() + " " + j.Right.String() + ")"
}

// Walk visits n and its descendants depth-first, left before right.
// Returning false from fn stops the walk below that node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if j, ok := n.(*Junction); ok {
		Walk(j.Left, fn)
		Walk(j.Right, fn)
	}
}

// Fields returns the distinct field names referenced by n in first-seen order.
func Fields(n Node) []string {
	seen := make(map[string]bool)
	var fields []string
	Walk(n, func(n Node) bool {
		if o, ok := n.(*Operand); ok && !seen[o.Comparison.Field] {
			seen[o.Comparison.Field] = true
			fields = append(fields, o.Comparison.Field)
		}
		return true
	})
	return fields
}
