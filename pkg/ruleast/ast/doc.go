// Package ast defines the rule tree: comparison literals, the closed set of
// operators and connectives, the Operand/Junction node variants, the error
// kinds shared by the builder and evaluator, and a JSON encoding of trees.
package ast
