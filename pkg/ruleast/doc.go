/*
Package ruleast turns textual business rules into expression trees and
evaluates them against records.

# Overview

A rule is a boolean combination of field comparisons:

	((age > 30 AND department = 'Sales') OR age < 25) AND salary > 50000

CreateRule tokenizes and builds the rule into an ast.Node. Evaluate runs a
rule against a record (map[string]any) and CombineRules joins several rules
with AND.

# Basic Usage

	tree, err := ruleast.CreateRule("(age > 30 AND department = 'Sales')")
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(tree) // (age > 30 AND department = 'Sales')

	ok, err := ruleast.EvaluateTree(tree, map[string]any{"age": 35, "department": "Sales"})
	// ok == true

# Missing Fields

Evaluation is three-valued. A comparison on a field absent from the record
is unknown, and a junction with one unknown side takes the other side's
result. A rule that ends up unknown passes:

	ok, _ := ruleast.Evaluate("age > 30", map[string]any{}) // true

# Errors

Failures wrap one of three sentinels, matched with errors.Is:

	ErrMalformedRule        unbalanced parentheses, missing operands, leftover tokens
	ErrUnsupportedOperator  a comparison operator other than = != < <= > >=
	ErrTypeMismatch         a record value that cannot be compared with the literal

Use errors.As with *ast.SyntaxError or *ast.ComparisonError for details.

# Observability

A Manager carries a logger, OpenTelemetry metrics and tracing, and an
optional cache of built trees:

	m := ruleast.New(
	    ruleast.WithLogger(logger),
	    ruleast.WithMetrics(true),
	    ruleast.WithTracing(true),
	    ruleast.WithCache(1024),
	)
	ok, err := m.Evaluate(ctx, rule, record)

The package-level functions use a Manager with a default logger and
observability disabled.

# Thread Safety

Trees are immutable once built and may be evaluated concurrently. Manager
methods are safe for concurrent use.
*/
package ruleast
