/*
Package parser turns rule text into trees.

# Grammar

A rule is a sequence of comparisons joined by AND/OR, grouped with
parentheses:

	<rule>       := <term> { ('AND' | 'OR') <term> }
	<term>       := <comparison> | '(' <rule> ')'
	<comparison> := identifier <op> <value>
	<op>         := '=' | '!=' | '<' | '<=' | '>' | '>='
	<value>      := integer | 'string' | "string" | identifier

AND and OR have no relative precedence. Connectives at the same nesting
level chain to the left:

	a = 1 AND b = 2 OR c = 3      // ((a = 1 AND b = 2) OR c = 3)
	a = 1 AND (b = 2 OR c = 3)    // (a = 1 AND (b = 2 OR c = 3))

# Values

An unquoted run of digits is an integer. Everything else is a string; one
layer of quotes is removed, so '42' is the string "42".

# Combining

Combine joins independently built trees with AND, left to right:

	a, _ := parser.Build("age > 30")
	b, _ := parser.Build("dept = 'Sales'")
	tree := parser.Combine(a, b) // (age > 30 AND dept = 'Sales')
*/
package parser
