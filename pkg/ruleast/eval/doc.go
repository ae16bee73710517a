/*
Package eval evaluates rule trees against records.

# Three-valued results

Resolve returns Unknown, False or True. A comparison on a field that the
record does not contain is Unknown. Junctions absorb Unknown:

	Unknown AND x  ==  x
	Unknown OR  x  ==  x
	Unknown AND Unknown == Unknown

This is not SQL NULL logic: a missing field never makes a conjunction
false.

Evaluate collapses the outcome to a bool and returns false only for an
explicit False:

	tree, _ := parser.Build("age > 30")
	eval.Evaluate(tree, eval.Record{"age": 35}) // true
	eval.Evaluate(tree, eval.Record{"age": 20}) // false
	eval.Evaluate(tree, eval.Record{})          // true, age is absent

# Comparisons

Comparisons read "record value, operator, rule literal". Integers compare
numerically and strings compare bytewise. Record values must be integers
(any Go integer type, or a whole float as produced by encoding/json) or
strings; other types fail with ast.ErrTypeMismatch.

An integer and a string are never equal: "=" is false and "!=" is true.
Ordering an integer against a string fails with ast.ErrTypeMismatch.
*/
package eval
