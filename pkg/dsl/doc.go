/*
Package dsl provides a fluent builder for rule trees.

It is meant for tests, examples and seeding, where writing domain.Node values
by hand obscures the tree's shape:

	b := dsl.New()
	series := b.Rule("Resistors", 5).Static("Series").
		Option("A", "TypeA").
		Option("B", "TypeB")
	series.Fixed("Fixed9", "9").Input("Resistor Value", 3)

	store, err := b.Build()
*/
package dsl
