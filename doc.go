/*
Package tuerulebase decodes part codes against user-defined, tree-shaped
encoding rules.

A rule is a forest of typed nodes. STATIC nodes select among their OPTION
children by literal prefix, FIXED nodes match one literal, and INPUT/SERIAL
nodes take a fixed number of characters. Decoding walks each root depth
first and accepts the first path that consumes the whole code, splitting it
into labeled segments. Component-value shorthand such as "4K7" inside value
segments is rendered in human units ("4.7kΩ").

# Usage

The Engine reads trees from a ports.RuleStore. The in-memory store is the
default; SQLite and Redis adapters live under pkg/adapters.

	b := dsl.New()
	series := b.Rule("Resistors", 5).Static("Series").
		Option("A", "TypeA").
		Option("B", "TypeB")
	series.Fixed("Fixed9", "9").Input("Resistor Value", 3)

	store, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	eng := tuerulebase.New(tuerulebase.WithStore(store))
	res, err := eng.Decode(ctx, "B94K7", 0)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range res.Segments {
		fmt.Println(s.NodeName, s.Value, s.Meaning)
	}

Compose is the inverse: given a root-to-node path of picks it assembles the
code those picks describe.
*/
package tuerulebase
