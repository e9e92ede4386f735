/*
Package dsl provides a fluent Go builder for automata.

It is an alternative to JSON or YAML documents when an automaton is built in
code: tests, generated exercises or examples.

Example usage:

	b := dsl.New(domain.KindPDA)

	b.Add("q0").Initial().
		On("a").Push("A").Go("q0").
		On("b").Pop("A").Go("q1")

	b.Add("q1").
		On("b").Pop("A").Go("q1").
		Epsilon().Empty().Go("q2")

	b.Add("q2").Final()

	m, err := b.Build()

States referenced by Go are created on demand, so declaration order only
affects the order of states in the resulting document.
*/
package dsl
