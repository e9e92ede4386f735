/*
Package automata is an editing, simulation and conversion engine for finite
and pushdown automata (DFA, NFA, PDA).

The engine keeps the automaton well-formed while it is edited, reports
structural problems as diagnostics, runs words to completion or step by step
with undo and timed animation, and converts automata between classes.

# Packages

  - pkg/domain: plain types (State, Transition, Diagnostic, Result, ...).
  - pkg/automaton: the Model, its invariants, queries and the JSON/YAML format.
  - pkg/validator: per-kind structural checks.
  - pkg/simulator: frontier based execution, stepping and animation.
  - pkg/transform: DFA/NFA/PDA conversions and sink completion.

The Editor in this package ties them together the way an interactive editor
uses them: it owns the current model, enforces which kinds and
transformations are allowed and swaps the model after a conversion.

# Usage

	m, err := automaton.New(domain.KindNFA, states, transitions)
	if err != nil {
		log.Fatal(err)
	}

	ed, err := automata.New(m)
	if err != nil {
		log.Fatal(err)
	}

	for _, d := range ed.Check() {
		fmt.Println(d.Severity, d.Message)
	}

	res := ed.Simulate("aab")
	fmt.Println(res.Success, res.Message)

	// Subset construction; the editor now holds a DFA.
	if err := ed.SwitchKind(domain.KindDFA); err != nil {
		log.Fatal(err)
	}

Adapters under pkg/adapters expose the same operations over HTTP, MCP and
several stores (memory, files, Redis, bbolt).
*/
package automata
