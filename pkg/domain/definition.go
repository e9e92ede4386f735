package domain

import (
	"fmt"
	"strings"
)

// Tuple is one entry of the transition relation, expressed with state labels.
type Tuple struct {
	From   string `json:"from"`
	Symbol string `json:"symbol"`
	To     string `json:"to"`
}

// FormalDefinition is the read-only mathematical view of an automaton.
// It is recomputed on every request.
type FormalDefinition struct {
	Kind        Kind     `json:"kind"`
	States      []string `json:"states"`
	Alphabet    []string `json:"alphabet"`
	Transitions []Tuple  `json:"transitions"`
	Initial     string   `json:"initial"`
	Finals      []string `json:"finals"`
}

// TransitionsString renders the relation as "(q0,a): q1; (q1,b): q0".
func (f FormalDefinition) TransitionsString() string {
	parts := make([]string, 0, len(f.Transitions))
	for _, t := range f.Transitions {
		parts = append(parts, fmt.Sprintf("(%s,%s): %s", t.From, SymbolLabel(t.Symbol), t.To))
	}
	return strings.Join(parts, "; ")
}

// Markdown renders the definition as a small markdown document.
func (f FormalDefinition) Markdown() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", f.Kind))
	sb.WriteString(fmt.Sprintf("- **Alphabet:** %s\n", strings.Join(f.Alphabet, ", ")))
	sb.WriteString(fmt.Sprintf("- **States:** %s\n", strings.Join(f.States, ", ")))
	sb.WriteString(fmt.Sprintf("- **Transitions:** %s\n", f.TransitionsString()))
	sb.WriteString(fmt.Sprintf("- **Initial State:** %s\n", f.Initial))
	sb.WriteString(fmt.Sprintf("- **Final States:** %s\n", strings.Join(f.Finals, ", ")))
	return sb.String()
}

// TableRow holds the targets of one state, one cell per table symbol.
type TableRow struct {
	State string     `json:"state"`
	Cells [][]string `json:"cells"`
}

// TransitionTable is the state x symbol view of the transition relation.
type TransitionTable struct {
	Symbols []string   `json:"symbols"`
	Rows    []TableRow `json:"rows"`
}

// Markdown renders the table with an ε column header for the empty symbol.
func (t TransitionTable) Markdown() string {
	var sb strings.Builder
	sb.WriteString("| |")
	for _, s := range t.Symbols {
		sb.WriteString(" " + SymbolLabel(s) + " |")
	}
	sb.WriteString("\n|---|")
	for range t.Symbols {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		sb.WriteString("| **" + row.State + "** |")
		for _, cell := range row.Cells {
			sb.WriteString(" " + strings.Join(cell, ",") + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
