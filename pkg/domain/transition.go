package domain

import "strings"

// Epsilon is the empty input symbol. A transition carrying it (or no symbol at all)
// moves without consuming input.
const Epsilon = ""

// EpsilonLabel is how the empty symbol is rendered for display.
const EpsilonLabel = "ε"

// StackOp names the effect a transition has on the pushdown stack.
type StackOp string

const (
	OpPush  StackOp = "push"  // push Symbol on top
	OpPop   StackOp = "pop"   // requires Symbol on top, removes it
	OpEmpty StackOp = "empty" // requires an empty stack
	OpNone  StackOp = "none"  // leaves the stack untouched
)

// Valid reports whether op is a known stack operation.
func (op StackOp) Valid() bool {
	switch op {
	case OpPush, OpPop, OpEmpty, OpNone:
		return true
	}
	return false
}

// StackOperation is one step of a pushdown transition's stack program.
type StackOperation struct {
	Symbol    string  `json:"symbol" yaml:"symbol" mapstructure:"symbol"`
	Operation StackOp `json:"operation" yaml:"operation" mapstructure:"operation"`
}

func (o StackOperation) String() string {
	switch o.Operation {
	case OpPush, OpPop:
		return string(o.Operation) + "(" + o.Symbol + ")"
	case OpEmpty:
		return "empty"
	case OpNone:
		return "none"
	}
	return string(o.Operation)
}

// Transition is an edge between two states.
type Transition struct {
	ID    string `json:"id" yaml:"id"`
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Symbols holds the input symbols accepted by this edge, in display order.
	Symbols []string `json:"symbols" yaml:"symbols"`

	// StackOperations is only meaningful for pushdown automata.
	StackOperations []StackOperation `json:"stackOperations,omitempty" yaml:"stackOperations,omitempty"`
}

// IsEpsilon reports whether the transition can fire without consuming input.
func (t Transition) IsEpsilon() bool {
	if len(t.Symbols) == 0 {
		return true
	}
	for _, s := range t.Symbols {
		if s == Epsilon {
			return true
		}
	}
	return false
}

// Accepts reports whether the transition carries the given non-empty symbol.
func (t Transition) Accepts(symbol string) bool {
	for _, s := range t.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate slices freely.
func (t Transition) Clone() Transition {
	c := t
	if t.Symbols != nil {
		c.Symbols = append([]string(nil), t.Symbols...)
	}
	if t.StackOperations != nil {
		c.StackOperations = append([]StackOperation(nil), t.StackOperations...)
	}
	return c
}

// NormalizeSymbols deduplicates symbols keeping the first occurrence order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// SymbolLabel renders a single symbol for display.
func SymbolLabel(s string) string {
	if s == Epsilon {
		return EpsilonLabel
	}
	return s
}

// Label renders the canonical label of a transition for the given kind.
// Finite automata show the symbols ("a, b"); pushdown automata append the
// stack program ("a | pop(X), push(Y)"), omitting no-op operations.
func Label(kind Kind, t Transition) string {
	symbols := make([]string, 0, len(t.Symbols))
	for _, s := range NormalizeSymbols(t.Symbols) {
		symbols = append(symbols, SymbolLabel(s))
	}
	if len(symbols) == 0 {
		symbols = append(symbols, EpsilonLabel)
	}
	label := strings.Join(symbols, ", ")
	if !kind.UsesStack() {
		return label
	}

	ops := make([]string, 0, len(t.StackOperations))
	for _, op := range t.StackOperations {
		if op.Operation == OpNone {
			continue
		}
		ops = append(ops, op.String())
	}
	if len(ops) == 0 {
		return label
	}
	return label + " | " + strings.Join(ops, ", ")
}
