package domain

import (
	"fmt"
	"strings"
)

// Kind identifies the class of an automaton.
type Kind string

const (
	KindDFA Kind = "dfa" // Deterministic finite automaton
	KindNFA Kind = "nfa" // Nondeterministic finite automaton, epsilon moves allowed
	KindPDA Kind = "pda" // Pushdown automaton
)

// Kinds lists every supported automaton class in display order.
var Kinds = []Kind{KindDFA, KindNFA, KindPDA}

// ParseKind converts a user-supplied name ("DFA", "nfa", ...) into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDFA, KindNFA, KindPDA:
		return true
	}
	return false
}

// UsesStack reports whether transitions of this kind carry stack operations.
func (k Kind) UsesStack() bool {
	return k == KindPDA
}

func (k Kind) String() string {
	return strings.ToUpper(string(k))
}
