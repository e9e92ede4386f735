package domain

// EntryStateID is the fixed identity of the synthetic entry marker.
// The marker itself is owned by each automaton; only its ID is shared.
const EntryStateID = "__entry__"

// State is a node of the automaton.
type State struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`

	Final   bool `json:"isFinal" yaml:"isFinal"`
	Initial bool `json:"isInitial" yaml:"isInitial"`
}
