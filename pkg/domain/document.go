package domain

// Document is the portable representation of an automaton.
// The entry marker and its transition never appear in it.
type Document struct {
	Kind        Kind         `json:"kind,omitempty" yaml:"kind,omitempty"`
	States      []State      `json:"states" yaml:"states"`
	Transitions []Transition `json:"transitions" yaml:"transitions"`
}
