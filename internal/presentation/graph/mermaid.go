package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/automata/pkg/automaton"
)

// Overlay marks what a simulation step touched.
type Overlay struct {
	ActiveStates []string
	Transitions  []string
}

// GenerateMermaid renders the automaton as a Mermaid flowchart:
// - Final: (((Double circle)))
// - Other: ((Circle))
// - Initial: an arrow from an unlabeled entry point
// Edges carry the canonical transition label. Overlay styles the active
// states and the fired transitions when provided.
func GenerateMermaid(m *automaton.Model, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, s := range m.States() {
		opener, closer := "((", "))"
		if s.Final {
			opener, closer = "(((", ")))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", sanitizeMermaidID(s.ID), opener, escape(s.Label), closer))
	}

	edge := 0
	if initial, ok := m.InitialState(); ok {
		sb.WriteString("    __entry[ ]:::entry\n")
		sb.WriteString(fmt.Sprintf("    __entry --> %s\n", sanitizeMermaidID(initial.ID)))
		edge++
	}

	edges := make(map[string]int)
	for _, t := range m.Transitions() {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(t.From), escape(t.Label), sanitizeMermaidID(t.To)))
		edges[t.ID] = edge
		edge++
	}

	sb.WriteString("    classDef entry fill:none,stroke:none;\n")

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// black text stays readable on light fills in both themes
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.ActiveStates {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			if _, ok := m.State(id); !ok {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s active;\n", safeID))
		}
		for _, id := range overlay.Transitions {
			if i, ok := edges[id]; ok {
				sb.WriteString(fmt.Sprintf("    linkStyle %d stroke:#fbc02d,stroke-width:4px;\n", i))
			}
		}
	}

	return sb.String()
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
