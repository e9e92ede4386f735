package automaton

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format selects the serialization used by Export and Import.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Export serializes the automaton without its entry marker.
func (m *Model) Export(format Format) ([]byte, error) {
	return EncodeDocument(m.Document(), format)
}

// EncodeDocument serializes a document in the given format.
func EncodeDocument(doc domain.Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON, "":
		return json.MarshalIndent(doc, "", "  ")
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Import parses data and builds a new model. The kind declared in the
// document wins over the fallback kind.
func Import(fallback domain.Kind, data []byte, format Format, opts ...Option) (*Model, error) {
	doc, err := ParseDocument(data, format)
	if err != nil {
		return nil, err
	}
	kind := fallback
	if doc.Kind != "" {
		kind = doc.Kind
	}
	return New(kind, doc.States, doc.Transitions, opts...)
}

// ParseDocument decodes raw bytes into a checked Document.
func ParseDocument(data []byte, format Format) (domain.Document, error) {
	var raw map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &raw); err != nil {
			return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
		}
	default:
		return domain.Document{}, fmt.Errorf("unsupported format %q", format)
	}
	return DecodeDocument(raw)
}

type stateRecord struct {
	ID        *string `mapstructure:"id"`
	Label     string  `mapstructure:"label"`
	IsFinal   bool    `mapstructure:"isFinal"`
	IsInitial bool    `mapstructure:"isInitial"`
}

type transitionRecord struct {
	ID              *string                 `mapstructure:"id"`
	From            *string                 `mapstructure:"from"`
	To              *string                 `mapstructure:"to"`
	Label           string                  `mapstructure:"label"`
	Symbols         *[]string               `mapstructure:"symbols"`
	StackOperations []domain.StackOperation `mapstructure:"stackOperations"`
}

type documentRecord struct {
	Kind        string              `mapstructure:"kind"`
	States      *[]stateRecord      `mapstructure:"states"`
	Transitions *[]transitionRecord `mapstructure:"transitions"`
}

// DecodeDocument converts a generic map (as produced by JSON, YAML or
// frontmatter parsers) into a Document. Every state needs an id; every
// transition needs id, from, to and symbols, and must reference known states.
func DecodeDocument(raw map[string]any) (domain.Document, error) {
	if raw == nil {
		return domain.Document{}, fmt.Errorf("%w: empty document", domain.ErrMalformedDocument)
	}
	var rec documentRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rec,
	})
	if err != nil {
		return domain.Document{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrMalformedDocument, err)
	}
	if rec.States == nil {
		return domain.Document{}, fmt.Errorf("%w: states are required", domain.ErrMalformedDocument)
	}
	if rec.Transitions == nil {
		return domain.Document{}, fmt.Errorf("%w: transitions are required", domain.ErrMalformedDocument)
	}

	doc := domain.Document{
		States:      make([]domain.State, 0, len(*rec.States)),
		Transitions: make([]domain.Transition, 0, len(*rec.Transitions)),
	}
	if rec.Kind != "" {
		kind, err := domain.ParseKind(rec.Kind)
		if err != nil {
			return domain.Document{}, err
		}
		doc.Kind = kind
	}

	ids := make(map[string]bool, len(*rec.States))
	for i, s := range *rec.States {
		if s.ID == nil || *s.ID == "" {
			return domain.Document{}, fmt.Errorf("%w: states[%d].id is required", domain.ErrMalformedDocument, i)
		}
		if ids[*s.ID] {
			return domain.Document{}, fmt.Errorf("%w: duplicate state id %q", domain.ErrMalformedDocument, *s.ID)
		}
		ids[*s.ID] = true
		doc.States = append(doc.States, domain.State{
			ID:      *s.ID,
			Label:   s.Label,
			Final:   s.IsFinal,
			Initial: s.IsInitial,
		})
	}

	seen := make(map[string]bool, len(*rec.Transitions))
	for i, t := range *rec.Transitions {
		switch {
		case t.ID == nil || *t.ID == "":
			return domain.Document{}, fmt.Errorf("%w: transitions[%d].id is required", domain.ErrMalformedDocument, i)
		case t.From == nil:
			return domain.Document{}, fmt.Errorf("%w: transitions[%d].from is required", domain.ErrMalformedDocument, i)
		case t.To == nil:
			return domain.Document{}, fmt.Errorf("%w: transitions[%d].to is required", domain.ErrMalformedDocument, i)
		case t.Symbols == nil:
			return domain.Document{}, fmt.Errorf("%w: transitions[%d].symbols is required", domain.ErrMalformedDocument, i)
		}
		if seen[*t.ID] {
			return domain.Document{}, fmt.Errorf("%w: duplicate transition id %q", domain.ErrMalformedDocument, *t.ID)
		}
		seen[*t.ID] = true
		if !ids[*t.From] || !ids[*t.To] {
			return domain.Document{}, fmt.Errorf("%w: transition %q references an unknown state", domain.ErrMalformedDocument, *t.ID)
		}
		for j, op := range t.StackOperations {
			if !op.Operation.Valid() {
				return domain.Document{}, fmt.Errorf("%w: transitions[%d].stackOperations[%d] has unknown operation %q",
					domain.ErrMalformedDocument, i, j, op.Operation)
			}
		}
		doc.Transitions = append(doc.Transitions, domain.Transition{
			ID:              *t.ID,
			From:            *t.From,
			To:              *t.To,
			Symbols:         append([]string{}, (*t.Symbols)...),
			StackOperations: t.StackOperations,
		})
	}
	return doc, nil
}
