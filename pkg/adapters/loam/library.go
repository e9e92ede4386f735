package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/loam"
)

// Library adapts a Loam repository to ports.ExerciseLibrary.
// Every markdown, JSON or YAML document in the repository is one exercise.
type Library struct {
	Repo *loam.TypedRepository[ExerciseMetadata]
}

// New creates a new Loam exercise library.
func New(repo *loam.TypedRepository[ExerciseMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Library, error) {
	repo, err := loam.Init(path, loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open exercise library %s: %w", path, err)
	}
	return New(loam.NewTypedRepository[ExerciseMetadata](repo)), nil
}

// List returns every exercise ordered by ID.
func (l *Library) List(ctx context.Context) ([]domain.Exercise, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	out := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		ex, err := toExercise(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[ex.ID]; ok {
			return nil, fmt.Errorf("collision detected: exercise '%s' is defined in both '%s' and '%s'", ex.ID, existing, doc.ID)
		}
		seen[ex.ID] = doc.ID
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get retrieves one exercise. Lookups accept the ID with or without extension.
func (l *Library) Get(ctx context.Context, id string) (domain.Exercise, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err == nil {
		return toExercise(doc.ID, doc.Data, doc.Content)
	}

	// explicit frontmatter IDs need not match the file name
	all, listErr := l.List(ctx)
	if listErr != nil {
		return domain.Exercise{}, listErr
	}
	want := trimExtension(id)
	for _, ex := range all {
		if ex.ID == want {
			return ex, nil
		}
	}
	return domain.Exercise{}, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, id)
}

func toExercise(docID string, meta ExerciseMetadata, content string) (domain.Exercise, error) {
	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	id := trimExtension(rawID)

	if meta.Kind == "" {
		return domain.Exercise{}, fmt.Errorf("%w: exercise %s has no kind", domain.ErrMalformedDocument, id)
	}
	raw := map[string]any{"kind": meta.Kind}
	if meta.States != nil {
		raw["states"] = meta.States
	}
	if meta.Transitions != nil {
		raw["transitions"] = meta.Transitions
	}
	doc, err := automaton.DecodeDocument(raw)
	if err != nil {
		return domain.Exercise{}, fmt.Errorf("exercise %s: %w", id, err)
	}

	title := meta.Title
	if title == "" {
		title = id
	}
	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}
	return domain.Exercise{
		ID:          id,
		Title:       title,
		Description: description,
		Document:    doc,
		TestWords:   meta.TestWords,
	}, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
