package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/automata/pkg/domain"
)

// Library implements ports.ExerciseLibrary over a fixed set of exercises.
type Library struct {
	exercises map[string]domain.Exercise
}

// NewLibrary creates a library from domain objects. IDs must be unique.
func NewLibrary(exercises ...domain.Exercise) (*Library, error) {
	l := &Library{exercises: make(map[string]domain.Exercise, len(exercises))}
	for _, ex := range exercises {
		if ex.ID == "" {
			return nil, fmt.Errorf("exercise %q has no id", ex.Title)
		}
		if _, dup := l.exercises[ex.ID]; dup {
			return nil, fmt.Errorf("%w: exercise %s", domain.ErrDuplicateID, ex.ID)
		}
		l.exercises[ex.ID] = ex
	}
	return l, nil
}

// Get retrieves an exercise by ID.
func (l *Library) Get(ctx context.Context, id string) (domain.Exercise, error) {
	ex, ok := l.exercises[id]
	if !ok {
		return domain.Exercise{}, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, id)
	}
	ex.Document = copyDocument(ex.Document)
	return ex, nil
}

// List returns every exercise ordered by ID.
func (l *Library) List(ctx context.Context) ([]domain.Exercise, error) {
	out := make([]domain.Exercise, 0, len(l.exercises))
	for _, ex := range l.exercises {
		ex.Document = copyDocument(ex.Document)
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
