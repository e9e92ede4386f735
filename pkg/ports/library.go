package ports

import (
	"context"

	"github.com/aretw0/automata/pkg/domain"
)

// ExerciseLibrary is a read-only source of exercises.
type ExerciseLibrary interface {
	// List returns every exercise, ordered by ID.
	List(ctx context.Context) ([]domain.Exercise, error)

	// Get retrieves one exercise.
	// Returns domain.ErrExerciseNotFound if the ID does not exist.
	Get(ctx context.Context, id string) (domain.Exercise, error)
}
