package ports

import (
	"context"

	"github.com/aretw0/automata/pkg/domain"
)

// AutomatonStore defines how automata are persisted between sessions.
// Documents never contain the entry marker.
type AutomatonStore interface {
	// Save persists the document under the given ID, replacing any previous one.
	Save(ctx context.Context, id string, doc domain.Document) error

	// Load retrieves a document.
	// Returns domain.ErrAutomatonNotFound if the ID does not exist.
	Load(ctx context.Context, id string) (domain.Document, error)

	// Delete removes a document. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the stored IDs.
	List(ctx context.Context) ([]string, error)
}
