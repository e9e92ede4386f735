package domain

import "errors"

// ErrStateNotFound is returned when a mutation references a state ID that does not exist.
var ErrStateNotFound = errors.New("state not found")

// ErrTransitionNotFound is returned when a mutation references a transition ID that does not exist.
var ErrTransitionNotFound = errors.New("transition not found")

// ErrDuplicateID is returned when adding a state or transition whose ID is already taken.
var ErrDuplicateID = errors.New("duplicate id")

// ErrReservedID is returned when a caller tries to use the entry marker's identity.
var ErrReservedID = errors.New("reserved id")

// ErrMalformedDocument is returned when an imported document misses required fields.
var ErrMalformedDocument = errors.New("malformed automaton document")

// ErrAutomatonNotFound is returned when an automaton ID cannot be found in the store.
var ErrAutomatonNotFound = errors.New("automaton not found")

// ErrUnsupportedKind is returned for unknown kinds or operations not defined for a kind.
var ErrUnsupportedKind = errors.New("unsupported automaton kind")

// ErrNotAllowed is returned when an editor policy forbids a kind or a transformation.
var ErrNotAllowed = errors.New("operation not allowed")

// ErrNoInitialState reports a model without a starting point.
var ErrNoInitialState = errors.New("automaton has no initial state")

// ErrExerciseNotFound is returned when the exercise library has no entry with the given ID.
var ErrExerciseNotFound = errors.New("exercise not found")
