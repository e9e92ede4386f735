package domain

// ChangeType defines the category of a model change.
type ChangeType string

const (
	ChangeStateAdded        ChangeType = "state_added"
	ChangeStateUpdated      ChangeType = "state_updated"
	ChangeStateRemoved      ChangeType = "state_removed"
	ChangeTransitionAdded   ChangeType = "transition_added"
	ChangeTransitionUpdated ChangeType = "transition_updated"
	ChangeTransitionRemoved ChangeType = "transition_removed"
	ChangeInitialMoved      ChangeType = "initial_moved"
	ChangeLoaded            ChangeType = "loaded"
)

// ChangeEvent notifies subscribers that a mutation completed.
// It is emitted after the invariants have been restored.
type ChangeEvent struct {
	Type         ChangeType `json:"type"`
	StateID      string     `json:"state_id,omitempty"`
	TransitionID string     `json:"transition_id,omitempty"`
	Revision     uint64     `json:"revision"`
}
