package domain

// Result is the outcome of a simulation run or of a single step.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// FinalStep is set by forward steps once the whole word has been consumed.
	FinalStep bool `json:"finalStep,omitempty"`
}
