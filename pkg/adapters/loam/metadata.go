package loam

// ExerciseMetadata is the frontmatter of an exercise document.
// The body of the document becomes the description when the
// frontmatter has none.
type ExerciseMetadata struct {
	ID          string           `json:"id" mapstructure:"id"`
	Title       string           `json:"title" mapstructure:"title"`
	Description string           `json:"description" mapstructure:"description"`
	Kind        string           `json:"kind" mapstructure:"kind"`
	States      []map[string]any `json:"states" mapstructure:"states"`
	Transitions []map[string]any `json:"transitions" mapstructure:"transitions"`

	// TestWords are suggested inputs; quote them in YAML so "0011" stays a string.
	TestWords []string `json:"test_words" mapstructure:"test_words"`
}
