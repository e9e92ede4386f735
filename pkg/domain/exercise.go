package domain

// Exercise is an entry of the exercise library: a ready-made automaton plus
// words to try on it.
type Exercise struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Document    Document `json:"document"`
	TestWords   []string `json:"test_words,omitempty"`
}
