package automata

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/aretw0/automata/pkg/transform"
	"github.com/aretw0/automata/pkg/validator"
)

// TransformationSink names the sink completion in WithAllowedTransformations.
const TransformationSink = "sink"

// WordVerdict is the outcome of one test word.
type WordVerdict struct {
	Word     string `json:"word"`
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// Editor is the high-level entry point of the library.
// It owns the automaton being edited and swaps it when a conversion
// produces a new model.
type Editor struct {
	mu    sync.Mutex
	model *automaton.Model

	allowedKinds           map[domain.Kind]bool
	allowedTransformations map[string]bool

	simOpts []simulator.Option
	hooks   simulator.Hooks
	metrics *observability.Metrics
	logger  *slog.Logger
	Name    string
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithAllowedKinds restricts the kinds the editor may hold. By default all are allowed.
func WithAllowedKinds(kinds ...domain.Kind) Option {
	return func(e *Editor) {
		e.allowedKinds = make(map[domain.Kind]bool, len(kinds))
		for _, k := range kinds {
			e.allowedKinds[k] = true
		}
	}
}

// WithAllowedTransformations restricts in-place transformations such as TransformationSink.
// By default all are allowed.
func WithAllowedTransformations(names ...string) Option {
	return func(e *Editor) {
		e.allowedTransformations = make(map[string]bool, len(names))
		for _, n := range names {
			e.allowedTransformations[n] = true
		}
	}
}

// WithSimulatorOptions are passed to every simulator the editor builds.
func WithSimulatorOptions(opts ...simulator.Option) Option {
	return func(e *Editor) {
		e.simOpts = append(e.simOpts, opts...)
	}
}

// WithHooks registers simulator observers.
func WithHooks(h simulator.Hooks) Option {
	return func(e *Editor) {
		e.hooks = h
	}
}

// WithMetrics records simulations, steps, conversions and findings.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Editor) {
		e.metrics = m
	}
}

// WithName labels the editor in logs.
func WithName(name string) Option {
	return func(e *Editor) {
		e.Name = name
	}
}

// New wraps m in an editor. It fails when m's kind is not allowed.
func New(m *automaton.Model, opts ...Option) (*Editor, error) {
	e := &Editor{model: m}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("automaton", e.Name)
	}
	if !e.kindAllowed(m.Kind()) {
		return nil, fmt.Errorf("%w: kind %s", domain.ErrNotAllowed, m.Kind())
	}
	return e, nil
}

// NewEmpty creates an editor around an empty model of the given kind.
func NewEmpty(kind domain.Kind, opts ...Option) (*Editor, error) {
	m, err := automaton.New(kind, nil, nil)
	if err != nil {
		return nil, err
	}
	return New(m, opts...)
}

func (e *Editor) kindAllowed(k domain.Kind) bool {
	return e.allowedKinds == nil || e.allowedKinds[k]
}

// Model returns the current automaton. It changes after SwitchKind and AddSinkState.
func (e *Editor) Model() *automaton.Model {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// Kind returns the kind of the current automaton.
func (e *Editor) Kind() domain.Kind {
	return e.Model().Kind()
}

// AllowedKinds lists the kinds the editor can switch to.
func (e *Editor) AllowedKinds() []domain.Kind {
	var out []domain.Kind
	for _, k := range domain.Kinds {
		if e.kindAllowed(k) {
			out = append(out, k)
		}
	}
	return out
}

// Check validates the current automaton.
func (e *Editor) Check() []domain.Diagnostic {
	ds := validator.Check(e.Model())
	if e.metrics != nil {
		e.metrics.ObserveDiagnostics(ds)
	}
	return ds
}

// Simulator builds a simulator bound to the current automaton revision.
func (e *Editor) Simulator() *simulator.Simulator {
	m := e.Model()
	opts := append([]simulator.Option{simulator.WithLogger(e.logger)}, e.simOpts...)
	hooks := e.hooks
	if e.metrics != nil {
		hooks = e.metrics.SimulatorHooks(m.Kind(), hooks)
	}
	opts = append(opts, simulator.WithHooks(hooks))
	return simulator.New(m, opts...)
}

// Simulate runs a single word to completion.
func (e *Editor) Simulate(word string) domain.Result {
	sim := e.Simulator()
	sim.SetWord(word)
	return sim.Simulate()
}

// TestWords runs every word on its own simulator and reports each verdict.
func (e *Editor) TestWords(words []string) []WordVerdict {
	out := make([]WordVerdict, 0, len(words))
	for _, w := range words {
		res := e.Simulate(w)
		out = append(out, WordVerdict{Word: w, Accepted: res.Success, Message: res.Message})
	}
	return out
}

// SwitchKind converts the automaton to target and makes the result current.
func (e *Editor) SwitchKind(target domain.Kind) error {
	if !e.kindAllowed(target) {
		return fmt.Errorf("%w: kind %s", domain.ErrNotAllowed, target)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.model.Kind()
	e.logger.Info("switching automaton type", "from", from, "to", target)
	if from == domain.KindPDA && target != domain.KindPDA && transform.UsesStack(e.model) {
		e.logger.Warn("stack operations dropped by conversion", "from", from, "to", target)
	}

	next, err := transform.Convert(e.model, target)
	if err != nil {
		return fmt.Errorf("failed to convert %s to %s: %w", from, target, err)
	}
	e.model = next
	if e.metrics != nil {
		e.metrics.ObserveConversion(from, target)
	}
	return nil
}

// AddSinkState completes the current DFA with a sink state.
func (e *Editor) AddSinkState() error {
	if e.allowedTransformations != nil && !e.allowedTransformations[TransformationSink] {
		return fmt.Errorf("%w: transformation %s", domain.ErrNotAllowed, TransformationSink)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := transform.AddSinkState(e.model)
	if err != nil {
		return fmt.Errorf("failed to add sink state: %w", err)
	}
	added := len(next.States()) - len(e.model.States())
	e.logger.Info("sink state completion", "added_states", added)
	e.model = next
	return nil
}

// Replace swaps in a new automaton, e.g. after an import.
func (e *Editor) Replace(m *automaton.Model) error {
	if !e.kindAllowed(m.Kind()) {
		return fmt.Errorf("%w: kind %s", domain.ErrNotAllowed, m.Kind())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = m
	return nil
}
