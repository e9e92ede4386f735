// Package simulator runs words through an automaton, either in one go or
// step by step with undo and timed animation.
//
// One engine serves every kind: the run is a frontier of configurations
// (state plus stack) and a word is accepted when some branch ends in a
// final state after the whole word was consumed.
package simulator

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/validator"
)

// DefaultInterval is the animation period when WithInterval is not given.
const DefaultInterval = 500 * time.Millisecond

// Direction of a step.
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Branch is one live configuration of the run.
type Branch struct {
	StateID string   `json:"state_id"`
	Stack   []string `json:"stack,omitempty"`
}

// Configuration is the observable position of a stepped run.
type Configuration struct {
	Position  int      `json:"position"`
	Remaining []string `json:"remaining"`
	Branches  []Branch `json:"branches"`
}

// Highlight lists what a step touched, for renderers.
type Highlight struct {
	States      []string `json:"states"`
	Transitions []string `json:"transitions"`
}

// StepEvent describes a completed step.
type StepEvent struct {
	Direction     Direction     `json:"direction"`
	Result        domain.Result `json:"result"`
	Configuration Configuration `json:"configuration"`
}

// Hooks are optional observers. They run outside the simulator lock.
type Hooks struct {
	OnStep      func(StepEvent)
	OnSimulate  func(domain.Kind, domain.Result)
	OnHighlight func(Highlight)
}

// frame is an entry of the undo history.
type frame struct {
	position int
	configs  []config
	finished bool
}

// Simulator executes words against a snapshot of a Model.
// It must be rebuilt after the model changes; a stale simulator refuses to run.
type Simulator struct {
	model       *automaton.Model
	revision    uint64
	graph       graph
	diagnostics []domain.Diagnostic

	logger   *slog.Logger
	hooks    Hooks
	interval time.Duration
	limits   Limits

	mu       sync.Mutex
	word     string
	symbols  []string
	position int
	configs  []config
	history  []frame
	finished bool

	// animation
	generation uint64
	stop       chan struct{}
	animating  bool
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger for run traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers observers for steps, runs and highlights.
func WithHooks(h Hooks) Option {
	return func(s *Simulator) {
		s.hooks = h
	}
}

// WithInterval sets the animation period.
func WithInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLimits overrides the exploration bounds. Zero fields keep the defaults.
func WithLimits(l Limits) Option {
	return func(s *Simulator) {
		if l.MaxStackDepth > 0 {
			s.limits.MaxStackDepth = l.MaxStackDepth
		}
		if l.MaxConfigurations > 0 {
			s.limits.MaxConfigurations = l.MaxConfigurations
		}
	}
}

// New snapshots the model and validates it once.
func New(m *automaton.Model, opts ...Option) *Simulator {
	s := &Simulator{
		model:    m,
		revision: m.Revision(),
		graph:    snapshotGraph(m),
		logger:   logging.NewNop(),
		interval: DefaultInterval,
		limits:   DefaultLimits,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.diagnostics = validator.Check(m)
	if validator.HasFatal(s.diagnostics) {
		s.logger.Warn("automaton cannot be simulated", "kind", s.graph.kind, "diagnostics", len(s.diagnostics))
	}
	s.resetLocked()
	return s
}

// Diagnostics returns the findings computed at construction.
func (s *Simulator) Diagnostics() []domain.Diagnostic {
	return append([]domain.Diagnostic(nil), s.diagnostics...)
}

// Kind returns the kind of the simulated automaton.
func (s *Simulator) Kind() domain.Kind {
	return s.graph.kind
}

// SetWord loads a new word and resets the run.
func (s *Simulator) SetWord(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.word = raw
	s.symbols = SplitWord(raw)
	s.resetLocked()
}

// Word returns the raw word as given to SetWord.
func (s *Simulator) Word() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.word
}

// Symbols returns the word split into symbols.
func (s *Simulator) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...)
}

// Reset returns to the initial configuration, keeping the word.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Simulator) resetLocked() {
	s.configs, _, _ = s.graph.start(s.limits)
	s.position = 0
	s.history = nil
	s.finished = false
}

// Configuration returns the current position and live branches.
func (s *Simulator) Configuration() Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configurationLocked()
}

func (s *Simulator) configurationLocked() Configuration {
	cfg := Configuration{
		Position:  s.position,
		Remaining: append([]string{}, s.symbols[s.position:]...),
		Branches:  make([]Branch, 0, len(s.configs)),
	}
	for _, c := range s.configs {
		cfg.Branches = append(cfg.Branches, Branch{StateID: c.state, Stack: append([]string(nil), c.stack...)})
	}
	return cfg
}

// precheck returns a failure when the run cannot proceed at all.
func (s *Simulator) precheck() (domain.Result, bool) {
	if s.model.Revision() != s.revision {
		return domain.Result{Message: "automaton changed since simulator was created"}, false
	}
	if !s.graph.hasInitial {
		return domain.Result{Message: "automaton has no initial state"}, false
	}
	return domain.Result{}, true
}

// Simulate runs the whole word without touching the stepping configuration.
func (s *Simulator) Simulate() domain.Result {
	s.mu.Lock()
	symbols := s.symbols
	s.mu.Unlock()

	res := s.run(symbols)
	s.logger.Debug("word simulated", "kind", s.graph.kind, "word", strings.Join(symbols, ""), "success", res.Success)
	if s.hooks.OnSimulate != nil {
		s.hooks.OnSimulate(s.graph.kind, res)
	}
	return res
}

func (s *Simulator) run(symbols []string) domain.Result {
	if res, ok := s.precheck(); !ok {
		return res
	}
	configs, _, bounded := s.graph.start(s.limits)
	for i, sym := range symbols {
		var b bool
		configs, _, b = s.graph.step(configs, sym, s.limits)
		bounded = bounded || b
		if len(configs) == 0 {
			return domain.Result{Message: s.boundNote(
				fmt.Sprintf("word rejected: no eligible transition for symbol %q at position %d", sym, i), bounded)}
		}
	}
	return s.verdict(configs, bounded)
}

func (s *Simulator) verdict(configs []config, bounded bool) domain.Result {
	if s.graph.accepting(configs) {
		return domain.Result{Success: true, Message: "word accepted"}
	}
	return domain.Result{Message: s.boundNote(
		fmt.Sprintf("word rejected: ended in non-final states %s", s.graph.describe(configs)), bounded)}
}

func (s *Simulator) boundNote(msg string, bounded bool) string {
	if !bounded {
		return msg
	}
	return fmt.Sprintf("%s (exploration bounded: stack depth %d, %d configurations)",
		msg, s.limits.MaxStackDepth, s.limits.MaxConfigurations)
}

// StepForward consumes one symbol. On the empty word it only evaluates
// acceptance. Once the word is consumed the result carries FinalStep and
// Success tells whether the word was accepted.
func (s *Simulator) StepForward(highlight bool) domain.Result {
	s.mu.Lock()
	res, hl := s.forwardLocked()
	cfg := s.configurationLocked()
	s.mu.Unlock()

	s.notify(Forward, res, cfg, hl, highlight)
	return res
}

func (s *Simulator) forwardLocked() (domain.Result, Highlight) {
	if res, ok := s.precheck(); !ok {
		return res, Highlight{}
	}
	if s.finished {
		return domain.Result{Message: "word already consumed, reset to simulate again"}, Highlight{}
	}

	if len(s.symbols) == 0 {
		s.history = append(s.history, frame{position: s.position, configs: s.configs, finished: s.finished})
		s.finished = true
		res := s.verdict(s.configs, false)
		res.FinalStep = true
		return res, Highlight{States: stateIDs(s.configs)}
	}

	sym := s.symbols[s.position]
	next, traversed, bounded := s.graph.step(s.configs, sym, s.limits)
	if len(next) == 0 {
		return domain.Result{Message: s.boundNote(
			fmt.Sprintf("no eligible transition for symbol %q from %s", sym, s.graph.describe(s.configs)), bounded)}, Highlight{}
	}

	s.history = append(s.history, frame{position: s.position, configs: s.configs, finished: s.finished})
	s.configs = next
	s.position++
	hl := Highlight{States: stateIDs(next), Transitions: traversed}

	if s.position == len(s.symbols) {
		s.finished = true
		res := s.verdict(next, bounded)
		res.FinalStep = true
		return res, hl
	}
	return domain.Result{Success: true, Message: fmt.Sprintf("consumed %q, now in %s", sym, s.graph.describe(next))}, hl
}

// StepBackward undoes the last forward step, restoring states, position and stacks.
func (s *Simulator) StepBackward(highlight bool) domain.Result {
	s.mu.Lock()
	res, hl := s.backwardLocked()
	cfg := s.configurationLocked()
	s.mu.Unlock()

	s.notify(Backward, res, cfg, hl, highlight)
	return res
}

func (s *Simulator) backwardLocked() (domain.Result, Highlight) {
	if s.model.Revision() != s.revision {
		return domain.Result{Message: "automaton changed since simulator was created"}, Highlight{}
	}
	if len(s.history) == 0 {
		return domain.Result{Message: "already at the initial configuration"}, Highlight{}
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.position = last.position
	s.configs = last.configs
	s.finished = last.finished
	return domain.Result{
		Success: true,
		Message: fmt.Sprintf("back at position %d in %s", s.position, s.graph.describe(s.configs)),
	}, Highlight{States: stateIDs(s.configs)}
}

func (s *Simulator) notify(dir Direction, res domain.Result, cfg Configuration, hl Highlight, highlight bool) {
	s.logger.Debug("step", "direction", dir, "success", res.Success, "final", res.FinalStep, "position", cfg.Position)
	if highlight && (res.Success || res.FinalStep) && s.hooks.OnHighlight != nil {
		s.hooks.OnHighlight(hl)
	}
	if s.hooks.OnStep != nil {
		s.hooks.OnStep(StepEvent{Direction: dir, Result: res, Configuration: cfg})
	}
}
