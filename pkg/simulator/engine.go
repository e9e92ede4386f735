package simulator

import (
	"sort"
	"strings"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
)

// Limits bounds the exploration of nondeterministic and pushdown runs.
// Without them an ε-loop that pushes would grow the stack forever.
type Limits struct {
	// MaxStackDepth drops any branch whose stack grows beyond it.
	MaxStackDepth int
	// MaxConfigurations caps the size of one frontier.
	MaxConfigurations int
}

// DefaultLimits are used when no WithLimits option is given.
var DefaultLimits = Limits{MaxStackDepth: 64, MaxConfigurations: 4096}

// config is one branch of the run: a state and, for PDAs, a stack (top is last).
type config struct {
	state string
	stack []string
}

func (c config) key() string {
	return c.state + "\x00" + strings.Join(c.stack, "\x00")
}

// graph is an immutable snapshot of the model taken when the simulator is built.
type graph struct {
	kind       domain.Kind
	initial    string
	hasInitial bool
	finals     map[string]bool
	labels     map[string]string
	out        map[string][]domain.Transition
}

func snapshotGraph(m *automaton.Model) graph {
	g := graph{
		kind:   m.Kind(),
		finals: make(map[string]bool),
		labels: make(map[string]string),
		out:    make(map[string][]domain.Transition),
	}
	for _, s := range m.States() {
		g.labels[s.ID] = s.Label
		if s.Final {
			g.finals[s.ID] = true
		}
	}
	for _, t := range m.Transitions() {
		g.out[t.From] = append(g.out[t.From], t)
	}
	if initial, ok := m.InitialState(); ok {
		g.initial, g.hasInitial = initial.ID, true
	}
	return g
}

// applyStack runs a stack program on a copy of stack. It reports false when
// a pop finds another symbol on top or an empty check finds a non-empty stack.
func applyStack(ops []domain.StackOperation, stack []string) ([]string, bool) {
	next := append([]string(nil), stack...)
	for _, op := range ops {
		switch op.Operation {
		case domain.OpPush:
			next = append(next, op.Symbol)
		case domain.OpPop:
			if len(next) == 0 || next[len(next)-1] != op.Symbol {
				return nil, false
			}
			next = next[:len(next)-1]
		case domain.OpEmpty:
			if len(next) != 0 {
				return nil, false
			}
		case domain.OpNone:
		default:
			return nil, false
		}
	}
	return next, true
}

// frontier is a deduplicated set of configurations built under Limits.
type frontier struct {
	limits  Limits
	configs []config
	seen    map[string]bool
	bounded bool
}

func newFrontier(limits Limits) *frontier {
	return &frontier{limits: limits, seen: make(map[string]bool)}
}

// add inserts c unless already present or over a limit. It reports whether c is new.
func (f *frontier) add(c config) bool {
	if f.limits.MaxStackDepth > 0 && len(c.stack) > f.limits.MaxStackDepth {
		f.bounded = true
		return false
	}
	k := c.key()
	if f.seen[k] {
		return false
	}
	if f.limits.MaxConfigurations > 0 && len(f.configs) >= f.limits.MaxConfigurations {
		f.bounded = true
		return false
	}
	f.seen[k] = true
	f.configs = append(f.configs, c)
	return true
}

// fire evaluates t from c, applying its stack program on pushdown automata.
func (g graph) fire(t domain.Transition, c config) (config, bool) {
	if !g.kind.UsesStack() {
		return config{state: t.To}, true
	}
	stack, ok := applyStack(t.StackOperations, c.stack)
	if !ok {
		return config{}, false
	}
	return config{state: t.To, stack: stack}, true
}

// closure extends configs with everything reachable through ε-moves.
// Deterministic automata never follow ε-moves.
func (g graph) closure(configs []config, limits Limits) ([]config, []string, bool) {
	f := newFrontier(limits)
	for _, c := range configs {
		f.add(c)
	}
	if g.kind == domain.KindDFA {
		return f.configs, nil, f.bounded
	}

	var traversed []string
	for i := 0; i < len(f.configs); i++ {
		c := f.configs[i]
		for _, t := range g.out[c.state] {
			if !t.IsEpsilon() {
				continue
			}
			next, ok := g.fire(t, c)
			if !ok {
				continue
			}
			if f.add(next) {
				traversed = append(traversed, t.ID)
			}
		}
	}
	return f.configs, traversed, f.bounded
}

// start returns the closure of the initial configuration.
func (g graph) start(limits Limits) ([]config, []string, bool) {
	if !g.hasInitial {
		return nil, nil, false
	}
	return g.closure([]config{{state: g.initial}}, limits)
}

// step consumes symbol from every configuration and closes the result.
func (g graph) step(configs []config, symbol string, limits Limits) ([]config, []string, bool) {
	f := newFrontier(limits)
	var traversed []string
	for _, c := range configs {
		for _, t := range g.out[c.state] {
			if symbol == domain.Epsilon || !t.Accepts(symbol) {
				continue
			}
			next, ok := g.fire(t, c)
			if !ok {
				continue
			}
			if f.add(next) {
				traversed = append(traversed, t.ID)
			}
		}
	}
	closed, more, bounded := g.closure(f.configs, limits)
	return closed, append(traversed, more...), bounded || f.bounded
}

func (g graph) accepting(configs []config) bool {
	for _, c := range configs {
		if g.finals[c.state] {
			return true
		}
	}
	return false
}

// describe renders the distinct states of a frontier as "{q0,q1}".
func (g graph) describe(configs []config) string {
	ids := stateIDs(configs)
	labels := make([]string, 0, len(ids))
	for _, id := range ids {
		labels = append(labels, g.labels[id])
	}
	sort.Strings(labels)
	return "{" + strings.Join(labels, ",") + "}"
}

// stateIDs returns the distinct states of configs in first-seen order.
func stateIDs(configs []config) []string {
	seen := make(map[string]bool, len(configs))
	out := make([]string, 0, len(configs))
	for _, c := range configs {
		if !seen[c.state] {
			seen[c.state] = true
			out = append(out, c.state)
		}
	}
	return out
}

// SplitWord turns raw input into symbols. Input containing ';' is split on it
// (empty tokens dropped, tokens trimmed); otherwise every rune is a symbol.
func SplitWord(raw string) []string {
	if strings.Contains(raw, ";") {
		var out []string
		for _, tok := range strings.Split(raw, ";") {
			if tok = strings.TrimSpace(tok); tok != "" {
				out = append(out, tok)
			}
		}
		return out
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, string(r))
	}
	return out
}
