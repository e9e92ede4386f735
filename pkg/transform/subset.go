package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/google/uuid"
)

// subset is a DFA state under construction: a canonical set of NFA state IDs.
type subset struct {
	id      string
	members []string // sorted
	key     string
}

// NFAToDFA runs the subset construction. Each DFA state stands for the
// ε-closure of a set of NFA states and is final when the set contains a
// final state. Only subsets reachable from the initial closure are built and
// empty subsets are left out, so the result may be partial. Without an
// initial state nothing is reachable and the result is an empty DFA.
func NFAToDFA(m *automaton.Model) (*automaton.Model, error) {
	if m.Kind() == domain.KindPDA {
		return nil, fmt.Errorf("%w: project the PDA with PDAToNFA first", domain.ErrUnsupportedKind)
	}
	initial, ok := m.InitialState()
	if !ok {
		return automaton.New(domain.KindDFA, nil, nil)
	}

	states := m.States()
	rank := make(map[string]int, len(states))
	labels := make(map[string]string, len(states))
	finals := make(map[string]bool)
	for i, s := range states {
		rank[s.ID] = i
		labels[s.ID] = s.Label
		if s.Final {
			finals[s.ID] = true
		}
	}

	epsilon := make(map[string][]string)
	moves := make(map[string]map[string][]string)
	for _, t := range m.Transitions() {
		if t.IsEpsilon() {
			epsilon[t.From] = append(epsilon[t.From], t.To)
		}
		for _, sym := range t.Symbols {
			if sym == domain.Epsilon {
				continue
			}
			if moves[t.From] == nil {
				moves[t.From] = make(map[string][]string)
			}
			moves[t.From][sym] = append(moves[t.From][sym], t.To)
		}
	}

	closures := make(map[string][]string)
	closureOf := func(id string) []string {
		if cl, ok := closures[id]; ok {
			return cl
		}
		seen := map[string]bool{id: true}
		queue := []string{id}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range epsilon[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		cl := make([]string, 0, len(seen))
		for s := range seen {
			cl = append(cl, s)
		}
		closures[id] = cl
		return cl
	}

	index := make(map[string]*subset)
	canonical := func(ids []string) (*subset, bool) {
		set := make(map[string]bool)
		for _, id := range ids {
			for _, c := range closureOf(id) {
				set[c] = true
			}
		}
		members := make([]string, 0, len(set))
		for id := range set {
			members = append(members, id)
		}
		sort.Strings(members)
		key := strings.Join(members, "\x00")
		if existing, ok := index[key]; ok {
			return existing, false
		}
		s := &subset{id: uuid.NewString(), members: members, key: key}
		index[key] = s
		return s, true
	}

	start, _ := canonical([]string{initial.ID})
	built := []*subset{start}
	var dfaTransitions []domain.Transition
	alphabet := m.Alphabet()

	for queue := []*subset{start}; len(queue) > 0; {
		cur := queue[0]
		queue = queue[1:]

		// group symbols by target so each pair of subsets gets one transition
		var targets []*subset
		symbolsFor := make(map[string][]string)
		for _, sym := range alphabet {
			var reached []string
			for _, id := range cur.members {
				reached = append(reached, moves[id][sym]...)
			}
			if len(reached) == 0 {
				continue
			}
			target, fresh := canonical(reached)
			if fresh {
				built = append(built, target)
				queue = append(queue, target)
			}
			if _, ok := symbolsFor[target.key]; !ok {
				targets = append(targets, target)
			}
			symbolsFor[target.key] = append(symbolsFor[target.key], sym)
		}
		for _, target := range targets {
			dfaTransitions = append(dfaTransitions, domain.Transition{
				ID:      uuid.NewString(),
				From:    cur.id,
				To:      target.id,
				Symbols: symbolsFor[target.key],
			})
		}
	}

	dfaStates := make([]domain.State, 0, len(built))
	for i, s := range built {
		final := false
		for _, id := range s.members {
			final = final || finals[id]
		}
		dfaStates = append(dfaStates, domain.State{
			ID:      s.id,
			Label:   subsetLabel(s.members, rank, labels),
			Final:   final,
			Initial: i == 0,
		})
	}
	return automaton.New(domain.KindDFA, dfaStates, dfaTransitions)
}

// subsetLabel renders members as "{q0,q1}" in the source model's state order.
func subsetLabel(members []string, rank map[string]int, labels map[string]string) string {
	ordered := append([]string(nil), members...)
	sort.Slice(ordered, func(i, j int) bool { return rank[ordered[i]] < rank[ordered[j]] })
	names := make([]string, 0, len(ordered))
	for _, id := range ordered {
		names = append(names, labels[id])
	}
	return "{" + strings.Join(names, ",") + "}"
}
