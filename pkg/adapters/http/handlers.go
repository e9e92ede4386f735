package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/presentation/graph"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/aretw0/automata/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/russross/blackfriday/v2"
)

// maxDocumentSize bounds PUT bodies.
const maxDocumentSize = 1 << 20

// AutomatonResponse is returned by endpoints that store an automaton.
type AutomatonResponse struct {
	ID          string              `json:"id"`
	Document    domain.Document     `json:"document"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
}

type SimulateRequest struct {
	Words []string `json:"words"`
}

type SimulateResponse struct {
	Results []automata.WordVerdict `json:"results"`
}

type TraceRequest struct {
	Word string `json:"word"`
}

// TraceStep is one forward step of a trace.
type TraceStep struct {
	Result        domain.Result           `json:"result"`
	Configuration simulator.Configuration `json:"configuration"`
	Highlight     simulator.Highlight     `json:"highlight"`
}

type TraceResponse struct {
	Word    string                  `json:"word"`
	Symbols []string                `json:"symbols"`
	Initial simulator.Configuration `json:"initial"`
	Steps   []TraceStep             `json:"steps"`
	Result  domain.Result           `json:"result"`
}

type ConvertRequest struct {
	Kind domain.Kind `json:"kind"`
}

type OpenExerciseRequest struct {
	// ID is where the exercise is copied; defaults to the exercise ID.
	ID string `json:"id"`
}

type ExerciseSummary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Kind        domain.Kind `json:"kind"`
	TestWords   []string    `json:"test_words,omitempty"`
}

func (s *Server) newEditor(m *automaton.Model) (*automata.Editor, error) {
	opts := append([]automata.Option{
		automata.WithLogger(s.logger),
		automata.WithSimulatorOptions(s.simOpts...),
	}, s.editor...)
	if s.metrics != nil {
		opts = append(opts, automata.WithMetrics(s.metrics))
	}
	return automata.New(m, opts...)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (*automaton.Model, bool) {
	m, err := s.Manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return m, true
}

func (s *Server) respond(w http.ResponseWriter, id string, m *automaton.Model) {
	s.writeJSON(w, http.StatusOK, AutomatonResponse{
		ID:          id,
		Document:    m.Document(),
		Diagnostics: validator.Check(m),
	})
}

// ListAutomata handles GET /automata.
func (s *Server) ListAutomata(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"automata": ids})
}

// PutAutomaton handles PUT /automata/{id}. The body is a portable document in
// JSON, or YAML when Content-Type says so. ?kind= supplies a missing kind.
func (s *Server) PutAutomaton(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}

	format := automaton.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = automaton.FormatYAML
	}
	fallback := domain.Kind("")
	if k := r.URL.Query().Get("kind"); k != "" {
		if fallback, err = domain.ParseKind(k); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	doc, err := automaton.ParseDocument(data, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if doc.Kind == "" {
		doc.Kind = fallback
	}
	if doc.Kind == "" {
		s.writeError(w, r, fmt.Errorf("%w: kind is required", domain.ErrMalformedDocument))
		return
	}
	m, err := automaton.New(doc.Kind, doc.States, doc.Transitions, automaton.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Manager.Save(r.Context(), id, m); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, "saved", m)
	s.respond(w, id, m)
}

// GetAutomaton handles GET /automata/{id}; ?format=yaml returns YAML.
func (s *Server) GetAutomaton(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == string(automaton.FormatYAML) {
		data, err := m.Export(automaton.FormatYAML)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
		return
	}
	s.writeJSON(w, http.StatusOK, m.Document())
}

// DeleteAutomaton handles DELETE /automata/{id}.
func (s *Server) DeleteAutomaton(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Manager.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.Streams.Broadcast(id, ChangeMessage{Type: "deleted", ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// GetDefinition handles GET /automata/{id}/definition.
func (s *Server) GetDefinition(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, m.FormalDefinition())
}

// GetDefinitionHTML renders the formal definition and the transition table as HTML.
func (s *Server) GetDefinitionHTML(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	md := m.FormalDefinition().Markdown() + "\n## Transition table\n\n" + m.TransitionTable().Markdown()
	html := blackfriday.Run([]byte(md), blackfriday.WithExtensions(blackfriday.CommonExtensions))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head>\n<body>\n%s</body></html>\n",
		chi.URLParam(r, "id"), html)
}

// GetTable handles GET /automata/{id}/table.
func (s *Server) GetTable(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, m.TransitionTable())
}

// Check handles GET /automata/{id}/check.
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	ds := validator.Check(m)
	if s.metrics != nil {
		s.metrics.ObserveDiagnostics(ds)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"diagnostics": ds,
		"fatal":       validator.HasFatal(ds),
	})
}

// GetGraph handles GET /automata/{id}/graph and returns Mermaid text.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(m, nil))
}

// Simulate handles POST /automata/{id}/simulate.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if !s.decode(w, r, &body) {
		return
	}
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	ed, err := s.newEditor(m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SimulateResponse{Results: ed.TestWords(body.Words)})
}

// Trace handles POST /automata/{id}/trace: it steps the word to the end and
// returns every intermediate configuration.
func (s *Server) Trace(w http.ResponseWriter, r *http.Request) {
	var body TraceRequest
	if !s.decode(w, r, &body) {
		return
	}
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.trace(m, body.Word))
}

func (s *Server) trace(m *automaton.Model, word string) TraceResponse {
	var hl simulator.Highlight
	hooks := simulator.Hooks{OnHighlight: func(h simulator.Highlight) { hl = h }}
	if s.metrics != nil {
		hooks = s.metrics.SimulatorHooks(m.Kind(), hooks)
	}
	sim := simulator.New(m, append(append([]simulator.Option{}, s.simOpts...),
		simulator.WithLogger(s.logger), simulator.WithHooks(hooks))...)
	sim.SetWord(word)

	resp := TraceResponse{Word: word, Symbols: sim.Symbols(), Initial: sim.Configuration(), Steps: []TraceStep{}}
	for {
		hl = simulator.Highlight{}
		res := sim.StepForward(true)
		resp.Steps = append(resp.Steps, TraceStep{Result: res, Configuration: sim.Configuration(), Highlight: hl})
		if res.FinalStep || !res.Success {
			resp.Result = res
			return resp
		}
	}
}

// Convert handles POST /automata/{id}/convert.
func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	var body ConvertRequest
	if !s.decode(w, r, &body) {
		return
	}
	target, err := domain.ParseKind(string(body.Kind))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	m, err := s.Manager.Update(r.Context(), id, func(m *automaton.Model) (*automaton.Model, error) {
		ed, err := s.newEditor(m)
		if err != nil {
			return nil, err
		}
		if err := ed.SwitchKind(target); err != nil {
			return nil, err
		}
		return ed.Model(), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, "converted", m)
	s.respond(w, id, m)
}

// AddSink handles POST /automata/{id}/sink.
func (s *Server) AddSink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := s.Manager.Update(r.Context(), id, func(m *automaton.Model) (*automaton.Model, error) {
		ed, err := s.newEditor(m)
		if err != nil {
			return nil, err
		}
		if err := ed.AddSinkState(); err != nil {
			return nil, err
		}
		return ed.Model(), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, "completed", m)
	s.respond(w, id, m)
}

// ListExercises handles GET /library.
func (s *Server) ListExercises(w http.ResponseWriter, r *http.Request) {
	if s.Library == nil {
		s.writeJSON(w, http.StatusOK, map[string][]ExerciseSummary{"exercises": {}})
		return
	}
	exercises, err := s.Library.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ExerciseSummary, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, ExerciseSummary{
			ID:          ex.ID,
			Title:       ex.Title,
			Description: ex.Description,
			Kind:        ex.Document.Kind,
			TestWords:   ex.TestWords,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string][]ExerciseSummary{"exercises": out})
}

// OpenExercise handles POST /library/{id}/open: it copies the exercise into the store.
func (s *Server) OpenExercise(w http.ResponseWriter, r *http.Request) {
	exerciseID := chi.URLParam(r, "id")
	if s.Library == nil {
		s.writeError(w, r, fmt.Errorf("%w: %s", domain.ErrExerciseNotFound, exerciseID))
		return
	}
	var body OpenExerciseRequest
	if r.ContentLength != 0 && !s.decode(w, r, &body) {
		return
	}
	ex, err := s.Library.Get(r.Context(), exerciseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := automaton.New(ex.Document.Kind, ex.Document.States, ex.Document.Transitions, automaton.WithLogger(s.logger))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.newEditor(m); err != nil {
		s.writeError(w, r, err)
		return
	}

	id := body.ID
	if id == "" {
		id = ex.ID
	}
	if err := s.Manager.Save(r.Context(), id, m); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(id, "saved", m)
	s.respond(w, id, m)
}
