package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/session"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes stored automata over a JSON API.
// All automaton access goes through the session manager.
type Server struct {
	Manager *session.Manager
	Library ports.ExerciseLibrary
	Streams *StreamManager

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	editor   []automata.Option
	simOpts  []simulator.Option
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLibrary serves the exercise library under /library.
func WithLibrary(lib ports.ExerciseLibrary) Option {
	return func(s *Server) {
		s.Library = lib
	}
}

// WithMetrics records domain metrics and serves gatherer at /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithEditorOptions are applied to the editor built for conversions and word tests,
// e.g. automata.WithAllowedKinds.
func WithEditorOptions(opts ...automata.Option) Option {
	return func(s *Server) {
		s.editor = append(s.editor, opts...)
	}
}

// WithSimulatorOptions are passed to every simulator the server builds.
func WithSimulatorOptions(opts ...simulator.Option) Option {
	return func(s *Server) {
		s.simOpts = append(s.simOpts, opts...)
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server backed by mgr.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		Manager: mgr,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	return NewServer(mgr, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/automata", func(r chi.Router) {
		r.Get("/", s.ListAutomata)
		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", s.PutAutomaton)
			r.Get("/", s.GetAutomaton)
			r.Delete("/", s.DeleteAutomaton)
			r.Get("/definition", s.GetDefinition)
			r.Get("/definition.html", s.GetDefinitionHTML)
			r.Get("/table", s.GetTable)
			r.Get("/check", s.Check)
			r.Get("/graph", s.GetGraph)
			r.Post("/simulate", s.Simulate)
			r.Post("/trace", s.Trace)
			r.Post("/convert", s.Convert)
			r.Post("/sink", s.AddSink)
			r.Get("/animate", s.Animate)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	r.Route("/library", func(r chi.Router) {
		r.Get("/", s.ListExercises)
		r.Post("/{id}/open", s.OpenExercise)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "automata-http",
		"version": automata.Version,
	})
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMalformedDocument),
		errors.Is(err, domain.ErrUnsupportedKind),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrReservedID),
		errors.Is(err, domain.ErrStateNotFound),
		errors.Is(err, domain.ErrNoInitialState):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAutomatonNotFound),
		errors.Is(err, domain.ErrExerciseNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotAllowed):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
