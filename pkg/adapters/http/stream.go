package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/automata/internal/logging"
	"github.com/aretw0/automata/pkg/automaton"
	"github.com/aretw0/automata/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// ChangeMessage is pushed to /automata/{id}/events subscribers after a write.
type ChangeMessage struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Kind        string `json:"kind,omitempty"`
	States      int    `json:"states"`
	Transitions int    `json:"transitions"`
	Fatal       bool   `json:"fatal"`
}

// StreamManager fans change messages out to SSE subscribers per automaton.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a channel for id. The returned func unregisters and closes it.
func (sm *StreamManager) Subscribe(id string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[id]; !ok {
		sm.subscribers[id] = make(map[chan<- string]struct{})
	}
	sm.subscribers[id][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[id]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, id)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of id. Slow subscribers lose messages.
func (sm *StreamManager) Broadcast(id string, msg ChangeMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		sm.logger.Error("StreamManager: marshal failed", "err", err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers[id] {
		select {
		case ch <- string(payload):
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "automaton_id", id)
		}
	}
}

func (s *Server) publish(id, typ string, m *automaton.Model) {
	s.Streams.Broadcast(id, ChangeMessage{
		Type:        typ,
		ID:          id,
		Kind:        string(m.Kind()),
		States:      len(m.States()),
		Transitions: len(m.Transitions()),
		Fatal:       validator.HasFatal(validator.Check(m)),
	})
}

// SubscribeEvents handles GET /automata/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := chi.URLParam(r, "id")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "automaton_id", id)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
