package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
)

// AnimationFrame is one websocket message of /automata/{id}/animate.
type AnimationFrame struct {
	// Type is "step" for simulator steps, "status" for control replies and "error".
	Type          string                   `json:"type"`
	Result        domain.Result            `json:"result"`
	Configuration *simulator.Configuration `json:"configuration,omitempty"`
	Highlight     *simulator.Highlight     `json:"highlight,omitempty"`
}

// AnimationCommand is sent by the client to drive the animation.
type AnimationCommand struct {
	// Action is one of play, pause, stop, forward, back.
	Action string `json:"action"`
}

// Animate handles GET /automata/{id}/animate?word=&interval=&autoplay=.
// It upgrades to a websocket, streams every step as an AnimationFrame and
// accepts AnimationCommands until the client disconnects.
func (s *Server) Animate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.load(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	opts := append([]simulator.Option{}, s.simOpts...)
	if raw := q.Get("interval"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid interval"})
			return
		}
		opts = append(opts, simulator.WithInterval(d))
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	frames := make(chan AnimationFrame, 32)
	done := make(chan struct{})
	send := func(f AnimationFrame) {
		select {
		case frames <- f:
		case <-done:
		}
	}

	var (
		hlMu sync.Mutex
		hl   *simulator.Highlight
	)
	hooks := simulator.Hooks{
		OnHighlight: func(h simulator.Highlight) {
			hlMu.Lock()
			hl = &h
			hlMu.Unlock()
		},
		OnStep: func(ev simulator.StepEvent) {
			hlMu.Lock()
			h := hl
			hl = nil
			hlMu.Unlock()
			cfg := ev.Configuration
			send(AnimationFrame{Type: "step", Result: ev.Result, Configuration: &cfg, Highlight: h})
		},
	}
	if s.metrics != nil {
		hooks = s.metrics.SimulatorHooks(m.Kind(), hooks)
	}
	sim := simulator.New(m, append(opts, simulator.WithLogger(s.logger), simulator.WithHooks(hooks))...)
	sim.SetWord(q.Get("word"))
	status := func(res domain.Result) { send(AnimationFrame{Type: "status", Result: res}) }

	var writers sync.WaitGroup
	writers.Add(1)
	go func() {
		defer writers.Done()
		for {
			select {
			case <-done:
				return
			case f := <-frames:
				if err := conn.WriteJSON(f); err != nil {
					s.logger.Debug("websocket write failed", "err", err)
					return
				}
			}
		}
	}()
	defer func() {
		sim.PauseAnimation(nil)
		close(done)
		writers.Wait()
	}()

	cfg := sim.Configuration()
	status(domain.Result{Success: true, Message: "ready"})
	send(AnimationFrame{Type: "step", Result: domain.Result{Success: true, Message: "initial configuration"}, Configuration: &cfg})
	if q.Get("autoplay") != "false" {
		sim.StartAnimation(nil)
	}

	for {
		var cmd AnimationCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			s.logger.Debug("websocket closed", "err", err)
			return
		}
		switch cmd.Action {
		case "play":
			sim.StartAnimation(nil)
		case "pause":
			sim.PauseAnimation(status)
		case "stop":
			sim.StopAnimation(status)
		case "forward":
			sim.PauseAnimation(nil)
			sim.StepForward(true)
		case "back":
			sim.PauseAnimation(nil)
			sim.StepBackward(true)
		default:
			send(AnimationFrame{Type: "error", Result: domain.Result{Message: "unknown action " + cmd.Action}})
		}
	}
}
