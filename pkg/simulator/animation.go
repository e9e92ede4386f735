package simulator

import (
	"time"

	"github.com/aretw0/automata/pkg/domain"
)

// StartAnimation steps forward on every tick and passes each result to cb.
// A running animation is cancelled first, so at most one timer is active.
// The timer ends by itself after a final or failed step.
func (s *Simulator) StartAnimation(cb func(domain.Result)) {
	s.mu.Lock()
	s.cancelTimerLocked()
	stop := make(chan struct{})
	s.stop = stop
	s.animating = true
	gen := s.generation
	interval := s.interval
	s.mu.Unlock()

	s.logger.Debug("animation started", "interval", interval)
	go s.animate(gen, stop, interval, cb)
}

func (s *Simulator) animate(gen uint64, stop <-chan struct{}, interval time.Duration, cb func(domain.Result)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return
		}
		res, hl := s.forwardLocked()
		cfg := s.configurationLocked()
		done := res.FinalStep || !res.Success
		if done {
			s.generation++
			s.stop = nil
			s.animating = false
		}
		s.mu.Unlock()

		s.notify(Forward, res, cfg, hl, true)
		if cb != nil {
			cb(res)
		}
		if done {
			s.logger.Debug("animation finished", "success", res.Success)
			return
		}
	}
}

// PauseAnimation stops the timer and keeps the configuration.
func (s *Simulator) PauseAnimation(cb func(domain.Result)) {
	s.mu.Lock()
	s.cancelTimerLocked()
	s.mu.Unlock()

	if cb != nil {
		cb(domain.Result{Success: true, Message: "animation paused"})
	}
}

// StopAnimation stops the timer and resets to the initial configuration.
func (s *Simulator) StopAnimation(cb func(domain.Result)) {
	s.mu.Lock()
	s.cancelTimerLocked()
	s.resetLocked()
	s.mu.Unlock()

	if cb != nil {
		cb(domain.Result{Success: true, Message: "animation stopped"})
	}
}

// Animating reports whether a timer is running.
func (s *Simulator) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animating
}

// cancelTimerLocked invalidates any running goroutine. Caller holds s.mu.
func (s *Simulator) cancelTimerLocked() {
	s.generation++
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.animating = false
}
