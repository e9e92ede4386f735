package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.AutomatonStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at warn.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.AutomatonStore) ports.AutomatonStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) log(op, id string, start time.Time, err error) {
	if err != nil {
		m.logger.Warn("store call failed", "op", op, "automaton_id", id, "err", err)
		return
	}
	m.logger.Debug("store call", "op", op, "automaton_id", id, "duration", time.Since(start))
}

func (m *loggingMiddleware) Save(ctx context.Context, id string, doc domain.Document) error {
	start := time.Now()
	err := m.next.Save(ctx, id, doc)
	m.log("save", id, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, id string) (domain.Document, error) {
	start := time.Now()
	doc, err := m.next.Load(ctx, id)
	m.log("load", id, start, err)
	return doc, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.log("delete", id, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.log("list", "", start, err)
	return ids, err
}
