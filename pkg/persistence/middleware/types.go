// Package middleware wraps an AutomatonStore with cross-cutting behavior
// such as encryption at rest and logging.
package middleware

import "github.com/aretw0/automata/pkg/ports"

// Middleware allows wrapping an AutomatonStore to add behavior.
type Middleware func(ports.AutomatonStore) ports.AutomatonStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.AutomatonStore, mws ...Middleware) ports.AutomatonStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
