/*
Package session serialises access to stored automata.

Callers that edit an automaton held in a ports.AutomatonStore go through a
Manager: it loads the document into an automaton.Model, runs the edit while
holding a per-ID lock (and, across replicas, a distributed lock) and saves the
result back.
*/
package session
