/*
Package ports defines the driven ports (interfaces) of the automata engine.

These interfaces decouple the editor and its adapters from concrete storage
and content sources.

# Key Interfaces

  - AutomatonStore: persists automata in their portable document form.
  - DistributedLocker: serialises access to one automaton across replicas.
  - ExerciseLibrary: read-only catalogue of ready-made exercises.
*/
package ports
