/*
Package domain contains the core types shared by every part of the automata engine.

It defines the structural entities of an automaton (States, Transitions and
their stack operations), the derived read-only views (formal definition and
transition table), the portable Document form, and the result and diagnostic
values reported to callers. The package is pure: no I/O, no persistence and no
algorithms beyond small helpers on the types themselves.

# Key Entities

  - Kind: the automaton class (DFA, NFA or PDA).
  - State / Transition: the nodes and edges edited by the user.
  - StackOperation: push, pop, empty-check or no-op, used by pushdown automata.
  - Diagnostic: a structural problem reported by the validator.
  - Result: the outcome of a simulation run or step.
  - Document: the portable export/import representation.
*/
package domain
