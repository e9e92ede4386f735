package domain

// Severity classifies a Diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DiagnosticCode identifies the rule that produced a Diagnostic.
type DiagnosticCode string

const (
	CodeEmptyAutomaton      DiagnosticCode = "empty_automaton"
	CodeNoInitialState      DiagnosticCode = "no_initial_state"
	CodeNoFinalState        DiagnosticCode = "no_final_state"
	CodeUnreachableState    DiagnosticCode = "unreachable_state"
	CodeMissingTransition   DiagnosticCode = "missing_transition"
	CodeNondeterminism      DiagnosticCode = "nondeterministic_transition"
	CodeEpsilonTransition   DiagnosticCode = "epsilon_transition"
	CodeInvalidStackOp      DiagnosticCode = "invalid_stack_operation"
	CodeIgnoredStackSymbol  DiagnosticCode = "ignored_stack_symbol"
	CodeMisplacedEmptyCheck DiagnosticCode = "misplaced_empty_check"
)

// Diagnostic reports a structural problem without interrupting editing.
type Diagnostic struct {
	Code       DiagnosticCode `json:"code"`
	Message    string         `json:"message"`
	Severity   Severity       `json:"severity"`
	State      *State         `json:"state,omitempty"`
	Transition *Transition    `json:"transition,omitempty"`
}

// Fatal reports whether the diagnostic prevents any simulation.
func (d Diagnostic) Fatal() bool {
	return d.Code == CodeNoInitialState
}
