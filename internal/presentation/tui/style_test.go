package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := tui.NewPrinter(&buf, false)

	p.Verdict("ab", domain.Result{Success: true, Message: "word accepted"})
	p.Verdict("", domain.Result{Message: "word rejected"})
	p.Diagnostic(domain.Diagnostic{Code: domain.CodeNoInitialState, Severity: domain.SeverityError, Message: "no initial state"})
	p.Step(map[string]string{"s0": "q0"},
		simulator.Configuration{Position: 1, Remaining: []string{"b"}, Branches: []simulator.Branch{{StateID: "s0", Stack: []string{"A"}}}},
		domain.Result{Success: true, Message: "ok"})

	out := buf.String()
	assert.Contains(t, out, `✓ accept  "ab"  word accepted`)
	assert.Contains(t, out, `✗ reject  "ε"`)
	assert.Contains(t, out, "[error] ")
	assert.Contains(t, out, `{q0[A]}  remaining="b"  ok`)
	assert.NotContains(t, out, "\x1b[", "no escape codes without color")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "v1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}

func TestNewRenderer_PlainPassthrough(t *testing.T) {
	out, err := tui.NewRenderer(false)("# title")
	assert.NoError(t, err)
	assert.Equal(t, "# title", out)
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, tui.IsTerminal(&bytes.Buffer{}))
}
