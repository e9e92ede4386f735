package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/simulator"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer writes simulator and validator output, colored when attached to a terminal.
type Printer struct {
	w   io.Writer
	out *termenv.Output
}

// NewPrinter creates a Printer. color=false forces plain ASCII output.
func NewPrinter(w io.Writer, color bool) *Printer {
	profile := termenv.Ascii
	if color {
		profile = termenv.EnvColorProfile()
	}
	return &Printer{w: w, out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

func (p *Printer) paint(s, hex string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color(hex))
}

// Verdict prints one word's outcome.
func (p *Printer) Verdict(word string, res domain.Result) {
	mark := p.paint("✗ reject", "#f87171")
	if res.Success {
		mark = p.paint("✓ accept", "#4ade80")
	}
	shown := word
	if shown == "" {
		shown = domain.EpsilonLabel
	}
	fmt.Fprintf(p.w, "%s  %q  %s\n", mark, shown, p.out.String(res.Message).Faint())
}

// Diagnostic prints a validator finding.
func (p *Printer) Diagnostic(d domain.Diagnostic) {
	color := "#60a5fa"
	switch d.Severity {
	case domain.SeverityError:
		color = "#f87171"
	case domain.SeverityWarning:
		color = "#fbbf24"
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", p.paint(fmt.Sprintf("[%s]", d.Severity), color).Bold(), d.Code, d.Message)
}

// Step prints a trace line: position, active branches and the step message.
func (p *Printer) Step(labels map[string]string, cfg simulator.Configuration, res domain.Result) {
	branches := make([]string, 0, len(cfg.Branches))
	for _, b := range cfg.Branches {
		name := labels[b.StateID]
		if name == "" {
			name = b.StateID
		}
		if b.Stack != nil {
			name += "[" + strings.Join(b.Stack, "") + "]"
		}
		branches = append(branches, name)
	}
	status := p.out.String(res.Message)
	if res.FinalStep {
		if res.Success {
			status = status.Foreground(p.out.Color("#4ade80"))
		} else {
			status = status.Foreground(p.out.Color("#f87171"))
		}
	}
	fmt.Fprintf(p.w, "%3d  {%s}  remaining=%q  %s\n",
		cfg.Position, strings.Join(branches, ", "), strings.Join(cfg.Remaining, ""), status)
}
