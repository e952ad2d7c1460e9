package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"gitlab.com/codearena.net/internal/domain"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiOrange = "\x1b[38;5;208m"
	ansiGray   = "\x1b[90m"
)

// Console writes notifications and views as plain lines. Colours are used only on a terminal.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

func NewConsole(w io.Writer) *Console {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Console{w: w, color: color}
}

// Sink adapts the console to a Board sink.
func (c *Console) Sink() Sink {
	return func(ch Change) {
		if ch.Removed {
			return
		}
		c.Notification(ch.Notification)
	}
}

func (c *Console) Notification(n domain.Notification) {
	var marker, colour string
	switch n.Kind {
	case domain.NotifySuccess:
		marker, colour = "[ok]", ansiGreen
	case domain.NotifyError:
		marker, colour = "[!!]", ansiRed
	case domain.NotifyLoading:
		marker, colour = "[..]", ansiBlue
	default:
		marker, colour = "[--]", ansiGray
	}
	c.println(c.paint(colour, marker) + " " + n.Message)
}

// View prints the full view: status line, score and one line per outcome.
func (c *Console) View(v domain.SubmissionView) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", c.paint(stateColour(v.State), string(v.State)), v.SubmissionID)
	if v.Score != nil {
		pct := fmt.Sprintf("%d%%", v.Score.Percentage)
		fmt.Fprintf(&b, "  %s (%d/%d passed)", c.paint(PercentageColour(v.Score.Percentage), pct), v.Score.Passed, v.Score.Total)
	}
	if v.Progress != nil && v.Progress.Total > 0 {
		fmt.Fprintf(&b, "  progress %d/%d", v.Progress.Completed, v.Progress.Total)
	}
	b.WriteString("\n")
	if v.Error != "" {
		fmt.Fprintf(&b, "  error: %s\n", v.Error)
	}
	for _, o := range v.Outcomes {
		fmt.Fprintf(&b, "  Test %d %s", o.Index, c.paint(outcomeColour(o.State), string(o.State)))
		if o.TimeMs != nil {
			fmt.Fprintf(&b, " %dms", *o.TimeMs)
		}
		b.WriteString("\n")
		if o.State == domain.OutcomeInProgress {
			continue
		}
		fmt.Fprintf(&b, "    input:    %s\n", oneLine(o.Input))
		fmt.Fprintf(&b, "    expected: %s\n", oneLine(o.Expected))
		fmt.Fprintf(&b, "    output:   %s\n", oneLine(outputText(o)))
	}
	c.print(b.String())
}

func (c *Console) paint(colour, s string) string {
	if !c.color {
		return s
	}
	return colour + s + ansiReset
}

func (c *Console) println(s string) {
	c.print(s + "\n")
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, s)
}

// PercentageColour bands a score: full marks, at least 60, above 0, nothing.
func PercentageColour(p int) string {
	switch {
	case p == 100:
		return ansiGreen
	case p >= 60:
		return ansiYellow
	case p > 0:
		return ansiOrange
	}
	return ansiRed
}

func stateColour(s domain.ViewState) string {
	switch s {
	case domain.ViewSuccess:
		return ansiGreen
	case domain.ViewWrongAnswer:
		return ansiRed
	case domain.ViewRuntimeError, domain.ViewFailed:
		return ansiOrange
	case domain.ViewRunning:
		return ansiBlue
	}
	return ansiGray
}

func outcomeColour(s domain.OutcomeState) string {
	switch s {
	case domain.OutcomePassed:
		return ansiGreen
	case domain.OutcomeFailed:
		return ansiRed
	}
	return ansiBlue
}

func outputText(o domain.OutcomeView) string {
	if o.Actual != "" {
		return o.Actual
	}
	if o.Error != "" {
		return o.Error
	}
	return "No output"
}

func oneLine(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", `\n`)
}
