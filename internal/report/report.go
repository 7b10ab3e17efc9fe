// Package report counts and prints the outcome of independent checks.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tally counts passed and failed checks and prints one line per check.
// A failed check never stops the caller from running the next one.
type Tally struct {
	Total  int
	Passed int
	Failed int

	out     io.Writer
	pass    lipgloss.Style
	fail    lipgloss.Style
	heading lipgloss.Style
	note    lipgloss.Style
}

// New creates a Tally printing to out. Colors are used only when out is a terminal.
func New(out io.Writer) *Tally {
	r := lipgloss.NewRenderer(out)
	return &Tally{
		out:     out,
		pass:    r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")),
		heading: r.NewStyle().Foreground(lipgloss.Color("6")),
		note:    r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

// Section prints a heading that groups the checks that follow.
func (t *Tally) Section(title string) {
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.heading.Render(title))
}

// Note prints an informational line that does not count as a check.
func (t *Tally) Note(format string, args ...any) {
	fmt.Fprintln(t.out, t.note.Render(fmt.Sprintf(format, args...)))
}

// Pass records a passed check.
func (t *Tally) Pass(desc string) {
	t.Total++
	t.Passed++
	fmt.Fprintln(t.out, t.pass.Render("  ✓ "+desc))
}

// Fail records a failed check.
func (t *Tally) Fail(desc string) {
	t.Total++
	t.Failed++
	fmt.Fprintln(t.out, t.fail.Render("  ✗ "+desc))
}

// Assert records a check that passed when ok is true.
func (t *Tally) Assert(desc string, ok bool) bool {
	if ok {
		t.Pass(desc)
	} else {
		t.Fail(desc)
	}
	return ok
}

// Check runs fn and records it as passed when it returns nil. The error
// message is appended to the description of a failed check.
func (t *Tally) Check(desc string, fn func() error) bool {
	if err := fn(); err != nil {
		t.Fail(fmt.Sprintf("%s: %v", desc, err))
		return false
	}
	t.Pass(desc)
	return true
}

// Summary prints the totals.
func (t *Tally) Summary() {
	rule := strings.Repeat("=", 50)
	failed := t.pass
	if t.Failed > 0 {
		failed = t.fail
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.heading.Render(rule))
	fmt.Fprintln(t.out, t.heading.Render(fmt.Sprintf("Total tests: %d", t.Total)))
	fmt.Fprintln(t.out, t.pass.Render(fmt.Sprintf("Passed: %d", t.Passed)))
	fmt.Fprintln(t.out, failed.Render(fmt.Sprintf("Failed: %d", t.Failed)))
	fmt.Fprintln(t.out, t.heading.Render(rule))
	fmt.Fprintln(t.out)
}

// OK reports whether no check failed.
func (t *Tally) OK() bool {
	return t.Failed == 0
}
