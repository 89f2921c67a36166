// Package output provides the plain-text renderer used by CLI commands.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskview/internal/controller"
	"taskview/internal/task"
)

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {TITLE}[  (due YYYY-MM-DD)]\n", followed by an
// indented description line when the task has one.
func FormatTask(w io.Writer, t task.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s", t.ID, mark, normalizeTitle(t.Title))
	if t.DueDate != nil {
		fmt.Fprintf(w, "  (due %s)", t.DueDate)
	}
	fmt.Fprintln(w)

	if desc := normalizeText(t.Description); desc != "" {
		fmt.Fprintf(w, "            %s\n", desc)
	}
}

// FormatSummary formats the footer line of a listing.
func FormatSummary(w io.Writer, v controller.View) {
	fmt.Fprintf(w, "%d of %d remaining (%s)\n", v.Remaining, v.Total, v.Filter)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// TextRenderer implements controller.Renderer for line-oriented output.
type TextRenderer struct {
	out    io.Writer
	errOut io.Writer

	// Summary adds a remaining-count footer to each render.
	Summary bool

	// Muted suppresses renders; errors are still written.
	Muted bool
}

// NewTextRenderer creates a renderer writing tasks to out and errors to errOut.
func NewTextRenderer(out, errOut io.Writer) *TextRenderer {
	return &TextRenderer{out: out, errOut: errOut}
}

// Render writes every task in the view.
func (r *TextRenderer) Render(v controller.View) {
	if r.Muted {
		return
	}
	n := 0
	for t := range v.Tasks {
		FormatTask(r.out, t)
		n++
	}
	if n == 0 {
		fmt.Fprintln(r.out, "no tasks found")
	}
	if r.Summary {
		FormatSummary(r.out, v)
	}
}

// ReportError writes "error: <msg>".
func (r *TextRenderer) ReportError(err error) {
	fmt.Fprintf(r.errOut, "error: %v\n", err)
}
