// Package report renders the terminal summary of a scan.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rudikristanto/apiscan/extract"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	countStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	tableStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	methodStyle  = lipgloss.NewStyle().Bold(true).Width(7)
	guessedStyle = lipgloss.NewStyle().Faint(true)
)

// Summary is everything the report prints about one finished scan.
type Summary struct {
	ProjectRoot  string
	FilesScanned int
	Operations   []*extract.ApiOperation
	SchemaCount  int
	Warnings     []string
	Elapsed      time.Duration
	Output       string
}

// Render writes the scan report to w.
func Render(w io.Writer, s Summary) {
	annotated, inferred := 0, 0
	for _, op := range s.Operations {
		if op.Inferred {
			inferred++
		} else {
			annotated++
		}
	}

	fmt.Fprintln(w, headerStyle.Render("apiscan - "+s.ProjectRoot))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("files scanned:"), countStyle.Render(fmt.Sprint(s.FilesScanned)))
	fmt.Fprintf(w, "%s %s (%d annotated, %d inferred)\n",
		labelStyle.Render("operations:"), countStyle.Render(fmt.Sprint(len(s.Operations))), annotated, inferred)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("schemas:"), countStyle.Render(fmt.Sprint(s.SchemaCount)))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("elapsed:"), s.Elapsed.Round(time.Millisecond))

	if len(s.Operations) > 0 {
		fmt.Fprintln(w)
		for _, op := range s.Operations {
			line := fmt.Sprintf("  %s %s", methodStyle.Render(op.HTTPMethod), tableStyle.Render(op.Path))
			if op.Inferred {
				line += " " + guessedStyle.Render("(inferred)")
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(s.Warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%d warning(s):", len(s.Warnings))))
		for _, warning := range s.Warnings {
			fmt.Fprintln(w, warnStyle.Render("  - "+truncate(warning, 160)))
		}
	}

	if s.Output != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("written:"), s.Output)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
