package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/attrkit/internal/logger"
)

// Problem describes a failure shown to the user
type Problem struct {
	Context     string
	Message     string
	Suggestions []string
	Hints       []string
}

// FormatProblem renders p as a red header followed by optional
// "Did you mean" suggestions and hint lines.
//
//	DOCUMENT NOT FOUND: bondary
//	   Did you mean: boundary?
//	   → attrkit store list
func FormatProblem(p Problem, noColor bool) string {
	var b strings.Builder
	red := newColor(noColor, color.FgRed, color.Bold)
	if p.Context != "" {
		red.Fprintf(&b, "%s: %s\n", strings.ToUpper(p.Context), p.Message)
	} else {
		red.Fprintf(&b, "%s\n", p.Message)
	}
	if len(p.Suggestions) > 0 {
		newColor(noColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(p.Suggestions, ", "))
	}
	cyan := newColor(noColor, color.FgCyan)
	for _, h := range p.Hints {
		cyan.Fprintf(&b, "   → %s\n", h)
	}
	return b.String()
}

// DocumentNotFound formats a missing stored document with near names
func DocumentNotFound(name string, known []string, noColor bool) string {
	return FormatProblem(Problem{
		Context:     "document not found",
		Message:     name,
		Suggestions: Suggest(name, known),
		Hints:       []string{"List stored documents: attrkit store list"},
	}, noColor)
}

// Success writes a green check line
func Success(w io.Writer, message string, noColor bool) {
	newColor(noColor, color.FgGreen, color.Bold).Fprintf(w, "✓ %s\n", message)
}

// WriteRecords prints parse records at or above min, one per line, colored
// by severity. It returns the number of lines written.
func WriteRecords(w io.Writer, records []logger.Record, min logger.Severity, noColor bool) int {
	n := 0
	for _, r := range records {
		if r.Severity < min {
			continue
		}
		c := severityColor(r.Severity, noColor)
		c.Fprintf(w, "%-7s", strings.ToUpper(r.Severity.String()))
		fmt.Fprintf(w, " %s\n", r.Message)
		n++
	}
	return n
}

func severityColor(s logger.Severity, noColor bool) *color.Color {
	switch s {
	case logger.Fatal, logger.Error:
		return newColor(noColor, color.FgRed, color.Bold)
	case logger.Warning:
		return newColor(noColor, color.FgYellow)
	default:
		return newColor(noColor, color.FgHiBlack)
	}
}
