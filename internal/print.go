package internal

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/tinylang/tscheck/internal/types"
)

var (
	satisfiesStyle = color.New(color.FgGreen, color.Bold)
	violatesStyle  = color.New(color.FgRed, color.Bold)
	unknownStyle   = color.New(color.FgYellow, color.Bold)
	errorStyle     = color.New(color.FgRed, color.Bold)
	fileStyle      = color.New(color.FgCyan, color.Bold)
	witnessStyle   = color.New(color.FgBlue)
)

func verdictStyle(v types.Verdict) *color.Color {
	switch v {
	case types.VerdictSatisfies:
		return satisfiesStyle
	case types.VerdictViolates:
		return violatesStyle
	default:
		return unknownStyle
	}
}

// FormatReport renders one file's verdict for terminal output.
func FormatReport(r types.Report) string {
	var b strings.Builder

	if r.Err != "" {
		b.WriteString(fileStyle.Sprint(r.Filename))
		b.WriteString(": ")
		b.WriteString(errorStyle.Sprint("error"))
		b.WriteString(": ")
		b.WriteString(r.Err)
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fileStyle.Sprint(r.Filename))
	b.WriteString(": ")
	b.WriteString(verdictStyle(r.Verdict).Sprint(r.Verdict.String()))
	fmt.Fprintf(&b, " (%v)\n", r.Elapsed.Round(timeUnit(r)))

	if len(r.Witness) > 0 {
		b.WriteString(witnessStyle.Sprint("  witness: "))
		b.WriteString(formatWitness(r.Witness))
		b.WriteString("\n")
	}

	return b.String()
}

// formatWitness renders a model as "x = 3, y = -1" with stable ordering.
func formatWitness(w map[string]int64) string {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s = %d", name, w[name]))
	}
	return strings.Join(parts, ", ")
}

// FormatSummary renders the aggregate counts line printed after a run.
func FormatSummary(s types.Summary) string {
	line := fmt.Sprintf("%s, %s, %s",
		satisfiesStyle.Sprintf("satisfies=%d", s.Satisfies),
		violatesStyle.Sprintf("violates=%d", s.Violates),
		unknownStyle.Sprintf("unknown=%d", s.Unknown),
	)
	if s.Errors > 0 {
		line += ", " + errorStyle.Sprintf("errors=%d", s.Errors)
	}
	return line + "\n"
}

// PrintReports writes every report followed by the summary line.
func PrintReports(w io.Writer, reports []types.Report) {
	for _, r := range reports {
		fmt.Fprint(w, FormatReport(r))
	}
	fmt.Fprint(w, FormatSummary(types.Summarize(reports)))
}

func timeUnit(r types.Report) time.Duration {
	if r.Elapsed < time.Second {
		return time.Millisecond
	}
	return 10 * time.Millisecond
}
