package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/jacoblewisau/higlint/internal/ir"
)

var (
	criticalColor  = color.New(color.FgRed, color.Bold)
	importantColor = color.New(color.FgYellow)
	contextColor   = color.New(color.FgCyan)
	minorColor     = color.New(color.FgWhite)
	okColor        = color.New(color.FgGreen)
	headerColor    = color.New(color.Bold)
)

func severityColor(s ir.Severity) *color.Color {
	switch s {
	case ir.SeverityCritical:
		return criticalColor
	case ir.SeverityImportant:
		return importantColor
	case ir.SeverityContextDependent:
		return contextColor
	}
	return minorColor
}

// RenderText writes the human-readable report, one section per perspective in
// weighted order. Sections with no findings get an explicit "working well"
// marker so a clean scan is distinguishable from a scan that never ran.
func RenderText(w io.Writer, run *ir.Run) {
	rep := run.Report

	headerColor.Fprintf(w, "higlint report %s\n", run.ID)
	fmt.Fprintf(w, "root: %s   profile: %s\n", run.Root, profileLabel(run.Profile))
	fmt.Fprintf(w, "summary: %d critical, %d important, %d context-dependent, %d minor\n",
		rep.Summary.Critical, rep.Summary.Important, rep.Summary.ContextDependent, rep.Summary.Minor)
	if rep.Truncated {
		importantColor.Fprintln(w, "run was cancelled; report covers completed files only")
	}
	fmt.Fprintln(w)

	for _, p := range ir.Perspectives {
		findings := rep.Perspectives[p]
		headerColor.Fprintf(w, "## %s (weight %.1f)\n", strings.ToUpper(string(p)[:1])+string(p)[1:], rep.Weights[p])
		if len(findings) == 0 {
			okColor.Fprintln(w, "  working well - no issues found")
			fmt.Fprintln(w)
			continue
		}
		fmt.Fprintln(w, "  issues found:")
		for _, f := range findings {
			severityColor(f.EffectiveSeverity()).Fprintf(w, "  [%s]", f.EffectiveSeverity())
			fmt.Fprintf(w, " %s %s:%d", f.RuleID, f.File, f.LineStart)
			if f.LineEnd > f.LineStart {
				fmt.Fprintf(w, "-%d", f.LineEnd)
			}
			fmt.Fprintf(w, "\n      %s\n", f.Message)
			if f.FixHint != "" {
				fmt.Fprintf(w, "      fix: %s\n", f.FixHint)
			}
		}
		fmt.Fprintln(w)
	}

	if n := suppressedCount(run.Findings); n > 0 {
		fmt.Fprintf(w, "%d finding(s) suppressed; see the raw run data for details\n", n)
	}
}

func profileLabel(p ir.Profile) string {
	cat := p.Category
	if cat == "" {
		cat = "default"
	}
	if len(p.Platforms) == 0 {
		return cat
	}
	parts := make([]string, len(p.Platforms))
	for i, pl := range p.Platforms {
		parts[i] = string(pl)
	}
	return cat + " (" + strings.Join(parts, ",") + ")"
}

func suppressedCount(findings []ir.Finding) int {
	n := 0
	for _, f := range findings {
		if f.Suppressed {
			n++
		}
	}
	return n
}
