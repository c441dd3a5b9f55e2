package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/jacoblewisau/higlint/internal/ir"
)

// WriteHTML renders the run as a standalone HTML page under outDir.
func WriteHTML(runID, outDir string, run *ir.Run) (string, error) {
	path := filepath.Join(outDir, runID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rep := run.Report

	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(runID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .ok{color:#2a7} .critical{color:#c22;font-weight:bold} .important{color:#b80} .context_dependent{color:#08a} .minor{color:#666}</style>")
	fmt.Fprint(f, "</head><body>")

	fmt.Fprintf(f, "<h1>higlint report – <span class='mono'>%s</span></h1>", html.EscapeString(runID))
	fmt.Fprintf(f, "<p>Root: <span class='mono'>%s</span> &nbsp; Profile: %s</p>",
		html.EscapeString(run.Root), html.EscapeString(profileLabel(run.Profile)))
	fmt.Fprintf(f, "<p><b>Summary</b>: %d critical &nbsp; %d important &nbsp; %d context-dependent &nbsp; %d minor</p>",
		rep.Summary.Critical, rep.Summary.Important, rep.Summary.ContextDependent, rep.Summary.Minor)
	if rep.Truncated {
		fmt.Fprint(f, "<p class='important'>Run was cancelled; this report covers completed files only.</p>")
	}
	if len(run.Warnings) > 0 {
		fmt.Fprintf(f, "<p class='dim'>Skipped files: %d</p>", len(run.Warnings))
	}

	for _, p := range ir.Perspectives {
		findings := rep.Perspectives[p]
		title := strings.ToUpper(string(p)[:1]) + string(p)[1:]
		fmt.Fprintf(f, "<h2>%s <span class='dim'>(weight %.1f)</span></h2>", html.EscapeString(title), rep.Weights[p])
		if len(findings) == 0 {
			fmt.Fprint(f, "<p class='ok'>Working well - no issues found.</p>")
			continue
		}
		fmt.Fprint(f, "<table><tr><th>Severity</th><th>Rule</th><th>Location</th><th>Message</th><th>Fix</th></tr>")
		for _, fd := range findings {
			loc := fmt.Sprintf("%s:%d", fd.File, fd.LineStart)
			if fd.LineEnd > fd.LineStart {
				loc += fmt.Sprintf("-%d", fd.LineEnd)
			}
			fmt.Fprintf(f, "<tr><td class='%s'>%s</td><td class='mono'>%s</td><td class='mono'>%s</td><td>%s</td><td class='dim'>%s</td></tr>",
				html.EscapeString(string(fd.EffectiveSeverity())),
				html.EscapeString(string(fd.EffectiveSeverity())),
				html.EscapeString(fd.RuleID),
				html.EscapeString(loc),
				html.EscapeString(fd.Message),
				html.EscapeString(fd.FixHint),
			)
		}
		fmt.Fprint(f, "</table>")
	}

	if n := suppressedCount(run.Findings); n > 0 {
		fmt.Fprintf(f, "<h2>Suppressed</h2><table><tr><th>Rule</th><th>Location</th><th>Source</th><th>Reason</th></tr>")
		for _, fd := range run.Findings {
			if !fd.Suppressed {
				continue
			}
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td class='mono'>%s:%d</td><td>%s</td><td>%s</td></tr>",
				html.EscapeString(fd.RuleID),
				html.EscapeString(fd.File), fd.LineStart,
				html.EscapeString(fd.SuppressSource),
				html.EscapeString(fd.SuppressReason),
			)
		}
		fmt.Fprint(f, "</table>")
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}
