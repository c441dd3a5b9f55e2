package rules

import (
	"regexp"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

var hoverCallRe = regexp.MustCompile(`(^|\.)(onHover|hoverEffect)$`)

func init() {
	Register(Rule{
		ID:           "DEF-HOVER-ONLY-INTERACTION",
		Summary:      "Interaction reachable only through pointer hover.",
		Severity:     ir.SeverityImportant,
		Perspectives: []ir.Perspective{ir.PerspectiveDeference},
		Platforms:    []ir.Platform{ir.PlatformIOS, ir.PlatformIPadOS, ir.PlatformTVOS},
		Message:      "Hover-driven interaction is unreachable on touch devices",
		FixHint:      "Provide a tap or long-press path to the same action",
		Eval:         evalHoverOnly,
	})
}

func evalHoverOnly(unit *indexer.SourceUnit) []ir.Finding {
	var out []ir.Finding
	for _, cs := range FindCalls(unit, hoverCallRe) {
		out = append(out, SpanFinding(unit, [2]int{cs.Start, cs.End}))
	}
	return out
}
