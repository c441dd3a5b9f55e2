package rules

import (
	"regexp"
	"strconv"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

var (
	frameCallRe     = regexp.MustCompile(`(^|\.)frame$`)
	frameDimLabelRe = regexp.MustCompile(`^(width|height)$`)
)

func init() {
	Register(Rule{
		ID:            "CLR-SMALL-TAP-TARGET",
		Summary:       "Interactive element framed below the minimum hit-target size.",
		Severity:      ir.SeverityImportant,
		Perspectives:  []ir.Perspective{ir.PerspectiveClarity},
		Platforms:     []ir.Platform{ir.PlatformIOS, ir.PlatformIPadOS, ir.PlatformWatchOS},
		Accessibility: true,
		Message:       "Tap target of {0}pt is below the {1}pt minimum",
		FixHint:       "Give interactive elements at least the minimum hit target, or add .contentShape padding",
		Eval:          evalSmallTapTarget,
	})
}

// Flags .frame(width:/height:) literals below the minimum when the enclosing
// declaration also wires up an interaction (Button, onTapGesture). Frames on
// purely decorative views are left alone.
func evalSmallTapTarget(unit *indexer.SourceUnit) []ir.Finding {
	min := rsettings.TapTargetMinPoints
	var out []ir.Finding
	for _, cs := range FindCalls(unit, frameCallRe) {
		if !argIdentMatches(unit, cs, frameDimLabelRe) {
			continue
		}
		worst := 0.0
		for _, v := range NumberArgs(unit, cs) {
			if v > 0 && v < min && (worst == 0 || v < worst) {
				worst = v
			}
		}
		if worst == 0 {
			continue
		}
		decl := enclosingDecl(unit, cs.Start)
		if decl < 0 || !subtreeHasIdent(unit, decl, "Button", "onTapGesture", "TapGesture") {
			continue
		}
		f := SpanFinding(unit, [2]int{cs.Start, cs.End})
		f.Message = expand("Tap target of {0}pt is below the {1}pt minimum",
			strconv.FormatFloat(worst, 'g', -1, 64),
			strconv.FormatFloat(min, 'g', -1, 64))
		out = append(out, f)
	}
	return out
}
