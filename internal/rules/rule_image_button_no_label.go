package rules

import (
	"regexp"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

var buttonCallRe = regexp.MustCompile(`(^|\.)Button$`)

func init() {
	Register(Rule{
		ID:            "CLR-IMAGE-BUTTON-NO-LABEL",
		Summary:       "Image-only button without an accessibility label.",
		Severity:      ir.SeverityImportant,
		Perspectives:  []ir.Perspective{ir.PerspectiveClarity},
		Accessibility: true,
		Message:       "Image-only button has no accessible name",
		FixHint:       "Add .accessibilityLabel or pair the image with a Text label",
		Eval:          evalImageButtonNoLabel,
	})
}

// A Button whose argument subtree builds an Image but neither a Text label
// nor any accessibility* modifier is unreadable to VoiceOver. Trailing-closure
// buttons are out of reach for a token-level scan; label-argument buttons
// cover the common SwiftUI call form.
func evalImageButtonNoLabel(unit *indexer.SourceUnit) []ir.Finding {
	var out []ir.Finding
	for _, cs := range FindCalls(unit, buttonCallRe) {
		if !subtreeHasIdent(unit, cs.Scope, "Image") {
			continue
		}
		if subtreeHasIdent(unit, cs.Scope, "Text", "Label") {
			continue
		}
		if subtreeHasIdent(unit, cs.Scope, "accessibilityLabel", "accessibilityValue") {
			continue
		}
		out = append(out, SpanFinding(unit, [2]int{cs.Start, cs.End}))
	}
	return out
}
