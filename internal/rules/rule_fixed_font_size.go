package rules

import (
	"regexp"
	"strconv"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

// Flags text-style calls given a bare numeric point size without a scaling
// wrapper. `Font.system(size: 17, relativeTo: .body)` and sizes produced via
// UIFontMetrics scale with Dynamic Type and are not flagged; a plain
// `.system(size: 17)` or `UIFont.systemFont(ofSize: 17)` is.
var fixedFontShape = ShapePattern{
	Call:             regexp.MustCompile(`(^|\.)system$|systemFont$|(^|\.)custom$`),
	ArgNumberLiteral: true,
	NotArgIdent:      regexp.MustCompile(`^relativeTo$`),
	NotInsideCall:    regexp.MustCompile(`scaledFont|UIFontMetrics|ScaledMetric|scaledValue`),
}

func init() {
	Register(Rule{
		ID:            "CLR-FIXED-FONT-SIZE",
		Summary:       "Fixed point-size font ignores the user's Dynamic Type setting.",
		Severity:      ir.SeverityCritical,
		Perspectives:  []ir.Perspective{ir.PerspectiveClarity},
		Accessibility: true,
		Message:       "Fixed font size {0} ignores Dynamic Type",
		FixHint:       "Use a text style, relativeTo:, or a scaled metric instead of a point constant",
		Eval:          evalFixedFontSize,
	})
}

func evalFixedFontSize(unit *indexer.SourceUnit) []ir.Finding {
	var out []ir.Finding
	for _, cs := range FindCalls(unit, fixedFontShape.Call) {
		if !fixedFontShape.Matches(unit, cs) {
			continue
		}
		size := ""
		if nums := NumberArgs(unit, cs); len(nums) > 0 {
			size = strconv.FormatFloat(nums[0], 'g', -1, 64)
		}
		f := SpanFinding(unit, [2]int{cs.Start, cs.End})
		f.Message = expand("Fixed font size {0} ignores Dynamic Type", size)
		out = append(out, f)
	}
	return out
}
