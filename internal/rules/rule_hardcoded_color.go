package rules

import (
	"regexp"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

// Component-literal color construction bypasses the semantic palette and
// breaks automatic dark-mode adaptation. Named asset colors (`Color("accent")`
// without component labels) pass.
var hardcodedColorShape = ShapePattern{
	Call:             regexp.MustCompile(`(^|\.)(Color|UIColor|NSColor)$`),
	ArgNumberLiteral: true,
	HasArgIdent:      regexp.MustCompile(`^(red|green|blue|hue|white|hex)$`),
}

func init() {
	Register(Rule{
		ID:           "CON-HARDCODED-COLOR",
		Summary:      "Color built from raw component literals instead of the semantic palette.",
		Severity:     ir.SeverityImportant,
		Perspectives: []ir.Perspective{ir.PerspectiveConsistency},
		Message:      "Hard-coded color literal bypasses the semantic palette",
		FixHint:      "Define the color in the asset catalog or use a semantic system color",
		Eval:         evalHardcodedColor,
	})
}

func evalHardcodedColor(unit *indexer.SourceUnit) []ir.Finding {
	var out []ir.Finding
	for _, cs := range FindCalls(unit, hardcodedColorShape.Call) {
		if hardcodedColorShape.Matches(unit, cs) {
			out = append(out, SpanFinding(unit, [2]int{cs.Start, cs.End}))
		}
	}
	// Xcode color literals are always hard-coded.
	for i, t := range unit.Tokens {
		if t.Kind == indexer.TokenIdent && t.Text == "#colorLiteral" {
			out = append(out, SpanFinding(unit, [2]int{i, i}))
		}
	}
	return out
}
