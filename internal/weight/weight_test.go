package weight

import (
	"testing"

	"github.com/jacoblewisau/higlint/internal/ir"
)

func TestWeights_CategoryTable(t *testing.T) {
	w := Weights(ir.Profile{Category: "game"})
	if w[ir.PerspectiveClarity] != 0.6 || w[ir.PerspectiveConsistency] != 0.7 || w[ir.PerspectiveDeference] != 1.0 {
		t.Fatalf("game weights = %v", w)
	}

	// Unknown and empty categories get neutral weights.
	for _, cat := range []string{"", "spreadsheet"} {
		w := Weights(ir.Profile{Category: cat})
		for p, v := range w {
			if v != 1.0 {
				t.Fatalf("category %q: weight[%s] = %v", cat, p, v)
			}
		}
	}

	// Lookup is case-insensitive.
	if w := Weights(ir.Profile{Category: " Media "}); w[ir.PerspectiveDeference] != 1.0 || w[ir.PerspectiveClarity] != 0.7 {
		t.Fatalf("media weights = %v", w)
	}
}

func TestApply_ScoresBySeverityAndStrongestPerspective(t *testing.T) {
	fs := []ir.Finding{
		{RuleID: "R1", File: "a", LineStart: 1, Severity: ir.SeverityImportant,
			Perspectives: []ir.Perspective{ir.PerspectiveDeference}},
		{RuleID: "R2", File: "a", LineStart: 2, Severity: ir.SeverityImportant,
			Perspectives: []ir.Perspective{ir.PerspectiveDeference, ir.PerspectiveClarity}},
	}
	out, _ := Apply(fs, ir.Profile{Category: "productivity"})
	if len(out) != 2 {
		t.Fatalf("out = %+v", out)
	}
	// productivity: clarity 1.0, deference 0.6
	if out[0].RuleID != "R2" || out[0].Score != 3.0 {
		t.Fatalf("first = %+v", out[0])
	}
	if out[1].RuleID != "R1" || out[1].Score != 3*0.6 {
		t.Fatalf("second = %+v", out[1])
	}
}

func TestApply_AccessibilityPinnedToFullWeight(t *testing.T) {
	fs := []ir.Finding{{
		RuleID: "CLR-FIXED-FONT-SIZE", File: "a", LineStart: 1,
		Severity:      ir.SeverityCritical,
		Perspectives:  []ir.Perspective{ir.PerspectiveClarity},
		Accessibility: true,
	}}
	out, _ := Apply(fs, ir.Profile{Category: "game"}) // clarity weighted 0.6
	if out[0].Score != 4.0 {
		t.Fatalf("score = %v, accessibility must not be down-ranked", out[0].Score)
	}
}

func TestApply_DropsPlatformIrrelevantFindings(t *testing.T) {
	fs := []ir.Finding{
		{RuleID: "DEF-WATCH-LONG-LIST", File: "a", LineStart: 1,
			Severity:     ir.SeverityContextDependent,
			Perspectives: []ir.Perspective{ir.PerspectiveDeference},
			Platforms:    []ir.Platform{ir.PlatformWatchOS}},
		{RuleID: "CON-HARDCODED-COLOR", File: "a", LineStart: 2,
			Severity:     ir.SeverityImportant,
			Perspectives: []ir.Perspective{ir.PerspectiveConsistency}},
	}

	out, _ := Apply(fs, ir.Profile{Platforms: []ir.Platform{ir.PlatformIOS}})
	if len(out) != 1 || out[0].RuleID != "CON-HARDCODED-COLOR" {
		t.Fatalf("out = %+v", out)
	}

	// An empty target set means every platform is in scope.
	out, _ = Apply(fs, ir.Profile{})
	if len(out) != 2 {
		t.Fatalf("out = %+v", out)
	}

	// A matching target keeps the platform-scoped rule.
	out, _ = Apply(fs, ir.Profile{Platforms: []ir.Platform{ir.PlatformWatchOS}})
	if len(out) != 2 {
		t.Fatalf("out = %+v", out)
	}
}

func TestApply_DeterministicOrdering(t *testing.T) {
	fs := []ir.Finding{
		{RuleID: "R2", File: "b.swift", LineStart: 5, Severity: ir.SeverityMinor,
			Perspectives: []ir.Perspective{ir.PerspectiveClarity}},
		{RuleID: "R1", File: "a.swift", LineStart: 9, Severity: ir.SeverityMinor,
			Perspectives: []ir.Perspective{ir.PerspectiveClarity}},
		{RuleID: "R3", File: "a.swift", LineStart: 2, Severity: ir.SeverityCritical,
			Perspectives: []ir.Perspective{ir.PerspectiveClarity}},
	}
	out, _ := Apply(fs, ir.Profile{})
	if out[0].RuleID != "R3" || out[1].RuleID != "R1" || out[2].RuleID != "R2" {
		t.Fatalf("order = %s %s %s", out[0].RuleID, out[1].RuleID, out[2].RuleID)
	}
}

func TestApply_OverrideSeverityLowersScore(t *testing.T) {
	fs := []ir.Finding{{
		RuleID: "R1", File: "a", LineStart: 1,
		Severity:         ir.SeverityCritical,
		OverrideSeverity: ir.SeverityMinor,
		Perspectives:     []ir.Perspective{ir.PerspectiveClarity},
	}}
	out, _ := Apply(fs, ir.Profile{})
	if out[0].Score != 1.0 {
		t.Fatalf("score = %v, want effective severity to drive it", out[0].Score)
	}
}
