package rules

import (
	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

// Rule is a single anti-pattern check executed over one indexed source unit.
// Rules are registered once at engine start and immutable thereafter.
type Rule struct {
	ID      string
	Summary string

	Severity     ir.Severity
	Perspectives []ir.Perspective
	// Platforms the rule applies to; empty means all.
	Platforms []ir.Platform
	// Accessibility rules are pinned to weight 1.0 and can only be hidden
	// by explicit suppression, never by profile weighting.
	Accessibility bool

	Message string
	FixHint string

	// Eval inspects the unit's tokens and scopes and returns raw findings.
	// Rule metadata left blank on a finding is filled in by EvaluateUnit.
	Eval func(unit *indexer.SourceUnit) []ir.Finding
}
