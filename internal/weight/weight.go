// Package weight computes per-perspective multipliers from the declared
// project profile and orders findings for presentation. Weighting reorders
// and emphasizes; the only removal it performs is dropping rules whose
// declared platform set is disjoint from the profile's.
package weight

import (
	"sort"
	"strings"

	"github.com/jacoblewisau/higlint/internal/ir"
)

// categoryTable is the fixed, deterministic lookup from project category to
// {clarity, consistency, deference} multipliers. Same profile, same weights.
var categoryTable = map[string][3]float64{
	"productivity": {1.0, 1.0, 0.6},
	"media":        {0.7, 0.8, 1.0},
	"utility":      {0.9, 1.0, 0.7},
	"game":         {0.6, 0.7, 1.0},
}

var defaultWeights = [3]float64{1.0, 1.0, 1.0}

// Weights resolves the multiplier map for a profile. Unknown or empty
// categories get neutral weights.
func Weights(profile ir.Profile) ir.PerspectiveWeights {
	w, ok := categoryTable[strings.ToLower(strings.TrimSpace(profile.Category))]
	if !ok {
		w = defaultWeights
	}
	return ir.PerspectiveWeights{
		ir.PerspectiveClarity:     w[0],
		ir.PerspectiveConsistency: w[1],
		ir.PerspectiveDeference:   w[2],
	}
}

// Apply drops platform-irrelevant findings, scores the rest, and returns them
// in weighted order alongside the resolved weights. Accessibility findings
// are pinned to multiplier 1.0: a profile can never down-rank them.
func Apply(findings []ir.Finding, profile ir.Profile) ([]ir.Finding, ir.PerspectiveWeights) {
	weights := Weights(profile)

	out := make([]ir.Finding, 0, len(findings))
	for _, f := range findings {
		if !f.AppliesTo(profile) {
			continue
		}
		f.Score = score(f, weights)
		out = append(out, f)
	}

	// Weighted severity desc; ties broken by path then line then rule id for
	// reproducible output.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.LineStart != b.LineStart {
			return a.LineStart < b.LineStart
		}
		return a.RuleID < b.RuleID
	})
	return out, weights
}

// score is severity rank times the strongest multiplier among the finding's
// perspectives.
func score(f ir.Finding, weights ir.PerspectiveWeights) float64 {
	mult := 0.0
	if f.Accessibility {
		mult = 1.0
	} else {
		for _, p := range f.Perspectives {
			if w := weights[p]; w > mult {
				mult = w
			}
		}
		if mult == 0 {
			mult = 1.0
		}
	}
	return float64(f.EffectiveSeverity().Rank()) * mult
}
