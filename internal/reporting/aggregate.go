package reporting

import "github.com/jacoblewisau/higlint/internal/ir"

// Aggregate groups weighted findings into per-perspective sections and
// computes the top-line severity totals. Suppressed findings are excluded
// from sections and counts but remain in the run's raw data. Empty input is
// not an error: a clean scan yields a report with explicit empty sections.
func Aggregate(weighted []ir.Finding, weights ir.PerspectiveWeights, truncated bool) ir.Report {
	rep := ir.Report{
		Perspectives: make(map[ir.Perspective][]ir.Finding, len(ir.Perspectives)),
		Weights:      weights,
		Truncated:    truncated,
	}
	for _, p := range ir.Perspectives {
		rep.Perspectives[p] = []ir.Finding{}
	}

	for _, f := range weighted {
		if f.Suppressed {
			continue
		}
		switch f.EffectiveSeverity() {
		case ir.SeverityCritical:
			rep.Summary.Critical++
		case ir.SeverityImportant:
			rep.Summary.Important++
		case ir.SeverityContextDependent:
			rep.Summary.ContextDependent++
		case ir.SeverityMinor:
			rep.Summary.Minor++
		}
		// A finding tagged with several perspectives appears in each group;
		// it is still counted once above.
		for _, p := range ir.Perspectives {
			if f.HasPerspective(p) {
				rep.Perspectives[p] = append(rep.Perspectives[p], f)
			}
		}
	}
	return rep
}
