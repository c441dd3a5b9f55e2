// Package classify resolves raw matcher output into final findings: it merges
// same-rule overlaps, deduplicates, and applies inline suppression markers and
// stored waivers. Suppressed findings are retained for audit, never deleted.
package classify

import (
	"fmt"
	"hash/crc32"
	"log/slog"
	"sort"
	"strings"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
	"github.com/jacoblewisau/higlint/internal/storage"
)

// Apply refines raw findings. suppressions maps file path to the inline
// directives found in that file. Every suppression and severity override is
// logged with its justification; none is applied silently.
func Apply(raw []ir.Finding, suppressions map[string][]indexer.Suppression, waivers []storage.Waiver, logger *slog.Logger) []ir.Finding {
	if logger == nil {
		logger = slog.Default()
	}
	findings := mergeOverlaps(raw)

	for i := range findings {
		f := &findings[i]
		if sup, ok := coveringSuppression(suppressions[f.File], f); ok {
			if sup.Override.Valid() {
				// "as <severity>" reclassifies; the finding stays visible
				// and carries the resolved class as its severity.
				f.DeclaredSeverity = f.Severity
				f.Severity = sup.Override
				f.OverrideSeverity = sup.Override
				f.SuppressSource = "inline"
				f.SuppressReason = sup.Reason
				logger.Info("severity override applied",
					"rule", f.RuleID, "file", f.File, "line", f.LineStart,
					"from", f.DeclaredSeverity, "to", sup.Override, "reason", sup.Reason)
			} else {
				f.Suppressed = true
				f.SuppressSource = "inline"
				f.SuppressReason = sup.Reason
				logger.Info("finding suppressed inline",
					"rule", f.RuleID, "file", f.File, "line", f.LineStart,
					"reason", sup.Reason)
			}
			continue
		}
		if w, ok := coveringWaiver(waivers, f); ok {
			f.Suppressed = true
			f.SuppressSource = "waiver"
			f.SuppressReason = w.Reason
			logger.Info("finding waived",
				"rule", f.RuleID, "file", f.File, "line", f.LineStart,
				"waiver", w.ID, "reason", w.Reason)
		}
	}
	return findings
}

// mergeOverlaps merges findings from the same rule whose line spans overlap
// within one file into a single finding spanning the union range. Findings
// from different rules on the same span are all kept.
func mergeOverlaps(in []ir.Finding) []ir.Finding {
	if len(in) == 0 {
		return nil
	}
	sorted := make([]ir.Finding, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.LineStart != b.LineStart {
			return a.LineStart < b.LineStart
		}
		return a.LineEnd < b.LineEnd
	})

	out := sorted[:1]
	for _, f := range sorted[1:] {
		prev := &out[len(out)-1]
		if f.File == prev.File && f.RuleID == prev.RuleID && f.LineStart <= prev.LineEnd {
			if f.LineEnd > prev.LineEnd {
				prev.LineEnd = f.LineEnd
			}
			prev.ID = mergedID(prev)
			continue
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.LineStart != b.LineStart {
			return a.LineStart < b.LineStart
		}
		return a.RuleID < b.RuleID
	})
	return out
}

func mergedID(f *ir.Finding) string {
	data := fmt.Sprintf("%s|%s|%d|%d", f.RuleID, f.File, f.LineStart, f.LineEnd)
	return fmt.Sprintf("%s-%08x", f.RuleID, crc32.ChecksumIEEE([]byte(data)))
}

func coveringSuppression(sups []indexer.Suppression, f *ir.Finding) (indexer.Suppression, bool) {
	for _, s := range sups {
		if s.Covers(f.RuleID, f.LineStart) {
			return s, true
		}
	}
	return indexer.Suppression{}, false
}

func coveringWaiver(waivers []storage.Waiver, f *ir.Finding) (storage.Waiver, bool) {
	for _, w := range waivers {
		if !strings.EqualFold(strings.TrimSpace(w.RuleID), f.RuleID) {
			continue
		}
		if w.File != "" && !strings.Contains(f.File, w.File) {
			continue
		}
		if w.PatternSub != "" {
			ps := strings.ToUpper(w.PatternSub)
			if !strings.Contains(strings.ToUpper(f.Message), ps) &&
				!strings.Contains(strings.ToUpper(f.Snippet), ps) {
				continue
			}
		}
		return w, true
	}
	return storage.Waiver{}, false
}
