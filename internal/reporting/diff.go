package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jacoblewisau/higlint/internal/ir"
)

type diffPayload struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary diffSummary   `json:"summary"`
	New     []diffFinding `json:"new"`
	Fixed   []diffFinding `json:"fixed"`
	Changed []diffChanged `json:"changed"`
}

type diffSummary struct {
	NewCount     int `json:"new"`
	FixedCount   int `json:"fixed"`
	ChangedCount int `json:"changed"`
}

type diffFinding struct {
	RuleID   string      `json:"rule_id"`
	File     string      `json:"file"`
	Line     int         `json:"line"`
	Severity ir.Severity `json:"severity,omitempty"`
	Message  string      `json:"message,omitempty"`
}

type diffChanged struct {
	Key     string      `json:"key"`
	Base    diffFinding `json:"base"`
	Head    diffFinding `json:"head"`
	Changed []string    `json:"fields_changed"`
}

// WriteDiffJSON compares two audit runs, keyed by (rule, file, start line).
// Suppressed findings participate: a newly waived finding shows as changed,
// not fixed.
func WriteDiffJSON(baseID, headID, outDir string, base, head *ir.Run) (string, error) {
	path := filepath.Join(outDir, "diff_"+baseID+"__"+headID+".json")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	bm := map[string]ir.Finding{}
	hm := map[string]ir.Finding{}
	for _, f := range base.Findings {
		bm[keyOf(f)] = f
	}
	for _, f := range head.Findings {
		hm[keyOf(f)] = f
	}

	var added, fixed []diffFinding
	var changed []diffChanged

	for k, hf := range hm {
		bf, ok := bm[k]
		if !ok {
			added = append(added, asDiff(hf))
			continue
		}
		var fields []string
		if bf.EffectiveSeverity() != hf.EffectiveSeverity() {
			fields = append(fields, "severity")
		}
		if strings.TrimSpace(bf.Message) != strings.TrimSpace(hf.Message) {
			fields = append(fields, "message")
		}
		if bf.Suppressed != hf.Suppressed {
			fields = append(fields, "suppressed")
		}
		if len(fields) > 0 {
			changed = append(changed, diffChanged{Key: k, Base: asDiff(bf), Head: asDiff(hf), Changed: fields})
		}
	}
	for k, bf := range bm {
		if _, ok := hm[k]; !ok {
			fixed = append(fixed, asDiff(bf))
		}
	}

	sortDiff(added)
	sortDiff(fixed)
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	payload := diffPayload{
		BaseID: baseID,
		HeadID: headID,
		Summary: diffSummary{
			NewCount: len(added), FixedCount: len(fixed), ChangedCount: len(changed),
		},
		New: added, Fixed: fixed, Changed: changed,
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return path, nil
}

func keyOf(f ir.Finding) string {
	return fmt.Sprintf("%s|%s|%d", f.RuleID, f.File, f.LineStart)
}

func asDiff(f ir.Finding) diffFinding {
	return diffFinding{
		RuleID: f.RuleID, File: f.File, Line: f.LineStart,
		Severity: f.EffectiveSeverity(), Message: f.Message,
	}
}

func sortDiff(fs []diffFinding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleID < b.RuleID
	})
}
