package indexer

import (
	"strings"

	"github.com/jacoblewisau/higlint/internal/ir"
)

// suppressMarker is the inline directive recognized inside line comments:
//
//	// higlint:allow CLR-FIXED-FONT-SIZE as context_dependent -- locked-size badge
//
// The rule id, the "as <severity>" override, and the "-- reason" tail are all
// optional. A marker with no rule id allows every rule on its line.
const suppressMarker = "higlint:allow"

// Suppression is an inline allow directive. It covers findings on its own
// line and on the line directly below it.
type Suppression struct {
	Line     int         `json:"line"`
	RuleID   string      `json:"rule_id,omitempty"` // empty = any rule
	Override ir.Severity `json:"override,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// Covers reports whether the suppression applies to a finding for ruleID
// starting at the given line.
func (s Suppression) Covers(ruleID string, line int) bool {
	if line != s.Line && line != s.Line+1 {
		return false
	}
	return s.RuleID == "" || strings.EqualFold(s.RuleID, ruleID)
}

// scanComment checks a line comment for a suppression marker.
func (t *tokenizer) scanComment(comment string, lineNo int) {
	body := strings.TrimLeft(comment, "/ \t")
	if !strings.HasPrefix(body, suppressMarker) {
		return
	}
	rest := strings.TrimSpace(body[len(suppressMarker):])

	sup := Suppression{Line: lineNo}
	if idx := strings.Index(rest, "--"); idx >= 0 {
		sup.Reason = strings.TrimSpace(rest[idx+2:])
		rest = strings.TrimSpace(rest[:idx])
	}
	fields := strings.Fields(rest)
	for i := 0; i < len(fields); i++ {
		if strings.EqualFold(fields[i], "as") && i+1 < len(fields) {
			sev := ir.Severity(strings.ToLower(fields[i+1]))
			if sev.Valid() {
				sup.Override = sev
			}
			i++
			continue
		}
		if sup.RuleID == "" {
			sup.RuleID = fields[i]
		}
	}
	t.unit.Suppressions = append(t.unit.Suppressions, sup)
}
