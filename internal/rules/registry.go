package rules

import (
	"fmt"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

var (
	registry  []Rule
	ruleIndex = map[string]int{} // UPPER(ruleID) -> index
)

// Register adds a rule, replacing any earlier registration with the same id
// so a loaded corpus can override a built-in.
func Register(r Rule) {
	key := strings.ToUpper(strings.TrimSpace(r.ID))
	if idx, ok := ruleIndex[key]; ok {
		registry[idx] = r
		return
	}
	registry = append(registry, r)
	ruleIndex[key] = len(registry) - 1
}

// List returns the enabled rules in stable id order.
func List() []Rule {
	out := make([]Rule, 0, len(registry))
	for _, r := range registry {
		if rsettings.Disabled[strings.ToUpper(r.ID)] {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a rule by id if registered.
func Get(id string) (Rule, bool) {
	idx, ok := ruleIndex[strings.ToUpper(strings.TrimSpace(id))]
	if !ok || idx < 0 || idx >= len(registry) {
		return Rule{}, false
	}
	return registry[idx], true
}

// EvaluateUnit runs every enabled rule over one source unit and returns raw
// findings with rule metadata filled in. Findings from different rules on the
// same span are all kept; same-rule overlaps are merged later by the
// classifier.
func EvaluateUnit(unit *indexer.SourceUnit, rs []Rule) []ir.Finding {
	var all []ir.Finding
	for _, rule := range rs {
		if !severityOK(rule.Severity) {
			continue
		}
		fs := rule.Eval(unit)
		for k := range fs {
			f := &fs[k]
			f.RuleID = rule.ID
			if f.File == "" {
				f.File = unit.Path
			}
			if f.Severity == "" {
				f.Severity = rule.Severity
			}
			if len(f.Perspectives) == 0 {
				f.Perspectives = rule.Perspectives
			}
			if f.Message == "" {
				f.Message = rule.Message
			}
			if f.FixHint == "" {
				f.FixHint = rule.FixHint
			}
			f.Platforms = rule.Platforms
			f.Accessibility = rule.Accessibility
			if f.LineEnd < f.LineStart {
				f.LineEnd = f.LineStart
			}
			f.ID = makeID(rule.ID, f.File, f.LineStart, f.LineEnd)
		}
		all = append(all, fs...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LineStart != all[j].LineStart {
			return all[i].LineStart < all[j].LineStart
		}
		return all[i].RuleID < all[j].RuleID
	})
	return all
}

func makeID(ruleID, file string, lineStart, lineEnd int) string {
	data := fmt.Sprintf("%s|%s|%d|%d", ruleID, file, lineStart, lineEnd)
	sum := crc32.ChecksumIEEE([]byte(data))
	return fmt.Sprintf("%s-%08x", ruleID, sum)
}

// expand substitutes {0}, {1}, ... placeholders in a message template.
func expand(tpl string, args ...string) string {
	for i, a := range args {
		tpl = strings.ReplaceAll(tpl, fmt.Sprintf("{%d}", i), a)
	}
	return tpl
}
