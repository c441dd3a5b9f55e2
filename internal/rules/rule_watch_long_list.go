package rules

import (
	"regexp"
	"strconv"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

var listCallRe = regexp.MustCompile(`(^|\.)(List|ForEach)$`)

// watchLongListThreshold is the item count beyond which a flat watch list
// becomes a scrolling chore instead of a glanceable screen.
const watchLongListThreshold = 20

func init() {
	Register(Rule{
		ID:           "DEF-WATCH-LONG-LIST",
		Summary:      "Flat list too long for a glanceable watch screen.",
		Severity:     ir.SeverityContextDependent,
		Perspectives: []ir.Perspective{ir.PerspectiveDeference},
		Platforms:    []ir.Platform{ir.PlatformWatchOS},
		Message:      "List of {0} items is a long scroll on watchOS",
		FixHint:      "Split into a hierarchy or surface only the most relevant items",
		Eval:         evalWatchLongList,
	})
}

func evalWatchLongList(unit *indexer.SourceUnit) []ir.Finding {
	var out []ir.Finding
	for _, cs := range FindCalls(unit, listCallRe) {
		for _, v := range NumberArgs(unit, cs) {
			if v > watchLongListThreshold {
				f := SpanFinding(unit, [2]int{cs.Start, cs.End})
				f.Message = expand("List of {0} items is a long scroll on watchOS",
					strconv.FormatFloat(v, 'g', -1, 64))
				out = append(out, f)
				break
			}
		}
	}
	return out
}
