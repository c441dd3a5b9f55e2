package rules

import (
	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
)

// SpanFinding builds a finding skeleton from a token span; EvaluateUnit fills
// in the rule metadata.
func SpanFinding(u *indexer.SourceUnit, span [2]int) ir.Finding {
	return ir.Finding{
		File:      u.Path,
		LineStart: u.Tokens[span[0]].Line,
		LineEnd:   u.Tokens[span[1]].Line,
		Snippet:   u.Snippet(span[0], span[1]),
	}
}

// enclosingDecl returns the innermost decl scope id for a token index, or -1.
func enclosingDecl(u *indexer.SourceUnit, i int) int {
	for s := scopeAt(u, u.Tokens[i].Scope); s != nil; s = scopeAt(u, s.Parent) {
		if s.Kind == indexer.ScopeDecl {
			return s.ID
		}
	}
	return -1
}

func scopeAt(u *indexer.SourceUnit, id int) *indexer.Scope {
	if id < 0 || id >= len(u.Scopes) {
		return nil
	}
	return &u.Scopes[id]
}

// scopeContains reports whether scope want is on the parent chain of id.
func scopeContains(u *indexer.SourceUnit, id, want int) bool {
	for s := scopeAt(u, id); s != nil; s = scopeAt(u, s.Parent) {
		if s.ID == want {
			return true
		}
	}
	return false
}

// subtreeHasIdent reports whether any identifier token inside the given scope
// (including nested scopes) has the exact text.
func subtreeHasIdent(u *indexer.SourceUnit, scope int, texts ...string) bool {
	for _, t := range u.Tokens {
		if t.Kind != indexer.TokenIdent {
			continue
		}
		if !scopeContains(u, t.Scope, scope) {
			continue
		}
		for _, w := range texts {
			if t.Text == w {
				return true
			}
		}
	}
	return false
}
