package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jacoblewisau/higlint/internal/indexer"
)

// Sequence matching: a pattern is itself a token sequence with wildcards,
// matched by a sliding window. Backtracking is bounded by the pattern length,
// so there is no catastrophic-backtrack behavior regardless of input.
//
//	"_"          matches any single token
//	"..."        matches a bounded run of tokens (up to 2x pattern length)
//	anything else matches a token's text exactly

type seqOp int

const (
	seqLit seqOp = iota
	seqAny
	seqGap
)

type seqElem struct {
	op   seqOp
	text string
}

// SeqPattern is a compiled token-sequence matcher.
type SeqPattern struct {
	elems  []seqElem
	maxGap int
}

// CompileSeq validates and compiles a sequence pattern. An empty pattern or a
// pattern with no literal element is rejected at compile time.
func CompileSeq(tokens []string) (*SeqPattern, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty sequence pattern")
	}
	p := &SeqPattern{maxGap: 2 * len(tokens)}
	lits := 0
	for _, t := range tokens {
		switch t {
		case "_":
			p.elems = append(p.elems, seqElem{op: seqAny})
		case "...", "**":
			p.elems = append(p.elems, seqElem{op: seqGap})
		case "":
			return nil, fmt.Errorf("empty token in sequence pattern")
		default:
			p.elems = append(p.elems, seqElem{op: seqLit, text: t})
			lits++
		}
	}
	if lits == 0 {
		return nil, fmt.Errorf("sequence pattern needs at least one literal token")
	}
	if p.elems[0].op == seqGap {
		return nil, fmt.Errorf("sequence pattern must not start with a gap")
	}
	return p, nil
}

// matchAt tries to match the pattern starting at token index start and
// returns the index one past the last consumed token.
func (p *SeqPattern) matchAt(toks []indexer.Token, start int) (int, bool) {
	return p.matchFrom(toks, start, 0)
}

func (p *SeqPattern) matchFrom(toks []indexer.Token, ti, pi int) (int, bool) {
	for pi < len(p.elems) {
		e := p.elems[pi]
		if e.op == seqGap {
			// Try the shortest gap first; bound prevents runaway scans.
			for skip := 0; skip <= p.maxGap && ti+skip <= len(toks); skip++ {
				if end, ok := p.matchFrom(toks, ti+skip, pi+1); ok {
					return end, true
				}
			}
			return 0, false
		}
		if ti >= len(toks) {
			return 0, false
		}
		if e.op == seqLit && toks[ti].Text != e.text {
			return 0, false
		}
		ti++
		pi++
	}
	return ti, true
}

// FindAll returns all non-overlapping matches as [start, end] token index
// pairs (end inclusive).
func (p *SeqPattern) FindAll(unit *indexer.SourceUnit) [][2]int {
	var out [][2]int
	toks := unit.Tokens
	for i := 0; i < len(toks); {
		if end, ok := p.matchAt(toks, i); ok && end > i {
			out = append(out, [2]int{i, end - 1})
			i = end
			continue
		}
		i++
	}
	return out
}

// Shape matching: a structural predicate over a call site and its enclosing
// scopes. Shape rules are preferred for checks prone to false positives
// because raw text cannot distinguish an argument inside an allowed wrapper
// from one outside it.

// CallSite is one resolved call occurrence in a unit.
type CallSite struct {
	Scope  int
	Callee string
	// Args are token indices directly inside the call (nested call and
	// closure contents excluded). The closing paren is excluded.
	Args []int
	// Start..End is the token span from the callee to the closing paren.
	Start, End int
}

// FindCalls returns every call site whose dotted callee chain matches re, in
// token order.
func FindCalls(u *indexer.SourceUnit, re *regexp.Regexp) []CallSite {
	if len(u.Tokens) == 0 {
		return nil
	}
	first := make([]int, len(u.Scopes))
	last := make([]int, len(u.Scopes))
	for i := range first {
		first[i] = -1
	}
	for i, t := range u.Tokens {
		if t.Scope < 0 {
			continue
		}
		if first[t.Scope] == -1 {
			first[t.Scope] = i
		}
		last[t.Scope] = i
	}

	var out []CallSite
	for _, s := range u.Scopes {
		if s.Kind != indexer.ScopeCall || s.Name == "" || !re.MatchString(s.Name) {
			continue
		}
		if first[s.ID] == -1 {
			continue // unterminated call at EOF
		}
		cs := CallSite{Scope: s.ID, Callee: s.Name, End: last[s.ID]}
		open := first[s.ID] - 1 // the '(' sits just before the first in-scope token
		cs.Start = open
		// Walk the dotted chain back from the paren for the reported span.
		j := open - 1
		expectIdent := true
		for j >= 0 {
			t := u.Tokens[j]
			if expectIdent && t.Kind == indexer.TokenIdent {
				cs.Start = j
			} else if !expectIdent && t.Kind == indexer.TokenPunct && t.Text == "." {
				cs.Start = j
			} else {
				break
			}
			expectIdent = !expectIdent
			j--
		}
		for k := first[s.ID]; k <= last[s.ID]; k++ {
			t := u.Tokens[k]
			if t.Scope != s.ID {
				continue
			}
			if t.Kind == indexer.TokenPunct && t.Text == ")" && k == last[s.ID] {
				continue
			}
			cs.Args = append(cs.Args, k)
		}
		out = append(out, cs)
	}
	return out
}

// ShapePattern is a compiled call-shape predicate.
type ShapePattern struct {
	Call             *regexp.Regexp // required
	ArgNumberLiteral bool
	ArgStringLiteral bool
	HasArgIdent      *regexp.Regexp // a direct argument identifier must match
	NotArgIdent      *regexp.Regexp // no direct argument identifier may match
	InsideDecl       *regexp.Regexp // an enclosing declaration must match
	NotInsideCall    *regexp.Regexp // no enclosing call may match
}

// Matches evaluates the predicate against one call site.
func (p *ShapePattern) Matches(u *indexer.SourceUnit, cs CallSite) bool {
	if p.ArgNumberLiteral && !hasArgKind(u, cs, indexer.TokenNumber) {
		return false
	}
	if p.ArgStringLiteral && !hasArgKind(u, cs, indexer.TokenString) {
		return false
	}
	if p.HasArgIdent != nil && !argIdentMatches(u, cs, p.HasArgIdent) {
		return false
	}
	if p.NotArgIdent != nil && argIdentMatches(u, cs, p.NotArgIdent) {
		return false
	}
	if p.InsideDecl != nil && !u.InsideDecl(cs.Start, p.InsideDecl) {
		return false
	}
	if p.NotInsideCall != nil && u.InsideCall(cs.Start, p.NotInsideCall) {
		return false
	}
	return true
}

// FindAll returns matching call-site spans as [start, end] token index pairs.
func (p *ShapePattern) FindAll(unit *indexer.SourceUnit) [][2]int {
	var out [][2]int
	for _, cs := range FindCalls(unit, p.Call) {
		if p.Matches(unit, cs) {
			out = append(out, [2]int{cs.Start, cs.End})
		}
	}
	return out
}

func hasArgKind(u *indexer.SourceUnit, cs CallSite, kind indexer.TokenKind) bool {
	for _, i := range cs.Args {
		if u.Tokens[i].Kind == kind {
			return true
		}
	}
	return false
}

func argIdentMatches(u *indexer.SourceUnit, cs CallSite, re *regexp.Regexp) bool {
	for _, i := range cs.Args {
		if u.Tokens[i].Kind == indexer.TokenIdent && re.MatchString(u.Tokens[i].Text) {
			return true
		}
	}
	return false
}

// NumberArgs extracts the numeric literal values directly inside a call.
// Underscore digit separators are dropped; unparsable numbers are skipped.
func NumberArgs(u *indexer.SourceUnit, cs CallSite) []float64 {
	var out []float64
	for _, i := range cs.Args {
		t := u.Tokens[i]
		if t.Kind != indexer.TokenNumber {
			continue
		}
		var v float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(t.Text, "_", ""), "%g", &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}
