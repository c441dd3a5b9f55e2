// Package corpus loads the declarative rule corpus: one YAML record per
// anti-pattern, compiled into matchers at load time. A malformed pattern
// fails fast here, never at match time, so a scan either runs to completion
// or does not start.
package corpus

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/ir"
	"github.com/jacoblewisau/higlint/internal/rules"
)

// RuleCompileError aborts the run before any scanning begins.
type RuleCompileError struct {
	RuleID string
	Err    error
}

func (e *RuleCompileError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule corpus: %v", e.Err)
	}
	return fmt.Sprintf("compile rule %q: %v", e.RuleID, e.Err)
}

func (e *RuleCompileError) Unwrap() error { return e.Err }

type pack struct {
	Version int       `yaml:"version"`
	Rules   []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID            string   `yaml:"id"`
	Summary       string   `yaml:"summary"`
	Severity      string   `yaml:"severity"`
	Perspectives  []string `yaml:"perspectives"`
	Platforms     []string `yaml:"platforms"`
	Accessibility bool     `yaml:"accessibility"`
	Message       string   `yaml:"message"`
	FixHint       string   `yaml:"fix_hint"`

	Match struct {
		Seq   []string  `yaml:"seq"`
		Shape *dslShape `yaml:"shape"`
	} `yaml:"match"`
}

type dslShape struct {
	Call             string `yaml:"call"`
	ArgNumberLiteral bool   `yaml:"arg_number_literal"`
	ArgStringLiteral bool   `yaml:"arg_string_literal"`
	HasArgIdent      string `yaml:"has_arg_ident"`
	NotArgIdent      string `yaml:"not_arg_ident"`
	InsideDecl       string `yaml:"inside_decl"`
	NotInsideCall    string `yaml:"not_inside_call"`
}

// Corpus describes a successfully loaded rule pack.
type Corpus struct {
	Path    string
	Version string
	Count   int
}

// Load parses, validates, compiles, and registers every rule in the pack.
// Any failure returns a RuleCompileError and registers nothing further.
func Load(path string) (*Corpus, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &RuleCompileError{Err: fmt.Errorf("read corpus: %w", err)}
	}
	var p pack
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, &RuleCompileError{Err: fmt.Errorf("parse yaml: %w", err)}
	}
	seen := map[string]bool{}
	for _, r := range p.Rules {
		cr, err := compile(r)
		if err != nil {
			return nil, &RuleCompileError{RuleID: r.ID, Err: err}
		}
		key := strings.ToUpper(r.ID)
		if seen[key] {
			return nil, &RuleCompileError{RuleID: r.ID, Err: fmt.Errorf("duplicate rule id")}
		}
		seen[key] = true
		rules.Register(*cr)
	}
	return &Corpus{Path: path, Version: strconv.Itoa(p.Version), Count: len(p.Rules)}, nil
}

func compile(r dslRule) (*rules.Rule, error) {
	if r.ID == "" || r.Severity == "" || r.Message == "" {
		return nil, fmt.Errorf("missing required fields (id/severity/message)")
	}
	sev := ir.Severity(strings.ToLower(r.Severity))
	if !sev.Valid() {
		return nil, fmt.Errorf("unknown severity %q", r.Severity)
	}
	if len(r.Perspectives) == 0 {
		return nil, fmt.Errorf("at least one perspective is required")
	}
	var persp []ir.Perspective
	for _, p := range r.Perspectives {
		pp := ir.Perspective(strings.ToLower(p))
		if !pp.Valid() {
			return nil, fmt.Errorf("unknown perspective %q", p)
		}
		persp = append(persp, pp)
	}
	var plats []ir.Platform
	for _, p := range r.Platforms {
		pl := ir.Platform(strings.ToLower(p))
		if !pl.Valid() {
			return nil, fmt.Errorf("unknown platform %q", p)
		}
		plats = append(plats, pl)
	}

	hasSeq := len(r.Match.Seq) > 0
	hasShape := r.Match.Shape != nil
	if hasSeq == hasShape {
		return nil, fmt.Errorf("match must define exactly one of seq or shape")
	}

	var eval func(unit *indexer.SourceUnit) []ir.Finding
	if hasSeq {
		p, err := rules.CompileSeq(r.Match.Seq)
		if err != nil {
			return nil, err
		}
		eval = seqEval(p)
	} else {
		p, err := compileShape(r.Match.Shape)
		if err != nil {
			return nil, err
		}
		eval = shapeEval(p)
	}

	return &rules.Rule{
		ID:            r.ID,
		Summary:       r.Summary,
		Severity:      sev,
		Perspectives:  persp,
		Platforms:     plats,
		Accessibility: r.Accessibility,
		Message:       r.Message,
		FixHint:       r.FixHint,
		Eval:          eval,
	}, nil
}

func compileShape(s *dslShape) (*rules.ShapePattern, error) {
	if s.Call == "" {
		return nil, fmt.Errorf("shape requires a call pattern")
	}
	p := &rules.ShapePattern{
		ArgNumberLiteral: s.ArgNumberLiteral,
		ArgStringLiteral: s.ArgStringLiteral,
	}
	var err error
	if p.Call, err = regexp.Compile(s.Call); err != nil {
		return nil, fmt.Errorf("call pattern: %w", err)
	}
	if p.HasArgIdent, err = optRe(s.HasArgIdent); err != nil {
		return nil, fmt.Errorf("has_arg_ident: %w", err)
	}
	if p.NotArgIdent, err = optRe(s.NotArgIdent); err != nil {
		return nil, fmt.Errorf("not_arg_ident: %w", err)
	}
	if p.InsideDecl, err = optRe(s.InsideDecl); err != nil {
		return nil, fmt.Errorf("inside_decl: %w", err)
	}
	if p.NotInsideCall, err = optRe(s.NotInsideCall); err != nil {
		return nil, fmt.Errorf("not_inside_call: %w", err)
	}
	return p, nil
}

func optRe(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile(expr)
}

func seqEval(p *rules.SeqPattern) func(*indexer.SourceUnit) []ir.Finding {
	return func(unit *indexer.SourceUnit) []ir.Finding {
		var out []ir.Finding
		for _, span := range p.FindAll(unit) {
			out = append(out, rules.SpanFinding(unit, span))
		}
		return out
	}
}

func shapeEval(p *rules.ShapePattern) func(*indexer.SourceUnit) []ir.Finding {
	return func(unit *indexer.SourceUnit) []ir.Finding {
		var out []ir.Finding
		for _, span := range p.FindAll(unit) {
			out = append(out, rules.SpanFinding(unit, span))
		}
		return out
	}
}
