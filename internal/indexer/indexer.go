// Package indexer turns UI source files into normalized token streams with
// lightweight structural scopes. It does no semantic parsing: brace and paren
// nesting is enough to answer "is this token inside a given declaration or
// call" without a compiler frontend.
package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultExtensions are the file suffixes indexed when none are configured.
var DefaultExtensions = []string{".swift"}

// DefaultReadTimeout bounds a single file read. A hung read is an IndexError
// for that file only, never a run-wide failure.
const DefaultReadTimeout = 10 * time.Second

// IndexError is a per-file failure: unreadable file, bad encoding, read
// timeout. Callers collect these as warnings and keep going.
type IndexError struct {
	Path string
	Err  error
}

func (e *IndexError) Error() string { return fmt.Sprintf("index %s: %v", e.Path, e.Err) }
func (e *IndexError) Unwrap() error { return e.Err }

// SourceUnit is one indexed file: its normalized tokens, the structural scope
// arena, and any inline suppression directives found in comments.
type SourceUnit struct {
	Path         string
	Tokens       []Token
	Scopes       []Scope
	Suppressions []Suppression
	Lines        int
}

// scopeAt returns the scope record for a token's innermost scope, or nil at
// file top level.
func (u *SourceUnit) scopeAt(id int) *Scope {
	if id < 0 || id >= len(u.Scopes) {
		return nil
	}
	return &u.Scopes[id]
}

// InsideCall reports whether the token at index i has an enclosing call
// whose callee name matches re.
func (u *SourceUnit) InsideCall(i int, re *regexp.Regexp) bool {
	for s := u.scopeAt(u.Tokens[i].Scope); s != nil; s = u.scopeAt(s.Parent) {
		if s.Kind == ScopeCall && s.Name != "" && re.MatchString(s.Name) {
			return true
		}
	}
	return false
}

// InsideDecl reports whether the token at index i has an enclosing named
// declaration matching re.
func (u *SourceUnit) InsideDecl(i int, re *regexp.Regexp) bool {
	for s := u.scopeAt(u.Tokens[i].Scope); s != nil; s = u.scopeAt(s.Parent) {
		if s.Kind == ScopeDecl && s.Name != "" && re.MatchString(s.Name) {
			return true
		}
	}
	return false
}

// Snippet reassembles the matched token texts for evidence display.
func (u *SourceUnit) Snippet(from, to int) string {
	if from < 0 || to >= len(u.Tokens) || from > to {
		return ""
	}
	var b strings.Builder
	for i := from; i <= to; i++ {
		if i > from {
			prev, cur := u.Tokens[i-1], u.Tokens[i]
			if prev.Kind != TokenPunct && cur.Kind != TokenPunct {
				b.WriteByte(' ')
			}
		}
		b.WriteString(u.Tokens[i].Text)
	}
	s := b.String()
	if len(s) > 120 {
		cut := 120
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "..."
	}
	return s
}

// Tokenize indexes in-memory source. Exposed for tests and the fuzz harness.
func Tokenize(path string, src []byte) *SourceUnit {
	unit := &SourceUnit{Path: path}
	t := &tokenizer{unit: unit}
	lines := strings.Split(string(src), "\n")
	for n, line := range lines {
		t.scanLine(strings.TrimRight(line, "\r"), n+1)
	}
	unit.Lines = len(lines)
	return unit
}

// Options configures tree indexing.
type Options struct {
	Extensions  []string
	ReadTimeout time.Duration
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions
	}
	return o.Extensions
}

func (o Options) readTimeout() time.Duration {
	if o.ReadTimeout <= 0 {
		return DefaultReadTimeout
	}
	return o.ReadTimeout
}

// ListFiles walks root and returns the matching files in deterministic
// (lexical walk) order. An unreadable root is fatal; unreadable subtrees are
// returned as warnings.
func ListFiles(root string, opts Options) ([]string, []string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, nil, fmt.Errorf("source root %s: %w", root, err)
	}
	exts := opts.extensions()
	var files, warnings []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, (&IndexError{Path: p, Err: err}).Error())
			return fs.SkipDir
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		for _, ext := range exts {
			if strings.HasSuffix(name, ext) {
				files = append(files, p)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, warnings, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, warnings, nil
}

// ReadFile reads one source file, bounded by the configured timeout and by
// ctx, and validates the encoding. Every failure is an IndexError for this
// file only.
func ReadFile(ctx context.Context, path string, opts Options) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := os.ReadFile(path)
		ch <- result{data, err}
	}()

	timer := time.NewTimer(opts.readTimeout())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, &IndexError{Path: path, Err: ctx.Err()}
	case <-timer.C:
		return nil, &IndexError{Path: path, Err: fmt.Errorf("read timed out after %s", opts.readTimeout())}
	case res := <-ch:
		if res.err != nil {
			return nil, &IndexError{Path: path, Err: res.err}
		}
		if !utf8.Valid(res.data) {
			return nil, &IndexError{Path: path, Err: fmt.Errorf("not valid UTF-8")}
		}
		return res.data, nil
	}
}

// IndexFile reads and tokenizes one file.
func IndexFile(ctx context.Context, path string, opts Options) (*SourceUnit, error) {
	data, err := ReadFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return Tokenize(path, data), nil
}

// Index is the sequential convenience form of the ListFiles/IndexFile pair.
// Per-file errors are collected as warnings, never fatal to the whole run.
func Index(ctx context.Context, root string, opts Options) ([]*SourceUnit, []string, error) {
	files, warnings, err := ListFiles(root, opts)
	if err != nil {
		return nil, warnings, err
	}
	var units []*SourceUnit
	for _, f := range files {
		if ctx.Err() != nil {
			return units, warnings, ctx.Err()
		}
		u, err := IndexFile(ctx, f, opts)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		units = append(units, u)
	}
	return units, warnings, nil
}
