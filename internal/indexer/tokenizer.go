package indexer

import (
	"strings"
	"unicode"
)

// declKeywords introduce a named declaration whose following identifier
// becomes the scope name for the next opening brace.
var declKeywords = map[string]bool{
	"struct": true, "class": true, "enum": true, "protocol": true,
	"extension": true, "actor": true, "func": true, "var": true, "let": true,
}

type tokenizer struct {
	unit *SourceUnit

	stack   []int  // scope ids, innermost last
	nextID  int
	pending string // decl name awaiting its '{'

	inBlockComment bool
	inRawString    bool // inside a """ multiline literal
}

func (t *tokenizer) top() int {
	if len(t.stack) == 0 {
		return -1
	}
	return t.stack[len(t.stack)-1]
}

func (t *tokenizer) push(kind ScopeKind, name string) {
	s := Scope{ID: t.nextID, Parent: t.top(), Kind: kind, Name: name}
	t.unit.Scopes = append(t.unit.Scopes, s)
	t.stack = append(t.stack, s.ID)
	t.nextID++
}

// popCall pops the innermost scope if it is a call. Unbalanced parens in
// broken source are tolerated by doing nothing.
func (t *tokenizer) popCall() {
	if n := len(t.stack); n > 0 && t.unit.Scopes[t.stack[n-1]].Kind == ScopeCall {
		t.stack = t.stack[:n-1]
	}
}

// popDecl pops scopes until a decl has been closed. Calls left open above a
// closing brace only occur in broken source; dropping them keeps the stack
// usable for the rest of the file.
func (t *tokenizer) popDecl() {
	for n := len(t.stack); n > 0; n = len(t.stack) {
		id := t.stack[n-1]
		t.stack = t.stack[:n-1]
		if t.unit.Scopes[id].Kind == ScopeDecl {
			return
		}
	}
}

func (t *tokenizer) emit(kind TokenKind, text string, line, col int) {
	t.unit.Tokens = append(t.unit.Tokens, Token{
		Kind: kind, Text: text, Line: line, Col: col, Scope: t.top(),
	})
}

// calleeChain walks back over the just-emitted tokens to assemble the dotted
// name ending at the token before an opening paren, e.g. "UIFont.systemFont"
// or ".font" for a leading-dot member call.
func (t *tokenizer) calleeChain() string {
	toks := t.unit.Tokens
	i := len(toks) - 1
	if i < 0 || toks[i].Kind != TokenIdent {
		return ""
	}
	var parts []string
	expectIdent := true
	for ; i >= 0; i-- {
		tok := toks[i]
		if expectIdent {
			if tok.Kind != TokenIdent {
				break
			}
			parts = append(parts, tok.Text)
		} else {
			if tok.Kind != TokenPunct || tok.Text != "." {
				break
			}
			parts = append(parts, ".")
		}
		expectIdent = !expectIdent
	}
	// expectIdent true here means the chain ended on a dot (member call).
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, "")
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '@' || r == '$' || r == '#'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isNumberPart(r rune) bool {
	return unicode.IsDigit(r) || r == '.' || r == '_' ||
		r == 'x' || r == 'b' || r == 'o' || r == 'e' || r == 'E' ||
		(r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanLine tokenizes one source line, carrying multiline comment and raw
// string state across calls.
func (t *tokenizer) scanLine(line string, lineNo int) {
	runes := []rune(line)
	i := 0
	n := len(runes)

	for i < n {
		if t.inBlockComment {
			if runes[i] == '*' && i+1 < n && runes[i+1] == '/' {
				t.inBlockComment = false
				i += 2
				continue
			}
			i++
			continue
		}
		if t.inRawString {
			if runes[i] == '"' && i+2 < n && runes[i+1] == '"' && runes[i+2] == '"' {
				t.inRawString = false
				t.emit(TokenString, `"""`, lineNo, i+1)
				i += 3
				continue
			}
			i++
			continue
		}

		r := runes[i]
		switch {
		case r == ' ' || r == '\t':
			i++

		case r == '/' && i+1 < n && runes[i+1] == '/':
			t.scanComment(string(runes[i:]), lineNo)
			return // rest of line is comment

		case r == '/' && i+1 < n && runes[i+1] == '*':
			t.inBlockComment = true
			i += 2

		case r == '"':
			if i+2 < n && runes[i+1] == '"' && runes[i+2] == '"' {
				t.inRawString = true
				t.emit(TokenString, `"""`, lineNo, i+1)
				i += 3
				continue
			}
			start := i
			i++
			for i < n {
				if runes[i] == '\\' {
					i += 2
					continue
				}
				if runes[i] == '"' {
					i++
					break
				}
				i++
			}
			t.emit(TokenString, string(runes[start:i]), lineNo, start+1)

		case unicode.IsDigit(r):
			start := i
			for i < n && isNumberPart(runes[i]) {
				i++
			}
			t.emit(TokenNumber, string(runes[start:i]), lineNo, start+1)

		case isIdentStart(r):
			start := i
			i++
			for i < n && isIdentPart(runes[i]) {
				i++
			}
			word := string(runes[start:i])
			t.emit(TokenIdent, word, lineNo, start+1)
			if declKeywords[word] {
				t.pending = "" // name comes from the next identifier
			} else if len(t.unit.Tokens) >= 2 {
				prev := t.unit.Tokens[len(t.unit.Tokens)-2]
				if prev.Kind == TokenIdent && declKeywords[prev.Text] {
					t.pending = word
				}
			}

		case r == '{':
			t.emit(TokenPunct, "{", lineNo, i+1)
			t.push(ScopeDecl, t.pending)
			t.pending = ""
			i++

		case r == '}':
			t.emit(TokenPunct, "}", lineNo, i+1)
			t.popDecl()
			i++

		case r == '(':
			name := t.calleeChain()
			t.emit(TokenPunct, "(", lineNo, i+1)
			t.push(ScopeCall, name)
			i++

		case r == ')':
			t.emit(TokenPunct, ")", lineNo, i+1)
			t.popCall()
			i++

		default:
			t.emit(TokenPunct, string(r), lineNo, i+1)
			i++
		}
	}
}
