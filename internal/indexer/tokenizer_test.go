package indexer

import (
	"testing"
)

const badgeView = `import SwiftUI

struct BadgeView: View {
    var body: some View {
        Text("OK")
            .font(.system(size: 17))
    }
}
`

func tokenTexts(u *SourceUnit, kind TokenKind) []string {
	var out []string
	for _, t := range u.Tokens {
		if t.Kind == kind {
			out = append(out, t.Text)
		}
	}
	return out
}

func findScope(u *SourceUnit, kind ScopeKind, name string) *Scope {
	for i := range u.Scopes {
		if u.Scopes[i].Kind == kind && u.Scopes[i].Name == name {
			return &u.Scopes[i]
		}
	}
	return nil
}

func TestTokenize_DeclScopesAreNamed(t *testing.T) {
	u := Tokenize("BadgeView.swift", []byte(badgeView))

	outer := findScope(u, ScopeDecl, "BadgeView")
	if outer == nil {
		t.Fatalf("expected a decl scope named BadgeView; scopes=%+v", u.Scopes)
	}
	if outer.Parent != -1 {
		t.Fatalf("BadgeView should be top-level, parent=%d", outer.Parent)
	}
	body := findScope(u, ScopeDecl, "body")
	if body == nil {
		t.Fatalf("expected a decl scope named body")
	}
	if body.Parent != outer.ID {
		t.Fatalf("body should nest inside BadgeView; parent=%d want %d", body.Parent, outer.ID)
	}
}

func TestTokenize_CallScopesUseCalleeChain(t *testing.T) {
	u := Tokenize("BadgeView.swift", []byte(badgeView))

	font := findScope(u, ScopeCall, ".font")
	if font == nil {
		t.Fatalf("expected a call scope named .font; scopes=%+v", u.Scopes)
	}
	system := findScope(u, ScopeCall, ".system")
	if system == nil {
		t.Fatalf("expected a call scope named .system")
	}
	if system.Parent != font.ID {
		t.Fatalf(".system should nest inside .font; parent=%d want %d", system.Parent, font.ID)
	}
}

func TestTokenize_QualifiedCalleeChain(t *testing.T) {
	src := `let f = UIFont.systemFont(ofSize: 17)`
	u := Tokenize("x.swift", []byte(src))

	if s := findScope(u, ScopeCall, "UIFont.systemFont"); s == nil {
		t.Fatalf("expected call scope UIFont.systemFont; scopes=%+v", u.Scopes)
	}
}

func TestTokenize_StringsKeepQuotesAndHideContents(t *testing.T) {
	src := `Text("struct { not code }")`
	u := Tokenize("x.swift", []byte(src))

	strs := tokenTexts(u, TokenString)
	if len(strs) != 1 || strs[0] != `"struct { not code }"` {
		t.Fatalf("string tokens = %q", strs)
	}
	// Braces inside the literal must not open scopes.
	for _, sc := range u.Scopes {
		if sc.Kind == ScopeDecl {
			t.Fatalf("no decl scope expected, got %+v", sc)
		}
	}
}

func TestTokenize_CommentsProduceNoTokens(t *testing.T) {
	src := "// let x = 1\n/* func y() {\n   still comment */\nlet z = 3\n"
	u := Tokenize("x.swift", []byte(src))

	idents := tokenTexts(u, TokenIdent)
	if len(idents) != 2 || idents[0] != "let" || idents[1] != "z" {
		t.Fatalf("idents = %q, want [let z]", idents)
	}
}

func TestTokenize_NumberLiteralsWithSeparators(t *testing.T) {
	src := `frame(width: 1_000, height: 0.5)`
	u := Tokenize("x.swift", []byte(src))

	nums := tokenTexts(u, TokenNumber)
	if len(nums) != 2 || nums[0] != "1_000" || nums[1] != "0.5" {
		t.Fatalf("numbers = %q", nums)
	}
}

func TestTokenize_UnbalancedSourceDoesNotPanic(t *testing.T) {
	for _, src := range []string{"}", ")", "(((", "{{{", `"unterminated`, "/* never closed"} {
		u := Tokenize("x.swift", []byte(src))
		if u == nil {
			t.Fatalf("nil unit for %q", src)
		}
	}
}

func TestSuppression_FullMarker(t *testing.T) {
	src := `// higlint:allow CLR-FIXED-FONT-SIZE as context_dependent -- locked-size badge
Text("x").font(.system(size: 11))
`
	u := Tokenize("x.swift", []byte(src))
	if len(u.Suppressions) != 1 {
		t.Fatalf("suppressions = %+v", u.Suppressions)
	}
	s := u.Suppressions[0]
	if s.Line != 1 || s.RuleID != "CLR-FIXED-FONT-SIZE" {
		t.Fatalf("line/rule = %d/%q", s.Line, s.RuleID)
	}
	if string(s.Override) != "context_dependent" {
		t.Fatalf("override = %q", s.Override)
	}
	if s.Reason != "locked-size badge" {
		t.Fatalf("reason = %q", s.Reason)
	}
}

func TestSuppression_CoversOwnLineAndNext(t *testing.T) {
	s := Suppression{Line: 10, RuleID: "CLR-FIXED-FONT-SIZE"}

	if !s.Covers("CLR-FIXED-FONT-SIZE", 10) || !s.Covers("clr-fixed-font-size", 11) {
		t.Fatalf("marker should cover its line and the next, case-insensitively")
	}
	if s.Covers("CLR-FIXED-FONT-SIZE", 12) {
		t.Fatalf("marker must not cover line+2")
	}
	if s.Covers("CON-HARDCODED-COLOR", 10) {
		t.Fatalf("marker names a different rule")
	}

	any := Suppression{Line: 5}
	if !any.Covers("CON-HARDCODED-COLOR", 6) {
		t.Fatalf("bare marker should cover any rule")
	}
}

func TestSuppression_BareMarkerNoReason(t *testing.T) {
	u := Tokenize("x.swift", []byte("// higlint:allow\nlet x = 1\n"))
	if len(u.Suppressions) != 1 {
		t.Fatalf("suppressions = %+v", u.Suppressions)
	}
	s := u.Suppressions[0]
	if s.RuleID != "" || s.Reason != "" || s.Override != "" {
		t.Fatalf("bare marker should carry no rule/reason/override: %+v", s)
	}
}
