package indexer

// TokenKind classifies normalized source tokens. Whitespace and comments are
// dropped during tokenization (comments are scanned for suppression markers
// first).
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenNumber
	TokenString
	TokenPunct
)

// Token is one normalized source token with its original position and the
// innermost enclosing scope at the point it appears.
type Token struct {
	Kind TokenKind
	Text string
	Line int // 1-based
	Col  int // 1-based
	// Scope indexes into SourceUnit.Scopes; -1 means file top level.
	Scope int
}

// ScopeKind distinguishes brace-delimited declarations from paren-delimited
// call argument lists.
type ScopeKind int

const (
	ScopeDecl ScopeKind = iota
	ScopeCall
)

// Scope is one structural nesting level. Name is best-effort: the declared
// identifier for decls (struct/func/var body), the dotted callee chain for
// calls, empty for anonymous closures and grouping parens.
type Scope struct {
	ID     int
	Parent int // -1 for top level
	Kind   ScopeKind
	Name   string
}
