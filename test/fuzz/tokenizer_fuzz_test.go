package fuzz

import (
	"testing"

	"github.com/jacoblewisau/higlint/internal/indexer"
	"github.com/jacoblewisau/higlint/internal/rules"
)

// Fuzz the tokenizer and the built-in detectors with arbitrary content to
// ensure we never panic. Swift in the wild is frequently mid-edit: unbalanced
// braces, dangling string quotes, and stray markers must all index cleanly.
func FuzzTokenizeNoPanic(f *testing.F) {
	seeds := []string{
		"struct V: View { var body: some View { Text(\"hi\") } }",
		".font(.system(size: 17))\n",
		"// higlint:allow CLR-FIXED-FONT-SIZE as minor -- fuzz\n",
		"Button { Image(systemName: \"gear\") }\n",
		"}}}))((\"unterminated\n",
		"let s = \"brace { in string\"\n/* open comment",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		unit := indexer.Tokenize("fuzz.swift", []byte(src))
		_ = rules.EvaluateUnit(unit, rules.List()) // we only assert "no panic"
	})
}
