package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestListFiles_FiltersByExtensionAndSkipsDotDirs(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"App.swift":           "struct App {}",
		"Views/Badge.swift":   "struct Badge {}",
		"README.md":           "# readme",
		".build/Gen.swift":    "struct Gen {}",
		"Assets/colors.json":  "{}",
		"Views/Detail.design": "ignored",
	})

	files, warnings, err := ListFiles(dir, Options{})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v, want App.swift and Views/Badge.swift", files)
	}
	for _, f := range files {
		if !strings.HasSuffix(f, ".swift") || strings.Contains(f, ".build") {
			t.Fatalf("unexpected file %s", f)
		}
	}
}

func TestListFiles_MissingRootIsFatal(t *testing.T) {
	_, _, err := ListFiles(filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestListFiles_CustomExtensions(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"A.swift": "",
		"B.m":     "",
	})
	files, _, err := ListFiles(dir, Options{Extensions: []string{".m"}})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 || !strings.HasSuffix(files[0], "B.m") {
		t.Fatalf("files = %v", files)
	}
}

func TestReadFile_RejectsInvalidUTF8(t *testing.T) {
	dir := writeTree(t, map[string]string{"Bad.swift": ""})
	p := filepath.Join(dir, "Bad.swift")
	if err := os.WriteFile(p, []byte{0xff, 0xfe, 0x00, 0x41}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := ReadFile(context.Background(), p, Options{})
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("want IndexError, got %v", err)
	}
	if ie.Path != p {
		t.Fatalf("IndexError.Path = %q", ie.Path)
	}
}

func TestReadFile_MissingFile(t *testing.T) {
	_, err := ReadFile(context.Background(), filepath.Join(t.TempDir(), "gone.swift"), Options{})
	var ie *IndexError
	if !errors.As(err, &ie) {
		t.Fatalf("want IndexError for missing file, got %v", err)
	}
}

func TestIndex_CollectsPerFileWarnings(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"Good.swift": "struct Good {}",
		"Bad.swift":  "x",
	})
	if err := os.WriteFile(filepath.Join(dir, "Bad.swift"), []byte{0xff, 0xfe}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	units, warnings, err := Index(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if len(units) != 1 || !strings.HasSuffix(units[0].Path, "Good.swift") {
		t.Fatalf("units = %d", len(units))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Bad.swift") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestSourceUnit_InsideCallAndDecl(t *testing.T) {
	src := `struct Card: View {
    var body: some View {
        ScaledMetricReader { metrics in
            Text("hi").font(.system(size: metrics.base))
        }
    }
}
`
	u := Tokenize("Card.swift", []byte(src))

	idx := -1
	for i, tok := range u.Tokens {
		if tok.Text == "size" {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("token 'size' not found")
	}
	if !u.InsideCall(idx, regexp.MustCompile(`\.system$`)) {
		t.Fatalf("size should be inside the .system call")
	}
	if !u.InsideDecl(idx, regexp.MustCompile(`^Card$`)) {
		t.Fatalf("size should be inside the Card declaration")
	}
	if u.InsideDecl(idx, regexp.MustCompile(`^Badge$`)) {
		t.Fatalf("size is not inside Badge")
	}
}

func TestSourceUnit_SnippetCapsLength(t *testing.T) {
	src := "call(" + strings.Repeat("argument, ", 40) + "last)"
	u := Tokenize("x.swift", []byte(src))

	s := u.Snippet(0, len(u.Tokens)-1)
	if len(s) > 123 {
		t.Fatalf("snippet too long: %d", len(s))
	}
	if !strings.HasSuffix(s, "...") {
		t.Fatalf("long snippet should be elided: %q", s)
	}
}

func TestSourceUnit_SnippetTruncatesOnRuneBoundary(t *testing.T) {
	// A run of two-byte runes placed so the byte cap lands mid-rune.
	src := `let s = "` + strings.Repeat("é", 80) + `"`
	u := Tokenize("x.swift", []byte(src))

	idx := -1
	for i, tok := range u.Tokens {
		if tok.Kind == TokenString {
			idx = i
		}
	}
	if idx < 0 {
		t.Fatalf("no string token in %q", src)
	}

	s := u.Snippet(idx, idx)
	if !strings.HasSuffix(s, "...") {
		t.Fatalf("long snippet should be elided: %q", s)
	}
	if !utf8.ValidString(s) {
		t.Fatalf("snippet is not valid UTF-8: %q", s)
	}
}
