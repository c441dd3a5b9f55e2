package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jacoblewisau/higlint/internal/ir"
	"github.com/jacoblewisau/higlint/internal/storage"
)

const settingsView = `struct SettingsRow: View {
    var body: some View {
        Text("Settings")
            .font(.system(size: 17))
    }
}
`

const suppressedView = `struct LockedBadge: View {
    var body: some View {
        // higlint:allow CLR-FIXED-FONT-SIZE -- badge must not scale
        Text("42").font(.system(size: 11))
    }
}
`

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func TestAudit_EndToEnd(t *testing.T) {
	root := writeSources(t, map[string]string{
		"Views/SettingsRow.swift": settingsView,
		"Views/LockedBadge.swift": suppressedView,
	})

	run, err := Audit(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if run.ID == "" || run.CorpusVersion != "builtin" || run.Truncated {
		t.Fatalf("run = %+v", run)
	}

	var visible, suppressed int
	for _, f := range run.Findings {
		if f.RuleID != "CLR-FIXED-FONT-SIZE" {
			continue
		}
		if f.Suppressed {
			suppressed++
		} else {
			visible++
		}
	}
	if visible != 1 || suppressed != 1 {
		t.Fatalf("visible=%d suppressed=%d findings=%+v", visible, suppressed, run.Findings)
	}

	// The report excludes the suppressed finding but keeps it in raw data.
	if run.Report.Summary.Critical != 1 {
		t.Fatalf("summary = %+v", run.Report.Summary)
	}
	clarity := run.Report.Perspectives[ir.PerspectiveClarity]
	if len(clarity) != 1 || clarity[0].File != filepath.Join(root, "Views/SettingsRow.swift") {
		t.Fatalf("clarity section = %+v", clarity)
	}
}

func TestAudit_MissingRootIsEngineError(t *testing.T) {
	_, err := Audit(context.Background(), Options{Root: filepath.Join(t.TempDir(), "gone")})
	if err == nil {
		t.Fatalf("expected engine error")
	}
	if _, ok := err.(*EngineError); !ok {
		t.Fatalf("want *EngineError, got %T: %v", err, err)
	}
}

func TestAudit_UnreadableFileBecomesWarning(t *testing.T) {
	root := writeSources(t, map[string]string{"Ok.swift": settingsView})
	if err := os.WriteFile(filepath.Join(root, "Bad.swift"), []byte{0xff, 0xfe}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	run, err := Audit(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(run.Warnings) != 1 {
		t.Fatalf("warnings = %v", run.Warnings)
	}
	if run.Report.Summary.Critical != 1 {
		t.Fatalf("good file must still be audited: %+v", run.Report.Summary)
	}
}

func TestAudit_CancelledContextTruncates(t *testing.T) {
	root := writeSources(t, map[string]string{"Ok.swift": settingsView})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := Audit(ctx, Options{Root: root})
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if !run.Truncated || !run.Report.Truncated {
		t.Fatalf("cancelled run must be marked truncated: %+v", run)
	}
	// Cancellation is already reported via the truncated flag; it must not
	// masquerade as per-file read failures.
	for _, w := range run.Warnings {
		if strings.Contains(w, context.Canceled.Error()) {
			t.Fatalf("cancellation leaked into warnings: %q", w)
		}
	}
}

func TestAudit_BadCorpusAbortsBeforeScanning(t *testing.T) {
	root := writeSources(t, map[string]string{"Ok.swift": settingsView})
	corpusPath := filepath.Join(t.TempDir(), "rules.yaml")
	bad := `
rules:
  - id: TEST-BROKEN
    severity: minor
    perspectives: [clarity]
    message: m
    match:
      shape: {call: '(^|'}
`
	if err := os.WriteFile(corpusPath, []byte(bad), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	_, err := Audit(context.Background(), Options{Root: root, CorpusPath: corpusPath})
	if err == nil {
		t.Fatalf("broken corpus must abort the run")
	}
}

func TestAudit_FileCache(t *testing.T) {
	root := writeSources(t, map[string]string{"Views/SettingsRow.swift": settingsView})
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		t.Fatalf("schema: %v", err)
	}

	opts := Options{Root: root, DB: db, UseCache: true, ReadTimeout: 5 * time.Second}
	first, err := Audit(context.Background(), opts)
	if err != nil {
		t.Fatalf("first audit: %v", err)
	}
	second, err := Audit(context.Background(), opts)
	if err != nil {
		t.Fatalf("second audit: %v", err)
	}
	if len(first.Findings) != len(second.Findings) {
		t.Fatalf("cache changed results: %d vs %d", len(first.Findings), len(second.Findings))
	}
	if first.Findings[0].ID != second.Findings[0].ID {
		t.Fatalf("cached finding ids differ: %s vs %s", first.Findings[0].ID, second.Findings[0].ID)
	}
}
