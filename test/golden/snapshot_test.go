package golden

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/jacoblewisau/higlint/internal/engine"
	"github.com/jacoblewisau/higlint/internal/ir"
	"github.com/jacoblewisau/higlint/internal/rules"
)

var update = flag.Bool("update", false, "update golden snapshot")

const goldenFile = "expected.json"

const sampleView = `import SwiftUI

struct GalleryView: View {
    var body: some View {
        VStack {
            Button(action: open, label: { Image(systemName: "gear") })
                .frame(width: 28, height: 28)
            Text("Headline")
                .font(.system(size: 17))
            Rectangle() // higlint:allow CON-HARDCODED-COLOR -- locked brand color
                .fill(Color(red: 0.91, green: 0.12, blue: 0.39))
        }
    }
}
`

func TestGolden_GallerySnapshot(t *testing.T) {
	// Build a temp input dir
	dir := t.TempDir()
	in := filepath.Join(dir, "GalleryView.swift")
	if err := os.WriteFile(in, []byte(sampleView), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	// Rule settings at their defaults
	rules.SetSettings(rules.Settings{})

	run, err := engine.Audit(context.Background(), engine.Options{
		Root:    dir,
		Workers: 1,
	})
	if err != nil {
		t.Fatalf("audit: %v", err)
	}

	// Normalize volatile fields before snapshot
	norm := normalize(run)

	// Serialize pretty
	got, err := json.MarshalIndent(norm, "", "  ")
	if err != nil {
		t.Fatalf("marshal got: %v", err)
	}

	if *update {
		if err := os.WriteFile(goldenFile, got, 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		t.Logf("updated %s", goldenFile)
		return
	}

	want, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("read golden (%s): %v\nRun with: go test ./test/golden -run TestGolden_GallerySnapshot -args -update", goldenFile, err)
	}

	if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(want)) {
		tmp := filepath.Join(t.TempDir(), "got.json")
		_ = os.WriteFile(tmp, got, 0o644)
		t.Fatalf("golden mismatch.\n  golden: %s\n  actual: %s\nTip: update with\n  go test ./test/golden -run TestGolden_GallerySnapshot -count=1 -args -update", goldenFile, tmp)
	}
}

type runLite struct {
	ID            string         `json:"id"`
	StartedAt     string         `json:"started_at"`
	CorpusVersion string         `json:"corpus_version"`
	Profile       ir.Profile     `json:"profile"`
	Summary       ir.Summary     `json:"summary"`
	Sections      map[string]int `json:"sections"`
	Findings      []findingLite  `json:"findings"`
}

type findingLite struct {
	RuleID         string   `json:"rule_id"`
	File           string   `json:"file"`
	LineStart      int      `json:"line_start"`
	LineEnd        int      `json:"line_end"`
	Severity       string   `json:"severity"`
	Perspectives   []string `json:"perspectives"`
	Platforms      []string `json:"platforms,omitempty"`
	Accessibility  bool     `json:"accessibility"`
	Message        string   `json:"message"`
	Score          float64  `json:"score"`
	Suppressed     bool     `json:"suppressed"`
	SuppressReason string   `json:"suppress_reason,omitempty"`
}

// normalize strips volatile fields (run id, timestamps, finding ids, the temp
// root in file paths) and keeps the weighted order the engine produced.
func normalize(run ir.Run) runLite {
	finds := make([]findingLite, 0, len(run.Findings))
	for _, f := range run.Findings {
		lf := findingLite{
			RuleID:         f.RuleID,
			File:           filepath.Base(f.File),
			LineStart:      f.LineStart,
			LineEnd:        f.LineEnd,
			Severity:       string(f.Severity),
			Accessibility:  f.Accessibility,
			Message:        f.Message,
			Score:          f.Score,
			Suppressed:     f.Suppressed,
			SuppressReason: f.SuppressReason,
		}
		for _, p := range f.Perspectives {
			lf.Perspectives = append(lf.Perspectives, string(p))
		}
		for _, p := range f.Platforms {
			lf.Platforms = append(lf.Platforms, string(p))
		}
		finds = append(finds, lf)
	}

	sections := make(map[string]int, len(run.Report.Perspectives))
	for p, fs := range run.Report.Perspectives {
		sections[string(p)] = len(fs)
	}

	return runLite{
		ID:            "run-golden",
		StartedAt:     "", // zeroed
		CorpusVersion: run.CorpusVersion,
		Profile:       run.Profile,
		Summary:       run.Report.Summary,
		Sections:      sections,
		Findings:      finds,
	}
}
