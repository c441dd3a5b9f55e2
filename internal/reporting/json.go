package reporting

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/jacoblewisau/higlint/internal/ir"
)

// WriteJSON persists the full run (raw findings included) under outDir.
func WriteJSON(runID, outDir string, run *ir.Run) (string, error) {
	path := filepath.Join(outDir, runID+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return "", err
	}
	return path, nil
}

// RenderJSON writes only the report payload, for machine consumers. Warnings
// never appear here; they go to the diagnostic stream.
func RenderJSON(w io.Writer, rep ir.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
