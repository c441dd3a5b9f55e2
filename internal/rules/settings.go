package rules

import "github.com/jacoblewisau/higlint/internal/ir"

// Settings carries run-level rule toggles supplied through config.
type Settings struct {
	SeverityThreshold ir.Severity
	Disabled          map[string]bool // UPPER(ruleID) -> true
	// TapTargetMinPoints is the smallest acceptable hit target edge.
	TapTargetMinPoints float64
}

var rsettings = Settings{
	SeverityThreshold:  ir.SeverityMinor,
	Disabled:           map[string]bool{},
	TapTargetMinPoints: 44,
}

// SetSettings installs run-level settings; zero fields revert to defaults.
func SetSettings(s Settings) {
	if s.SeverityThreshold == "" {
		s.SeverityThreshold = ir.SeverityMinor
	}
	if s.Disabled == nil {
		s.Disabled = map[string]bool{}
	}
	if s.TapTargetMinPoints == 0 {
		s.TapTargetMinPoints = 44
	}
	rsettings = s
}

func severityOK(sev ir.Severity) bool {
	return sev.Rank() >= rsettings.SeverityThreshold.Rank()
}
