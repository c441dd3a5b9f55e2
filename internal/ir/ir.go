package ir

import "time"

const Version = "1.0"

// Severity is a rule's declared class. Findings never carry a weaker
// severity than the rule declares unless an explicit suppression override
// applies.
type Severity string

const (
	SeverityCritical         Severity = "critical"
	SeverityImportant        Severity = "important"
	SeverityContextDependent Severity = "context_dependent"
	SeverityMinor            Severity = "minor"
)

// Rank orders severities for threshold checks and sorting.
// Unknown strings rank below minor so they never trip a CI gate.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityImportant:
		return 3
	case SeverityContextDependent:
		return 2
	case SeverityMinor:
		return 1
	}
	return 0
}

func (s Severity) Valid() bool { return s.Rank() > 0 }

// Perspective is one of the three evaluative lenses a finding is tagged with.
type Perspective string

const (
	PerspectiveClarity     Perspective = "clarity"
	PerspectiveConsistency Perspective = "consistency"
	PerspectiveDeference   Perspective = "deference"
)

// Perspectives is the fixed rendering order for report sections.
var Perspectives = []Perspective{PerspectiveClarity, PerspectiveConsistency, PerspectiveDeference}

func (p Perspective) Valid() bool {
	switch p {
	case PerspectiveClarity, PerspectiveConsistency, PerspectiveDeference:
		return true
	}
	return false
}

// Platform identifies a rule's applicability target.
type Platform string

const (
	PlatformIOS      Platform = "ios"
	PlatformIPadOS   Platform = "ipados"
	PlatformMacOS    Platform = "macos"
	PlatformWatchOS  Platform = "watchos"
	PlatformTVOS     Platform = "tvos"
	PlatformVisionOS Platform = "visionos"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformIPadOS, PlatformMacOS, PlatformWatchOS, PlatformTVOS, PlatformVisionOS:
		return true
	}
	return false
}

// Profile is the caller-supplied project declaration used to weight findings.
type Profile struct {
	Category  string     `json:"category,omitempty"`
	Platforms []Platform `json:"platforms,omitempty"`
}

// HasPlatform reports whether the profile targets p. An empty platform set
// means "all platforms".
func (pr Profile) HasPlatform(p Platform) bool {
	if len(pr.Platforms) == 0 {
		return true
	}
	for _, q := range pr.Platforms {
		if q == p {
			return true
		}
	}
	return false
}

// PerspectiveWeights maps each perspective to a multiplier in [0,1].
// Weights order and emphasize findings; they never suppress them.
type PerspectiveWeights map[Perspective]float64

// Finding is one concrete rule violation located in source. Immutable once
// emitted by the classifier.
type Finding struct {
	ID        string   `json:"id"`
	RuleID    string   `json:"rule_id"`
	File      string   `json:"file"`
	LineStart int      `json:"line_start"`
	LineEnd   int      `json:"line_end"`
	Severity  Severity `json:"severity"`

	Perspectives []Perspective `json:"perspectives"`
	Message      string        `json:"message"`
	Snippet      string        `json:"snippet,omitempty"`
	FixHint      string        `json:"fix_hint,omitempty"`

	// Copied from the rule at match time so downstream stages need no
	// corpus access.
	Platforms     []Platform `json:"platforms,omitempty"`
	Accessibility bool       `json:"accessibility,omitempty"`

	// Suppression state. A suppressed finding stays in the run's raw data
	// but is excluded from default rendering and threshold accounting.
	Suppressed       bool     `json:"suppressed,omitempty"`
	SuppressReason   string   `json:"suppress_reason,omitempty"`
	SuppressSource   string   `json:"suppress_source,omitempty"` // "inline" or "waiver"
	OverrideSeverity Severity `json:"override_severity,omitempty"`

	// DeclaredSeverity preserves the rule's declared class when an override
	// rewrites Severity; empty when no override applies.
	DeclaredSeverity Severity `json:"declared_severity,omitempty"`

	// Score is the weighted severity used for ordering; set by the weighter.
	Score float64 `json:"score,omitempty"`
}

// EffectiveSeverity honors a logged suppression override, if any.
func (f Finding) EffectiveSeverity() Severity {
	if f.OverrideSeverity.Valid() {
		return f.OverrideSeverity
	}
	return f.Severity
}

// HasPerspective reports whether f carries p.
func (f Finding) HasPerspective(p Perspective) bool {
	for _, q := range f.Perspectives {
		if q == p {
			return true
		}
	}
	return false
}

// AppliesTo reports whether f's rule applies under the given profile.
// An empty platform list on the rule means the rule applies everywhere.
func (f Finding) AppliesTo(pr Profile) bool {
	if len(f.Platforms) == 0 {
		return true
	}
	for _, p := range f.Platforms {
		if pr.HasPlatform(p) {
			return true
		}
	}
	return false
}

// Summary holds the top-line severity totals over rendered findings.
type Summary struct {
	Critical         int `json:"critical"`
	Important        int `json:"important"`
	ContextDependent int `json:"context_dependent"`
	Minor            int `json:"minor"`
}

func (s Summary) Total() int {
	return s.Critical + s.Important + s.ContextDependent + s.Minor
}

// AtOrAbove counts rendered findings at or above a severity threshold.
func (s Summary) AtOrAbove(min Severity) int {
	n := 0
	if SeverityCritical.Rank() >= min.Rank() {
		n += s.Critical
	}
	if SeverityImportant.Rank() >= min.Rank() {
		n += s.Important
	}
	if SeverityContextDependent.Rank() >= min.Rank() {
		n += s.ContextDependent
	}
	if SeverityMinor.Rank() >= min.Rank() {
		n += s.Minor
	}
	return n
}

// Report is the terminal output artifact: per-perspective finding groups in
// weighted order, plus severity totals. Suppressed findings never appear here.
type Report struct {
	Summary      Summary                   `json:"summary"`
	Perspectives map[Perspective][]Finding `json:"perspectives"`
	Weights      PerspectiveWeights        `json:"weights,omitempty"`
	Truncated    bool                      `json:"truncated"`
}

// Run captures one complete audit: inputs, raw findings (suppressed included),
// per-file warnings, and the rendered report.
type Run struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	Root          string    `json:"root,omitempty"`
	EngineVersion string    `json:"engine_version,omitempty"`
	CorpusVersion string    `json:"corpus_version,omitempty"`

	Profile  Profile  `json:"profile"`
	Warnings []string `json:"warnings,omitempty"`

	// Findings is the raw, classified set including suppressed entries.
	Findings []Finding `json:"findings,omitempty"`

	Report    Report `json:"report"`
	Truncated bool   `json:"truncated,omitempty"`
}
