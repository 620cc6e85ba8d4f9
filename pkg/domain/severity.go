package domain

import dErrors "sitewatch/pkg/domain-errors"

// Severity grades safety alerts, compliance events and audit entries.
// Invariant: the value must be one of the supported severities.
//
// Usage: construct via ParseSeverity at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityRanks is the single source of truth for valid severities and their
// ordering.
var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// IsValid reports whether the severity is one of the supported values.
func (s Severity) IsValid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Rank returns the numeric ordering of the severity, higher is worse.
// Unknown severities rank 0, below LOW.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Rank() >= other.Rank()
}

// ParseSeverity constructs a Severity from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseSeverity(s string) (Severity, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "severity cannot be empty")
	}
	sev := Severity(s)
	if !sev.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "severity must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}
	return sev, nil
}
