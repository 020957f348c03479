// Package diagnostics compares target references against extracted
// signatures and produces findings. Each validation pass produces a
// complete set that wholesale replaces the prior set for a document.
package diagnostics

import "github.com/mvp-joe/hydra-lens/internal/target"

// Source tags every diagnostic with the producing tool.
const Source = "hydra-lens"

// Severity of a finding.
type Severity int

const (
	// SeverityError marks findings that make the target uninstantiable.
	SeverityError Severity = iota + 1
	// SeverityWarning marks degraded-but-working conditions.
	SeverityWarning
	// SeverityHint marks informational findings.
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Code classifies a finding.
type Code string

const (
	CodeMalformedTargetPath      Code = "malformed-target-path"
	CodeModuleNotFound           Code = "module-not-found"
	CodeSymbolNotFound           Code = "symbol-not-found"
	CodeUnknownParameter         Code = "unknown-parameter"
	CodeMissingRequiredParameter Code = "missing-required-parameter"
	CodeParseError               Code = "parse-error"
	CodeResolutionInfra          Code = "resolution-infra-error"
	// CodeKwargsAbsorbed is the hint emitted for names absorbed by a
	// variadic-keyword parameter.
	CodeKwargsAbsorbed Code = "kwargs-absorbed"
)

// Diagnostic is one finding with its source range.
type Diagnostic struct {
	Severity Severity     `json:"severity"`
	Code     Code         `json:"code"`
	Range    target.Range `json:"range"`
	Message  string       `json:"message"`
	Source   string       `json:"source"`
}
