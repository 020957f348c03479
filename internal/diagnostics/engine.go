package diagnostics

import (
	"fmt"
	"sort"

	"github.com/mvp-joe/hydra-lens/internal/pysig"
	"github.com/mvp-joe/hydra-lens/internal/target"
)

func newDiagnostic(severity Severity, code Code, rng target.Range, message string) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Code:     code,
		Range:    rng,
		Message:  message,
		Source:   Source,
	}
}

// MalformedPath reports a syntactically invalid dotted target path.
func MalformedPath(ref *target.Reference) Diagnostic {
	return newDiagnostic(SeverityError, CodeMalformedTargetPath, ref.Range,
		fmt.Sprintf("invalid target path %q: expected 'module.path.SymbolName'", ref.Path))
}

// ModuleNotFound reports that resolution exhausted every search layer.
func ModuleNotFound(ref *target.Reference, modulePath string) Diagnostic {
	return newDiagnostic(SeverityError, CodeModuleNotFound, ref.Range,
		fmt.Sprintf("cannot resolve module %q", modulePath))
}

// SymbolNotFound reports a resolved module that lacks the named definition.
func SymbolNotFound(ref *target.Reference, modulePath, symbol string) Diagnostic {
	return newDiagnostic(SeverityError, CodeSymbolNotFound, ref.Range,
		fmt.Sprintf("symbol %q not found in module %q", symbol, modulePath))
}

// ParseError localizes an unparseable region of the configuration or the
// resolved source file.
func ParseError(rng target.Range, message string) Diagnostic {
	return newDiagnostic(SeverityError, CodeParseError, rng, message)
}

// InfraWarning reports interpreter-invocation failure. The pass degrades to
// workspace-only resolution; this is recorded once per document, at the
// document origin, rather than failing every target.
func InfraWarning(err error) Diagnostic {
	return newDiagnostic(SeverityWarning, CodeResolutionInfra, target.Range{},
		fmt.Sprintf("interpreter search path unavailable, falling back to workspace-only resolution: %v", err))
}

// ValidateParams compares supplied parameters against the signature.
// Rules:
//   - a name absent from the signature is unknown-parameter, unless a
//     variadic-keyword parameter absorbs it (hint instead of error);
//   - a required parameter (no default, not variadic) with no matching
//     supplied name is missing-required-parameter, reported at the target
//     value's range;
//   - an implicit class signature (no explicit constructor) produces no
//     parameter findings at all.
//
// Name matching is exact and case-sensitive.
func ValidateParams(ref *target.Reference, sig *pysig.Signature) []Diagnostic {
	if sig == nil || sig.Implicit {
		return nil
	}

	var out []Diagnostic
	absorbs := sig.HasVariadicKeyword()

	for i := range ref.Parameters {
		supplied := &ref.Parameters[i]
		if sig.Param(supplied.Name) != nil {
			continue
		}
		if absorbs {
			out = append(out, newDiagnostic(SeverityHint, CodeKwargsAbsorbed, supplied.KeyRange,
				fmt.Sprintf("parameter %q will be passed via **kwargs", supplied.Name)))
			continue
		}
		out = append(out, newDiagnostic(SeverityError, CodeUnknownParameter, supplied.KeyRange,
			fmt.Sprintf("unknown parameter %q for %q", supplied.Name, sig.Name)))
	}

	for _, p := range sig.Params {
		if !p.Required() {
			continue
		}
		if ref.Parameter(p.Name) != nil {
			continue
		}
		// No more precise range exists: the parameter is absent from the
		// configuration text.
		out = append(out, newDiagnostic(SeverityError, CodeMissingRequiredParameter, ref.Range,
			fmt.Sprintf("missing required parameter %q for %q", p.Name, sig.Name)))
	}

	return out
}

// Sort orders findings by (line, character) for stable publication.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Range.Start, diags[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
}
