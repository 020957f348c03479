// Package pymodule resolves dotted Python module paths to source files
// across a layered search path: the workspace root first, then the
// configured interpreter's sys.path entries in order.
package pymodule

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformedPath indicates a target path that is not identifier-and-dot
// syntax with at least a module segment and a symbol segment.
var ErrMalformedPath = errors.New("malformed target path")

var segmentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTarget checks a dotted target path syntactically: non-empty,
// no empty segments, identifier characters only, and at least two segments
// (a module and the symbol it contains). Checked independently of
// resolution.
func ValidateTarget(target string) error {
	if target == "" {
		return fmt.Errorf("%w: empty target", ErrMalformedPath)
	}
	segments := strings.Split(target, ".")
	if len(segments) < 2 {
		return fmt.Errorf("%w: %q must name a module and a symbol", ErrMalformedPath, target)
	}
	for _, seg := range segments {
		if !segmentRe.MatchString(seg) {
			return fmt.Errorf("%w: %q", ErrMalformedPath, target)
		}
	}
	return nil
}

// SplitTarget splits a validated target path into its dotted module path and
// the final symbol segment: "pkg.models.Net" -> ("pkg.models", "Net").
func SplitTarget(target string) (modulePath, symbol string, err error) {
	if err := ValidateTarget(target); err != nil {
		return "", "", err
	}
	idx := strings.LastIndex(target, ".")
	return target[:idx], target[idx+1:], nil
}
