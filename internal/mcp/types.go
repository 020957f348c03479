// Package mcp exposes the analysis pipeline over the Model Context
// Protocol: validation, target listing, hover, definition lookup, and
// interpreter reconfiguration, each as one tool.
package mcp

import (
	"github.com/mvp-joe/hydra-lens/internal/analyzer"
	"github.com/mvp-joe/hydra-lens/internal/diagnostics"
	"github.com/mvp-joe/hydra-lens/internal/target"
)

// ValidateRequest asks for a full validation pass over one document.
// When Text is present the snapshot is recorded in the document store under
// Version; otherwise the document is read from disk and validated statelessly.
// An omitted Version always supersedes the stored snapshot.
type ValidateRequest struct {
	Document string `json:"document"`
	Version  int    `json:"version,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ValidateResponse is the complete diagnostic set of one pass.
type ValidateResponse struct {
	Document    string                   `json:"document"`
	Diagnostics []diagnostics.Diagnostic `json:"diagnostics"`
	// Stale marks a pass whose snapshot was superseded before it finished.
	// Stale results carry no diagnostics and must not replace prior ones.
	Stale bool `json:"stale,omitempty"`
}

// TargetsRequest asks for the target references of an open document.
type TargetsRequest struct {
	Document string `json:"document"`
}

// TargetsResponse lists references in source order. Recognized reports
// whether the document belongs to the configuration dialect at all.
type TargetsResponse struct {
	Document   string             `json:"document"`
	Recognized bool               `json:"recognized"`
	Targets    []target.Reference `json:"targets"`
	Total      int                `json:"total"`
}

// PositionRequest identifies a cursor position in an open document.
// Line and Character are zero-based.
type PositionRequest struct {
	Document  string `json:"document"`
	Line      int    `json:"line"`
	Character int    `json:"character"`
}

// HoverResponse carries the formatted signature under the cursor, or empty
// content when nothing hoverable is there.
type HoverResponse struct {
	Contents string `json:"contents"`
}

// DefinitionResponse carries the resolved definition site, or a null
// location when the reference does not resolve.
type DefinitionResponse struct {
	Location *analyzer.Location `json:"location"`
}

// SetInterpreterRequest reconfigures the interpreter identity. An empty
// identity removes the interpreter layer.
type SetInterpreterRequest struct {
	Interpreter string `json:"interpreter"`
}

// SetInterpreterResponse acknowledges the swap.
type SetInterpreterResponse struct {
	Interpreter string `json:"interpreter"`
}
