// Package analyzer orchestrates the validation pipeline: target extraction
// from configuration text, module resolution, signature lookup, and
// parameter validation, producing one complete diagnostic set per pass.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mvp-joe/hydra-lens/internal/cache"
	"github.com/mvp-joe/hydra-lens/internal/config"
	"github.com/mvp-joe/hydra-lens/internal/diagnostics"
	"github.com/mvp-joe/hydra-lens/internal/document"
	"github.com/mvp-joe/hydra-lens/internal/pymodule"
	"github.com/mvp-joe/hydra-lens/internal/pysig"
	"github.com/mvp-joe/hydra-lens/internal/target"
)

// ErrStale indicates a newer version of the document arrived while the pass
// was running. The pass's results must be discarded, not published.
var ErrStale = errors.New("document superseded during validation")

// Location is a resolved definition site.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"` // zero-based
}

// Analyzer owns the document store and the analysis pipeline stages.
// It is safe for concurrent use.
type Analyzer struct {
	docs       *document.Store
	targets    *target.Extractor
	resolver   *pymodule.Resolver
	signatures *pysig.Extractor
	verbose    bool
}

// New wires the pipeline from configuration.
func New(cfg *config.Config) (*Analyzer, error) {
	resolver, err := pymodule.NewResolver(cfg.Workspace.Root, cfg.Workspace.SearchPaths, cfg.Python.Interpreter)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}
	signatures, err := pysig.NewExtractor()
	if err != nil {
		return nil, fmt.Errorf("failed to create signature extractor: %w", err)
	}

	a := &Analyzer{
		docs:       document.NewStore(),
		targets:    target.NewExtractor(cfg.Recognition.Markers...),
		resolver:   resolver,
		signatures: signatures,
	}
	// Source files that are themselves open documents are analyzed from
	// their in-editor text instead of disk.
	signatures.SetOverlay(a.overlay)
	return a, nil
}

// SetVerbose enables per-pass logging.
func (a *Analyzer) SetVerbose(v bool) { a.verbose = v }

// Documents exposes the open-document store.
func (a *Analyzer) Documents() *document.Store { return a.docs }

func (a *Analyzer) overlay(path string) ([]byte, string, bool) {
	doc, ok := a.docs.Get(path)
	if !ok {
		return nil, "", false
	}
	content := []byte(doc.Text)
	return content, cache.HashBytes(content), true
}

// OpenDocument records a document snapshot, rejecting stale versions.
func (a *Analyzer) OpenDocument(id string, version int32, text string) bool {
	return a.docs.Set(id, version, text)
}

// CloseDocument forgets a document. Subsequent signature lookups for the
// path fall back to disk.
func (a *Analyzer) CloseDocument(id string) {
	a.docs.Remove(id)
}

// ValidateDocument records the snapshot and runs a full validation pass over
// it. The returned diagnostic set wholesale replaces any prior set for the
// document. ErrStale is returned when the snapshot is older than the stored
// version, or when a newer version arrived while the pass was running.
func (a *Analyzer) ValidateDocument(ctx context.Context, id string, version int32, text string) ([]diagnostics.Diagnostic, error) {
	if !a.docs.Set(id, version, text) {
		return nil, ErrStale
	}
	diags, err := a.Run(ctx, id, text)
	if err != nil {
		return nil, err
	}
	if current, ok := a.docs.Version(id); ok && current != version {
		return nil, ErrStale
	}
	if a.verbose {
		log.Printf("validated %s v%d: %d finding(s)", id, version, len(diags))
	}
	return diags, nil
}

// Run executes one validation pass over text. Out-of-dialect documents
// produce an empty set. The set is sorted by position.
func (a *Analyzer) Run(ctx context.Context, docID, text string) ([]diagnostics.Diagnostic, error) {
	diags := []diagnostics.Diagnostic{}
	if !a.targets.Recognized(text) {
		return diags, nil
	}

	refs, parseErrs := a.targets.Extract(docID, text)
	for _, pe := range parseErrs {
		diags = append(diags, diagnostics.ParseError(pe.Range, pe.Message))
	}

	infraReported := false
	for i := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, infraErr, err := a.validateReference(ctx, &refs[i])
		if err != nil {
			// The pass was cancelled mid-reference. An aborted pass
			// produces no set at all, not a partial one.
			return nil, err
		}
		if infraErr != nil && !infraReported {
			diags = append(diags, diagnostics.InfraWarning(infraErr))
			infraReported = true
		}
		diags = append(diags, ds...)
	}

	diagnostics.Sort(diags)
	return diags, nil
}

// validateReference runs one reference through resolution, signature lookup,
// and parameter validation. infraErr is an interpreter infrastructure
// failure, reported once per pass by the caller. A non-nil err means the
// pass itself was cancelled; cancellation is never an infrastructure
// failure and never produces a warning.
func (a *Analyzer) validateReference(ctx context.Context, ref *target.Reference) (diags []diagnostics.Diagnostic, infraErr, err error) {
	modulePath, symbol, serr := pymodule.SplitTarget(ref.Path)
	if serr != nil {
		return []diagnostics.Diagnostic{diagnostics.MalformedPath(ref)}, nil, nil
	}

	res, infraErr := a.resolver.Resolve(ctx, modulePath)
	if cerr := ctx.Err(); cerr != nil {
		return nil, nil, cerr
	}
	if !res.Resolved() {
		return []diagnostics.Diagnostic{diagnostics.ModuleNotFound(ref, modulePath)}, infraErr, nil
	}

	sig, lerr := a.signatures.Lookup(ctx, res.File, symbol)
	switch {
	case lerr == nil:
	case errors.Is(lerr, pysig.ErrSymbolNotFound):
		return []diagnostics.Diagnostic{diagnostics.SymbolNotFound(ref, modulePath, symbol)}, infraErr, nil
	case errors.Is(lerr, context.Canceled) || errors.Is(lerr, context.DeadlineExceeded):
		return nil, nil, lerr
	default:
		// Unreadable or unparseable source file. The target cannot be
		// checked further, but that is a property of the module, not of
		// the configuration document's syntax.
		return []diagnostics.Diagnostic{
			diagnostics.ParseError(ref.Range, fmt.Sprintf("cannot analyze %q: %v", res.File, lerr)),
		}, infraErr, nil
	}

	return diagnostics.ValidateParams(ref, sig), infraErr, nil
}

// Targets returns the target references of an open document in source
// order, together with whether the document is recognized as in-dialect.
func (a *Analyzer) Targets(id string) ([]target.Reference, bool, error) {
	doc, ok := a.docs.Get(id)
	if !ok {
		return nil, false, fmt.Errorf("document %q is not open", id)
	}
	refs, _ := a.targets.Extract(id, doc.Text)
	return refs, a.targets.Recognized(doc.Text), nil
}

// Hover returns the formatted signature of the target reference at pos in an
// open document, or "" when nothing hoverable is there.
func (a *Analyzer) Hover(ctx context.Context, id string, pos target.Position) (string, error) {
	sig, _, err := a.signatureAt(ctx, id, pos)
	if err != nil || sig == nil {
		return "", err
	}
	return sig.Format(), nil
}

// Definition returns the definition site of the target reference at pos in
// an open document, or nil when the reference does not resolve.
func (a *Analyzer) Definition(ctx context.Context, id string, pos target.Position) (*Location, error) {
	sig, file, err := a.signatureAt(ctx, id, pos)
	if err != nil || sig == nil {
		return nil, err
	}
	return &Location{File: file, Line: sig.Line}, nil
}

// signatureAt resolves the reference under pos to its signature and source
// file. A reference that is absent, malformed, or unresolvable yields
// (nil, "", nil): hover and definition degrade to "no result" rather than
// failing.
func (a *Analyzer) signatureAt(ctx context.Context, id string, pos target.Position) (*pysig.Signature, string, error) {
	doc, ok := a.docs.Get(id)
	if !ok {
		return nil, "", fmt.Errorf("document %q is not open", id)
	}
	refs, _ := a.targets.Extract(id, doc.Text)
	ref := target.ReferenceAt(refs, pos)
	if ref == nil {
		return nil, "", nil
	}
	modulePath, symbol, err := pymodule.SplitTarget(ref.Path)
	if err != nil {
		return nil, "", nil
	}
	res, _ := a.resolver.Resolve(ctx, modulePath)
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	if !res.Resolved() {
		return nil, "", nil
	}
	sig, err := a.signatures.Lookup(ctx, res.File, symbol)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, "", err
		}
		return nil, "", nil
	}
	return sig, res.File, nil
}

// ReconfigureInterpreter swaps the interpreter identity. All resolutions
// cached under the old interpreter are dropped atomically with the swap.
func (a *Analyzer) ReconfigureInterpreter(identity string) {
	a.resolver.Reconfigure(identity)
	if a.verbose {
		log.Printf("interpreter reconfigured: %q", identity)
	}
}

// Interpreter returns the currently configured interpreter identity, or "".
func (a *Analyzer) Interpreter() string {
	return a.resolver.Interpreter()
}

// FileChanged invalidates cached analysis for a source file that was
// modified, created, or removed on disk. Creation and removal can change
// what a dotted path resolves to, so those also drop cached resolutions.
func (a *Analyzer) FileChanged(path string, existenceChanged bool) {
	if !isPythonSource(path) {
		return
	}
	a.signatures.Invalidate(path)
	if existenceChanged {
		a.resolver.ResetCache()
	}
}

func isPythonSource(path string) bool {
	return strings.HasSuffix(path, ".py") || strings.HasSuffix(path, ".pyi")
}
