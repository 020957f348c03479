// Package pysig extracts structural signatures from Python source files.
// Signatures describe parameter lists only: annotation text and default
// expressions are captured verbatim for display, never evaluated.
package pysig

import "errors"

// ErrParse indicates the source file could not be parsed at all.
var ErrParse = errors.New("failed to parse source file")

// ErrSymbolNotFound indicates the file parsed but contains no top-level
// definition with the requested name.
var ErrSymbolNotFound = errors.New("symbol not found in module")

// ParamKind classifies how a parameter binds arguments.
type ParamKind int

const (
	// PositionalOrKeyword is a plain parameter.
	PositionalOrKeyword ParamKind = iota
	// VariadicPositional is a *args parameter.
	VariadicPositional
	// VariadicKeyword is a **kwargs parameter.
	VariadicKeyword
	// KeywordOnly is a parameter after a bare * or *args.
	KeywordOnly
)

// Param is one parameter of a signature.
type Param struct {
	Name       string
	Annotation string // literal annotation text, empty if none
	Default    string // literal default expression, empty if none
	HasDefault bool
	Kind       ParamKind
}

// Required reports whether the parameter must be supplied by name:
// it has no default and is not absorbed by a variadic form.
func (p Param) Required() bool {
	return !p.HasDefault && p.Kind != VariadicPositional && p.Kind != VariadicKeyword
}

// DefKind distinguishes what the signature was derived from.
type DefKind int

const (
	// FunctionDef is a top-level def.
	FunctionDef DefKind = iota
	// ClassDef is a class; the signature comes from its constructor.
	ClassDef
)

// Signature is the structural description of one callable.
type Signature struct {
	Name       string
	Kind       DefKind
	Params     []Param
	ReturnType string // literal return annotation, functions only
	Docstring  string
	Line       int // zero-based line of the definition in its file
	// Implicit marks a class without an explicit constructor. Parameter
	// diagnostics are suppressed against an implicit signature.
	Implicit bool
}

// Param returns the named parameter, or nil.
func (s *Signature) Param(name string) *Param {
	for i := range s.Params {
		if s.Params[i].Name == name {
			return &s.Params[i]
		}
	}
	return nil
}

// HasVariadicKeyword reports whether a **kwargs parameter is present,
// which absorbs any supplied name.
func (s *Signature) HasVariadicKeyword() bool {
	for _, p := range s.Params {
		if p.Kind == VariadicKeyword {
			return true
		}
	}
	return false
}

// FileSignatures holds every top-level definition extracted from one file,
// keyed by name. When a name is defined more than once at the top level,
// the last definition wins.
type FileSignatures struct {
	Path    string
	Symbols map[string]*Signature
}

// Lookup returns the signature for name, or ErrSymbolNotFound.
func (f *FileSignatures) Lookup(name string) (*Signature, error) {
	sig, ok := f.Symbols[name]
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return sig, nil
}
