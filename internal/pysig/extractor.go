package pysig

import (
	"context"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/hydra-lens/internal/cache"
)

// Overlay supplies in-editor content for a source file path, bypassing the
// filesystem. It returns the content, a fingerprint for it, and whether the
// path is overlaid.
type Overlay func(path string) (content []byte, fingerprint string, ok bool)

// Extractor parses Python source files into structural signatures, memoizing
// per file under a content fingerprint.
type Extractor struct {
	language *sitter.Language
	cache    *cache.Store[*FileSignatures]
	overlay  Overlay
}

// NewExtractor creates a signature extractor with an empty cache.
func NewExtractor() (*Extractor, error) {
	store, err := cache.New[*FileSignatures](0)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		language: sitter.NewLanguage(python.Language()),
		cache:    store,
	}, nil
}

// SetOverlay installs the document-tracking hook used for files that are
// open in the editor. May be nil.
func (e *Extractor) SetOverlay(overlay Overlay) {
	e.overlay = overlay
}

// Invalidate drops the cache entry for one file. Called by the file watcher
// when a source file changes on disk.
func (e *Extractor) Invalidate(path string) {
	e.cache.Delete(path)
}

// FileSignatures returns every top-level definition in the file, from cache
// when the content fingerprint still matches.
func (e *Extractor) FileSignatures(ctx context.Context, path string) (*FileSignatures, error) {
	source, fingerprint, err := e.load(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := e.cache.Get(path, fingerprint); ok {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sigs, err := extractWith(e.language, path, source)
	if err != nil {
		return nil, err
	}
	e.cache.Set(path, fingerprint, sigs)
	return sigs, nil
}

// Lookup returns the signature of the named top-level definition in the file.
func (e *Extractor) Lookup(ctx context.Context, path, symbol string) (*Signature, error) {
	sigs, err := e.FileSignatures(ctx, path)
	if err != nil {
		return nil, err
	}
	return sigs.Lookup(symbol)
}

// load fetches file content either from the editor overlay or from disk,
// together with the fingerprint that keys the cache entry.
func (e *Extractor) load(path string) ([]byte, string, error) {
	if e.overlay != nil {
		if content, fingerprint, ok := e.overlay(path); ok {
			return content, fingerprint, nil
		}
	}
	fingerprint, err := cache.FileFingerprint(path)
	if err != nil {
		return nil, "", err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return source, fingerprint, nil
}

// ExtractSource parses source into the signatures of its top-level function
// and class definitions. A name defined more than once keeps its last
// definition. Parse failure yields ErrParse.
func ExtractSource(path string, source []byte) (*FileSignatures, error) {
	return extractWith(sitter.NewLanguage(python.Language()), path, source)
}

func extractWith(language *sitter.Language, path string, source []byte) (*FileSignatures, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, ErrParse
	}
	defer tree.Close()

	root := tree.RootNode()
	sigs := &FileSignatures{
		Path:    path,
		Symbols: make(map[string]*Signature),
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		collectDefinition(root.Child(uint(i)), source, sigs)
	}
	return sigs, nil
}

// collectDefinition records the signature for a top-level statement if it is
// a (possibly decorated) function or class definition.
func collectDefinition(node *sitter.Node, source []byte, sigs *FileSignatures) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "decorated_definition":
		collectDefinition(node.ChildByFieldName("definition"), source, sigs)
	case "function_definition":
		if sig := functionSignature(node, source); sig != nil {
			sigs.Symbols[sig.Name] = sig
		}
	case "class_definition":
		if sig := classSignature(node, source); sig != nil {
			sigs.Symbols[sig.Name] = sig
		}
	}
}

// functionSignature builds a Signature from a function_definition node.
func functionSignature(node *sitter.Node, source []byte) *Signature {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sig := &Signature{
		Name:   nodeText(nameNode, source),
		Kind:   FunctionDef,
		Params: extractParams(node.ChildByFieldName("parameters"), source),
		Line:   int(node.StartPosition().Row),
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sig.ReturnType = nodeText(ret, source)
	}
	sig.Docstring = extractDocstring(node.ChildByFieldName("body"), source)
	return sig
}

// classSignature builds a Signature from a class_definition node, deriving
// parameters from the constructor. The constructor's first positional
// parameter (self) is dropped. A class without a constructor yields an
// implicit empty signature.
func classSignature(node *sitter.Node, source []byte) *Signature {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	sig := &Signature{
		Name: nodeText(nameNode, source),
		Kind: ClassDef,
		Line: int(node.StartPosition().Row),
	}
	body := node.ChildByFieldName("body")
	sig.Docstring = extractDocstring(body, source)

	init := findConstructor(body, source)
	if init == nil {
		sig.Implicit = true
		return sig
	}
	params := extractParams(init.ChildByFieldName("parameters"), source)
	if len(params) > 0 && params[0].Kind == PositionalOrKeyword {
		params = params[1:]
	}
	sig.Params = params
	return sig
}

// findConstructor locates the __init__ method in a class body. The last
// definition wins, mirroring runtime semantics of redefinition.
func findConstructor(body *sitter.Node, source []byte) *sitter.Node {
	if body == nil {
		return nil
	}
	var init *sitter.Node
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(uint(i))
		if child.Kind() == "decorated_definition" {
			child = child.ChildByFieldName("definition")
			if child == nil {
				continue
			}
		}
		if child.Kind() != "function_definition" {
			continue
		}
		if name := child.ChildByFieldName("name"); name != nil && nodeText(name, source) == "__init__" {
			init = child
		}
	}
	return init
}

// extractParams walks a parameters node and classifies each entry. A bare *
// or a *args parameter switches subsequent plain parameters to keyword-only.
func extractParams(params *sitter.Node, source []byte) []Param {
	if params == nil {
		return nil
	}
	var out []Param
	keywordOnly := false
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(uint(i))
		switch child.Kind() {
		case "identifier":
			out = append(out, Param{Name: nodeText(child, source), Kind: plainKind(keywordOnly)})

		case "typed_parameter":
			p := Param{Kind: plainKind(keywordOnly)}
			if t := child.ChildByFieldName("type"); t != nil {
				p.Annotation = nodeText(t, source)
			}
			// The declared name is the first child: an identifier, or a
			// splat pattern for annotated *args / **kwargs.
			switch inner := child.Child(0); inner.Kind() {
			case "identifier":
				p.Name = nodeText(inner, source)
			case "list_splat_pattern":
				p.Name = splatName(inner, source)
				p.Kind = VariadicPositional
				keywordOnly = true
			case "dictionary_splat_pattern":
				p.Name = splatName(inner, source)
				p.Kind = VariadicKeyword
			default:
				continue
			}
			out = append(out, p)

		case "default_parameter", "typed_default_parameter":
			p := Param{HasDefault: true, Kind: plainKind(keywordOnly)}
			if name := child.ChildByFieldName("name"); name != nil {
				p.Name = nodeText(name, source)
			}
			if t := child.ChildByFieldName("type"); t != nil {
				p.Annotation = nodeText(t, source)
			}
			if v := child.ChildByFieldName("value"); v != nil {
				p.Default = nodeText(v, source)
			}
			out = append(out, p)

		case "list_splat_pattern":
			out = append(out, Param{Name: splatName(child, source), Kind: VariadicPositional})
			keywordOnly = true

		case "dictionary_splat_pattern":
			out = append(out, Param{Name: splatName(child, source), Kind: VariadicKeyword})

		case "keyword_separator":
			keywordOnly = true
		}
	}
	return out
}

func plainKind(keywordOnly bool) ParamKind {
	if keywordOnly {
		return KeywordOnly
	}
	return PositionalOrKeyword
}

// splatName returns the identifier inside a *args / **kwargs pattern.
func splatName(node *sitter.Node, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == "identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

// extractDocstring returns the docstring of a body block: the string literal
// of its first expression statement, with quotes stripped.
func extractDocstring(body *sitter.Node, source []byte) string {
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Kind() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	str := first.Child(0)
	if str.Kind() != "string" {
		return ""
	}
	return stripQuotes(nodeText(str, source))
}

// stripQuotes removes Python string quoting from a literal, handling
// triple-quoted and prefixed (r/b/f) forms.
func stripQuotes(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}

// nodeText returns the source text a node spans.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}
