package target

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// TargetKey is the reserved mapping key that declares an instantiation target.
const TargetKey = "_target_"

// defaultMarkers are the comment prefixes that mark a document as in-dialect
// even when it contains no reserved key yet.
var defaultMarkers = []string{"# @hydra", "# hydra:"}

// markerScanLines limits how far into a document marker comments are searched.
const markerScanLines = 10

// Extractor parses configuration text into target references.
type Extractor struct {
	markers []string
}

// NewExtractor creates an extractor. With no arguments the standard marker
// comments are recognized.
func NewExtractor(markers ...string) *Extractor {
	if len(markers) == 0 {
		markers = defaultMarkers
	}
	return &Extractor{markers: markers}
}

// Recognized reports whether the text belongs to the configuration dialect:
// either a marker comment appears near the top, or the reserved key appears
// anywhere in the document.
func (e *Extractor) Recognized(text string) bool {
	lines := strings.Split(text, "\n")
	limit := markerScanLines
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		trimmed := strings.TrimSpace(line)
		for _, marker := range e.markers {
			if strings.HasPrefix(trimmed, marker) {
				return true
			}
		}
	}
	return strings.Contains(text, TargetKey)
}

// Extract produces the ordered sequence of target references in the text,
// together with parse errors for regions that were not well-formed YAML.
// A parse error never fails the whole document: references extracted from
// earlier documents in a multi-document stream are still returned, but
// documents after the error are skipped because the decoder cannot resume.
func (e *Extractor) Extract(docID, text string) ([]Reference, []ParseError) {
	refs := []Reference{}
	var parseErrs []ParseError

	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var root yaml.Node
		err := dec.Decode(&root)
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrs = append(parseErrs, parseErrorFrom(err))
			// The decoder cannot make progress past a syntax error, so
			// documents after the bad one go unscanned.
			break
		}
		collectRefs(&root, docID, &refs)
	}

	return refs, parseErrs
}

// ReferenceAt returns the reference whose target value range contains pos,
// falling back to a match on the target value's line.
func ReferenceAt(refs []Reference, pos Position) *Reference {
	for i := range refs {
		if refs[i].Range.Contains(pos) {
			return &refs[i]
		}
	}
	for i := range refs {
		if refs[i].Range.Start.Line == pos.Line {
			return &refs[i]
		}
	}
	return nil
}

// collectRefs walks the parsed node tree and appends a Reference for every
// mapping that carries the reserved key with a scalar value. The reserved key
// may appear at any nesting depth; siblings at the same mapping level become
// the reference's parameters.
func collectRefs(n *yaml.Node, docID string, refs *[]Reference) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode:
		for _, child := range n.Content {
			collectRefs(child, docID, refs)
		}
	case yaml.MappingNode:
		if ref := referenceFromMapping(n, docID); ref != nil {
			*refs = append(*refs, *ref)
		}
		// Pairs are laid out as [key0, val0, key1, val1, ...].
		for i := 1; i < len(n.Content); i += 2 {
			collectRefs(n.Content[i], docID, refs)
		}
	case yaml.SequenceNode:
		for _, child := range n.Content {
			collectRefs(child, docID, refs)
		}
	}
}

// referenceFromMapping builds a Reference if the mapping has a scalar-valued
// reserved key, or returns nil.
func referenceFromMapping(mapping *yaml.Node, docID string) *Reference {
	var targetValue *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.Value == TargetKey && val.Kind == yaml.ScalarNode {
			targetValue = val
			break
		}
	}
	if targetValue == nil {
		return nil
	}

	ref := &Reference{
		Path:       targetValue.Value,
		Range:      scalarRange(targetValue),
		DocumentID: docID,
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, val := mapping.Content[i], mapping.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == TargetKey {
			continue
		}
		ref.Parameters = append(ref.Parameters, Parameter{
			Name:       key.Value,
			RawValue:   rawText(val),
			KeyRange:   scalarRange(key),
			ValueRange: scalarRange(val),
		})
	}
	return ref
}

// rawText preserves a parameter value as source-shaped text. Scalars keep
// their literal value; compound values are re-serialized, which is enough for
// downstream name-based comparison and display.
func rawText(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		return n.Value
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\n")
}

// scalarRange converts a node's 1-based position into a zero-based range.
// For scalar nodes the end extends over the literal value; compound nodes get
// a caret-width range at their start.
func scalarRange(n *yaml.Node) Range {
	start := Position{Line: n.Line - 1, Character: n.Column - 1}
	end := start
	if n.Kind == yaml.ScalarNode {
		end.Character += len(n.Value)
	}
	return Range{Start: start, End: end}
}

var yamlLineRe = regexp.MustCompile(`yaml: line (\d+):`)

// parseErrorFrom maps a decoder error to a ParseError localized to the line
// the decoder reported, or to the document start when none is available.
func parseErrorFrom(err error) ParseError {
	pe := ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		line := 0
		fmt.Sscanf(m[1], "%d", &line)
		if line > 0 {
			pe.Range = Range{
				Start: Position{Line: line - 1},
				End:   Position{Line: line - 1, Character: 1},
			}
		}
	}
	return pe
}
