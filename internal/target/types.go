package target

// Position is a zero-based line/character location in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [start, end) span in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether pos falls inside the range. The end position is
// exclusive, matching editor conventions.
func (r Range) Contains(pos Position) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// Parameter is one sibling key of a _target_ occurrence. The value is kept
// as raw text; the pipeline never interprets it beyond name matching.
type Parameter struct {
	Name       string `json:"name"`
	RawValue   string `json:"raw_value"`
	KeyRange   Range  `json:"key_range"`
	ValueRange Range  `json:"value_range"`
}

// Reference is a single _target_ occurrence in a configuration document:
// the dotted path it names, the sibling parameters, and where the target
// value sits in the source text.
type Reference struct {
	Path       string      `json:"path"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Range      Range       `json:"range"`
	DocumentID string      `json:"document_id"`
}

// Parameter returns the named parameter, or nil if the reference does not
// supply it. Matching is exact and case-sensitive.
func (r *Reference) Parameter(name string) *Parameter {
	for i := range r.Parameters {
		if r.Parameters[i].Name == name {
			return &r.Parameters[i]
		}
	}
	return nil
}

// ParseError describes a region of configuration text that could not be
// parsed. It is surfaced as a diagnostic rather than failing extraction.
type ParseError struct {
	Message string
	Range   Range
}
