package pysig

import "strings"

// Format renders the signature as Python-style display text, suitable for a
// hover payload. Annotation and default text appear verbatim; nothing is
// evaluated or normalized.
func (s *Signature) Format() string {
	var b strings.Builder
	b.WriteString("```python\n")
	if s.Kind == ClassDef {
		b.WriteString("class ")
		b.WriteString(s.Name)
		if !s.Implicit {
			b.WriteString("(")
			b.WriteString(s.formatParams())
			b.WriteString(")")
		}
	} else {
		b.WriteString("def ")
		b.WriteString(s.Name)
		b.WriteString("(")
		b.WriteString(s.formatParams())
		b.WriteString(")")
		if s.ReturnType != "" {
			b.WriteString(" -> ")
			b.WriteString(s.ReturnType)
		}
	}
	b.WriteString("\n```")
	if s.Docstring != "" {
		b.WriteString("\n\n---\n\n")
		b.WriteString(s.Docstring)
	}
	return b.String()
}

func (s *Signature) formatParams() string {
	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		var sb strings.Builder
		switch p.Kind {
		case VariadicPositional:
			sb.WriteString("*")
		case VariadicKeyword:
			sb.WriteString("**")
		}
		sb.WriteString(p.Name)
		if p.Annotation != "" {
			sb.WriteString(": ")
			sb.WriteString(p.Annotation)
		}
		if p.HasDefault {
			if p.Annotation != "" {
				sb.WriteString(" = ")
			} else {
				sb.WriteString("=")
			}
			sb.WriteString(p.Default)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, ", ")
}
