package editor

import (
	"resumeforge/internal/resume"
)

// Kind says how a field's text is converted.
type Kind int

const (
	KindScalar Kind = iota
	KindLines
	KindComma
)

func (k Kind) String() string {
	switch k {
	case KindLines:
		return "lines"
	case KindComma:
		return "comma"
	}
	return "scalar"
}

// KindOf returns the conversion for a field: keyword lists are comma
// separated, other lists (highlights, courses) take one entry per line.
func KindOf(section resume.Section, field string) Kind {
	if !resume.IsListField(section, field) {
		return KindScalar
	}
	if field == "keywords" {
		return KindComma
	}
	return KindLines
}

// Parse converts typed text into a stored value: string for scalars,
// []string for lists.
func (k Kind) Parse(raw string) any {
	switch k {
	case KindLines:
		return SplitLines(raw)
	case KindComma:
		return SplitComma(raw)
	}
	return raw
}

// Format converts a stored value back into editable text.
func (k Kind) Format(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		if k == KindComma {
			return JoinComma(v)
		}
		return JoinLines(v)
	}
	return ""
}
