package editor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
)

// Path addresses one editable field: "basics.name", "location.city",
// "work[0].highlights" or "hobbies[1]".
type Path struct {
	Section resume.Section
	Index   int // -1 for basics and location
	Field   string
}

var pathPattern = regexp.MustCompile(`^([A-Za-z.]+?)(?:\[(\d+)\])?(?:\.([A-Za-z]+))?$`)

// ParsePath parses the dotted path syntax shared by the CLI and the editor.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	m := pathPattern.FindStringSubmatch(s)
	if m == nil {
		return Path{}, invalidPath(s, "expected section.field or section[index].field")
	}
	// the lazy head leaves the last dotted segment to the field, so
	// basics.location.city resolves to section "basics.location"
	head, idx, field := m[1], m[2], m[3]

	section, err := resume.ParseSection(head)
	if err != nil {
		return Path{}, err
	}

	p := Path{Section: section, Index: -1, Field: field}
	if section.IsRepeatable() {
		if idx == "" {
			return Path{}, invalidPath(s, fmt.Sprintf("section %q needs an index, e.g. %s[0]", section, section))
		}
		index, err := strconv.Atoi(idx)
		if err != nil {
			return Path{}, invalidPath(s, fmt.Sprintf("index %s is out of range", idx))
		}
		p.Index = index
		if p.Field == "" {
			p.Field = "value"
		}
		return p, nil
	}
	if idx != "" {
		return Path{}, invalidPath(s, fmt.Sprintf("section %q takes no index", section))
	}
	if p.Field == "" {
		return Path{}, invalidPath(s, "missing field name")
	}
	return p, nil
}

func (p Path) String() string {
	if p.Index < 0 {
		return string(p.Section) + "." + p.Field
	}
	if p.Section == resume.SectionHobbies {
		return fmt.Sprintf("%s[%d]", p.Section, p.Index)
	}
	return fmt.Sprintf("%s[%d].%s", p.Section, p.Index, p.Field)
}

// Kind returns the field's conversion.
func (p Path) Kind() Kind {
	return KindOf(p.Section, p.Field)
}

func invalidPath(path, reason string) error {
	return errors.NewValidationError(errors.ErrCodeInvalidInput,
		fmt.Sprintf("invalid field path %q: %s", path, reason), nil).
		WithContext("path", path)
}
