package resume

import (
	"fmt"
	"strings"

	"resumeforge/internal/errors"
)

// Section names a part of the document addressable by editors.
type Section string

const (
	// Scalar groups
	SectionBasics   Section = "basics"
	SectionLocation Section = "location"

	// Repeatable sections
	SectionProfiles     Section = "profiles"
	SectionWork         Section = "work"
	SectionEducation    Section = "education"
	SectionSkills       Section = "skills"
	SectionProjects     Section = "projects"
	SectionAwards       Section = "awards"
	SectionLanguages    Section = "languages"
	SectionInterests    Section = "interests"
	SectionHobbies      Section = "hobbies"
	SectionReferences   Section = "references"
	SectionCertificates Section = "certificates"
	SectionPublications Section = "publications"
)

var repeatable = []Section{
	SectionProfiles,
	SectionWork,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionAwards,
	SectionLanguages,
	SectionInterests,
	SectionHobbies,
	SectionReferences,
	SectionCertificates,
	SectionPublications,
}

// RenderOrder is the fixed order in which renderers emit blocks. SectionBasics
// stands for the header and summary.
var RenderOrder = []Section{
	SectionBasics,
	SectionEducation,
	SectionWork,
	SectionProjects,
	SectionSkills,
	SectionAwards,
	SectionLanguages,
	SectionInterests,
	SectionHobbies,
	SectionReferences,
	SectionCertificates,
	SectionPublications,
}

var sectionTitles = map[Section]string{
	SectionBasics:       "Summary",
	SectionEducation:    "Education",
	SectionWork:         "Experience",
	SectionProjects:     "Projects",
	SectionSkills:       "Technical Skills",
	SectionAwards:       "Awards",
	SectionLanguages:    "Languages",
	SectionInterests:    "Interests",
	SectionHobbies:      "Hobbies",
	SectionReferences:   "References",
	SectionCertificates: "Certificates",
	SectionPublications: "Publications",
	SectionProfiles:     "Profiles",
}

// aliases accepted on the command line and from older clients
var sectionAliases = map[string]Section{
	"experience":      SectionWork,
	"basics.location": SectionLocation,
	"basics.profiles": SectionProfiles,
}

// RepeatableSections returns every section that holds an ordered list of records.
func RepeatableSections() []Section {
	out := make([]Section, len(repeatable))
	copy(out, repeatable)
	return out
}

// IsRepeatable reports whether s holds a list of records.
func (s Section) IsRepeatable() bool {
	for _, r := range repeatable {
		if r == s {
			return true
		}
	}
	return false
}

// Title is the heading renderers print for the section.
func (s Section) Title() string {
	if t, ok := sectionTitles[s]; ok {
		return t
	}
	return string(s)
}

// ParseSection resolves a section name, accepting a few aliases.
func ParseSection(name string) (Section, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := sectionAliases[n]; ok {
		return alias, nil
	}
	s := Section(n)
	if s == SectionBasics || s == SectionLocation || s.IsRepeatable() {
		return s, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeUnknownSection,
		fmt.Sprintf("unknown section %q", name), nil).
		WithContext("section", name)
}

// Blank returns the default record seeded into an empty section. List fields
// are empty slices, never nil.
func Blank(s Section) any {
	switch s {
	case SectionProfiles:
		return Profile{}
	case SectionWork:
		return Work{Highlights: []string{}}
	case SectionEducation:
		return Education{Courses: []string{}}
	case SectionSkills:
		return Skill{Keywords: []string{}}
	case SectionProjects:
		return Project{Highlights: []string{}, Keywords: []string{}}
	case SectionAwards:
		return Award{}
	case SectionLanguages:
		return Language{}
	case SectionInterests:
		return Interest{Keywords: []string{}}
	case SectionHobbies:
		return ""
	case SectionReferences:
		return Reference{}
	case SectionCertificates:
		return Certificate{}
	case SectionPublications:
		return Publication{}
	}
	return nil
}
