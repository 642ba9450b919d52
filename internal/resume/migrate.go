package resume

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"resumeforge/internal/errors"
)

// Migrate upgrades a stored document to CurrentSchemaVersion and reports the
// version it was read as. Documents without a schemaVersion are inspected:
// a "basics" object means the structured layout, anything else is the flat
// form-builder layout (version 0).
func Migrate(raw []byte) ([]byte, int, error) {
	if !gjson.ValidBytes(raw) {
		return nil, 0, errors.NewValidationError(errors.ErrCodeDecodeFailed,
			"stored resume is not valid JSON", nil)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, 0, errors.NewValidationError(errors.ErrCodeDecodeFailed,
			"stored resume must be a JSON object", nil)
	}

	version := detectVersion(root)
	switch {
	case version > CurrentSchemaVersion:
		return nil, version, errors.NewValidationError(errors.ErrCodeDecodeFailed,
			fmt.Sprintf("resume schema version %d is newer than supported version %d", version, CurrentSchemaVersion), nil).
			WithContext("schema_version", version)
	case version == CurrentSchemaVersion:
		out, err := coerceLists(raw, root)
		if err != nil {
			return nil, version, errors.NewValidationError(errors.ErrCodeDecodeFailed,
				"failed to convert list fields", err)
		}
		return out, version, nil
	}

	doc := migrateLegacy(root)
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, version, errors.NewInternalError(errors.ErrCodeDecodeFailed,
			"failed to encode migrated resume", err)
	}
	return out, version, nil
}

func detectVersion(root gjson.Result) int {
	if v := root.Get("schemaVersion"); v.Exists() {
		return int(v.Int())
	}
	if root.Get("basics").IsObject() {
		return CurrentSchemaVersion
	}
	return 0
}

// migrateLegacy maps the flat layout:
//
//	{name, email, phone, location, website, twitter, github, summary,
//	 experience[{position, company, startDate, endDate, description[]}],
//	 projects[{name, link, skills[], description[], duration}],
//	 education[{institution, degree, status, startDate, endDate}],
//	 skills[{category, skills[]}], awards[], languages[], interests[],
//	 hobbies[], references[]}
func migrateLegacy(root gjson.Result) Document {
	var doc Document
	doc.Basics = Basics{
		Name:    root.Get("name").String(),
		Email:   root.Get("email").String(),
		Phone:   root.Get("phone").String(),
		URL:     root.Get("website").String(),
		Summary: root.Get("summary").String(),
		Location: Location{
			City: root.Get("location").String(),
		},
	}
	if handle := strings.TrimPrefix(strings.TrimSpace(root.Get("twitter").String()), "@"); handle != "" {
		doc.Basics.Profiles = append(doc.Basics.Profiles, Profile{
			Network:  "Twitter",
			Username: handle,
			URL:      "https://twitter.com/" + handle,
		})
	}
	if handle := strings.TrimSpace(root.Get("github").String()); handle != "" {
		doc.Basics.Profiles = append(doc.Basics.Profiles, Profile{
			Network:  "GitHub",
			Username: handle,
			URL:      "https://github.com/" + handle,
		})
	}

	root.Get("experience").ForEach(func(_, item gjson.Result) bool {
		doc.Work = append(doc.Work, Work{
			Name:       item.Get("company").String(),
			Position:   item.Get("position").String(),
			StartDate:  item.Get("startDate").String(),
			EndDate:    item.Get("endDate").String(),
			Highlights: legacyList(item.Get("description")),
		})
		return true
	})

	root.Get("projects").ForEach(func(_, item gjson.Result) bool {
		doc.Projects = append(doc.Projects, Project{
			Name:       item.Get("name").String(),
			URL:        item.Get("link").String(),
			StartDate:  item.Get("duration").String(),
			Keywords:   legacyList(item.Get("skills")),
			Highlights: legacyList(item.Get("description")),
		})
		return true
	})

	root.Get("education").ForEach(func(_, item gjson.Result) bool {
		studyType := item.Get("degree").String()
		if status := strings.TrimSpace(item.Get("status").String()); status != "" {
			studyType = strings.TrimSpace(studyType + " (" + status + ")")
		}
		doc.Education = append(doc.Education, Education{
			Institution: item.Get("institution").String(),
			StudyType:   studyType,
			StartDate:   item.Get("startDate").String(),
			EndDate:     item.Get("endDate").String(),
		})
		return true
	})

	root.Get("skills").ForEach(func(_, item gjson.Result) bool {
		doc.Skills = append(doc.Skills, Skill{
			Name:     item.Get("category").String(),
			Keywords: legacyList(item.Get("skills")),
		})
		return true
	})

	root.Get("awards").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			doc.Awards = append(doc.Awards, Award{
				Title:   item.Get("title").String(),
				Date:    item.Get("date").String(),
				Summary: item.Get("summary").String(),
			})
		} else {
			doc.Awards = append(doc.Awards, Award{Title: item.String()})
		}
		return true
	})

	root.Get("languages").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			doc.Languages = append(doc.Languages, Language{
				Language: item.Get("language").String(),
				Fluency:  item.Get("fluency").String(),
			})
		} else {
			doc.Languages = append(doc.Languages, Language{Language: item.String()})
		}
		return true
	})

	root.Get("interests").ForEach(func(_, item gjson.Result) bool {
		doc.Interests = append(doc.Interests, Interest{Name: item.String()})
		return true
	})

	doc.Hobbies = legacyList(root.Get("hobbies"))

	root.Get("references").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			doc.References = append(doc.References, Reference{
				Name:      item.Get("name").String(),
				Reference: item.Get("reference").String(),
			})
		} else {
			doc.References = append(doc.References, Reference{Reference: item.String()})
		}
		return true
	})

	Normalize(&doc)
	return doc
}

// legacyList reads a field that older clients stored either as an array or as
// newline separated text.
func legacyList(r gjson.Result) []string {
	out := []string{}
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
	case r.Type == gjson.String:
		for _, line := range strings.Split(r.String(), "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// listFields are the string lists some clients send as a single string:
// keywords are comma separated, the others one entry per line.
var listFields = []struct {
	section, field string
	comma          bool
}{
	{section: "work", field: "highlights"},
	{section: "education", field: "courses"},
	{section: "skills", field: "keywords", comma: true},
	{section: "projects", field: "highlights"},
	{section: "projects", field: "keywords", comma: true},
	{section: "interests", field: "keywords", comma: true},
}

// coerceLists rewrites list fields given as plain strings into arrays. raw is
// returned untouched when every list is already an array.
func coerceLists(raw []byte, root gjson.Result) ([]byte, error) {
	needed := root.Get("hobbies").Type == gjson.String
	for _, lf := range listFields {
		for _, v := range root.Get(lf.section + ".#." + lf.field).Array() {
			if v.Type == gjson.String {
				needed = true
			}
		}
	}
	if !needed {
		return raw, nil
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	if s, ok := generic["hobbies"].(string); ok {
		generic["hobbies"] = splitList(s, false)
	}
	for _, lf := range listFields {
		records, _ := generic[lf.section].([]any)
		for _, rec := range records {
			m, ok := rec.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := m[lf.field].(string); ok {
				m[lf.field] = splitList(s, lf.comma)
			}
		}
	}
	return json.Marshal(generic)
}

func splitList(s string, comma bool) []string {
	sep := "\n"
	if comma {
		sep = ","
	}
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
