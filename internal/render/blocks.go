// Package render turns a resume document into LaTeX source, canvas draw
// calls (PDF) and a printable HTML page. Every renderer is total: missing
// fields are omitted and an empty document still produces an artifact.
package render

import (
	"strings"

	"resumeforge/internal/resume"
)

// Header is the top of the first page.
type Header struct {
	Name     string
	Label    string
	Contact  []string
	Profiles []string
	Summary  string
}

// Item is one record laid out for display.
type Item struct {
	Heading  string
	Dates    string
	Subtitle string
	URL      string
	Text     []string
	Bullets  []string
}

// Block is one titled section.
type Block struct {
	Section resume.Section
	Title   string
	// Compact blocks print their items back to back without record spacing.
	Compact bool
	Items   []Item
}

const bullet = "•"

// DateRange joins a start and end date. A date mentioning "Present" is
// shortened to just that word.
func DateRange(start, end string) string {
	start, end = formatDate(start), formatDate(end)
	switch {
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " — " + end
}

func formatDate(d string) string {
	d = strings.TrimSpace(d)
	if strings.Contains(d, "Present") {
		return "Present"
	}
	return d
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(nonEmpty(parts...), sep)
}

// BuildHeader collects the header fields of doc.
func BuildHeader(doc *resume.Document) Header {
	b := doc.Basics
	h := Header{
		Name:    strings.TrimSpace(b.Name),
		Label:   strings.TrimSpace(b.Label),
		Summary: strings.TrimSpace(b.Summary),
	}
	loc := joinNonEmpty(", ", b.Location.City, b.Location.Region, b.Location.CountryCode)
	h.Contact = nonEmpty(loc, b.Email, b.Phone, b.URL)
	for _, p := range b.Profiles {
		switch {
		case strings.TrimSpace(p.URL) == "":
			continue
		case strings.TrimSpace(p.Network) == "":
			h.Profiles = append(h.Profiles, strings.TrimSpace(p.URL))
		default:
			h.Profiles = append(h.Profiles, strings.TrimSpace(p.Network)+": "+strings.TrimSpace(p.URL))
		}
	}
	return h
}

// BuildBlocks lays out every non-empty section after the header in render
// order. Blank records are skipped.
func BuildBlocks(doc *resume.Document) []Block {
	var out []Block
	for _, s := range resume.RenderOrder {
		if s == resume.SectionBasics || !resume.HasContent(doc, s) {
			continue
		}
		build, ok := builders[s]
		if !ok {
			continue
		}
		blk := Block{Section: s, Title: s.Title()}
		blk.Compact, blk.Items = build(doc)
		if len(blk.Items) > 0 {
			out = append(out, blk)
		}
	}
	return out
}

var builders = map[resume.Section]func(*resume.Document) (bool, []Item){
	resume.SectionEducation: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, e := range doc.Education {
			if resume.IsBlank(e) {
				continue
			}
			it := Item{
				Heading:  strings.TrimSpace(e.Institution),
				Dates:    DateRange(e.StartDate, e.EndDate),
				Subtitle: joinNonEmpty(", ", e.StudyType, e.Area),
				URL:      strings.TrimSpace(e.URL),
				Bullets:  nonEmpty(e.Courses...),
			}
			if score := strings.TrimSpace(e.Score); score != "" {
				it.Text = []string{"Score: " + score}
			}
			items = append(items, it)
		}
		return false, items
	},
	resume.SectionWork: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, w := range doc.Work {
			if resume.IsBlank(w) {
				continue
			}
			heading, sub := strings.TrimSpace(w.Position), strings.TrimSpace(w.Name)
			if heading == "" {
				heading, sub = sub, ""
			}
			items = append(items, Item{
				Heading:  heading,
				Dates:    DateRange(w.StartDate, w.EndDate),
				Subtitle: sub,
				URL:      strings.TrimSpace(w.URL),
				Text:     nonEmpty(w.Summary),
				Bullets:  nonEmpty(w.Highlights...),
			})
		}
		return false, items
	},
	resume.SectionProjects: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, p := range doc.Projects {
			if resume.IsBlank(p) {
				continue
			}
			it := Item{
				Heading: strings.TrimSpace(p.Name),
				Dates:   DateRange(p.StartDate, p.EndDate),
				URL:     strings.TrimSpace(p.URL),
				Text:    nonEmpty(p.Description),
				Bullets: nonEmpty(p.Highlights...),
			}
			if kw := nonEmpty(p.Keywords...); len(kw) > 0 {
				it.Text = append(it.Text, "Technologies: "+strings.Join(kw, ", "))
			}
			items = append(items, it)
		}
		return false, items
	},
	resume.SectionSkills: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, s := range doc.Skills {
			if resume.IsBlank(s) {
				continue
			}
			items = append(items, Item{
				Heading:  strings.TrimSpace(s.Name),
				Subtitle: strings.TrimSpace(s.Level),
				Text:     nonEmpty(strings.Join(nonEmpty(s.Keywords...), ", ")),
			})
		}
		return false, items
	},
	resume.SectionAwards: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, a := range doc.Awards {
			if resume.IsBlank(a) {
				continue
			}
			items = append(items, Item{
				Heading:  strings.TrimSpace(a.Title),
				Dates:    formatDate(a.Date),
				Subtitle: strings.TrimSpace(a.Awarder),
				Text:     nonEmpty(a.Summary),
			})
		}
		return false, items
	},
	resume.SectionLanguages: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, l := range doc.Languages {
			if resume.IsBlank(l) {
				continue
			}
			line := strings.TrimSpace(l.Language)
			if f := strings.TrimSpace(l.Fluency); f != "" {
				line = joinNonEmpty(" ", line, "("+f+")")
			}
			items = append(items, Item{Text: []string{line}})
		}
		return true, items
	},
	resume.SectionInterests: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, in := range doc.Interests {
			if resume.IsBlank(in) {
				continue
			}
			line := strings.TrimSpace(in.Name)
			if kw := nonEmpty(in.Keywords...); len(kw) > 0 {
				line = joinNonEmpty(": ", line, strings.Join(kw, ", "))
			}
			items = append(items, Item{Text: []string{line}})
		}
		return true, items
	},
	resume.SectionHobbies: func(doc *resume.Document) (bool, []Item) {
		hobbies := nonEmpty(doc.Hobbies...)
		if len(hobbies) == 0 {
			return true, nil
		}
		return true, []Item{{Bullets: hobbies}}
	},
	resume.SectionReferences: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, r := range doc.References {
			if resume.IsBlank(r) {
				continue
			}
			items = append(items, Item{
				Heading: strings.TrimSpace(r.Name),
				Text:    nonEmpty(r.Reference),
			})
		}
		return false, items
	},
	resume.SectionCertificates: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, c := range doc.Certificates {
			if resume.IsBlank(c) {
				continue
			}
			items = append(items, Item{
				Heading:  strings.TrimSpace(c.Name),
				Dates:    formatDate(c.Date),
				Subtitle: strings.TrimSpace(c.Issuer),
				URL:      strings.TrimSpace(c.URL),
			})
		}
		return false, items
	},
	resume.SectionPublications: func(doc *resume.Document) (bool, []Item) {
		var items []Item
		for _, p := range doc.Publications {
			if resume.IsBlank(p) {
				continue
			}
			items = append(items, Item{
				Heading:  strings.TrimSpace(p.Name),
				Dates:    formatDate(p.ReleaseDate),
				Subtitle: strings.TrimSpace(p.Publisher),
				URL:      strings.TrimSpace(p.URL),
				Text:     nonEmpty(p.Summary),
			})
		}
		return false, items
	},
}
