package render

import (
	"fmt"
	"strings"

	"resumeforge/internal/resume"
)

// DefaultPreamble is everything before \begin{document}.
const DefaultPreamble = `\documentclass[a4paper,10pt]{article}
\usepackage[utf8]{inputenc}
\usepackage[T1]{fontenc}
\usepackage{geometry}
\usepackage{enumitem}
\usepackage{hyperref}
\usepackage{titlesec}
\usepackage{xcolor}
\usepackage{url}

% Page layout
\geometry{margin=0.75in}

% Colors
\definecolor{primary}{RGB}{0, 51, 102}
\definecolor{secondary}{RGB}{102, 102, 102}

\hypersetup{
    colorlinks=true,
    urlcolor=black,
    linkcolor=black,
    citecolor=black
}

% Section formatting
\titleformat{\section}{\large\bfseries\color{primary}}{}{0em}{}[\titlerule]
\titlespacing*{\section}{0pt}{1em}{1em}

\setlist[itemize]{
  topsep=4pt,
  partopsep=2pt,
  itemsep=3pt,
  parsep=0pt,
  leftmargin=1.5em,
  itemindent=0pt
}

% Custom commands
\newcommand{\resumeheading}[1]{\textbf{\color{black}#1}}
\newcommand{\company}[1]{\textit{\color{black}#1}}
\newcommand{\duration}[1]{\hfill \textit{\color{black}#1}}
`

// LaTeXOptions customizes the LaTeX renderer.
type LaTeXOptions struct {
	// Preamble replaces DefaultPreamble when set. It must define the
	// primary color and the \resumeheading, \company and \duration commands.
	Preamble string
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

var urlEscaper = strings.NewReplacer(
	`\`, ``,
	`%`, `\%`,
	`#`, `\#`,
	`{`, ``,
	`}`, ``,
)

// tex escapes user text. A leading "[" is braced because the text often
// follows \\ or \item, which would read it as an optional argument.
func tex(s string) string {
	out := latexEscaper.Replace(strings.TrimSpace(s))
	if strings.HasPrefix(out, "[") {
		out = "{[}" + out[1:]
	}
	return out
}

func texURL(s string) string {
	return urlEscaper.Replace(strings.TrimSpace(s))
}

// LaTeX renders doc with the default preamble.
func LaTeX(doc resume.Document) string {
	return LaTeXWith(doc, LaTeXOptions{})
}

// LaTeXWith renders doc as a standalone LaTeX source file: the preamble, the
// header, then one block per non-empty section in render order.
func LaTeXWith(doc resume.Document, opts LaTeXOptions) string {
	preamble := opts.Preamble
	if strings.TrimSpace(preamble) == "" {
		preamble = DefaultPreamble
	}

	sections := []string{latexHeader(&doc)}
	for _, s := range resume.RenderOrder {
		if s == resume.SectionBasics || !resume.HasContent(&doc, s) {
			continue
		}
		write, ok := latexSections[s]
		if !ok {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%% ===== %s =====\n", strings.ToUpper(s.Title()))
		fmt.Fprintf(&b, "\\section*{%s}\n", s.Title())
		write(&b, &doc)
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	var out strings.Builder
	out.WriteString(strings.TrimRight(preamble, "\n"))
	out.WriteString("\n\n\\begin{document}\n\n")
	out.WriteString(strings.Join(sections, "\n\n"))
	out.WriteString("\n\n\\end{document}\n")
	return out.String()
}

func latexHeader(doc *resume.Document) string {
	h := BuildHeader(doc)
	basics := doc.Basics

	var contact []string
	if loc := joinNonEmpty(", ", basics.Location.City, basics.Location.Region, basics.Location.CountryCode); loc != "" {
		contact = append(contact, tex(loc))
	}
	if e := strings.TrimSpace(basics.Email); e != "" {
		contact = append(contact, fmt.Sprintf("\\href{mailto:%s}{%s}", texURL(e), tex(e)))
	}
	if p := strings.TrimSpace(basics.Phone); p != "" {
		contact = append(contact, tex(p))
	}
	if u := strings.TrimSpace(basics.URL); u != "" {
		contact = append(contact, fmt.Sprintf("\\href{%s}{Website}", texURL(u)))
	}
	for _, p := range basics.Profiles {
		if strings.TrimSpace(p.URL) == "" {
			continue
		}
		label := strings.TrimSpace(p.Network)
		if label == "" {
			label = strings.TrimSpace(p.URL)
		}
		contact = append(contact, fmt.Sprintf("\\href{%s}{%s}", texURL(p.URL), tex(label)))
	}

	var b strings.Builder
	b.WriteString("% ===== HEADER =====\n")
	b.WriteString("\\begin{center}\n")
	fmt.Fprintf(&b, "    {\\LARGE \\textbf{\\color{primary}%s}}\\\\[0.2em]\n", tex(h.Name))
	if h.Label != "" {
		fmt.Fprintf(&b, "    {\\normalsize \\color{secondary}%s}\\\\[0.2em]\n", tex(h.Label))
	}
	if len(contact) > 0 {
		fmt.Fprintf(&b, "    {\\small %s}\n", strings.Join(contact, " \\quad \\textbar \\quad "))
	}
	b.WriteString("\\end{center}")

	if h.Summary != "" {
		b.WriteString("\n\n\\vspace{0.5em}\n\n% ===== SUMMARY =====\n")
		fmt.Fprintf(&b, "\\noindent \\textbf{\\color{primary}Summary:} %s", tex(h.Summary))
	}
	return b.String()
}

func writeItemize(b *strings.Builder, opt string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\\begin{itemize}" + opt + "\n")
	for _, it := range items {
		fmt.Fprintf(b, "  \\item %s\n", it)
	}
	b.WriteString("\\end{itemize}\n")
}

func escapeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range nonEmpty(items...) {
		out = append(out, tex(it))
	}
	return out
}

func headingLine(b *strings.Builder, heading, dates string) {
	switch {
	case heading != "" && dates != "":
		fmt.Fprintf(b, "\\resumeheading{%s} \\duration{%s} \\\\\n", tex(heading), tex(dates))
	case heading != "":
		fmt.Fprintf(b, "\\resumeheading{%s} \\\\\n", tex(heading))
	case dates != "":
		fmt.Fprintf(b, "\\duration{%s} \\\\\n", tex(dates))
	}
}

var latexSections = map[resume.Section]func(*strings.Builder, *resume.Document){
	resume.SectionEducation: func(b *strings.Builder, doc *resume.Document) {
		for _, e := range doc.Education {
			if resume.IsBlank(e) {
				continue
			}
			b.WriteString("\\vspace{0.5em}\n")
			headingLine(b, e.Institution, DateRange(e.StartDate, e.EndDate))
			if degree := joinNonEmpty(", ", e.StudyType, e.Area); degree != "" {
				fmt.Fprintf(b, "%s \\\\\n", tex(degree))
			}
			if score := strings.TrimSpace(e.Score); score != "" {
				fmt.Fprintf(b, "Score: %s \\\\\n", tex(score))
			}
			writeItemize(b, "[leftmargin=1em]", escapeAll(e.Courses))
		}
	},
	resume.SectionWork: func(b *strings.Builder, doc *resume.Document) {
		for _, w := range doc.Work {
			if resume.IsBlank(w) {
				continue
			}
			b.WriteString("\\vspace{0.5em}\n")
			headingLine(b, w.Position, DateRange(w.StartDate, w.EndDate))
			if name := strings.TrimSpace(w.Name); name != "" {
				if u := strings.TrimSpace(w.URL); u != "" {
					fmt.Fprintf(b, "\\company{\\href{%s}{%s}} \\\\\n", texURL(u), tex(name))
				} else {
					fmt.Fprintf(b, "\\company{%s} \\\\\n", tex(name))
				}
			}
			if summary := strings.TrimSpace(w.Summary); summary != "" {
				fmt.Fprintf(b, "%s\n", tex(summary))
			}
			writeItemize(b, "[leftmargin=1em]", escapeAll(w.Highlights))
		}
	},
	resume.SectionProjects: func(b *strings.Builder, doc *resume.Document) {
		n := 0
		for _, p := range doc.Projects {
			if resume.IsBlank(p) {
				continue
			}
			n++
			b.WriteString("\\vspace{0.5em}\n")
			title := fmt.Sprintf("%d. %s", n, strings.TrimSpace(p.Name))
			if dates := DateRange(p.StartDate, p.EndDate); dates != "" {
				fmt.Fprintf(b, "\\hspace{1em}\\resumeheading{\\large %s} \\duration{%s} \\\\\n", tex(title), tex(dates))
			} else {
				fmt.Fprintf(b, "\\hspace{1em}\\resumeheading{\\large %s} \\\\\n", tex(title))
			}
			if u := strings.TrimSpace(p.URL); u != "" {
				fmt.Fprintf(b, "\\hspace{1em}\\href{%s}{Project Link} \\vspace{-0.5em}\\\\\n", texURL(u))
			}
			var items []string
			if kw := escapeAll(p.Keywords); len(kw) > 0 {
				items = append(items, "\\textbf{Technologies:} "+strings.Join(kw, ", "))
			}
			if d := strings.TrimSpace(p.Description); d != "" {
				items = append(items, tex(d))
			}
			items = append(items, escapeAll(p.Highlights)...)
			writeItemize(b, "[leftmargin=1.5em]", items)
		}
	},
	resume.SectionSkills: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, s := range doc.Skills {
			if resume.IsBlank(s) {
				continue
			}
			list := strings.Join(escapeAll(s.Keywords), ", ")
			name := strings.TrimSpace(s.Name)
			if lvl := strings.TrimSpace(s.Level); lvl != "" {
				name = joinNonEmpty(" ", name, "("+lvl+")")
			}
			if name == "" {
				items = append(items, list)
				continue
			}
			items = append(items, strings.TrimSpace(fmt.Sprintf("\\textbf{%s:} %s", tex(name), list)))
		}
		writeItemize(b, "[leftmargin=1.5em]", items)
	},
	resume.SectionAwards: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, a := range doc.Awards {
			if resume.IsBlank(a) {
				continue
			}
			line := tex(a.Title)
			if line != "" {
				line = "\\textbf{" + line + "}"
			}
			if meta := joinNonEmpty(", ", a.Awarder, formatDate(a.Date)); meta != "" {
				line = joinNonEmpty(" ", line, "("+tex(meta)+")")
			}
			if s := strings.TrimSpace(a.Summary); s != "" {
				line = joinNonEmpty(": ", line, tex(s))
			}
			items = append(items, line)
		}
		writeItemize(b, "", items)
	},
	resume.SectionLanguages: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, l := range doc.Languages {
			if resume.IsBlank(l) {
				continue
			}
			line := tex(l.Language)
			if f := strings.TrimSpace(l.Fluency); f != "" {
				line = joinNonEmpty(" ", line, "("+tex(f)+")")
			}
			items = append(items, line)
		}
		writeItemize(b, "", items)
	},
	resume.SectionInterests: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, in := range doc.Interests {
			if resume.IsBlank(in) {
				continue
			}
			line := tex(in.Name)
			if kw := escapeAll(in.Keywords); len(kw) > 0 {
				line = joinNonEmpty(": ", line, strings.Join(kw, ", "))
			}
			items = append(items, line)
		}
		writeItemize(b, "", items)
	},
	resume.SectionHobbies: func(b *strings.Builder, doc *resume.Document) {
		writeItemize(b, "[leftmargin=1.5em]", escapeAll(doc.Hobbies))
	},
	resume.SectionReferences: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, r := range doc.References {
			if resume.IsBlank(r) {
				continue
			}
			line := tex(r.Name)
			if line != "" {
				line = "\\textbf{" + line + "}"
			}
			items = append(items, joinNonEmpty(": ", line, tex(r.Reference)))
		}
		writeItemize(b, "", items)
	},
	resume.SectionCertificates: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, c := range doc.Certificates {
			if resume.IsBlank(c) {
				continue
			}
			name := tex(c.Name)
			if u := strings.TrimSpace(c.URL); u != "" && name != "" {
				name = fmt.Sprintf("\\href{%s}{%s}", texURL(u), name)
			}
			if name != "" {
				name = "\\textbf{" + name + "}"
			}
			line := name
			if meta := joinNonEmpty(", ", c.Issuer, formatDate(c.Date)); meta != "" {
				line = joinNonEmpty(" ", line, "("+tex(meta)+")")
			}
			items = append(items, line)
		}
		writeItemize(b, "", items)
	},
	resume.SectionPublications: func(b *strings.Builder, doc *resume.Document) {
		var items []string
		for _, p := range doc.Publications {
			if resume.IsBlank(p) {
				continue
			}
			name := tex(p.Name)
			if u := strings.TrimSpace(p.URL); u != "" && name != "" {
				name = fmt.Sprintf("\\href{%s}{%s}", texURL(u), name)
			}
			if name != "" {
				name = "\\textbf{" + name + "}"
			}
			line := name
			if meta := joinNonEmpty(", ", p.Publisher, formatDate(p.ReleaseDate)); meta != "" {
				line = joinNonEmpty(" ", line, "("+tex(meta)+")")
			}
			if s := strings.TrimSpace(p.Summary); s != "" {
				line = joinNonEmpty(": ", line, tex(s))
			}
			items = append(items, line)
		}
		writeItemize(b, "", items)
	},
}
