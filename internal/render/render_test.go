package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/resume"
)

func janeDoe() resume.Document {
	doc := resume.New()
	doc.Basics.Name = "Jane Doe"
	doc.Basics.Email = "jane@example.com"
	doc.Work[0] = resume.Work{
		Name:       "Acme",
		Position:   "Engineer",
		StartDate:  "2020-01",
		EndDate:    "Present",
		Highlights: []string{"Built X", "Shipped Y"},
	}
	doc.Skills[0] = resume.Skill{Name: "Languages", Keywords: []string{"Go", "Rust"}}
	return doc
}

func TestLaTeXEmptyDocument(t *testing.T) {
	out := LaTeX(resume.New())

	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(out, `\documentclass`))
	assert.Contains(t, out, `{\LARGE \textbf{\color{primary}}}`)
	assert.Contains(t, out, `\begin{document}`)
	assert.True(t, strings.HasSuffix(out, "\\end{document}\n"))
	assert.NotContains(t, out, `\section*`)
	assert.NotContains(t, out, "Summary:")
}

func TestLaTeXScenario(t *testing.T) {
	out := LaTeX(janeDoe())

	for _, want := range []string{"Jane Doe", "Acme", "Engineer", "Built X", "Shipped Y", `\section*{Experience}`} {
		assert.Contains(t, out, want)
	}
	assert.Less(t, strings.Index(out, "Built X"), strings.Index(out, "Shipped Y"))
	assert.Contains(t, out, `\duration{2020-01 — Present}`)
	assert.Contains(t, out, `\textbf{Languages:} Go, Rust`)
}

func TestLaTeXCanonicalOrder(t *testing.T) {
	// populate in reverse of render order
	doc := resume.New()
	doc.References[0].Reference = "Available on request"
	doc.Hobbies = []string{"chess"}
	doc.Interests[0].Name = "Climbing"
	doc.Languages[0].Language = "German"
	doc.Awards[0].Title = "Hackathon"
	doc.Skills[0].Keywords = []string{"Go"}
	doc.Projects[0].Name = "forge"
	doc.Work[0].Name = "Acme"
	doc.Education[0].Institution = "TU"

	out := LaTeX(doc)
	titles := []string{"Education", "Experience", "Projects", "Technical Skills", "Awards", "Languages", "Interests", "Hobbies", "References"}
	last := -1
	for _, title := range titles {
		idx := strings.Index(out, `\section*{`+title+`}`)
		require.NotEqual(t, -1, idx, title)
		assert.Greater(t, idx, last, "%s out of order", title)
		last = idx
	}
}

func TestLaTeXEscaping(t *testing.T) {
	doc := resume.New()
	doc.Basics.Name = `R&D_Lead 100% #1 {x} ~ ^ \`
	doc.Basics.URL = "https://example.com/a%20b#frag"

	out := LaTeX(doc)
	assert.Contains(t, out, `R\&D\_Lead 100\% \#1 \{x\} \textasciitilde{} \textasciicircum{} \textbackslash{}`)
	assert.Contains(t, out, `\href{https://example.com/a\%20b\#frag}{Website}`)
}

func TestLaTeXLeadingBracket(t *testing.T) {
	doc := janeDoe()
	doc.Education[0] = resume.Education{
		Institution: "MIT",
		StudyType:   "[BSc]",
		Area:        "CS",
		Courses:     []string{"[Core] Algorithms"},
	}
	doc.Work[0].Summary = "[Contract] Platform team"
	doc.Work[0].Highlights = []string{"[Lead] Shipped the billing rewrite"}

	out := LaTeX(doc)
	assert.Contains(t, out, "{[}BSc], CS \\\\\n")
	assert.Contains(t, out, "  \\item {[}Core] Algorithms\n")
	assert.Contains(t, out, "  \\item {[}Lead] Shipped the billing rewrite\n")
	assert.Contains(t, out, "\n{[}Contract] Platform team\n")
	assert.NotContains(t, out, "\\item [")
	assert.NotContains(t, out, "\n[")
}

func TestLaTeXCustomPreamble(t *testing.T) {
	out := LaTeXWith(resume.New(), LaTeXOptions{Preamble: "\\documentclass{article}\n\\usepackage{xcolor}\n\\definecolor{primary}{RGB}{0,0,0}"})
	assert.True(t, strings.HasPrefix(out, "\\documentclass{article}\n"))
	assert.NotContains(t, out, "titlesec")
}

func TestDateRange(t *testing.T) {
	tests := []struct {
		start, end, want string
	}{
		{"2020", "2021", "2020 — 2021"},
		{"2020", "", "2020"},
		{"", "2021", "2021"},
		{"", "", ""},
		{"2020", "Present (remote)", "2020 — Present"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DateRange(tt.start, tt.end))
		})
	}
}

func fixedWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{name: "fits", text: "one two", width: 10, want: []string{"one two"}},
		{name: "breaks at words", text: "one two three", width: 7, want: []string{"one two", "three"}},
		{name: "collapses whitespace", text: "  one \n two  ", width: 20, want: []string{"one two"}},
		{name: "long word split", text: "abcdefghij xy", width: 4, want: []string{"abcd", "efgh", "ij", "xy"}},
		{name: "long word joins tail", text: "abcdef g", width: 4, want: []string{"abcd", "ef g"}},
		{name: "empty", text: "   ", width: 10, want: nil},
		{name: "multibyte", text: "ééééé", width: 2, want: []string{"éé", "éé", "é"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width, fixedWidth)
			assert.Equal(t, tt.want, got)
			for _, ln := range got {
				assert.LessOrEqual(t, fixedWidth(ln), tt.width)
			}
		})
	}
}

func draw(t *testing.T, doc resume.Document, l Layout) *Recorder {
	t.Helper()
	l = l.WithDefaults()
	rec := NewRecorder(l.PageWidth, l.PageHeight)
	require.NoError(t, Draw(doc, rec, l))
	return rec
}

func TestDrawEmptyDocument(t *testing.T) {
	rec := draw(t, resume.New(), DefaultLayout())

	assert.Equal(t, 1, rec.Pages())
	assert.Equal(t, []string{"Page 1"}, rec.Texts())
}

func TestDrawScenario(t *testing.T) {
	rec := draw(t, janeDoe(), DefaultLayout())
	texts := strings.Join(rec.Texts(), "\n")

	for _, want := range []string{"Jane Doe", "Experience", "Engineer", "Acme", "• Built X", "• Shipped Y", "2020-01 — Present"} {
		assert.Contains(t, texts, want)
	}
	assert.Less(t, strings.Index(texts, "Built X"), strings.Index(texts, "Shipped Y"))
}

func TestDrawStaysInsideMargins(t *testing.T) {
	doc := janeDoe()
	doc.Basics.Summary = strings.Repeat("A fairly long summary sentence that needs wrapping. ", 20)
	l := DefaultLayout()
	rec := draw(t, doc, l)

	for _, op := range rec.Ops() {
		if op.Op != "text" || strings.HasPrefix(op.Text, "Jane Doe •") {
			continue
		}
		assert.GreaterOrEqual(t, op.X, l.Margin-0.001, op.Text)
		assert.LessOrEqual(t, op.Y, l.PageHeight-l.Margin, op.Text)
	}
}

func TestDrawPageBreaksRepeatHeaderAndFooter(t *testing.T) {
	doc := janeDoe()
	var highlights []string
	for i := range 150 {
		highlights = append(highlights, fmt.Sprintf("Highlight number %d", i))
	}
	doc.Work[0].Highlights = highlights

	l := DefaultLayout()
	rec := draw(t, doc, l)
	require.Greater(t, rec.Pages(), 1)

	footers := map[int]bool{}
	running := map[int]bool{}
	for _, op := range rec.Ops() {
		if op.Op != "text" {
			continue
		}
		if op.Text == fmt.Sprintf("Jane Doe • Page %d", op.Page) {
			footers[op.Page] = true
			continue
		}
		if op.Page > 1 && op.Text == "Jane Doe" && op.Y == l.Margin {
			running[op.Page] = true
		}
		assert.LessOrEqual(t, op.Y, l.PageHeight-l.Margin)
	}
	for p := 1; p <= rec.Pages(); p++ {
		assert.True(t, footers[p], "footer on page %d", p)
		if p > 1 {
			assert.True(t, running[p], "running header on page %d", p)
		}
	}

	// every highlight is drawn exactly once and in order
	texts := rec.Texts()
	prev := -1
	for i := range 150 {
		want := fmt.Sprintf("• Highlight number %d", i)
		idx := indexOf(texts, want)
		require.NotEqual(t, -1, idx, want)
		assert.Greater(t, idx, prev)
		prev = idx
	}
}

func indexOf(items []string, s string) int {
	for i, it := range items {
		if it == s {
			return i
		}
	}
	return -1
}

func TestDrawRejectsImpossibleLayout(t *testing.T) {
	l := DefaultLayout()
	l.Margin = 400
	rec := NewRecorder(l.PageWidth, l.PageHeight)
	assert.Error(t, Draw(janeDoe(), rec, l))
}

func TestBuildBlocksSkipsBlankSections(t *testing.T) {
	doc := janeDoe()
	blocks := BuildBlocks(&doc)

	var sections []resume.Section
	for _, b := range blocks {
		sections = append(sections, b.Section)
	}
	assert.Equal(t, []resume.Section{resume.SectionWork, resume.SectionSkills}, sections)
}

func TestHTML(t *testing.T) {
	doc := janeDoe()
	doc.Work[0].Highlights = append(doc.Work[0].Highlights, "<script>alert(1)</script>")

	out, err := HTML(doc)
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Jane Doe - Resume</title>")
	assert.Contains(t, out, "<li>Built X</li>")
	assert.Contains(t, out, "window.print()")
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Less(t, strings.Index(out, "Experience"), strings.Index(out, "Technical Skills"))

	empty, err := HTML(resume.New())
	require.NoError(t, err)
	assert.Contains(t, empty, "<title>Resume</title>")
}

func TestPDF(t *testing.T) {
	out, err := PDF(janeDoe(), DefaultLayout())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	empty, err := PDF(resume.New(), Layout{})
	require.NoError(t, err)
	assert.NotEmpty(t, empty)
}

func TestOps(t *testing.T) {
	ops, err := Ops(janeDoe(), DefaultLayout())
	require.NoError(t, err)
	require.NotEmpty(t, ops)
	assert.Equal(t, "page", ops[0].Op)
}

func BenchmarkPDF(b *testing.B) {
	doc := janeDoe()
	for b.Loop() {
		if _, err := PDF(doc, DefaultLayout()); err != nil {
			b.Fatal(err)
		}
	}
}
