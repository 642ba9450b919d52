package formatters

import (
	"strings"
	"testing"

	"resumeforge/internal/resume"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() resume.Document {
	doc := resume.New()
	doc.Basics.Name = "Jane Doe"
	doc.Basics.Label = "Platform Engineer"
	doc.Basics.Email = "jane@example.com"
	doc.Basics.Summary = "Builds reliable systems."
	doc.Work[0] = resume.Work{
		Name:       "Acme",
		Position:   "Staff Engineer",
		StartDate:  "2020",
		EndDate:    "Present",
		Highlights: []string{"Cut deploy time in half"},
	}
	doc.Skills[0] = resume.Skill{Name: "Languages", Keywords: []string{"Go", "SQL"}}
	return doc
}

func TestFormatDocument(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{format: "text", want: []string{"JANE DOE\n", "=== SUMMARY ===", "=== EXPERIENCE ===", "Staff Engineer (2020 — Present)", "  - Cut deploy time in half", "Go, SQL"}},
		{format: "markdown", want: []string{"# Jane Doe", "**Platform Engineer**", "## Experience", "### Staff Engineer (2020 — Present)", "*Acme*", "- Cut deploy time in half"}},
		{format: "json", want: []string{`"name": "Jane Doe"`, `"schemaVersion": 1`}},
		{format: "yaml", want: []string{"name: Jane Doe", "schemaVersion: 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := GlobalRegistry.Format(sampleDocument(), tt.format)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestFormatEmptyDocument(t *testing.T) {
	out, err := GlobalRegistry.Format(resume.New(), "text")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "(NO NAME)"))
	assert.NotContains(t, out, "===", "blank sections are skipped")
}

func TestFormatQuestions(t *testing.T) {
	questions := types.GenerateQuestionsResponse{Questions: []types.InterviewQuestion{{
		Question:       "How do you size a connection pool?",
		ExpectedAnswer: "Measure concurrency",
		Difficulty:     "medium",
		Type:           "technical",
		SkillTested:    "Postgres",
	}}}

	text, err := GlobalRegistry.Format(questions, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "1. How do you size a connection pool?")
	assert.Contains(t, text, "[technical / medium] Skill: Postgres")

	md, err := GlobalRegistry.Format(questions, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "## 1. How do you size a connection pool?")

	empty, err := GlobalRegistry.Format(types.GenerateQuestionsResponse{}, "text")
	require.NoError(t, err)
	assert.Contains(t, empty, "No questions generated.")
}

func TestFormatATSReport(t *testing.T) {
	report := types.ATSReport{
		ATSScore:        72,
		Score:           72,
		MissingKeywords: []string{"Kafka"},
		Improvements:    []string{"Quantify impact"},
		ResumeSummary:   "Backend engineer",
	}

	text, err := GlobalRegistry.Format(report, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Score: 72/100")
	assert.Contains(t, text, "Missing keywords:\n- Kafka")

	md, err := GlobalRegistry.Format(report, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "## Improvements\n\n- Quantify impact")
}

func TestFormatUnknown(t *testing.T) {
	_, err := GlobalRegistry.Format(map[string]int{"a": 1}, "text")
	assert.Error(t, err)

	_, err = GlobalRegistry.Format(sampleDocument(), "xml")
	assert.Error(t, err)

	out, err := GlobalRegistry.Format(map[string]int{"a": 1}, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text", "yaml"}, GlobalRegistry.GetSupportedFormats())
}
