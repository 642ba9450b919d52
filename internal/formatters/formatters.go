package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/render"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("yaml", "Document", &DocumentYAMLFormatter{})
	registry.RegisterFormatter("text", "Document", &DocumentTextFormatter{})
	registry.RegisterFormatter("markdown", "Document", &DocumentMarkdownFormatter{})
	registry.RegisterFormatter("text", "Questions", &QuestionsTextFormatter{})
	registry.RegisterFormatter("markdown", "Questions", &QuestionsMarkdownFormatter{})
	registry.RegisterFormatter("text", "ATSReport", &ATSTextFormatter{})
	registry.RegisterFormatter("markdown", "ATSReport", &ATSMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in a stable order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case resume.Document, *resume.Document:
		return "Document"
	case types.GenerateQuestionsResponse:
		return "Questions"
	case types.ATSReport:
		return "ATSReport"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

func asDocument(data any) (*resume.Document, error) {
	switch d := data.(type) {
	case resume.Document:
		return &d, nil
	case *resume.Document:
		return d, nil
	}
	return nil, fmt.Errorf("expected resume.Document, got %T", data)
}

// DocumentYAMLFormatter writes a resume in the same YAML shape `import` reads
type DocumentYAMLFormatter struct{}

func (dyf *DocumentYAMLFormatter) Format(data any) (string, error) {
	doc, err := asDocument(data)
	if err != nil {
		return "", err
	}
	out, err := resume.EncodeYAML(*doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (dyf *DocumentYAMLFormatter) SupportedType() string {
	return "Document"
}

// DocumentTextFormatter prints a resume the way it reads on paper
type DocumentTextFormatter struct{}

func (dtf *DocumentTextFormatter) Format(data any) (string, error) {
	doc, err := asDocument(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	header := render.BuildHeader(doc)
	output.WriteString(strings.ToUpper(orPlaceholder(header.Name, "(no name)")))
	output.WriteString("\n")
	if header.Label != "" {
		output.WriteString(header.Label + "\n")
	}
	if len(header.Contact) > 0 {
		output.WriteString(strings.Join(header.Contact, " | ") + "\n")
	}
	if len(header.Profiles) > 0 {
		output.WriteString(strings.Join(header.Profiles, " | ") + "\n")
	}

	if header.Summary != "" {
		fmt.Fprintf(&output, "\n=== %s ===\n%s\n", strings.ToUpper(resume.SectionBasics.Title()), header.Summary)
	}
	for _, block := range render.BuildBlocks(doc) {
		fmt.Fprintf(&output, "\n=== %s ===\n", strings.ToUpper(block.Title))
		for _, item := range block.Items {
			writeTextItem(&output, item)
		}
	}

	return output.String(), nil
}

func writeTextItem(output *strings.Builder, item render.Item) {
	line := item.Heading
	if item.Dates != "" {
		line = joinParts(" ", line, "("+item.Dates+")")
	}
	if line != "" {
		output.WriteString(line + "\n")
	}
	if item.Subtitle != "" {
		output.WriteString("  " + item.Subtitle + "\n")
	}
	if item.URL != "" {
		output.WriteString("  " + item.URL + "\n")
	}
	for _, text := range item.Text {
		output.WriteString("  " + text + "\n")
	}
	for _, b := range item.Bullets {
		output.WriteString("  - " + b + "\n")
	}
}

func (dtf *DocumentTextFormatter) SupportedType() string {
	return "Document"
}

// DocumentMarkdownFormatter renders a resume as a markdown page
type DocumentMarkdownFormatter struct{}

func (dmf *DocumentMarkdownFormatter) Format(data any) (string, error) {
	doc, err := asDocument(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	header := render.BuildHeader(doc)
	fmt.Fprintf(&output, "# %s\n\n", orPlaceholder(header.Name, "Resume"))
	if header.Label != "" {
		fmt.Fprintf(&output, "**%s**\n\n", header.Label)
	}
	if contact := append(append([]string{}, header.Contact...), header.Profiles...); len(contact) > 0 {
		output.WriteString(strings.Join(contact, " · ") + "\n\n")
	}

	if header.Summary != "" {
		fmt.Fprintf(&output, "## %s\n\n%s\n\n", resume.SectionBasics.Title(), header.Summary)
	}
	for _, block := range render.BuildBlocks(doc) {
		fmt.Fprintf(&output, "## %s\n\n", block.Title)
		for _, item := range block.Items {
			if item.Heading != "" {
				fmt.Fprintf(&output, "### %s", item.Heading)
				if item.Dates != "" {
					fmt.Fprintf(&output, " (%s)", item.Dates)
				}
				output.WriteString("\n\n")
			}
			if item.Subtitle != "" {
				fmt.Fprintf(&output, "*%s*\n\n", item.Subtitle)
			}
			for _, text := range item.Text {
				output.WriteString(text + "\n\n")
			}
			for _, b := range item.Bullets {
				fmt.Fprintf(&output, "- %s\n", b)
			}
			if len(item.Bullets) > 0 {
				output.WriteString("\n")
			}
		}
	}

	return output.String(), nil
}

func (dmf *DocumentMarkdownFormatter) SupportedType() string {
	return "Document"
}

// QuestionsTextFormatter handles text formatting for interview questions
type QuestionsTextFormatter struct{}

func (qtf *QuestionsTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateQuestionsResponse)
	if !ok {
		return "", fmt.Errorf("expected GenerateQuestionsResponse, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== INTERVIEW QUESTIONS ===\n\n")
	if len(result.Questions) == 0 {
		output.WriteString("No questions generated.\n")
		return output.String(), nil
	}
	for i, q := range result.Questions {
		fmt.Fprintf(&output, "%d. %s\n", i+1, q.Question)
		fmt.Fprintf(&output, "   [%s / %s] Skill: %s\n", q.Type, q.Difficulty, q.SkillTested)
		output.WriteString("   Expected answer: ")
		output.WriteString(q.ExpectedAnswer)
		output.WriteString("\n\n")
	}
	return output.String(), nil
}

func (qtf *QuestionsTextFormatter) SupportedType() string {
	return "Questions"
}

// QuestionsMarkdownFormatter handles markdown formatting for interview questions
type QuestionsMarkdownFormatter struct{}

func (qmf *QuestionsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.GenerateQuestionsResponse)
	if !ok {
		return "", fmt.Errorf("expected GenerateQuestionsResponse, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Interview Questions\n\n")
	if len(result.Questions) == 0 {
		output.WriteString("No questions generated.\n")
		return output.String(), nil
	}
	for i, q := range result.Questions {
		fmt.Fprintf(&output, "## %d. %s\n\n", i+1, q.Question)
		fmt.Fprintf(&output, "**Type:** %s · **Difficulty:** %s · **Skill:** %s\n\n", q.Type, q.Difficulty, q.SkillTested)
		fmt.Fprintf(&output, "**Expected answer:** %s\n\n", q.ExpectedAnswer)
	}
	return output.String(), nil
}

func (qmf *QuestionsMarkdownFormatter) SupportedType() string {
	return "Questions"
}

// ATSTextFormatter handles text formatting for ATS reports
type ATSTextFormatter struct{}

func (atf *ATSTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ATSReport)
	if !ok {
		return "", fmt.Errorf("expected ATSReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== ATS ANALYSIS ===\n")
	fmt.Fprintf(&output, "Score: %d/100\n\n", result.ATSScore)
	if result.ResumeSummary != "" {
		output.WriteString("Summary:\n")
		output.WriteString(result.ResumeSummary)
		output.WriteString("\n\n")
	}
	writeList(&output, "Missing keywords:\n", "- ", result.MissingKeywords)
	writeList(&output, "Improvements:\n", "- ", result.Improvements)
	return output.String(), nil
}

func (atf *ATSTextFormatter) SupportedType() string {
	return "ATSReport"
}

// ATSMarkdownFormatter handles markdown formatting for ATS reports
type ATSMarkdownFormatter struct{}

func (amf *ATSMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ATSReport)
	if !ok {
		return "", fmt.Errorf("expected ATSReport, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# ATS Analysis\n\n")
	fmt.Fprintf(&output, "**Score:** %d/100\n\n", result.ATSScore)
	if result.ResumeSummary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(result.ResumeSummary)
		output.WriteString("\n\n")
	}
	writeList(&output, "## Missing Keywords\n\n", "- ", result.MissingKeywords)
	writeList(&output, "## Improvements\n\n", "- ", result.Improvements)
	return output.String(), nil
}

func (amf *ATSMarkdownFormatter) SupportedType() string {
	return "ATSReport"
}

func writeList(output *strings.Builder, title, prefix string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(title)
	for _, item := range items {
		output.WriteString(prefix + item + "\n")
	}
	output.WriteString("\n")
}

func joinParts(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
