package common

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"resumeforge/internal/ai"
	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadText(t *testing.T) {
	fp := NewFileProcessor(nil)

	text, err := fp.ReadText(writeTemp(t, "resume.txt", "Jane   Doe\n\n\nEngineer"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEngineer", text)

	_, err = fp.ReadText(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, appErrors.ErrCodeFileNotFound, appErrors.CodeOf(err))

	_, err = fp.ReadText(writeTemp(t, "blank.md", " \n "))
	assert.Equal(t, appErrors.ErrCodeInvalidInput, appErrors.CodeOf(err))

	_, err = fp.ReadText(writeTemp(t, "fake.pdf", "not really a pdf"))
	assert.Equal(t, appErrors.ErrCodeFileNotReadable, appErrors.CodeOf(err))
}

func TestValidateAndReadFiles(t *testing.T) {
	fp := NewFileProcessor(nil)
	a := writeTemp(t, "a.txt", "first")
	b := writeTemp(t, "b.md", "second")

	contents, err := fp.ValidateAndReadFiles(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, contents)

	_, err = fp.ValidateAndReadFiles(a, "")
	assert.True(t, appErrors.IsType(err, appErrors.ErrorTypeValidation))
}

func TestHandleOutput(t *testing.T) {
	oh := NewOutputHandler(nil)
	report := types.ATSReport{ATSScore: 90, Score: 90}

	var buf bytes.Buffer
	require.NoError(t, oh.HandleOutput(report, CommandConfig{OutputFormat: "text", Out: &buf}))
	assert.Contains(t, buf.String(), "Score: 90/100")

	target := filepath.Join(t.TempDir(), "reports", "ats.json")
	require.NoError(t, oh.HandleOutput(report, CommandConfig{OutputFormat: "json", OutputFile: target}))
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"ats_score": 90`)

	err = oh.HandleOutput(report, CommandConfig{OutputFormat: "xml", Out: &buf})
	assert.Equal(t, appErrors.ErrCodeInvalidFormat, appErrors.CodeOf(err))
}

func TestRunAICommand(t *testing.T) {
	resumeFile := writeTemp(t, "resume.txt", "Go engineer")
	jobFile := writeTemp(t, "job.txt", "Needs Kafka")

	type atsInput struct{ resume, job string }

	var buf bytes.Buffer
	var logged atsInput
	err := RunAICommand(context.Background(), nil,
		CommandConfig{OutputFormat: "text", Out: &buf},
		[]string{resumeFile, jobFile},
		func(contents []string) (atsInput, error) {
			return atsInput{resume: contents[0], job: contents[1]}, nil
		},
		func(_ context.Context, in atsInput) (types.ATSReport, *ai.TokenUsage, error) {
			return types.ATSReport{ATSScore: 55, MissingKeywords: []string{"Kafka"}}, &ai.TokenUsage{TotalTokens: 10}, nil
		},
		func(in atsInput, _ CommandConfig) { logged = in },
	)
	require.NoError(t, err)
	assert.Equal(t, atsInput{resume: "Go engineer", job: "Needs Kafka"}, logged)
	assert.Contains(t, buf.String(), "Score: 55/100")
	assert.Contains(t, buf.String(), "- Kafka")
}

func TestRunAICommandPropagatesErrors(t *testing.T) {
	file := writeTemp(t, "resume.txt", "text")
	identity := func(contents []string) (string, error) { return contents[0], nil }

	err := RunAICommand(context.Background(), nil, CommandConfig{OutputFormat: "json"}, []string{file},
		identity,
		func(context.Context, string) (string, *ai.TokenUsage, error) {
			return "", nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed, "down", nil)
		}, nil)
	assert.Equal(t, appErrors.ErrCodeAIServiceFailed, appErrors.CodeOf(err))

	err = RunAICommand(context.Background(), nil, CommandConfig{OutputFormat: "json"}, []string{file},
		func([]string) (string, error) { return "", fmt.Errorf("bad input") },
		func(context.Context, string) (string, *ai.TokenUsage, error) { return "", nil, nil }, nil)
	assert.ErrorContains(t, err, "bad input")
}
