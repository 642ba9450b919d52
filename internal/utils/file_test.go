package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(small, []byte("Jane Doe"), 0600))

	assert.NoError(t, ValidateInputFile(small))
	assert.Error(t, ValidateInputFile(""))
	assert.Error(t, ValidateInputFile(filepath.Join(dir, "missing.txt")))
	assert.Error(t, ValidateInputFile(dir))

	MaxInputSize = 4
	t.Cleanup(func() { MaxInputSize = 0 })
	err := ValidateInputFile(small)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "8 B")
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "out", "resume.tex")
	require.NoError(t, ValidateOutputFile(target))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, ValidateOutputFile(""))
}

func TestFileKinds(t *testing.T) {
	tests := []struct {
		name       string
		text       bool
		pdf        bool
		structured bool
	}{
		{name: "resume.TXT", text: true},
		{name: "notes.md", text: true},
		{name: "resume.pdf", pdf: true},
		{name: "resume.yml", structured: true},
		{name: "resume.JSON", structured: true},
		{name: "resume.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, IsTextFile(tt.name))
			assert.Equal(t, tt.pdf, IsPDFFile(tt.name))
			assert.Equal(t, tt.structured, IsStructuredFile(tt.name))
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2<<20))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc", NormalizeWhitespace("  a \t  b\n\n\nc \n"))
	assert.Equal(t, "", NormalizeWhitespace(" \n\t "))
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	_, err := PDFText([]byte("plain text"))
	assert.Error(t, err)
}
