package server

import (
	"testing"

	appErrors "resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUpload(t *testing.T) {
	tests := []struct {
		filename string
		want     uploadKind
		wantErr  bool
	}{
		{filename: "resume.txt", want: kindText},
		{filename: "notes.MD", want: kindText},
		{filename: "resume.json", want: kindStructured},
		{filename: "resume.yml", want: kindStructured},
		{filename: "resume.PDF", want: kindPDF},
		{filename: "resume.docx", wantErr: true},
		{filename: "resume", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := classifyUpload(tt.filename)
			if tt.wantErr {
				assert.Equal(t, appErrors.ErrCodeInvalidFormat, appErrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText(t *testing.T) {
	text, err := extractText("resume.txt", []byte("  Jane\t\tDoe \n\n\nGo engineer  "))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe \nGo engineer", text)

	_, err = extractText("resume.txt", []byte(" \n\t "))
	assert.Equal(t, appErrors.ErrCodeInvalidInput, appErrors.CodeOf(err))

	_, err = extractText("resume.pdf", []byte("not a pdf"))
	assert.Equal(t, appErrors.ErrCodeFileNotReadable, appErrors.CodeOf(err))
}
