package common

import (
	"testing"

	"resumeforge/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "yaml", "text", "markdown"}

	tests := []struct {
		name          string
		format        string
		supported     []string
		expectedError string
	}{
		{name: "json", format: "json", supported: supported},
		{name: "yaml", format: "yaml", supported: supported},
		{name: "markdown", format: "markdown", supported: supported},
		{name: "xml", format: "xml", supported: supported, expectedError: "unsupported output format 'xml' (supported: json, yaml, text, markdown)"},
		{name: "case sensitive", format: "JSON", supported: supported, expectedError: "unsupported output format 'JSON' (supported: json, yaml, text, markdown)"},
		{name: "empty format", format: "", supported: supported, expectedError: "unsupported output format '' (supported: json, yaml, text, markdown)"},
		{name: "no allow-list still needs a formatter", format: "xml", supported: nil, expectedError: "no formatter produces 'xml'"},
		{name: "no allow-list", format: "text", supported: nil},
		{name: "single format rejects others", format: "text", supported: []string{"json"}, expectedError: "unsupported output format 'text' (supported: json)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, err.Error(), tt.expectedError)
			assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
		})
	}
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supported := []string{"json", "yaml", "text", "markdown"}

	b.Run("valid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("json", supported)
		}
	})

	b.Run("invalid format", func(b *testing.B) {
		for b.Loop() {
			_ = ValidateOutputFormat("xml", supported)
		}
	})
}
