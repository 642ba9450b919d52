package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	systemPromptFile := filepath.Join(tempDir, "system.parse.md")
	userPromptFile := filepath.Join(tempDir, "user.ats.md")
	require.NoError(t, os.WriteFile(systemPromptFile, []byte("  Extract the resume.\n"), 0600))
	require.NoError(t, os.WriteFile(userPromptFile, []byte("Score %s against %s"), 0600))

	config := &Config{
		AI: AIConfig{
			Parse: OperationAIConfig{Prompts: PromptConfig{System: "inline", SystemFile: systemPromptFile}},
			ATS:   OperationAIConfig{Prompts: PromptConfig{UserFile: userPromptFile}},
		},
	}

	require.NoError(t, config.loadPromptsFromFiles())
	assert.Equal(t, "Extract the resume.", config.AI.Parse.Prompts.System, "file wins over inline text")
	assert.Equal(t, "Score %s against %s", config.AI.ATS.Prompts.User)
	assert.Empty(t, config.AI.Questions.Prompts.System)
	assert.Equal(t, systemPromptFile, config.AI.Parse.Prompts.SystemFile)
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()
	validFile := filepath.Join(tempDir, "valid.md")
	require.NoError(t, os.WriteFile(validFile, []byte("Valid content"), 0600))

	config := &Config{AI: AIConfig{Questions: OperationAIConfig{Prompts: PromptConfig{SystemFile: validFile}}}}
	assert.NoError(t, config.validatePromptFiles())

	config.AI.Questions.Prompts.SystemFile = filepath.Join(tempDir, "nonexistent.md")
	config.AI.ATS.Prompts.UserFile = filepath.Join(tempDir, "missing.md")
	err := config.validatePromptFiles()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent.md")
	assert.Contains(t, err.Error(), "missing.md")
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		content *string
		want    string
		wantErr string
	}{
		{name: "valid", content: ptr("Test prompt content"), want: "Test prompt content"},
		{name: "empty", content: ptr("   \n\t "), wantErr: "is empty"},
		{name: "missing", wantErr: "failed to read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tempDir, tt.name+".md")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0600))
			}
			got, err := loadPromptFromFile(path, "system", OperationParse)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr[T any](v T) *T { return &v }
