package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles replaces inline prompts with the content of their
// files, if any. Every missing file is reported in one error.
func (c *Config) loadPromptsFromFiles() error {
	if err := c.validatePromptFiles(); err != nil {
		return err
	}

	ops := map[string]*PromptConfig{
		OperationParse:     &c.AI.Parse.Prompts,
		OperationQuestions: &c.AI.Questions.Prompts,
		OperationATS:       &c.AI.ATS.Prompts,
	}
	loaded := 0
	for op, prompts := range ops {
		n, err := loadPromptPair(op, prompts)
		if err != nil {
			return err
		}
		loaded += n
	}

	if loaded > 0 && c.App.LogLevel == "debug" {
		log.Printf("[CONFIG] Total custom prompts loaded from files: %d", loaded)
	}
	return nil
}

func loadPromptPair(operation string, prompts *PromptConfig) (int, error) {
	loaded := 0
	if prompts.SystemFile != "" {
		content, err := loadPromptFromFile(prompts.SystemFile, "system", operation)
		if err != nil {
			return loaded, err
		}
		prompts.System = content
		loaded++
	}
	if prompts.UserFile != "" {
		content, err := loadPromptFromFile(prompts.UserFile, "user", operation)
		if err != nil {
			return loaded, err
		}
		prompts.User = content
		loaded++
	}
	return loaded, nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}
	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validateFile(c.AI.Parse.Prompts.SystemFile, "system", OperationParse)
	validateFile(c.AI.Parse.Prompts.UserFile, "user", OperationParse)
	validateFile(c.AI.Questions.Prompts.SystemFile, "system", OperationQuestions)
	validateFile(c.AI.Questions.Prompts.UserFile, "user", OperationQuestions)
	validateFile(c.AI.ATS.Prompts.SystemFile, "system", OperationATS)
	validateFile(c.AI.ATS.Prompts.UserFile, "user", OperationATS)

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}
