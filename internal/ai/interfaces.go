package ai

import (
	"context"
	"encoding/json"

	"resumeforge/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	// ParseResume turns free resume text into a structured document in JSON form
	ParseResume(ctx context.Context, text string) (json.RawMessage, *TokenUsage, error)
	GenerateQuestions(ctx context.Context, req types.GenerateQuestionsRequest) (types.GenerateQuestionsResponse, *TokenUsage, error)
	ScoreATS(ctx context.Context, resumeText, jobDescription string) (types.ATSReport, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}
