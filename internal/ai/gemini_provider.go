package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumeforge/internal/config"
	appErrors "resumeforge/internal/errors"
	"resumeforge/internal/types"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const defaultModelCheckTimeout = 10 * time.Second

// GeminiProvider implements AIProvider for Google Gemini
type GeminiProvider struct {
	client            *genai.Client
	config            *config.OperationAIConfig
	operation         string
	circuitBreaker    *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker      *CircuitBreaker[*genai.Model]
	modelCheckTimeout time.Duration
	backoff           func(attempt int) time.Duration
	logger            *appErrors.Logger
}

// Ensure GeminiProvider implements AIProvider
var _ AIProvider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *appErrors.Logger) (*GeminiProvider, error) {
	return newGeminiProvider(cfg, operationType, "", logger)
}

// newGeminiProvider allows pointing the client at another endpoint
func newGeminiProvider(cfg *config.OperationAIConfig, operationType, baseURL string, logger *appErrors.Logger) (*GeminiProvider, error) {
	if logger == nil {
		logger = appErrors.Discard()
	}
	if cfg.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			fmt.Sprintf("no API key configured for the %s operation", operationType), nil)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	if baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(context.Background(), clientConfig)
	if err != nil {
		return nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:            client,
		config:            cfg,
		operation:         operationType,
		circuitBreaker:    NewAICircuitBreaker(operationType, cfg.CircuitBreaker, logger),
		modelBreaker:      NewModelCircuitBreaker(operationType, cfg.CircuitBreaker, logger),
		modelCheckTimeout: defaultModelCheckTimeout,
		backoff:           backoffDelay,
		logger:            logger,
	}, nil
}

// SetModelCheckTimeout overrides the timeout used by GetModelInfo
func (g *GeminiProvider) SetModelCheckTimeout(d time.Duration) {
	if d > 0 {
		g.modelCheckTimeout = d
	}
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	Operation   string `json:"operation"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Operation: g.operation,
	}

	checkCtx, cancel := context.WithTimeout(ctx, g.modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"operation", g.operation,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	modelInfo.DisplayName = model.DisplayName
	modelInfo.Version = model.Version

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"operation", g.operation,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error
	maxRetries := *g.config.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", maxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
}

// backoffDelay is 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s
func backoffDelay(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
	var jitter time.Duration
	if jitterMax.Sign() > 0 {
		if n, err := rand.Int(rand.Reader, jitterMax); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, 30*time.Second)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	code := 0
	var apiErr genai.APIError
	var googleErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &googleErr):
		code = googleErr.Code
	}

	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// executeAIOperation runs a generation call with tracing, the circuit breaker
// and retries, and decodes the structured JSON answer into Out.
func executeAIOperation[Out any](
	g *GeminiProvider,
	ctx context.Context,
	operationName string,
	userPrompt string,
	systemPrompt string,
	genaiConfig *genai.GenerateContentConfig,
	spanAttributes ...attribute.KeyValue,
) (Out, *TokenUsage, error) {
	var output Out
	tracer := otel.Tracer("resumeforge.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			callCtx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
			defer cancel()
			return g.client.Models.GenerateContent(callCtx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, appErrors.NewAIError(appErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return output, nil, appErrors.NewAIError(appErrors.ErrCodeAIResponseInvalid, "Failed to parse AI response for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return output, tokenUsage, nil
}

// ParseResume implements AIProvider interface for resume parsing
func (g *GeminiProvider) ParseResume(ctx context.Context, text string) (json.RawMessage, *TokenUsage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, appErrors.NewValidationError(appErrors.ErrCodeInvalidInput, "resume text is empty", nil)
	}

	prompts := g.prompts(config.OperationParse)
	output, tokenUsage, err := executeAIOperation[json.RawMessage](
		g,
		ctx,
		"parse_resume",
		fmt.Sprintf(prompts.User, text),
		prompts.System,
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json", ResponseSchema: resumeSchema()},
		attribute.Int("input.resume_length", len(text)),
	)
	if err != nil {
		return nil, nil, err
	}

	return output, tokenUsage, nil
}

// GenerateQuestions implements AIProvider interface for interview question generation
func (g *GeminiProvider) GenerateQuestions(ctx context.Context, req types.GenerateQuestionsRequest) (types.GenerateQuestionsResponse, *TokenUsage, error) {
	prompts := g.prompts(config.OperationQuestions)
	userPrompt := fmt.Sprintf(prompts.User, req.Role, req.Experience, strings.Join(req.Skills, ", "), string(req.Resume))

	output, tokenUsage, err := executeAIOperation[types.GenerateQuestionsResponse](
		g,
		ctx,
		"generate_questions",
		userPrompt,
		prompts.System,
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json", ResponseSchema: questionsSchema()},
		attribute.String("input.role", req.Role),
		attribute.String("input.experience", req.Experience),
		attribute.Int("input.skills", len(req.Skills)),
	)
	if err != nil {
		return types.GenerateQuestionsResponse{}, nil, err
	}

	for i := range output.Questions {
		output.Questions[i].Difficulty = strings.ToLower(output.Questions[i].Difficulty)
		output.Questions[i].Type = strings.ToLower(output.Questions[i].Type)
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("output.questions", len(output.Questions)))
	}

	return output, tokenUsage, nil
}

// ScoreATS implements AIProvider interface for ATS scoring
func (g *GeminiProvider) ScoreATS(ctx context.Context, resumeText, jobDescription string) (types.ATSReport, *TokenUsage, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return types.ATSReport{}, nil, appErrors.NewValidationError(appErrors.ErrCodeInvalidInput, "job description is empty", nil)
	}

	prompts := g.prompts(config.OperationATS)
	output, tokenUsage, err := executeAIOperation[types.ATSReport](
		g,
		ctx,
		"score_ats",
		fmt.Sprintf(prompts.User, resumeText, jobDescription),
		prompts.System,
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json", ResponseSchema: atsSchema()},
		attribute.Int("input.resume_length", len(resumeText)),
		attribute.Int("input.job_length", len(jobDescription)),
	)
	if err != nil {
		return types.ATSReport{}, nil, err
	}

	normalizeATSReport(&output)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.Int("ats.score", output.ATSScore))
	}

	return output, tokenUsage, nil
}

// normalizeATSReport clamps scores to 0..100 and keeps both score fields in step
func normalizeATSReport(r *types.ATSReport) {
	if r.ATSScore == 0 {
		r.ATSScore = r.Score
	}
	r.ATSScore = max(0, min(100, r.ATSScore))
	r.Score = r.ATSScore
	if r.Improvements == nil {
		r.Improvements = []string{}
	}
	if r.MissingKeywords == nil {
		r.MissingKeywords = []string{}
	}
}

// prompts resolves the prompt pair for an operation
func (g *GeminiProvider) prompts(operation string) Prompts {
	defaults := DefaultPrompts[operation]
	return Prompts{
		System: resolvePrompt(g.config.Prompts.System, defaults.System),
		User:   resolvePrompt(g.config.Prompts.User, defaults.User),
	}
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetStats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements AIProvider interface
func (g *GeminiProvider) Close() error {
	// the genai client holds no resources in single-shot mode
	return nil
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
