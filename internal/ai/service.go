package ai

import (
	"context"
	"fmt"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
)

// Service handles AI operations for one configured operation
type Service struct {
	Provider  AIProvider // Exported for access from server package
	Operation string
	config    *config.OperationAIConfig
	logger    *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	var provider AIProvider
	var err error

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider:  provider,
		Operation: operationType,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Services bundles one service per AI operation
type Services struct {
	Parse     *Service
	Questions *Service
	ATS       *Service
}

// NewServices creates the services for every operation from the full configuration
func NewServices(cfg *config.Config, logger *errors.Logger) (*Services, error) {
	build := func(operation string) (*Service, error) {
		opCfg := cfg.GetOperationConfig(operation)
		svc, err := NewService(&opCfg, operation, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s service: %w", operation, err)
		}
		if g, ok := svc.Provider.(*GeminiProvider); ok {
			g.SetModelCheckTimeout(cfg.Observability.HealthCheck.AIModelCheckTimeout)
		}
		return svc, nil
	}

	parse, err := build(config.OperationParse)
	if err != nil {
		return nil, err
	}
	questions, err := build(config.OperationQuestions)
	if err != nil {
		return nil, err
	}
	ats, err := build(config.OperationATS)
	if err != nil {
		return nil, err
	}
	return &Services{Parse: parse, Questions: questions, ATS: ats}, nil
}

// All returns the services in a stable order
func (s *Services) All() []*Service {
	return []*Service{s.Parse, s.Questions, s.ATS}
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases every provider
func (s *Services) Close() error {
	var firstErr error
	for _, svc := range s.All() {
		if err := svc.Provider.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
