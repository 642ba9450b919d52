package ai

import (
	"errors"
	"testing"
	"time"

	"resumeforge/internal/config"

	"google.golang.org/genai"
)

func breakerConfig(maxRequests, minRequests uint32, threshold float64) config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      maxRequests,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      minRequests,
		FailureThreshold: threshold,
	}
}

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	parseCB := NewAICircuitBreaker(config.OperationParse, breakerConfig(3, 3, 0.6), nil)
	questionsCB := NewAICircuitBreaker(config.OperationQuestions, breakerConfig(5, 2, 0.7), nil)
	atsCB := NewAICircuitBreaker(config.OperationATS, breakerConfig(4, 5, 0.5), nil)

	tests := []struct {
		name         string
		breaker      *CircuitBreaker[*genai.GenerateContentResponse]
		expectedName string
	}{
		{name: "ParseCircuitBreaker", breaker: parseCB, expectedName: "AI-parse"},
		{name: "QuestionsCircuitBreaker", breaker: questionsCB, expectedName: "AI-questions"},
		{name: "ATSCircuitBreaker", breaker: atsCB, expectedName: "AI-ats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := tt.breaker.GetStats()

			name, ok := stats["name"].(string)
			if !ok {
				t.Fatal("Circuit breaker name not found")
			}
			if name != tt.expectedName {
				t.Errorf("Expected circuit breaker name '%s', got '%s'", tt.expectedName, name)
			}

			if state, _ := stats["state"].(string); state != "closed" {
				t.Errorf("Expected initial state 'closed', got '%s'", state)
			}
			if enabled, _ := stats["enabled"].(bool); !enabled {
				t.Error("Circuit breaker should be enabled")
			}
			if !tt.breaker.IsHealthy() {
				t.Error("Circuit breaker should be healthy initially")
			}
		})
	}

	t.Run("IndependentInstances", func(t *testing.T) {
		if parseCB == questionsCB || parseCB == atsCB || questionsCB == atsCB {
			t.Error("Each operation should get its own circuit breaker")
		}
	})
}

func TestCircuitBreakerTrips(t *testing.T) {
	cb := NewAICircuitBreaker("trip", breakerConfig(1, 2, 0.5), nil)
	failing := func() (*genai.GenerateContentResponse, error) { return nil, errors.New("upstream down") }

	for range 2 {
		if _, err := cb.Execute(failing); err == nil {
			t.Fatal("Expected the failing call to return an error")
		}
	}

	if cb.IsHealthy() {
		t.Fatal("Circuit breaker should be open after repeated failures")
	}

	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return &genai.GenerateContentResponse{}, nil
	})
	if err == nil {
		t.Error("Open circuit breaker should reject calls")
	}
	if called {
		t.Error("Open circuit breaker should not invoke the function")
	}
}

func TestModelCircuitBreakerIsLenient(t *testing.T) {
	cb := NewModelCircuitBreaker("model", breakerConfig(1, 1, 0.1), nil)
	failing := func() (*genai.Model, error) { return nil, errors.New("not found") }

	for range 4 {
		_, _ = cb.Execute(failing)
	}
	if !cb.IsHealthy() {
		t.Error("Model circuit breaker should tolerate four failures")
	}

	_, _ = cb.Execute(failing)
	if cb.IsHealthy() {
		t.Error("Model circuit breaker should open after five failures")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cb := NewAICircuitBreaker("Disabled", config.CircuitBreakerConfig{Enabled: false}, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// a nil breaker still runs the call
	resp, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	})
	if err != nil || resp == nil {
		t.Errorf("Disabled circuit breaker should pass calls through, got %v, %v", resp, err)
	}

	if enabled, _ := cb.GetStats()["enabled"].(bool); enabled {
		t.Error("Disabled circuit breaker should report enabled=false")
	}
	if !cb.IsHealthy() {
		t.Error("Disabled circuit breaker should be healthy")
	}
}
