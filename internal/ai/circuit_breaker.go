package ai

import (
	"fmt"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

// CircuitBreaker guards calls returning T. A nil breaker passes calls
// straight through, which is what a disabled breaker configuration yields.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewAICircuitBreaker creates the breaker for content generation calls of one operation
func NewAICircuitBreaker(operationType string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[*genai.GenerateContentResponse] {
	return newCircuitBreaker[*genai.GenerateContentResponse](
		fmt.Sprintf("AI-%s", operationType), operationType, cfg, logger,
		func(counts gobreaker.Counts) bool {
			return counts.Requests >= cfg.MinRequests && failureRatio(counts) >= cfg.FailureThreshold
		})
}

// NewModelCircuitBreaker creates the breaker for model availability checks.
// Model checks are less critical and trip later than generation calls.
func NewModelCircuitBreaker(operationType string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[*genai.Model] {
	return newCircuitBreaker[*genai.Model](
		fmt.Sprintf("AI-Model-%s", operationType), operationType, cfg, logger,
		func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && failureRatio(counts) >= 0.8
		})
}

func newCircuitBreaker[T any](name, operationType string, cfg config.CircuitBreakerConfig, logger *errors.Logger, readyToTrip func(gobreaker.Counts) bool) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = errors.Discard()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: readyToTrip,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation_type", operationType,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

func failureRatio(counts gobreaker.Counts) float64 {
	if counts.Requests == 0 {
		return 0
	}
	return float64(counts.TotalFailures) / float64(counts.Requests)
}

// Execute runs fn under the breaker
func (b *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	return b.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (b *CircuitBreaker[T]) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is closed or absent
func (b *CircuitBreaker[T]) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
