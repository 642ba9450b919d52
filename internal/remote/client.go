// Package remote talks to the resume backend: saving and fetching the
// latest resume, uploading files for parsing, and the AI helper endpoints.
package remote

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"

	"github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	pathResumes       = "/api/resumes"
	pathLatestResume  = "/api/resumes/latest"
	pathUpload        = "/resume/upload"
	pathGenerate      = "/api/generate"
	pathATSDetails    = "/ats/ats-details"
	maxResponseBytes  = 10 << 20
	maxBackoff        = 30 * time.Second
	defaultAPITimeout = 10 * time.Second
)

// response is what a single round trip produced
type response struct {
	status int
	body   []byte
}

// Client is an HTTP client for the resume backend. Every attempt runs under
// its own deadline, so a stalled backend can never hang the caller.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int

	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*response]
	backoff    func(attempt int) time.Duration
	logger     *errors.Logger
}

// NewClient creates a client from the sync configuration
func NewClient(cfg *config.SyncConfig, logger *errors.Logger) (*Client, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if cfg.BaseURL == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingConfig, "sync base URL is not configured", nil)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: newBreaker(cfg.CircuitBreaker, logger),
		backoff: backoffDelay,
		logger:  logger,
	}, nil
}

func newBreaker(cfg config.CircuitBreakerConfig, logger *errors.Logger) *gobreaker.CircuitBreaker[*response] {
	if !cfg.Enabled {
		return nil
	}

	return gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "remote-sync",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureThreshold
		},
		// a 4xx means the backend is up
		IsSuccessful: func(err error) bool {
			return err == nil || !retryable(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"failure_threshold", cfg.FailureThreshold)
		},
	})
}

// GetStats returns circuit breaker statistics
func (c *Client) GetStats() map[string]any {
	if c.breaker == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"name":    c.breaker.Name(),
		"state":   c.breaker.State().String(),
		"counts":  c.breaker.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true unless the breaker is open
func (c *Client) IsHealthy() bool {
	return c.breaker == nil || c.breaker.State() != gobreaker.StateOpen
}

// SaveResume posts the document to the backend
func (c *Client) SaveResume(ctx context.Context, doc resume.Document) (types.SaveResumeResponse, error) {
	var out types.SaveResumeResponse

	body, err := resume.Encode(doc)
	if err != nil {
		return out, err
	}
	resp, err := c.do(ctx, "save_resume", http.MethodPost, pathResumes, "application/json", body)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// LatestResume fetches the most recently saved resume. A backend that has
// nothing stored yet answers with a NOT_FOUND error.
func (c *Client) LatestResume(ctx context.Context) (types.ResumeRecord, error) {
	var out types.ResumeRecord

	resp, err := c.do(ctx, "latest_resume", http.MethodGet, pathLatestResume, "", nil)
	if err != nil {
		return out, err
	}

	// older backends answer with the bare document
	if !gjson.GetBytes(resp.body, "document").Exists() {
		if !gjson.ValidBytes(resp.body) {
			return out, errors.NewNetworkError(errors.ErrCodeDecodeFailed, "backend returned invalid JSON", nil)
		}
		out.Document = json.RawMessage(resp.body)
		return out, nil
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// UploadResume sends a resume file to be parsed and returns the document
// the backend extracted from it.
func (c *Client) UploadResume(ctx context.Context, filename string, content []byte) (resume.Document, error) {
	body, contentType, err := multipartBody(filename, content, nil)
	if err != nil {
		return resume.Document{}, err
	}
	resp, err := c.do(ctx, "upload_resume", http.MethodPost, pathUpload, contentType, body)
	if err != nil {
		return resume.Document{}, err
	}
	doc, err := resume.Decode(resp.body)
	if err != nil {
		return resume.Document{}, errors.NewNetworkError(errors.ErrCodeDecodeFailed, "backend returned an unreadable resume", err)
	}
	return doc, nil
}

// GenerateQuestions asks the backend for interview questions
func (c *Client) GenerateQuestions(ctx context.Context, req types.GenerateQuestionsRequest) (types.GenerateQuestionsResponse, error) {
	var out types.GenerateQuestionsResponse

	body, err := json.Marshal(req)
	if err != nil {
		return out, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode request", err)
	}
	resp, err := c.do(ctx, "generate_questions", http.MethodPost, pathGenerate, "application/json", body)
	if err != nil {
		return out, err
	}
	if err := decodeJSON(resp, &out); err != nil {
		return out, err
	}
	return out, nil
}

// ATSDetails scores a resume file against a job description
func (c *Client) ATSDetails(ctx context.Context, filename string, content []byte, jobDescription string) (types.ATSReport, error) {
	body, contentType, err := multipartBody(filename, content, map[string]string{"job_description": jobDescription})
	if err != nil {
		return types.ATSReport{}, err
	}
	resp, err := c.do(ctx, "ats_details", http.MethodPost, pathATSDetails, contentType, body)
	if err != nil {
		return types.ATSReport{}, err
	}

	var envelope types.ATSResponse
	if err := decodeJSON(resp, &envelope); err != nil {
		return types.ATSReport{}, err
	}
	if !envelope.Success || envelope.Data == nil {
		msg := envelope.Error
		if msg == "" {
			msg = "ATS analysis was not successful"
		}
		return types.ATSReport{}, errors.NewNetworkError(errors.ErrCodeRemoteStatus, msg, nil).
			WithContext("status", resp.status)
	}
	return *envelope.Data, nil
}

// do runs one logical request through the breaker and the retry loop
func (c *Client) do(ctx context.Context, operation, method, path, contentType string, body []byte) (*response, error) {
	tracer := otel.Tracer("resumeforge.remote")
	ctx, span := tracer.Start(ctx, "remote."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("remote.path", path),
		attribute.Int("request.size", len(body)),
	)

	call := func() (*response, error) {
		return c.executeWithRetry(ctx, operation, func() (*response, error) {
			return c.roundTrip(ctx, method, path, contentType, body)
		})
	}

	var resp *response
	var err error
	if c.breaker == nil {
		resp, err = call()
	} else {
		resp, err = c.breaker.Execute(call)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "backend circuit breaker is open", err).
				WithContext("operation", operation)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("http.status_code", resp.status),
	)
	return resp, nil
}

// roundTrip performs a single attempt under its own deadline
func (c *Client) roundTrip(ctx context.Context, method, path, contentType string, body []byte) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "backend is unreachable", err).
			WithContext("path", path)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "failed to read backend response", err).
			WithContext("path", path)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, statusError(path, httpResp.StatusCode, data)
	}
	return &response{status: httpResp.StatusCode, body: data}, nil
}

func statusError(path string, status int, body []byte) error {
	msg := fmt.Sprintf("backend answered %d %s", status, http.StatusText(status))
	var errBody types.ErrorResponse
	if json.Unmarshal(body, &errBody) == nil {
		switch {
		case errBody.Message != "":
			msg += ": " + errBody.Message
		case errBody.Error != "":
			msg += ": " + errBody.Error
		}
	}

	code := errors.ErrCodeRemoteStatus
	if status == http.StatusNotFound {
		code = errors.ErrCodeNotFound
	}
	return errors.NewNetworkError(code, msg, nil).
		WithContext("status", status).
		WithContext("path", path)
}

// executeWithRetry retries fn with exponential backoff and jitter
func (c *Client) executeWithRetry(ctx context.Context, operation string, fn func() (*response, error)) (*response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying remote operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, errors.NewNetworkError(errors.ErrCodeRemoteUnavailable, "request cancelled", ctx.Err())
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				c.logger.Info("Remote operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
	}

	c.logger.Debug("Remote operation failed",
		"operation", operation,
		"error", lastErr.Error())
	return nil, lastErr
}

// backoffDelay is 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s
func backoffDelay(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if n, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(n.Int64())
		}
	}
	return min(baseDelay+jitter, maxBackoff)
}

// retryable reports whether err is a transport failure, 429 or 5xx
func retryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	appErr, ok := errors.As(err)
	if !ok {
		return false
	}
	if appErr.Code == errors.ErrCodeRemoteUnavailable {
		return true
	}
	status, _ := appErr.Context["status"].(int)
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func decodeJSON(resp *response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		return errors.NewNetworkError(errors.ErrCodeDecodeFailed, "failed to decode backend response", err).
			WithContext("status", resp.status)
	}
	return nil
}

func multipartBody(filename string, content []byte, fields map[string]string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
