package server

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"resumeforge/internal/ai"
	"resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

var experienceLevels = []string{types.ExperienceJunior, types.ExperienceMid, types.ExperienceSenior}

func (s *Server) aiUnavailable(w http.ResponseWriter) bool {
	if s.AI != nil {
		return false
	}
	writeErrorResponse(w, "AI services unavailable", "the server was started without AI configuration",
		errors.ErrCodeMissingConfig, http.StatusServiceUnavailable)
	return true
}

// trackAI runs fn as an instrumented AI operation
func (s *Server) trackAI(ctx context.Context, operation string, fn func(context.Context) (*ai.TokenUsage, error)) error {
	return s.observability.GetMetrics().TrackAIOperationWithTokens(ctx, operation,
		func(ctx context.Context) *observability.AIOperationResult {
			usage, err := fn(ctx)
			return &observability.AIOperationResult{
				Error:      err,
				TokenUsage: (*observability.TokenUsage)(usage),
			}
		})
}

// uploadHandler turns an uploaded resume file into a document. Structured
// files are decoded directly; text and PDF files go through the AI parser.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumeforge.api").Start(r.Context(), "api.upload")
	defer span.End()
	metrics := s.observability.GetMetrics()

	upload, err := readUpload(r)
	if err != nil {
		span.RecordError(err)
		writeAppError(w, "Invalid upload", err)
		return
	}
	span.SetAttributes(
		attribute.String("upload.name", upload.Name),
		attribute.Int("upload.bytes", len(upload.Content)),
	)

	kind, err := classifyUpload(upload.Name)
	if err != nil {
		writeAppError(w, "Unsupported file", err)
		return
	}

	var doc resume.Document
	if kind == kindStructured {
		doc, err = resume.DecodeFile(upload.Name, upload.Content)
		if err != nil {
			writeAppError(w, "Invalid resume file", err)
			return
		}
	} else {
		if s.aiUnavailable(w) {
			return
		}
		text, err := extractText(upload.Name, upload.Content)
		if err != nil {
			writeAppError(w, "Unreadable resume file", err)
			return
		}

		var raw []byte
		err = s.trackAI(ctx, "parse", func(ctx context.Context) (*ai.TokenUsage, error) {
			out, usage, err := s.AI.Parse.Provider.ParseResume(ctx, text)
			raw = out
			return usage, err
		})
		if err == nil {
			doc, err = resume.Decode(raw)
		}
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, observability.MetricResumeParsed, false)
			s.Logger.LogError(err, "Failed to parse uploaded resume", "file", upload.Name)
			writeAppError(w, "Failed to parse resume", err)
			return
		}
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricResumeParsed, true,
		attribute.Bool("structured", kind == kindStructured))
	writeJSON(w, http.StatusOK, doc)
}

// generateQuestionsHandler produces interview questions for a role
func (s *Server) generateQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumeforge.api").Start(r.Context(), "api.generate")
	defer span.End()
	metrics := s.observability.GetMetrics()

	var req types.GenerateQuestionsRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		writeAppError(w, "Invalid request body", err)
		return
	}
	if err := validateQuestionsRequest(&req); err != nil {
		writeAppError(w, "Invalid request", err)
		return
	}
	if s.aiUnavailable(w) {
		return
	}

	span.SetAttributes(
		attribute.String("request.role", req.Role),
		attribute.String("request.experience", req.Experience),
		attribute.Int("request.skills", len(req.Skills)),
	)

	var result types.GenerateQuestionsResponse
	err := s.trackAI(ctx, "questions", func(ctx context.Context) (*ai.TokenUsage, error) {
		out, usage, err := s.AI.Questions.Provider.GenerateQuestions(ctx, req)
		result = out
		return usage, err
	})
	if err != nil {
		span.RecordError(err)
		metrics.RecordBusinessMetric(ctx, observability.MetricQuestionsServed, false)
		writeAppError(w, "Failed to generate questions", err)
		return
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricQuestionsServed, true,
		attribute.Int("questions", len(result.Questions)))
	writeJSON(w, http.StatusOK, result)
}

func validateQuestionsRequest(req *types.GenerateQuestionsRequest) error {
	req.Role = strings.TrimSpace(req.Role)
	req.Experience = strings.ToLower(strings.TrimSpace(req.Experience))
	if req.Role == "" {
		return errors.NewValidationError(errors.ErrCodeMissingField, "role is required", nil)
	}
	if req.Experience == "" {
		req.Experience = types.ExperienceMid
	}
	if !slices.Contains(experienceLevels, req.Experience) {
		return errors.NewValidationError(errors.ErrCodeInvalidInput,
			"experience must be junior, mid or senior", nil).WithContext("experience", req.Experience)
	}
	return nil
}

// atsDetailsHandler scores an uploaded resume against a job description
func (s *Server) atsDetailsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumeforge.api").Start(r.Context(), "api.ats_details")
	defer span.End()
	metrics := s.observability.GetMetrics()

	fail := func(err error) {
		span.RecordError(err)
		writeJSON(w, statusFor(err), types.ATSResponse{Success: false, Error: err.Error()})
	}

	upload, err := readUpload(r)
	if err != nil {
		fail(err)
		return
	}
	jobDescription := strings.TrimSpace(r.FormValue("job_description"))
	if jobDescription == "" {
		fail(errors.NewValidationError(errors.ErrCodeMissingField, "job_description is required", nil))
		return
	}
	text, err := extractText(upload.Name, upload.Content)
	if err != nil {
		fail(err)
		return
	}
	if s.AI == nil {
		fail(errors.NewConfigError(errors.ErrCodeMissingConfig, "the server was started without AI configuration", nil))
		return
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(text)),
		attribute.Int("request.job_length", len(jobDescription)),
	)

	var report types.ATSReport
	err = s.trackAI(ctx, "ats", func(ctx context.Context) (*ai.TokenUsage, error) {
		out, usage, err := s.AI.ATS.Provider.ScoreATS(ctx, text, jobDescription)
		report = out
		return usage, err
	})
	if err != nil {
		metrics.RecordBusinessMetric(ctx, observability.MetricATSScored, false)
		s.Logger.LogError(err, "ATS analysis failed", "file", upload.Name)
		fail(err)
		return
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricATSScored, true,
		attribute.Int("ats.score", report.ATSScore))
	span.SetAttributes(attribute.Int("ats.score", report.ATSScore))
	writeJSON(w, http.StatusOK, types.ATSResponse{Success: true, Data: &report})
}
