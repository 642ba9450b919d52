package server

import (
	"fmt"
	"net/http"
	"strings"

	"resumeforge/internal/errors"
	"resumeforge/internal/export"
	"resumeforge/internal/observability"
	"resumeforge/internal/resume"
	"resumeforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// saveResumeHandler stores the posted document as the caller's latest resume
func (s *Server) saveResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumeforge.api").Start(r.Context(), "api.save_resume")
	defer span.End()
	metrics := s.observability.GetMetrics()

	doc, err := s.readDocument(r)
	if err != nil {
		span.RecordError(err)
		writeAppError(w, "Invalid resume", err)
		return
	}

	raw, err := resume.Encode(doc)
	if err != nil {
		span.RecordError(err)
		writeAppError(w, "Failed to encode resume", err)
		return
	}

	owner := OwnerFromContext(ctx)
	rec, err := s.Repository.Save(ctx, owner, raw)
	if err != nil {
		span.RecordError(err)
		metrics.RecordBusinessMetric(ctx, observability.MetricResumeSaved, false)
		s.Logger.LogError(err, "Failed to save resume", "owner", owner)
		writeAppError(w, "Failed to save resume", err)
		return
	}

	metrics.RecordBusinessMetric(ctx, observability.MetricResumeSaved, true)
	span.SetAttributes(attribute.String("resume.id", rec.ID))
	s.Logger.Info("Resume saved", "id", rec.ID, "owner", owner, "bytes", len(raw))

	writeJSON(w, http.StatusCreated, types.SaveResumeResponse{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		CreatedAt: rec.CreatedAt,
	})
}

// latestResumeHandler returns the caller's most recently saved resume
func (s *Server) latestResumeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumeforge.api").Start(r.Context(), "api.latest_resume")
	defer span.End()

	rec, err := s.Repository.Latest(ctx, OwnerFromContext(ctx))
	if err != nil {
		if errors.CodeOf(err) != errors.ErrCodeNotFound {
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to load latest resume")
		}
		writeAppError(w, "No resume available", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// renderHandler renders the posted document as tex, html or pdf
func (s *Server) renderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.observability.Tracer("resumeforge.api").Start(r.Context(), "api.render")
	defer span.End()
	metrics := s.observability.GetMetrics()

	format, err := renderFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeAppError(w, "Invalid format", err)
		return
	}
	span.SetAttributes(attribute.String("render.format", string(format)))

	doc, err := s.readDocument(r)
	if err != nil {
		span.RecordError(err)
		writeAppError(w, "Invalid resume", err)
		return
	}
	if err := resume.RequireFields(&doc); err != nil {
		writeAppError(w, "Resume is incomplete", err)
		return
	}

	out, err := s.Exporter.Render(ctx, doc, format)
	if err != nil {
		span.RecordError(err)
		metrics.RecordBusinessMetric(ctx, observability.MetricResumeRendered, false,
			attribute.String("format", string(format)))
		writeAppError(w, "Failed to render resume", err)
		return
	}
	metrics.RecordBusinessMetric(ctx, observability.MetricResumeRendered, true,
		attribute.String("format", string(format)))

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(doc.Basics.Name, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

var contentTypes = map[export.Format]string{
	export.FormatTeX:  "application/x-tex; charset=utf-8",
	export.FormatHTML: "text/html; charset=utf-8",
	export.FormatPDF:  "application/pdf",
}

// renderFormat accepts the formats the backend can render without a browser
func renderFormat(name string) (export.Format, error) {
	if name == "" {
		return export.FormatPDF, nil
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return "", err
	}
	if _, ok := contentTypes[format]; !ok {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("format %q is not rendered by the server (use tex, html or pdf)", strings.ToLower(name)), nil)
	}
	return format, nil
}

// readDocument decodes and checks the JSON document in the request body
func (s *Server) readDocument(r *http.Request) (resume.Document, error) {
	if mediaType := r.Header.Get("Content-Type"); !strings.HasPrefix(mediaType, "application/json") {
		return resume.Document{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"content-type must be application/json", nil)
	}
	body, err := readBody(r)
	if err != nil {
		return resume.Document{}, err
	}
	doc, err := resume.Decode(body)
	if err != nil {
		return resume.Document{}, err
	}
	if err := resume.ValidateSchema(&doc); err != nil {
		return resume.Document{}, err
	}
	return doc, nil
}
