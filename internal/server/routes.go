package server

import (
	"net/http"

	"resumeforge/internal/errors"
	"resumeforge/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Handler returns the routed API wrapped in the observability middleware
func (s *Server) Handler() http.Handler {
	return s.observability.HTTPMiddleware()(s.setupRoutes())
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("POST /api/resumes", protect(s.saveResumeHandler))
	mux.HandleFunc("GET /api/resumes/latest", protect(s.latestResumeHandler))
	mux.HandleFunc("POST /api/render", protect(s.renderHandler))

	mux.HandleFunc("POST /resume/upload", protect(s.uploadHandler))
	mux.HandleFunc("POST /api/generate", protect(s.generateQuestionsHandler))
	mux.HandleFunc("POST /ats/ats-details", protect(s.atsDetailsHandler))

	return mux
}

// authMiddleware resolves the request owner from an API key or bearer token
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := s.Auth.Authenticate(r)
		if err != nil {
			s.Logger.Info("Authentication failed",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"reason", err.Error(),
				"api_key_prefix", maskAPIKey(r.Header.Get("X-API-Key")))
			writeErrorResponse(w, "Unauthorized", err.Error(), errors.CodeOf(err), http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"owner", owner)

		next(w, r.WithContext(withOwner(r.Context(), owner)))
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// rateLimitMiddleware rejects callers that exhausted their token bucket
func (s *Server) rateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.RateLimiter == nil {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
		if key == "" || s.RateLimiter.Allow(key) {
			next(w, r)
			return
		}

		s.Logger.Info("Rate limit exceeded",
			"key", key,
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r))
		s.observability.GetMetrics().RecordBusinessMetric(r.Context(), observability.MetricRateLimitHit, false,
			attribute.String("endpoint", r.URL.Path),
			attribute.String("method", r.Method))
		writeErrorResponse(w, "Rate limit exceeded", "Too many requests", "", http.StatusTooManyRequests)
	}
}
