package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	_, _ = fmt.Fprintln(s.out, "Available endpoints:")
	_, _ = fmt.Fprintln(s.out, "  GET  /health              - Health check")
	_, _ = fmt.Fprintln(s.out, "  GET  /stats               - Server statistics")
	_, _ = fmt.Fprintln(s.out, "  POST /api/resumes         - Save a resume document")
	_, _ = fmt.Fprintln(s.out, "  GET  /api/resumes/latest  - Fetch the most recent resume")
	_, _ = fmt.Fprintln(s.out, "  POST /api/render          - Render a resume (?format=pdf|tex|html)")
	if s.AI == nil {
		_, _ = fmt.Fprintln(s.out, "  AI endpoints are DISABLED (no API key configured)")
		return
	}
	_, _ = fmt.Fprintln(s.out, "  POST /resume/upload       - Parse an uploaded resume")
	_, _ = fmt.Fprintln(s.out, "  POST /api/generate        - Generate interview questions")
	_, _ = fmt.Fprintln(s.out, "  POST /ats/ats-details     - Score a resume against a job description")
}

func (s *Server) displayAuthInfo() {
	if !s.Auth.Enabled() {
		_, _ = fmt.Fprintln(s.out, "API authentication: DISABLED (no API keys or JWT secret configured)")
		_, _ = fmt.Fprintln(s.out, "WARNING: API endpoints are publicly accessible!")
		return
	}
	_, _ = fmt.Fprintf(s.out, "API authentication: ENABLED (%d keys configured, JWT: %t)\n",
		s.Auth.KeyCount(), s.Auth.JWTEnabled())
	_, _ = fmt.Fprintln(s.out, "Send 'X-API-Key: <key>' or 'Authorization: Bearer <key or token>'")
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		_, _ = fmt.Fprintf(s.out, "Request size limit: %d bytes (%.1f MB)\n",
			s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
		return
	}
	_, _ = fmt.Fprintln(s.out, "Request size limit: DISABLED")
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		_, _ = fmt.Fprintln(s.out, "Rate limiting: DISABLED")
		return
	}
	_, _ = fmt.Fprintf(s.out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		_, _ = fmt.Fprintln(s.out, "  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		_, _ = fmt.Fprintln(s.out, "  - Per IP address rate limiting enabled")
	}
}
