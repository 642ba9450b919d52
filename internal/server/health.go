package server

import (
	"context"
	"net/http"
	"time"
)

// healthHandler reports AI model availability, breaker state and certificate
// status. Any unavailable model or unhealthy certificate degrades the server.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumeforge",
		"version": s.Version,
	}
	healthy := true

	if s.AI != nil {
		models, breakers, ok := s.checkAIHealth(r.Context())
		response["ai_models"] = models
		response["circuit_breakers"] = breakers
		healthy = healthy && ok
	} else {
		response["ai_models"] = map[string]any{"enabled": false}
	}

	if s.CertReloader != nil {
		status := s.CertReloader.Status()
		response["certificates"] = status
		if ok, _ := status["healthy"].(bool); !ok {
			healthy = false
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (s *Server) healthCheckTimeout() time.Duration {
	if t := s.AppConfig.Observability.HealthCheck.Timeout; t > 0 {
		return t
	}
	return 10 * time.Second
}

// checkAIHealth asks every configured operation for its model info
func (s *Server) checkAIHealth(parent context.Context) (map[string]any, map[string]any, bool) {
	ctx, cancel := context.WithTimeout(parent, s.healthCheckTimeout())
	defer cancel()

	models := make(map[string]any)
	breakers := make(map[string]any)
	healthy := true

	for _, svc := range s.AI.All() {
		info := svc.GetModelInfo(ctx)
		models[svc.Operation] = info
		if info == nil || !info.Available {
			healthy = false
		}
		breakers[svc.Operation] = svc.Provider.GetCircuitBreakerStats()
	}
	return models, breakers, healthy
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumeforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"repository":             s.AppConfig.Server.Repository.Backend,
			"tls_mode":               s.TLSConfig.Mode,
		},
		"auth": map[string]any{
			"enabled":      s.Auth.Enabled(),
			"api_keys":     s.Auth.KeyCount(),
			"jwt_enabled":  s.Auth.JWTEnabled(),
			"vault_reload": s.VaultWatcher != nil,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	if s.VaultWatcher != nil {
		response["vault_watcher"] = s.VaultWatcher.Status()
	}

	writeJSON(w, http.StatusOK, response)
}
