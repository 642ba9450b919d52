package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"resumeforge/internal/errors"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-key limiter is kept
const limiterIdleTTL = 10 * time.Minute

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller key
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	rate     rate.Limit
	burst    int
	rejected atomic.Int64
	done     chan struct{}
	once     sync.Once
	logger   *errors.Logger
}

// NewRateLimiter allows requestsPerMin per key with bursts of burstCapacity
// and starts the idle-limiter sweep.
func NewRateLimiter(requestsPerMin, burstCapacity int, logger *errors.Logger) *RateLimiter {
	if logger == nil {
		logger = errors.Discard()
	}
	if burstCapacity < 1 {
		burstCapacity = 1
	}

	m := &RateLimiter{
		limiters: make(map[string]*keyedLimiter),
		rate:     rate.Limit(float64(requestsPerMin) / 60.0),
		burst:    burstCapacity,
		done:     make(chan struct{}),
		logger:   logger,
	}
	go m.cleanupRoutine(limiterIdleTTL)
	return m
}

// Allow takes a token from key's bucket without blocking
func (m *RateLimiter) Allow(key string) bool {
	m.mu.Lock()
	kl, ok := m.limiters[key]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(m.rate, m.burst)}
		m.limiters[key] = kl
	}
	kl.lastSeen = time.Now()
	m.mu.Unlock()

	if kl.limiter.Allow() {
		return true
	}
	m.rejected.Add(1)
	return false
}

// GetStats returns current rate limiter statistics
func (m *RateLimiter) GetStats() map[string]any {
	m.mu.Lock()
	active := len(m.limiters)
	m.mu.Unlock()

	return map[string]any{
		"enabled":           true,
		"active_limiters":   active,
		"rate_per_minute":   float64(m.rate) * 60.0,
		"burst_capacity":    m.burst,
		"rejected_requests": m.rejected.Load(),
	}
}

func (m *RateLimiter) cleanupRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now().Add(-interval))
		case <-m.done:
			return
		}
	}
}

// cleanup drops limiters last used before cutoff
func (m *RateLimiter) cleanup(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, kl := range m.limiters {
		if kl.lastSeen.Before(cutoff) {
			delete(m.limiters, key)
		}
	}
	m.logger.Debug("Rate limiter cleanup completed", "remaining_limiters", len(m.limiters))
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (m *RateLimiter) Close() {
	m.once.Do(func() { close(m.done) })
}

// getRateLimitKey picks the bucket for a request. Credentials are hashed so
// raw keys never sit in the limiter map.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		credential := r.Header.Get("X-API-Key")
		if credential == "" {
			credential, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		if credential != "" {
			return "api:" + keyFingerprint(credential)
		}
	}

	if byIP {
		return "ip:" + getClientIP(r)
	}

	return ""
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP parses the first valid IP from a comma-separated list
func parseFirstIP(ips string) string {
	for ip := range strings.SplitSeq(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}
	return ""
}
