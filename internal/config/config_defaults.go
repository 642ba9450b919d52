package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "yaml", "text"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB, PDF uploads included

	// Store Configuration
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", defaultStorePath())
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.keyPrefix", "resumeforge:")

	// Render Configuration, zero keeps the built-in layout
	v.SetDefault("render.pageWidth", 0)
	v.SetDefault("render.pageHeight", 0)
	v.SetDefault("render.margin", 0)
	v.SetDefault("render.lineHeight", 0)
	v.SetDefault("render.recordSpacing", 0)
	v.SetDefault("render.sectionSpacing", 0)
	v.SetDefault("render.bodySize", 0)
	v.SetDefault("render.preambleFile", "")

	// Export Configuration
	v.SetDefault("export.outputDir", ".")
	v.SetDefault("export.chromePath", "")
	v.SetDefault("export.chromeTimeout", 60*time.Second)

	// Sync Configuration
	v.SetDefault("sync.enabled", false)
	v.SetDefault("sync.baseURL", "http://localhost:8080")
	v.SetDefault("sync.token", "")
	v.SetDefault("sync.timeout", 10*time.Second) // Every request carries a deadline
	v.SetDefault("sync.maxRetries", 2)
	v.SetDefault("sync.circuitBreaker.enabled", true)
	v.SetDefault("sync.circuitBreaker.maxRequests", 1)
	v.SetDefault("sync.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("sync.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("sync.circuitBreaker.minRequests", 3)
	v.SetDefault("sync.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 10*1024*1024)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.jwtSecret", "")

	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.debounceDelay", time.Second)

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// Repository defaults
	v.SetDefault("server.repository.backend", "memory")
	v.SetDefault("server.repository.postgres.dsn", "")
	v.SetDefault("server.repository.postgres.maxConns", 10)
	v.SetDefault("server.repository.postgres.minConns", 1)
	v.SetDefault("server.repository.postgres.maxConnLifetime", time.Hour)
	v.SetDefault("server.repository.postgres.maxConnIdleTime", 30*time.Minute)
	v.SetDefault("server.repository.cache.enabled", false)
	v.SetDefault("server.repository.cache.redis.addr", "localhost:6379")
	v.SetDefault("server.repository.cache.redis.keyPrefix", "resumeforge:latest:")
	v.SetDefault("server.repository.cache.redis.ttl", 10*time.Minute)

	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Parse operation defaults
	v.SetDefault("ai.parse.timeout", 90*time.Second) // Long PDFs take a while
	v.SetDefault("ai.parse.maxRetries", 2)
	v.SetDefault("ai.parse.temperature", 0.1) // Extraction, not creativity

	// AI Configuration - Questions operation defaults
	v.SetDefault("ai.questions.timeout", 60*time.Second)
	v.SetDefault("ai.questions.maxRetries", 3)
	v.SetDefault("ai.questions.temperature", 0.7)

	// AI Configuration - ATS operation defaults
	v.SetDefault("ai.ats.timeout", 75*time.Second)
	v.SetDefault("ai.ats.maxRetries", 2)
	v.SetDefault("ai.ats.temperature", 0.2) // Consistent scoring

	for _, op := range []string{"parse", "questions", "ats"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", true)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.secrets.syncToken", "")
	v.SetDefault("vault.secrets.jwtSecret", "")
	v.SetDefault("vault.watch.enabled", false)
	v.SetDefault("vault.watch.pollInterval", 5*time.Minute)

	// Observability Configuration
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "resumeforge")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
