// Package server implements the resume backend HTTP API.
package server

import (
	"io"
	"os"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/export"
	"resumeforge/internal/observability"
	"resumeforge/internal/server/repository"
)

// Server holds configuration and dependencies for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate reloading, set when TLS is enabled
	CertReloader *CertReloader

	// API authentication
	Auth         *Authenticator
	VaultWatcher *VaultWatcher

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Repository repository.Repository
	AI         *ai.Services
	Exporter   *export.Exporter

	observability *observability.Manager
	out           io.Writer

	// Logger
	Logger *errors.Logger
}

// Deps carries the collaborators a Server does not build itself. A nil AI
// disables the AI endpoints; a nil Repository uses an in-memory one.
type Deps struct {
	Repository    repository.Repository
	AI            *ai.Services
	Observability *observability.Manager
	Export        export.Options
	Out           io.Writer
}

// NewServer creates a new Server from the application configuration
func NewServer(appCfg *config.Config, version string, deps Deps, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.Discard()
	}
	cfg := appCfg.Server

	var rateLimiter *RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	repo := deps.Repository
	if repo == nil {
		repo = repository.NewMemory()
	}

	om := deps.Observability
	if om == nil {
		om, _ = observability.NewManager(observability.Settings{}, logger)
	}

	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	// the backend never drives a browser
	exportOpts := deps.Export
	exportOpts.Printer = nil
	exporter := export.New(exportOpts, logger)

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLS,
		Auth:           NewAuthenticator(cfg.APIKeys, cfg.JWTSecret),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      &appCfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		Repository:     repo,
		AI:             deps.AI,
		Exporter:       exporter,
		observability:  om,
		out:            out,
		Logger:         logger,
	}
}
