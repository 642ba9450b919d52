package cli

import (
	"fmt"

	"resumeforge/internal/ai"
	"resumeforge/internal/export"
	"resumeforge/internal/observability"
	"resumeforge/internal/server"
	"resumeforge/internal/server/repository"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resume backend HTTP server",
	Long: `Start the HTTP backend that stores resumes and runs the AI helpers.

Available endpoints:
- POST /api/resumes: Save a resume for the caller
- GET /api/resumes/latest: Fetch the caller's latest resume
- POST /api/render: Render a resume as tex, html or pdf
- POST /resume/upload: Parse an uploaded resume file
- POST /api/generate: Generate interview questions
- POST /ats/ats-details: Score a resume against a job description
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server
- Use --cert-file and --key-file for TLS certificates`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("tls-mode", "", "TLS mode: disabled, server (overrides config)")
	serveCmd.Flags().String("cert-file", "", "Server certificate file (PEM, overrides config)")
	serveCmd.Flags().String("key-file", "", "Server private key file (PEM, overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	// Flags override the loaded configuration
	overrides := map[string]*string{
		"port":      &cfg.Server.Port,
		"host":      &cfg.Server.Host,
		"tls-mode":  &cfg.Server.TLS.Mode,
		"cert-file": &cfg.Server.TLS.CertFile,
		"key-file":  &cfg.Server.TLS.KeyFile,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			value, _ := cmd.Flags().GetString(name)
			*target = value
		}
	}

	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	services, err := ai.NewServices(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI services: %w", err)
	}

	repo, err := repository.Open(ctx, cfg.Server.Repository, logger)
	if err != nil {
		_ = services.Close()
		return fmt.Errorf("failed to open resume repository: %w", err)
	}

	om, err := observability.NewManager(observability.GetSettings(cfg, Version), logger)
	if err != nil {
		_ = services.Close()
		_ = repo.Close()
		return fmt.Errorf("failed to initialize observability: %w", err)
	}

	exportOpts, err := export.OptionsFromConfig(cfg)
	if err != nil {
		_ = services.Close()
		_ = repo.Close()
		_ = om.Shutdown(ctx)
		return err
	}

	srv := server.NewServer(cfg, Version, server.Deps{
		Repository:    repo,
		AI:            services,
		Observability: om,
		Export:        exportOpts,
		Out:           cmd.OutOrStdout(),
	}, logger)
	return srv.Start(ctx)
}
