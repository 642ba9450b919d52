package cli

import (
	"context"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/export"
	"resumeforge/internal/observability"
	"resumeforge/internal/remote"
	"resumeforge/internal/store"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumeforge",
	Short: "Build, render and sync your resume from the command line",
	Long: `ResumeForge keeps a structured resume in a local store and turns it into
LaTeX, PDF or a printable HTML page. The resume can be mirrored to a backend,
imported from a file, parsed from free text by AI, and scored against a job
description.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	rootCmd.SetContext(withRuntime(ctx, cfg, logger))
	return rootCmd.Execute()
}

func withRuntime(ctx context.Context, cfg *config.Config, logger *errors.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey, cfg)
	return context.WithValue(ctx, loggerKey, logger)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// openStore opens the configured store. The returned func releases the
// backend connection.
func openStore(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*store.Store, func(), error) {
	var kv store.KV
	release := func() {}

	switch cfg.Store.Backend {
	case "redis":
		r, err := store.NewRedisKV(ctx, store.RedisOptions{
			Addr:      cfg.Store.Redis.Addr,
			Password:  cfg.Store.Redis.Password,
			DB:        cfg.Store.Redis.DB,
			KeyPrefix: cfg.Store.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to connect to redis store", err).
				WithContext("addr", cfg.Store.Redis.Addr)
		}
		kv = r
		release = func() {
			if err := r.Close(); err != nil {
				logger.Warn("Failed to close redis store", "error", err)
			}
		}
	case "memory":
		kv = store.NewMemoryKV()
	default:
		kv = store.NewFileKV(cfg.Store.Path)
	}

	st, err := store.Open(ctx, kv, logger)
	if err != nil {
		release()
		return nil, nil, err
	}
	return st, release, nil
}

// newExporter builds an exporter from the render and export settings
func newExporter(cfg *config.Config, logger *errors.Logger, force bool) (*export.Exporter, error) {
	opts, err := export.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Force = force
	return export.New(opts, logger), nil
}

// newRemoteClient returns a backend client, or an error when sync is off
func newRemoteClient(cfg *config.Config, logger *errors.Logger) (*remote.Client, error) {
	if !cfg.Sync.Enabled {
		return nil, errors.NewConfigError(errors.ErrCodeMissingConfig,
			"remote backend is disabled (set sync.enabled and sync.baseURL)", nil)
	}
	return remote.NewClient(&cfg.Sync, logger)
}

// newSyncer wires a syncer whose failures are counted. The
// returned func flushes telemetry.
func newSyncer(ctx context.Context, cfg *config.Config, st *store.Store, logger *errors.Logger) (*remote.Syncer, func()) {
	var backend remote.Backend
	if cfg.Sync.Enabled {
		client, err := remote.NewClient(&cfg.Sync, logger)
		if err != nil {
			logger.LogError(err, "Remote sync unavailable")
		} else {
			backend = client
		}
	}

	// a one-shot command never serves a scrape endpoint
	settings := observability.GetSettings(cfg, Version)
	settings.Prometheus.Enabled = false
	om, err := observability.NewManager(settings, logger)
	if err != nil {
		logger.Warn("Telemetry disabled", "error", err)
		om = nil
	}

	syncer := remote.NewSyncer(backend, st, logger)
	syncer.OnFailure(func(direction string) {
		om.GetMetrics().RecordBusinessMetric(ctx, observability.MetricSyncFailure, false,
			attribute.String("direction", direction))
	})
	return syncer, func() {
		if err := om.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Failed to flush telemetry", "error", err)
		}
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(validateCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(publishCmd)

	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(atsCmd)
}
