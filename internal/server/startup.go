package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"resumeforge/internal/config"
)

const shutdownTimeout = 30 * time.Second

// Start runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully together with every background component.
func (s *Server) Start(ctx context.Context) error {
	httpServer := s.newHTTPServer()

	if err := s.startVaultWatcher(); err != nil {
		s.Logger.LogError(err, "Vault watcher disabled")
	}

	if err := s.configureTLS(httpServer); err != nil {
		s.stopBackground()
		return err
	}

	s.displayServerInfo()

	return s.serveUntilDone(ctx, httpServer)
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:         net.JoinHostPort(s.Host, s.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startVaultWatcher polls Vault for API key rotations when configured
func (s *Server) startVaultWatcher() error {
	vaultCfg := s.AppConfig.Vault
	if !vaultCfg.Enabled || !vaultCfg.Watch.Enabled || vaultCfg.Secrets.APIKeys == "" {
		return nil
	}

	client, err := config.NewVaultClient(vaultCfg, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}

	s.VaultWatcher = NewVaultWatcher(client, vaultCfg.Secrets.APIKeys, vaultCfg.Watch.PollInterval,
		s.Auth.SetAPIKeys, s.Logger)
	return s.VaultWatcher.Start()
}

// serveUntilDone starts the listener and blocks until ctx ends or the
// listener fails.
func (s *Server) serveUntilDone(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// certificates come from GetCertificate
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		s.stopBackground()
		if ok {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(server)
	}
}

// performGracefulShutdown drains in-flight requests and releases resources
func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.Logger.Info("Shutting down HTTP server...")
	err := server.Shutdown(shutdownCtx)
	if err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		err = server.Close()
	}

	s.stopBackground()
	if shutdownErr := s.observability.Shutdown(shutdownCtx); shutdownErr != nil {
		s.Logger.LogError(shutdownErr, "Failed to shutdown observability")
	}

	if err == nil {
		s.Logger.Info("Server shutdown completed successfully")
	}
	return err
}

// stopBackground stops watchers and closes the stores
func (s *Server) stopBackground() {
	if s.CertReloader != nil {
		if err := s.CertReloader.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate reloader")
		}
	}
	if s.VaultWatcher != nil {
		if err := s.VaultWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop vault watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
		s.Logger.Info("Rate limiter cleaned up")
	}
	if s.Repository != nil {
		s.Repository.Close()
	}
	if s.AI != nil {
		if err := s.AI.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close AI providers")
		}
	}
}
