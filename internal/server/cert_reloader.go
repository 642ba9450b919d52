package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
	"resumeforge/internal/observability"
	"resumeforge/internal/watch"
)

// certCriticalWindow marks a certificate as unhealthy before it expires
const certCriticalWindow = 24 * time.Hour

// CertReloader serves the current server certificate and swaps it when the
// certificate or key file changes. A failed reload keeps the previous pair.
type CertReloader struct {
	mu sync.RWMutex

	cert   *tls.Certificate
	expiry time.Time

	config  config.TLSConfig
	watcher *watch.FileWatcher
	metrics *observability.Metrics
	logger  *errors.Logger

	reloads    int64
	failures   int64
	lastReload time.Time
	lastError  string
}

// NewCertReloader loads the initial certificate from content or files
func NewCertReloader(cfg config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) (*CertReloader, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	cr := &CertReloader{config: cfg, metrics: metrics, logger: logger}
	if err := cr.load(); err != nil {
		return nil, err
	}
	return cr, nil
}

// Start watches the certificate files when auto reload is enabled. Content
// loaded from Vault has no files to watch.
func (cr *CertReloader) Start() error {
	if !cr.config.AutoReload.Enabled || cr.config.CertFile == "" || cr.config.KeyFile == "" {
		return nil
	}

	w, err := watch.New(
		[]string{cr.config.CertFile, cr.config.KeyFile},
		cr.config.AutoReload.DebounceDelay,
		cr.Reload,
		cr.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create certificate watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}
	cr.watcher = w
	cr.logger.Info("Watching TLS certificate files",
		"cert_file", cr.config.CertFile,
		"key_file", cr.config.KeyFile)
	return nil
}

// Stop stops the file watcher
func (cr *CertReloader) Stop() error {
	if cr.watcher == nil {
		return nil
	}
	return cr.watcher.Stop()
}

// Reload reads the certificate pair again
func (cr *CertReloader) Reload() {
	err := cr.load()

	cr.mu.Lock()
	cr.reloads++
	cr.lastReload = time.Now()
	if err != nil {
		cr.failures++
		cr.lastError = err.Error()
	} else {
		cr.lastError = ""
	}
	cr.mu.Unlock()

	cr.metrics.RecordCertReload(context.Background(), err == nil)
	if err != nil {
		cr.logger.LogError(err, "Failed to reload TLS certificates, keeping the previous pair")
		return
	}
	cr.logger.Info("TLS certificates reloaded successfully")
}

func (cr *CertReloader) load() error {
	var (
		cert tls.Certificate
		err  error
	)
	switch {
	case cr.config.CertContent != "" && cr.config.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(cr.config.CertContent), []byte(cr.config.KeyContent))
	case cr.config.CertFile != "" && cr.config.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cr.config.CertFile, cr.config.KeyFile)
	default:
		return errors.NewConfigError(errors.ErrCodeMissingConfig,
			"TLS certificate and key are required (provide either files or content)", nil)
	}
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load TLS certificate pair", err)
	}

	leaf := cert.Leaf
	if leaf == nil && len(cert.Certificate) > 0 {
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to parse TLS certificate", err)
		}
	}

	cr.mu.Lock()
	cr.cert = &cert
	if leaf != nil {
		cr.expiry = leaf.NotAfter
	}
	cr.mu.Unlock()
	return nil
}

// GetCertificate serves the current certificate during TLS handshakes
func (cr *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if cr.cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cr.cert, nil
}

// Status reports expiry and reload counters for the health endpoint
func (cr *CertReloader) Status() map[string]any {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	remaining := time.Until(cr.expiry)
	status := map[string]any{
		"expires_at":           cr.expiry,
		"time_to_expiry_hours": int(remaining.Hours()),
		"healthy":              remaining > certCriticalWindow,
		"reload_count":         cr.reloads,
		"reload_failure_count": cr.failures,
		"watching":             cr.watcher != nil && cr.watcher.IsRunning(),
	}
	if !cr.lastReload.IsZero() {
		status["last_reload_time"] = cr.lastReload
	}
	if cr.lastError != "" {
		status["last_reload_error"] = cr.lastError
	}
	return status
}
