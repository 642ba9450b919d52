package server

import (
	"crypto/tls"
	"fmt"
	"net/http"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server) error {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		return nil
	case "server":
		reloader, err := NewCertReloader(s.TLSConfig, s.observability.GetMetrics(), s.Logger)
		if err != nil {
			return fmt.Errorf("failed to set up TLS: %w", err)
		}
		if err := reloader.Start(); err != nil {
			return err
		}
		s.CertReloader = reloader
		httpServer.TLSConfig = s.buildTLSConfig(reloader)
		return nil
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled' or 'server')", s.TLSConfig.Mode)
	}
}

// buildTLSConfig creates the TLS configuration
func (s *Server) buildTLSConfig(reloader *CertReloader) *tls.Config {
	return &tls.Config{
		MinVersion:     tlsVersion(s.TLSConfig.MinVersion),
		GetCertificate: reloader.GetCertificate,
		ClientAuth:     tls.NoClientCert,
	}
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}
