package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{name: "disabled mode", tls: TLSConfig{Mode: "disabled"}},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem", KeyFile: "/path/to/key.pem"},
		},
		{
			name: "server mode with content",
			tls:  TLSConfig{Mode: "server", CertContent: "CERT", KeyContent: "KEY"},
		},
		{
			name:     "server mode missing key",
			tls:      TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem"},
			errorMsg: "certificate and key are required",
		},
		{
			name:     "duplicate cert source",
			tls:      TLSConfig{Mode: "server", CertFile: "/c.pem", CertContent: "CERT", KeyFile: "/k.pem"},
			errorMsg: "both certFile and certContent",
		},
		{
			name:     "duplicate key source",
			tls:      TLSConfig{Mode: "server", CertFile: "/c.pem", KeyFile: "/k.pem", KeyContent: "KEY"},
			errorMsg: "both keyFile and keyContent",
		},
		{name: "mutual mode unsupported", tls: TLSConfig{Mode: "mutual"}, errorMsg: "invalid TLS mode: mutual"},
		{name: "invalid mode", tls: TLSConfig{Mode: "invalid"}, errorMsg: "invalid TLS mode: invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSMode(tt.tls)
			if tt.errorMsg != "" {
				assert.ErrorContains(t, err, tt.errorMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateTLSVersion(t *testing.T) {
	for _, v := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, validateTLSVersion(TLSConfig{MinVersion: v}), v)
	}
	assert.ErrorContains(t, validateTLSVersion(TLSConfig{MinVersion: "1.1"}), "invalid TLS minVersion")
}

func TestValidateTLSConfig(t *testing.T) {
	c := &Config{Server: ServerConfig{TLS: TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k", MinVersion: "1.0"}}}
	assert.Error(t, c.ValidateTLSConfig())

	c.Server.TLS.MinVersion = "1.3"
	assert.NoError(t, c.ValidateTLSConfig())
}
