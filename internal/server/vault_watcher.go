package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"resumeforge/internal/config"
	"resumeforge/internal/errors"
)

// SecretVersionReader reads a KVv2 secret together with its version
type SecretVersionReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// APIKeysCallback receives the API keys whenever their secret changes
type APIKeysCallback func(keys []string)

// VaultWatcher polls the API keys secret in Vault and hands new keys to the
// authenticator when the secret version moves forward.
type VaultWatcher struct {
	mu sync.RWMutex

	client       SecretVersionReader
	secretPath   string
	pollInterval time.Duration
	onKeys       APIKeysCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastError   string
	reloads     int64
}

// NewVaultWatcher creates a new VaultWatcher
func NewVaultWatcher(client SecretVersionReader, secretPath string, pollInterval time.Duration, onKeys APIKeysCallback, logger *errors.Logger) *VaultWatcher {
	if logger == nil {
		logger = errors.Discard()
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &VaultWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onKeys:       onKeys,
		logger:       logger,
	}
}

// Start begins polling Vault for secret changes
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher is already running")
	}
	vw.stopChan = make(chan struct{})
	vw.running = true
	go vw.pollLoop(vw.stopChan)
	vw.logger.Info("Vault watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault watcher stopped")
	return nil
}

func (vw *VaultWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := vw.poll(); err != nil {
				vw.logger.LogError(err, "Failed to check Vault for API key updates")
			}
		case <-stop:
			return
		}
	}
}

// poll reads the secret once and applies it when its version is newer than
// the last one seen.
func (vw *VaultWatcher) poll() (bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)
	if err != nil {
		vw.setError(err)
		return false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		err := fmt.Errorf("secret not found at %s", vw.secretPath)
		vw.setError(err)
		return false, err
	}

	vw.mu.Lock()
	if secret.Version <= vw.lastVersion {
		vw.mu.Unlock()
		return false, nil
	}
	vw.lastVersion = secret.Version
	vw.mu.Unlock()

	keys := parseKeys(secret.Data["keys"])
	if len(keys) == 0 {
		err := fmt.Errorf("secret %s version %d carries no API keys", vw.secretPath, secret.Version)
		vw.setError(err)
		return false, err
	}

	vw.onKeys(keys)

	vw.mu.Lock()
	vw.reloads++
	vw.lastError = ""
	vw.mu.Unlock()

	vw.logger.Info("API keys reloaded from Vault", "version", secret.Version, "count", len(keys))
	return true, nil
}

func (vw *VaultWatcher) setError(err error) {
	vw.mu.Lock()
	vw.lastError = err.Error()
	vw.mu.Unlock()
}

// parseKeys accepts either "k1,k2" or a JSON list of strings
func parseKeys(raw any) []string {
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	case []string:
		parts = v
	}

	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	status := map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
		"reload_count":  vw.reloads,
	}
	if vw.lastError != "" {
		status["last_error"] = vw.lastError
	}
	return status
}
