package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigFileDefaults(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "store.json")
	path := writeConfig(t, "store:\n  path: "+storePath+"\n")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, storePath, cfg.Store.Path)
	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, 10*time.Second, cfg.Sync.Timeout)
	assert.True(t, cfg.Sync.CircuitBreaker.Enabled)
	assert.Equal(t, "memory", cfg.Server.Repository.Backend)
	assert.Equal(t, float32(0.1), *cfg.AI.Parse.Temperature, "per-operation default")
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: memory
sync:
  enabled: true
  baseURL: https://api.example.com/
  timeout: 3s
ai:
  model: gemini-2.5-pro
  questions:
    model: gemini-2.0-flash-lite
`)
	t.Setenv("RESUMEFORGE_SYNC_TOKEN", "env-token")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "https://api.example.com", cfg.Sync.BaseURL, "trailing slash trimmed")
	assert.Equal(t, 3*time.Second, cfg.Sync.Timeout)
	assert.Equal(t, "env-token", cfg.Sync.Token)

	assert.Equal(t, "gemini-2.0-flash-lite", cfg.GetOperationConfig(OperationQuestions).Model)
	assert.Equal(t, "gemini-2.5-pro", cfg.GetOperationConfig(OperationATS).Model)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: sqlite\n")
	_, err := LoadConfigFile(path)
	assert.ErrorContains(t, err, "invalid store backend")
}

func validConfig() *Config {
	return &Config{
		App:   AppConfig{DefaultFormat: "json", SupportedFormats: []string{"json", "yaml", "text"}},
		Store: StoreConfig{Backend: "file", Path: "/tmp/store.json"},
		Sync:  SyncConfig{Timeout: time.Second},
		AI:    AIConfig{APIKey: "key", Timeout: time.Second},
		Server: ServerConfig{
			Port:       "8080",
			TLS:        TLSConfig{Mode: "disabled"},
			Repository: RepositoryConfig{Backend: "memory"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "file store without path", mutate: func(c *Config) { c.Store.Path = "" }, errMsg: "store path"},
		{name: "redis store without addr", mutate: func(c *Config) { c.Store.Backend = "redis" }, errMsg: "redis address"},
		{name: "unknown store", mutate: func(c *Config) { c.Store.Backend = "sqlite" }, errMsg: "invalid store backend"},
		{name: "bad default format", mutate: func(c *Config) { c.App.DefaultFormat = "xml" }, errMsg: "invalid default format"},
		{name: "sync without url", mutate: func(c *Config) { c.Sync.Enabled = true }, errMsg: "sync base URL"},
		{name: "sync without timeout", mutate: func(c *Config) { c.Sync.Timeout = 0 }, errMsg: "sync timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestValidateServer(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing ai key", mutate: func(c *Config) { c.AI.APIKey = "" }, errMsg: "AI API key"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, errMsg: "server port"},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Server.Repository.Backend = "postgres" }, errMsg: "postgres DSN"},
		{name: "unknown repository", mutate: func(c *Config) { c.Server.Repository.Backend = "mongo" }, errMsg: "invalid repository backend"},
		{name: "cache without redis", mutate: func(c *Config) { c.Server.Repository.Cache.Enabled = true }, errMsg: "redis address"},
		{name: "bad tls", mutate: func(c *Config) { c.Server.TLS.Mode = "server" }, errMsg: "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.ValidateServer()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestGetOperationConfigFallbacks(t *testing.T) {
	retries := 7
	c := &Config{AI: AIConfig{
		Provider:    "gemini",
		Model:       "global-model",
		APIKey:      "global-key",
		Timeout:     time.Minute,
		MaxRetries:  3,
		Temperature: 0.5,
		Parse:       OperationAIConfig{Model: "parse-model", MaxRetries: &retries},
	}}

	parse := c.GetOperationConfig(OperationParse)
	assert.Equal(t, "parse-model", parse.Model)
	assert.Equal(t, 7, *parse.MaxRetries)
	assert.Equal(t, "global-key", parse.APIKey)
	assert.Equal(t, time.Minute, *parse.Timeout)

	unknown := c.GetOperationConfig("tailor")
	assert.Equal(t, "global-model", unknown.Model)
	assert.Equal(t, float32(0.5), *unknown.Temperature)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b ,"))
	assert.Nil(t, splitAndTrim(""))
}

func TestApplyServerAPIKeyFallbacks(t *testing.T) {
	t.Setenv("RESUMEFORGE_SERVER_APIKEYS", "k1, k2")
	c := &Config{}
	c.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"k1", "k2"}, c.Server.APIKeys)

	c = &Config{Server: ServerConfig{APIKeys: []string{"configured"}}}
	c.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"configured"}, c.Server.APIKeys)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****6789", maskSecret("abcdef0123456789"))
	assert.Equal(t, "****", maskSecret("short"))
	assert.Equal(t, "", maskSecret(""))
}
