package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"resumeforge/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/data/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDecodeKVv2(t *testing.T) {
	tests := []struct {
		name        string
		secret      *api.Secret
		expectError string
		wantVersion int64
	}{
		{
			name: "valid secret",
			secret: &api.Secret{Data: map[string]any{
				"data":     map[string]any{"api_key": "abc"},
				"metadata": map[string]any{"version": float64(3)},
			}},
			wantVersion: 3,
		},
		{name: "missing secret", secret: nil, expectError: "secret not found"},
		{
			name:        "kv v1 shape",
			secret:      &api.Secret{Data: map[string]any{"api_key": "abc"}},
			expectError: "missing 'data' field",
		},
		{
			name: "missing metadata",
			secret: &api.Secret{Data: map[string]any{
				"data": map[string]any{"api_key": "abc"},
			}},
			expectError: "missing 'metadata' field",
		},
		{
			name: "missing version",
			secret: &api.Secret{Data: map[string]any{
				"data":     map[string]any{},
				"metadata": map[string]any{},
			}},
			expectError: "missing 'version' field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeKVv2(tt.secret, "secret/data/test")
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, got.Version)
			assert.Equal(t, "abc", got.Data["api_key"])
		})
	}
}

func TestStringField(t *testing.T) {
	secret := &VaultSecret{Data: map[string]any{"token": "t0k3n", "count": 3}}

	v, err := stringField(secret, "p", "token")
	require.NoError(t, err)
	assert.Equal(t, "t0k3n", v)

	_, err = stringField(secret, "p", "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = stringField(secret, "p", "count")
	assert.ErrorContains(t, err, "not a string")
}

func TestResolveVaultToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token\n"), 0600))

	tests := []struct {
		name        string
		config      VaultConfig
		expected    string
		expectError bool
	}{
		{name: "inline token wins", config: VaultConfig{Token: "inline", TokenFile: tokenFile}, expected: "inline"},
		{name: "token file", config: VaultConfig{TokenFile: tokenFile}, expected: "file-token"},
		{name: "missing file", config: VaultConfig{TokenFile: tokenFile + ".missing"}, expectError: true},
		{name: "no token", config: VaultConfig{}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := resolveVaultToken(tt.config)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, token)
		})
	}
}

func TestApplyGeminiKeyToConfig(t *testing.T) {
	config := &Config{AI: AIConfig{Questions: OperationAIConfig{APIKey: "questions-only"}}}

	applyGeminiKeyToConfig(config, "vault-key")

	assert.Equal(t, "vault-key", config.AI.APIKey)
	assert.Equal(t, "vault-key", config.AI.Parse.APIKey)
	assert.Equal(t, "questions-only", config.AI.Questions.APIKey)
	assert.Equal(t, "vault-key", config.AI.ATS.APIKey)
}

type fakeSecrets struct {
	strings map[string]string
	slices  map[string][]string
}

func (f fakeSecrets) GetStringSecret(path, key string) (string, error) {
	v, ok := f.strings[path+"#"+key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	return v, nil
}

func (f fakeSecrets) GetStringSliceSecret(path, key string) ([]string, error) {
	v, ok := f.slices[path+"#"+key]
	if !ok {
		return nil, fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	return v, nil
}

func TestApplySecrets(t *testing.T) {
	config := &Config{
		Vault: VaultConfig{Secrets: VaultSecrets{
			APIKeys:   "secret/data/api",
			GeminiKey: "secret/data/gemini",
			SyncToken: "secret/data/sync",
			JWTSecret: "secret/data/jwt",
		}},
		Server: ServerConfig{APIKeys: []string{"from-config"}},
	}
	client := fakeSecrets{
		strings: map[string]string{
			"secret/data/gemini#api_key": "gemini-key-123456",
			"secret/data/sync#token":     "sync-token",
			"secret/data/jwt#secret":     "",
		},
		slices: map[string][]string{"secret/data/api#keys": {"k1", "k2"}},
	}

	require.NoError(t, applySecrets(client, config, errors.Discard()))

	assert.Equal(t, []string{"k1", "k2"}, config.Server.APIKeys)
	assert.Equal(t, "gemini-key-123456", config.AI.APIKey)
	assert.Equal(t, "sync-token", config.Sync.Token)
	assert.Empty(t, config.Server.JWTSecret, "empty vault value leaves the setting alone")
}

func TestApplySecretsMissingKey(t *testing.T) {
	config := &Config{Vault: VaultConfig{Secrets: VaultSecrets{SyncToken: "secret/data/sync"}}}
	err := applySecrets(fakeSecrets{}, config, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync token")
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{Vault: VaultConfig{Enabled: false}, AI: AIConfig{APIKey: "unchanged"}}
	require.NoError(t, ApplyVaultSecrets(config, nil))
	assert.Equal(t, "unchanged", config.AI.APIKey)
}

func TestNewVaultClientDisabled(t *testing.T) {
	client, err := NewVaultClient(VaultConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = client.GetSecretV2("secret/data/x")
	assert.ErrorContains(t, err, "not initialized")
}
