package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"resumeforge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockVaultClient serves one secret whose contents the test can swap
type mockVaultClient struct {
	mu     sync.Mutex
	secret *config.VaultSecret
	err    error
}

func (m *mockVaultClient) GetSecretV2(path string) (*config.VaultSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secret, m.err
}

func (m *mockVaultClient) set(secret *config.VaultSecret, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret, m.err = secret, err
}

func TestVaultWatcherPoll(t *testing.T) {
	client := &mockVaultClient{secret: &config.VaultSecret{
		Data:    map[string]any{"keys": "alpha, beta"},
		Version: 2,
	}}
	var got [][]string
	vw := NewVaultWatcher(client, "secret/data/api", time.Minute, func(keys []string) {
		got = append(got, keys)
	}, nil)

	changed, err := vw.poll()
	require.NoError(t, err)
	assert.True(t, changed, "first read moves from version 0")

	changed, err = vw.poll()
	require.NoError(t, err)
	assert.False(t, changed, "same version is ignored")

	client.set(&config.VaultSecret{Data: map[string]any{"keys": []any{"gamma"}}, Version: 3}, nil)
	changed, err = vw.poll()
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, [][]string{{"alpha", "beta"}, {"gamma"}}, got)
	assert.Equal(t, int64(2), vw.Status()["reload_count"])
	assert.Equal(t, int64(3), vw.Status()["last_version"])
}

func TestVaultWatcherPollErrors(t *testing.T) {
	tests := []struct {
		name   string
		secret *config.VaultSecret
		err    error
	}{
		{name: "read failure", err: fmt.Errorf("connection refused")},
		{name: "missing secret"},
		{name: "empty keys", secret: &config.VaultSecret{Data: map[string]any{"keys": " , "}, Version: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			vw := NewVaultWatcher(&mockVaultClient{secret: tt.secret, err: tt.err}, "p", time.Minute,
				func([]string) { called = true }, nil)

			changed, err := vw.poll()
			require.Error(t, err)
			assert.False(t, changed)
			assert.False(t, called, "callback only runs for usable keys")
			assert.Contains(t, vw.Status(), "last_error")
		})
	}
}

func TestVaultWatcherStartStop(t *testing.T) {
	client := &mockVaultClient{secret: &config.VaultSecret{Data: map[string]any{"keys": "k"}, Version: 1}}
	received := make(chan []string, 1)
	vw := NewVaultWatcher(client, "p", 10*time.Millisecond, func(keys []string) {
		select {
		case received <- keys:
		default:
		}
	}, nil)

	require.NoError(t, vw.Start())
	assert.Error(t, vw.Start(), "second start is rejected")

	select {
	case keys := <-received:
		assert.Equal(t, []string{"k"}, keys)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never delivered keys")
	}

	require.NoError(t, vw.Stop())
	require.NoError(t, vw.Stop())
	assert.Equal(t, false, vw.Status()["running"])
}
