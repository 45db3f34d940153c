package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Full(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
version: "1"
store: /tmp/weft-store
model: test-model
gateway:
  endpoint: http://localhost:8080/v1/chat/completions
  timeout: 30s
pipeline:
  analysts: 6
  reviewers: 2
  workers: 4
  barrierTimeout: 90s
documents:
  - corpus/a.txt
  - corpus/b.txt
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/weft-store", cfg.StoreRoot)
	assert.Equal(t, "test-model", cfg.ModelID)
	assert.Equal(t, "http://localhost:8080/v1/chat/completions", cfg.Gateway.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, 6, cfg.Analysts)
	assert.Equal(t, 2, cfg.Reviewers)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 90*time.Second, cfg.BarrierTimeout)
	assert.Equal(t, []string{"corpus/a.txt", "corpus/b.txt"}, cfg.Documents)
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, "model: test-model\n"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultStoreRoot, cfg.StoreRoot)
	assert.Equal(t, config.DefaultAnalysts, cfg.Analysts)
	assert.Equal(t, config.DefaultReviewers, cfg.Reviewers)
	assert.Equal(t, config.DefaultWorkers, cfg.Workers)
	assert.Equal(t, config.DefaultBarrierTimeout, cfg.BarrierTimeout)
	assert.Equal(t, config.DefaultGatewayTimeout, cfg.Gateway.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "missing model", content: "store: /tmp/x\n"},
		{name: "negative width", content: "model: m\npipeline:\n  analysts: -1\n"},
		{name: "bad barrier timeout", content: "model: m\npipeline:\n  barrierTimeout: soon\n"},
		{name: "zero barrier timeout", content: "model: m\npipeline:\n  barrierTimeout: 0s\n"},
		{name: "bad gateway timeout", content: "model: m\ngateway:\n  timeout: never\n"},
		{name: "not yaml", content: "{{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
