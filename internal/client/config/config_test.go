package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", cfg.ServerEndpointAddr)
	assert.Equal(t, ":9090", cfg.GatewayAddr)
	assert.Equal(t, "spese-cache-v2", cfg.CacheVersion)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestParseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cli", "-a", "https://api.example.com", "-g", ":7070", "-i", "10"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "https://api.example.com", cfg.ServerEndpointAddr)
	assert.Equal(t, ":7070", cfg.GatewayAddr)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
}

func TestParseJson_Overrides(t *testing.T) {
	jc := JsonConfig{
		ServerEndpointAddr: "https://json.example.com",
		CacheVersion:       "spese-cache-v3",
	}
	data, err := json.Marshal(jc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cli", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://json.example.com", cfg.ServerEndpointAddr)
	assert.Equal(t, "spese-cache-v3", cfg.CacheVersion)
	// untouched fields keep their defaults
	assert.Equal(t, ":9090", cfg.GatewayAddr)
}
