package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultWSURL, cfg.WSURL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	data := []byte("version: v1\napi_url: https://tasks.example.com/api/v1\nws_url: wss://tasks.example.com/ws\n")
	require.NoError(t, os.WriteFile(path, data, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://tasks.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, "wss://tasks.example.com/ws", cfg.WSURL)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	data := []byte("api_url: http://file.example.com\nws_url: ws://file.example.com/ws\n")
	require.NoError(t, os.WriteFile(path, data, 0600))

	t.Setenv(EnvAPIURL, "http://env.example.com/api/v1/")
	cfg, err := Load(path)
	require.NoError(t, err)
	// env wins, trailing slash trimmed
	assert.Equal(t, "http://env.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, "ws://file.example.com/ws", cfg.WSURL)
}

func TestValidateRejectsBadSchemes(t *testing.T) {
	cfg := &Config{APIURL: "ftp://example.com", WSURL: DefaultWSURL}
	assert.Error(t, cfg.Validate())

	cfg = &Config{APIURL: DefaultAPIURL, WSURL: "http://example.com"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{APIURL: DefaultAPIURL, WSURL: DefaultWSURL}
	assert.NoError(t, cfg.Validate())
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultConfigFile)
	cfg := &Config{Version: "v1", APIURL: "http://localhost:9090/api/v1", WSURL: "ws://localhost:9090/ws"}
	require.NoError(t, cfg.Write(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.APIURL, loaded.APIURL)
	assert.Equal(t, cfg.WSURL, loaded.WSURL)
}

func TestTokenFileOverride(t *testing.T) {
	cfg := &Config{APIURL: DefaultAPIURL, WSURL: DefaultWSURL, TokenPath: "/tmp/taskmate-token"}
	path, err := cfg.TokenFile()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/taskmate-token", path)
}
