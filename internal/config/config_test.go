package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecoimpact.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, time.Second, cfg.Auth.Latency)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := writeFile(t, `
http:
  addr: ":9090"
  allowed_origins: ["http://localhost:3000"]
storage:
  driver: sqlite
  sqlite_path: /tmp/eco.db
logging:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, defaultReadTimeout, cfg.HTTP.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, defaultFilePath, cfg.Storage.FilePath)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	_, err := Load(writeFile(t, "http:\n  port: 80\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ECOIMPACT_ADDR", "127.0.0.1:7000")
	t.Setenv("ECOIMPACT_ALLOWED_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("ECOIMPACT_STORAGE_DRIVER", "memory")
	t.Setenv("ECOIMPACT_AUTH_LATENCY", "0s")
	t.Setenv("ECOIMPACT_LOG_LEVEL", "debug")

	cfg, err := Load(writeFile(t, "http:\n  addr: \":9090\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr, "env wins over file")
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, time.Duration(0), cfg.Auth.Latency)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "redis"
	cfg.Logging.Format = "xml"
	cfg.Auth.JWTSecret = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "auth.jwt_secret")

	cfg = Default()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.SQLitePath = ""
	assert.Error(t, cfg.Validate())
}
