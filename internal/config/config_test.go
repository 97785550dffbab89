package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SPLITGROUP_CONFIG", "PORT", "DB_PATH", "JWT_SECRET", "TOKEN_TTL",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "splitgroup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPLITGROUP_CONFIG", writeConfig(t, `
port: 9090
db_path: /var/lib/splitgroup/db.sqlite
token_ttl: 2h
redis:
  addr: localhost:6379
  db: 2
cache_ttl: 30s
`))
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_PASSWORD", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port, "env overrides file")
	assert.Equal(t, "/var/lib/splitgroup/db.sqlite", cfg.DBPath)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, Redis{Addr: "localhost:6379", Password: "hunter2", DB: 2}, cfg.Redis)
	assert.Equal(t, "info", cfg.LogLevel, "unset values keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "eighty"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"bad duration", map[string]string{"TOKEN_TTL": "forever"}},
		{"non-positive cache ttl", map[string]string{"CACHE_TTL": "0s"}},
		{"bad redis db", map[string]string{"REDIS_DB": "x"}},
		{"missing file", map[string]string{"SPLITGROUP_CONFIG": "/nonexistent/splitgroup.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPLITGROUP_CONFIG", writeConfig(t, "port: [1, 2"))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse config file")
}
