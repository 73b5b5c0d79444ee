package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reyoung/mcphost/process"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadMissingUsesDefaults(t *testing.T) {
	t.Setenv(EnvListen, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultRecoveryRetention, cfg.RecoveryRetention)
	assert.Equal(t, DefaultWatchBuffer, cfg.WatchBuffer)
	assert.Zero(t, cfg.WriteTimeout)
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvListen, "")
	path := writeConfig(t, `
listen: 127.0.0.1:9100
log_level: debug
log_format: json
shell: /bin/bash
write_timeout: 2s
replace_on_spawn: true
recovery_retention: 24h
servers:
  - id: files
    command: npx
    args: ["-y", "@modelcontextprotocol/server-filesystem", "/tmp"]
    env:
      NODE_ENV: production
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.Listen)
	assert.Equal(t, "/bin/bash", cfg.Shell)
	assert.Equal(t, 2*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.RecoveryRetention)
	assert.True(t, cfg.ReplaceOnSpawn)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, process.ServerConfig{
		ID:      "files",
		Command: "npx",
		Args:    []string{"-y", "@modelcontextprotocol/server-filesystem", "/tmp"},
		Env:     map[string]string{"NODE_ENV": "production"},
	}, cfg.Servers[0])

	log := cfg.Logger()
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestEnvOverridesListen(t *testing.T) {
	t.Setenv(EnvListen, "0.0.0.0:7000")
	cfg, err := Load(writeConfig(t, "listen: 127.0.0.1:1\n"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.Listen)
}

func TestValidate(t *testing.T) {
	t.Setenv(EnvListen, "")
	_, err := Load(writeConfig(t, `
log_level: loud
servers:
  - id: a
    command: cat
  - id: a
    command: cat
  - id: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
	assert.Contains(t, err.Error(), "duplicate server id")
	assert.ErrorIs(t, err, process.ErrInvalidConfig)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "listen: [unterminated\n"))
	assert.Error(t, err)
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	assert.Equal(t, "/cfg/mcphost/config.yaml", DefaultPath())
}
