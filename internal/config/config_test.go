package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/opsched/internal/logging"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDB, EnvLogLevel, EnvLogFormat, EnvConfigFile, EnvPropagation, EnvOverflow, EnvMaxAttempts} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opsched.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, scheduler.DefaultPolicy(), cfg.Policy)
	assert.Equal(t, 3, cfg.ResolveMaxAttempts)
	assert.Equal(t, logging.FormatConsole, cfg.Log.Format)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDB, "/tmp/ops.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvPropagation, "full")
	t.Setenv(EnvOverflow, "skip")
	t.Setenv(EnvMaxAttempts, "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ops.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, logging.FormatJSON, cfg.Log.Format)
	assert.Equal(t, scheduler.PropagateFull, cfg.Policy.Propagation)
	assert.Equal(t, scheduler.OverflowSkip, cfg.Policy.MonthlyOverflow)
	assert.Equal(t, 5, cfg.ResolveMaxAttempts)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
db: /var/lib/opsched/ops.db
log_level: info
monthly_overflow: skip
propagation: full
resolve_max_attempts: 7
`)
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvPropagation, "until_fixed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/opsched/ops.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, scheduler.OverflowSkip, cfg.Policy.MonthlyOverflow)
	assert.Equal(t, scheduler.PropagateUntilFixed, cfg.Policy.Propagation, "env wins over the file")
	assert.Equal(t, 7, cfg.ResolveMaxAttempts)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown propagation", map[string]string{EnvPropagation: "sideways"}},
		{"unknown overflow", map[string]string{EnvOverflow: "wrap"}},
		{"zero attempts", map[string]string{EnvMaxAttempts: "0"}},
		{"non-numeric attempts", map[string]string{EnvMaxAttempts: "many"}},
		{"unknown log format", map[string]string{EnvLogFormat: "xml"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigFile, writeConfig(t, "propagation: [full\n"))
	_, err := Load()
	assert.ErrorContains(t, err, "parsing config file")
}
