package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbean/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Session.AutoCommit)
	assert.False(t, cfg.Session.EnforceIdentity)
	assert.Equal(t, logging.WarnLevel, cfg.LogLevel())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqlbean.yaml")
	content := `
database:
  path: /tmp/app.db
  pragmas: ["journal_mode(WAL)"]
session:
  auto_commit: false
  enforce_identity: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver, "未配置的字段保留默认值")
	assert.Equal(t, "/tmp/app.db", cfg.Database.Path)
	assert.Equal(t, 5000, cfg.Database.BusyTimeoutMS)
	assert.Equal(t, []string{"journal_mode(WAL)"}, cfg.Database.Pragmas)
	assert.False(t, cfg.Session.AutoCommit)
	assert.True(t, cfg.Session.EnforceIdentity)
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "未知字段", yaml: "database:\n  dsn: x\n"},
		{name: "非法级别", yaml: "log:\n  level: loud\n"},
		{name: "空驱动", yaml: "database:\n  driver: \"\"\n"},
		{name: "负超时", yaml: "database:\n  busy_timeout_ms: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
