package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ".diary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DIARY_CONFIG_PATH", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, ".diary.db"), cfg.Path)
	assert.Equal(t, time.Minute, cfg.Reminders.Interval)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.True(t, cfg.Notifications.Enabled)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
backend: postgres
database:
  dsn: postgres://diary@localhost/diary
reminders:
  interval: 30s
receipts:
  bucket: receipts
`)
	t.Setenv("DIARY_CONFIG_PATH", dir)
	t.Setenv("DIARY_GEMINI_MODEL", "gemini-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgres://diary@localhost/diary", cfg.DatabaseDSN())
	assert.Equal(t, 30*time.Second, cfg.Reminders.Interval)
	assert.Equal(t, "receipts", cfg.Receipts.Bucket)
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
}

func TestLoadFileRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "backend: sqlite\n")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestPostgresRequiresDSN(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "backend: postgres\n")
	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "database.dsn")
}
