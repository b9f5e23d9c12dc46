package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err, "default config should be written")

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.Backend.BaseURL)
	assert.Equal(t, filepath.Join(dir, "data", "uploads"), cfg.GetUploadDir())
	assert.Equal(t, []string{".pdf", ".docx", ".doc"}, cfg.AllowedExtensions())
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadSize())
	assert.Equal(t, "paperiq_session", cfg.Session.CookieName)
	assert.Zero(t, cfg.BackendTimeout())
}

func TestLoadConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	custom := DefaultConfig()
	custom.Server.Port = 9999
	custom.Backend.TimeoutSeconds = 15
	custom.Upload.AllowedFileTypes = "PDF, .Docx"
	custom.Session.TimeoutMinutes = 5
	require.NoError(t, custom.Save(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.Equal(t, []string{".pdf", ".docx"}, cfg.AllowedExtensions())
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 10*time.Minute, cfg.CleanupInterval())
}

func TestLoadConfig_InvalidXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, os.WriteFile(path, []byte("<PaperIQDashboard><Server>"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "elsewhere")
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", dataDir)
	t.Setenv("PAPERIQ_API_URL", "http://backend:8000/api")
	t.Setenv("PAPERIQ_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(filepath.Join(dir, "config.xml"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.GetServerAddr())
	assert.Equal(t, "http://backend:8000/api", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Advanced.LogLevel)
	assert.Equal(t, dataDir, cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dataDir, "uploads"), cfg.GetUploadDir())
	assert.Equal(t, filepath.Join(dataDir, "logs", "dashboard.log"), cfg.GetLogFile())
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.Storage.DataDirectory, cfg.Storage.UploadsDirectory, cfg.Storage.LogDirectory} {
		st, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	}
}
