package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Monitor.PollDuration())
	assert.Equal(t, 3*time.Second, cfg.Monitor.NarrativeDuration())
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.RetentionDuration())
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Contains(t, cfg.WebSocket.ThrottleIntervals, "demo_updated")
	assert.False(t, cfg.IsProduction())
}

func TestDurationFallbacks(t *testing.T) {
	// Empty and malformed duration strings fall back to the defaults
	assert.Equal(t, 10*time.Second, BackendConfig{}.Timeout())
	assert.Equal(t, 10*time.Second, BackendConfig{RequestTimeout: "soon"}.Timeout())
	assert.Equal(t, 2*time.Second, MonitorConfig{}.PollDuration())
	assert.Equal(t, 3*time.Second, MonitorConfig{}.NarrativeDuration())
	assert.Equal(t, 24*time.Hour, CleanupConfig{Retention: "never"}.RetentionDuration())

	assert.Equal(t, 30*time.Second, BackendConfig{RequestTimeout: "30s"}.Timeout())
	assert.Equal(t, 250*time.Millisecond, MonitorConfig{PollInterval: "250ms"}.PollDuration())
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orchids-monitor.toml")
	content := `
environment = "production"

[server]
port = 9090

[backend]
base_url = "https://api.example.com"
request_timeout = "5s"

[monitor]
poll_interval = "1s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, time.Second, cfg.Monitor.PollDuration())
	assert.True(t, cfg.IsProduction())
	// Untouched sections keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Monitor.NarrativeDuration())
}

// The deployment file shipped with the service must always load cleanly
func TestLoadShippedDeploymentConfig(t *testing.T) {
	cfg, err := LoadFromFiles(filepath.Join("..", "..", "deployments", "orchids-monitor.toml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 2*time.Second, cfg.Monitor.PollDuration())
	assert.Equal(t, 3*time.Second, cfg.Monitor.NarrativeDuration())
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.RetentionDuration())
	assert.Contains(t, cfg.WebSocket.ThrottleIntervals, "demo_updated")
}

func TestLoadFromFilesLaterOverridesEarlier(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nport = 9090\n"), 0644))
	require.NoError(t, os.WriteFile(override, []byte("[server]\nport = 9999\n"), 0644))

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/orchids-monitor.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ORCHIDS_SERVER_PORT", "7070")
	t.Setenv("ORCHIDS_BACKEND_URL", "http://backend:8000/api")
	t.Setenv("ORCHIDS_POLL_INTERVAL", "500ms")
	t.Setenv("ORCHIDS_NARRATIVE_INTERVAL", "not-a-duration")
	t.Setenv("ORCHIDS_LOG_OUTPUT", "stdout, file")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://backend:8000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Monitor.PollDuration())
	assert.Equal(t, 3*time.Second, cfg.Monitor.NarrativeDuration(), "malformed override is ignored")
	assert.Equal(t, []string{"stdout", "file"}, cfg.Logging.Output)
}

func TestApplyFlagOverrides(t *testing.T) {
	cfg := NewDefaultConfig()

	ApplyFlagOverrides(cfg, 0, "")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)

	ApplyFlagOverrides(cfg, 3000, "0.0.0.0")
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}
