package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "gitlab.com/codearena.net/internal/config"
)

func TestServicesConfig_DefaultsAndCustom(t *testing.T) {
	t.Setenv("PROBLEM_SERVICE_URL", "")
	t.Setenv("SUBMISSION_SERVICE_URL", "")
	t.Setenv("REQUEST_TIMEOUT_SEC", "")

	cfg := NewServicesConfig()
	assert.Equal(t, "http://localhost:3000/api", cfg.ProblemServiceURL)
	assert.Equal(t, "http://localhost:3001/api", cfg.SubmissionServiceURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)

	t.Setenv("PROBLEM_SERVICE_URL", "https://problems.example/api")
	t.Setenv("SUBMISSION_SERVICE_URL", "https://submissions.example/api")
	t.Setenv("REQUEST_TIMEOUT_SEC", "5")

	cfg = NewServicesConfig()
	assert.Equal(t, "https://problems.example/api", cfg.ProblemServiceURL)
	assert.Equal(t, "https://submissions.example/api", cfg.SubmissionServiceURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestRealtimeConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REALTIME_RECONNECT_MIN_MS", "abc")
	t.Setenv("REALTIME_RECONNECT_MAX_MS", "-3")
	t.Setenv("REALTIME_RECONNECT_ATTEMPTS", "4")

	cfg := NewRealtimeConfig()
	assert.Equal(t, time.Second, cfg.ReconnectMin)
	assert.Equal(t, 5*time.Second, cfg.ReconnectMax)
	assert.Equal(t, 4, cfg.ReconnectAttempts)
}

func TestAppConfig_Validate(t *testing.T) {
	t.Setenv("PROBLEM_SERVICE_URL", "")
	t.Setenv("SUBMISSION_SERVICE_URL", "")
	t.Setenv("REALTIME_URL", "")
	require.NoError(t, NewSystemConfig().Validate())

	t.Setenv("REALTIME_URL", "not a url")
	require.Error(t, NewSystemConfig().Validate())

	t.Setenv("REALTIME_URL", "")
	t.Setenv("REALTIME_RECONNECT_MIN_MS", "9000")
	t.Setenv("REALTIME_RECONNECT_MAX_MS", "1000")
	require.Error(t, NewSystemConfig().Validate())
}

func TestOptionalStoresDisabledByDefault(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STATUS_API_ADDR", "")

	cfg := NewSystemConfig()
	assert.Empty(t, cfg.RedisConfig.Url)
	assert.Empty(t, cfg.PostgresConfig.Url)
	assert.Equal(t, "public", cfg.PostgresConfig.Schema)
	assert.Empty(t, cfg.StatusAPI.Addr)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// missing file is fine
	require.NoError(t, LoadEnv("staging"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.env"), []byte("CODEARENA_TEST_KEY=from-file\n"), 0o600))
	t.Setenv("CODEARENA_TEST_KEY", "")
	os.Unsetenv("CODEARENA_TEST_KEY")
	require.NoError(t, LoadEnv("staging"))
	assert.Equal(t, "from-file", os.Getenv("CODEARENA_TEST_KEY"))
}

func TestSessionConfig_EnvOverride(t *testing.T) {
	t.Setenv("SESSION_FILE", "/tmp/codearena-session")
	assert.Equal(t, "/tmp/codearena-session", NewSessionConfig().File)
}

func TestBackgroundConfig(t *testing.T) {
	t.Setenv("CONNECTION_POLL_SEC", "")
	t.Setenv("HISTORY_SYNC_SEC", "")
	t.Setenv("HISTORY_SYNC_WORKERS", "0")

	cfg := NewBackgroundConfig()
	assert.Equal(t, 10*time.Second, cfg.ConnectionPollInterval)
	assert.Zero(t, cfg.HistorySyncInterval)
	assert.Equal(t, 2, cfg.SyncWorkers)

	t.Setenv("HISTORY_SYNC_SEC", "60")
	t.Setenv("HISTORY_SYNC_WORKERS", "4")
	cfg = NewBackgroundConfig()
	assert.Equal(t, time.Minute, cfg.HistorySyncInterval)
	assert.Equal(t, 4, cfg.SyncWorkers)
}
