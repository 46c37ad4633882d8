package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JURISCOPE_CONFIG", "")
	t.Setenv("JURISCOPE_BATCH_DELAY_SECONDS", "")
	cfg := Load()
	require.Equal(t, 100, cfg.MinContentLength)
	require.Equal(t, 15, cfg.FetchTimeoutSecs)
	require.Equal(t, "juriscope", cfg.TemporalTaskQueue)
	require.False(t, cfg.AllowReadyWithoutDraft)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "juriscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batchDelaySeconds: 7\nstoreDriver: memory\nlogLevel: debug\n"), 0o644))
	t.Setenv("JURISCOPE_CONFIG", path)
	t.Setenv("JURISCOPE_LOG_LEVEL", "warn")

	cfg := Load()
	require.Equal(t, 7, cfg.BatchDelaySecs)
	require.Equal(t, "memory", cfg.StoreDriver)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestGetenvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("JURISCOPE_TEST_INT", "abc")
	require.Equal(t, 3, getenvInt("JURISCOPE_TEST_INT", 3))
}
