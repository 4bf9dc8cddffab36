package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/robalyx/embedder/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesSessionLogs(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	manager := telemetry.NewManager(telemetry.ServiceBot, logDir, &config.Debug{
		LogLevel:      "debug",
		MaxLogsToKeep: 3,
		MaxLogLines:   100,
	})

	mainLogger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	mainLogger.Info("hello")
	dbLogger.Info("query")
	manager.GetWorkerLogger("purge_worker").Info("purged")

	sessions, err := filepath.Glob(filepath.Join(logDir, "*"))
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	for _, name := range []string{"main.log", "database.log", "purge_worker.log"} {
		_, err := os.Stat(filepath.Join(sessions[0], name))
		assert.NoError(t, err, name)
	}

	assert.NotEmpty(t, manager.GetInstanceID())
}

func TestManagerRotatesOldSessions(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	for i, name := range []string{"old-1", "old-2", "old-3"} {
		dir := filepath.Join(logDir, name)
		require.NoError(t, os.MkdirAll(dir, os.ModePerm))

		modTime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(dir, modTime, modTime))
	}

	manager := telemetry.NewManager(telemetry.ServiceWorker, logDir, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 2,
	})

	_, _, err := manager.GetLoggers()
	require.NoError(t, err)

	sessions, err := filepath.Glob(filepath.Join(logDir, "*"))
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	_, err = os.Stat(filepath.Join(logDir, "old-3"))
	assert.NoError(t, err)
}

func TestManagerRejectsInvalidLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager(telemetry.ServiceCLI, t.TempDir(), &config.Debug{LogLevel: "loud"})

	_, _, err := manager.GetLoggers()
	assert.Error(t, err)
}
