package core_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/embedder/internal/worker/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupMonitor(t *testing.T) (*core.Monitor, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return core.NewMonitor(client, zaptest.NewLogger(t)), mr
}

func TestReporterPublishesStatus(t *testing.T) {
	t.Parallel()
	monitor, mr := setupMonitor(t)
	ctx := t.Context()

	reporter := core.NewStatusReporter(monitor, "purge", zaptest.NewLogger(t))
	reporter.UpdateStatus("Deleting posts", 50)
	reporter.SetHealthy(false)
	reporter.Report(ctx)

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)

	status := statuses[0]
	assert.Equal(t, reporter.GetWorkerID(), status.WorkerID)
	assert.Equal(t, "purge", status.WorkerType)
	assert.Equal(t, "Deleting posts", status.CurrentTask)
	assert.Equal(t, 50, status.Progress)
	assert.False(t, status.IsHealthy)
	assert.False(t, status.IsStale(time.Now()))
	assert.True(t, status.IsStale(time.Now().Add(2*core.StaleThreshold)))

	assert.Equal(t, core.HeartbeatTTL, mr.TTL("worker:purge:"+reporter.GetWorkerID()))

	mr.FastForward(core.HeartbeatTTL + time.Second)

	statuses, err = monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, statuses)
}

func TestGetAllStatusesSkipsBrokenEntries(t *testing.T) {
	t.Parallel()
	monitor, mr := setupMonitor(t)
	ctx := t.Context()

	require.NoError(t, mr.Set("worker:purge:broken", "{"))

	for _, workerType := range []string{"purge", "bot"} {
		reporter := core.NewStatusReporter(monitor, workerType, zaptest.NewLogger(t))
		reporter.Start(ctx)
		reporter.Stop()
		reporter.Stop()
	}

	statuses, err := monitor.GetAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "bot", statuses[0].WorkerType)
	assert.Equal(t, "purge", statuses[1].WorkerType)
}
