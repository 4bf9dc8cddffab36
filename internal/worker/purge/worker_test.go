package purge_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/robalyx/embedder/internal/worker/core"
	"github.com/robalyx/embedder/internal/worker/purge"
	"github.com/robalyx/embedder/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errDatabase = errors.New("database down")

// fakePurger holds posts as creation times.
type fakePurger struct {
	mu      sync.Mutex
	posts   []time.Time
	calls   []int
	cutoffs []time.Time
	err     error
}

func (p *fakePurger) PurgePosts(_ context.Context, cutoff time.Time, limit int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, limit)
	p.cutoffs = append(p.cutoffs, cutoff)
	if p.err != nil {
		return 0, p.err
	}

	kept := p.posts[:0]
	deleted := 0
	for _, created := range p.posts {
		if deleted < limit && created.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, created)
	}
	p.posts = kept

	return deleted, nil
}

func newReporter(t *testing.T) *core.StatusReporter {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	logger := zaptest.NewLogger(t)
	return core.NewStatusReporter(core.NewMonitor(client, logger), "purge", logger)
}

func TestRunOnceDeletesInBatches(t *testing.T) {
	t.Parallel()

	now := time.Now()
	purger := &fakePurger{}
	for range 7 {
		purger.posts = append(purger.posts, now.Add(-48*time.Hour))
	}
	purger.posts = append(purger.posts, now.Add(-time.Hour), now)

	worker, err := purge.New(purger, newReporter(t), &config.Purge{
		OlderThan: "1d",
		BatchSize: 3,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	deleted, err := worker.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 7, deleted)
	assert.Len(t, purger.posts, 2)
	assert.Equal(t, []int{3, 3, 3}, purger.calls)

	// Every batch uses the cutoff computed at the start of the run
	require.Len(t, purger.cutoffs, 3)
	assert.Equal(t, purger.cutoffs[0], purger.cutoffs[2])
	assert.WithinDuration(t, now.Add(-24*time.Hour), purger.cutoffs[0], time.Minute)
}

func TestRunOnceReportsFailure(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{err: errDatabase}
	worker, err := purge.New(purger, newReporter(t), &config.Purge{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = worker.RunOnce(t.Context())
	require.ErrorIs(t, err, errDatabase)
	assert.Equal(t, []int{purge.DefaultBatchSize}, purger.calls)
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	purger := &fakePurger{}
	for range 10 {
		purger.posts = append(purger.posts, time.Now().Add(-time.Hour))
	}

	worker, err := purge.New(purger, newReporter(t), &config.Purge{
		OlderThan: "30M",
		BatchSize: 2,
		Sleep:     int(time.Hour / time.Millisecond),
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	deleted, err := worker.RunOnce(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, deleted)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	reporter := newReporter(t)

	_, err := purge.New(&fakePurger{}, reporter, &config.Purge{OlderThan: "ten days"}, logger)
	require.ErrorIs(t, err, utils.ErrInvalidAge)

	_, err = purge.New(&fakePurger{}, reporter, &config.Purge{BatchSize: -1}, logger)
	require.ErrorIs(t, err, purge.ErrInvalidBatchSize)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	worker, err := purge.New(&fakePurger{}, newReporter(t), &config.Purge{Schedule: "every now and then"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Error(t, worker.Start(t.Context()))
}

func TestStartStopsWithContext(t *testing.T) {
	t.Parallel()

	worker, err := purge.New(&fakePurger{}, newReporter(t), &config.Purge{Schedule: "@every 1h"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- worker.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
