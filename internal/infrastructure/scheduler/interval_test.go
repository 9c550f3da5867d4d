package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("test", 3*3600)
	s := NewIntervalScheduler(10*time.Millisecond, loc)

	var runs atomic.Int32
	zones := make(chan string, 16)
	job := func(at time.Time) {
		runs.Add(1)
		name, _ := at.Zone()
		select {
		case zones <- name:
		default:
		}
	}

	ctx := context.Background()
	require.NoError(t, s.Start(ctx, job))
	require.NoError(t, s.Start(ctx, job), "second start is a no-op")

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(ctx))

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after stop")
	assert.Equal(t, "test", <-zones)

	require.NoError(t, s.Stop(ctx), "stop twice is safe")
}

func TestIntervalSchedulerStopsWithContext(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var runs atomic.Int32
	require.NoError(t, s.Start(ctx, func(time.Time) { runs.Add(1) }))
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, s.Stop(context.Background()))
}

func TestIntervalSchedulerDefaults(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(0, nil)
	assert.Equal(t, DefaultInterval, s.every)
	assert.Equal(t, time.UTC, s.location)
	require.NoError(t, s.Start(context.Background(), nil))
}
