package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRunsJobs(t *testing.T) {
	svc := New(4)
	svc.Start(context.Background())

	var ran int32
	for i := 0; i < 3; i++ {
		require.True(t, svc.Enqueue(JobNotifySubmitted, "r1", func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	svc.Close()
	assert.Equal(t, int32(3), atomic.LoadInt32(&ran))
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	svc := New(1)
	noop := func(context.Context) error { return nil }
	require.True(t, svc.Enqueue(JobNotifyResolved, "a", noop))
	assert.False(t, svc.Enqueue(JobNotifyResolved, "b", noop))
}

func TestWorkerSurvivesFailuresAndPanics(t *testing.T) {
	svc := New(4)
	svc.Start(context.Background())

	var ran int32
	svc.Enqueue("fail", "", func(context.Context) error { return errors.New("boom") })
	svc.Enqueue("panic", "", func(context.Context) error { panic("boom") })
	svc.Enqueue("ok", "", func(context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	svc.Close()
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestRunJobReportsPanic(t *testing.T) {
	err := runJob(context.Background(), job{Type: "x", Run: func(context.Context) error { panic("kaboom") }})
	assert.EqualError(t, err, "job panicked: kaboom")

	err = runJob(context.Background(), job{Type: "x", Run: func(context.Context) error { return errors.New("nope") }})
	assert.EqualError(t, err, "nope")
}

func TestCloseDrainsAfterCancel(t *testing.T) {
	svc := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Start(ctx)

	var ran int32
	release := make(chan struct{})
	require.True(t, svc.Enqueue("block", "", func(context.Context) error {
		<-release
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	for i := 0; i < 5; i++ {
		require.True(t, svc.Enqueue(JobNotifySubmitted, "r", func(ctx context.Context) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	cancel()
	close(release)
	svc.Close()
	assert.Equal(t, int32(6), atomic.LoadInt32(&ran))
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	svc := New(2)
	svc.Start(context.Background())
	svc.Close()
	assert.False(t, svc.Enqueue(JobNotifyResolved, "late", func(context.Context) error { return nil }))
}
