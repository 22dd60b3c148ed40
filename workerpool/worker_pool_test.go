package workerpool

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ClampsSize(t *testing.T) {
	p, err := New(0)
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, 1, p.Size())
}

func TestGo_ReturnsResultsInSubmissionOrder(t *testing.T) {
	ctx := context.Background()
	p, err := New(4)
	require.NoError(t, err)
	defer p.Release()

	var jobs []*Job[int]
	for i := 0; i < 10; i++ {
		i := i
		job, err := Go(ctx, p, func(context.Context) (int, error) {
			// Earlier jobs finish later.
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * i, nil
		})
		require.NoError(t, err)
		jobs = append(jobs, job)
	}

	for i, job := range jobs {
		got, err := job.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, i*i, got)
		assert.NotEmpty(t, job.ID())
	}
}

func TestGo_BoundsConcurrency(t *testing.T) {
	ctx := context.Background()
	p, err := New(2)
	require.NoError(t, err)
	defer p.Release()

	var running, peak atomic.Int32
	var jobs []*Job[struct{}]
	for i := 0; i < 8; i++ {
		job, err := Go(ctx, p, func(context.Context) (struct{}, error) {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		})
		require.NoError(t, err)
		jobs = append(jobs, job)
	}
	for _, job := range jobs {
		_, err := job.Wait(ctx)
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestGo_PropagatesErrorsAndPanics(t *testing.T) {
	ctx := context.Background()
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	boom := errors.New("boom")
	failing, err := Go(ctx, p, func(context.Context) (string, error) {
		return "", boom
	})
	require.NoError(t, err)
	_, err = failing.Wait(ctx)
	assert.ErrorIs(t, err, boom)

	panicking, err := Go(ctx, p, func(context.Context) (string, error) {
		panic("unexpected")
	})
	require.NoError(t, err)
	_, err = panicking.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: unexpected")
}

func TestSubmit_CancelledContext(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	defer p.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Go(ctx, p, func(context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubmit_AfterRelease(t *testing.T) {
	p, err := New(1)
	require.NoError(t, err)
	p.Release()

	err = p.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolReleased)
}

func TestWithPoolLogger_RoutesAntsMessagesToSlog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := New(1, WithPoolLogger(log))
	require.NoError(t, err)
	defer p.Release()

	job, err := Go(context.Background(), p, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	got, err := job.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	slogPrinter{log}.Printf("worker exits from panic: %v", "boom")
	assert.Contains(t, buf.String(), "worker exits from panic: boom")
	assert.Contains(t, buf.String(), "component=workerpool")
}
