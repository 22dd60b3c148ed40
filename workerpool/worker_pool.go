// Package workerpool runs typed jobs on a bounded ants goroutine pool and
// hands their results back through awaitable handles.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/xid"
)

// ErrPoolReleased is returned when submitting to a pool that was released.
var ErrPoolReleased = errors.New("worker pool is released")

// Options defines configurable options for a worker pool.
type Options struct {
	Logger *slog.Logger
}

// Option defines a function that configures worker pool options.
type Option func(*Options)

// WithPoolLogger sets a logger for the pool's internal messages.
func WithPoolLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// Pool is a fixed-size worker pool.
type Pool struct {
	pool *ants.Pool
	size int
}

// New creates a pool running at most size jobs at a time. Sizes below 1 are
// raised to 1.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		size = 1
	}

	wopts := &Options{}
	for _, opt := range opts {
		opt(wopts)
	}

	// Submit waits for a free worker; callers rely on every job being accepted.
	antsOpts := []ants.Option{ants.WithNonblocking(false)}
	if wopts.Logger != nil {
		antsOpts = append(antsOpts, ants.WithLogger(slogPrinter{wopts.Logger}))
	}

	p, err := ants.NewPool(size, antsOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &Pool{pool: p, size: size}, nil
}

// Size returns the maximum number of concurrently running jobs.
func (p *Pool) Size() int {
	return p.size
}

// Submit hands task to the pool. It blocks while all workers are busy.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := p.pool.Submit(task); err != nil {
		if errors.Is(err, ants.ErrPoolClosed) {
			return ErrPoolReleased
		}
		return err
	}
	return nil
}

// Release stops the pool. Running jobs finish; no new jobs are accepted.
func (p *Pool) Release() {
	p.pool.Release()
}

// Job is a handle on a submitted unit of work producing a T.
type Job[T any] struct {
	id   string
	done chan struct{}
	item T
	err  error
}

// ID returns the job's unique id.
func (j *Job[T]) ID() string {
	return j.id
}

// Wait blocks until the job finished or ctx is done.
// A panic inside the job is returned as an error.
func (j *Job[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-j.done:
		return j.item, j.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Go submits fn to the pool and returns a handle to await its result.
func Go[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (*Job[T], error) {
	if p == nil {
		return nil, errors.New("worker pool is nil")
	}
	job := &Job[T]{
		id:   xid.New().String(),
		done: make(chan struct{}),
	}

	task := func() {
		defer close(job.done)
		defer func() {
			if r := recover(); r != nil {
				job.err = fmt.Errorf("job %s panicked: %v\n%s", job.id, r, debug.Stack())
			}
		}()
		job.item, job.err = fn(ctx)
	}

	if err := p.Submit(ctx, task); err != nil {
		return nil, fmt.Errorf("submitting job %s: %w", job.id, err)
	}
	return job, nil
}

// slogPrinter adapts slog to the ants.Logger interface.
type slogPrinter struct {
	log *slog.Logger
}

func (s slogPrinter) Printf(format string, args ...any) {
	s.log.Debug(fmt.Sprintf(format, args...), "component", "workerpool")
}
