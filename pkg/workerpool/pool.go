// Package workerpool provides a fixed-size, long-lived pool of goroutines fed
// through a channel. One pool is meant to be shared process-wide so that
// concurrent callers compete for the same parallelism budget.
package workerpool

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Submit after Close
var ErrClosed = errors.New("workerpool: closed")

// Pool runs submitted tasks on a fixed number of workers
type Pool struct {
	tasks   chan func()
	closed  chan struct{}
	once    sync.Once
	group   errgroup.Group
	size    int
	onPanic func(any)
}

// Option configures Pool
type Option func(*Pool)

// WithPanicHandler is called with the recovered value when a task panics.
// The worker keeps running either way.
func WithPanicHandler(fn func(any)) Option {
	return func(p *Pool) {
		p.onPanic = fn
	}
}

// New starts size workers; size <= 0 uses GOMAXPROCS
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		tasks:  make(chan func()),
		closed: make(chan struct{}),
		size:   size,
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < size; i++ {
		p.group.Go(p.work)
	}
	return p
}

// Size returns the number of workers
func (p *Pool) Size() int {
	return p.size
}

// Submit hands task to an idle worker, blocking until one is free, ctx is
// done or the pool is closed.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrClosed
	}
}

// Close stops accepting tasks and waits for running tasks to return
func (p *Pool) Close() error {
	p.once.Do(func() {
		close(p.closed)
	})
	return p.group.Wait()
}

func (p *Pool) work() error {
	for {
		select {
		case <-p.closed:
			return nil
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil && p.onPanic != nil {
			p.onPanic(r)
		}
	}()
	task()
}
