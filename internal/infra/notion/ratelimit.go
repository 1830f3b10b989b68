package notion

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/inkwell/internal/metrics"
)

type queuedOp struct {
	run  func() error
	done chan error
}

// RateLimiter serializes all outbound calls so no more than rps operations
// per second reach the upstream API, regardless of caller concurrency.
// Requests are serviced in arrival order; one operation's failure settles
// only its own waiter.
type RateLimiter struct {
	interval time.Duration

	mu       sync.Mutex
	queue    []*queuedOp
	draining bool
}

// NewRateLimiter creates a limiter dispatching at most rps operations per
// second. rps is expected to be pre-validated into [1, 10] by config.
func NewRateLimiter(rps int) *RateLimiter {
	if rps < 1 {
		rps = 1
	}
	return &RateLimiter{
		interval: time.Second / time.Duration(rps),
	}
}

// Do enqueues op and blocks until it has been dispatched and settled, or
// ctx is cancelled. On cancellation the operation stays queued and its
// eventual result is discarded.
func (l *RateLimiter) Do(ctx context.Context, op func() error) error {
	item := &queuedOp{run: op, done: make(chan error, 1)}

	l.mu.Lock()
	l.queue = append(l.queue, item)
	metrics.QueueDepth.Set(float64(len(l.queue)))
	start := !l.draining
	if start {
		l.draining = true
	}
	l.mu.Unlock()

	if start {
		go l.drain()
	}

	select {
	case err := <-item.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain services the queue one operation at a time, sleeping the limiter
// interval between dispatches but not after the last one. Exactly one
// drain loop runs at a time; the draining flag makes starts idempotent.
func (l *RateLimiter) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.draining = false
			l.mu.Unlock()
			return
		}
		item := l.queue[0]
		l.queue = l.queue[1:]
		metrics.QueueDepth.Set(float64(len(l.queue)))
		l.mu.Unlock()

		item.done <- item.run()

		l.mu.Lock()
		pending := len(l.queue)
		l.mu.Unlock()
		if pending > 0 {
			time.Sleep(l.interval)
		}
	}
}

// QueueLen returns the number of operations waiting to be dispatched.
// Diagnostic only.
func (l *RateLimiter) QueueLen() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Draining reports whether the drain loop is currently running.
// Diagnostic only.
func (l *RateLimiter) Draining() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.draining
}

// Interval returns the spacing between dispatches.
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}

// Execute runs a value-returning operation through the limiter. The value
// travels through its own buffered channel so an abandoned (cancelled)
// call never races with the drain goroutine.
func Execute[T any](ctx context.Context, l *RateLimiter, op func() (T, error)) (T, error) {
	resCh := make(chan T, 1)
	err := l.Do(ctx, func() error {
		v, opErr := op()
		if opErr == nil {
			resCh <- v
		}
		return opErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return <-resCh, nil
}
