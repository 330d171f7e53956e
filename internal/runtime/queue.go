package runtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/bountylist/internal/address"
)

// Result is the outcome of a submitted transaction.
type Result struct {
	Receipt *Receipt
	Err     error
}

type pending struct {
	tx     Transaction
	result chan Result
}

// txQueue is a thread-safe FIFO queue of submitted transactions.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type txQueue struct {
	mu     sync.Mutex
	items  []pending
	closed bool
	signal chan struct{} // buffered, size 1
}

func newTxQueue() *txQueue {
	return &txQueue{
		items:  make([]pending, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// enqueue adds p to the back of the queue.
// Returns false if the queue is closed.
func (q *txQueue) enqueue(p pending) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, p)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// tryDequeue removes the front item without blocking.
func (q *txQueue) tryDequeue() (pending, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return pending{}, false
	}
	p := q.items[0]
	q.items[0] = pending{}
	if len(q.items) == 1 {
		q.items = q.items[:0]
	} else {
		q.items = q.items[1:]
	}
	return p, true
}

func (q *txQueue) wait() <-chan struct{} {
	return q.signal
}

func (q *txQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// close stops accepting items and fails everything still queued.
func (q *txQueue) close(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	for _, p := range q.items {
		p.result <- Result{Err: err}
	}
	q.items = nil
	close(q.signal)
}

// ErrStopped is returned for transactions submitted to a stopped runtime.
var ErrStopped = newError(ErrCodeStopped, address.Address{}, "runtime stopped")

// Submit enqueues tx for the Run loop. The returned channel receives exactly
// one Result.
func (rt *Runtime) Submit(tx Transaction) <-chan Result {
	ch := make(chan Result, 1)
	if !rt.queue.enqueue(pending{tx: tx, result: ch}) {
		ch <- Result{Err: ErrStopped}
	}
	return ch
}

// Run drains submitted transactions until ctx is cancelled or Stop is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
func (rt *Runtime) Run(ctx context.Context) error {
	slog.Info("runtime loop starting")

	for {
		if p, ok := rt.queue.tryDequeue(); ok {
			rec, err := rt.Execute(ctx, p.tx)
			p.result <- Result{Receipt: rec, Err: err}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("runtime loop stopping: context cancelled")
			rt.queue.close(ErrStopped)
			return ctx.Err()

		case <-rt.queue.wait():
			if rt.queue.len() == 0 && rt.queueClosed() {
				slog.Info("runtime loop stopping: queue closed")
				return nil
			}
		}
	}
}

func (rt *Runtime) queueClosed() bool {
	rt.queue.mu.Lock()
	defer rt.queue.mu.Unlock()
	return rt.queue.closed
}

// Stop closes the queue, which causes Run to return once it is drained.
func (rt *Runtime) Stop() {
	rt.queue.close(ErrStopped)
}
