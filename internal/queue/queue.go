// Package queue implements the bounded, single-consumer hand-off between
// order ingress and the assignment engine.
package queue

import (
	"context"
	"errors"

	"dispatch-router/internal/domain"
)

// ErrClosed is returned by Push once the consumer side has been closed —
// there is no engine left to drain the queue, so back-pressure can never
// resolve.
var ErrClosed = errors.New("queue: consumer is gone")

// OrderQueue is a fixed-capacity FIFO channel of orders. Exactly one
// goroutine is expected to call Pop (the assignment engine); any number of
// producers may call Push concurrently.
type OrderQueue struct {
	ch     chan domain.DeliveryOrder
	closed chan struct{}
}

// New creates an OrderQueue with the given capacity. Capacity must be
// positive; the caller (config validation) is responsible for that.
func New(capacity int) *OrderQueue {
	return &OrderQueue{
		ch:     make(chan domain.DeliveryOrder, capacity),
		closed: make(chan struct{}),
	}
}

// Push enqueues an order, suspending the caller while the queue is full.
// It returns ErrClosed if the consumer has gone away, or ctx.Err() if ctx
// is cancelled first.
func (q *OrderQueue) Push(ctx context.Context, order domain.DeliveryOrder) error {
	select {
	case q.ch <- order:
		return nil
	case <-q.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop receives the next order in FIFO order, suspending while the queue is
// empty. It returns false once the queue has been closed and drained, or
// once ctx is cancelled. Buffered orders are always delivered before a
// close is observed: the channel itself is never closed (see Close), so a
// non-blocking check of it takes priority over the closed signal.
func (q *OrderQueue) Pop(ctx context.Context) (domain.DeliveryOrder, bool) {
	select {
	case order := <-q.ch:
		return order, true
	default:
	}

	select {
	case order := <-q.ch:
		return order, true
	case <-q.closed:
		select {
		case order := <-q.ch:
			return order, true
		default:
			return domain.DeliveryOrder{}, false
		}
	case <-ctx.Done():
		return domain.DeliveryOrder{}, false
	}
}

// Len reports the current number of orders waiting in the queue.
func (q *OrderQueue) Len() int {
	return len(q.ch)
}

// Cap reports the queue's fixed capacity.
func (q *OrderQueue) Cap() int {
	return cap(q.ch)
}

// Close signals that no consumer remains; further Push calls fail with
// ErrClosed. Safe to call at most once. It only closes the closed signal,
// not the order channel itself: a producer racing Push against Close must
// never observe a send on a closed channel, which would panic rather than
// return ErrClosed.
func (q *OrderQueue) Close() {
	close(q.closed)
}
