// Package queue provides the unbounded hand-off queue between the batching
// engine and its consumer.
package queue

import "sync"

// Unbounded is an unbounded multi-producer, single-consumer FIFO.
// Push never blocks and preserves push order. Items are delivered on the
// channel returned by C; after Close, items already queued are still
// delivered and then the channel is closed, exactly once.
//
// The absence of backpressure is deliberate: producers must never wait on a
// slow consumer. Memory grows with the backlog instead.
type Unbounded[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool

	wake chan struct{}
	out  chan T
}

// NewUnbounded creates the queue and starts its delivery goroutine.
func NewUnbounded[T any]() *Unbounded[T] {
	u := &Unbounded[T]{
		wake: make(chan struct{}, 1),
		out:  make(chan T),
	}
	go u.deliver()
	return u
}

// Push appends v to the queue and returns true. It never blocks.
// After Close it drops v and returns false.
func (u *Unbounded[T]) Push(v T) bool {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return false
	}
	u.items = append(u.items, v)
	u.mu.Unlock()
	u.notify()
	return true
}

// C returns the receive side of the queue. Every call returns the same
// channel.
func (u *Unbounded[T]) C() <-chan T {
	return u.out
}

// Len returns the number of items buffered but not yet handed to the channel.
func (u *Unbounded[T]) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.items)
}

// Close marks the queue closed. Idempotent and non-blocking; the receive
// channel closes once the remaining items have been delivered.
func (u *Unbounded[T]) Close() {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return
	}
	u.closed = true
	u.mu.Unlock()
	u.notify()
}

// notify wakes the delivery goroutine. The 1-slot buffer coalesces bursts.
func (u *Unbounded[T]) notify() {
	select {
	case u.wake <- struct{}{}:
	default:
	}
}

// deliver pumps buffered items into the receive channel. It is the only
// goroutine that sends on or closes out.
func (u *Unbounded[T]) deliver() {
	for {
		u.mu.Lock()
		batch := u.items
		u.items = nil
		closed := u.closed
		u.mu.Unlock()

		for _, v := range batch {
			u.out <- v
		}
		if len(batch) > 0 {
			// re-check for items pushed while we were sending
			continue
		}

		if closed {
			close(u.out)
			return
		}
		<-u.wake
	}
}
