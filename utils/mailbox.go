package utils

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Mailbox is a single-slot, overwrite-on-push queue. A producer never blocks: pushing while a value
// is pending discards the pending value. Consumers always observe the most recent value.
type Mailbox[T any] struct {
	mu      sync.Mutex
	slot    chan T
	done    chan struct{}
	closed  bool
	dropped atomic.Uint64
}

// NewMailbox returns an empty, open mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		slot: make(chan T, 1),
		done: make(chan struct{}),
	}
}

// Push stores v, replacing any value not yet taken. It returns false once the mailbox is closed.
func (m *Mailbox[T]) Push(v T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	select {
	case <-m.slot:
		m.dropped.Inc()
	default:
	}
	// only pushers hold mu and the slot was just emptied, so this never blocks.
	m.slot <- v
	return true
}

// Pop blocks until a value is available. It returns false if the mailbox was closed or ctx ended
// first. A closed mailbox never hands out a pending value.
func (m *Mailbox[T]) Pop(ctx context.Context) (T, bool) {
	var zero T
	select {
	case <-m.done:
		return zero, false
	default:
	}
	select {
	case v := <-m.slot:
		return v, true
	case <-m.done:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// TryPop takes the pending value without blocking.
func (m *Mailbox[T]) TryPop() (T, bool) {
	var zero T
	select {
	case <-m.done:
		return zero, false
	default:
	}
	select {
	case v := <-m.slot:
		return v, true
	default:
		return zero, false
	}
}

// Dropped is the number of values overwritten before anyone took them.
func (m *Mailbox[T]) Dropped() uint64 {
	return m.dropped.Load()
}

// Close wakes every blocked Pop. It is safe to call more than once.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
	select {
	case <-m.slot:
	default:
	}
}
