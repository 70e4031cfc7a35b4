// Package state implements a hierarchical state sub-scheduler on top of
// internal/scheduler: a driver tracks the current value of a comparable
// state type and a pending transition, and a Schedule runs that
// state's enter/update/exit system stages around transitions.
package state

import (
	"sync"

	"github.com/oriumgames/bevi/internal/event"
	"github.com/oriumgames/bevi/internal/scheduler"
)

// Change is broadcast on the event bus whenever a transition is queued,
// so systems outside the state machine can observe transitions without
// polling the driver directly.
type Change[T any] struct {
	From T
	To   T
}

// Driver owns the current value of a state type plus at most one pending
// transition. Queuing is synchronous (TryQueueTransition must answer
// AlreadyInState/StateAlreadyQueued immediately), so the pending slot is
// a plain mutex-guarded field rather than something read back through
// the double-buffered event bus; Change[T] events are emitted alongside
// for observability, not as the source of truth.
type Driver[T comparable] struct {
	mu      sync.Mutex
	current T
	queued  *T

	writer event.Writer[Change[T]]
}

// NewDriver constructs a driver starting in initial, broadcasting Change
// events on bus.
func NewDriver[T comparable](bus *event.Bus, initial T) *Driver[T] {
	return &Driver[T]{current: initial, writer: event.WriterFor[Change[T]](bus)}
}

// Current returns the driver's present state value.
func (d *Driver[T]) Current() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// QueueTransition overwrites any pending transition with next.
func (d *Driver[T]) QueueTransition(next T) {
	d.mu.Lock()
	from := d.current
	q := next
	d.queued = &q
	d.mu.Unlock()
	d.writer.Emit(Change[T]{From: from, To: next})
}

// TryQueueTransition queues next unless doing so would be a no-op: it
// returns scheduler.ErrStateAlreadyQueued if a transition is already
// pending, or scheduler.ErrAlreadyInState if next equals the current
// state and nothing is pending.
func (d *Driver[T]) TryQueueTransition(next T) error {
	d.mu.Lock()
	if d.queued != nil {
		d.mu.Unlock()
		return scheduler.ErrStateAlreadyQueued
	}
	if next == d.current {
		d.mu.Unlock()
		return scheduler.ErrAlreadyInState
	}
	from := d.current
	q := next
	d.queued = &q
	d.mu.Unlock()
	d.writer.Emit(Change[T]{From: from, To: next})
	return nil
}

// takeQueued clears and returns the pending transition, if any.
func (d *Driver[T]) takeQueued() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.queued == nil {
		var zero T
		return zero, false
	}
	next := *d.queued
	d.queued = nil
	return next, true
}

func (d *Driver[T]) setCurrent(v T) {
	d.mu.Lock()
	d.current = v
	d.mu.Unlock()
}
