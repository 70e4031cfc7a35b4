package state

import (
	"errors"
	"testing"

	"github.com/oriumgames/bevi/internal/event"
	"github.com/oriumgames/bevi/internal/scheduler"
)

type phase int

const (
	phaseMenu phase = iota
	phasePlaying
	phasePaused
)

func TestDriverCurrentStartsAtInitial(t *testing.T) {
	d := NewDriver(event.NewBus(), phaseMenu)
	if d.Current() != phaseMenu {
		t.Fatalf("got %v, want %v", d.Current(), phaseMenu)
	}
}

func TestTryQueueTransitionRejectsSameState(t *testing.T) {
	d := NewDriver(event.NewBus(), phaseMenu)
	err := d.TryQueueTransition(phaseMenu)
	if !errors.Is(err, scheduler.ErrAlreadyInState) {
		t.Fatalf("expected ErrAlreadyInState, got %v", err)
	}
}

func TestTryQueueTransitionRejectsDoubleQueue(t *testing.T) {
	d := NewDriver(event.NewBus(), phaseMenu)
	if err := d.TryQueueTransition(phasePlaying); err != nil {
		t.Fatalf("unexpected error queuing first transition: %v", err)
	}
	err := d.TryQueueTransition(phasePaused)
	if !errors.Is(err, scheduler.ErrStateAlreadyQueued) {
		t.Fatalf("expected ErrStateAlreadyQueued, got %v", err)
	}
}

func TestQueueTransitionOverwritesPending(t *testing.T) {
	d := NewDriver(event.NewBus(), phaseMenu)
	d.QueueTransition(phasePlaying)
	d.QueueTransition(phasePaused)

	next, ok := d.takeQueued()
	if !ok || next != phasePaused {
		t.Fatalf("expected the second QueueTransition to win, got %v (ok=%v)", next, ok)
	}
}

func TestTakeQueuedClearsPending(t *testing.T) {
	d := NewDriver(event.NewBus(), phaseMenu)
	d.QueueTransition(phasePlaying)

	if _, ok := d.takeQueued(); !ok {
		t.Fatalf("expected a pending transition")
	}
	if _, ok := d.takeQueued(); ok {
		t.Fatalf("expected takeQueued to clear the pending transition")
	}
}

func TestDriverEmitsChangeEventWithoutAdvance(t *testing.T) {
	bus := event.NewBus()
	d := NewDriver(bus, phaseMenu)
	reader := event.ReaderFor[Change[phase]](bus)

	if err := d.TryQueueTransition(phasePlaying); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// TryQueueTransition must answer synchronously; the Change event it
	// emits is for observability and only becomes visible to readers
	// after the bus advances, matching every other event type.
	before := reader.Drain()
	if len(before) != 0 {
		t.Fatalf("expected no events visible before Advance, got %v", before)
	}

	bus.Advance()
	after := reader.Drain()
	if len(after) != 1 || after[0].From != phaseMenu || after[0].To != phasePlaying {
		t.Fatalf("unexpected change events: %v", after)
	}
}
