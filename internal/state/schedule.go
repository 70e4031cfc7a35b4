package state

import (
	"context"

	"github.com/oriumgames/bevi/internal/scheduler"
)

// Schedule runs a single state type's enter/update/exit stages around
// its Driver's transitions. SameFrame controls whether a chain of
// transitions queued during enter/exit resolves within one Run call, or
// each transition instead waits for the next Run call — exposed as a
// constructor choice rather than picked once for all callers, since
// different state machines (a menu/gameplay toggle vs. a multi-step
// level-load sequence) genuinely want different answers here.
type Schedule[T comparable] struct {
	driver *Driver[T]

	enter  map[T]*scheduler.SystemStage
	update map[T]*scheduler.SystemStage
	exit   map[T]*scheduler.SystemStage

	sameFrame bool
}

// NewSchedule constructs a state schedule driven by driver, resolving
// chained same-frame transitions until none remain.
func NewSchedule[T comparable](driver *Driver[T]) *Schedule[T] {
	return &Schedule[T]{
		driver:    driver,
		enter:     make(map[T]*scheduler.SystemStage),
		update:    make(map[T]*scheduler.SystemStage),
		exit:      make(map[T]*scheduler.SystemStage),
		sameFrame: true,
	}
}

// NewNextFrameSchedule is NewSchedule with SameFrame disabled: at most
// one transition (exit+enter) is processed per Run call.
func NewNextFrameSchedule[T comparable](driver *Driver[T]) *Schedule[T] {
	s := NewSchedule(driver)
	s.sameFrame = false
	return s
}

// OnEnter registers stage to run once when value becomes current.
func (s *Schedule[T]) OnEnter(value T, stage *scheduler.SystemStage) *Schedule[T] {
	s.enter[value] = stage
	return s
}

// OnUpdate registers stage to run every tick value is current and no
// transition is pending.
func (s *Schedule[T]) OnUpdate(value T, stage *scheduler.SystemStage) *Schedule[T] {
	s.update[value] = stage
	return s
}

// OnExit registers stage to run once when value stops being current.
func (s *Schedule[T]) OnExit(value T, stage *scheduler.SystemStage) *Schedule[T] {
	s.exit[value] = stage
	return s
}

// Current returns the driver's present value.
func (s *Schedule[T]) Current() T { return s.driver.Current() }

// Run resolves the pending transition, if any: the old state's exit
// stage runs, then the new state's enter stage. A same-frame schedule
// keeps resolving transitions queued meanwhile and, once none is
// pending, runs the update stage of the state now current, all within
// this call; a next-frame schedule returns right after one transition
// without running update. With nothing pending, Run only runs the
// current state's update stage.
func (s *Schedule[T]) Run(ctx context.Context, w scheduler.World, r scheduler.Resources, diag scheduler.Diagnostics, traceID string) error {
	for {
		next, hasNext := s.driver.takeQueued()
		if !hasNext {
			if stage, ok := s.update[s.driver.Current()]; ok {
				return stage.RunOutermost(ctx, w, r, diag, traceID)
			}
			return nil
		}

		old := s.driver.Current()
		if stage, ok := s.exit[old]; ok {
			if err := stage.RunOutermost(ctx, w, r, diag, traceID); err != nil {
				return err
			}
		}
		s.driver.setCurrent(next)
		if stage, ok := s.enter[next]; ok {
			if err := stage.RunOutermost(ctx, w, r, diag, traceID); err != nil {
				return err
			}
		}

		if !s.sameFrame {
			return nil
		}
	}
}
