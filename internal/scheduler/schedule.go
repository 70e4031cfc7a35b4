package scheduler

import (
	"context"
	"fmt"
)

// Schedule is a named, ordered list of stages, each run to completion
// before the next begins. An App holds one and runs its startup or its
// update stages on each pass.
type Schedule struct {
	order  []string
	stages map[string]*SystemStage
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{stages: make(map[string]*SystemStage)}
}

// AddStage appends a new stage at the end of the schedule.
func (s *Schedule) AddStage(name string, stage *SystemStage) error {
	if _, exists := s.stages[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStage, name)
	}
	s.stages[name] = stage
	s.order = append(s.order, name)
	return nil
}

// AddStageAfter inserts stage immediately after the stage named target.
func (s *Schedule) AddStageAfter(target, name string, stage *SystemStage) error {
	if _, exists := s.stages[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStage, name)
	}
	pos := s.indexOf(target)
	if pos < 0 {
		return fmt.Errorf("%w: %q", ErrStageNotFound, target)
	}
	s.stages[name] = stage
	s.order = append(s.order, "")
	copy(s.order[pos+2:], s.order[pos+1:])
	s.order[pos+1] = name
	return nil
}

// AddStageBefore inserts stage immediately before the stage named target.
func (s *Schedule) AddStageBefore(target, name string, stage *SystemStage) error {
	if _, exists := s.stages[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateStage, name)
	}
	pos := s.indexOf(target)
	if pos < 0 {
		return fmt.Errorf("%w: %q", ErrStageNotFound, target)
	}
	s.stages[name] = stage
	s.order = append(s.order, "")
	copy(s.order[pos+1:], s.order[pos:])
	s.order[pos] = name
	return nil
}

// GetStage returns the stage registered under name, or nil if none.
func (s *Schedule) GetStage(name string) *SystemStage {
	return s.stages[name]
}

// StageNames returns the registered stage names in execution order.
func (s *Schedule) StageNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Schedule) indexOf(name string) int {
	for i, n := range s.order {
		if n == name {
			return i
		}
	}
	return -1
}

// Run executes every stage in registration order. An outer NoAndLoop
// result is a construction error — only a stage's own re-evaluation loop
// may legitimately yield it; at the schedule's outermost call it would
// never produce forward progress.
func (s *Schedule) Run(ctx context.Context, w World, r Resources, diag Diagnostics, traceID string) error {
	for _, name := range s.order {
		stage := s.stages[name]
		if err := stage.RunOutermost(ctx, w, r, diag, traceID); err != nil {
			return fmt.Errorf("stage %q: %w", name, err)
		}
	}
	return nil
}
