package scheduler

import "context"

// ShouldRun is the return value of a run-criteria predicate. It drives a
// stage's or set's outer loop rather than gating a single call.
type ShouldRun int

const (
	// Yes executes the governed body once, then stops.
	Yes ShouldRun = iota
	// No skips the governed body and exits the governing loop.
	No
	// YesAndLoop executes the body, then re-evaluates the criterion.
	YesAndLoop
	// NoAndLoop does not execute now but re-evaluates later; used to
	// compose multi-phase criteria such as the state driver.
	NoAndLoop
)

func (s ShouldRun) String() string {
	switch s {
	case Yes:
		return "Yes"
	case No:
		return "No"
	case YesAndLoop:
		return "YesAndLoop"
	case NoAndLoop:
		return "NoAndLoop"
	default:
		return "ShouldRun(?)"
	}
}

// RunCriteriaFunc is a predicate system: it observes world/resources and
// returns a ShouldRun verdict.
type RunCriteriaFunc func(ctx context.Context, w World, r Resources) ShouldRun

// RunCriteria gates execution of a stage or a system set. It is lazily
// initialized: a nil Fn always yields Yes, i.e. unconditional execution
// when no criteria system has been attached.
type RunCriteria struct {
	Fn          RunCriteriaFunc
	initialized bool
}

// Evaluate runs the criterion, defaulting to Yes when none is set.
func (rc *RunCriteria) Evaluate(ctx context.Context, w World, r Resources) ShouldRun {
	if rc == nil || rc.Fn == nil {
		return Yes
	}
	rc.initialized = true
	return rc.Fn(ctx, w, r)
}

// Once returns a run criterion that yields Yes exactly once, then No
// forever after — useful for one-shot setup stages.
func Once() *RunCriteria {
	ran := false
	return &RunCriteria{Fn: func(context.Context, World, Resources) ShouldRun {
		if ran {
			return No
		}
		ran = true
		return Yes
	}}
}

// Always is the default, unconditional run criterion.
func Always() *RunCriteria {
	return &RunCriteria{Fn: func(context.Context, World, Resources) ShouldRun { return Yes }}
}
