package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// SystemMeta carries everything a FuncSystem needs beyond its body:
// declared access, ordering labels, exclusivity, and an optional
// low-frequency throttle.
type SystemMeta struct {
	Access AccessMeta

	// Label identifies this system to other systems' Before/After
	// clauses. Empty is valid; such a system can be named in another
	// system's Before/After clause only through the name of its set, and
	// can still declare its own Before/After.
	Label string
	// Before/After name labels (of systems or of the set another system
	// belongs to) this system must precede/follow.
	Before []string
	After  []string

	// Exclusive marks a system as serialized: it never overlaps with any
	// other system, parallel or exclusive, and runs at InsertionPoint
	// within its stage pass instead of in the parallel pool.
	Exclusive      bool
	InsertionPoint InsertionPoint

	// ThreadLocal marks a parallel system that must run on the
	// coordinator goroutine (e.g. it touches goroutine-pinned state). It
	// starts only when no other parallel system is running, and no other
	// parallel system starts until it finishes.
	ThreadLocal bool

	// Every throttles a system to run at most once per interval,
	// independent of the stage's run criteria — a lower-frequency tick
	// layered under the higher-level Yes/No protocol. Zero means no
	// throttle.
	Every time.Duration
}

// FuncSystem wraps a plain function as a System. Most callers never need
// anything more elaborate than this.
type FuncSystem struct {
	Meta SystemMeta
	Fn   func(ctx context.Context, w World, r Resources) error

	// CommandBuffer, if non-nil, is drained by ApplyBuffers after every
	// RunUnsafe. Extra deferred-write buffers can be registered via
	// AddApplyable.
	CommandBuffer *CommandBuffer
	applyables    []Applyable

	initFn func(w World, r Resources) error

	index       SystemIndex
	lastRunUnix atomic.Int64
	nextRunUnix atomic.Int64
}

// NewSystem constructs a FuncSystem with the given name (stored as its
// Label for dependency resolution) and body.
func NewSystem(name string, fn func(ctx context.Context, w World, r Resources) error) *FuncSystem {
	return &FuncSystem{Meta: SystemMeta{Label: name}, Fn: fn}
}

// WithAccess sets the declared access and returns the receiver for chaining.
func (s *FuncSystem) WithAccess(a AccessMeta) *FuncSystem { s.Meta.Access = a; return s }

// Before adds labels of systems (or sets) this system must run before.
func (s *FuncSystem) Before(labels ...string) *FuncSystem {
	s.Meta.Before = append(s.Meta.Before, labels...)
	return s
}

// After adds labels of systems (or sets) this system must run after.
func (s *FuncSystem) After(labels ...string) *FuncSystem {
	s.Meta.After = append(s.Meta.After, labels...)
	return s
}

// AtStart marks the system exclusive, running before the parallel pass.
func (s *FuncSystem) AtStart() *FuncSystem {
	s.Meta.Exclusive = true
	s.Meta.InsertionPoint = AtStart
	return s
}

// BeforeCommandsPoint marks the system exclusive, running after the parallel
// pass but before deferred commands are applied.
func (s *FuncSystem) BeforeCommandsPoint() *FuncSystem {
	s.Meta.Exclusive = true
	s.Meta.InsertionPoint = BeforeCommands
	return s
}

// AtEnd marks the system exclusive, running after deferred commands.
func (s *FuncSystem) AtEnd() *FuncSystem {
	s.Meta.Exclusive = true
	s.Meta.InsertionPoint = AtEnd
	return s
}

// ThreadLocalSystem marks the system as required to run on the
// coordinator goroutine.
func (s *FuncSystem) ThreadLocalSystem() *FuncSystem {
	s.Meta.ThreadLocal = true
	return s
}

// WithEvery sets a minimum rerun interval.
func (s *FuncSystem) WithEvery(d time.Duration) *FuncSystem {
	s.Meta.Every = d
	return s
}

// WithInitialize sets a one-shot setup hook.
func (s *FuncSystem) WithInitialize(fn func(w World, r Resources) error) *FuncSystem {
	s.initFn = fn
	return s
}

// AddApplyable registers an additional deferred-write buffer to flush
// alongside CommandBuffer.
func (s *FuncSystem) AddApplyable(a Applyable) *FuncSystem {
	s.applyables = append(s.applyables, a)
	return s
}

func (s *FuncSystem) Name() string                        { return s.Meta.Label }
func (s *FuncSystem) Index() SystemIndex                   { return s.index }
func (s *FuncSystem) setIndex(idx SystemIndex)             { s.index = idx }
func (s *FuncSystem) ArchetypeComponentAccess() AccessMeta { return s.Meta.Access }
func (s *FuncSystem) ResourceAccess() AccessMeta           { return s.Meta.Access }
func (s *FuncSystem) IsThreadLocal() bool                  { return s.Meta.ThreadLocal }

// UpdateAccess is a no-op on FuncSystem: declared access is static. A
// System whose archetype-component access genuinely depends on live
// world shape (a query-driven system) implements its own UpdateAccess.
func (s *FuncSystem) UpdateAccess(w World) {}

// RunUnsafe invokes the throttle check then the body, recovering any
// panic into an error (never letting a user panic crash the executor's
// goroutine silently).
func (s *FuncSystem) RunUnsafe(ctx context.Context, w World, r Resources) (err error) {
	if !s.due(time.Now()) {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("system %q panicked: %v\n%s", s.Name(), rec, debug.Stack())
		}
	}()
	if s.Fn != nil {
		err = s.Fn(ctx, w, r)
	}
	s.markRan(time.Now())
	return err
}

// ApplyBuffers drains the system's command buffer and any registered
// Applyables.
func (s *FuncSystem) ApplyBuffers(w World, r Resources) error {
	if s.CommandBuffer != nil {
		if err := s.CommandBuffer.Apply(w, r); err != nil {
			return err
		}
	}
	for _, a := range s.applyables {
		if err := a.Apply(w, r); err != nil {
			return err
		}
	}
	return nil
}

// Initialize runs the one-shot setup hook, if any.
func (s *FuncSystem) Initialize(w World, r Resources) error {
	if s.initFn == nil {
		return nil
	}
	return s.initFn(w, r)
}

// due reports whether enough time has elapsed since the last run to
// satisfy Meta.Every. A zero Every always returns true.
func (s *FuncSystem) due(now time.Time) bool {
	if s.Meta.Every <= 0 {
		return true
	}
	next := s.nextRunUnix.Load()
	if next == 0 {
		return true
	}
	return now.UnixNano() >= next
}

// markRan records the run timestamp and computes the next drift-free
// deadline, resetting (rather than bursting) if execution lagged.
func (s *FuncSystem) markRan(now time.Time) {
	s.lastRunUnix.Store(now.UnixNano())
	if s.Meta.Every <= 0 {
		return
	}
	nowNanos := now.UnixNano()
	next := s.nextRunUnix.Load()
	if next == 0 {
		next = nowNanos
	}
	next += s.Meta.Every.Nanoseconds()
	if next < nowNanos {
		next = nowNanos + s.Meta.Every.Nanoseconds()
	}
	s.nextRunUnix.Store(next)
}
