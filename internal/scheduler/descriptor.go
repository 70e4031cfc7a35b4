package scheduler

import "context"

// SystemIndex stably references one system within a stage's sets: the
// set it belongs to and its position within that set. It survives a
// schedule rebuild's reshuffling of slices because it is recomputed on
// every rebuild rather than cached by the caller.
type SystemIndex struct {
	Set    int
	System int
}

// InsertionPoint controls where an exclusive (serialized) system runs
// within a stage pass, relative to the parallel pass.
type InsertionPoint int

const (
	// AtStart runs before the parallel pass begins.
	AtStart InsertionPoint = iota
	// BeforeCommands runs after the parallel pass but before its
	// deferred command buffers are applied.
	BeforeCommands
	// AtEnd runs after deferred commands have been applied.
	AtEnd
)

func (p InsertionPoint) String() string {
	switch p {
	case AtStart:
		return "AtStart"
	case BeforeCommands:
		return "BeforeCommands"
	case AtEnd:
		return "AtEnd"
	default:
		return "InsertionPoint(?)"
	}
}

// System is the executor's entire contract on a unit of scheduled work.
// A plain function plus declared access (see FuncSystem) is enough to
// satisfy it; the interface exists so tests and callers may supply
// hand-rolled implementations (e.g. systems backed by generated code).
type System interface {
	Name() string
	Index() SystemIndex
	setIndex(SystemIndex)

	ArchetypeComponentAccess() AccessMeta
	ResourceAccess() AccessMeta
	IsThreadLocal() bool

	UpdateAccess(w World)
	RunUnsafe(ctx context.Context, w World, r Resources) error
	ApplyBuffers(w World, r Resources) error
	Initialize(w World, r Resources) error
}

// Applyable is a deferred-write buffer a system may own besides its
// primary command buffer (e.g. a batched event-bus writer). ApplyBuffers
// on FuncSystem flushes every registered Applyable in addition to its
// CommandBuffer, generalizing the single-buffer "apply_buffers" notion
// the source ties to one Commands parameter.
type Applyable interface {
	Apply(w World, r Resources) error
}
