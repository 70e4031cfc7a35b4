package scheduler

import "errors"

// Construction-time and runtime-invariant sentinel errors. Callers should
// use errors.Is against these; the wrapping error (via fmt.Errorf's %w)
// names the offending system, label, or cycle member.
var (
	ErrUnknownLabel       = errors.New("scheduler: unknown label referenced in before/after clause")
	ErrCycleDetected      = errors.New("scheduler: cyclic dependency detected")
	ErrDuplicateStage     = errors.New("scheduler: duplicate stage name")
	ErrStageNotFound      = errors.New("scheduler: target stage not found")
	ErrConflictingAccess  = errors.New("scheduler: system declares conflicting read/write access to the same type")
	ErrSafetyBitTripped   = errors.New("scheduler: system accessed unsafely more than once in a single pass")
	ErrOutermostNoAndLoop = errors.New("scheduler: NoAndLoop returned by the outermost stage's run criteria")
	ErrAlreadyInState     = errors.New("scheduler: requested state transition targets the current state")
	ErrStateAlreadyQueued = errors.New("scheduler: a state transition is already queued")
	ErrSchedulerStalled   = errors.New("scheduler: executor stalled with systems neither running nor startable")
)
