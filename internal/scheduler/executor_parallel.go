package scheduler

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/oriumgames/bevi/internal/workpool"
)

// ParallelExecutor is the cooperative executor: system bodies are
// dispatched onto a bounded workpool.Pool (thread-local systems run on
// the coordinator goroutine itself), with a single coordinator
// goroutine making every scheduling decision (ready queue, active-access
// accumulator, dependency counters) so none of that state needs locking.
type ParallelExecutor struct {
	pool *workpool.Pool
}

// NewParallelExecutor constructs a parallel executor backed by a worker
// pool sized to GOMAXPROCS.
func NewParallelExecutor() *ParallelExecutor {
	return &ParallelExecutor{pool: workpool.New(max(runtime.GOMAXPROCS(0), 1))}
}

// NewParallelExecutorWithPool constructs a parallel executor backed by an
// explicit, possibly shared, worker pool.
func NewParallelExecutorWithPool(pool *workpool.Pool) *ParallelExecutor {
	return &ParallelExecutor{pool: pool}
}

type parallelResult struct {
	index int
	err   error
}

// ExecuteStage runs one stage pass: at_start exclusives, then the
// parallel wave (as many mutually-compatible, dependency-satisfied
// systems running concurrently as possible at any instant), then
// before_commands exclusives, then apply_buffers in stable declaration
// order, then at_end exclusives.
func (e *ParallelExecutor) ExecuteStage(ctx context.Context, p *preparedStage, w World, r Resources, diag Diagnostics, traceID string, setShouldRun func(int) bool) error {
	if err := runExclusiveBucket(ctx, p.atStart, p.atStartSet, w, r, diag, traceID, setShouldRun); err != nil {
		return err
	}

	ran, err := e.runParallelWave(ctx, p, w, r, diag, traceID, setShouldRun)
	if err != nil {
		return err
	}

	if err := runExclusiveBucket(ctx, p.beforeCommands, p.beforeCommandsSet, w, r, diag, traceID, setShouldRun); err != nil {
		return err
	}
	if err := applyParallelBuffers(p, w, r, ran); err != nil {
		return err
	}
	return runExclusiveBucket(ctx, p.atEnd, p.atEndSet, w, r, diag, traceID, setShouldRun)
}

func (e *ParallelExecutor) runParallelWave(ctx context.Context, p *preparedStage, w World, r Resources, diag Diagnostics, traceID string, setShouldRun func(int) bool) ([]bool, error) {
	n := len(p.parallel)
	ran := make([]bool, n)
	if n == 0 {
		return ran, nil
	}

	running := make([]bool, n)
	remaining := make([]int, n)
	copy(remaining, p.dependencies)

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if remaining[i] == 0 {
			ready = append(ready, i)
		}
	}

	propagate := func(i int) {
		for _, j := range p.dependants[i] {
			remaining[j]--
			if remaining[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	active := newEmptyCondensedAccess()
	threadLocalRunning := false
	runningCount := 0
	finished := 0
	results := make(chan parallelResult, n)
	var firstErr error

	for finished < n {
		if ctx.Err() != nil && runningCount == 0 {
			return ran, ctx.Err()
		}

		for idx := 0; idx < len(ready); {
			i := ready[idx]

			if !setShouldRun(p.parallelSet[i]) {
				ready = append(ready[:idx], ready[idx+1:]...)
				finished++
				propagate(i)
				continue
			}
			if running[i] {
				return ran, fmt.Errorf("%w: system %q", ErrSafetyBitTripped, p.parallel[i].Name())
			}

			sys := p.parallel[i]
			isTL := sys.IsThreadLocal()
			switch {
			case threadLocalRunning:
				idx++
				continue
			case isTL && runningCount > 0:
				idx++
				continue
			case !isTL && !active.IsCompatible(p.condensed[i]):
				idx++
				continue
			}

			running[i] = true
			runningCount++
			if isTL {
				threadLocalRunning = true
			}
			active.Extend(p.condensed[i])
			ready = append(ready[:idx], ready[idx+1:]...)

			job := func(ctx context.Context) error {
				start := time.Now()
				diag.SystemStart(traceID, sys.Name())
				runErr := sys.RunUnsafe(ctx, w, r)
				diag.SystemEnd(traceID, sys.Name(), runErr, time.Since(start))
				return runErr
			}
			if isTL {
				// Thread-local systems run on the coordinator goroutine;
				// results is buffered, so this send never blocks.
				results <- parallelResult{index: i, err: job(ctx)}
				continue
			}
			handle := e.pool.Submit(ctx, job)
			go func(i int, h *workpool.Handle) {
				results <- parallelResult{index: i, err: h.Wait()}
			}(i, handle)
		}

		if runningCount == 0 {
			if finished < n {
				return ran, ErrSchedulerStalled
			}
			break
		}

		res := <-results
		runningCount--
		running[res.index] = false
		if p.parallel[res.index].IsThreadLocal() {
			threadLocalRunning = false
		}
		ran[res.index] = true
		finished++
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}

		active.Reset()
		for j := 0; j < n; j++ {
			if running[j] {
				active.Extend(p.condensed[j])
			}
		}
		propagate(res.index)
	}

	if firstErr != nil {
		return ran, firstErr
	}
	return ran, nil
}
