package scheduler

import (
	"context"
	"time"
)

// runExclusiveBucket runs systems sequentially in the given order,
// skipping any whose owning set should not run this iteration, and
// reporting diagnostics/errors exactly as the parallel and serial
// executors do for the parallel portion.
func runExclusiveBucket(ctx context.Context, systems []*FuncSystem, setIdx []int, w World, r Resources, diag Diagnostics, traceID string, setShouldRun func(int) bool) error {
	for i, sys := range systems {
		if !setShouldRun(setIdx[i]) {
			continue
		}
		if err := runOneSystem(ctx, sys, w, r, diag, traceID); err != nil {
			return err
		}
	}
	return nil
}

// runOneSystem invokes sys.RunUnsafe with start/end diagnostics, then
// applies its own deferred buffers immediately (exclusive systems are
// never concurrent with anything, so there is no benefit to deferring
// their buffer flush to the stage-wide apply_buffers point).
func runOneSystem(ctx context.Context, sys *FuncSystem, w World, r Resources, diag Diagnostics, traceID string) error {
	if err := runSystemBody(ctx, sys, w, r, diag, traceID); err != nil {
		return err
	}
	return sys.ApplyBuffers(w, r)
}

// runSystemBody invokes RunUnsafe with start/end diagnostics only,
// leaving buffer application to the caller.
func runSystemBody(ctx context.Context, sys *FuncSystem, w World, r Resources, diag Diagnostics, traceID string) error {
	start := time.Now()
	diag.SystemStart(traceID, sys.Name())
	err := sys.RunUnsafe(ctx, w, r)
	diag.SystemEnd(traceID, sys.Name(), err, time.Since(start))
	return err
}

// applyParallelBuffers flushes every parallel system's deferred commands
// in stable ascending SystemIndex (declaration) order, skipping systems
// whose set did not run this iteration.
func applyParallelBuffers(p *preparedStage, w World, r Resources, ran []bool) error {
	for i, sys := range p.parallel {
		if !ran[i] {
			continue
		}
		if err := sys.ApplyBuffers(w, r); err != nil {
			return err
		}
	}
	return nil
}
