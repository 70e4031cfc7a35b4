package scheduler

import "context"

// SerialExecutor runs every system — parallel-eligible or exclusive —
// one at a time in dependency order, on the calling goroutine. It exists
// as a debugging/reference variant: same scheduling decisions (which
// systems skip, what order apply_buffers runs in) minus the concurrency,
// useful for deterministic tests and for diagnosing a suspected race in
// the parallel executor.
type SerialExecutor struct{}

// NewSerialExecutor constructs the serial reference executor.
func NewSerialExecutor() *SerialExecutor { return &SerialExecutor{} }

func (e *SerialExecutor) ExecuteStage(ctx context.Context, p *preparedStage, w World, r Resources, diag Diagnostics, traceID string, setShouldRun func(int) bool) error {
	if err := runExclusiveBucket(ctx, p.atStart, p.atStartSet, w, r, diag, traceID, setShouldRun); err != nil {
		return err
	}

	order, err := e.order(p)
	if err != nil {
		return err
	}

	ran := make([]bool, len(p.parallel))
	for _, i := range order {
		if !setShouldRun(p.parallelSet[i]) {
			continue
		}
		if err := runOneSystemNoBuffers(ctx, p.parallel[i], w, r, diag, traceID); err != nil {
			return err
		}
		ran[i] = true
	}

	if err := runExclusiveBucket(ctx, p.beforeCommands, p.beforeCommandsSet, w, r, diag, traceID, setShouldRun); err != nil {
		return err
	}
	if err := applyParallelBuffers(p, w, r, ran); err != nil {
		return err
	}
	return runExclusiveBucket(ctx, p.atEnd, p.atEndSet, w, r, diag, traceID, setShouldRun)
}

// order derives a valid serial order from the dependency graph already
// proven acyclic at rebuild time.
func (e *SerialExecutor) order(p *preparedStage) ([]int, error) {
	n := len(p.parallel)
	nodes := make([]int, n)
	for i := range nodes {
		nodes[i] = i
	}
	graph := make(map[int][]int, n)
	for i, d := range p.dependants {
		graph[i] = d
	}
	res := TopologicalSort(nodes, graph)
	if res.HasCycle {
		return nil, ErrCycleDetected
	}
	return res.Sorted, nil
}

// runOneSystemNoBuffers runs sys but defers its buffer flush to the
// stage-wide apply_buffers point, matching the parallel executor's
// batching of command application.
func runOneSystemNoBuffers(ctx context.Context, sys *FuncSystem, w World, r Resources, diag Diagnostics, traceID string) error {
	return runSystemBody(ctx, sys, w, r, diag, traceID)
}
