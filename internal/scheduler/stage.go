package scheduler

import (
	"context"
	"fmt"
)

// StageExecutor runs one stage pass: the at_start/before_commands/at_end
// exclusive orders plus the parallel systems, under a prepared schedule.
// ParallelExecutor is the hard-core cooperative implementation;
// SerialExecutor is the debugging/reference variant.
type StageExecutor interface {
	ExecuteStage(ctx context.Context, p *preparedStage, w World, r Resources, diag Diagnostics, traceID string, setShouldRun func(setIndex int) bool) error
}

// SystemStage is a single scheduling horizon: a list of (possibly
// nested) system sets plus an executor strategy. It rebuilds its cached
// schedule whenever a contained set is dirty.
type SystemStage struct {
	Name        string
	RunCriteria *RunCriteria
	Executor    StageExecutor

	sets     []*SystemSet
	prepared *preparedStage
	ti       *TypeIndex
}

// NewParallelStage constructs a stage backed by the parallel executor.
func NewParallelStage(name string) *SystemStage {
	return &SystemStage{Name: name, Executor: NewParallelExecutor(), ti: &TypeIndex{}}
}

// NewSerialStage constructs a stage backed by the serial reference executor.
func NewSerialStage(name string) *SystemStage {
	return &SystemStage{Name: name, Executor: NewSerialExecutor(), ti: &TypeIndex{}}
}

// AddSet registers a top-level system set, marking the stage dirty.
func (s *SystemStage) AddSet(set *SystemSet) *SystemStage {
	s.sets = append(s.sets, set)
	s.prepared = nil
	return s
}

// AddSystem is sugar for AddSet(NewSystemSet("").AddSystem(sys)) when the
// caller has no need for set-level run criteria.
func (s *SystemStage) AddSystem(sys *FuncSystem) *SystemStage {
	s.AddSet(NewSystemSet("").AddSystem(sys))
	return s
}

// isDirty reports whether the stage has no cached schedule yet, or any
// contained set (including ones mutated via AddSystem/AddChild after the
// stage was last built) has pending changes.
func (s *SystemStage) isDirty() bool {
	if s.prepared == nil {
		return true
	}
	for _, set := range s.sets {
		if set.isDirty() {
			return true
		}
	}
	return false
}

// StageDescription is a snapshot of a stage's computed execution plan:
// which systems run in the at_start/parallel/before_commands/at_end
// buckets, in their resolved order. It exists for diagnostics tooling
// (cmd/bevisched describe) that wants the plan without driving a Run.
type StageDescription struct {
	Name           string
	AtStart        []string
	Parallel       []string
	BeforeCommands []string
	AtEnd          []string
}

// Describe rebuilds the stage's schedule if dirty and returns a
// snapshot of the computed plan.
func (s *SystemStage) Describe() (StageDescription, error) {
	if s.isDirty() {
		if err := s.rebuild(); err != nil {
			return StageDescription{}, err
		}
	}
	d := StageDescription{Name: s.Name}
	for _, sys := range s.prepared.atStart {
		d.AtStart = append(d.AtStart, sys.Name())
	}
	for _, sys := range s.prepared.parallel {
		d.Parallel = append(d.Parallel, sys.Name())
	}
	for _, sys := range s.prepared.beforeCommands {
		d.BeforeCommands = append(d.BeforeCommands, sys.Name())
	}
	for _, sys := range s.prepared.atEnd {
		d.AtEnd = append(d.AtEnd, sys.Name())
	}
	return d, nil
}

// Run executes this stage's run criterion to completion: Yes runs once
// and stops, YesAndLoop runs then re-evaluates, No stops without
// running, and NoAndLoop re-evaluates without running — legitimate for a
// nested stage (e.g. a state sub-scheduler's driver stage, where an
// enclosing pass's systems can change what the criterion sees next
// iteration) but never for a Schedule's own top-level stages, which use
// RunOutermost instead.
func (s *SystemStage) Run(ctx context.Context, w World, r Resources, diag Diagnostics, traceID string) error {
	return s.run(ctx, w, r, diag, traceID, false)
}

// RunOutermost is Run with the additional rule that NoAndLoop is a
// construction error: at the outermost level of a Schedule nothing
// mutates between re-evaluations, so NoAndLoop there can only spin
// forever.
func (s *SystemStage) RunOutermost(ctx context.Context, w World, r Resources, diag Diagnostics, traceID string) error {
	return s.run(ctx, w, r, diag, traceID, true)
}

func (s *SystemStage) run(ctx context.Context, w World, r Resources, diag Diagnostics, traceID string, outermost bool) error {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	for {
		verdict := s.RunCriteria.Evaluate(ctx, w, r)
		switch verdict {
		case No:
			return nil
		case NoAndLoop:
			if outermost {
				return ErrOutermostNoAndLoop
			}
			continue
		case Yes:
			return s.runOnce(ctx, w, r, diag, traceID)
		case YesAndLoop:
			if err := s.runOnce(ctx, w, r, diag, traceID); err != nil {
				return err
			}
			continue
		default:
			return nil
		}
	}
}

func (s *SystemStage) runOnce(ctx context.Context, w World, r Resources, diag Diagnostics, traceID string) error {
	if s.isDirty() {
		if err := s.rebuild(); err != nil {
			return err
		}
	}

	// A criterion shared by several flattened sets (a parent and the
	// children inheriting it) is evaluated once and its verdict reused.
	setResults := make([]ShouldRun, len(s.prepared.sets))
	verdicts := make(map[*RunCriteria]ShouldRun, len(s.prepared.sets))
	for i, fs := range s.prepared.sets {
		v, ok := verdicts[fs.runCriteria]
		if !ok {
			v = fs.runCriteria.Evaluate(ctx, w, r)
			verdicts[fs.runCriteria] = v
		}
		setResults[i] = v
	}
	shouldRunSet := func(setIndex int) bool {
		v := setResults[setIndex]
		return v == Yes || v == YesAndLoop
	}

	return s.Executor.ExecuteStage(ctx, s.prepared, w, r, diag, traceID, shouldRunSet)
}

// rebuild resolves labels into a dependency graph, detects cycles,
// rejects any system whose own declared access conflicts with itself,
// and orders exclusive systems within each injection point.
func (s *SystemStage) rebuild() error {
	var flat []flatSet
	for _, set := range s.sets {
		flat = append(flat, set.flatten()...)
	}
	for i := range flat {
		for _, sys := range flat[i].parallel {
			sys.Meta.Access.PrepareSets()
			if t, universe, ok := sys.Meta.Access.SelfConflict(); ok {
				return fmt.Errorf("%w: system %q declares conflicting %s access to %v", ErrConflictingAccess, sys.Name(), universe, t)
			}
		}
		for _, sys := range flat[i].exclusive {
			sys.Meta.Access.PrepareSets()
			if t, universe, ok := sys.Meta.Access.SelfConflict(); ok {
				return fmt.Errorf("%w: system %q declares conflicting %s access to %v", ErrConflictingAccess, sys.Name(), universe, t)
			}
		}
	}

	p := &preparedStage{sets: flat}

	if s.ti == nil {
		s.ti = &TypeIndex{}
	}

	// Flatten parallel systems, recording their owning set.
	labelToIndices := map[string][]int{}
	setNameToIndices := map[string][]int{}
	for si, fs := range flat {
		for j, sys := range fs.parallel {
			idx := len(p.parallel)
			p.parallel = append(p.parallel, sys)
			p.parallelSet = append(p.parallelSet, si)
			sys.setIndex(SystemIndex{Set: si, System: j})
			p.condensed = append(p.condensed, sys.Meta.Access.Condense(s.ti))
			if sys.Meta.Label != "" {
				labelToIndices[sys.Meta.Label] = append(labelToIndices[sys.Meta.Label], idx)
			}
			setNameToIndices[fs.name] = append(setNameToIndices[fs.name], idx)
		}
	}

	resolve := func(labels []string, owner string) ([]int, error) {
		var out []int
		for _, l := range labels {
			if idxs, ok := labelToIndices[l]; ok {
				out = append(out, idxs...)
				continue
			}
			if idxs, ok := setNameToIndices[l]; ok {
				out = append(out, idxs...)
				continue
			}
			return nil, fmt.Errorf("%w: %q referenced by system %q", ErrUnknownLabel, l, owner)
		}
		return out, nil
	}

	dependants := make([][]int, len(p.parallel))
	indegree := make([]int, len(p.parallel))
	for i, sys := range p.parallel {
		afterIdxs, err := resolve(sys.Meta.After, sys.Name())
		if err != nil {
			return err
		}
		for _, pred := range afterIdxs {
			dependants[pred] = append(dependants[pred], i)
			indegree[i]++
		}
		beforeIdxs, err := resolve(sys.Meta.Before, sys.Name())
		if err != nil {
			return err
		}
		for _, succ := range beforeIdxs {
			dependants[i] = append(dependants[i], succ)
			indegree[succ]++
		}
	}

	nodes := make([]int, len(p.parallel))
	for i := range nodes {
		nodes[i] = i
	}
	graph := make(map[int][]int, len(dependants))
	for i, d := range dependants {
		graph[i] = d
	}
	if res := TopologicalSort(nodes, graph); res.HasCycle {
		names := make([]string, len(res.Cycle))
		for i, idx := range res.Cycle {
			names[i] = p.parallel[idx].Name()
		}
		return fmt.Errorf("%w: %v", ErrCycleDetected, names)
	}
	p.dependants = dependants
	p.dependencies = indegree

	orderBucket := func(point InsertionPoint) ([]*FuncSystem, []int, error) {
		var systems []*FuncSystem
		var setIdx []int
		for si, fs := range flat {
			for _, sys := range fs.exclusive {
				if sys.Meta.InsertionPoint == point {
					systems = append(systems, sys)
					setIdx = append(setIdx, si)
				}
			}
		}
		order, err := orderExclusive(systems)
		if err != nil {
			return nil, nil, err
		}
		ordered := make([]*FuncSystem, len(order))
		orderedSet := make([]int, len(order))
		for i, oi := range order {
			ordered[i] = systems[oi]
			orderedSet[i] = setIdx[oi]
		}
		return ordered, orderedSet, nil
	}

	var err error
	p.atStart, p.atStartSet, err = orderBucket(AtStart)
	if err != nil {
		return err
	}
	p.beforeCommands, p.beforeCommandsSet, err = orderBucket(BeforeCommands)
	if err != nil {
		return err
	}
	p.atEnd, p.atEndSet, err = orderBucket(AtEnd)
	if err != nil {
		return err
	}

	for _, set := range s.sets {
		set.clearDirty()
	}
	s.prepared = p
	return nil
}

// orderExclusive topologically orders a bucket of exclusive systems by
// their Before/After labels (resolved against labels within the same
// bucket only — exclusive ordering is scoped to its injection point).
func orderExclusive(systems []*FuncSystem) ([]int, error) {
	labelToIndex := map[string]int{}
	for i, sys := range systems {
		if sys.Meta.Label != "" {
			labelToIndex[sys.Meta.Label] = i
		}
	}
	graph := make(map[int][]int, len(systems))
	nodes := make([]int, len(systems))
	for i, sys := range systems {
		nodes[i] = i
		for _, l := range sys.Meta.After {
			pred, ok := labelToIndex[l]
			if !ok {
				return nil, fmt.Errorf("%w: %q referenced by system %q", ErrUnknownLabel, l, sys.Name())
			}
			graph[pred] = append(graph[pred], i)
		}
		for _, l := range sys.Meta.Before {
			succ, ok := labelToIndex[l]
			if !ok {
				return nil, fmt.Errorf("%w: %q referenced by system %q", ErrUnknownLabel, l, sys.Name())
			}
			graph[i] = append(graph[i], succ)
		}
	}
	res := TopologicalSort(nodes, graph)
	if res.HasCycle {
		names := make([]string, len(res.Cycle))
		for i, idx := range res.Cycle {
			names[i] = systems[idx].Name()
		}
		return nil, fmt.Errorf("%w: %v", ErrCycleDetected, names)
	}
	return res.Sorted, nil
}
