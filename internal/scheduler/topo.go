package scheduler

import "sort"

// SortResult is the outcome of TopologicalSort: either a valid ordering or
// the nodes that could not be ordered — every cycle member plus every
// node that depends on one.
type SortResult[T comparable] struct {
	Sorted   []T
	Cycle    []T
	HasCycle bool
}

// TopologicalSort orders graph's nodes such that every edge u -> v places
// u before v. graph maps each node to its direct successors ("depends on"
// edges should be inverted by the caller before calling this). Nodes
// reachable only as values (never as a key) are still included in the
// output, as leaves.
//
// Ties are broken deterministically by position in nodesInOrder: among
// the nodes ready at each step, the earliest-listed is emitted first, so
// repeated calls on the same input produce the same schedule.
func TopologicalSort[T comparable](nodesInOrder []T, graph map[T][]T) SortResult[T] {
	indegree := make(map[T]int, len(nodesInOrder))
	for _, n := range nodesInOrder {
		indegree[n] = 0
	}
	for _, succs := range graph {
		for _, v := range succs {
			indegree[v]++
		}
	}

	var ready []T
	for _, n := range nodesInOrder {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	indexOf := make(map[T]int, len(nodesInOrder))
	for i, n := range nodesInOrder {
		indexOf[n] = i
	}
	stableSort := func(xs []T) {
		sort.SliceStable(xs, func(i, j int) bool { return indexOf[xs[i]] < indexOf[xs[j]] })
	}
	stableSort(ready)

	sorted := make([]T, 0, len(nodesInOrder))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		sorted = append(sorted, n)
		var freed []T
		for _, v := range graph[n] {
			indegree[v]--
			if indegree[v] == 0 {
				freed = append(freed, v)
			}
		}
		stableSort(freed)
		ready = append(ready, freed...)
		stableSort(ready)
	}

	if len(sorted) == len(nodesInOrder) {
		return SortResult[T]{Sorted: sorted}
	}

	visited := make(map[T]bool, len(sorted))
	for _, n := range sorted {
		visited[n] = true
	}
	var cycle []T
	for _, n := range nodesInOrder {
		if !visited[n] {
			cycle = append(cycle, n)
		}
	}
	return SortResult[T]{Cycle: cycle, HasCycle: true}
}
