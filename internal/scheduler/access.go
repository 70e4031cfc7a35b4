package scheduler

import (
	"reflect"
	"sync"
)

// TypeIndex assigns small, dense integers to reflect.Types on first sight
// so access sets can be condensed into bitsets. Shared across a whole
// schedule rebuild.
type TypeIndex struct {
	mu sync.Mutex
	m  map[reflect.Type]int
}

func (ti *TypeIndex) indexOf(t reflect.Type) int {
	ti.mu.Lock()
	defer ti.mu.Unlock()
	if ti.m == nil {
		ti.m = make(map[reflect.Type]int)
	}
	if idx, ok := ti.m[t]; ok {
		return idx
	}
	idx := len(ti.m)
	ti.m[t] = idx
	return idx
}

// AccessMeta is a declarative read/write permission set over three type
// universes: archetype components, resources, and events. It answers
// "may two systems holding these accesses run concurrently" without
// reference to bitsets; Condense projects it onto a dense vocabulary for
// the hot path.
type AccessMeta struct {
	Reads       []reflect.Type
	Writes      []reflect.Type
	ResReads    []reflect.Type
	ResWrites   []reflect.Type
	EventReads  []reflect.Type
	EventWrites []reflect.Type

	// ReadsAllResources marks a system as reading every resource type,
	// e.g. systems that touch arbitrary global state. It is compatible
	// with another access only if that access writes no resource.
	ReadsAllResources bool

	readsSet       map[reflect.Type]struct{}
	writesSet      map[reflect.Type]struct{}
	resReadsSet    map[reflect.Type]struct{}
	resWritesSet   map[reflect.Type]struct{}
	eventReadsSet  map[reflect.Type]struct{}
	eventWritesSet map[reflect.Type]struct{}
}

func toSet(src []reflect.Type) map[reflect.Type]struct{} {
	if len(src) == 0 {
		return nil
	}
	m := make(map[reflect.Type]struct{}, len(src))
	for _, t := range src {
		m[t] = struct{}{}
	}
	return m
}

// PrepareSets precomputes map-based lookup sets for fast conflict checks.
// Called once per schedule rebuild, before Condense.
func (a *AccessMeta) PrepareSets() {
	a.readsSet = toSet(a.Reads)
	a.writesSet = toSet(a.Writes)
	a.resReadsSet = toSet(a.ResReads)
	a.resWritesSet = toSet(a.ResWrites)
	a.eventReadsSet = toSet(a.EventReads)
	a.eventWritesSet = toSet(a.EventWrites)
}

// AddRead records that t may be read (component universe).
func (a *AccessMeta) AddRead(t reflect.Type) { a.Reads = append(a.Reads, t) }

// AddWrite records that t may be read and written (component universe).
func (a *AccessMeta) AddWrite(t reflect.Type) { a.Writes = append(a.Writes, t) }

// Extend unions other into a, used to accumulate the executor's active
// access while systems are running.
func (a *AccessMeta) Extend(other AccessMeta) {
	a.Reads = append(a.Reads, other.Reads...)
	a.Writes = append(a.Writes, other.Writes...)
	a.ResReads = append(a.ResReads, other.ResReads...)
	a.ResWrites = append(a.ResWrites, other.ResWrites...)
	a.EventReads = append(a.EventReads, other.EventReads...)
	a.EventWrites = append(a.EventWrites, other.EventWrites...)
	a.ReadsAllResources = a.ReadsAllResources || other.ReadsAllResources
}

// IsCompatible reports whether a and other may execute concurrently: true
// iff neither side writes something the other reads or writes.
// ReadsAllResources is compatible with other only if other writes no
// resource.
func (a AccessMeta) IsCompatible(other AccessMeta) bool {
	if a.ReadsAllResources && (len(other.ResWrites) > 0 || other.writesAnyRes()) {
		return false
	}
	if other.ReadsAllResources && (len(a.ResWrites) > 0 || a.writesAnyRes()) {
		return false
	}
	return !a.Conflicts(other)
}

func (a AccessMeta) writesAnyRes() bool { return len(a.ResWrites) > 0 }

// Conflict returns a witnessing type for diagnostics if a and other
// conflict, along with which universe it was found in ("component",
// "resource", or "event").
func (a AccessMeta) Conflict(other AccessMeta) (t reflect.Type, universe string, ok bool) {
	if t, ok = findConflict(a.Writes, other.Reads, other.readsSet); ok {
		return t, "component", true
	}
	if t, ok = findConflict(a.Writes, other.Writes, other.writesSet); ok {
		return t, "component", true
	}
	if t, ok = findConflict(a.Reads, other.Writes, other.writesSet); ok {
		return t, "component", true
	}
	if t, ok = findConflict(a.ResWrites, other.ResReads, other.resReadsSet); ok {
		return t, "resource", true
	}
	if t, ok = findConflict(a.ResWrites, other.ResWrites, other.resWritesSet); ok {
		return t, "resource", true
	}
	if t, ok = findConflict(a.ResReads, other.ResWrites, other.resWritesSet); ok {
		return t, "resource", true
	}
	if t, ok = findConflict(a.EventWrites, other.EventReads, other.eventReadsSet); ok {
		return t, "event", true
	}
	if t, ok = findConflict(a.EventWrites, other.EventWrites, other.eventWritesSet); ok {
		return t, "event", true
	}
	if t, ok = findConflict(a.EventReads, other.EventWrites, other.eventWritesSet); ok {
		return t, "event", true
	}
	return nil, "", false
}

// Conflicts reports whether a and other contend for the same type,
// without identifying which one. Prefers precomputed sets (PrepareSets)
// when available, falling back to linear scans otherwise.
func (a AccessMeta) Conflicts(other AccessMeta) bool {
	_, _, ok := a.Conflict(other)
	return ok
}

// SelfConflict reports whether a single AccessMeta declares write access
// together with another read or write on the same type. This is
// distinct from Conflicts, which is only meaningful pairwise, between
// two different systems: reusing Conflicts(a, a) would misfire, since
// a's Writes list always intersects itself once any write is declared
// at all, and that is not a self-conflict, just a single write. Within
// one universe, a type both read and written, or listed twice among
// the writes, counts; a repeated read does not.
func (a AccessMeta) SelfConflict() (t reflect.Type, universe string, ok bool) {
	if t, ok = findConflict(a.Writes, a.Reads, a.readsSet); ok {
		return t, "component", true
	}
	if t, ok = findConflict(a.ResWrites, a.ResReads, a.resReadsSet); ok {
		return t, "resource", true
	}
	if t, ok = findConflict(a.EventWrites, a.EventReads, a.eventReadsSet); ok {
		return t, "event", true
	}
	for _, u := range []struct {
		name   string
		writes []reflect.Type
	}{{"component", a.Writes}, {"resource", a.ResWrites}, {"event", a.EventWrites}} {
		seen := make(map[reflect.Type]struct{}, len(u.writes))
		for _, w := range u.writes {
			if _, dup := seen[w]; dup {
				return w, u.name, true
			}
			seen[w] = struct{}{}
		}
	}
	return nil, "", false
}

func findConflict(candidates []reflect.Type, fallback []reflect.Type, set map[reflect.Type]struct{}) (reflect.Type, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	if set != nil {
		for _, c := range candidates {
			if _, ok := set[c]; ok {
				return c, true
			}
		}
		return nil, false
	}
	for _, c := range candidates {
		for _, f := range fallback {
			if c == f {
				return c, true
			}
		}
	}
	return nil, false
}

// CondensedAccess is AccessMeta projected onto a dense per-universe type
// vocabulary: two fixed-width bitsets per universe (reads-and-writes,
// writes-only) plus the reads-all flags. IsCompatible on this form is a
// handful of word-wise bitset intersection tests — the hot path the
// parallel executor evaluates on every scheduling decision.
type CondensedAccess struct {
	compRW, compW *BitSet
	resRW, resW   *BitSet
	evtRW, evtW   *BitSet
	readsAllRes   bool
}

// Condense projects a onto ti, allocating dense indices for any
// previously-unseen type.
func (a AccessMeta) Condense(ti *TypeIndex) *CondensedAccess {
	c := &CondensedAccess{
		compRW:      &BitSet{},
		compW:       &BitSet{},
		resRW:       &BitSet{},
		resW:        &BitSet{},
		evtRW:       &BitSet{},
		evtW:        &BitSet{},
		readsAllRes: a.ReadsAllResources,
	}
	for _, t := range a.Reads {
		c.compRW.Set(ti.indexOf(t))
	}
	for _, t := range a.Writes {
		idx := ti.indexOf(t)
		c.compRW.Set(idx)
		c.compW.Set(idx)
	}
	for _, t := range a.ResReads {
		c.resRW.Set(ti.indexOf(t))
	}
	for _, t := range a.ResWrites {
		idx := ti.indexOf(t)
		c.resRW.Set(idx)
		c.resW.Set(idx)
	}
	for _, t := range a.EventReads {
		c.evtRW.Set(ti.indexOf(t))
	}
	for _, t := range a.EventWrites {
		idx := ti.indexOf(t)
		c.evtRW.Set(idx)
		c.evtW.Set(idx)
	}
	return c
}

// IsCompatible mirrors AccessMeta.IsCompatible on the condensed
// representation: two O(words) intersection tests per universe instead
// of map lookups.
func (c *CondensedAccess) IsCompatible(other *CondensedAccess) bool {
	if c == nil || other == nil {
		return true
	}
	if c.readsAllRes && !other.resW.IsEmpty() {
		return false
	}
	if other.readsAllRes && !c.resW.IsEmpty() {
		return false
	}
	if c.compW.Intersects(other.compRW) || other.compW.Intersects(c.compRW) {
		return false
	}
	if c.resW.Intersects(other.resRW) || other.resW.Intersects(c.resRW) {
		return false
	}
	if c.evtW.Intersects(other.evtRW) || other.evtW.Intersects(c.evtRW) {
		return false
	}
	return true
}

// Extend unions other into c, used to grow the executor's active-access
// accumulator as systems start.
func (c *CondensedAccess) Extend(other *CondensedAccess) {
	if c == nil || other == nil {
		return
	}
	c.compRW.Union(other.compRW)
	c.compW.Union(other.compW)
	c.resRW.Union(other.resRW)
	c.resW.Union(other.resW)
	c.evtRW.Union(other.evtRW)
	c.evtW.Union(other.evtW)
	c.readsAllRes = c.readsAllRes || other.readsAllRes
}

// Reset clears c back to the empty access set, reused by the executor's
// active-access accumulator between passes.
func (c *CondensedAccess) Reset() {
	if c == nil {
		return
	}
	c.compRW.Reset()
	c.compW.Reset()
	c.resRW.Reset()
	c.resW.Reset()
	c.evtRW.Reset()
	c.evtW.Reset()
	c.readsAllRes = false
}

func newEmptyCondensedAccess() *CondensedAccess {
	return &CondensedAccess{compRW: &BitSet{}, compW: &BitSet{}, resRW: &BitSet{}, resW: &BitSet{}, evtRW: &BitSet{}, evtW: &BitSet{}}
}
