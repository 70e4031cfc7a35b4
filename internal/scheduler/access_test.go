package scheduler

import (
	"reflect"
	"testing"
)

func TestAccessMetaConflicts(t *testing.T) {
	intType := reflect.TypeOf(0)
	stringType := reflect.TypeOf("")

	tests := []struct {
		name      string
		a, b      AccessMeta
		conflicts bool
	}{
		{
			name:      "read-read no conflict",
			a:         AccessMeta{Reads: []reflect.Type{intType}},
			b:         AccessMeta{Reads: []reflect.Type{intType}},
			conflicts: false,
		},
		{
			name:      "write-read conflict",
			a:         AccessMeta{Writes: []reflect.Type{intType}},
			b:         AccessMeta{Reads: []reflect.Type{intType}},
			conflicts: true,
		},
		{
			name:      "write-write conflict",
			a:         AccessMeta{Writes: []reflect.Type{intType}},
			b:         AccessMeta{Writes: []reflect.Type{intType}},
			conflicts: true,
		},
		{
			name:      "disjoint types no conflict",
			a:         AccessMeta{Writes: []reflect.Type{intType}},
			b:         AccessMeta{Writes: []reflect.Type{stringType}},
			conflicts: false,
		},
		{
			name:      "resource write vs resource read conflicts",
			a:         AccessMeta{ResWrites: []reflect.Type{intType}},
			b:         AccessMeta{ResReads: []reflect.Type{intType}},
			conflicts: true,
		},
		{
			name:      "event write vs event read conflicts",
			a:         AccessMeta{EventWrites: []reflect.Type{intType}},
			b:         AccessMeta{EventReads: []reflect.Type{intType}},
			conflicts: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Conflicts(tc.b)
			if got != tc.conflicts {
				t.Fatalf("Conflicts = %v, want %v", got, tc.conflicts)
			}
			if got == tc.a.IsCompatible(tc.b) {
				t.Fatalf("IsCompatible should be the negation of Conflicts")
			}
		})
	}
}

func TestAccessMetaReadsAllResourcesBlocksWrites(t *testing.T) {
	intType := reflect.TypeOf(0)
	all := AccessMeta{ReadsAllResources: true}
	writer := AccessMeta{ResWrites: []reflect.Type{intType}}

	if all.IsCompatible(writer) {
		t.Fatalf("a system reading all resources must be incompatible with any resource writer")
	}
	reader := AccessMeta{ResReads: []reflect.Type{intType}}
	if !all.IsCompatible(reader) {
		t.Fatalf("a system reading all resources should remain compatible with a plain reader")
	}
}

func TestSelfConflict(t *testing.T) {
	intType := reflect.TypeOf(0)
	stringType := reflect.TypeOf("")

	tests := []struct {
		name     string
		a        AccessMeta
		universe string
		ok       bool
	}{
		{
			name:     "read and write same component conflicts",
			a:        AccessMeta{Reads: []reflect.Type{intType}, Writes: []reflect.Type{intType}},
			universe: "component",
			ok:       true,
		},
		{
			name: "write alone is not a self-conflict",
			a:    AccessMeta{Writes: []reflect.Type{intType}},
			ok:   false,
		},
		{
			name: "repeated read is not a self-conflict",
			a:    AccessMeta{Reads: []reflect.Type{intType, intType}},
			ok:   false,
		},
		{
			name: "disjoint read and write is not a self-conflict",
			a:    AccessMeta{Reads: []reflect.Type{stringType}, Writes: []reflect.Type{intType}},
			ok:   false,
		},
		{
			name:     "resource read and write same type conflicts",
			a:        AccessMeta{ResReads: []reflect.Type{intType}, ResWrites: []reflect.Type{intType}},
			universe: "resource",
			ok:       true,
		},
		{
			name:     "event read and write same type conflicts",
			a:        AccessMeta{EventReads: []reflect.Type{intType}, EventWrites: []reflect.Type{intType}},
			universe: "event",
			ok:       true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, universe, ok := tc.a.SelfConflict()
			if ok != tc.ok {
				t.Fatalf("SelfConflict ok = %v, want %v", ok, tc.ok)
			}
			if ok && universe != tc.universe {
				t.Fatalf("SelfConflict universe = %q, want %q", universe, tc.universe)
			}
		})
	}
}

func TestCondensedAccessMatchesAccessMeta(t *testing.T) {
	intType := reflect.TypeOf(0)
	stringType := reflect.TypeOf("")

	a := AccessMeta{Writes: []reflect.Type{intType}}
	b := AccessMeta{Reads: []reflect.Type{intType}}
	c := AccessMeta{Reads: []reflect.Type{stringType}}

	ti := &TypeIndex{}
	ca := a.Condense(ti)
	cb := b.Condense(ti)
	cc := c.Condense(ti)

	if ca.IsCompatible(cb) != a.IsCompatible(b) {
		t.Fatalf("condensed compatibility for conflicting pair diverges from AccessMeta")
	}
	if ca.IsCompatible(cc) != a.IsCompatible(c) {
		t.Fatalf("condensed compatibility for disjoint pair diverges from AccessMeta")
	}
}

func TestBitSetBasics(t *testing.T) {
	b := NewBitSet(0)
	b.Set(3)
	b.Set(130)

	if !b.Has(3) || !b.Has(130) {
		t.Fatalf("expected bits 3 and 130 to be set")
	}
	if b.Has(4) {
		t.Fatalf("bit 4 should not be set")
	}
	if b.Count() != 2 {
		t.Fatalf("expected count 2, got %d", b.Count())
	}

	other := FromIndices(130, 200)
	if !b.Intersects(other) {
		t.Fatalf("expected intersection on bit 130")
	}

	b.Clear(130)
	if b.Intersects(other) {
		t.Fatalf("expected no intersection after clearing bit 130")
	}

	b.Difference(FromIndices(3))
	if !b.IsEmpty() {
		t.Fatalf("expected bitset to be empty after difference")
	}
}

func TestBitSetForEachAscending(t *testing.T) {
	b := FromIndices(5, 1, 64, 3)
	var got []int
	b.ForEach(func(idx int) bool {
		got = append(got, idx)
		return true
	})
	want := []int{1, 3, 5, 64}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
