package scheduler

import (
	"context"
	"errors"
	"testing"
)

func TestCommandBufferAppliesInOrder(t *testing.T) {
	buf := NewCommandBuffer()
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		buf.Push(func(w World, r Resources) error {
			order = append(order, i)
			return nil
		})
	}
	if buf.Len() != 3 {
		t.Fatalf("expected 3 queued commands, got %d", buf.Len())
	}
	if err := buf.Apply(NewStaticWorld(), NewMapResources()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := []int{0, 1, 2}
	for i, v := range want {
		if order[i] != v {
			t.Fatalf("got order %v, want %v", order, want)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("expected buffer drained after Apply, got %d remaining", buf.Len())
	}
}

func TestCommandBufferStopsOnFirstError(t *testing.T) {
	buf := NewCommandBuffer()
	boom := errors.New("boom")
	ran := 0
	buf.Push(func(w World, r Resources) error { ran++; return nil })
	buf.Push(func(w World, r Resources) error { ran++; return boom })
	buf.Push(func(w World, r Resources) error { ran++; return nil })

	err := buf.Apply(NewStaticWorld(), NewMapResources())
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if ran != 2 {
		t.Fatalf("expected the third command to be skipped, ran = %d", ran)
	}
}

func TestFuncSystemAppliesOwnCommandBuffer(t *testing.T) {
	applied := false
	sys := &FuncSystem{
		Meta:          SystemMeta{Label: "writer"},
		CommandBuffer: NewCommandBuffer(),
		Fn: func(ctx context.Context, w World, r Resources) error {
			return nil
		},
	}
	sys.CommandBuffer.Push(func(w World, r Resources) error {
		applied = true
		return nil
	})

	if err := sys.RunUnsafe(context.Background(), NewStaticWorld(), NewMapResources()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := sys.ApplyBuffers(NewStaticWorld(), NewMapResources()); err != nil {
		t.Fatalf("apply buffers: %v", err)
	}
	if !applied {
		t.Fatalf("expected the queued command to run")
	}
}
