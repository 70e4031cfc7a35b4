package bevi

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestAddSystemFloorsEveryAtConfigDefault(t *testing.T) {
	t.Setenv("BEVI_DEFAULT_EVERY", "50ms")
	a := NewApp()

	var count atomic.Int32
	a.AddSystem(Update, SystemMeta{Label: "unthrottled"}, func(ctx context.Context, w World, r Resources) error {
		count.Add(1)
		return nil
	})

	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("startup: %v", err)
	}
	const ticks = 20
	for i := 0; i < ticks; i++ {
		if err := a.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := count.Load(); got >= ticks {
		t.Fatalf("expected DefaultEvery to floor an unthrottled system's rate, ran %d times across %d ticks", got, ticks)
	}
	if count.Load() < 1 {
		t.Fatalf("expected the system to run at least once")
	}
}

func TestAddSystemKeepsExplicitEveryAboveFloor(t *testing.T) {
	t.Setenv("BEVI_DEFAULT_EVERY", "1ms")
	a := NewApp()

	var count atomic.Int32
	a.AddSystem(Update, SystemMeta{Label: "slow", Every: time.Hour}, func(ctx context.Context, w World, r Resources) error {
		count.Add(1)
		return nil
	})

	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("startup: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := a.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := count.Load(); got != 1 {
		t.Fatalf("expected an explicit Every well above the floor to be left untouched (ran once), got %d runs", got)
	}
}

func TestAddSystemRunsEveryTickWithoutDefaultEvery(t *testing.T) {
	t.Setenv("BEVI_DEFAULT_EVERY", "0s")
	a := NewApp()

	var count atomic.Int32
	a.AddSystem(Update, SystemMeta{Label: "plain"}, func(ctx context.Context, w World, r Resources) error {
		count.Add(1)
		return nil
	})

	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("startup: %v", err)
	}
	const ticks = 5
	for i := 0; i < ticks; i++ {
		if err := a.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := count.Load(); got != ticks {
		t.Fatalf("expected an unthrottled system to run every tick when DefaultEvery is unset, got %d of %d", got, ticks)
	}
}
