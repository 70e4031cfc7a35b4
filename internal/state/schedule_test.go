package state

import (
	"context"
	"testing"

	"github.com/oriumgames/bevi/internal/event"
	"github.com/oriumgames/bevi/internal/scheduler"
)

func trackingStage(label string, log *[]string) *scheduler.SystemStage {
	return scheduler.NewParallelStage(label).AddSystem(&scheduler.FuncSystem{
		Meta: scheduler.SystemMeta{Label: label},
		Fn: func(ctx context.Context, w scheduler.World, r scheduler.Resources) error {
			*log = append(*log, label)
			return nil
		},
	})
}

func TestStateScheduleRunsUpdateWhenNoTransition(t *testing.T) {
	var log []string
	d := NewDriver(event.NewBus(), phaseMenu)
	s := NewSchedule(d).OnUpdate(phaseMenu, trackingStage("menu_update", &log))

	if err := s.Run(context.Background(), NewStaticWorldForTest(), scheduler.NewMapResources(), scheduler.NopDiagnostics{}, "t"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(log) != 1 || log[0] != "menu_update" {
		t.Fatalf("got %v, want [menu_update]", log)
	}
}

func TestStateScheduleRunsExitThenEnterOnTransition(t *testing.T) {
	var log []string
	d := NewDriver(event.NewBus(), phaseMenu)
	s := NewSchedule(d).
		OnExit(phaseMenu, trackingStage("exit_menu", &log)).
		OnEnter(phasePlaying, trackingStage("enter_playing", &log)).
		OnUpdate(phasePlaying, trackingStage("playing_update", &log))

	if err := d.TryQueueTransition(phasePlaying); err != nil {
		t.Fatalf("queue: %v", err)
	}

	if err := s.Run(context.Background(), NewStaticWorldForTest(), scheduler.NewMapResources(), scheduler.NopDiagnostics{}, "t"); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"exit_menu", "enter_playing", "playing_update"}
	if len(log) != len(want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("got %v, want %v", log, want)
		}
	}
	if s.Current() != phasePlaying {
		t.Fatalf("expected current state to be phasePlaying, got %v", s.Current())
	}
}

func TestSameFrameScheduleChainsTransitionsQueuedDuringEnter(t *testing.T) {
	var log []string
	bus := event.NewBus()
	d := NewDriver(bus, phaseMenu)

	enterPlaying := scheduler.NewParallelStage("enter_playing").AddSystem(&scheduler.FuncSystem{
		Meta: scheduler.SystemMeta{Label: "enter_playing"},
		Fn: func(ctx context.Context, w scheduler.World, r scheduler.Resources) error {
			log = append(log, "enter_playing")
			return d.TryQueueTransition(phasePaused)
		},
	})

	s := NewSchedule(d).
		OnEnter(phasePlaying, enterPlaying).
		OnEnter(phasePaused, trackingStage("enter_paused", &log))

	if err := d.TryQueueTransition(phasePlaying); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := s.Run(context.Background(), NewStaticWorldForTest(), scheduler.NewMapResources(), scheduler.NopDiagnostics{}, "t"); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"enter_playing", "enter_paused"}
	if len(log) != len(want) {
		t.Fatalf("expected same-frame chaining to resolve both transitions in one Run, got %v", log)
	}
	if s.Current() != phasePaused {
		t.Fatalf("expected final state phasePaused, got %v", s.Current())
	}
}

func TestNextFrameScheduleStopsAfterOneTransition(t *testing.T) {
	var log []string
	bus := event.NewBus()
	d := NewDriver(bus, phaseMenu)

	enterPlaying := scheduler.NewParallelStage("enter_playing").AddSystem(&scheduler.FuncSystem{
		Meta: scheduler.SystemMeta{Label: "enter_playing"},
		Fn: func(ctx context.Context, w scheduler.World, r scheduler.Resources) error {
			log = append(log, "enter_playing")
			return d.TryQueueTransition(phasePaused)
		},
	})

	s := NewNextFrameSchedule(d).
		OnEnter(phasePlaying, enterPlaying).
		OnEnter(phasePaused, trackingStage("enter_paused", &log))

	if err := d.TryQueueTransition(phasePlaying); err != nil {
		t.Fatalf("queue: %v", err)
	}
	if err := s.Run(context.Background(), NewStaticWorldForTest(), scheduler.NewMapResources(), scheduler.NopDiagnostics{}, "t"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(log) != 1 || log[0] != "enter_playing" {
		t.Fatalf("expected next-frame scheduling to stop after one transition, got %v", log)
	}
	if s.Current() != phasePlaying {
		t.Fatalf("expected current state phasePlaying after first Run, got %v", s.Current())
	}

	// Second Run resolves the transition queued during the first one's enter stage.
	if err := s.Run(context.Background(), NewStaticWorldForTest(), scheduler.NewMapResources(), scheduler.NopDiagnostics{}, "t"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Current() != phasePaused {
		t.Fatalf("expected current state phasePaused after second Run, got %v", s.Current())
	}
}

func NewStaticWorldForTest() scheduler.World {
	return scheduler.NewStaticWorld()
}
