package bevi

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oriumgames/bevi/internal/config"
	"github.com/oriumgames/bevi/internal/event"
	"github.com/oriumgames/bevi/internal/scheduler"
	"github.com/oriumgames/bevi/internal/workpool"
)

// App wires a Schedule of the six standard stages to a World, a
// Resources store, and an event bus, and drives it to completion or
// until the process receives an interrupt.
type App struct {
	world     World
	resources Resources
	schedule  *scheduler.Schedule
	events    *event.Bus
	diag      *internalDiagnostics
	cfg       config.Config
}

var allStages = []Stage{PreStartup, Startup, PostStartup, PreUpdate, Update, PostUpdate}

// NewApp constructs an App with the six standard stages pre-registered,
// a Resources store, a fresh event bus, and tuning loaded via
// internal/config (environment variables and an optional bevi.yaml on
// the given search paths). Every stage's parallel executor shares one
// worker pool sized to cfg.WorkerPoolSize.
func NewApp(configPaths ...string) *App {
	cfg, err := config.Load(configPaths...)
	if err != nil {
		logrus.WithError(err).Warn("bevi: failed to load config, using defaults")
	}

	a := &App{
		world:     NewStaticWorld(),
		resources: NewResources(),
		schedule:  scheduler.NewSchedule(),
		events:    event.NewBus(),
		diag:      &internalDiagnostics{d: NopDiagnostics{}},
		cfg:       cfg,
	}

	pool := workpool.New(cfg.WorkerPoolSize)
	for _, stage := range allStages {
		s := scheduler.NewParallelStage(stage.String())
		s.Executor = scheduler.NewParallelExecutorWithPool(pool)
		if err := a.schedule.AddStage(stage.String(), s); err != nil {
			panic(fmt.Sprintf("bevi: duplicate default stage %s: %v", stage, err))
		}
	}
	return a
}

// WithDiagnostics installs d as the App's diagnostics sink, in place of
// the default no-op sink, observing both system execution and event
// throughput.
func (a *App) WithDiagnostics(d Diagnostics) *App {
	a.diag.d = d
	a.events.SetDiagnostics(a.diag)
	return a
}

// WithWorld replaces the App's World.
func (a *App) WithWorld(w World) *App {
	a.world = w
	return a
}

// Plugin builds out an App's systems and stages.
type Plugin interface {
	Build(app *App)
}

// AddPlugin invokes p.Build(a).
func (a *App) AddPlugin(p Plugin) *App {
	p.Build(a)
	return a
}

// AddPlugins invokes Build on every plugin in order.
func (a *App) AddPlugins(plugins []Plugin) *App {
	for _, p := range plugins {
		p.Build(a)
	}
	return a
}

// AddSystem registers fn under the given stage with the given metadata.
// A system's Every is floored at cfg.DefaultEvery, if set, so no system
// can accidentally busy-spin faster than the configured floor.
func (a *App) AddSystem(stage Stage, meta SystemMeta, fn func(ctx context.Context, w World, r Resources) error) *App {
	internalMeta := meta.toInternal()
	if a.cfg.DefaultEvery > 0 && internalMeta.Every < a.cfg.DefaultEvery {
		internalMeta.Every = a.cfg.DefaultEvery
	}
	sys := &scheduler.FuncSystem{Meta: internalMeta, Fn: fn}
	a.schedule.GetStage(stage.String()).AddSystem(sys)
	return a
}

// AddSystems calls reg with the receiver so callers can register several
// systems in one expression.
func (a *App) AddSystems(reg func(*App)) *App {
	reg(a)
	return a
}

// Stage returns the named default stage for advanced configuration:
// custom run criteria, nested sets, or inserting extra stages around it.
func (a *App) Stage(stage Stage) *scheduler.SystemStage {
	return a.schedule.GetStage(stage.String())
}

// Schedule exposes the underlying Schedule for advanced wiring, such as
// AddStageBefore/AddStageAfter around the default six stages.
func (a *App) Schedule() *scheduler.Schedule {
	return a.schedule
}

// Config returns the tuning knobs loaded at construction time.
func (a *App) Config() config.Config {
	return a.cfg
}

// Run executes PreStartup/Startup/PostStartup once, then loops
// PreUpdate/Update/PostUpdate until ctx is cancelled or the process
// receives an interrupt or SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := a.runOnce(ctx, PreStartup, Startup, PostStartup); err != nil {
		return err
	}

	for ctx.Err() == nil {
		if err := a.runOnce(ctx, PreUpdate, Update, PostUpdate); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs exactly one PreUpdate/Update/PostUpdate cycle without
// installing a signal handler — callers that drive their own loop (such
// as cmd/bevisched run -n) should use this instead of Run.
func (a *App) Tick(ctx context.Context) error {
	return a.runOnce(ctx, PreUpdate, Update, PostUpdate)
}

// Startup runs PreStartup/Startup/PostStartup once. Callers that drive
// their own Tick loop (instead of calling Run) must call this first.
func (a *App) Startup(ctx context.Context) error {
	return a.runOnce(ctx, PreStartup, Startup, PostStartup)
}

func (a *App) runOnce(ctx context.Context, stages ...Stage) error {
	traceID := uuid.NewString()
	ctx = WithEventBus(ctx, a.events)
	for _, stage := range stages {
		if err := a.schedule.GetStage(stage.String()).RunOutermost(ctx, a.world, a.resources, a.diag, traceID); err != nil {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
	}
	a.events.CompleteNoReader()
	a.events.Advance()
	return nil
}

// World returns the App's World.
func (a *App) World() World { return a.world }

// Resources returns the App's Resources store.
func (a *App) Resources() Resources { return a.resources }

// Events returns the App's event bus.
func (a *App) Events() *event.Bus { return a.events }
