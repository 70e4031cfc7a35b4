package main

import (
	"context"
	"time"

	"github.com/oriumgames/bevi"
)

// demoLedger is the shared state the demo's systems mutate, standing in
// for whatever resource a real host application would register.
type demoLedger struct {
	balance int32
}

// buildDemoApp registers a small fixed set of ordered, throttled systems
// across Startup and Update — enough to exercise dependency ordering
// and the Every throttle, without pulling in a concrete World/archetype
// backend.
func buildDemoApp() *bevi.App {
	a := bevi.NewApp()

	a.AddSystem(bevi.Startup, bevi.SystemMeta{Label: "seed_ledger"}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		bevi.SetResource(r, &demoLedger{balance: 100})
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "accrue_interest",
		Every: time.Second,
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		ledger, _ := bevi.GetResource[*demoLedger](r)
		ledger.balance += ledger.balance / 100
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "apply_fees",
		After: []string{"accrue_interest"},
		Every: time.Second,
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		ledger, _ := bevi.GetResource[*demoLedger](r)
		ledger.balance -= 1
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "report",
		After: []string{"apply_fees"},
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		return nil
	})

	return a
}
