// Command test is a small runnable demo of bevi's stage/system/event
// wiring: a ledger resource mutated by several ordered, throttled
// systems that also exercise the event bus's broadcast and
// cancellation paths.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/oriumgames/bevi"
)

type Ledger struct {
	Accounts []int32
}

type CancelEvent struct {
	Msg string
}

type BonusEvent struct {
	Amount int32
	Note   string
}

type TickEvent struct {
	When time.Time
}

func main() {
	a := bevi.NewApp()

	a.AddSystem(bevi.Startup, bevi.SystemMeta{Label: "creation"}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		bevi.SetResource(r, &Ledger{Accounts: []int32{30, 50}})
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "tick",
		Every: 500 * time.Millisecond,
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		writer := bevi.WriterFor[TickEvent](a.Events())
		writer.Emit(TickEvent{When: time.Now()})
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "increase_money",
		After: []string{"tick"},
		Every: time.Second,
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		ledger, _ := bevi.GetResource[*Ledger](r)
		for i := range ledger.Accounts {
			ledger.Accounts[i]++
		}

		writerBonus := bevi.WriterFor[BonusEvent](a.Events())
		writerCancel := bevi.WriterFor[CancelEvent](a.Events())
		writerBonus.EmitMany([]BonusEvent{
			{Amount: 2, Note: "streak"},
			{Amount: 3, Note: "combo"},
		})
		go func() {
			res := writerCancel.EmitResult(CancelEvent{Msg: "please_cancel"})
			if res.WaitCancelled(ctx) {
				fmt.Println("emitter: event was cancelled by a reader")
			} else {
				fmt.Println("emitter: event completed without cancellation")
			}
		}()
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "bonus_consumer",
		After: []string{"increase_money"},
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		ledger, _ := bevi.GetResource[*Ledger](r)
		reader := bevi.ReaderFor[BonusEvent](a.Events())
		reader.ForEach(func(ev BonusEvent) bool {
			for i := range ledger.Accounts {
				ledger.Accounts[i] += ev.Amount
			}
			return true
		})
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "tick_logger",
		After: []string{"tick"},
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		reader := bevi.ReaderFor[TickEvent](a.Events())
		reader.ForEach(func(TickEvent) bool { return true })
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "print_money",
		After: []string{"increase_money", "bonus_consumer"},
		Every: time.Second,
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		ledger, _ := bevi.GetResource[*Ledger](r)
		total := int32(0)
		for _, v := range ledger.Accounts {
			total += v
		}
		fmt.Println("entities:", len(ledger.Accounts), "total:", total)
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{Label: "cancel_consumer"}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		reader := bevi.ReaderFor[CancelEvent](a.Events())
		reader.ForEach(func(ev CancelEvent) bool {
			fmt.Println("consumer: received event:", ev.Msg, "- cancelling")
			reader.Cancel()
			return true
		})
		return nil
	})

	a.AddSystem(bevi.Update, bevi.SystemMeta{
		Label: "audit",
		After: []string{"print_money"},
		Every: 1500 * time.Millisecond,
	}, func(ctx context.Context, w bevi.World, r bevi.Resources) error {
		ledger, _ := bevi.GetResource[*Ledger](r)
		min := int32(1<<31 - 1)
		max := int32(-1 << 31)
		for _, v := range ledger.Accounts {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		fmt.Println("audit range:", min, max)
		return nil
	})

	if err := a.Run(context.Background()); err != nil {
		fmt.Println("app stopped:", err)
	}
}
