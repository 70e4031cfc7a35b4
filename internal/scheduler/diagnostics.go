package scheduler

import "time"

// Diagnostics observes system execution without participating in
// scheduling decisions. The root package's LogrusDiagnostics is the
// default production implementation; NopDiagnostics is used when no
// observability is wanted, and tests commonly supply a capturing
// implementation.
type Diagnostics interface {
	SystemStart(traceID, name string)
	SystemEnd(traceID, name string, err error, duration time.Duration)
}

// NopDiagnostics discards every event.
type NopDiagnostics struct{}

func (NopDiagnostics) SystemStart(string, string)                      {}
func (NopDiagnostics) SystemEnd(string, string, error, time.Duration) {}
