package bevi

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oriumgames/bevi/internal/event"
	"github.com/oriumgames/bevi/internal/scheduler"
)

// Diagnostics observes system execution and event throughput. Its
// SystemStart/SystemEnd methods have the same shape as
// scheduler.Diagnostics, keyed by the trace id App stamps once per pass
// over its startup or update stages (a Startup or Tick call, or one
// iteration of Run) and shares across every stage of that pass;
// EventEmit additionally makes it an event.Diagnostics, so one sink can
// observe both.
type Diagnostics interface {
	SystemStart(traceID, name string)
	SystemEnd(traceID, name string, err error, duration time.Duration)
	EventEmit(name string, count int)
}

// NopDiagnostics discards every event.
type NopDiagnostics struct{}

func (NopDiagnostics) SystemStart(string, string)                     {}
func (NopDiagnostics) SystemEnd(string, string, error, time.Duration) {}
func (NopDiagnostics) EventEmit(string, int)                          {}

// LogrusDiagnostics logs system lifecycle events as structured fields
// through a *logrus.Logger — the default production Diagnostics.
type LogrusDiagnostics struct {
	Log *logrus.Logger
}

// NewLogrusDiagnostics constructs a LogrusDiagnostics backed by log, or
// by logrus.StandardLogger() if log is nil.
func NewLogrusDiagnostics(log *logrus.Logger) *LogrusDiagnostics {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusDiagnostics{Log: log}
}

func (d *LogrusDiagnostics) SystemStart(traceID, name string) {
	d.Log.WithFields(logrus.Fields{"trace": traceID, "system": name}).Debug("system start")
}

func (d *LogrusDiagnostics) SystemEnd(traceID, name string, err error, duration time.Duration) {
	entry := d.Log.WithFields(logrus.Fields{"trace": traceID, "system": name, "duration": duration})
	if err != nil {
		entry.WithError(err).Error("system end")
		return
	}
	entry.Debug("system end")
}

func (d *LogrusDiagnostics) EventEmit(name string, count int) {
	d.Log.WithFields(logrus.Fields{"event": name, "count": count}).Debug("event emit")
}

// internalDiagnostics adapts bevi.Diagnostics to scheduler.Diagnostics
// and event.Diagnostics, and tolerates a nil inner sink.
type internalDiagnostics struct {
	d Diagnostics
}

func (da *internalDiagnostics) SystemStart(traceID, name string) {
	if da.d != nil {
		da.d.SystemStart(traceID, name)
	}
}

func (da *internalDiagnostics) SystemEnd(traceID, name string, err error, duration time.Duration) {
	if da.d != nil {
		da.d.SystemEnd(traceID, name, err, duration)
	}
}

func (da *internalDiagnostics) EventEmit(name string, count int) {
	if da.d != nil {
		da.d.EventEmit(name, count)
	}
}

var _ scheduler.Diagnostics = (*internalDiagnostics)(nil)
var _ event.Diagnostics = (*internalDiagnostics)(nil)
