package bevi

import (
	"reflect"
	"time"

	"github.com/oriumgames/bevi/internal/scheduler"
)

// AccessMeta describes what component, resource, and event types a
// system reads or writes.
type AccessMeta struct {
	Reads       []reflect.Type
	Writes      []reflect.Type
	ResReads    []reflect.Type
	ResWrites   []reflect.Type
	EventReads  []reflect.Type
	EventWrites []reflect.Type

	ReadsAllResources bool
}

// NewAccess returns an empty AccessMeta.
func NewAccess() AccessMeta {
	return AccessMeta{}
}

// AccessRead adds a component read access.
func AccessRead[T any](acc *AccessMeta) {
	acc.Reads = append(acc.Reads, TypeOf[T]())
}

// AccessWrite adds a component write access.
func AccessWrite[T any](acc *AccessMeta) {
	acc.Writes = append(acc.Writes, TypeOf[T]())
}

// AccessResRead adds a resource read access.
func AccessResRead[T any](acc *AccessMeta) {
	acc.ResReads = append(acc.ResReads, TypeOf[T]())
}

// AccessResWrite adds a resource write access.
func AccessResWrite[T any](acc *AccessMeta) {
	acc.ResWrites = append(acc.ResWrites, TypeOf[T]())
}

// AccessEventRead adds an event read access.
func AccessEventRead[E any](acc *AccessMeta) {
	acc.EventReads = append(acc.EventReads, TypeOf[E]())
}

// AccessEventWrite adds an event write access.
func AccessEventWrite[E any](acc *AccessMeta) {
	acc.EventWrites = append(acc.EventWrites, TypeOf[E]())
}

// MergeAccess appends src's declarations onto dst.
func MergeAccess(dst, src *AccessMeta) {
	dst.Reads = append(dst.Reads, src.Reads...)
	dst.Writes = append(dst.Writes, src.Writes...)
	dst.ResReads = append(dst.ResReads, src.ResReads...)
	dst.ResWrites = append(dst.ResWrites, src.ResWrites...)
	dst.EventReads = append(dst.EventReads, src.EventReads...)
	dst.EventWrites = append(dst.EventWrites, src.EventWrites...)
	dst.ReadsAllResources = dst.ReadsAllResources || src.ReadsAllResources
}

func (a AccessMeta) toInternal() scheduler.AccessMeta {
	return scheduler.AccessMeta{
		Reads:             a.Reads,
		Writes:            a.Writes,
		ResReads:          a.ResReads,
		ResWrites:         a.ResWrites,
		EventReads:        a.EventReads,
		EventWrites:       a.EventWrites,
		ReadsAllResources: a.ReadsAllResources,
	}
}

// SystemMeta describes a system's scheduling metadata: what it touches,
// where it's ordered relative to other systems, and how often it runs.
type SystemMeta struct {
	Access AccessMeta

	Label  string
	Before []string
	After  []string

	Exclusive      bool
	InsertionPoint InsertionPoint
	ThreadLocal    bool

	Every time.Duration
}

// InsertionPoint is where an exclusive system runs within a stage pass.
type InsertionPoint = scheduler.InsertionPoint

const (
	AtStart        = scheduler.AtStart
	BeforeCommands = scheduler.BeforeCommands
	AtEnd          = scheduler.AtEnd
)

func (m SystemMeta) toInternal() scheduler.SystemMeta {
	return scheduler.SystemMeta{
		Access:         m.Access.toInternal(),
		Label:          m.Label,
		Before:         m.Before,
		After:          m.After,
		Exclusive:      m.Exclusive,
		InsertionPoint: m.InsertionPoint,
		ThreadLocal:    m.ThreadLocal,
		Every:          m.Every,
	}
}
