package bevi

import (
	"reflect"

	"github.com/oriumgames/bevi/internal/scheduler"
)

// World is the abstract contract a system's declared archetype-component
// access is checked against. This module never depends on a concrete
// archetype/entity storage implementation (out of scope per its
// purpose) — a real ECS storage package plugs in by satisfying this
// interface.
type World = scheduler.World

// Archetype is one shape of component storage within a World.
type Archetype = scheduler.Archetype

// Resources is a type-keyed store for singleton values a system may
// read or write, independent of any entity/archetype storage.
type Resources = scheduler.Resources

// NewResources returns the default sync.Map-backed Resources
// implementation, sufficient for single-process use.
func NewResources() Resources {
	return scheduler.NewMapResources()
}

// GetResource fetches a typed resource, reporting whether it was present.
func GetResource[T any](r Resources) (T, bool) {
	return scheduler.GetResource[T](r)
}

// SetResource stores a typed resource.
func SetResource[T any](r Resources, v T) {
	scheduler.SetResource[T](r, v)
}

// NewStaticWorld wraps a fixed slice of archetypes as a World whose
// generation never changes — useful for tests and for systems that
// don't need live archetype discovery.
func NewStaticWorld(archetypes ...Archetype) World {
	return scheduler.NewStaticWorld(archetypes...)
}

// TypeOf is the canonical helper for obtaining the component/resource/
// event identity of T, stripping pointer indirection before keying by
// reflect.Type.
func TypeOf[T any]() reflect.Type {
	return baseType(reflect.TypeOf((*T)(nil)).Elem())
}

func baseType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
