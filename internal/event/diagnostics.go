package event

// Diagnostics observes event throughput per type — an optional hook a
// host wires in via Bus.SetDiagnostics to count emissions without the
// bus depending on any particular logging/metrics library.
type Diagnostics interface {
	EventEmit(name string, count int)
}

// diagSetter lets Bus.SetDiagnostics reach every store regardless of its
// type parameter, since sync.Map erases it.
type diagSetter interface {
	setDiag(Diagnostics)
}

func (s *store[T]) setDiag(d Diagnostics) {
	s.mu.Lock()
	s.diag = d
	s.mu.Unlock()
}
