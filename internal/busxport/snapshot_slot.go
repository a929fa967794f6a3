package busxport

import "sync"

// SnapshotSlot is the single-slot, last-writer-wins value the physics
// worker publishes to and the I/O worker reads from (§4.7). There is
// no queuing: a reader that misses a publish simply sees the next one.
type SnapshotSlot[T any] struct {
	mu    sync.Mutex
	value T
	valid bool
}

// Publish overwrites the slot with v.
func (s *SnapshotSlot[T]) Publish(v T) {
	s.mu.Lock()
	s.value = v
	s.valid = true
	s.mu.Unlock()
}

// Read copies the current slot value out. ok is false if nothing has
// been published yet.
func (s *SnapshotSlot[T]) Read() (v T, ok bool) {
	s.mu.Lock()
	v, ok = s.value, s.valid
	s.mu.Unlock()
	return v, ok
}
