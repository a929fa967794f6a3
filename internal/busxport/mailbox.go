// Package busxport implements the two single-slot cross-core
// primitives spec.md §4.7 describes (a command mailbox and a
// telemetry snapshot), plus the pluggable half-duplex bus transport
// the I/O worker reads and writes (§6). Both slots are short-section
// mutex-guarded value copies, never aliased references, per the
// design note in §9.
package busxport

import (
	"sync"
	"time"
)

// Mailbox is a single-slot, type-parameterized command channel: the
// I/O worker writes, the physics worker drains. A write to an
// occupied slot reports busy rather than blocking or overwriting.
type Mailbox[T any] struct {
	mu      sync.Mutex
	pending *T
}

// TryWrite attempts to fill the slot. It returns false ("busy")
// without blocking if a command is already pending.
func (m *Mailbox[T]) TryWrite(cmd T) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		return false
	}
	v := cmd
	m.pending = &v
	return true
}

// Write retries TryWrite up to attempts times with interval between
// tries, returning false if the mailbox never drained in time (§5:
// "bounded retry, default 5 attempts at 1 ms"). It never blocks
// indefinitely.
func (m *Mailbox[T]) Write(cmd T, attempts int, interval time.Duration) bool {
	for i := 0; i < attempts; i++ {
		if m.TryWrite(cmd) {
			return true
		}
		if i < attempts-1 {
			time.Sleep(interval)
		}
	}
	return false
}

// Drain atomically copies out and empties the slot. ok is false when
// nothing was pending.
func (m *Mailbox[T]) Drain() (cmd T, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return cmd, false
	}
	cmd = *m.pending
	m.pending = nil
	return cmd, true
}

// DefaultWriteAttempts and DefaultWriteInterval are the bounded-retry
// defaults §5 specifies for mailbox writes.
const (
	DefaultWriteAttempts = 5
	DefaultWriteInterval = time.Millisecond
)
