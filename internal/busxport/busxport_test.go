package busxport

import (
	"testing"
	"time"
)

func TestMailboxTryWriteBusyUntilDrained(t *testing.T) {
	var m Mailbox[int]
	if !m.TryWrite(1) {
		t.Fatalf("first write should succeed on an empty mailbox")
	}
	if m.TryWrite(2) {
		t.Fatalf("second write should report busy while a command is pending")
	}
	v, ok := m.Drain()
	if !ok || v != 1 {
		t.Fatalf("Drain() = %d, %v, want 1, true", v, ok)
	}
	if _, ok := m.Drain(); ok {
		t.Fatalf("Drain() on an empty mailbox should report ok=false")
	}
}

func TestMailboxWriteRetriesThenGivesUp(t *testing.T) {
	var m Mailbox[int]
	m.TryWrite(1) // occupy the slot and never drain it

	start := time.Now()
	ok := m.Write(2, 3, time.Millisecond)
	if ok {
		t.Fatalf("Write should fail when the slot never drains")
	}
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Errorf("Write returned too quickly (%s) for 3 attempts at 1ms spacing", elapsed)
	}
}

func TestSnapshotSlotLastWriterWins(t *testing.T) {
	var s SnapshotSlot[int]
	if _, ok := s.Read(); ok {
		t.Fatalf("Read on an unpublished slot should report ok=false")
	}
	s.Publish(1)
	s.Publish(2)
	v, ok := s.Read()
	if !ok || v != 2 {
		t.Fatalf("Read() = %d, %v, want 2, true", v, ok)
	}
}
