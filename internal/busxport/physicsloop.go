package busxport

import (
	"time"

	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
)

// PhysicsLoop drives the wheel.Kernel at its fixed 100 Hz rate on its
// own goroutine (§3: "the physics core and the I/O core run as
// independent workers"), draining CommandMailbox and publishing into
// TelemetrySlot once per tick. It holds no lock on the kernel itself —
// Kernel.Tick is only ever called from this goroutine.
type PhysicsLoop struct {
	Kernel          *wheel.Kernel
	CommandMailbox  *Mailbox[wheel.Command]
	TelemetrySlot   *SnapshotSlot[wheel.Snapshot]

	stop chan struct{}
	done chan struct{}
}

// NewPhysicsLoop wires a fresh kernel to the given exchange primitives
// and publishes an initial snapshot so readers never observe an empty
// slot.
func NewPhysicsLoop(k *wheel.Kernel, mailbox *Mailbox[wheel.Command], slot *SnapshotSlot[wheel.Snapshot]) *PhysicsLoop {
	slot.Publish(k.Snapshot())
	return &PhysicsLoop{
		Kernel:         k,
		CommandMailbox: mailbox,
		TelemetrySlot:  slot,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Run ticks the kernel every wheel.TickPeriod until Stop is called. It
// blocks, so callers run it in its own goroutine, mirroring the
// cpu.Run()-in-a-goroutine shutdown shape used for the device process.
func (p *PhysicsLoop) Run() {
	defer close(p.done)

	ticker := time.NewTicker(wheel.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case tickStart := <-ticker.C:
			cmd, ok := p.CommandMailbox.Drain()
			var cp *wheel.Command
			if ok {
				cp = &cmd
			}
			snap := p.Kernel.Tick(cp)
			snap.JitterMaxNs = p.Kernel.UpdateJitter(time.Since(tickStart))
			p.TelemetrySlot.Publish(snap)
		}
	}
}

// Stop signals Run to exit and blocks until it has.
func (p *PhysicsLoop) Stop() {
	close(p.stop)
	<-p.done
}
