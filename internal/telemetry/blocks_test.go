package telemetry

import (
	"encoding/binary"
	"testing"

	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
)

func TestBlockSizes(t *testing.T) {
	snap := wheel.Snapshot{}
	cases := map[uint8]int{
		BlockStandard:     25,
		BlockTemperatures: 8,
		BlockVoltages:     24,
		BlockCurrents:     24,
		BlockDiagnostics:  20,
	}
	for id, want := range cases {
		b, err := Build(id, snap)
		if err != nil {
			t.Fatalf("Build(0x%02X): unexpected error: %v", id, err)
		}
		if len(b) != want {
			t.Errorf("Build(0x%02X): len=%d, want %d", id, len(b), want)
		}
	}
}

func TestUnknownBlockErrors(t *testing.T) {
	if _, err := Build(0xFE, wheel.Snapshot{}); err == nil {
		t.Errorf("expected error for unknown block id")
	}
}

func TestStandardStatusBits(t *testing.T) {
	snap := wheel.Snapshot{LCLTripped: true, FaultLatch: wheel.FaultOverspeedHard}
	b, err := Build(BlockStandard, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status := binary.LittleEndian.Uint32(b[0:4])
	if status&StatusOperational != 0 {
		t.Errorf("operational bit should be clear when LCL tripped")
	}
	if status&StatusLCLTripped == 0 {
		t.Errorf("LCL-tripped bit should be set")
	}
	fault := binary.LittleEndian.Uint32(b[4:8])
	if fault&wheel.FaultOverspeedHard == 0 {
		t.Errorf("fault word should include overspeed-hard from the latch")
	}
}

func TestOperationalWhenHealthy(t *testing.T) {
	snap := wheel.Snapshot{}
	b, _ := Build(BlockStandard, snap)
	status := binary.LittleEndian.Uint32(b[0:4])
	if status&StatusOperational == 0 {
		t.Errorf("operational bit should be set with no faults and no LCL trip")
	}
}
