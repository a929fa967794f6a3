package wireproto

import (
	"encoding/binary"
	"testing"

	"github.com/nrwa/nrwa-t6-emu/internal/busxport"
	"github.com/nrwa/nrwa-t6-emu/internal/regmap"
	"github.com/nrwa/nrwa-t6-emu/internal/slip"
	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
)

func newTestDispatcher(addr byte) (*Dispatcher, *busxport.Mailbox[wheel.Command], *busxport.SnapshotSlot[wheel.Snapshot]) {
	mailbox := &busxport.Mailbox[wheel.Command]{}
	slot := &busxport.SnapshotSlot[wheel.Snapshot]{}
	slot.Publish(wheel.NewKernel().Snapshot())
	info := regmap.DeviceInfo{DeviceType: 0x06, Serial: 7, FWMajor: 1, FWMinor: 2, FWPatch: 3}
	return NewDispatcher(addr, info, mailbox, slot), mailbox, slot
}

func frameRequest(addr, cmd byte, payload []byte) []byte {
	return slip.Encode(Build(addr, cmd, payload))
}

func decodeReply(t *testing.T, replies [][]byte) Packet {
	t.Helper()
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	dec := slip.NewDecoder()
	frames := dec.DecodeBytes(replies[0])
	if len(frames) != 1 {
		t.Fatalf("reply did not decode to exactly one frame: %v", frames)
	}
	pkt, reason := Parse(frames[0], 0x02)
	if reason != dropNone {
		t.Fatalf("reply packet failed to parse: reason=%d", reason)
	}
	return pkt
}

func TestPingRepliesWithIdentity(t *testing.T) {
	d, _, _ := newTestDispatcher(0x02)
	replies := d.HandleBytes(frameRequest(0x02, Ping, nil))
	pkt := decodeReply(t, replies)
	if pkt.Command != Ping {
		t.Errorf("reply command = 0x%02X, want PING", pkt.Command)
	}
	want := []byte{0x06, 7, 1, 2, 3}
	if string(pkt.Payload) != string(want) {
		t.Errorf("PING payload = %v, want %v", pkt.Payload, want)
	}
}

func TestPeekDeviceType(t *testing.T) {
	d, _, _ := newTestDispatcher(0x02)
	replies := d.HandleBytes(frameRequest(0x02, Peek, []byte{regmap.AddrDeviceType}))
	pkt := decodeReply(t, replies)
	if pkt.Command != Peek {
		t.Fatalf("expected ACK, got command 0x%02X", pkt.Command)
	}
	if binary.LittleEndian.Uint32(pkt.Payload) != 0x06 {
		t.Errorf("peeked device type = %d, want 6", binary.LittleEndian.Uint32(pkt.Payload))
	}
}

func TestPeekUnknownAddressNacks(t *testing.T) {
	d, _, _ := newTestDispatcher(0x02)
	replies := d.HandleBytes(frameRequest(0x02, Peek, []byte{0x7F}))
	pkt := decodeReply(t, replies)
	if pkt.Command != Peek|nackBit {
		t.Errorf("expected NACK, got command 0x%02X", pkt.Command)
	}
}

func TestPokeEnqueuesMailboxCommand(t *testing.T) {
	d, mailbox, _ := newTestDispatcher(0x02)
	payload := make([]byte, 5)
	payload[0] = regmap.AddrControlMode
	payload[1] = wheel.ModeSpeed.WireByte()
	replies := d.HandleBytes(frameRequest(0x02, Poke, payload))
	pkt := decodeReply(t, replies)
	if pkt.Command != Poke {
		t.Fatalf("expected ACK, got command 0x%02X", pkt.Command)
	}
	cmd, ok := mailbox.Drain()
	if !ok || cmd.Type != wheel.CmdSetMode || cmd.NewMode != wheel.ModeSpeed {
		t.Errorf("unexpected mailbox command: %+v, ok=%v", cmd, ok)
	}
}

func TestTripLCLProducesNoReply(t *testing.T) {
	d, mailbox, _ := newTestDispatcher(0x02)
	replies := d.HandleBytes(frameRequest(0x02, TripLCL, nil))
	if len(replies) != 0 {
		t.Fatalf("TRIP-LCL must not reply, got %d frames", len(replies))
	}
	cmd, ok := mailbox.Drain()
	if !ok || cmd.Type != wheel.CmdTripLCL {
		t.Errorf("expected CmdTripLCL enqueued, got %+v, ok=%v", cmd, ok)
	}
}

func TestBroadcastAddressNeverReplies(t *testing.T) {
	d, mailbox, _ := newTestDispatcher(0x02)
	replies := d.HandleBytes(frameRequest(Broadcast, TripLCL, nil))
	if len(replies) != 0 {
		t.Fatalf("broadcast command must not reply, got %d frames", len(replies))
	}
	if _, ok := mailbox.Drain(); !ok {
		t.Errorf("broadcast command should still be accepted into the mailbox")
	}
}

func TestForeignAddressSilentlyDropped(t *testing.T) {
	d, mailbox, _ := newTestDispatcher(0x02)
	replies := d.HandleBytes(frameRequest(0x05, Ping, nil))
	if len(replies) != 0 {
		t.Fatalf("packet addressed to another device must not reply, got %d frames", len(replies))
	}
	if _, ok := mailbox.Drain(); ok {
		t.Errorf("packet addressed to another device must not be accepted")
	}
}

func TestCorruptedCRCBumpsCounterAndDrops(t *testing.T) {
	d, mailbox, _ := newTestDispatcher(0x02)
	body := Build(0x02, Ping, nil)
	body[len(body)-1] ^= 0xFF // corrupt the CRC's high byte directly, before framing

	replies := d.HandleBytes(slip.Encode(body))
	if len(replies) != 0 {
		t.Fatalf("corrupted packet must not reply, got %d frames", len(replies))
	}
	cmd, ok := mailbox.Drain()
	if !ok || cmd.Type != wheel.CmdBumpCounter || cmd.Counter != wheel.CounterCRC {
		t.Errorf("expected a CRC counter bump, got %+v, ok=%v", cmd, ok)
	}
}
