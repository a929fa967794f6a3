package wireproto

import (
	"encoding/binary"

	"github.com/nrwa/nrwa-t6-emu/internal/busxport"
	"github.com/nrwa/nrwa-t6-emu/internal/regmap"
	"github.com/nrwa/nrwa-t6-emu/internal/slip"
	"github.com/nrwa/nrwa-t6-emu/internal/telemetry"
	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
)

// Command codes (§4.4).
const (
	Ping                  byte = 0x00
	Peek                  byte = 0x02
	Poke                  byte = 0x03
	ApplicationTelemetry  byte = 0x07
	ApplicationCommand    byte = 0x08
	ClearFault            byte = 0x09
	ConfigureProtection   byte = 0x0A
	TripLCL               byte = 0x0B
)

// nackBit marks a reply command byte as a NACK: the ICD leaves the
// NACK encoding unspecified, so this dispatcher echoes the request
// command with the high bit set. No command code uses bit 7, so a NACK
// never collides with an ACK.
const nackBit byte = 0x80

// Dispatcher wires one bus connection's framing decoder to the
// command table and the physics-core exchange primitives (§4.3, §4.7).
// It is strictly single-threaded: one Dispatcher per connection, never
// shared across goroutines.
type Dispatcher struct {
	Address byte
	Info    regmap.DeviceInfo

	Mailbox   *busxport.Mailbox[wheel.Command]
	Telemetry *busxport.SnapshotSlot[wheel.Snapshot]

	decoder              *slip.Decoder
	lastDecoderFramingErr uint32
}

// NewDispatcher builds a dispatcher for one connection.
func NewDispatcher(address byte, info regmap.DeviceInfo, mailbox *busxport.Mailbox[wheel.Command], telem *busxport.SnapshotSlot[wheel.Snapshot]) *Dispatcher {
	return &Dispatcher{
		Address:   address,
		Info:      info,
		Mailbox:   mailbox,
		Telemetry: telem,
		decoder:   slip.NewDecoder(),
	}
}

// HandleBytes feeds newly received bytes through the framing decoder
// and dispatches every complete frame, returning the already-framed
// reply bytes (if any) ready to hand to the bus transmitter in order.
func (d *Dispatcher) HandleBytes(data []byte) [][]byte {
	var replies [][]byte
	for _, b := range data {
		frame, complete := d.decoder.DecodeByte(b)
		if d.decoder.FramingErrors != d.lastDecoderFramingErr {
			d.lastDecoderFramingErr = d.decoder.FramingErrors
			d.bumpCounter(wheel.CounterFraming)
		}
		if !complete {
			continue
		}
		if reply := d.handleFrame(frame); reply != nil {
			replies = append(replies, reply)
		}
	}
	return replies
}

// handleFrame runs one de-framed byte sequence through parsing and
// dispatch, returning an already-framed reply or nil for NO_REPLY /
// broadcast / a silently dropped packet.
func (d *Dispatcher) handleFrame(frame []byte) []byte {
	pkt, reason := Parse(frame, d.Address)
	switch reason {
	case DropTooShort:
		d.bumpCounter(wheel.CounterFraming)
		return nil
	case DropAddressMismatch:
		return nil
	case DropLengthMismatch:
		d.bumpCounter(wheel.CounterLength)
		return nil
	case DropCRCMismatch:
		d.bumpCounter(wheel.CounterCRC)
		return nil
	}

	payload, replyCmd, reply := d.dispatch(pkt)
	if !reply || pkt.Address == Broadcast {
		return nil
	}
	body := Build(d.Address, replyCmd, payload)
	return slip.Encode(body)
}

func (d *Dispatcher) bumpCounter(field wheel.CounterField) {
	d.Mailbox.TryWrite(wheel.Command{Type: wheel.CmdBumpCounter, Counter: field})
}

// dispatch runs the command table (§4.4) over one validated packet,
// returning the reply payload, the reply command byte (ACKed command
// or NACKed with nackBit set), and whether a reply should be sent at
// all (false only for TRIP-LCL's NO_REPLY contract).
func (d *Dispatcher) dispatch(pkt Packet) (payload []byte, replyCmd byte, reply bool) {
	switch pkt.Command {
	case Ping:
		return d.handlePing(), Ping, true

	case Peek:
		return d.handlePeek(pkt.Payload)

	case Poke:
		return d.handlePoke(pkt.Payload)

	case ApplicationTelemetry:
		return d.handleTelemetry(pkt.Payload)

	case ApplicationCommand:
		return d.handleApplicationCommand(pkt.Payload)

	case ClearFault:
		return d.handleClearFault(pkt.Payload)

	case ConfigureProtection:
		return d.handleConfigureProtection(pkt.Payload)

	case TripLCL:
		d.Mailbox.TryWrite(wheel.Command{Type: wheel.CmdTripLCL})
		return nil, TripLCL, false

	default:
		return nil, pkt.Command | nackBit, true
	}
}

func (d *Dispatcher) snapshot() wheel.Snapshot {
	snap, _ := d.Telemetry.Read()
	return snap
}

func (d *Dispatcher) handlePing() []byte {
	return []byte{d.Info.DeviceType, d.Info.Serial, d.Info.FWMajor, d.Info.FWMinor, d.Info.FWPatch}
}

func (d *Dispatcher) handlePeek(payload []byte) (out []byte, cmd byte, reply bool) {
	if len(payload) < 1 {
		return nil, Peek | nackBit, true
	}
	v, err := regmap.Peek(payload[0], d.snapshot(), d.Info)
	if err != nil {
		return nil, Peek | nackBit, true
	}
	out = make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out, Peek, true
}

func (d *Dispatcher) handlePoke(payload []byte) (out []byte, cmd byte, reply bool) {
	if len(payload) < 5 {
		return nil, Poke | nackBit, true
	}
	value := binary.LittleEndian.Uint32(payload[1:5])
	wcmd, err := regmap.Poke(payload[0], value)
	if err != nil {
		return nil, Poke | nackBit, true
	}
	if !d.Mailbox.TryWrite(wcmd) {
		return nil, Poke | nackBit, true
	}
	return nil, Poke, true
}

func (d *Dispatcher) handleTelemetry(payload []byte) (out []byte, cmd byte, reply bool) {
	if len(payload) < 1 {
		return nil, ApplicationTelemetry | nackBit, true
	}
	block, err := telemetry.Build(payload[0], d.snapshot())
	if err != nil {
		return nil, ApplicationTelemetry | nackBit, true
	}
	return block, ApplicationTelemetry, true
}

// handleApplicationCommand decodes the one-hot mode_byte and 32-bit LE
// setpoint (§4.4) and enqueues a combined mode+setpoint change.
func (d *Dispatcher) handleApplicationCommand(payload []byte) (out []byte, cmd byte, reply bool) {
	if len(payload) < 5 {
		return nil, ApplicationCommand | nackBit, true
	}
	modeByte := payload[0] & 0x0F
	setpoint := binary.LittleEndian.Uint32(payload[1:5])

	wcmd := wheel.Command{Type: wheel.CmdSetMode, SetpointProvided: true, SetpointRaw: setpoint}
	if modeByte != 0x00 {
		mode, ok := wheel.ModeFromWireByte(modeByte)
		if !ok {
			return nil, ApplicationCommand | nackBit, true
		}
		wcmd.ModeChanged = true
		wcmd.NewMode = mode
	}

	if !d.Mailbox.TryWrite(wcmd) {
		return nil, ApplicationCommand | nackBit, true
	}
	return nil, ApplicationCommand, true
}

func (d *Dispatcher) handleClearFault(payload []byte) (out []byte, cmd byte, reply bool) {
	if len(payload) < 4 {
		return nil, ClearFault | nackBit, true
	}
	mask := binary.LittleEndian.Uint32(payload[0:4])
	d.Mailbox.TryWrite(wheel.Command{Type: wheel.CmdClearFault, Mask: mask})
	return nil, ClearFault, true
}

func (d *Dispatcher) handleConfigureProtection(payload []byte) (out []byte, cmd byte, reply bool) {
	if len(payload) < 4 {
		return nil, ConfigureProtection | nackBit, true
	}
	disableMask := binary.LittleEndian.Uint32(payload[0:4])
	d.Mailbox.TryWrite(wheel.Command{Type: wheel.CmdConfigureProtection, DisableMask: disableMask})
	return nil, ConfigureProtection, true
}
