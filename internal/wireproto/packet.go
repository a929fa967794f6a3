// Package wireproto implements the NRWA-T6 packet parser, command
// dispatcher, and reply builder (§4.3, §4.4). It sits strictly in the
// I/O worker: it never blocks on the physics core and never holds the
// mailbox or snapshot locks across I/O, consuming only the exchange
// primitives internal/busxport exposes.
package wireproto

import (
	"encoding/binary"

	"github.com/nrwa/nrwa-t6-emu/internal/crc16"
)

// Broadcast is the address every device accepts commands from but
// never replies to (§6).
const Broadcast byte = 0xFF

// Packet is a validated wire packet with its CRC and framing already
// stripped.
type Packet struct {
	Address byte
	Command byte
	Payload []byte
}

// DropReason classifies why Parse rejected a frame (§4.3 steps 1-4,
// §7 error taxonomy).
type DropReason int

const (
	dropNone DropReason = iota
	// DropTooShort: frame shorter than the 6-byte header+CRC minimum.
	DropTooShort
	// DropAddressMismatch: not ours and not broadcast. Silent — no
	// counter increment (§4.3 step 2).
	DropAddressMismatch
	// DropLengthMismatch: the length field disagrees with the frame's
	// actual size.
	DropLengthMismatch
	// DropCRCMismatch: the trailing CRC doesn't match the computed one.
	DropCRCMismatch
)

// Parse validates a de-framed byte sequence against §4.3 steps 1-4
// and extracts the packet fields. myAddr is this device's strapped
// address (§6); frames addressed elsewhere (and not broadcast) are
// rejected with DropAddressMismatch.
func Parse(frame []byte, myAddr byte) (Packet, DropReason) {
	if len(frame) < 6 {
		return Packet{}, DropTooShort
	}
	addr := frame[0]
	if addr != myAddr && addr != Broadcast {
		return Packet{}, DropAddressMismatch
	}
	length := binary.LittleEndian.Uint16(frame[2:4])
	if int(length)+6 != len(frame) {
		return Packet{}, DropLengthMismatch
	}
	if !crc16.Verify(frame) {
		return Packet{}, DropCRCMismatch
	}
	payload := make([]byte, length)
	copy(payload, frame[4:4+length])
	return Packet{Address: addr, Command: frame[1], Payload: payload}, dropNone
}

// Build assembles the reply wire packet body (pre-framing):
// address||command||length||payload||crc (§4.3 step 6).
func Build(address, command byte, payload []byte) []byte {
	body := make([]byte, 4, 4+len(payload)+2)
	body[0] = address
	body[1] = command
	binary.LittleEndian.PutUint16(body[2:4], uint16(len(payload)))
	body = append(body, payload...)
	return crc16.AppendCRC(body)
}
