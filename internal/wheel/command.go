package wheel

import "time"

// CommandType tags the single mailbox slot the I/O worker fills and
// the physics worker drains (§4.7). None is the sentinel empty value.
type CommandType uint8

const (
	CmdNone CommandType = iota
	CmdSetMode
	CmdClearFault
	CmdConfigureProtection
	CmdTripLCL
	CmdSoftReset
	// CmdInjectFault is not wire-exposed; it is the scenario-engine
	// hook spec.md §6 describes ("the same command-submit function")
	// generalized to let a fault-injection harness force a protection
	// bit without a physical stimulus.
	CmdInjectFault
	// CmdSetThreshold backs POKE writes to the threshold registers
	// (§4.4 POKE, Register & Command Model module).
	CmdSetThreshold
	// CmdBumpCounter increments one of the I/O-side diagnostic
	// counters. Framing/length/CRC errors are detected in the I/O
	// worker's parser, but the counters they feed are PEEK-able
	// physics-owned state (§3 data model), so the parser routes the
	// increment through the mailbox like any other state change
	// instead of writing wheel state directly. A dropped increment
	// (mailbox busy) only undercounts a diagnostic, never the control
	// path, so the parser makes a single best-effort TryWrite and
	// moves on.
	CmdBumpCounter
)

// CounterField selects which I/O-side diagnostic counter a
// CmdBumpCounter command increments.
type CounterField uint8

const (
	CounterFraming CounterField = iota
	CounterLength
	CounterCRC
)

// ThresholdField selects which Thresholds member a CmdSetThreshold
// command updates.
type ThresholdField uint8

const (
	ThresholdOvervoltage ThresholdField = iota
	ThresholdOverspeedHard
	ThresholdOverspeedSoft
	ThresholdOverpower
	ThresholdSoftOvercurrent
	ThresholdMaxDuty
	ThresholdBrakingLoad
)

// Command is the single mailbox entry format (§3 data model).
type Command struct {
	Type CommandType

	// CmdSetMode.
	ModeChanged     bool
	NewMode         ControlMode
	SetpointProvided bool
	SetpointRaw     uint32

	// CmdSetThreshold.
	Field     ThresholdField
	FieldRaw  uint32 // UQ16.16

	// CmdClearFault / CmdInjectFault: bitmask of fault bits.
	Mask uint32

	// CmdConfigureProtection: raw disable mask from the wire (inverted
	// to an enable mask on apply, §4.4).
	DisableMask uint32

	// CmdInjectFault.
	InjectLatch bool

	// CmdBumpCounter.
	Counter CounterField

	Timestamp time.Time
}
