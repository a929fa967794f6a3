package wheel

import "time"

// TickPeriod is the fixed physics loop period (§4.5): 100 Hz.
const TickPeriod = 10 * time.Millisecond

// TickSeconds is TickPeriod expressed as the dt used in integration.
const TickSeconds = 0.01

// Physical constants (§6 defaults).
const (
	Inertia          = 5.35e-5 // kg*m^2
	TorqueConstant   = 0.0534  // N*m/A (k_t)
	LossCoeffA       = 1e-5
	LossCoeffB       = 5e-4
	LossCoeffC       = 1e-4
	DefaultPIKp      = 0.05
	DefaultPIKi      = 0.01
	DefaultIntegralA = 3.0 // integral clamp, amps
)

// ControlMode selects which control law runs each tick (§3, §4.5).
// Modes are peer states; there is no hierarchy between them.
type ControlMode uint8

const (
	ModeCurrent ControlMode = iota
	ModeSpeed
	ModeTorque
	ModePWM
)

func (m ControlMode) String() string {
	switch m {
	case ModeCurrent:
		return "CURRENT"
	case ModeSpeed:
		return "SPEED"
	case ModeTorque:
		return "TORQUE"
	case ModePWM:
		return "PWM"
	default:
		return "UNKNOWN"
	}
}

// WireByte returns the one-hot mode_byte encoding for this mode, used
// both in APPLICATION-COMMAND requests and the STANDARD telemetry
// block's mode field.
func (m ControlMode) WireByte() uint8 {
	switch m {
	case ModeCurrent:
		return 0x01
	case ModeSpeed:
		return 0x02
	case ModeTorque:
		return 0x04
	case ModePWM:
		return 0x08
	default:
		return 0x00
	}
}

// ModeFromWireByte decodes the one-hot mode_byte. 0x00 means "no mode
// change" and is reported via ok=false.
func ModeFromWireByte(b uint8) (mode ControlMode, ok bool) {
	switch b & 0x0F {
	case 0x00:
		return 0, false
	case 0x01:
		return ModeCurrent, true
	case 0x02:
		return ModeSpeed, true
	case 0x04:
		return ModeTorque, true
	case 0x08:
		return ModePWM, true
	default:
		return 0, false
	}
}

// Direction is the commanded sense of rotation.
type Direction uint8

const (
	Positive Direction = iota
	Negative
)

// Sign returns +1 for Positive and -1 for Negative.
func (d Direction) Sign() float64 {
	if d == Negative {
		return -1
	}
	return 1
}

// Hard fault bits, latched into FaultLatch and never cleared except by
// CLEAR-FAULT (LCL excluded — only a hardware reset clears it). This
// fixes the fault-bit indexing the source left ambiguous: bit 0
// overvoltage, bit 1 overspeed-hard, bit 2 overduty, bit 3 overpower,
// bit 4 EDAC, bit 5 braking-overvoltage, bit 6 reserved, bit 7 comms
// timeout.
const (
	FaultOvervoltage uint32 = 1 << iota
	FaultOverspeedHard
	FaultOverduty
	FaultOverpower
	FaultEDAC
	FaultBraking
	FaultReserved
	FaultCommsTimeout
)

// AllFaults is the all-ones latch value TRIP-LCL forces (§4.5 step 1).
const AllFaults uint32 = 0xFFFFFFFF

// Soft (non-latching) warning bits.
const (
	WarningSoftOvercurrent uint32 = 1 << iota
	WarningSoftOverspeed
)

// Protection enable mask bits, in the order spec.md §3 lists them.
const (
	EnableOvervoltage uint32 = 1 << iota
	EnableOverspeedHard
	EnableOverduty
	EnableOverpower
	EnableSoftOvercurrent
	EnableSoftOverspeed
	EnableEDAC
	EnableBraking
)

// AllProtectionsEnabled is the enable mask every boot and hardware
// reset restores.
const AllProtectionsEnabled = EnableOvervoltage | EnableOverspeedHard | EnableOverduty |
	EnableOverpower | EnableSoftOvercurrent | EnableSoftOverspeed | EnableEDAC | EnableBraking

// LCL-triggering hard faults (§4.5 step 5).
const lclTriggerFaults = FaultOvervoltage | FaultOverspeedHard

// Thresholds holds the protection trip points (§6 defaults).
type Thresholds struct {
	OvervoltageV     float64
	OverspeedHardRPM float64
	OverspeedSoftRPM float64
	OverpowerW       float64
	SoftOvercurrentA float64
	MaxDutyPercent   float64
	BrakingLoadV     float64
}

// DefaultThresholds returns the hard-coded boot/reset defaults (§6).
func DefaultThresholds() Thresholds {
	return Thresholds{
		OvervoltageV:     36,
		OverspeedHardRPM: 6000,
		OverspeedSoftRPM: 5000,
		OverpowerW:       100,
		SoftOvercurrentA: 6,
		MaxDutyPercent:   97.85,
		BrakingLoadV:     31,
	}
}
