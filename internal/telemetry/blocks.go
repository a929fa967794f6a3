// Package telemetry builds the five bit-exact APPLICATION-TELEMETRY
// block shapes (§4.6) from a wheel.Snapshot. Every multi-byte field is
// little-endian, matching the wire packet encoding in internal/slip
// and internal/wireproto.
package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nrwa/nrwa-t6-emu/internal/fixedpoint"
	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
)

// Block IDs accepted by APPLICATION-TELEMETRY (0x07).
const (
	BlockStandard     = 0x00
	BlockTemperatures = 0x01
	BlockVoltages     = 0x02
	BlockCurrents     = 0x03
	BlockDiagnostics  = 0x04
)

// StatusWord bit layout (§4.6).
const (
	StatusOperational uint32 = 1 << 0
	StatusLCLTripped  uint32 = 1 << 31
)

// Build serializes the requested block. An unknown block ID returns
// an error, which the dispatcher (§4.4) turns into a NACK.
func Build(blockID uint8, snap wheel.Snapshot) ([]byte, error) {
	switch blockID {
	case BlockStandard:
		return standard(snap), nil
	case BlockTemperatures:
		return temperatures(snap), nil
	case BlockVoltages:
		return voltages(snap), nil
	case BlockCurrents:
		return currents(snap), nil
	case BlockDiagnostics:
		return diagnostics(snap), nil
	default:
		return nil, fmt.Errorf("telemetry: unknown block id 0x%02X", blockID)
	}
}

func statusWord(snap wheel.Snapshot) uint32 {
	var status uint32
	if snap.FaultLatch == 0 && !snap.LCLTripped {
		status |= StatusOperational
	}
	if snap.LCLTripped {
		status |= StatusLCLTripped
	}
	return status
}

// modeSetpointRaw encodes the active mode's commanded setpoint using
// the same fixed-point format APPLICATION-COMMAND accepts it in
// (§4.4).
func modeSetpointRaw(snap wheel.Snapshot) uint32 {
	switch snap.Mode {
	case wheel.ModeCurrent:
		return fixedpoint.ToUQ32(snap.CurrentCmdA, fixedpoint.FracUQ14_18)
	case wheel.ModeSpeed:
		return fixedpoint.ToUQ32(snap.SpeedCmdRPM, fixedpoint.FracUQ14_18)
	case wheel.ModeTorque:
		return uint32(fixedpoint.ToQ32(snap.TorqueCmdMNm, fixedpoint.FracQ10_22))
	case wheel.ModePWM:
		return fixedpoint.EncodePWMSetpoint(snap.PWMDutyPct, snap.PWMDirection == wheel.Negative)
	default:
		return 0
	}
}

func standard(snap wheel.Snapshot) []byte {
	b := make([]byte, 25)
	binary.LittleEndian.PutUint32(b[0:4], statusWord(snap))
	binary.LittleEndian.PutUint32(b[4:8], snap.FaultStatus|snap.FaultLatch)
	b[8] = snap.Mode.WireByte()
	binary.LittleEndian.PutUint32(b[9:13], modeSetpointRaw(snap))

	dutyScaled := snap.PWMDutyPct * 5.12
	if snap.PWMDirection == wheel.Negative {
		dutyScaled = -dutyScaled
	}
	binary.LittleEndian.PutUint16(b[13:15], uint16(fixedpoint.ToQ16(dutyScaled, 0)))

	binary.LittleEndian.PutUint16(b[15:17], fixedpoint.ToUQ16(math.Abs(snap.RequestedCurrentA)*1000, fixedpoint.FracQ14_2))
	binary.LittleEndian.PutUint32(b[17:21], fixedpoint.ToUQ32(math.Abs(snap.CurrentOutA)*1000, fixedpoint.FracQ20_12))
	binary.LittleEndian.PutUint32(b[21:25], fixedpoint.ToUQ32(math.Abs(snap.SpeedRPM()), fixedpoint.FracQ24_8))
	return b
}

// Simple thermal model (§1 Non-goals: no electromagnetics fidelity).
// Driver and motor temperatures track dissipated power above ambient;
// dcdc and enclosure track a smaller fraction of it.
const ambientC = 25.0

func temperatures(snap wheel.Snapshot) []byte {
	dissipation := math.Abs(snap.PowerOutW) + snap.CurrentOutA*snap.CurrentOutA*0.2
	driver := ambientC + dissipation*3
	motor := ambientC + dissipation*5
	dcdc := ambientC + dissipation*0.5
	enclosure := ambientC + dissipation*0.2

	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:2], uint16(dcdc))
	binary.LittleEndian.PutUint16(b[2:4], uint16(enclosure))
	binary.LittleEndian.PutUint16(b[4:6], uint16(driver))
	binary.LittleEndian.PutUint16(b[6:8], uint16(motor))
	return b
}

// Rail nominals for the regulated supplies (§1 Non-goals: no PSU
// simulation, so these are fixed except the motor bus rail).
const (
	rail1V5 = 1.5
	rail3V3 = 3.3
	rail5VA = 5.0
	rail12V = 12.0
	rail2V5 = 2.5
)

func voltages(snap wheel.Snapshot) []byte {
	b := make([]byte, 24)
	rails := []float64{rail1V5, rail3V3, rail5VA, rail12V, snap.BusVoltageV, rail2V5}
	for i, v := range rails {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], fixedpoint.ToUQ32(v, fixedpoint.FracQ16_16))
	}
	return b
}

// Background quiescent draw on the low-voltage rails (§1 Non-goals:
// no electromagnetics fidelity — a flat figure stands in for the
// logic/sensor load).
const quiescentMA = 40.0

func currents(snap wheel.Snapshot) []byte {
	b := make([]byte, 24)
	unsignedRails := []float64{quiescentMA, quiescentMA, quiescentMA, quiescentMA, quiescentMA}
	for i, mA := range unsignedRails {
		binary.LittleEndian.PutUint32(b[i*4:i*4+4], fixedpoint.ToUQ32(mA, fixedpoint.FracQ16_16))
	}
	binary.LittleEndian.PutUint32(b[20:24], uint32(fixedpoint.ToQ32(snap.CurrentOutA, fixedpoint.FracQ16_16)))
	return b
}

func diagnostics(snap wheel.Snapshot) []byte {
	b := make([]byte, 20)
	binary.LittleEndian.PutUint32(b[0:4], fixedpoint.ToUQ32(snap.UptimeSeconds, fixedpoint.FracQ30_2))
	binary.LittleEndian.PutUint32(b[4:8], snap.RevolutionCount)
	binary.LittleEndian.PutUint32(b[8:12], 0) // hall_invalid: no hall sensor model in this emulator
	binary.LittleEndian.PutUint32(b[12:16], snap.FaultTickCount)
	binary.LittleEndian.PutUint32(b[16:20], 0) // drive_overtemp: no thermal-fault model
	return b
}
