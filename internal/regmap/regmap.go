// Package regmap is the NRWA-T6 PEEK/POKE register map: a compile-time
// table of address-to-typed-accessor entries (§9 design note: dynamic
// metadata belongs to the external UI, not the core). It resolves
// spec.md's open question by exposing only the 8-bit ICD address
// space that PEEK/POKE carry on the wire (0x00-0x30); there is no
// separate 16-bit internal address space.
package regmap

import (
	"fmt"

	"github.com/nrwa/nrwa-t6-emu/internal/fixedpoint"
	"github.com/nrwa/nrwa-t6-emu/internal/wheel"
)

// Access describes whether a register may be PEEKed, POKEd, or both.
type Access uint8

const (
	RO Access = iota
	WO
	RW
)

// Register addresses (§4.4 PEEK/POKE, SPEC_FULL.md §5 diagnostics
// counter assignment).
const (
	AddrDeviceType      = 0x00
	AddrSerialNumber    = 0x01
	AddrFirmwareVersion = 0x02
	AddrControlMode     = 0x03
	AddrActiveSetpoint  = 0x04
	AddrCurrentOut      = 0x05
	AddrSpeedMeas       = 0x06
	AddrTorqueOut       = 0x07
	AddrPowerOut        = 0x08
	AddrBusVoltage      = 0x09
	AddrFaultStatus     = 0x0A
	AddrFaultLatch      = 0x0B
	AddrWarningStatus   = 0x0C
	AddrEnableMask      = 0x0D
	AddrThreshOV        = 0x0E
	AddrThreshOSHard    = 0x0F
	AddrThreshOSSoft    = 0x10
	AddrThreshOP        = 0x11
	AddrThreshSoftOC    = 0x12
	AddrThreshMaxDuty   = 0x13
	AddrThreshBraking   = 0x14
	AddrTickCount       = 0x15
	AddrUptimeSeconds   = 0x16
	AddrRevolutionCount = 0x17
	AddrLCLTripped      = 0x18
	AddrFramingErrors   = 0x20
	AddrLengthErrors    = 0x21
	AddrCRCErrors       = 0x22
	AddrJitterMaxNs     = 0x23
)

// DeviceInfo carries the PING-time identity fields also exposed at
// PEEK addresses 0x00-0x02.
type DeviceInfo struct {
	DeviceType byte
	Serial     byte
	FWMajor    byte
	FWMinor    byte
	FWPatch    byte
}

// entry is one address's accessor pair. get reads from a snapshot;
// toCommand builds the mailbox command a POKE enqueues (nil if the
// address is read-only).
type entry struct {
	access    Access
	get       func(wheel.Snapshot, DeviceInfo) uint32
	toCommand func(value uint32) wheel.Command
}

var table = map[uint8]entry{
	AddrDeviceType: {access: RO, get: func(_ wheel.Snapshot, d DeviceInfo) uint32 {
		return uint32(d.DeviceType)
	}},
	AddrSerialNumber: {access: RO, get: func(_ wheel.Snapshot, d DeviceInfo) uint32 {
		return uint32(d.Serial)
	}},
	AddrFirmwareVersion: {access: RO, get: func(_ wheel.Snapshot, d DeviceInfo) uint32 {
		return uint32(d.FWMajor)<<16 | uint32(d.FWMinor)<<8 | uint32(d.FWPatch)
	}},
	AddrControlMode: {access: RW,
		get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return uint32(s.Mode.WireByte()) },
		toCommand: func(value uint32) wheel.Command {
			mode, ok := wheel.ModeFromWireByte(uint8(value))
			if !ok {
				return wheel.Command{Type: wheel.CmdNone}
			}
			return wheel.Command{Type: wheel.CmdSetMode, ModeChanged: true, NewMode: mode}
		},
	},
	AddrActiveSetpoint: {access: WO,
		toCommand: func(value uint32) wheel.Command {
			return wheel.Command{Type: wheel.CmdSetMode, SetpointProvided: true, SetpointRaw: value}
		},
	},
	AddrCurrentOut: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		return fixedpoint.ToUQ32(s.CurrentOutA*1000, fixedpoint.FracQ20_12)
	}},
	AddrSpeedMeas: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		return fixedpoint.ToUQ32(s.SpeedRPM(), fixedpoint.FracQ24_8)
	}},
	AddrTorqueOut: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		return uint32(fixedpoint.ToQ32(s.TorqueOutMNm, fixedpoint.FracQ16_16))
	}},
	AddrPowerOut: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		return uint32(fixedpoint.ToQ32(s.PowerOutW, fixedpoint.FracQ16_16))
	}},
	AddrBusVoltage: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		return fixedpoint.ToUQ32(s.BusVoltageV, fixedpoint.FracQ16_16)
	}},
	AddrFaultStatus:   {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.FaultStatus }},
	AddrFaultLatch:    {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.FaultLatch }},
	AddrWarningStatus: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.WarningStatus }},
	AddrEnableMask: {access: RW,
		get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.EnableMask },
		toCommand: func(value uint32) wheel.Command {
			return wheel.Command{Type: wheel.CmdConfigureProtection, DisableMask: (^value) & 0xFF}
		},
	},
	AddrThreshOV:      thresholdEntry(wheel.ThresholdOvervoltage, func(t wheel.Thresholds) float64 { return t.OvervoltageV }),
	AddrThreshOSHard:  thresholdEntry(wheel.ThresholdOverspeedHard, func(t wheel.Thresholds) float64 { return t.OverspeedHardRPM }),
	AddrThreshOSSoft:  thresholdEntry(wheel.ThresholdOverspeedSoft, func(t wheel.Thresholds) float64 { return t.OverspeedSoftRPM }),
	AddrThreshOP:      thresholdEntry(wheel.ThresholdOverpower, func(t wheel.Thresholds) float64 { return t.OverpowerW }),
	AddrThreshSoftOC:  thresholdEntry(wheel.ThresholdSoftOvercurrent, func(t wheel.Thresholds) float64 { return t.SoftOvercurrentA }),
	AddrThreshMaxDuty: thresholdEntry(wheel.ThresholdMaxDuty, func(t wheel.Thresholds) float64 { return t.MaxDutyPercent }),
	AddrThreshBraking: thresholdEntry(wheel.ThresholdBrakingLoad, func(t wheel.Thresholds) float64 { return t.BrakingLoadV }),
	AddrTickCount:     {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return uint32(s.TickCount) }},
	AddrUptimeSeconds: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		return fixedpoint.ToUQ32(s.UptimeSeconds, fixedpoint.FracQ30_2)
	}},
	AddrRevolutionCount: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.RevolutionCount }},
	AddrLCLTripped: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 {
		if s.LCLTripped {
			return 1
		}
		return 0
	}},
	AddrFramingErrors: {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.FramingErrors }},
	AddrLengthErrors:  {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.LengthErrors }},
	AddrCRCErrors:     {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return s.CRCErrors }},
	AddrJitterMaxNs:   {access: RO, get: func(s wheel.Snapshot, _ DeviceInfo) uint32 { return clampU32(s.JitterMaxNs) }},
}

func thresholdEntry(field wheel.ThresholdField, get func(wheel.Thresholds) float64) entry {
	return entry{
		access: RW,
		get:    func(s wheel.Snapshot, _ DeviceInfo) uint32 { return fixedpoint.ToUQ32(get(s.Thresholds), fixedpoint.FracQ16_16) },
		toCommand: func(value uint32) wheel.Command {
			return wheel.Command{Type: wheel.CmdSetThreshold, Field: field, FieldRaw: value}
		},
	}
}

func clampU32(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(v)
}

// Peek reads the 4-byte LE value at addr. It returns an error for
// unknown addresses or write-only registers, matching the NACK the
// wire dispatcher (§4.4) sends back to the caller.
func Peek(addr uint8, snap wheel.Snapshot, info DeviceInfo) (uint32, error) {
	e, ok := table[addr]
	if !ok || e.access == WO {
		return 0, fmt.Errorf("regmap: address 0x%02X not readable", addr)
	}
	return e.get(snap, info), nil
}

// Poke builds the mailbox command a POKE to addr with the given raw
// value should enqueue. It returns an error for unknown addresses or
// read-only registers.
func Poke(addr uint8, value uint32) (wheel.Command, error) {
	e, ok := table[addr]
	if !ok || e.access == RO {
		return wheel.Command{}, fmt.Errorf("regmap: address 0x%02X not writable", addr)
	}
	return e.toCommand(value), nil
}
