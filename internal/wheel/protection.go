package wheel

import "math"

// LCLBit marks a fault_latch bit that only a hardware reset event can
// clear (§3 invariant). CLEAR-FAULT's caller-supplied mask can never
// touch it, regardless of its value (§4.5 step 1: "LCL bit ignored").
const LCLBit uint32 = 1 << 31

// evaluateProtections runs every enabled protection against the
// current tick's measurements (§4.5 step 5) and updates fault_status,
// warning_status, fault_latch, and lcl_tripped accordingly.
func (s *State) evaluateProtections() {
	s.FaultStatus = 0
	// dutyPct is the applied duty: |current_out| as a percentage of
	// SoftOvercurrentA. A control law that asks for more than the duty
	// limit is saturated by applyLimits, not faulted, so the overduty
	// fault fires only when the applied current itself exceeds
	// MaxDutyPercent.
	dutyPct := 0.0
	if s.Thresholds.SoftOvercurrentA > 0 {
		dutyPct = math.Abs(s.CurrentOutA) / s.Thresholds.SoftOvercurrentA * 100
	}
	speedRPM := math.Abs(s.SpeedRPM())

	if s.EnableMask&EnableOvervoltage != 0 && s.BusVoltageV > s.Thresholds.OvervoltageV {
		s.FaultStatus |= FaultOvervoltage
	}
	if s.EnableMask&EnableOverspeedHard != 0 && speedRPM > s.Thresholds.OverspeedHardRPM {
		s.FaultStatus |= FaultOverspeedHard
	}
	if s.EnableMask&EnableOverduty != 0 && dutyPct > s.Thresholds.MaxDutyPercent {
		s.FaultStatus |= FaultOverduty
	}
	if s.EnableMask&EnableOverpower != 0 && math.Abs(s.PowerOutW) > s.Thresholds.OverpowerW {
		s.FaultStatus |= FaultOverpower
	}
	if s.EnableMask&EnableBraking != 0 && s.BusVoltageV > s.Thresholds.BrakingLoadV {
		s.FaultStatus |= FaultBraking
	}

	s.WarningStatus = 0
	if s.EnableMask&EnableSoftOvercurrent != 0 && math.Abs(s.requestedCurrentA) > s.Thresholds.SoftOvercurrentA {
		s.WarningStatus |= WarningSoftOvercurrent
	}
	if s.EnableMask&EnableSoftOverspeed != 0 && speedRPM > s.Thresholds.OverspeedSoftRPM {
		s.WarningStatus |= WarningSoftOverspeed
	}

	if s.FaultStatus&lclTriggerFaults != 0 {
		s.LCLTripped = true
	}

	s.FaultLatch |= s.FaultStatus
	if s.LCLTripped {
		s.FaultLatch |= LCLBit
	}

	if s.FaultLatch != 0 {
		s.CurrentOutA = 0
	}
	if s.LCLTripped {
		s.CurrentOutA = 0
	}
	if s.FaultStatus != 0 {
		s.FaultTickCount++
	}
}

// clearFault implements CLEAR-FAULT (§4.5 step 1, §4.4): the caller's
// mask selects which fault_status/fault_latch bits to drop, but the
// LCL bit in fault_latch is never affected by it.
func (s *State) clearFault(mask uint32) {
	clearMask := mask &^ LCLBit
	s.FaultStatus &^= clearMask
	s.FaultLatch &^= clearMask
}

// tripLCL implements the TRIP-LCL command: latch everything, zero
// current, and mark LCL tripped. Only a hardware reset clears it
// (§4.4, §6).
func (s *State) tripLCL() {
	s.LCLTripped = true
	s.FaultLatch = AllFaults
	s.CurrentOutA = 0
}

// injectFault sets a fault bit directly, for the scenario-injection
// hook (§6's "same command-submit function").
func (s *State) injectFault(bit uint32, latch bool) {
	s.FaultStatus |= bit
	if latch {
		s.FaultLatch |= bit
	}
	if bit&lclTriggerFaults != 0 {
		s.LCLTripped = true
		s.FaultLatch |= LCLBit
	}
}
