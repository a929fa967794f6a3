package wheel

import (
	"time"

	"github.com/nrwa/nrwa-t6-emu/internal/fixedpoint"
)

// Kernel is the physics core: the sole owner of State, advanced one
// tick at a time by whichever worker calls Tick (§3, §5). It holds no
// locks and performs no I/O — the caller is responsible for draining
// the command mailbox and publishing the resulting Snapshot.
type Kernel struct {
	state *State
}

// NewKernel boots a Kernel with safe defaults (§3 lifecycle).
func NewKernel() *Kernel {
	return &Kernel{state: NewState()}
}

// Tick advances the wheel by one 100 Hz step (§4.5): apply a pending
// command if any, run the active control law, apply saturation
// limits, integrate dynamics, evaluate protections, and return the
// resulting snapshot. cmd may be nil when the mailbox was empty.
func (k *Kernel) Tick(cmd *Command) Snapshot {
	s := k.state
	if cmd != nil {
		k.apply(*cmd)
	}

	if s.FaultLatch == 0 && !s.LCLTripped {
		requested := s.runControlLaw()
		s.requestedCurrentA = requested
		current := s.applyLimits(requested)
		s.integrate(current)
	} else {
		// A latched fault or LCL trip forces current to zero and
		// skips further control this tick (§4.5 step 5), but the
		// wheel still coasts under its own loss torque.
		s.requestedCurrentA = 0
		s.integrate(0)
		s.CurrentOutA = 0
	}

	s.evaluateProtections()

	s.TickCount++
	s.UptimeSeconds = float64(s.TickCount) * TickSeconds

	return s.snapshot()
}

// HardReset applies the hardware RESET line (§6, §9).
func (k *Kernel) HardReset() {
	k.state.HardReset()
}

// InjectFault forces a protection bit, for scenario-engine use only
// (never reachable from the wire protocol).
func (k *Kernel) InjectFault(bit uint32, latch bool) {
	k.state.injectFault(bit, latch)
}

// Snapshot returns the current state without advancing a tick, used
// to publish an initial snapshot before the first tick runs.
func (k *Kernel) Snapshot() Snapshot {
	return k.state.snapshot()
}

// UpdateJitter folds the observed tick duration d into the running
// jitter-max diagnostic counter and returns its new value (PEEK
// register 0x23). The timing source lives in the driving loop
// (busxport.PhysicsLoop), not in the Kernel, so this is a plain
// accessor rather than something Tick computes itself.
func (k *Kernel) UpdateJitter(d time.Duration) int64 {
	ns := d.Nanoseconds()
	if ns > k.state.JitterMaxNs {
		k.state.JitterMaxNs = ns
	}
	return k.state.JitterMaxNs
}

func (k *Kernel) apply(cmd Command) {
	s := k.state
	switch cmd.Type {
	case CmdSetMode:
		finalMode := s.Mode
		if cmd.ModeChanged {
			finalMode = cmd.NewMode
		}
		if cmd.SetpointProvided {
			switch finalMode {
			case ModeCurrent:
				s.CurrentCmdA = fixedpoint.FromUQ32(cmd.SetpointRaw, fixedpoint.FracUQ14_18)
			case ModeSpeed:
				s.SpeedCmdRPM = fixedpoint.FromUQ32(cmd.SetpointRaw, fixedpoint.FracUQ14_18)
			case ModeTorque:
				s.TorqueCmdMNm = fixedpoint.FromQ32(int32(cmd.SetpointRaw), fixedpoint.FracQ10_22)
			case ModePWM:
				duty, negative := fixedpoint.PWMSetpoint(cmd.SetpointRaw)
				s.PWMDutyPct = duty
				if negative {
					s.PWMDirection = Negative
				} else {
					s.PWMDirection = Positive
				}
			}
		}
		if cmd.ModeChanged {
			s.Mode = finalMode
			if finalMode == ModeSpeed {
				s.pi = piScratch{}
			}
		}

	case CmdClearFault:
		s.clearFault(cmd.Mask)

	case CmdConfigureProtection:
		s.EnableMask = (^cmd.DisableMask) & 0xFF

	case CmdTripLCL:
		s.tripLCL()

	case CmdSoftReset:
		s.softReset()

	case CmdSetThreshold:
		v := fixedpoint.FromUQ32(cmd.FieldRaw, fixedpoint.FracQ16_16)
		switch cmd.Field {
		case ThresholdOvervoltage:
			s.Thresholds.OvervoltageV = v
		case ThresholdOverspeedHard:
			s.Thresholds.OverspeedHardRPM = v
		case ThresholdOverspeedSoft:
			s.Thresholds.OverspeedSoftRPM = v
		case ThresholdOverpower:
			s.Thresholds.OverpowerW = v
		case ThresholdSoftOvercurrent:
			s.Thresholds.SoftOvercurrentA = v
		case ThresholdMaxDuty:
			s.Thresholds.MaxDutyPercent = v
		case ThresholdBrakingLoad:
			s.Thresholds.BrakingLoadV = v
		}

	case CmdInjectFault:
		s.injectFault(cmd.Mask, cmd.InjectLatch)

	case CmdBumpCounter:
		switch cmd.Counter {
		case CounterFraming:
			s.FramingErrors++
		case CounterLength:
			s.LengthErrors++
		case CounterCRC:
			s.CRCErrors++
		}
	}
}
