package wheel

import "math"

// runControlLaw computes a target current for the active mode (§4.5
// step 2). SPEED runs a PI loop with anti-windup against the wheel's
// own scratch state; the other three modes are stateless.
func (s *State) runControlLaw() float64 {
	switch s.Mode {
	case ModeCurrent:
		return s.CurrentCmdA

	case ModeSpeed:
		targetRadS := s.SpeedCmdRPM * math.Pi / 30
		err := targetRadS - s.OmegaRadS
		p := DefaultPIKp * err
		s.pi.Integral += err * TickSeconds
		clamp := DefaultIntegralA / DefaultPIKi
		if s.pi.Integral > clamp {
			s.pi.Integral = clamp
		} else if s.pi.Integral < -clamp {
			s.pi.Integral = -clamp
		}
		out := p + DefaultPIKi*s.pi.Integral
		s.pi.LastOutput = out
		return out

	case ModeTorque:
		return (s.TorqueCmdMNm / 1000) / TorqueConstant

	case ModePWM:
		duty := s.PWMDutyPct / 100
		out := duty * s.Thresholds.SoftOvercurrentA
		if s.PWMDirection == Negative {
			out = -out
		}
		return out

	default:
		return 0
	}
}

// applyLimits clamps current in the order spec.md §4.5 step 3
// requires: power limit, soft-overcurrent, duty-cycle.
func (s *State) applyLimits(current float64) float64 {
	if math.Abs(s.OmegaRadS) > 0.001 {
		limit := (s.Thresholds.OverpowerW / math.Abs(s.OmegaRadS)) / TorqueConstant
		current = clamp(current, -limit, limit)
	}
	current = clamp(current, -s.Thresholds.SoftOvercurrentA, s.Thresholds.SoftOvercurrentA)
	dutyLimit := s.Thresholds.SoftOvercurrentA * (s.Thresholds.MaxDutyPercent / 100)
	current = clamp(current, -dutyLimit, dutyLimit)
	return current
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// integrate applies one tick's dynamics (§4.5 step 4): motor torque,
// loss torque, net angular acceleration, and the resulting electrical
// power and bus voltage.
func (s *State) integrate(current float64) {
	// current itself already carries direction: TORQUE's wire setpoint
	// is a signed Q10.22 and SPEED's PI error term goes negative
	// whenever ω overshoots the (unsigned-magnitude) setpoint, so
	// motor torque just follows current's sign. CURRENT and SPEED have
	// no way to command sustained reverse rotation, since §4.4 gives
	// both an unsigned UQ14.18 wire setpoint — only PWM's signed
	// 32-bit setpoint packs an explicit direction bit.
	motorTorqueMNm := 1000 * TorqueConstant * current

	sign := 0.0
	switch {
	case s.OmegaRadS > 0:
		sign = 1
	case s.OmegaRadS < 0:
		sign = -1
	}
	lossTorqueMNm := 1000 * (LossCoeffA*s.OmegaRadS + LossCoeffB*sign + LossCoeffC*current*current)

	netTorqueMNm := motorTorqueMNm - lossTorqueMNm
	alpha := (netTorqueMNm / 1000) / Inertia
	// Power is taken at the start-of-tick omega, the same omega
	// applyLimits used for the power clamp, so a power-limited current
	// never reads as over the overpower threshold.
	omegaStart := s.OmegaRadS
	s.OmegaRadS += alpha * TickSeconds
	s.AngularH = Inertia * s.OmegaRadS

	s.CurrentOutA = current
	s.TorqueOutMNm = motorTorqueMNm
	s.PowerOutW = (motorTorqueMNm / 1000) * omegaStart

	// Simple loss-only bus model (§1 Non-goals: no electromagnetics
	// fidelity). Draw sags the rail; regenerative braking (motor
	// torque opposing rotation) raises it.
	drop := math.Abs(current) * 0.15
	s.BusVoltageV = NominalBusVoltage - drop
	if motorTorqueMNm*s.OmegaRadS < 0 {
		s.BusVoltageV += math.Abs(s.PowerOutW) * 0.05
	}

	s.updateRevolutionCount()
}

func (s *State) updateRevolutionCount() {
	s.omegaAccumRad += s.OmegaRadS * TickSeconds
	const twoPi = 2 * math.Pi
	for s.omegaAccumRad >= twoPi {
		s.omegaAccumRad -= twoPi
		s.RevolutionCount++
	}
	for s.omegaAccumRad <= -twoPi {
		s.omegaAccumRad += twoPi
		s.RevolutionCount++
	}
}
