package wheel

// NominalBusVoltage is the unloaded bus rail voltage the simple power
// model regulates around (§1 Non-goals: no motor electromagnetics
// fidelity, so this is a loss model, not a PSU simulation).
const NominalBusVoltage = 28.0

// piScratch is the SPEED control law's anti-windup PI state, reset on
// every transition into SPEED mode (§3).
type piScratch struct {
	Integral   float64
	LastOutput float64
}

// State is the wheel's authoritative kinematic and electrical state,
// owned exclusively by the physics worker (§3, §5).
type State struct {
	// Kinematic.
	OmegaRadS float64 // angular velocity
	AngularH  float64 // angular momentum, H = Inertia * OmegaRadS

	// Command inputs, one active per mode.
	CurrentCmdA   float64
	SpeedCmdRPM   float64
	TorqueCmdMNm  float64
	PWMDutyPct    float64
	PWMDirection  Direction

	// Outputs.
	CurrentOutA  float64
	TorqueOutMNm float64
	PowerOutW    float64
	BusVoltageV  float64

	Mode ControlMode

	pi piScratch

	Thresholds   Thresholds
	EnableMask   uint32
	FaultStatus  uint32
	FaultLatch   uint32
	WarningStatus uint32
	LCLTripped   bool

	TickCount       uint64
	UptimeSeconds   float64
	RevolutionCount uint32

	// Diagnostic counters, surfaced through telemetry and PEEK (§9
	// design note: diagnostics never log from inside the tick).
	FramingErrors  uint32
	LengthErrors   uint32
	CRCErrors      uint32
	JitterMaxNs    int64
	FaultTickCount uint32

	omegaAccumRad float64 // fractional revolution accumulator

	// requestedCurrentA is the control law's pre-clamp output. It
	// drives the soft-overcurrent warning, so a command that gets
	// saturated away still reports that the drive asked for more than
	// the rated current (§8 boundary: "current_cmd = 7A ... saturates
	// current_out to <=6A and sets soft-overcurrent warning"), and it
	// is published as Snapshot.RequestedCurrentA for the STANDARD
	// block's current_target field.
	requestedCurrentA float64
}

// NewState returns a freshly booted wheel state: CURRENT mode, zero
// setpoint, default thresholds, all protections enabled (§6).
func NewState() *State {
	return &State{
		Mode:        ModeCurrent,
		Thresholds:  DefaultThresholds(),
		EnableMask:  AllProtectionsEnabled,
		BusVoltageV: NominalBusVoltage,
	}
}

// SpeedRPM returns the angular velocity in RPM.
func (s *State) SpeedRPM() float64 {
	return s.OmegaRadS * 60 / (2 * 3.141592653589793)
}

// softReset reinitializes command state on a mailbox RESET, preserving
// omega and H but resetting setpoints, mode, and PI scratch (§4.5 step
// 1, §9 design note distinguishing this from hardware reset).
func (s *State) softReset() {
	s.CurrentCmdA, s.SpeedCmdRPM, s.TorqueCmdMNm, s.PWMDutyPct = 0, 0, 0, 0
	s.PWMDirection = Positive
	s.Mode = ModeCurrent
	s.pi = piScratch{}
}

// HardReset applies the hardware RESET line semantics (§6, §9):
// clears lcl_tripped, clears all fault bits, restores default
// thresholds, but preserves omega and H. Unlike CLEAR-FAULT, this also
// clears the LCL bit.
func (s *State) HardReset() {
	omega, h := s.OmegaRadS, s.AngularH
	tickCount, uptime, revs := s.TickCount, s.UptimeSeconds, s.RevolutionCount
	framing, length, crc := s.FramingErrors, s.LengthErrors, s.CRCErrors
	*s = *NewState()
	s.OmegaRadS, s.AngularH = omega, h
	s.TickCount, s.UptimeSeconds, s.RevolutionCount = tickCount, uptime, revs
	s.FramingErrors, s.LengthErrors, s.CRCErrors = framing, length, crc
}
