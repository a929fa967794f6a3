package wheel

// Snapshot is the value-typed copy of physics state the I/O worker
// reads through the single-slot telemetry exchange (§3, §4.7). It
// carries exactly the fields a telemetry or diagnostics reader needs;
// no reference into the live State ever leaves the physics worker.
type Snapshot struct {
	OmegaRadS    float64
	CurrentCmdA  float64
	RequestedCurrentA float64
	SpeedCmdRPM  float64
	TorqueCmdMNm float64
	PWMDutyPct   float64
	PWMDirection Direction

	CurrentOutA  float64
	TorqueOutMNm float64
	PowerOutW    float64
	BusVoltageV  float64

	Mode ControlMode

	Thresholds    Thresholds
	EnableMask    uint32
	FaultStatus   uint32
	FaultLatch    uint32
	WarningStatus uint32
	LCLTripped    bool

	TickCount       uint64
	UptimeSeconds   float64
	RevolutionCount uint32

	FramingErrors  uint32
	LengthErrors   uint32
	CRCErrors      uint32
	JitterMaxNs    int64
	FaultTickCount uint32
}

// snapshot copies the read-visible subset of s into a value-typed
// Snapshot (§4.5 step 6).
func (s *State) snapshot() Snapshot {
	return Snapshot{
		OmegaRadS:         s.OmegaRadS,
		CurrentCmdA:       s.CurrentCmdA,
		RequestedCurrentA: s.requestedCurrentA,
		SpeedCmdRPM:     s.SpeedCmdRPM,
		TorqueCmdMNm:    s.TorqueCmdMNm,
		PWMDutyPct:      s.PWMDutyPct,
		PWMDirection:    s.PWMDirection,
		CurrentOutA:     s.CurrentOutA,
		TorqueOutMNm:    s.TorqueOutMNm,
		PowerOutW:       s.PowerOutW,
		BusVoltageV:     s.BusVoltageV,
		Mode:            s.Mode,
		Thresholds:      s.Thresholds,
		EnableMask:      s.EnableMask,
		FaultStatus:     s.FaultStatus,
		FaultLatch:      s.FaultLatch,
		WarningStatus:   s.WarningStatus,
		LCLTripped:      s.LCLTripped,
		TickCount:       s.TickCount,
		UptimeSeconds:   s.UptimeSeconds,
		RevolutionCount: s.RevolutionCount,
		FramingErrors:   s.FramingErrors,
		LengthErrors:    s.LengthErrors,
		CRCErrors:       s.CRCErrors,
		JitterMaxNs:     s.JitterMaxNs,
		FaultTickCount:  s.FaultTickCount,
	}
}

// SpeedRPM returns the angular velocity in RPM.
func (s Snapshot) SpeedRPM() float64 {
	return s.OmegaRadS * 60 / (2 * 3.141592653589793)
}
