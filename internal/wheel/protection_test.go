package wheel

import "testing"

func TestClearFaultNeverClearsLCLBit(t *testing.T) {
	s := NewState()
	s.tripLCL()
	s.clearFault(0xFFFFFFFF)
	if s.FaultLatch&LCLBit == 0 {
		t.Errorf("LCLBit must survive CLEAR-FAULT regardless of mask")
	}
}

func TestClearFaultClearsSelectedBits(t *testing.T) {
	s := NewState()
	s.FaultStatus = FaultOverduty | FaultOverpower
	s.FaultLatch = FaultOverduty | FaultOverpower
	s.clearFault(FaultOverduty)
	if s.FaultStatus&FaultOverduty != 0 || s.FaultLatch&FaultOverduty != 0 {
		t.Errorf("expected FaultOverduty cleared, got status=0x%X latch=0x%X", s.FaultStatus, s.FaultLatch)
	}
	if s.FaultStatus&FaultOverpower == 0 || s.FaultLatch&FaultOverpower == 0 {
		t.Errorf("expected FaultOverpower to remain set")
	}
}

func TestDisabledProtectionNeverFires(t *testing.T) {
	s := NewState()
	s.EnableMask = 0
	s.OmegaRadS = 100000 // absurdly fast, would otherwise trip overspeed
	s.evaluateProtections()
	if s.FaultStatus != 0 {
		t.Errorf("expected no faults with all protections disabled, got 0x%X", s.FaultStatus)
	}
}

func TestConfigureProtectionInvertsDisableMask(t *testing.T) {
	k := NewKernel()
	k.Tick(&Command{Type: CmdConfigureProtection, DisableMask: EnableOverspeedHard})
	if k.state.EnableMask&EnableOverspeedHard != 0 {
		t.Errorf("overspeed-hard should be disabled after CONFIGURE-PROTECTION with its bit in disable_mask")
	}
	if k.state.EnableMask&EnableOvervoltage == 0 {
		t.Errorf("overvoltage should remain enabled")
	}
}

func TestTripLCLLatchesAllFaults(t *testing.T) {
	s := NewState()
	s.tripLCL()
	if s.FaultLatch != AllFaults {
		t.Errorf("fault_latch = 0x%X, want all-ones", s.FaultLatch)
	}
	if s.CurrentOutA != 0 {
		t.Errorf("current_out must be zero immediately on TRIP-LCL")
	}
}

func TestInjectFaultHonorsLatchFlag(t *testing.T) {
	s := NewState()
	s.injectFault(FaultEDAC, false)
	if s.FaultLatch != 0 {
		t.Errorf("unlatched fault injection must not touch fault_latch")
	}
	s.injectFault(FaultEDAC, true)
	if s.FaultLatch&FaultEDAC == 0 {
		t.Errorf("latched fault injection must set fault_latch")
	}
}
