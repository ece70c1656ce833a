package insulation

import "testing"

func Test_sameIsolationSideIsFunctional(tst *testing.T) {
	if got := SameIsolationSide(true, Reinforced); got != Functional {
		tst.Errorf("SameIsolationSide(true, Reinforced) = %v, want Functional", got)
	}
	if got := SameIsolationSide(false, Reinforced); got != Reinforced {
		tst.Errorf("SameIsolationSide(false, Reinforced) = %v, want Reinforced", got)
	}
}

func Test_functionalInsulationHasZeroBreakdownVoltage(tst *testing.T) {
	r := Requirement{InsulationType: Functional}
	sols := SolidInsulationSolutions(r, false)
	for _, s := range sols {
		if s.MinimumBreakdownVoltage != 0 {
			tst.Errorf("solution %q MinimumBreakdownVoltage = %v, want 0", s.Description, s.MinimumBreakdownVoltage)
		}
	}
}

func Test_reinforcedInsulationScenario(tst *testing.T) {
	// scenario 3: 400V main supply, OVC-II, reinforced, no FIW -> exactly
	// 3 solutions each >= 8000V, 3 layers, no grade constraint.
	r := Requirement{
		MainSupplyVoltage:   400,
		OvervoltageCategory: OVCII,
		CTI:                 CTIGroupI,
		Pollution:           Pollution2,
		InsulationType:       Reinforced,
		Standards:            []Standard{IEC60664_1},
	}
	sols := SolidInsulationSolutions(r, false)
	if len(sols) != 3 {
		tst.Fatalf("len(sols) = %d, want 3", len(sols))
	}
	for _, s := range sols {
		if s.MinimumBreakdownVoltage < 8000 {
			tst.Errorf("solution %q breakdown voltage = %v, want >= 8000", s.Description, s.MinimumBreakdownVoltage)
		}
		if s.MinimumNumberLayers != 3 {
			tst.Errorf("solution %q layers = %v, want 3", s.Description, s.MinimumNumberLayers)
		}
		if s.MinimumGrade != 0 {
			tst.Errorf("solution %q grade = %v, want 0 (unconstrained)", s.Description, s.MinimumGrade)
		}
	}
}

func Test_allowFIWAddsFourthSolution(tst *testing.T) {
	r := Requirement{MainSupplyVoltage: 400, OvervoltageCategory: OVCII, InsulationType: Reinforced}
	sols := SolidInsulationSolutions(r, true)
	if len(sols) != 4 {
		tst.Fatalf("len(sols) = %d, want 4 when FIW allowed", len(sols))
	}
}

func Test_clearanceIncreasesWithAltitude(tst *testing.T) {
	low := Requirement{MainSupplyVoltage: 400, OvervoltageCategory: OVCII, Altitude: 0}
	high := Requirement{MainSupplyVoltage: 400, OvervoltageCategory: OVCII, Altitude: 4000}
	if Clearance(high) <= Clearance(low) {
		tst.Errorf("Clearance(4000m) = %v, want > Clearance(0m) = %v", Clearance(high), Clearance(low))
	}
}

func Test_creepageIncreasesWithWorsePollutionAndCTI(tst *testing.T) {
	good := Requirement{MainSupplyVoltage: 400, OvervoltageCategory: OVCII, CTI: CTIGroupI, Pollution: Pollution1}
	bad := Requirement{MainSupplyVoltage: 400, OvervoltageCategory: OVCII, CTI: CTIGroupIIIB, Pollution: Pollution3}
	if Creepage(bad) <= Creepage(good) {
		tst.Errorf("Creepage(bad) = %v, want > Creepage(good) = %v", Creepage(bad), Creepage(good))
	}
}
