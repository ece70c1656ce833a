package wire

import (
	"math"
	"testing"
)

func Test_conductingAreaLeOuterArea(tst *testing.T) {
	wires := []Wire{
		QuickRound(0.71e-3, Material{Kind: Copper}),
		QuickLitz(50e-6, 100, Material{Kind: Copper}),
		{Kind: Rectangular, Material: Material{Kind: Copper}, ConductingWidth: 2e-3, ConductingHeight: 1e-3, OuterWidth: 2.1e-3, OuterHeight: 1.1e-3},
		{Kind: Foil, Material: Material{Kind: Copper}, ConductingWidth: 2e-3, ConductingHeight: 10e-3, OuterWidth: 2.1e-3, OuterHeight: 10.1e-3},
		{Kind: Planar, Material: Material{Kind: Copper}, TraceWidth: 3e-3, TraceThickness: 35e-6},
	}
	for _, w := range wires {
		if w.ConductingArea() > w.OuterArea() {
			tst.Errorf("kind %v: conducting area %v > outer area %v", w.Kind, w.ConductingArea(), w.OuterArea())
		}
		if err := w.Validate(); err != nil {
			tst.Errorf("kind %v: Validate() = %v, want nil", w.Kind, err)
		}
	}
}

func Test_resistancePerMeterIncreasesWithTemperature(tst *testing.T) {
	w := QuickRound(0.71e-3, Material{Kind: Copper})
	r20 := w.ResistancePerMeter(20)
	r100 := w.ResistancePerMeter(100)
	if r100 <= r20 {
		tst.Errorf("ResistancePerMeter(100) = %v, want > ResistancePerMeter(20) = %v", r100, r20)
	}
}

func Test_skinDepthDecreasesWithFrequency(tst *testing.T) {
	w := QuickRound(0.71e-3, Material{Kind: Copper})
	d1 := w.SkinDepth(100e3, 25)
	d2 := w.SkinDepth(1e6, 25)
	if d2 >= d1 {
		tst.Errorf("SkinDepth(1MHz) = %v, want < SkinDepth(100kHz) = %v", d2, d1)
	}
}

func Test_litzConductingAreaScalesWithStrands(tst *testing.T) {
	w := QuickLitz(50e-6, 100, Material{Kind: Copper})
	strandArea := w.Strand.ConductingArea()
	want := strandArea * 100
	if math.Abs(w.ConductingArea()-want) > 1e-15 {
		tst.Errorf("ConductingArea() = %v, want %v", w.ConductingArea(), want)
	}
}

func Test_coatingGradeBreakdownVoltage(tst *testing.T) {
	c := Coating{Grade: 2}
	if got := c.ResolveBreakdownVoltage(); got != 3000 {
		tst.Errorf("ResolveBreakdownVoltage() = %v, want 3000", got)
	}
}

func Test_coatingExplicitVoltageOverridesGrade(tst *testing.T) {
	c := Coating{Grade: 1, BreakdownVoltage: 9000}
	if got := c.ResolveBreakdownVoltage(); got != 9000 {
		tst.Errorf("ResolveBreakdownVoltage() = %v, want 9000", got)
	}
}

func Test_invalidWireFailsValidate(tst *testing.T) {
	w := Wire{Kind: Round, ConductingDiameter: 2e-3, OuterDiameter: 1e-3}
	if err := w.Validate(); err == nil {
		tst.Errorf("Validate() = nil, want error when conducting > outer")
	}
}
