package adviser

import (
	"context"
	"math"
	"testing"

	"github.com/OpenMagnetics/mkf-sub006/catalogue"
	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/filter"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/mas"
	"github.com/OpenMagnetics/mkf-sub006/operatingpoint"
	"github.com/OpenMagnetics/mkf-sub006/settings"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

func Test_adviseCoresReturnsTopK(tst *testing.T) {
	reg := catalogue.New()
	reg.Cores["small"] = core.Core{ShapeFamily: "EE", NumberStacks: 1}
	reg.Cores["medium"] = core.Core{ShapeFamily: "EE", NumberStacks: 1}
	reg.Cores["large"] = core.Core{ShapeFamily: "EE", NumberStacks: 1}

	cfg := settings.NewDefaultSettings()
	filters := []filter.Filter{{Name: "constant", Score: func(c any) (float64, error) { return 1, nil }}}

	results, err := AdviseCores(context.Background(), reg, cfg, filters, 2)
	if err != nil {
		tst.Fatalf("AdviseCores() error: %v", err)
	}
	if len(results) != 2 {
		tst.Fatalf("len(results) = %d, want 2", len(results))
	}
}

func Test_adviseCoresExcludesToroidalWhenDisabled(tst *testing.T) {
	reg := catalogue.New()
	reg.Cores["concentric"] = core.Core{ShapeFamily: "EE", NumberStacks: 1}
	reg.Cores["toroid"] = core.Core{ShapeFamily: "Toroidal", NumberStacks: 1}

	cfg := settings.NewDefaultSettings()
	cfg.UseToroidalCores = false
	filters := []filter.Filter{{Name: "constant", Score: func(c any) (float64, error) { return 1, nil }}}

	results, err := AdviseCores(context.Background(), reg, cfg, filters, 0)
	if err != nil {
		tst.Fatalf("AdviseCores() error: %v", err)
	}
	if len(results) != 1 {
		tst.Fatalf("len(results) = %d, want 1 (toroidal excluded)", len(results))
	}
	if results[0].Candidate.(core.Core).ShapeFamily != "EE" {
		tst.Errorf("surviving candidate = %+v, want the EE core", results[0].Candidate)
	}
}

func Test_adviseCoresFailsOnNilRegistry(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	if _, err := AdviseCores(context.Background(), nil, cfg, nil, 0); err == nil {
		tst.Errorf("AdviseCores() = nil error, want error for nil registry")
	}
}

func testCoreForAdviser() core.Core {
	return core.Core{
		ShapeFamily:   "EE",
		Material:      core.Material{InitialPermeability: 2500, SaturationFluxDensity: 0.4, SteinmetzK: 1, SteinmetzAlpha: 1.3, SteinmetzBeta: 2.5},
		CentralColumn: core.Column{Height: 0.02, Width: 0.01, Depth: 0.01},
		Effective: geometry.EffectiveParameters{
			EffectiveArea:   97e-6,
			EffectiveLength: 0.06,
			EffectiveVolume: 97e-6 * 0.06,
		},
		Gaps: []core.Gap{{Type: core.GapGround, Length: 20e-6, Area: 97e-6}},
	}
}

func testWindingsForAdviser() []coil.Winding {
	w := wire.QuickRound(0.5e-3, wire.Material{Kind: wire.Copper})
	return []coil.Winding{
		{Name: "primary", NumberTurns: 40, NumberParallels: 1, Wire: w},
		{Name: "secondary", NumberTurns: 20, NumberParallels: 1, Wire: w},
	}
}

func testWindowForAdviser() geometry.WindingWindow {
	return geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
}

func testMarginsForAdviser() coil.Margins {
	return coil.Margins{Window: 0.0005, Section: 0.0005, Layer: 0.0001, Turn: 0.00005}
}

func Test_synthesizeCoilsProducesCandidates(tst *testing.T) {
	candidates := SynthesizeCoils(testCoreForAdviser(), testWindingsForAdviser(), testWindowForAdviser(), testMarginsForAdviser(), nil, []int{1, 2})
	if len(candidates) == 0 {
		tst.Fatalf("SynthesizeCoils() = 0 candidates, want at least 1")
	}
	for _, c := range candidates {
		if len(c.Magnetic.Coil.Turns) == 0 {
			tst.Errorf("candidate has no placed turns")
		}
	}
}

func Test_adviseCoilsRanksByScore(tst *testing.T) {
	filters := []filter.Filter{{Name: "turnsCount", Score: func(c any) (float64, error) {
		m := c.(mas.Mas)
		return float64(len(m.Magnetic.Coil.Turns)), nil
	}}}
	results, err := AdviseCoils(context.Background(), testCoreForAdviser(), testWindingsForAdviser(), testWindowForAdviser(), testMarginsForAdviser(), nil, []int{1, 2}, filters, 1)
	if err != nil {
		tst.Fatalf("AdviseCoils() error: %v", err)
	}
	if len(results) != 1 {
		tst.Fatalf("len(results) = %d, want 1", len(results))
	}
}

func Test_adviseCoilsFailsWithNoCandidates(tst *testing.T) {
	if _, err := AdviseCoils(context.Background(), core.Core{}, nil, geometry.WindingWindow{}, coil.Margins{}, nil, nil, nil, 0); err == nil {
		tst.Errorf("AdviseCoils() = nil error, want error for empty candidates")
	}
}

func sineSignal() operatingpoint.Signal {
	n := 32
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return operatingpoint.Signal{Frequency: 100e3, Samples: samples}
}

func testMagneticCandidateInputs() MagneticCandidateInputs {
	return MagneticCandidateInputs{
		Design:          mas.DesignRequirements{},
		OperatingPoints: []operatingpoint.Signal{sineSignal()},
		Temperature:     25,
	}
}

func Test_adviseMagneticsFailsWithNoCandidates(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	if _, err := AdviseMagnetics(context.Background(), nil, testWindowForAdviser(), testMagneticCandidateInputs(), cfg, nil, 0); err == nil {
		tst.Errorf("AdviseMagnetics() = nil error, want error for empty candidates")
	}
}

func Test_adviseMagneticsComputesOutputsAndScores(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	coilCandidates := SynthesizeCoils(testCoreForAdviser(), testWindingsForAdviser(), testWindowForAdviser(), testMarginsForAdviser(), nil, []int{1})
	if len(coilCandidates) == 0 {
		tst.Fatalf("SynthesizeCoils() produced no candidates")
	}
	filters := []filter.Filter{{Name: "constant", Score: func(c any) (float64, error) { return 1, nil }}}

	results, err := AdviseMagnetics(context.Background(), coilCandidates, testWindowForAdviser(), testMagneticCandidateInputs(), cfg, filters, 0)
	if err != nil {
		tst.Fatalf("AdviseMagnetics() error: %v", err)
	}
	if len(results) == 0 {
		tst.Fatalf("len(results) = 0, want at least 1")
	}
	m := results[0].Candidate.(mas.Mas)
	if len(m.Outputs) != 1 {
		tst.Fatalf("len(Outputs) = %d, want 1 (one per operating point)", len(m.Outputs))
	}
	if m.Outputs[0].ResistanceMatrix.Diagonal == nil {
		tst.Errorf("ResistanceMatrix.Diagonal = nil, want computed resistance")
	}
}

func Test_adviseMagneticsRespectsContextCancellation(tst *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := settings.NewDefaultSettings()
	coilCandidates := SynthesizeCoils(testCoreForAdviser(), testWindingsForAdviser(), testWindowForAdviser(), testMarginsForAdviser(), nil, []int{1})
	filters := []filter.Filter{{Name: "constant", Score: func(c any) (float64, error) { return 1, nil }}}

	results, err := AdviseMagnetics(ctx, coilCandidates, testWindowForAdviser(), testMagneticCandidateInputs(), cfg, filters, 0)
	if err != nil {
		tst.Fatalf("AdviseMagnetics() error: %v", err)
	}
	if len(results) > len(coilCandidates) {
		tst.Errorf("len(results) = %d, want at most %d even with a cancelled context", len(results), len(coilCandidates))
	}
}
