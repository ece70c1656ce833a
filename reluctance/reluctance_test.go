package reluctance

import (
	"testing"

	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/settings"
)

func testCore() core.Core {
	return core.Core{
		Material:      core.Material{InitialPermeability: 2500},
		CentralColumn: core.Column{Height: 0.02},
		Effective: geometry.EffectiveParameters{
			EffectiveArea:   97e-6,
			EffectiveLength: 0.06,
		},
		Gaps: []core.Gap{{Type: core.GapGround, Length: 20e-6, Area: 97e-6}},
	}
}

func Test_calculateFailsWhenGapsExceedColumn(tst *testing.T) {
	c := testCore()
	c.Gaps = []core.Gap{{Type: core.GapGround, Length: 1.0, Area: 97e-6}}
	cfg := settings.NewDefaultSettings()
	_, err := Calculate(c, 10, 25, cfg)
	if err == nil {
		tst.Errorf("Calculate() = nil error, want InvalidGeometry")
	}
}

func Test_calculateIncreasesWithGapLength(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	small := testCore()
	small.Gaps[0].Length = 10e-6
	large := testCore()
	large.Gaps[0].Length = 100e-6

	rSmall, err := Calculate(small, 10, 25, cfg)
	if err != nil {
		tst.Fatalf("Calculate(small) error: %v", err)
	}
	rLarge, err := Calculate(large, 10, 25, cfg)
	if err != nil {
		tst.Fatalf("Calculate(large) error: %v", err)
	}
	if rLarge.Total <= rSmall.Total {
		tst.Errorf("Total reluctance did not increase with gap length: small=%v large=%v", rSmall.Total, rLarge.Total)
	}
}

func Test_allKernelsProduceFiniteReluctance(tst *testing.T) {
	c := testCore()
	for model := range kernels {
		cfg := settings.NewDefaultSettings()
		cfg.ReluctanceModel = model
		res, err := Calculate(c, 10, 25, cfg)
		if err != nil {
			tst.Errorf("model %v: Calculate() error: %v", model, err)
			continue
		}
		if res.Total <= 0 {
			tst.Errorf("model %v: Total = %v, want > 0", model, res.Total)
		}
	}
}

func Test_unknownModelIsError(tst *testing.T) {
	c := testCore()
	cfg := settings.NewDefaultSettings()
	cfg.ReluctanceModel = settings.ReluctanceModel(999)
	_, err := Calculate(c, 10, 25, cfg)
	if err == nil {
		tst.Errorf("Calculate() = nil error, want error for unknown model")
	}
}

func Test_zeroLengthGapTreatedAsResidual(tst *testing.T) {
	c := testCore()
	c.Gaps[0].Length = 0
	cfg := settings.NewDefaultSettings()
	res, err := Calculate(c, 10, 25, cfg)
	if err != nil {
		tst.Fatalf("Calculate() error: %v", err)
	}
	if res.Gaps[0] <= 0 {
		tst.Errorf("Gaps[0] = %v, want > 0 from residual floor", res.Gaps[0])
	}
}
