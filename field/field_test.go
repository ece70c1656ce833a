package field

import (
	"math"
	"testing"

	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/settings"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

func testWindings() []coil.Winding {
	w := wire.QuickRound(0.5e-3, wire.Material{Kind: wire.Copper})
	return []coil.Winding{{Name: "primary", NumberTurns: 10, NumberParallels: 1, Wire: w}}
}

func testBuiltCoil(tst *testing.T) coil.Coil {
	tst.Helper()
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	cfg := coil.Config{InterleavingLevel: 1}
	margins := coil.Margins{Window: 0.0005, Section: 0.0005, Layer: 0.0001, Turn: 0.00005}
	built, err := coil.Build(testWindings(), window, cfg, margins, false)
	if err != nil {
		tst.Fatalf("coil.Build() error: %v", err)
	}
	return built
}

func testCore() core.Core {
	return core.Core{
		Material:      core.Material{InitialPermeability: 2500},
		CentralColumn: core.Column{Height: 0.02},
		Gaps:          []core.Gap{{Type: core.GapGround, Length: 20e-6, Area: 97e-6}},
	}
}

func Test_atPointIsFiniteAwayFromSources(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	built := testBuiltCoil(tst)
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	currents := []float64{1.0}
	h, err := AtPoint(built, testCore(), window, currents, geometry.Point{X: 0.05, Y: 0.05}, cfg)
	if err != nil {
		tst.Fatalf("AtPoint() error: %v", err)
	}
	if math.IsNaN(h) || math.IsInf(h, 0) {
		tst.Errorf("AtPoint() = %v, want finite", h)
	}
	if h < 0 {
		tst.Errorf("AtPoint() = %v, want non-negative magnitude", h)
	}
}

func Test_atPointRejectsMismatchedCurrents(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	built := testBuiltCoil(tst)
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	if _, err := AtPoint(built, testCore(), window, []float64{1, 2}, geometry.Point{X: 0.05, Y: 0.05}, cfg); err == nil {
		tst.Errorf("AtPoint() = nil error, want error when currents length mismatches windings")
	}
}

func Test_fieldDecreasesWithDistance(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	cfg.MagneticFieldIncludeFringing = false
	cfg.MagneticFieldMirroringDimension = 0
	built := testBuiltCoil(tst)
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	currents := []float64{1.0}

	near, err := AtPoint(built, testCore(), window, currents, geometry.Point{X: 0.03, Y: 0.015}, cfg)
	if err != nil {
		tst.Fatalf("AtPoint() error: %v", err)
	}
	far, err := AtPoint(built, testCore(), window, currents, geometry.Point{X: 1.0, Y: 0.015}, cfg)
	if err != nil {
		tst.Fatalf("AtPoint() error: %v", err)
	}
	if far >= near {
		tst.Errorf("AtPoint() far = %v, near = %v, want far < near", far, near)
	}
}

func Test_gridMatchesShape(tst *testing.T) {
	cfg := settings.NewDefaultSettings()
	built := testBuiltCoil(tst)
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	currents := []float64{1.0}
	points := [][]geometry.Point{
		{{X: 0.03, Y: 0.01}, {X: 0.04, Y: 0.01}},
		{{X: 0.03, Y: 0.02}, {X: 0.04, Y: 0.02}},
	}
	grid, err := Grid(built, testCore(), window, currents, points, cfg)
	if err != nil {
		tst.Fatalf("Grid() error: %v", err)
	}
	if len(grid) != len(points) {
		tst.Fatalf("len(grid) = %d, want %d", len(grid), len(points))
	}
	for i := range points {
		if len(grid[i]) != len(points[i]) {
			tst.Errorf("len(grid[%d]) = %d, want %d", i, len(grid[i]), len(points[i]))
		}
	}
}

func Test_allFourKernelsProduceFiniteResults(tst *testing.T) {
	built := testBuiltCoil(tst)
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	currents := []float64{1.0}
	models := []settings.FieldModel{settings.FieldAlbach, settings.FieldBinnsLawrenson, settings.FieldWang, settings.FieldLammeraner}
	for _, model := range models {
		cfg := settings.NewDefaultSettings()
		cfg.MagneticFieldStrengthModel = model
		h, err := AtPoint(built, testCore(), window, currents, geometry.Point{X: 0.05, Y: 0.05}, cfg)
		if err != nil {
			tst.Fatalf("AtPoint() with model %v error: %v", model, err)
		}
		if math.IsNaN(h) || math.IsInf(h, 0) {
			tst.Errorf("AtPoint() with model %v = %v, want finite", model, h)
		}
	}
}
