package coil

import (
	"testing"

	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

func roundWinding(name string, turns, parallels int) Winding {
	return Winding{
		Name:            name,
		NumberTurns:     turns,
		NumberParallels: parallels,
		Wire:            wire.QuickRound(0.5e-3, wire.Material{Kind: wire.Copper}),
	}
}

func Test_interleavingPatternTwoWindings(tst *testing.T) {
	pattern := InterleavingPattern(2, 2)
	want := []int{0, 1, 0, 1}
	if len(pattern) != len(want) {
		tst.Fatalf("len(pattern) = %d, want %d", len(pattern), len(want))
	}
	for i := range want {
		if pattern[i] != want[i] {
			tst.Errorf("pattern[%d] = %d, want %d", i, pattern[i], want[i])
		}
	}
}

func Test_buildAccountsForEveryTurn(tst *testing.T) {
	windings := []Winding{roundWinding("primary", 40, 1), roundWinding("secondary", 20, 1)}
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.02, Height: 0.03}
	cfg := Config{InterleavingLevel: 1}
	margins := Margins{Window: 0.0005, Section: 0.0005, Layer: 0.0001, Turn: 0.00005}

	built, err := Build(windings, window, cfg, margins, false)
	if err != nil {
		tst.Fatalf("Build() error: %v", err)
	}
	if err := built.Validate(); err != nil {
		tst.Errorf("Validate() = %v, want nil", err)
	}
	counts := map[int]int{}
	for _, t := range built.Turns {
		counts[t.Winding]++
	}
	for i, w := range windings {
		if counts[i] != w.TotalConductors() {
			tst.Errorf("winding %d has %d turns, want %d", i, counts[i], w.TotalConductors())
		}
	}
}

func Test_buildFailsWhenTooManyTurnsForWindow(tst *testing.T) {
	windings := []Winding{roundWinding("primary", 4000, 1)}
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.002, Height: 0.002}
	cfg := Config{InterleavingLevel: 1}
	margins := Margins{Window: 0.0001, Layer: 0.0001, Turn: 0.00005}

	_, err := Build(windings, window, cfg, margins, false)
	if err == nil {
		tst.Errorf("Build() = nil error, want DoesNotFit-style error for an oversized coil")
	}
}

func Test_buildOverflowFlagWhenAllowed(tst *testing.T) {
	windings := []Winding{roundWinding("primary", 4000, 1)}
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRectangular, Width: 0.002, Height: 0.002}
	cfg := Config{InterleavingLevel: 1, AllowOverflow: true}
	margins := Margins{Window: 0.0001, Layer: 0.0001, Turn: 0.00005}

	built, err := Build(windings, window, cfg, margins, false)
	if err != nil {
		tst.Fatalf("Build() error: %v, want success with Overflow=true", err)
	}
	if !built.Overflow {
		tst.Errorf("Overflow = false, want true")
	}
}

func Test_toroidalOneTurnOneWinding(tst *testing.T) {
	windings := []Winding{roundWinding("primary", 1, 1)}
	window := geometry.WindingWindow{Shape: geometry.WindingWindowRound, Width: 0.05, AngularRange: 2 * 3.14159265}
	cfg := Config{InterleavingLevel: 1}
	margins := Margins{Turn: 0.0001}

	built, err := Build(windings, window, cfg, margins, true)
	if err != nil {
		tst.Fatalf("Build() error: %v", err)
	}
	if len(built.Turns) != 1 {
		tst.Fatalf("len(Turns) = %d, want 1", len(built.Turns))
	}
}

func Test_validateDetectsMismatchedTurnCount(tst *testing.T) {
	c := Coil{
		Windings: []Winding{roundWinding("primary", 10, 1)},
		Turns:    []Turn{{Winding: 0}, {Winding: 0}},
	}
	if err := c.Validate(); err == nil {
		tst.Errorf("Validate() = nil, want error for turn-count mismatch")
	}
}
