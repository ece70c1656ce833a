// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package losses implements the winding ohmic loss model of spec.md §4.8:
// per-turn, per-harmonic DC, skin-effect and proximity-effect losses,
// litz strand-level scaling and packing factor, and NaN/Inf-guarded
// aggregation across turns and harmonics.
package losses

import (
	"math"
	"sort"

	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/field"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/safenum"
	"github.com/OpenMagnetics/mkf-sub006/settings"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

// Harmonic is one term of a current's harmonic decomposition: an RMS
// amplitude at a given frequency.
type Harmonic struct {
	Frequency float64
	RMS       float64
}

// TurnLosses is the DC/skin/proximity breakdown for a single turn at a
// single harmonic.
type TurnLosses struct {
	DC         float64
	Skin       float64
	Proximity  float64
}

// Total returns DC+Skin+Proximity.
func (t TurnLosses) Total() float64 {
	return t.DC + t.Skin + t.Proximity
}

// PerWinding is one winding's loss total, decomposed the same way as
// TurnLosses but summed across every turn and harmonic of that winding.
type PerWinding struct {
	DC        float64
	Skin      float64
	Proximity float64
}

// Total returns DC+Skin+Proximity.
func (p PerWinding) Total() float64 {
	return p.DC + p.Skin + p.Proximity
}

// PerTurnLosses names the turn/winding/harmonic a TurnLosses breakdown
// belongs to, so the per-turn detail spec.md §4.8 asks for survives past
// aggregation instead of being discarded.
type PerTurnLosses struct {
	Turn      int
	Winding   int
	Frequency float64
	TurnLosses
}

// OhmicLosses is the aggregated result across every turn and harmonic: a
// DC/skin/proximity breakdown per winding, the same breakdown per
// individual turn and harmonic, and the grand total.
type OhmicLosses struct {
	ByWinding       map[int]PerWinding
	PerTurn         []PerTurnLosses
	Total           float64
	NumericalIssues int // count of non-finite per-turn terms that were zeroed
}

// effectiveWireAndCount resolves a wire into the conductor(s) that actually
// carry current for skin/proximity purposes: litz wire is evaluated per
// strand and scaled by strand count, everything else is evaluated as one
// conductor (spec.md §4.8's litz packing-factor rule).
func effectiveWireAndCount(w wire.Wire) (wire.Wire, int) {
	if w.Kind == wire.Litz && w.Strand != nil {
		return *w.Strand, w.NumberStrands
	}
	return w, 1
}

// skinEffectFactor returns the AC/DC resistance ratio from the classic
// Dowell-style porosity relation: F_r = xi * (sinh(2xi)+sin(2xi)) /
// (cosh(2xi)-cos(2xi)), with xi = thickness/(sqrt(2)*skinDepth) for the
// conductor's current-carrying dimension.
func skinEffectFactor(thickness, skinDepth float64) float64 {
	if skinDepth <= 0 || math.IsInf(skinDepth, 0) {
		return 1
	}
	xi := thickness / (skinDepth * math.Sqrt2)
	if xi < 1e-6 {
		return 1
	}
	num := xi * (math.Sinh(2*xi) + math.Sin(2*xi))
	den := math.Cosh(2*xi) - math.Cos(2*xi)
	if den == 0 {
		return 1
	}
	return num / den
}

// proximityEffectFactor scales the externally-imposed field's contribution
// to AC resistance, following the AC excess (F_r - 1) of skinEffectFactor,
// so it vanishes at DC, and driven by the dimensionless ratio of the
// external field magnitude times the conductor thickness to the turn's own
// current, per the Dowell two-term decomposition used throughout
// spec.md §4.8.
func proximityEffectFactor(thickness, skinDepth, externalH, ownAmpereTurns float64) float64 {
	if ownAmpereTurns == 0 {
		return 0
	}
	base := skinEffectFactor(thickness, skinDepth) - 1
	g := math.Abs(externalH) * thickness / math.Abs(ownAmpereTurns)
	return base * g * g
}

// conductorThickness returns the dimension relevant to skin/proximity loss
// for the resolved conductor (diameter for round, height for rectangular,
// thickness for foil/planar).
func conductorThickness(w wire.Wire) float64 {
	switch w.Kind {
	case wire.Round:
		return w.ConductingDiameter
	case wire.Rectangular, wire.Foil:
		return w.ConductingHeight
	case wire.Planar:
		return w.TraceThickness
	default:
		return w.ConductingDiameter
	}
}

// PerTurn computes the DC, skin-effect and proximity-effect losses for one
// turn at one harmonic, per spec.md §4.8. externalH is the field magnitude
// at the turn's location excluding its own contribution (from the field
// package); ownAmpereTurns is this turn's current times its number of
// parallels.
func PerTurn(w wire.Wire, harmonic Harmonic, length, temperature, externalH, ownAmpereTurns float64) (TurnLosses, error) {
	if harmonic.RMS < 0 {
		return TurnLosses{}, merr.New(merr.InvalidInput, "losses.PerTurn", "negative RMS current %v", harmonic.RMS)
	}
	resolved, count := effectiveWireAndCount(w)
	rPerMeter := resolved.ResistancePerMeter(temperature)
	if math.IsNaN(rPerMeter) || math.IsInf(rPerMeter, 0) || rPerMeter < 0 {
		return TurnLosses{}, merr.New(merr.ResistanceTooHigh, "losses.PerTurn", "non-finite resistance per meter %v", rPerMeter)
	}
	rPerStrand := rPerMeter * length
	rTotal := rPerStrand / float64(count)

	dc := harmonic.RMS * harmonic.RMS * rTotal

	skinDepth := resolved.SkinDepth(harmonic.Frequency, temperature)
	thickness := conductorThickness(resolved)
	skinFactor := skinEffectFactor(thickness, skinDepth)
	skin := dc * (skinFactor - 1)
	if skin < 0 {
		skin = 0
	}

	proxFactor := proximityEffectFactor(thickness, skinDepth, externalH, ownAmpereTurns)
	proximity := dc * proxFactor

	return TurnLosses{DC: dc, Skin: skin, Proximity: proximity}, nil
}

// AggregateWindings walks every turn of the built coil across the supplied
// per-winding harmonic spectra, summing DC/skin/proximity losses with
// safenum's NaN/Inf guard so that a single bad term cannot poison the
// total, per spec.md §4.8's aggregation invariant.
//
// Harmonics are grouped by frequency before the per-turn loop runs, so
// that every winding carrying current at a given frequency contributes to
// the shared currents vector passed to the field package: a turn's
// proximity term sees every other winding's simultaneous excitation at
// that frequency, not just its own (the previous per-winding loop zeroed
// every other winding's current, so cross-winding proximity coupling could
// never be observed).
func AggregateWindings(c core.Core, built coil.Coil, window geometry.WindingWindow, harmonicsByWinding map[int][]Harmonic, temperature float64, cfg *settings.Settings) (OhmicLosses, error) {
	groups := make(map[float64]map[int]float64)
	frequencies := make([]float64, 0, 4)
	for winding, harmonics := range harmonicsByWinding {
		for _, h := range harmonics {
			g, ok := groups[h.Frequency]
			if !ok {
				g = make(map[int]float64)
				groups[h.Frequency] = g
				frequencies = append(frequencies, h.Frequency)
			}
			g[winding] = h.RMS
		}
	}
	sort.Float64s(frequencies)

	byWinding := make(map[int]PerWinding, len(built.Windings))
	var perTurn []PerTurnLosses
	acc := safenum.Accumulator{}
	length := meanTurnLength(window)

	for _, frequency := range frequencies {
		group := groups[frequency]
		currents := make([]float64, len(built.Windings))
		for winding, rms := range group {
			currents[winding] = rms
		}
		for idx, turn := range built.Turns {
			rms, ok := group[turn.Winding]
			if !ok {
				continue
			}
			w := built.Windings[turn.Winding].Wire
			externalH, err := externalFieldExcludingTurn(c, built, window, currents, idx, cfg)
			if err != nil {
				return OhmicLosses{}, err
			}
			tl, err := PerTurn(w, Harmonic{Frequency: frequency, RMS: rms}, length, temperature, externalH, rms)
			if err != nil {
				return OhmicLosses{}, err
			}
			acc.Add(tl.Total())

			pw := byWinding[turn.Winding]
			pw.DC += safe(tl.DC)
			pw.Skin += safe(tl.Skin)
			pw.Proximity += safe(tl.Proximity)
			byWinding[turn.Winding] = pw

			perTurn = append(perTurn, PerTurnLosses{Turn: idx, Winding: turn.Winding, Frequency: frequency, TurnLosses: tl})
		}
	}

	return OhmicLosses{ByWinding: byWinding, PerTurn: perTurn, Total: acc.Total, NumericalIssues: acc.Replaced}, nil
}

func safe(v float64) float64 {
	s, _ := safenum.Safe(v)
	return s
}

// meanTurnLength approximates one turn's length from the window geometry.
func meanTurnLength(window geometry.WindingWindow) float64 {
	if window.Shape == geometry.WindingWindowRound {
		return math.Pi * window.Width
	}
	return 2 * (window.Width + window.Height)
}

// externalFieldExcludingTurn evaluates the field package's H(x,y) at a
// turn's own position, from every other turn's current, approximating the
// "external field" term in the proximity-effect model.
func externalFieldExcludingTurn(c core.Core, built coil.Coil, window geometry.WindingWindow, currents []float64, turnIndex int, cfg *settings.Settings) (float64, error) {
	reduced := built
	reduced.Turns = append(append([]coil.Turn{}, built.Turns[:turnIndex]...), built.Turns[turnIndex+1:]...)
	p := built.Turns[turnIndex].Coordinates
	return field.AtPoint(reduced, c, window, currents, p, cfg)
}
