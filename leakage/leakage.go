// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package leakage implements the two-winding leakage inductance primitive
// of spec.md §4.3: a piecewise-linear MMF profile across the winding
// window height, integrated as leakage energy, with a skin-depth
// correction applied at higher frequency and a multi-winding extension
// that returns a list indexed by the other windings with a zero diagonal.
package leakage

import (
	"math"
	"sort"

	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

const mu0 = 4 * math.Pi * 1e-7

// sectionSlice holds the stack-axis extent and net ampere-turns of one
// section, used to build the piecewise-linear MMF profile.
type sectionSlice struct {
	start, thickness float64
	netAmpereTurns   float64
}

// meanTurnLength approximates the mean length of one turn from the
// winding window's geometry; callers may override by constructing the
// slices directly where a more precise value is known.
func meanTurnLength(window geometry.WindingWindow) float64 {
	if window.Shape == geometry.WindingWindowRound {
		return math.Pi * window.Width
	}
	return 2 * (window.Width + window.Height)
}

// buildSlices walks the built coil's sections in stack-axis order and
// accumulates each section's net ampere-turns for the (i,j) pair: winding
// i carries +currentI*turns, winding j carries -currentJ*turns (opposing
// ampere-turns), every other winding contributes 0.
func buildSlices(c coil.Coil, i, j int, currentI, currentJ float64) []sectionSlice {
	slices := make([]sectionSlice, 0, len(c.Sections))
	for idx, sec := range c.Sections {
		turnsInSection := 0
		for _, t := range c.Turns {
			if t.SectionIndex == idx {
				turnsInSection++
			}
		}
		var net float64
		switch sec.WindingIndex {
		case i:
			net = currentI * float64(turnsInSection)
		case j:
			net = -currentJ * float64(turnsInSection)
		}
		slices = append(slices, sectionSlice{thickness: sec.Thickness, netAmpereTurns: net})
	}
	// assign cumulative start offsets in section order (already the build
	// order, which runs along the stacking axis)
	cursor := 0.0
	for k := range slices {
		slices[k].start = cursor
		cursor += slices[k].thickness
	}
	return slices
}

// skinFraction returns the fraction of a section's thickness over which
// the MMF ramps linearly, shrinking as frequency rises and the current
// crowds toward the conductor edges (spec.md §4.3's frequency-dependence
// rule). At DC the ramp spans the full section, matching the textbook
// uniform-current-density assumption.
func skinFraction(thickness float64, w wire.Wire, frequency, temperature float64) float64 {
	if frequency <= 0 || thickness <= 0 {
		return 1.0
	}
	delta := w.SkinDepth(frequency, temperature)
	fraction := delta / thickness
	if fraction > 1 {
		fraction = 1
	}
	if fraction < 0.05 {
		fraction = 0.05 // floor: never fully collapse the ramp
	}
	return fraction
}

// energy integrates (mu0/2) * H(x)^2 over the winding window volume using
// the piecewise-linear MMF profile built from slices, returning the
// leakage energy in Joules for unit current convention already baked into
// slices' ampere-turns.
func energy(slices []sectionSlice, mlt float64) float64 {
	// build MMF profile samples: (position, cumulative ampere-turns before
	// ramp, cumulative after ramp) using trapezoid-rule numeric integration
	const samplesPerSection = 8
	cumulative := 0.0
	total := 0.0
	for _, s := range slices {
		if s.thickness <= 0 {
			cumulative += s.netAmpereTurns
			continue
		}
		for k := 0; k < samplesPerSection; k++ {
			x0 := float64(k) / samplesPerSection
			x1 := float64(k+1) / samplesPerSection
			f0 := cumulative + s.netAmpereTurns*x0
			f1 := cumulative + s.netAmpereTurns*x1
			h0 := f0 / mlt
			h1 := f1 / mlt
			dx := s.thickness / samplesPerSection
			// trapezoid rule on H^2
			total += 0.5 * (h0*h0 + h1*h1) * dx
		}
		cumulative += s.netAmpereTurns
	}
	return 0.5 * mu0 * mlt * total
}

// AtFrequency computes the leakage inductance seen from winding i when
// winding j carries opposing ampere-turns at the given frequency, per
// spec.md §4.3. currentI/currentJ set the ampere-turn balance; pass equal
// magnitudes (e.g. 1, Ni/Nj) for the idealized two-winding case.
func AtFrequency(c coil.Coil, window geometry.WindingWindow, i, j int, currentI, currentJ, frequency, temperature float64) (float64, error) {
	if i == j {
		return 0, nil
	}
	if i < 0 || j < 0 || i >= len(c.Windings) || j >= len(c.Windings) {
		return 0, merr.New(merr.InvalidInput, "leakage.AtFrequency", "winding index out of range: i=%d j=%d", i, j)
	}
	if currentI == 0 {
		return 0, merr.New(merr.InvalidInput, "leakage.AtFrequency", "currentI must be non-zero")
	}

	slices := buildSlices(c, i, j, currentI, currentJ)
	applySkinCorrection(slices, c, i, j, frequency, temperature)
	mlt := meanTurnLength(window)
	w := energy(slices, mlt)
	return 2 * w / (currentI * currentI), nil
}

// applySkinCorrection shrinks each section's effective ramp thickness by
// its skin fraction, in place.
func applySkinCorrection(slices []sectionSlice, c coil.Coil, i, j int, frequency, temperature float64) {
	if frequency <= 0 {
		return
	}
	for idx := range slices {
		if idx >= len(c.Sections) {
			continue
		}
		sec := c.Sections[idx]
		var w wire.Wire
		switch sec.WindingIndex {
		case i:
			w = c.Windings[i].Wire
		case j:
			w = c.Windings[j].Wire
		default:
			continue
		}
		fraction := skinFraction(slices[idx].thickness, w, frequency, temperature)
		slices[idx].thickness *= fraction
	}
	cursor := 0.0
	for k := range slices {
		slices[k].start = cursor
		cursor += slices[k].thickness
	}
}

// AllWindings computes leakage_inductance_all_windings(i): the leakage
// inductance from winding i to every other winding j, returned as a list
// indexed exactly like the windings slice with a zero at index i, per
// spec.md §4.3.
func AllWindings(c coil.Coil, window geometry.WindingWindow, i int, frequency, temperature float64) ([]float64, error) {
	if i < 0 || i >= len(c.Windings) {
		return nil, merr.New(merr.InvalidInput, "leakage.AllWindings", "winding index %d out of range", i)
	}
	out := make([]float64, len(c.Windings))
	ni := float64(c.Windings[i].NumberTurns)
	for j := range c.Windings {
		if j == i {
			continue
		}
		nj := float64(c.Windings[j].NumberTurns)
		if nj == 0 {
			continue
		}
		l, err := AtFrequency(c, window, i, j, 1.0, ni/nj, frequency, temperature)
		if err != nil {
			return nil, err
		}
		out[j] = l
	}
	return out, nil
}

// Spectrum evaluates AtFrequency across several frequencies for the same
// (i,j) pair.
func Spectrum(c coil.Coil, window geometry.WindingWindow, i, j int, currentI, currentJ, temperature float64, frequencies []float64) (map[float64]float64, error) {
	freqsSorted := append([]float64{}, frequencies...)
	sort.Float64s(freqsSorted)
	out := make(map[float64]float64, len(freqsSorted))
	for _, f := range freqsSorted {
		l, err := AtFrequency(c, window, i, j, currentI, currentJ, f, temperature)
		if err != nil {
			return nil, err
		}
		out[f] = l
	}
	return out, nil
}
