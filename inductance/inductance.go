// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inductance implements the magnetizing inductance model of
// spec.md §4.2: Lm = N^2/reluctance referred to a reference winding, the
// per-winding referred transformation, and peak flux density from applied
// volt-seconds per turn.
package inductance

import (
	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/reluctance"
	"github.com/OpenMagnetics/mkf-sub006/settings"
)

// Result carries the magnetizing inductance referred to every winding and
// the reluctance it was derived from.
type Result struct {
	Reluctance      reluctance.Result
	ByWinding       []float64 // Henries, indexed like the windings slice
	ReferenceIndex  int
}

// Calculate computes the magnetizing inductance referred to windings[0]
// (Lm = N0^2/Rtotal) and every other winding (Lmi = Lm0*(Ni/N0)^2), per
// spec.md §4.2.
func Calculate(c core.Core, windings []coil.Winding, h, t float64, cfg *settings.Settings) (Result, error) {
	if len(windings) == 0 {
		return Result{}, merr.New(merr.InvalidInput, "inductance.Calculate", "no windings supplied")
	}
	rel, err := reluctance.Calculate(c, h, t, cfg)
	if err != nil {
		return Result{}, err
	}
	if rel.Total <= 0 {
		return Result{}, merr.New(merr.InvalidGeometry, "inductance.Calculate", "non-positive total reluctance %v", rel.Total)
	}

	n0 := float64(windings[0].NumberTurns)
	lm0 := n0 * n0 / rel.Total

	byWinding := make([]float64, len(windings))
	for i, w := range windings {
		ratio := float64(w.NumberTurns) / n0
		byWinding[i] = lm0 * ratio * ratio
	}

	return Result{Reluctance: rel, ByWinding: byWinding, ReferenceIndex: 0}, nil
}

// ReferredTo returns the magnetizing inductance referred to an arbitrary
// reference winding index instead of windings[0].
func (r Result) ReferredTo(windings []coil.Winding, index int) (float64, error) {
	if index < 0 || index >= len(r.ByWinding) || index >= len(windings) {
		return 0, merr.New(merr.InvalidInput, "inductance.ReferredTo", "winding index %d out of range", index)
	}
	refTurns := float64(windings[index].NumberTurns)
	baseTurns := float64(windings[r.ReferenceIndex].NumberTurns)
	ratio := refTurns / baseTurns
	return r.ByWinding[r.ReferenceIndex] * ratio * ratio, nil
}

// PeakFluxDensity computes B_hat = voltSecondsPerTurn / effectiveArea, the
// peak flux density implied by the applied excitation's integral of
// voltage over time (volt-seconds), divided by turns and effective area,
// per spec.md §4.2: B(t) = (1/(N*Ae)) * integral(v(t) dt).
func PeakFluxDensity(voltSecondsPeak float64, turns int, effectiveArea float64) (float64, error) {
	if turns <= 0 || effectiveArea <= 0 {
		return 0, merr.New(merr.InvalidInput, "inductance.PeakFluxDensity", "turns=%d effectiveArea=%v must be positive", turns, effectiveArea)
	}
	return voltSecondsPeak / (float64(turns) * effectiveArea), nil
}

// IsSaturated reports whether peakFluxDensity exceeds the material's
// saturation flux density scaled by the configured safety margin. Per
// spec.md §4.2 this is exposed as a filter predicate, never a fatal error
// inside the model itself.
func IsSaturated(peakFluxDensity, saturationFluxDensity, safetyMargin float64) bool {
	if safetyMargin <= 0 {
		safetyMargin = 1.0
	}
	return peakFluxDensity > saturationFluxDensity*safetyMargin
}

// Spectrum evaluates Calculate at several (frequency, H) excitation points,
// for frequency-sweep callers (spec.md SPEC_FULL §3 supplement).
func Spectrum(c core.Core, windings []coil.Winding, hByFrequency map[float64]float64, t float64, cfg *settings.Settings) (map[float64]Result, error) {
	out := make(map[float64]Result, len(hByFrequency))
	for freq, h := range hByFrequency {
		res, err := Calculate(c, windings, h, t, cfg)
		if err != nil {
			return nil, err
		}
		out[freq] = res
	}
	return out, nil
}
