// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package matrix assembles the N×N inductance and resistance matrices of
// spec.md §4.4/§4.9 from the per-winding magnetizing inductance and the
// pairwise leakage results, and exposes the frequency-keyed,
// name-addressed scalar matrix shape used by the data envelope.
package matrix

import (
	"encoding/json"
	"math"

	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/dimval"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/inductance"
	"github.com/OpenMagnetics/mkf-sub006/leakage"
	"github.com/OpenMagnetics/mkf-sub006/losses"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/settings"
)

// Inductance is the assembled N×N matrix. Diagonal[i] is the self
// inductance of winding i; Coupling[i][j] is the coupling coefficient
// between windings i and j, clamped to [0,1]; Off[i][j] is the mutual
// inductance M_ij = Coupling[i][j] * sqrt(Lm_i*Lm_j).
type Inductance struct {
	Names    []string
	Diagonal []float64
	Off      [][]float64
	Coupling [][]float64
}

// Resistance is the assembled N×N resistance matrix at one frequency. Per
// spec.md §4.9 the diagonal carries each winding's own AC resistance
// (skin+proximity included, always positive, finite). Off[i][j] is the
// resistive inter-winding coupling induced by proximity effect: nonzero
// once both windings are excited simultaneously, derived by reciprocity
// (see AssembleResistance).
type Resistance struct {
	Names    []string
	Diagonal []float64
	Off      [][]float64
}

// leakagePolicy picks, for winding i's self-inductance term, the largest
// leakage inductance among its pairwise leakages to every other winding.
// spec.md §9's Open Question #2 leaves the diagonal leakage contribution
// unspecified for >2 windings; this "max leakage to any other winding"
// policy is the preserved, flagged decision (see DESIGN.md).
func leakagePolicy(pairwise []float64, self int) float64 {
	max := 0.0
	for j, l := range pairwise {
		if j == self {
			continue
		}
		if l > max {
			max = l
		}
	}
	return max
}

// Assemble builds the inductance matrix for the given core, built coil and
// windings at the operating point (h, frequency, temperature), per
// spec.md §4.4: Lm from the inductance package, leakage from the leakage
// package, off-diagonal from the coupling coefficient implied by those
// two quantities.
func Assemble(c core.Core, built coil.Coil, windings []coil.Winding, window geometry.WindingWindow, h, frequency, temperature float64, cfg *settings.Settings) (Inductance, error) {
	if len(windings) == 0 {
		return Inductance{}, merr.New(merr.InvalidInput, "matrix.Assemble", "no windings supplied")
	}
	lmRes, err := inductance.Calculate(c, windings, h, temperature, cfg)
	if err != nil {
		return Inductance{}, err
	}

	n := len(windings)
	names := make([]string, n)
	for i, w := range windings {
		names[i] = w.Name
	}

	leakByWinding := make([][]float64, n)
	for i := range windings {
		l, err := leakage.AllWindings(built, window, i, frequency, temperature)
		if err != nil {
			return Inductance{}, err
		}
		leakByWinding[i] = l
	}

	diagonal := make([]float64, n)
	for i := range windings {
		diagonal[i] = lmRes.ByWinding[i] + leakagePolicy(leakByWinding[i], i)
	}

	off := make([][]float64, n)
	coupling := make([][]float64, n)
	for i := 0; i < n; i++ {
		off[i] = make([]float64, n)
		coupling[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			lmi, lmj := lmRes.ByWinding[i], lmRes.ByWinding[j]
			lleak := leakByWinding[i][j]
			k := couplingCoefficient(lmi, lmj, lleak)
			m := k * math.Sqrt(lmi*lmj)
			off[i][j], off[j][i] = m, m
			coupling[i][j], coupling[j][i] = k, k
		}
	}

	return Inductance{Names: names, Diagonal: diagonal, Off: off, Coupling: coupling}, nil
}

// couplingCoefficient derives k from the ratio of magnetizing to
// magnetizing-plus-leakage inductance, clamped to [0,1] per spec.md §4.4's
// invariant.
func couplingCoefficient(lmi, lmj, lleak float64) float64 {
	if lmi <= 0 || lmj <= 0 {
		return 0
	}
	lself := math.Sqrt(lmi * lmj)
	k := lself / (lself + lleak)
	if k > 1 {
		k = 1
	}
	if k < 0 {
		k = 0
	}
	return k
}

// AssembleResistance builds the frequency-dependent resistance matrix by
// routing every winding through losses.AggregateWindings at unit RMS
// current, per spec.md §4.9: the diagonal is each winding's own AC
// resistance (DC+skin+proximity, since total loss at unit current equals
// R_ii), and the off-diagonal is the resistive inter-winding coupling
// proximity effect induces, recovered by reciprocity/superposition from
// the quadratic loss form P = sum(R_ii*I_i^2) + 2*sum_{i<j}(R_ij*I_i*I_j):
// evaluating P with both windings at unit current and subtracting each
// winding's own contribution isolates 2*R_ij.
func AssembleResistance(c core.Core, built coil.Coil, window geometry.WindingWindow, windings []coil.Winding, frequency, temperature float64, cfg *settings.Settings) (Resistance, error) {
	if len(windings) == 0 {
		return Resistance{}, merr.New(merr.InvalidInput, "matrix.AssembleResistance", "no windings supplied")
	}
	n := len(windings)
	names := make([]string, n)
	for i, w := range windings {
		names[i] = w.Name
	}

	selfLoss := make([]float64, n)
	for i := range windings {
		harmonics := map[int][]losses.Harmonic{i: {{Frequency: frequency, RMS: 1}}}
		result, err := losses.AggregateWindings(c, built, window, harmonics, temperature, cfg)
		if err != nil {
			return Resistance{}, err
		}
		if result.Total <= 0 || math.IsNaN(result.Total) || math.IsInf(result.Total, 0) {
			return Resistance{}, merr.New(merr.ResistanceTooHigh, "matrix.AssembleResistance", "winding %q has non-positive or non-finite resistance", names[i])
		}
		selfLoss[i] = result.Total
	}

	diagonal := append([]float64{}, selfLoss...)
	off := make([][]float64, n)
	for i := range off {
		off[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			harmonics := map[int][]losses.Harmonic{
				i: {{Frequency: frequency, RMS: 1}},
				j: {{Frequency: frequency, RMS: 1}},
			}
			both, err := losses.AggregateWindings(c, built, window, harmonics, temperature, cfg)
			if err != nil {
				return Resistance{}, err
			}
			rij := (both.Total - selfLoss[i] - selfLoss[j]) / 2
			off[i][j], off[j][i] = rij, rij
		}
	}

	return Resistance{Names: names, Diagonal: diagonal, Off: off}, nil
}

// Spectrum evaluates Assemble at every (frequency, H) excitation point of
// hByFrequency, returning a frequency-keyed list of inductance matrices.
func Spectrum(c core.Core, built coil.Coil, windings []coil.Winding, window geometry.WindingWindow, hByFrequency map[float64]float64, temperature float64, cfg *settings.Settings) (map[float64]Inductance, error) {
	out := make(map[float64]Inductance, len(hByFrequency))
	for freq, h := range hByFrequency {
		m, err := Assemble(c, built, windings, window, h, freq, temperature, cfg)
		if err != nil {
			return nil, err
		}
		out[freq] = m
	}
	return out, nil
}

// ScalarMatrixAtFrequency is the name-addressed, tolerance-bearing matrix
// shape exchanged in the data envelope: {frequency, magnitude:
// {name->{name->{nominal,min,max}}}}.
type ScalarMatrixAtFrequency struct {
	Frequency float64
	Magnitude map[string]map[string]dimval.Value
}

// MarshalJSON implements the {frequency, magnitude} wire shape.
func (s ScalarMatrixAtFrequency) MarshalJSON() ([]byte, error) {
	type wire struct {
		Frequency float64                                `json:"frequency"`
		Magnitude map[string]map[string]dimval.Value `json:"magnitude"`
	}
	return json.Marshal(wire{Frequency: s.Frequency, Magnitude: s.Magnitude})
}

// UnmarshalJSON implements the inverse of MarshalJSON.
func (s *ScalarMatrixAtFrequency) UnmarshalJSON(data []byte) error {
	var wire struct {
		Frequency float64                                `json:"frequency"`
		Magnitude map[string]map[string]dimval.Value `json:"magnitude"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Frequency = wire.Frequency
	s.Magnitude = wire.Magnitude
	return nil
}

// FromInductance converts an assembled Inductance matrix (self terms on
// the diagonal, mutual terms off it) into the name-addressed scalar shape
// at the given frequency, with each entry reported as an exact value.
func FromInductance(m Inductance, frequency float64) ScalarMatrixAtFrequency {
	magnitude := make(map[string]map[string]dimval.Value, len(m.Names))
	for i, name := range m.Names {
		row := make(map[string]dimval.Value, len(m.Names))
		for j, other := range m.Names {
			var v float64
			if i == j {
				v = m.Diagonal[i]
			} else {
				v = m.Off[i][j]
			}
			row[other] = dimval.Exact(v)
		}
		magnitude[name] = row
	}
	return ScalarMatrixAtFrequency{Frequency: frequency, Magnitude: magnitude}
}
