// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package operatingpoint processes a sampled excitation waveform into the
// peak/RMS/THD summary and harmonic decomposition consumed by the physics
// kernels (spec.md §3's OperatingPoint, SPEC_FULL.md §4.15's supplement),
// using gonum's real FFT; this is the only package that imports gonum.
package operatingpoint

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/OpenMagnetics/mkf-sub006/merr"
)

// Signal is one sampled waveform: uniformly spaced samples over one period
// at the given frequency.
type Signal struct {
	Frequency float64
	Samples   []float64 // one period, uniformly spaced
}

// Label classifies a waveform's shape, matching the classic PWM/DC/sine
// labels used throughout the domain's operating-point reporting.
type Label int

const (
	LabelUnknown Label = iota
	LabelDC
	LabelSinusoidal
	LabelTriangular
	LabelRectangular
	LabelFlybackPrimary
	LabelFlybackSecondary
	LabelUnipolarRectangular
	LabelBipolarRectangular
	LabelCustom
)

// Processed is the derived summary of a Signal.
type Processed struct {
	Peak   float64
	Valley float64
	RMS    float64
	Mean   float64
	THD    float64 // total harmonic distortion, 0 for a pure DC or single-tone signal
	Label  Label
}

// Harmonic is one term of a frequency-domain decomposition.
type Harmonic struct {
	Order     int
	Frequency float64
	RMS       float64
	Phase     float64
}

// Process derives peak/valley/RMS/mean/THD/label from a sampled signal,
// per spec.md §3. It is idempotent: processing the same signal twice
// yields an identical Processed value.
func Process(s Signal) (Processed, error) {
	if len(s.Samples) == 0 {
		return Processed{}, merr.New(merr.InvalidInput, "operatingpoint.Process", "signal has no samples")
	}

	peak, valley, sum, sumSquares := s.Samples[0], s.Samples[0], 0.0, 0.0
	for _, v := range s.Samples {
		if v > peak {
			peak = v
		}
		if v < valley {
			valley = v
		}
		sum += v
		sumSquares += v * v
	}
	n := float64(len(s.Samples))
	mean := sum / n
	rms := math.Sqrt(sumSquares / n)

	harmonics, err := Harmonics(s, len(s.Samples)/2)
	if err != nil {
		return Processed{}, err
	}
	thd := totalHarmonicDistortion(harmonics)
	label := classify(s.Samples, harmonics)

	return Processed{Peak: peak, Valley: valley, RMS: rms, Mean: mean, THD: thd, Label: label}, nil
}

// Harmonics decomposes the signal into its first numHarmonics terms using
// gonum's real-input FFT (spec.md SPEC_FULL.md §4.15 supplement).
func Harmonics(s Signal, numHarmonics int) ([]Harmonic, error) {
	n := len(s.Samples)
	if n == 0 {
		return nil, merr.New(merr.InvalidInput, "operatingpoint.Harmonics", "signal has no samples")
	}
	if numHarmonics <= 0 || numHarmonics > n/2 {
		numHarmonics = n / 2
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, s.Samples)

	harmonics := make([]Harmonic, 0, numHarmonics)
	for order := 1; order <= numHarmonics && order < len(coeffs); order++ {
		c := coeffs[order]
		amplitude := 2 * math.Hypot(real(c), imag(c)) / float64(n)
		rms := amplitude / math.Sqrt2
		harmonics = append(harmonics, Harmonic{
			Order:     order,
			Frequency: s.Frequency * float64(order),
			RMS:       rms,
			Phase:     math.Atan2(imag(c), real(c)),
		})
	}
	return harmonics, nil
}

// totalHarmonicDistortion is sqrt(sum(h_k^2, k>=2)) / h_1, 0 when the
// fundamental has no energy (DC-only signals).
func totalHarmonicDistortion(harmonics []Harmonic) float64 {
	if len(harmonics) == 0 || harmonics[0].RMS == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, h := range harmonics[1:] {
		sumSquares += h.RMS * h.RMS
	}
	return math.Sqrt(sumSquares) / harmonics[0].RMS
}

// classify picks a Label from the sample shape and harmonic content. It is
// a coarse heuristic, not a precise waveform classifier.
//
// The first two checks match the original classifier: flat samples are
// DC, low THD is sinusoidal. Past that, it first looks for the flyback
// signature (a long flat-zero run next to a one-directional ramp, the
// mirror-image currents spec.md §3 calls flyback-primary/secondary), then
// falls back to the rectangular/triangular split by derivative sign-change
// density, further splitting rectangular into unipolar/bipolar and naming
// anything in between (too jagged for triangular, too calm for
// rectangular) custom.
func classify(samples []float64, harmonics []Harmonic) Label {
	flat := true
	for _, v := range samples[1:] {
		if v != samples[0] {
			flat = false
			break
		}
	}
	if flat {
		return LabelDC
	}
	thd := totalHarmonicDistortion(harmonics)
	if thd < 0.05 {
		return LabelSinusoidal
	}

	diffs := make([]float64, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		diffs[i-1] = samples[i] - samples[i-1]
	}
	signChanges := 0
	for i := 1; i < len(diffs); i++ {
		if (diffs[i] > 0) != (diffs[i-1] > 0) {
			signChanges++
		}
	}

	if label, ok := classifyFlyback(samples); ok {
		return label
	}

	if signChanges > len(diffs)/2 {
		peak, valley := samples[0], samples[0]
		for _, v := range samples {
			if v > peak {
				peak = v
			}
			if v < valley {
				valley = v
			}
		}
		if valley < 0 && peak > 0 {
			return LabelBipolarRectangular
		}
		return LabelUnipolarRectangular
	}
	if signChanges > 2 && signChanges <= len(diffs)/2 {
		return LabelCustom
	}
	return LabelTriangular
}

// classifyFlyback looks for the flyback current signature: a long
// contiguous flat-zero run (the winding carrying no current for most of
// the switching period) next to a ramp whose net slope sign distinguishes
// the primary (ramps up to the flat run) from the secondary (ramps down
// from it). Returns ok=false when no such run is present.
func classifyFlyback(samples []float64) (Label, bool) {
	n := len(samples)
	if n < 4 {
		return LabelUnknown, false
	}
	peak, valley := samples[0], samples[0]
	for _, v := range samples {
		if v > peak {
			peak = v
		}
		if v < valley {
			valley = v
		}
	}
	rng := peak - valley
	if rng == 0 {
		return LabelUnknown, false
	}
	tol := 0.05 * rng

	start, length := longestQuietRun(samples, valley, tol)
	if length == 0 || length == n {
		return LabelUnknown, false
	}
	fraction := float64(length) / float64(n)
	if fraction < 0.1 || fraction > 0.9 {
		return LabelUnknown, false
	}

	segStart := (start + length) % n
	segLen := n - length
	first := samples[segStart]
	last := samples[(segStart+segLen-1)%n]
	switch {
	case last-first > tol:
		return LabelFlybackPrimary, true
	case first-last > tol:
		return LabelFlybackSecondary, true
	default:
		return LabelUnknown, false
	}
}

// longestQuietRun finds the longest contiguous (circular) run of samples
// within tol of level, returning its start index and length. Wraparound is
// handled by scanning from a known non-quiet index rather than index 0.
func longestQuietRun(samples []float64, level, tol float64) (start, length int) {
	n := len(samples)
	isQuiet := make([]bool, n)
	allQuiet := true
	for i, v := range samples {
		isQuiet[i] = math.Abs(v-level) <= tol
		if !isQuiet[i] {
			allQuiet = false
		}
	}
	if allQuiet {
		return 0, n
	}
	anchor := 0
	for i, q := range isQuiet {
		if !q {
			anchor = i
			break
		}
	}

	bestStart, bestLen, curStart, curLen := -1, 0, -1, 0
	for k := 0; k < n; k++ {
		idx := (anchor + k) % n
		if isQuiet[idx] {
			if curLen == 0 {
				curStart = idx
			}
			curLen++
			if curLen > bestLen {
				bestLen = curLen
				bestStart = curStart
			}
		} else {
			curLen = 0
		}
	}
	if bestStart < 0 {
		return 0, 0
	}
	return bestStart, bestLen
}
