// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package adviser implements the core/coil/magnetic advisers of spec.md
// §4.11: fan out candidate generation across goroutines the way the
// teacher's FEM analyses run concurrently (fem package, "go func(analysis
// *FEM)"), score every candidate through the filter pipeline, and keep
// only the top K in a bounded min-heap instead of sorting the whole
// candidate set.
package adviser

import (
	"container/heap"
	"context"
	"math"
	"sync"

	"github.com/OpenMagnetics/mkf-sub006/catalogue"
	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/filter"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/losses"
	"github.com/OpenMagnetics/mkf-sub006/mas"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/operatingpoint"
	"github.com/OpenMagnetics/mkf-sub006/settings"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

// CoreCandidate is one core the core adviser considered, alongside its
// catalogue name.
type CoreCandidate struct {
	Name string
	Core core.Core
}

// inventoryFilter reports whether a core candidate survives the
// settings-driven inventory constraints (spec.md §4.11): with
// UseOnlyCoresInStock set, a core with no stacks (NumberStacks <= 0) is
// treated as not in stock and dropped; then the toroidal/concentric family
// restriction.
func inventoryFilter(cfg *settings.Settings) func(c CoreCandidate) bool {
	return func(c CoreCandidate) bool {
		if cfg.UseOnlyCoresInStock && c.Core.NumberStacks <= 0 {
			return false
		}
		isToroidal := c.Core.ShapeFamily == "Toroidal"
		if isToroidal && !cfg.UseToroidalCores {
			return false
		}
		if !isToroidal && !cfg.UseConcentricCores {
			return false
		}
		return true
	}
}

// candidateScore pairs a scored result with a stable insertion index, so
// the bounded heap can break score ties deterministically.
type candidateScore struct {
	result filter.Result
	index  int
}

// scoreHeap is a min-heap on Aggregate, letting AdviseCores evict the
// worst-scoring candidate in O(log K) once the heap holds K entries.
type scoreHeap []candidateScore

func (h scoreHeap) Len() int { return len(h) }
func (h scoreHeap) Less(i, j int) bool {
	if h[i].result.Aggregate != h[j].result.Aggregate {
		return h[i].result.Aggregate < h[j].result.Aggregate
	}
	return h[i].index > h[j].index // tie-break: prefer the earlier candidate, so the later one sorts "smaller"
}
func (h scoreHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scoreHeap) Push(x any)        { *h = append(*h, x.(candidateScore)) }
func (h *scoreHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// scoreConcurrently scores every candidate against filters, one goroutine
// per candidate (spec.md §4.11's parallel fan-out), and keeps only the
// top K in a bounded min-heap instead of sorting the whole candidate set.
// ctx cancellation stops scoring new candidates early; candidates already
// in flight finish and are still scored.
func scoreConcurrently(ctx context.Context, filters []filter.Filter, candidates []any, topK int) ([]filter.Result, error) {
	type scored struct {
		result filter.Result
		err    error
	}
	out := make(chan scored, len(candidates))
	var wg sync.WaitGroup

	for _, c := range candidates {
		wg.Add(1)
		go func(c any) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			default:
			}
			results, err := filter.Run(filters, []any{c})
			if err != nil {
				out <- scored{err: err}
				return
			}
			out <- scored{result: results[0]}
		}(c)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	h := &scoreHeap{}
	heap.Init(h)
	index := 0
	for s := range out {
		if s.err != nil {
			return nil, s.err
		}
		if s.result.Disqualified {
			continue
		}
		heap.Push(h, candidateScore{result: s.result, index: index})
		index++
		if topK > 0 && h.Len() > topK {
			heap.Pop(h)
		}
	}

	ranked := make([]filter.Result, h.Len())
	for i := len(ranked) - 1; i >= 0; i-- {
		ranked[i] = heap.Pop(h).(candidateScore).result
	}
	return ranked, nil
}

// AdviseCores evaluates every core in the registry against filters after
// applying the settings-driven inventory constraints, per spec.md §4.11.
func AdviseCores(ctx context.Context, reg *catalogue.Registry, cfg *settings.Settings, filters []filter.Filter, topK int) ([]filter.Result, error) {
	if reg == nil {
		return nil, merr.New(merr.InvalidInput, "adviser.AdviseCores", "nil registry")
	}
	keep := inventoryFilter(cfg)

	candidates := make([]any, 0, len(reg.Cores))
	for name, c := range reg.Cores {
		if keep(CoreCandidate{Name: name, Core: c}) {
			candidates = append(candidates, c)
		}
	}
	return scoreConcurrently(ctx, filters, candidates, topK)
}

// SynthesizeCoils generates coil-layout candidates for one core by varying
// per-winding wire selection, interleaving level, winding orientation and
// turns alignment (spec.md §4.11's coil adviser stage), building each
// combination with coil.Build and wrapping surviving layouts in an
// otherwise-empty mas.Mas so the filter pipeline can score them. A layout
// that coil.Build rejects (doesn't fit the window) is silently dropped,
// not surfaced as an error, since a full sweep is expected to try
// combinations that don't fit.
func SynthesizeCoils(c core.Core, base []coil.Winding, window geometry.WindingWindow, margins coil.Margins, wireOptionsByWinding map[string][]wire.Wire, interleavingLevels []int) []mas.Mas {
	if len(interleavingLevels) == 0 {
		interleavingLevels = []int{1}
	}
	orientations := []coil.Orientation{coil.Overlapping, coil.Contiguous}
	alignments := []coil.Alignment{coil.Centered, coil.Spread}

	var candidates []mas.Mas
	for _, level := range interleavingLevels {
		for _, wOrient := range orientations {
			for _, align := range alignments {
				for _, windings := range wireVariants(base, wireOptionsByWinding) {
					cfg := coil.Config{
						WindingOrientation: wOrient,
						TurnsAlignment:     align,
						InterleavingLevel:  level,
					}
					built, err := coil.Build(windings, window, cfg, margins, false)
					if err != nil {
						continue
					}
					candidates = append(candidates, mas.Mas{Magnetic: mas.Magnetic{Core: c, Coil: built}})
				}
			}
		}
	}
	return candidates
}

// wireVariants expands base into every combination of wire choices named
// in options (keyed by winding name); a winding absent from options keeps
// its original wire unchanged.
func wireVariants(base []coil.Winding, options map[string][]wire.Wire) [][]coil.Winding {
	variants := [][]coil.Winding{append([]coil.Winding(nil), base...)}
	for i, w := range base {
		choices, ok := options[w.Name]
		if !ok || len(choices) == 0 {
			continue
		}
		var next [][]coil.Winding
		for _, variant := range variants {
			for _, choice := range choices {
				v := append([]coil.Winding(nil), variant...)
				v[i].Wire = choice
				next = append(next, v)
			}
		}
		variants = next
	}
	return variants
}

// AdviseCoils synthesizes coil-layout candidates for one core (spec.md
// §4.11's coil adviser) and scores them through filters, keeping the top K.
func AdviseCoils(ctx context.Context, c core.Core, base []coil.Winding, window geometry.WindingWindow, margins coil.Margins, wireOptionsByWinding map[string][]wire.Wire, interleavingLevels []int, filters []filter.Filter, topK int) ([]filter.Result, error) {
	synthesized := SynthesizeCoils(c, base, window, margins, wireOptionsByWinding, interleavingLevels)
	if len(synthesized) == 0 {
		return nil, merr.New(merr.InvalidInput, "adviser.AdviseCoils", "no coil candidates could be synthesized")
	}
	candidates := make([]any, len(synthesized))
	for i, m := range synthesized {
		candidates[i] = m
	}
	return scoreConcurrently(ctx, filters, candidates, topK)
}

// MagneticCandidateInputs bundles the excitation and design target a
// magnetic candidate is evaluated against: the operating points it must
// support, the design requirements the filter pipeline scores against, the
// ambient temperature, and an optional field-sampling grid.
type MagneticCandidateInputs struct {
	Design          mas.DesignRequirements
	OperatingPoints []operatingpoint.Signal
	Temperature     float64
	FieldPoints     [][]geometry.Point
}

// harmonicsForSignal decomposes signal into its harmonic spectrum and
// scales it to every winding in windings using the per-winding
// ampere-turn-balance convention RMS_i = RMS_0*N_0/N_i, the same
// convention the leakage package's multi-winding MMF profile documents.
func harmonicsForSignal(signal operatingpoint.Signal, windings []coil.Winding) (map[int][]losses.Harmonic, error) {
	harmonicsByWinding := make(map[int][]losses.Harmonic, len(windings))
	if len(windings) == 0 {
		return harmonicsByWinding, nil
	}
	hs, err := operatingpoint.Harmonics(signal, len(signal.Samples)/2)
	if err != nil {
		return nil, err
	}
	n0 := float64(windings[0].NumberTurns)
	for i, w := range windings {
		scale := 1.0
		if i > 0 && n0 != 0 && w.NumberTurns != 0 {
			scale = n0 / float64(w.NumberTurns)
		}
		scaled := make([]losses.Harmonic, len(hs))
		for j, h := range hs {
			scaled[j] = losses.Harmonic{Order: h.Order, Frequency: h.Frequency, RMS: h.RMS * scale, Phase: h.Phase}
		}
		harmonicsByWinding[i] = scaled
	}
	return harmonicsByWinding, nil
}

// peakCurrentsFromHarmonics estimates each winding's peak current as
// sqrt(2) times its harmonics' combined RMS (the crest factor of a
// sinusoid, the best available without a reconstructed time-domain
// waveform per winding).
func peakCurrentsFromHarmonics(harmonicsByWinding map[int][]losses.Harmonic, numWindings int) []float64 {
	peaks := make([]float64, numWindings)
	for i := 0; i < numWindings; i++ {
		sumSquares := 0.0
		for _, h := range harmonicsByWinding[i] {
			sumSquares += h.RMS * h.RMS
		}
		peaks[i] = math.Sqrt2 * math.Sqrt(sumSquares)
	}
	return peaks
}

// AdviseMagnetics computes the full electrical outputs (inductance and
// resistance matrices, ohmic losses, core losses, and optionally a field
// grid) for every coil candidate against every operating point in in, then
// scores the resulting mas.Mas documents through filters, keeping the top
// K (spec.md §4.11's top-level magnetic adviser stage). window must match
// the winding window the candidates were built against.
func AdviseMagnetics(ctx context.Context, coilCandidates []mas.Mas, window geometry.WindingWindow, in MagneticCandidateInputs, cfg *settings.Settings, filters []filter.Filter, topK int) ([]filter.Result, error) {
	if len(coilCandidates) == 0 {
		return nil, merr.New(merr.InvalidInput, "adviser.AdviseMagnetics", "no coil candidates supplied")
	}

	candidates := make([]any, 0, len(coilCandidates))
	for _, m := range coilCandidates {
		windings := m.Magnetic.Coil.Windings
		m.Inputs = mas.Inputs{Design: in.Design, OperatingPoints: in.OperatingPoints}
		m.Outputs = make([]mas.Outputs, 0, len(in.OperatingPoints))

		for _, signal := range in.OperatingPoints {
			harmonicsByWinding, err := harmonicsForSignal(signal, windings)
			if err != nil {
				return nil, err
			}
			peakCurrents := peakCurrentsFromHarmonics(harmonicsByWinding, len(windings))

			out, err := mas.ComputeOutputs(m.Magnetic.Core, m.Magnetic.Coil, windings, window, harmonicsByWinding, peakCurrents, signal.Frequency, in.Temperature, in.FieldPoints, cfg)
			if err != nil {
				return nil, err
			}
			m.Outputs = append(m.Outputs, out)
		}
		candidates = append(candidates, m)
	}
	return scoreConcurrently(ctx, filters, candidates, topK)
}
