// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package filter's magnetic.go builds the 12 named filters of spec.md
// §4.11 as concrete Filter values scored against a mas.DesignRequirements
// target. Every Score here returns a margin in the quantity's own natural
// units: positive means the candidate sits clear of the limit, zero or
// negative means it is at or past it. None of these rely on Invert/Log,
// since a margin can legitimately be exactly zero (a perfect turns-ratio
// match, say) and transform() treats an exact-zero Invert input as an error.
package filter

import (
	"math"

	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/insulation"
	"github.com/OpenMagnetics/mkf-sub006/mas"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/operatingpoint"
)

// asMas type-asserts a filter candidate to a mas.Mas, the shape every
// magnetic filter in this file scores against.
func asMas(candidate any) (mas.Mas, error) {
	m, ok := candidate.(mas.Mas)
	if !ok {
		return mas.Mas{}, merr.New(merr.InvalidInput, "filter.asMas", "candidate is %T, want mas.Mas", candidate)
	}
	return m, nil
}

// firstOutput returns the candidate's first operating-point output, the
// one every filter here scores against (a magnetic with no outputs yet
// cannot be scored on derived quantities).
func firstOutput(m mas.Mas) (mas.Outputs, bool) {
	if len(m.Outputs) == 0 {
		return mas.Outputs{}, false
	}
	return m.Outputs[0], true
}

// nearestOutput returns the output whose inductance matrix frequency is
// closest to freq, for filters (minimum impedance) that target a specific
// excitation frequency rather than the first operating point.
func nearestOutput(m mas.Mas, freq float64) (mas.Outputs, bool) {
	if len(m.Outputs) == 0 {
		return mas.Outputs{}, false
	}
	best := m.Outputs[0]
	bestDist := math.Abs(best.InductanceMatrix.Frequency - freq)
	for _, out := range m.Outputs[1:] {
		d := math.Abs(out.InductanceMatrix.Frequency - freq)
		if d < bestDist {
			best, bestDist = out, d
		}
	}
	return best, true
}

// selfInductance resolves winding w's diagonal entry of out's inductance
// matrix, 0 if the winding is absent from the matrix or unresolved.
func selfInductance(out mas.Outputs, winding string) float64 {
	v, ok := out.InductanceMatrix.Magnitude[winding][winding].Resolve()
	if !ok {
		return 0
	}
	return v
}

// scaledCurrent applies the ampere-turn balance convention used throughout
// this package's multi-winding excitation model: RMS_i = RMS_0*N_0/N_i.
func scaledCurrent(primary float64, windings []coil.Winding, index int) float64 {
	if index == 0 || index >= len(windings) || windings[index].NumberTurns == 0 {
		return primary
	}
	return primary * float64(windings[0].NumberTurns) / float64(windings[index].NumberTurns)
}

// peakFluxDensity estimates the core's peak flux density from the
// flux-linkage identity B = L*I/(N*Ae) on the primary winding, using the
// first operating point's peak current, matching mas.computeCoreLosses's
// derivation but independently reachable from a filter.
func peakFluxDensity(m mas.Mas) (float64, error) {
	windings := m.Magnetic.Coil.Windings
	if len(windings) == 0 || len(m.Inputs.OperatingPoints) == 0 {
		return 0, nil
	}
	out, ok := firstOutput(m)
	if !ok {
		return 0, nil
	}
	ae := m.Magnetic.Core.Effective.EffectiveArea
	n0 := float64(windings[0].NumberTurns)
	if ae <= 0 || n0 <= 0 {
		return 0, nil
	}
	processed, err := operatingpoint.Process(m.Inputs.OperatingPoints[0])
	if err != nil {
		return 0, err
	}
	l := selfInductance(out, windings[0].Name)
	return l * processed.Peak / (n0 * ae), nil
}

// NewTurnsRatiosFitFilter scores how closely each secondary winding's
// turns ratio to the primary matches design.TurnsRatios (indexed like the
// non-primary windings), margin = tolerance - worst relative error.
func NewTurnsRatiosFitFilter(design mas.DesignRequirements, relTol float64) Filter {
	return Filter{
		Name: "turns_ratios_fit",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			windings := m.Magnetic.Coil.Windings
			if len(windings) < 2 || len(design.TurnsRatios) == 0 {
				return relTol, nil
			}
			n0 := float64(windings[0].NumberTurns)
			margin := math.Inf(1)
			for i := 1; i < len(windings) && i-1 < len(design.TurnsRatios); i++ {
				want, ok := design.TurnsRatios[i-1].Resolve()
				if !ok || want == 0 || windings[i].NumberTurns == 0 {
					continue
				}
				got := n0 / float64(windings[i].NumberTurns)
				relErr := math.Abs(got-want) / math.Abs(want)
				if cand := relTol - relErr; cand < margin {
					margin = cand
				}
			}
			if math.IsInf(margin, 1) {
				margin = relTol
			}
			return margin, nil
		},
	}
}

// NewMagnetizingInductanceMatchFilter scores the primary winding's
// self-inductance against design.MagnetizingInductance.
func NewMagnetizingInductanceMatchFilter(design mas.DesignRequirements, relTol float64) Filter {
	return Filter{
		Name: "magnetizing_inductance_match",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			want, ok := design.MagnetizingInductance.Resolve()
			if !ok || want == 0 || len(m.Magnetic.Coil.Windings) == 0 {
				return relTol, nil
			}
			out, ok := firstOutput(m)
			if !ok {
				return -relTol, nil
			}
			got := selfInductance(out, m.Magnetic.Coil.Windings[0].Name)
			relErr := math.Abs(got-want) / math.Abs(want)
			return relTol - relErr, nil
		},
	}
}

// NewSaturationFilter scores the headroom between the material's
// saturation flux density (scaled by safetyMargin) and the estimated peak
// flux density, per inductance.IsSaturated's threshold.
func NewSaturationFilter(safetyMargin float64) Filter {
	if safetyMargin <= 0 {
		safetyMargin = 1.0
	}
	return Filter{
		Name: "saturation",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			b, err := peakFluxDensity(m)
			if err != nil {
				return 0, err
			}
			return safetyMargin*m.Magnetic.Core.Material.SaturationFluxDensity - b, nil
		},
	}
}

// currentDensityMargin is shared by the DC and effective current-density
// filters: it walks every winding, scales the reference current by the
// ampere-turn balance convention, divides by the winding's total
// conducting area, and returns maxDensity minus the worst offender.
func currentDensityMargin(m mas.Mas, reference float64, maxDensity float64) float64 {
	windings := m.Magnetic.Coil.Windings
	margin := maxDensity
	for i, w := range windings {
		area := w.Wire.ConductingArea() * float64(w.NumberParallels)
		if area <= 0 {
			continue
		}
		current := scaledCurrent(reference, windings, i)
		density := math.Abs(current) / area
		if cand := maxDensity - density; cand < margin {
			margin = cand
		}
	}
	return margin
}

// NewDCCurrentDensityFilter scores the worst-winding DC current density
// (from the first operating point's mean) against maxAmpsPerSquareMeter.
func NewDCCurrentDensityFilter(maxAmpsPerSquareMeter float64) Filter {
	return Filter{
		Name: "dc_current_density",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			if len(m.Inputs.OperatingPoints) == 0 {
				return maxAmpsPerSquareMeter, nil
			}
			processed, err := operatingpoint.Process(m.Inputs.OperatingPoints[0])
			if err != nil {
				return 0, err
			}
			return currentDensityMargin(m, processed.Mean, maxAmpsPerSquareMeter), nil
		},
	}
}

// NewEffectiveCurrentDensityFilter scores the worst-winding RMS current
// density across every operating point against maxAmpsPerSquareMeter.
func NewEffectiveCurrentDensityFilter(maxAmpsPerSquareMeter float64) Filter {
	return Filter{
		Name: "effective_current_density",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			margin := maxAmpsPerSquareMeter
			for _, op := range m.Inputs.OperatingPoints {
				processed, err := operatingpoint.Process(op)
				if err != nil {
					return 0, err
				}
				if cand := currentDensityMargin(m, processed.RMS, maxAmpsPerSquareMeter); cand < margin {
					margin = cand
				}
			}
			return margin, nil
		},
	}
}

// overallDimensions approximates a core's bounding box from its central
// and lateral columns: width sums every column's own width (a conservative
// upper bound on the assembled core's footprint), depth is the widest
// column's depth, height is the central column's height.
func overallDimensions(c mas.Magnetic) mas.Dimensions {
	width := c.Core.CentralColumn.Width
	depth := c.Core.CentralColumn.Depth
	for _, col := range c.Core.LateralColumns {
		width += col.Width
		if col.Depth > depth {
			depth = col.Depth
		}
	}
	return mas.Dimensions{Width: width, Height: c.Core.CentralColumn.Height, Depth: depth}
}

// NewVolumeAreaHeightFilter scores the candidate's approximate bounding
// box against design.MaximumDimensions, margin = smallest of the three
// per-axis clearances (an axis with no declared maximum is ignored).
func NewVolumeAreaHeightFilter(design mas.DesignRequirements) Filter {
	return Filter{
		Name: "volume_area_height",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			got := overallDimensions(m.Magnetic)
			limit := design.MaximumDimensions
			margin := math.Inf(1)
			consider := func(maxVal, gotVal float64) {
				if maxVal <= 0 {
					return
				}
				if cand := maxVal - gotVal; cand < margin {
					margin = cand
				}
			}
			consider(limit.Width, got.Width)
			consider(limit.Height, got.Height)
			consider(limit.Depth, got.Depth)
			if math.IsInf(margin, 1) {
				margin = 1
			}
			return margin, nil
		},
	}
}

// lossesTotal sums core losses plus the requested subset of each winding's
// ohmic loss components.
func lossesTotal(out mas.Outputs, includeSkin, includeProximity bool) float64 {
	total := out.CoreLosses
	for _, w := range out.Losses.ByWinding {
		total += w.DC
		if includeSkin {
			total += w.Skin
		}
		if includeProximity {
			total += w.Proximity
		}
	}
	return total
}

// NewCoreAndDCLossesFilter scores core losses plus every winding's DC
// (non-frequency-dependent) ohmic losses against maxWatts.
func NewCoreAndDCLossesFilter(maxWatts float64) Filter {
	return Filter{
		Name: "core_and_dc_losses",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			out, ok := firstOutput(m)
			if !ok {
				return maxWatts, nil
			}
			return maxWatts - lossesTotal(out, false, false), nil
		},
	}
}

// NewFullLossesFilter scores core losses plus every winding loss
// component (DC, skin, proximity) against maxWatts.
func NewFullLossesFilter(maxWatts float64) Filter {
	return Filter{
		Name: "full_losses",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			out, ok := firstOutput(m)
			if !ok {
				return maxWatts, nil
			}
			return maxWatts - (out.CoreLosses + out.Losses.Total), nil
		},
	}
}

// NewLossesNoProximityFilter scores core losses plus DC and skin losses,
// excluding proximity effect, against maxWatts (useful for designs whose
// interleaving is expected to suppress proximity loss and whose remaining
// budget should be judged without it).
func NewLossesNoProximityFilter(maxWatts float64) Filter {
	return Filter{
		Name: "losses_no_proximity",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			out, ok := firstOutput(m)
			if !ok {
				return maxWatts, nil
			}
			return maxWatts - lossesTotal(out, true, false), nil
		},
	}
}

// NewSolidInsulationRequirementsFilter scores every insulation requirement
// in design.Insulation against the coating breakdown voltage actually
// present on the referenced windings, margin = worst-winding breakdown
// voltage minus the smallest acceptable solution's requirement.
func NewSolidInsulationRequirementsFilter(design mas.DesignRequirements, allowFIW bool) Filter {
	return Filter{
		Name: "solid_insulation_requirements",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			byName := make(map[string]coil.Winding, len(m.Magnetic.Coil.Windings))
			for _, w := range m.Magnetic.Coil.Windings {
				byName[w.Name] = w
			}
			if len(design.Insulation) == 0 {
				return 1, nil
			}
			margin := math.Inf(1)
			for _, req := range design.Insulation {
				solutions := insulation.SolidInsulationSolutions(req.Requirement, allowFIW)
				required := math.Inf(1)
				for _, s := range solutions {
					if s.MinimumBreakdownVoltage < required {
						required = s.MinimumBreakdownVoltage
					}
				}
				if math.IsInf(required, 1) {
					required = 0
				}
				got := math.Inf(1)
				for _, name := range [2]string{req.WindingA, req.WindingB} {
					if w, ok := byName[name]; ok {
						if bv := w.Wire.Coating.ResolveBreakdownVoltage(); bv < got {
							got = bv
						}
					}
				}
				if math.IsInf(got, 1) {
					got = 0
				}
				if cand := got - required; cand < margin {
					margin = cand
				}
			}
			if math.IsInf(margin, 1) {
				margin = 1
			}
			return margin, nil
		},
	}
}

// turnLengthEstimate approximates one turn's conductor length from the
// central column's cross-section perimeter, the same proxy used by
// NewCostFilter; a proper mean-length-per-turn model belongs to the coil
// package and is out of scope here.
func turnLengthEstimate(c mas.Magnetic) float64 {
	col := c.Core.CentralColumn
	return 2 * (col.Width + col.Depth)
}

// NewCostFilter scores the core's catalogue cost plus every winding's
// conductor cost (cost-per-meter times estimated total conductor length)
// against maxCost.
func NewCostFilter(maxCost float64) Filter {
	return Filter{
		Name: "cost",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			total := m.Magnetic.Core.Cost
			length := turnLengthEstimate(m.Magnetic)
			for _, w := range m.Magnetic.Coil.Windings {
				total += w.Wire.CostPerMeter * length * float64(w.TotalConductors())
			}
			return maxCost - total, nil
		},
	}
}

// NewMinimumImpedanceFilter scores the primary winding's impedance
// magnitude |Z| = 2*pi*f*L at every design.MinimumImpedance point against
// that point's required minimum, using whichever output's inductance
// matrix frequency is closest to the point's frequency.
func NewMinimumImpedanceFilter(design mas.DesignRequirements) Filter {
	return Filter{
		Name: "minimum_impedance",
		Score: func(candidate any) (float64, error) {
			m, err := asMas(candidate)
			if err != nil {
				return 0, err
			}
			if len(design.MinimumImpedance) == 0 || len(m.Magnetic.Coil.Windings) == 0 {
				return 1, nil
			}
			primary := m.Magnetic.Coil.Windings[0].Name
			margin := math.Inf(1)
			for _, pt := range design.MinimumImpedance {
				out, ok := nearestOutput(m, pt.Frequency)
				if !ok {
					continue
				}
				l := selfInductance(out, primary)
				z := 2 * math.Pi * pt.Frequency * l
				if cand := z - pt.MinimumImpedance; cand < margin {
					margin = cand
				}
			}
			if math.IsInf(margin, 1) {
				margin = 1
			}
			return margin, nil
		},
	}
}
