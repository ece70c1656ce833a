// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mas implements the data exchange envelope of SPEC_FULL.md §6: a
// single JSON document carrying a magnetic's definition (core, coil), the
// operating points it was evaluated against, and the derived outputs
// (inductance/resistance matrices, losses), so a design can be serialized
// and handed to another stage of the pipeline or to a catalogue entry.
package mas

import (
	"encoding/json"

	"github.com/OpenMagnetics/mkf-sub006/coil"
	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/dimval"
	"github.com/OpenMagnetics/mkf-sub006/field"
	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/inductance"
	"github.com/OpenMagnetics/mkf-sub006/insulation"
	"github.com/OpenMagnetics/mkf-sub006/losses"
	"github.com/OpenMagnetics/mkf-sub006/matrix"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/operatingpoint"
	"github.com/OpenMagnetics/mkf-sub006/settings"
)

// Magnetic is the physical description: core plus built coil.
type Magnetic struct {
	Name string    `json:"name"`
	Core core.Core `json:"core"`
	Coil coil.Coil `json:"coil"`
}

// Dimensions is a 3D bounding box, used for maximum-footprint constraints.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// ImpedancePoint names a minimum required impedance magnitude at one
// frequency, one entry of DesignRequirements.MinimumImpedance.
type ImpedancePoint struct {
	Frequency        float64 `json:"frequency"`
	MinimumImpedance float64 `json:"minimumImpedance"`
}

// InsulationRequirement binds an insulation.Requirement to the pair of
// windings it governs.
type InsulationRequirement struct {
	WindingA    string                 `json:"windingA"`
	WindingB    string                 `json:"windingB"`
	Requirement insulation.Requirement `json:"requirement"`
}

// DesignRequirements is the scoring target every filter in the filter
// package measures a candidate against (spec.md §3): the magnetizing
// inductance and per-secondary turns ratios the design must hit, the
// isolation side of each winding and the insulation coordination it
// implies, bounds on leakage inductance and stray capacitance, minimum
// impedance at named frequencies, a maximum bounding box, the intended
// topology and wiring technology.
type DesignRequirements struct {
	MagnetizingInductance dimval.Value             `json:"magnetizingInductance"`
	TurnsRatios           []dimval.Value            `json:"turnsRatios"`
	IsolationSides        []string                  `json:"isolationSides"` // indexed like the magnetic's windings
	Insulation            []InsulationRequirement   `json:"insulation"`
	LeakageInductance     dimval.Value              `json:"leakageInductance"`
	StrayCapacitance      dimval.Value              `json:"strayCapacitance"`
	MinimumImpedance      []ImpedancePoint          `json:"minimumImpedance"`
	MaximumDimensions     Dimensions                `json:"maximumDimensions"`
	Topology              string                    `json:"topology"`
	WiringTechnology      coil.WiringTechnology     `json:"wiringTechnology"`
}

// Inputs carries the excitation the magnetic was evaluated against and the
// design requirements it was synthesized to meet.
type Inputs struct {
	Design          DesignRequirements       `json:"design"`
	OperatingPoints []operatingpoint.Signal `json:"operatingPoints"`
}

// Outputs carries every derived result for one operating point.
type Outputs struct {
	InductanceMatrix matrix.ScalarMatrixAtFrequency `json:"inductanceMatrix"`
	ResistanceMatrix matrix.Resistance              `json:"resistanceMatrix"`
	Losses           losses.OhmicLosses             `json:"losses"`
	CoreLosses       float64                        `json:"coreLosses"`
	FieldSamples     [][]float64                    `json:"fieldSamples,omitempty"`
	Temperature      float64                        `json:"temperature"`
}

// Mas is the full exchange envelope (spec.md §6).
type Mas struct {
	Magnetic Magnetic  `json:"magnetic"`
	Inputs   Inputs    `json:"inputs"`
	Outputs  []Outputs `json:"outputs"`
}

// Marshal encodes a Mas document as JSON.
func Marshal(m Mas) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, merr.Wrap(merr.InvalidInput, "mas.Marshal", err, "encoding MAS document")
	}
	return data, nil
}

// Unmarshal decodes a JSON document into a Mas envelope.
func Unmarshal(data []byte) (Mas, error) {
	var m Mas
	if err := json.Unmarshal(data, &m); err != nil {
		return Mas{}, merr.Wrap(merr.InvalidInput, "mas.Unmarshal", err, "decoding MAS document")
	}
	return m, nil
}

// Validate checks the envelope's cross-field invariants: the magnetic must
// name at least one winding, every output's inductance matrix may name
// only windings of the magnetic's coil (missing windings are not
// reported), the design requirements' isolation sides, when given, must
// number one per winding, and every insulation requirement must reference
// real windings.
func (m Mas) Validate() error {
	if len(m.Magnetic.Coil.Windings) == 0 {
		return merr.New(merr.InvalidInput, "mas.Validate", "magnetic %q has no windings", m.Magnetic.Name)
	}
	names := make(map[string]bool, len(m.Magnetic.Coil.Windings))
	for _, w := range m.Magnetic.Coil.Windings {
		names[w.Name] = true
	}
	for i, out := range m.Outputs {
		for name := range out.InductanceMatrix.Magnitude {
			if !names[name] {
				return merr.New(merr.InvalidInput, "mas.Validate",
					"output %d references unknown winding %q", i, name)
			}
		}
	}
	if n := len(m.Inputs.Design.IsolationSides); n > 0 && n != len(m.Magnetic.Coil.Windings) {
		return merr.New(merr.InvalidInput, "mas.Validate",
			"design requirements name %d isolation sides, want one per winding (%d)", n, len(m.Magnetic.Coil.Windings))
	}
	for _, req := range m.Inputs.Design.Insulation {
		if !names[req.WindingA] {
			return merr.New(merr.InvalidInput, "mas.Validate", "insulation requirement references unknown winding %q", req.WindingA)
		}
		if !names[req.WindingB] {
			return merr.New(merr.InvalidInput, "mas.Validate", "insulation requirement references unknown winding %q", req.WindingB)
		}
	}
	return nil
}

// ComputeOutputs evaluates every derived result for one operating point:
// the inductance and resistance matrices (matrix package), winding ohmic
// losses (losses package), core losses (from the magnetizing flux density
// implied by the flux-linkage identity B = L*I/(N*Ae), avoiding a second
// volt-seconds integration path), and, when fieldPoints is non-empty, a
// field-magnitude grid (field package).
//
// peakCurrents is indexed like windings and carries each winding's peak
// current at this operating point, used for the core-loss flux density and
// the field grid; harmonicsByWinding feeds the ohmic-loss aggregation.
func ComputeOutputs(c core.Core, built coil.Coil, windings []coil.Winding, window geometry.WindingWindow, harmonicsByWinding map[int][]losses.Harmonic, peakCurrents []float64, frequency, temperature float64, fieldPoints [][]geometry.Point, cfg *settings.Settings) (Outputs, error) {
	h := magnetizingFieldEstimate(windings, peakCurrents, c)

	lm, err := inductance.Calculate(c, windings, h, temperature, cfg)
	if err != nil {
		return Outputs{}, err
	}

	indMatrix, err := matrix.Assemble(c, built, windings, window, h, frequency, temperature, cfg)
	if err != nil {
		return Outputs{}, err
	}

	resMatrix, err := matrix.AssembleResistance(c, built, window, windings, frequency, temperature, cfg)
	if err != nil {
		return Outputs{}, err
	}

	ohmic, err := losses.AggregateWindings(c, built, window, harmonicsByWinding, temperature, cfg)
	if err != nil {
		return Outputs{}, err
	}

	coreLosses, err := computeCoreLosses(c, lm, windings, peakCurrents, frequency)
	if err != nil {
		return Outputs{}, err
	}

	var fieldSamples [][]float64
	if len(fieldPoints) > 0 {
		fieldSamples, err = field.Grid(built, c, window, peakCurrents, fieldPoints, cfg)
		if err != nil {
			return Outputs{}, err
		}
	}

	return Outputs{
		InductanceMatrix: matrix.FromInductance(indMatrix, frequency),
		ResistanceMatrix: resMatrix,
		Losses:           ohmic,
		CoreLosses:       coreLosses,
		FieldSamples:     fieldSamples,
		Temperature:      temperature,
	}, nil
}

// magnetizingFieldEstimate approximates H = N*I/Le (ampere-turns over the
// effective magnetic path length), summed across every winding's
// contribution, for use as the reluctance/permeability lookup input.
func magnetizingFieldEstimate(windings []coil.Winding, peakCurrents []float64, c core.Core) float64 {
	if c.Effective.EffectiveLength <= 0 {
		return 0
	}
	totalAmpereTurns := 0.0
	for i, w := range windings {
		if i >= len(peakCurrents) {
			break
		}
		totalAmpereTurns += float64(w.NumberTurns) * peakCurrents[i]
	}
	return totalAmpereTurns / c.Effective.EffectiveLength
}

// computeCoreLosses derives the peak flux density from the flux-linkage
// identity B = L*I/(N*Ae) on the inductance reference winding, then looks
// up the Steinmetz loss density and scales it by the core's effective
// volume.
func computeCoreLosses(c core.Core, lm inductance.Result, windings []coil.Winding, peakCurrents []float64, frequency float64) (float64, error) {
	if len(windings) == 0 || len(peakCurrents) == 0 {
		return 0, nil
	}
	ae := c.Effective.EffectiveArea
	if ae <= 0 {
		return 0, merr.New(merr.InvalidGeometry, "mas.computeCoreLosses", "non-positive effective area %v", ae)
	}
	ref := lm.ReferenceIndex
	if ref >= len(windings) || ref >= len(peakCurrents) || ref >= len(lm.ByWinding) {
		return 0, nil
	}
	n0 := float64(windings[ref].NumberTurns)
	if n0 <= 0 {
		return 0, merr.New(merr.InvalidInput, "mas.computeCoreLosses", "reference winding has non-positive turns")
	}
	peakFluxDensity := lm.ByWinding[ref] * peakCurrents[ref] / (n0 * ae)
	density := c.Material.CoreLossDensity(frequency, peakFluxDensity)
	return density * c.Effective.EffectiveVolume, nil
}
