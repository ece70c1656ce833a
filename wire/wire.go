// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package wire implements the wire data model (spec.md §3/§4.5): a tagged
// variant over {round, litz, rectangular, foil, planar}, each exposing
// conducting/outer area, per-meter resistance and skin-depth loss factors.
// Matches the teacher's material-model shape (msolid.Model) but uses an
// explicit Kind discriminant instead of an allocator registry, since JSON
// input already carries the discriminant (Design Notes §9).
package wire

import (
	"math"

	"github.com/OpenMagnetics/mkf-sub006/merr"
)

// Kind discriminates the wire variant.
type Kind int

const (
	Round Kind = iota
	Litz
	Rectangular
	Foil
	Planar
)

// MaterialKind tags the conductor material.
type MaterialKind int

const (
	Copper MaterialKind = iota
	Aluminum
)

// resistivityAt20C in ohm*meter for each conductor material.
var resistivityAt20C = map[MaterialKind]float64{
	Copper:   1.68e-8,
	Aluminum: 2.82e-8,
}

// temperatureCoefficient (per degree C) for each conductor material.
var temperatureCoefficient = map[MaterialKind]float64{
	Copper:   0.00393,
	Aluminum: 0.00429,
}

// Material describes the conductor alloy and its temperature behavior.
type Material struct {
	Kind MaterialKind
}

// ResistivityAt returns rho(T) = rho20 * (1 + alpha*(T-20)), per spec.md §4.5.
func (m Material) ResistivityAt(temperature float64) float64 {
	rho20 := resistivityAt20C[m.Kind]
	alpha := temperatureCoefficient[m.Kind]
	return rho20 * (1 + alpha*(temperature-20))
}

// CoatingGrade is an IEC 60317-style coating grade 1..3.
type CoatingGrade int

// Coating is either (material + thickness) or a grade with a known
// breakdown voltage, per spec.md §4.5.
type Coating struct {
	Grade           CoatingGrade // 0 means "not graded": use Thickness/BreakdownVoltage directly
	Thickness       float64
	BreakdownVoltage float64
	NumberLayers    int
}

// gradeBreakdownVoltage is the simplified IEC 60317 grade table.
var gradeBreakdownVoltage = map[CoatingGrade]float64{
	1: 1500,
	2: 3000,
	3: 6000,
}

// ResolveBreakdownVoltage returns the coating's breakdown voltage, using the
// grade table when a grade is set and no explicit voltage was given.
func (c Coating) ResolveBreakdownVoltage() float64 {
	if c.BreakdownVoltage > 0 {
		return c.BreakdownVoltage
	}
	if v, ok := gradeBreakdownVoltage[c.Grade]; ok {
		return v
	}
	return 0
}

// Wire is the tagged-variant wire description.
type Wire struct {
	Kind     Kind
	Material Material
	Coating  Coating

	// Round
	ConductingDiameter float64
	OuterDiameter      float64

	// Litz (Strand is itself a Round wire)
	Strand         *Wire
	NumberStrands  int
	LitzOuterDiameter float64
	FillingFactor  float64

	// Rectangular / Foil
	ConductingWidth  float64
	ConductingHeight float64
	OuterWidth       float64
	OuterHeight      float64
	EdgeRadius       float64

	// Planar
	TraceThickness float64
	TraceWidth     float64

	// CostPerMeter is the catalogue unit price per meter of conductor, in
	// the registry's currency. Zero means unknown/unpriced rather than free.
	CostPerMeter float64
}

// QuickRound builds a round wire from conducting diameter alone, deriving
// an outer diameter from a single-layer-1 coating thickness default.
func QuickRound(conductingDiameter float64, material Material) Wire {
	return Wire{
		Kind:               Round,
		Material:           material,
		ConductingDiameter: conductingDiameter,
		OuterDiameter:      conductingDiameter + 2*0.02e-3,
		Coating:            Coating{Grade: 1, NumberLayers: 1},
	}
}

// QuickLitz builds a litz wire from strand diameter and strand count, per
// spec.md §4.5's "quick_litz(strand_diameter, num_strands)" constructor.
func QuickLitz(strandDiameter float64, numStrands int, material Material) Wire {
	strand := QuickRound(strandDiameter, material)
	packingFactor := 0.75 // fraction of circle area actually filled by strands
	outer := strandDiameter * math.Sqrt(float64(numStrands)/packingFactor)
	return Wire{
		Kind:              Litz,
		Material:          material,
		Strand:            &strand,
		NumberStrands:     numStrands,
		LitzOuterDiameter: outer,
		FillingFactor:     packingFactor,
		Coating:           Coating{Grade: 1, NumberLayers: 1},
	}
}

// ConductingArea returns the metal cross-section area.
func (w Wire) ConductingArea() float64 {
	switch w.Kind {
	case Round:
		r := w.ConductingDiameter / 2
		return math.Pi * r * r
	case Litz:
		if w.Strand == nil {
			return 0
		}
		return w.Strand.ConductingArea() * float64(w.NumberStrands)
	case Rectangular, Foil:
		return w.ConductingWidth*w.ConductingHeight - (4-math.Pi)*w.EdgeRadius*w.EdgeRadius
	case Planar:
		return w.TraceWidth * w.TraceThickness
	default:
		return 0
	}
}

// OuterArea returns the area including coating/insulation.
func (w Wire) OuterArea() float64 {
	switch w.Kind {
	case Round:
		r := w.OuterDiameter / 2
		return math.Pi * r * r
	case Litz:
		r := w.LitzOuterDiameter / 2
		return math.Pi * r * r
	case Rectangular, Foil:
		return w.OuterWidth * w.OuterHeight
	case Planar:
		return w.TraceWidth * w.TraceThickness
	default:
		return 0
	}
}

// Validate checks conducting_area <= outer_area (spec.md §8 invariant).
func (w Wire) Validate() error {
	if w.ConductingArea() > w.OuterArea()*(1+1e-9) {
		return merr.New(merr.InvalidInput, "wire.Validate",
			"conducting area %v exceeds outer area %v", w.ConductingArea(), w.OuterArea())
	}
	return nil
}

// ResistancePerMeter computes wire resistance per unit length at the given
// temperature, per spec.md §4.5.
func (w Wire) ResistancePerMeter(temperature float64) float64 {
	area := w.ConductingArea()
	if area <= 0 {
		return math.Inf(1)
	}
	return w.Material.ResistivityAt(temperature) / area
}

// SkinDepth returns the classic skin depth delta = sqrt(rho / (pi*f*mu0*mur))
// at the given frequency and temperature, assuming non-magnetic conductor
// (mur = 1).
func (w Wire) SkinDepth(frequency, temperature float64) float64 {
	if frequency <= 0 {
		return math.Inf(1)
	}
	const mu0 = 4 * math.Pi * 1e-7
	rho := w.Material.ResistivityAt(temperature)
	return math.Sqrt(rho / (math.Pi * frequency * mu0))
}

// OuterDimensions returns the (width, height) outer footprint used by the
// coil builder to place turns; for round/litz both entries equal the
// outer diameter.
func (w Wire) OuterDimensions() (width, height float64) {
	switch w.Kind {
	case Round:
		return w.OuterDiameter, w.OuterDiameter
	case Litz:
		return w.LitzOuterDiameter, w.LitzOuterDiameter
	case Rectangular, Foil:
		return w.OuterWidth, w.OuterHeight
	case Planar:
		return w.TraceWidth, w.TraceThickness
	default:
		return 0, 0
	}
}
