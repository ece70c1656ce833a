// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package core implements the Core, Gap and Bobbin data model (spec.md §3):
// a core's shape, material, stacking and gapping, plus its derived columns,
// effective parameters and winding windows.
package core

import (
	"math"

	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/merr"
)

// GapType tags the four gap kinds named in spec.md §3.
type GapType int

const (
	GapGround GapType = iota
	GapDistributed
	GapResidual
	GapSpacer
)

// residualFloor is the minimum gap length applied when a gap's declared
// length is zero (spec.md §4.1 tie-break rule).
const residualFloor = 5e-6 // 5 micrometers

// Gap describes one deliberate break in the magnetic path.
type Gap struct {
	Type              GapType
	Length            float64
	Coordinates       geometry.Point
	SectionWidth      float64 // cross-section dimensions of the gapped area
	SectionDepth      float64
	Area              float64
}

// EffectiveLength returns the gap's length after applying the residual
// floor tie-break: a declared zero-length gap is treated as residual with
// the 5 micrometer floor.
func (g Gap) EffectiveLength() float64 {
	if g.Length <= 0 {
		return residualFloor
	}
	return g.Length
}

// SplitDistributed splits a gap of the given total length into n equal
// sub-gaps, as spec.md §3 requires for distributed gaps.
func SplitDistributed(totalLength float64, n int, coords geometry.Point, sectionWidth, sectionDepth, area float64) []Gap {
	if n <= 0 {
		n = 1
	}
	each := totalLength / float64(n)
	gaps := make([]Gap, n)
	for i := range gaps {
		gaps[i] = Gap{
			Type:         GapDistributed,
			Length:       each,
			Coordinates:  coords,
			SectionWidth: sectionWidth,
			SectionDepth: sectionDepth,
			Area:         area,
		}
	}
	return gaps
}

// MaterialCurvePoint is one sample of a material's permeability curve at a
// given field strength and temperature.
type MaterialCurvePoint struct {
	FieldStrength float64 // H, A/m
	Temperature   float64 // degrees C
	Permeability  float64 // relative mu
}

// Material carries the core material's permeability curve and loss-model
// coefficients (spec.md §3's "material (mu(H,T) curve, saturation B, loss
// model coefficients)").
type Material struct {
	Name                  string
	SaturationFluxDensity float64 // Tesla
	InitialPermeability   float64
	Curve                 []MaterialCurvePoint
	// loss model coefficients for a Steinmetz-style P = k * f^a * B^b law
	SteinmetzK float64
	SteinmetzAlpha float64
	SteinmetzBeta  float64
}

// PermeabilityAt returns mu(H,T) by nearest-neighbour lookup on the curve,
// falling back to InitialPermeability when no curve is loaded.
func (m Material) PermeabilityAt(h, t float64) float64 {
	if len(m.Curve) == 0 {
		return m.InitialPermeability
	}
	best := m.Curve[0]
	bestDist := distance2(best.FieldStrength, best.Temperature, h, t)
	for _, p := range m.Curve[1:] {
		d := distance2(p.FieldStrength, p.Temperature, h, t)
		if d < bestDist {
			best, bestDist = p, d
		}
	}
	return best.Permeability
}

func distance2(h1, t1, h2, t2 float64) float64 {
	dh := h1 - h2
	dt := t1 - t2
	return dh*dh + dt*dt
}

// CoreLossDensity evaluates the Steinmetz loss density (W/m^3) at the given
// frequency and peak flux density.
func (m Material) CoreLossDensity(frequency, peakFluxDensity float64) float64 {
	if m.SteinmetzK == 0 {
		return 0
	}
	return m.SteinmetzK * math.Pow(frequency, m.SteinmetzAlpha) * math.Pow(peakFluxDensity, m.SteinmetzBeta)
}

// BobbinWindowElement is one element of a bobbin's winding-window list
// (spec.md §3: "winding-window-element list (rectangular or round)").
type BobbinWindowElement struct {
	Window geometry.WindingWindow
}

// Bobbin is the insulating former a coil is wound on.
type Bobbin struct {
	WindowElements []BobbinWindowElement
	WallThickness  float64
	ColumnThickness float64
}

// FromCoreGeometry builds a default bobbin sized to fit inside the given
// winding window, applying wall/column thickness margins, for use when a
// Magnetic has no explicit bobbin (spec.md §3: "Created from core geometry
// when absent").
func FromCoreGeometry(window geometry.WindingWindow, wallThickness, columnThickness float64) Bobbin {
	inner := window
	inner.Width -= 2 * wallThickness
	inner.Height -= 2 * columnThickness
	if inner.Width < 0 {
		inner.Width = 0
	}
	if inner.Height < 0 {
		inner.Height = 0
	}
	return Bobbin{
		WindowElements:  []BobbinWindowElement{{Window: inner}},
		WallThickness:   wallThickness,
		ColumnThickness: columnThickness,
	}
}

// Core is a concrete magnetic core: shape family, material, stack count and
// gapping, plus the columns/effective-parameters/windows derived from it.
type Core struct {
	ShapeFamily string // e.g. "ETD", "PQ", "Toroidal", see glossary A..T letters
	Material    Material
	NumberStacks int
	Gaps        []Gap

	CentralColumn Column
	LateralColumns []Column
	Effective     geometry.EffectiveParameters
	Windows       []geometry.WindingWindow

	// Cost is the catalogue unit price, in the registry's currency. Zero
	// means unknown/unpriced rather than free.
	Cost float64
}

// Column is a thin alias kept local so core.go does not need to re-export
// geometry's identifiers at every call site.
type Column = geometry.Column

// TotalGapLength sums the effective length of every gap in the column.
func (c Core) TotalGapLength() float64 {
	total := 0.0
	for _, g := range c.Gaps {
		total += g.EffectiveLength()
	}
	return total
}

// Validate checks the core invariant from spec.md §3: the sum of gap
// lengths must not exceed the central column's height.
func (c Core) Validate() error {
	if c.TotalGapLength() > c.CentralColumn.Height {
		return merr.New(merr.InvalidGeometry, "core.Validate",
			"cumulative gap length %v exceeds column height %v", c.TotalGapLength(), c.CentralColumn.Height)
	}
	return nil
}

// EnsureResidualGaps appends a residual gap at every mating surface that
// has none, per spec.md §3's "residual gaps always present where mating
// surfaces meet" invariant. matingSurfaces gives the coordinate of each
// surface that must carry at least a residual gap.
func (c *Core) EnsureResidualGaps(matingSurfaces []geometry.Point) {
	has := make(map[geometry.Point]bool, len(c.Gaps))
	for _, g := range c.Gaps {
		has[g.Coordinates] = true
	}
	for _, p := range matingSurfaces {
		if !has[p] {
			c.Gaps = append(c.Gaps, Gap{Type: GapResidual, Length: residualFloor, Coordinates: p})
		}
	}
}
