// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package coil implements the coil geometric builder of spec.md §4.6: it
// turns an abstract per-winding functional description into a concrete
// arrangement of sections, layers and turns inside a bobbin/winding-window,
// subject to insulation margins and fit constraints.
package coil

import (
	"math"

	"github.com/OpenMagnetics/mkf-sub006/geometry"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

// Orientation selects whether sections/layers stack (overlapping) or sit
// side-by-side (contiguous), per spec.md §4.6.
type Orientation int

const (
	Overlapping Orientation = iota
	Contiguous
)

// Alignment selects how turns/sections distribute within their container.
type Alignment int

const (
	Centered Alignment = iota
	Inner
	Outer
	Spread
)

// WiringTechnology selects wound-wire vs. printed (planar/PCB) coils.
type WiringTechnology int

const (
	Wound WiringTechnology = iota
	Printed
)

// Winding is the per-winding functional description (spec.md §3).
type Winding struct {
	Name            string
	NumberTurns     int
	NumberParallels int
	IsolationSide   string
	Wire            wire.Wire
}

// TotalConductors is turns * parallels, the quantity every built coil must
// exactly account for (spec.md §8 invariant).
func (w Winding) TotalConductors() int {
	return w.NumberTurns * w.NumberParallels
}

// Config groups the coil builder's configuration knobs (spec.md §4.6).
type Config struct {
	WindingOrientation  Orientation
	LayersOrientation   Orientation
	TurnsAlignment      Alignment
	SectionsAlignment   Alignment
	InterleavingLevel   int
	WiringTechnology    WiringTechnology
	AllowOverflow       bool // if turns don't fit, return a partial layout marked Overflow instead of failing
	MaximumLayersPlanar int  // hard cap on PCB layers when WiringTechnology == Printed; 0 = unbounded
}

// Margins are the insulation-derived spacing requirements applied by the
// builder (spec.md §4.6 step 2: "margins required by insulation
// coordination").
type Margins struct {
	Window  float64 // margin kept between window wall and the outermost section
	Section float64 // gap between adjacent sections
	Layer   float64 // gap between adjacent layers within a section
	Turn    float64 // minimum inter-turn spacing beyond the wire's own outer dimension
}

// Section is one contiguous run of one winding's turns along the window.
type Section struct {
	WindingIndex int
	Coordinates  geometry.Point
	Length       float64 // extent along the turns-layout axis
	Thickness    float64 // extent along the stacking axis
	Alignment    Alignment
	Parallels    []int
}

// Layer subdivides a Section along the stacking axis.
type Layer struct {
	SectionIndex int
	Orientation  Orientation
	Coordinates  geometry.Point
	Length       float64
	Thickness    float64
}

// Turn is one individual conductor placement.
type Turn struct {
	Winding      int
	Parallel     int
	SectionIndex int
	LayerIndex   int
	Coordinates  geometry.Point
	Angle        float64 // radians, toroidal geometry only
}

// Coil is the fully placed geometric layout.
type Coil struct {
	Windings []Winding
	Sections []Section
	Layers   []Layer
	Turns    []Turn
	Config   Config
	Overflow bool
}

// InterleavingPattern computes the ordered sequence of winding indices for
// the coil's sections: interleaving_level copies of each winding, round-
// robin interleaved, per spec.md §4.6 step 1 (e.g. level 2 with windings
// {0,1} -> [0,1,0,1]). Order for more than two windings is under-specified
// by the original; this round-robin replication is captured verbatim as
// the chosen, deterministic behavior (see DESIGN.md).
func InterleavingPattern(numWindings, level int) []int {
	if level < 1 {
		level = 1
	}
	pattern := make([]int, 0, numWindings*level)
	for i := 0; i < level; i++ {
		for w := 0; w < numWindings; w++ {
			pattern = append(pattern, w)
		}
	}
	return pattern
}

// Build runs the coil-builder algorithm described in spec.md §4.6,
// producing sections, layers and turns inside the given winding window.
// toroidal selects the angular placement branch (step 5) instead of the
// planar section/layer layout (steps 2-4).
func Build(windings []Winding, window geometry.WindingWindow, cfg Config, margins Margins, toroidal bool) (Coil, error) {
	if len(windings) == 0 {
		return Coil{}, merr.New(merr.InvalidInput, "coil.Build", "no windings supplied")
	}
	pattern := InterleavingPattern(len(windings), cfg.InterleavingLevel)

	if toroidal {
		return buildToroidal(windings, window, cfg, margins, pattern)
	}
	return buildPlanar(windings, window, cfg, margins, pattern)
}

// stackAxis returns the window's extent along the section-stacking axis:
// Overlapping orientation stacks sections radially (along Width);
// Contiguous sits them side-by-side along the window's Height.
func stackAxis(window geometry.WindingWindow, orientation Orientation) float64 {
	if orientation == Overlapping {
		return window.Width
	}
	return window.Height
}

// lengthAxis is the axis perpendicular to stackAxis, along which turns are
// laid out within a layer.
func lengthAxis(window geometry.WindingWindow, orientation Orientation) float64 {
	if orientation == Overlapping {
		return window.Height
	}
	return window.Width
}

func buildPlanar(windings []Winding, window geometry.WindingWindow, cfg Config, margins Margins, pattern []int) (Coil, error) {
	available := stackAxis(window, cfg.WindingOrientation) - 2*margins.Window
	if available < 0 {
		available = 0
	}
	length := lengthAxis(window, cfg.WindingOrientation)

	type built = struct {
		section Section
		layers  []Layer
		turns   []Turn
	}

	perWindingParallelCursor := make([]int, len(windings))
	results := make([]built, 0, len(pattern))
	maxLayerCount := cfg.MaximumLayersPlanar
	anyCapped := false

	for sectionIdx, windingIdx := range pattern {
		w := windings[windingIdx]
		totalInSection := w.TotalConductors() / countOccurrences(pattern, windingIdx)
		remainder := w.TotalConductors() % countOccurrences(pattern, windingIdx)
		if isLastOccurrence(pattern, sectionIdx, windingIdx) {
			totalInSection += remainder
		}

		outerLen, outerThick := w.Wire.OuterDimensions()
		if cfg.WiringTechnology == Printed && outerLen <= 0 {
			outerLen = w.Wire.TraceWidth
		}
		effLen := outerLen + margins.Turn
		effThick := outerThick + margins.Layer

		turnsAvailableLength := length - 2*margins.Window
		if turnsAvailableLength < 0 {
			turnsAvailableLength = 0
		}
		capacityPerLayer := 0
		if effLen > 0 {
			capacityPerLayer = int(math.Floor(turnsAvailableLength / effLen))
		}
		if capacityPerLayer < 1 {
			capacityPerLayer = 1
		}

		numLayers := int(math.Ceil(float64(totalInSection) / float64(capacityPerLayer)))
		if numLayers < 1 {
			numLayers = 1
		}
		capped := false
		if cfg.WiringTechnology == Printed && maxLayerCount > 0 && numLayers > maxLayerCount {
			numLayers = maxLayerCount
			capped = true
		}
		if capped {
			if !cfg.AllowOverflow {
				return Coil{}, merr.New(merr.InvalidGeometry, "coil.Build",
					"winding %q needs more than the %d planar layers allowed", w.Name, maxLayerCount)
			}
			anyCapped = true
		}

		sectionThickness := float64(numLayers) * effThick

		sec := Section{
			WindingIndex: windingIdx,
			Length:       length - 2*margins.Window,
			Thickness:    sectionThickness,
			Alignment:    cfg.SectionsAlignment,
		}

		layers := make([]Layer, 0, numLayers)
		turns := make([]Turn, 0, totalInSection)
		placed := 0
		for layerIdx := 0; layerIdx < numLayers && placed < totalInSection; layerIdx++ {
			inThisLayer := capacityPerLayer
			if totalInSection-placed < inThisLayer {
				inThisLayer = totalInSection - placed
			}
			lay := Layer{
				SectionIndex: sectionIdx,
				Orientation:  cfg.LayersOrientation,
				Length:       turnsAvailableLength,
				Thickness:    effThick,
			}
			positions := layoutPositions(inThisLayer, turnsAvailableLength, effLen, cfg.TurnsAlignment)
			for i := 0; i < inThisLayer; i++ {
				parallel := perWindingParallelCursor[windingIdx] % w.NumberParallels
				perWindingParallelCursor[windingIdx]++
				turns = append(turns, Turn{
					Winding:      windingIdx,
					Parallel:     parallel,
					SectionIndex: sectionIdx,
					LayerIndex:   layerIdx,
					Coordinates:  geometry.Point{X: positions[i], Y: (float64(layerIdx) + 0.5) * effThick},
				})
			}
			placed += inThisLayer
			layers = append(layers, lay)
			sec.Parallels = appendUnique(sec.Parallels, turns)
		}
		results = append(results, built{section: sec, layers: layers, turns: turns})
	}

	totalThickness := 0.0
	for _, b := range results {
		totalThickness += b.section.Thickness
	}
	overflow := anyCapped
	if totalThickness > available {
		if !anyAllowOverflow(cfg) {
			return Coil{}, merr.New(merr.InvalidGeometry, "coil.Build",
				"coil thickness %v exceeds available window space %v", totalThickness, available)
		}
		overflow = true
	}

	offsets := sectionOffsets(results, available, totalThickness, cfg.SectionsAlignment, margins.Section)

	out := Coil{Windings: windings, Config: cfg, Overflow: overflow}
	for idx, b := range results {
		offset := offsets[idx]
		b.section.Coordinates = axisPoint(window, cfg.WindingOrientation, offset)
		out.Sections = append(out.Sections, b.section)
		for li, lay := range b.layers {
			lay.Coordinates = axisPoint(window, cfg.WindingOrientation, offset+float64(li)*lay.Thickness+lay.Thickness/2)
			out.Layers = append(out.Layers, lay)
		}
		for _, t := range b.turns {
			t.Coordinates = translate(window, cfg.WindingOrientation, offset, t.Coordinates)
			out.Turns = append(out.Turns, t)
		}
	}

	if err := out.Validate(); err != nil && !overflow {
		return Coil{}, err
	}
	return out, nil
}

func anyAllowOverflow(cfg Config) bool {
	return cfg.AllowOverflow
}

func countOccurrences(pattern []int, v int) int {
	n := 0
	for _, p := range pattern {
		if p == v {
			n++
		}
	}
	return n
}

func isLastOccurrence(pattern []int, idx, v int) bool {
	for i := idx + 1; i < len(pattern); i++ {
		if pattern[i] == v {
			return false
		}
	}
	return true
}

func appendUnique(parallels []int, turns []Turn) []int {
	seen := make(map[int]bool, len(parallels))
	for _, p := range parallels {
		seen[p] = true
	}
	out := append([]int{}, parallels...)
	for _, t := range turns {
		if !seen[t.Parallel] {
			seen[t.Parallel] = true
			out = append(out, t.Parallel)
		}
	}
	return out
}

// layoutPositions returns n evenly-spaced coordinates of width effLen along
// an axis of length available, positioned according to alignment.
func layoutPositions(n int, available, effLen float64, alignment Alignment) []float64 {
	positions := make([]float64, n)
	used := float64(n) * effLen
	var start, gap float64
	switch alignment {
	case Centered:
		start = (available - used) / 2
		gap = effLen
	case Inner:
		start = 0
		gap = effLen
	case Outer:
		start = available - used
		gap = effLen
	case Spread:
		if n > 1 {
			extra := (available - used) / float64(n)
			gap = effLen + extra
			start = extra / 2
		} else {
			start = (available - used) / 2
			gap = effLen
		}
	}
	for i := 0; i < n; i++ {
		positions[i] = start + float64(i)*gap + effLen/2
	}
	return positions
}

// sectionOffsets positions each section along the stacking axis, honoring
// cfg.SectionsAlignment for how unused space is distributed.
func sectionOffsets(results []struct {
	section Section
	layers  []Layer
	turns   []Turn
}, available, totalThickness float64, alignment Alignment, sectionMargin float64) []float64 {
	n := len(results)
	offsets := make([]float64, n)
	extraGaps := float64(n-1) * sectionMargin
	used := totalThickness + extraGaps
	var start, gap float64
	switch alignment {
	case Centered:
		start = (available - used) / 2
		gap = sectionMargin
	case Inner:
		start = 0
		gap = sectionMargin
	case Outer:
		start = available - used
		gap = sectionMargin
	case Spread:
		if n > 1 {
			extra := (available - used) / float64(n-1)
			gap = sectionMargin + extra
		}
	}
	cursor := start
	for i, b := range results {
		offsets[i] = cursor
		cursor += b.section.Thickness + gap
	}
	return offsets
}

func axisPoint(window geometry.WindingWindow, orientation Orientation, offset float64) geometry.Point {
	if orientation == Overlapping {
		return geometry.Point{X: window.Coordinates.X + offset, Y: window.Coordinates.Y}
	}
	return geometry.Point{X: window.Coordinates.X, Y: window.Coordinates.Y + offset}
}

func translate(window geometry.WindingWindow, orientation Orientation, offset float64, local geometry.Point) geometry.Point {
	if orientation == Overlapping {
		return geometry.Point{X: window.Coordinates.X + offset + local.Y, Y: window.Coordinates.Y + local.X}
	}
	return geometry.Point{X: window.Coordinates.X + local.X, Y: window.Coordinates.Y + offset + local.Y}
}

// buildToroidal places turns by angle around a toroidal core, per spec.md
// §4.6 step 5.
func buildToroidal(windings []Winding, window geometry.WindingWindow, cfg Config, margins Margins, pattern []int) (Coil, error) {
	circumference := window.Width // caller passes the usable inner circumference as Width
	out := Coil{Windings: windings, Config: cfg}

	perWindingParallelCursor := make([]int, len(windings))
	angleCursor := 0.0
	for sectionIdx, windingIdx := range pattern {
		w := windings[windingIdx]
		totalInSection := w.TotalConductors() / countOccurrences(pattern, windingIdx)
		remainder := w.TotalConductors() % countOccurrences(pattern, windingIdx)
		if isLastOccurrence(pattern, sectionIdx, windingIdx) {
			totalInSection += remainder
		}
		outerLen, _ := w.Wire.OuterDimensions()
		effLen := outerLen + margins.Turn
		sectionArc := float64(totalInSection) * effLen
		sectionAngle := 0.0
		if circumference > 0 {
			sectionAngle = sectionArc / circumference * 2 * math.Pi
		}

		out.Sections = append(out.Sections, Section{
			WindingIndex: windingIdx,
			Length:       sectionArc,
			Alignment:    cfg.SectionsAlignment,
		})

		if totalInSection > 0 {
			anglePerTurn := sectionAngle / float64(totalInSection)
			for i := 0; i < totalInSection; i++ {
				parallel := perWindingParallelCursor[windingIdx] % w.NumberParallels
				perWindingParallelCursor[windingIdx]++
				angle := angleCursor + (float64(i)+0.5)*anglePerTurn
				out.Turns = append(out.Turns, Turn{
					Winding:      windingIdx,
					Parallel:     parallel,
					SectionIndex: sectionIdx,
					Angle:        angle,
				})
			}
		}
		angleCursor += sectionAngle
	}

	if angleCursor > 2*math.Pi+1e-9 {
		if !cfg.AllowOverflow {
			return Coil{}, merr.New(merr.InvalidGeometry, "coil.Build",
				"toroidal turns occupy %v rad, exceeding the full circle", angleCursor)
		}
		out.Overflow = true
	}
	return out, nil
}

// Validate checks the coil invariants from spec.md §8: every winding's
// turns*parallels is exactly accounted for and every turn references a
// known winding. Turn positions are not compared, so overlapping turns are
// not detected here.
func (c Coil) Validate() error {
	counts := make([]int, len(c.Windings))
	for _, t := range c.Turns {
		if t.Winding < 0 || t.Winding >= len(c.Windings) {
			return merr.New(merr.InvalidGeometry, "coil.Validate", "turn references unknown winding %d", t.Winding)
		}
		counts[t.Winding]++
	}
	for i, w := range c.Windings {
		if counts[i] != w.TotalConductors() {
			return merr.New(merr.InvalidGeometry, "coil.Validate",
				"winding %q has %d turns placed, want %d", w.Name, counts[i], w.TotalConductors())
		}
	}
	return nil
}
