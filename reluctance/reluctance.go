// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package reluctance implements the selectable reluctance kernels of
// spec.md §4.1: total reluctance from core geometry, gap list and material
// permeability, with each kernel correcting for fringing by enlarging the
// effective gap area. Kernels are a dispatch table of pure functions keyed
// by settings.ReluctanceModel, following the teacher's tagged-variant
// factory pattern (mdl/retention.New) generalized to avoid a package-level
// registration side effect: the table is a plain map literal.
package reluctance

import (
	"math"

	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/settings"
)

const mu0 = 4 * math.Pi * 1e-7

// gapContext carries the geometric inputs a fringing kernel needs to
// enlarge a gap's effective area.
type gapContext struct {
	gapLength     float64
	columnArea    float64
	columnWidth   float64 // characteristic cross-section dimension, e.g. diameter or side
	distanceToWall float64
}

// kernel maps a gap's geometric context to an effective area, which the
// caller turns into a reluctance via gapLength / (mu0 * effectiveArea).
type kernel func(ctx gapContext) (effectiveArea float64)

var kernels = map[settings.ReluctanceModel]kernel{
	settings.ReluctanceClassic:         classicKernel,
	settings.ReluctanceEffectiveArea:   effectiveAreaKernel,
	settings.ReluctanceEffectiveLength: effectiveLengthKernel,
	settings.ReluctanceZhang:           zhangKernel,
	settings.ReluctanceMu:              muKernel,
	settings.ReluctanceBalakrishnan:    balakrishnanKernel,
	settings.ReluctancePartridge:       partridgeKernel,
	settings.ReluctanceMuehlethaler:    muehlethalerKernel,
	settings.ReluctanceStenglein:       stengleinKernel,
}

// classicKernel applies no fringing correction at all.
func classicKernel(ctx gapContext) float64 {
	return ctx.columnArea
}

// effectiveAreaKernel is the classic McLyman-style area enlargement: each
// side of the gap gains a fringing margin proportional to the gap length.
func effectiveAreaKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	return (side + ctx.gapLength) * (side + ctx.gapLength)
}

// effectiveLengthKernel applies a logarithmic fringing factor built from
// the gap length and the distance to the nearest wall; like the other
// kernels it returns an enlarged effective area. Kept distinct from
// zhangKernel so callers can compare.
func effectiveLengthKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	factor := 1 + ctx.gapLength/side*math.Log(2*ctx.distanceToWallOrDefault(side)/ctx.gapLength+1)
	return ctx.columnArea * factor
}

func (c gapContext) distanceToWallOrDefault(side float64) float64 {
	if c.distanceToWall > 0 {
		return c.distanceToWall
	}
	return side
}

// zhangKernel follows Zhang's fringing-factor formulation: a logarithmic
// correction referencing the distance to the nearest parallel surface.
func zhangKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	g := ctx.gapLength
	w := ctx.distanceToWallOrDefault(side)
	factor := 1 + (g/side)*math.Log(1+2*w/g)
	return ctx.columnArea * factor
}

// muKernel uses Mu's simplified square-root correction.
func muKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	factor := 1 + math.Sqrt(ctx.gapLength/side)
	return ctx.columnArea * factor
}

// balakrishnanKernel applies Balakrishnan's perimeter-based correction.
func balakrishnanKernel(ctx gapContext) float64 {
	perimeter := 4 * math.Sqrt(ctx.columnArea)
	return ctx.columnArea + perimeter*ctx.gapLength/2
}

// partridgeKernel follows Partridge's arctangent fringing-factor form.
func partridgeKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	factor := 1 + (2*ctx.gapLength/(math.Pi*side))*math.Atan(side/ctx.gapLength)
	return ctx.columnArea * factor
}

// muehlethalerKernel scales the fringing factor by the ratio of gap length
// to the distance to the nearest parallel (winding) surface.
func muehlethalerKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	w := ctx.distanceToWallOrDefault(side)
	factor := 1 + (ctx.gapLength/side)*(1-math.Exp(-w/ctx.gapLength))
	return ctx.columnArea * factor
}

// stengleinKernel applies Stenglein's piecewise-linear correction, clamped
// to avoid negative areas for very large gap lengths.
func stengleinKernel(ctx gapContext) float64 {
	side := math.Sqrt(ctx.columnArea)
	factor := 1 + 0.72*ctx.gapLength/side
	if factor < 1 {
		factor = 1
	}
	return ctx.columnArea * factor
}

// Result is the total reluctance computed over a core's columns and gaps.
type Result struct {
	Core        float64 // reluctance of the magnetic path itself
	Gaps        []float64
	Total       float64
}

// Calculate computes the total reluctance of a core at the given excitation
// field strength H and temperature T, selecting the fringing kernel from
// cfg.ReluctanceModel. It fails with InvalidGeometry if the cumulative gap
// length exceeds the central column's height (spec.md §4.1).
func Calculate(c core.Core, h, t float64, cfg *settings.Settings) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	k, ok := kernels[cfg.ReluctanceModel]
	if !ok {
		return Result{}, merr.New(merr.InvalidInput, "reluctance.Calculate", "unknown reluctance model %v", cfg.ReluctanceModel)
	}

	mu := c.Material.PermeabilityAt(h, t) * mu0
	pathLength := c.Effective.EffectiveLength - c.TotalGapLength()
	if pathLength < 0 {
		pathLength = 0
	}
	var coreReluctance float64
	if mu > 0 && c.Effective.EffectiveArea > 0 {
		coreReluctance = pathLength / (mu * c.Effective.EffectiveArea)
	}

	result := Result{Core: coreReluctance, Total: coreReluctance}
	for _, g := range c.Gaps {
		length := g.EffectiveLength()
		columnArea := g.Area
		if columnArea <= 0 {
			columnArea = c.Effective.EffectiveArea
		}
		ctx := gapContext{
			gapLength:      length,
			columnArea:     columnArea,
			distanceToWall: distanceToNearestSurface(c, g),
		}
		effArea := k(ctx)
		if effArea <= 0 {
			effArea = columnArea
		}
		gapReluctance := length / (mu0 * effArea)
		result.Gaps = append(result.Gaps, gapReluctance)
		result.Total += gapReluctance
	}
	return result, nil
}

// distanceToNearestSurface estimates the distance from a gap to the
// nearest parallel core surface, used by fringing kernels that need a
// reference span. Falls back to the column's characteristic dimension
// when no more specific bobbin/window geometry is supplied.
func distanceToNearestSurface(c core.Core, g core.Gap) float64 {
	if len(c.Windows) > 0 {
		return c.Windows[0].Width / 2
	}
	return math.Sqrt(c.Effective.EffectiveArea)
}
