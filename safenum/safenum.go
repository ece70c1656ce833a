// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package safenum centralizes NaN/Inf-safe summation so loss and field
// aggregates never silently propagate a numerical fault into a final result.
package safenum

import "math"

// Accumulator sums floats while replacing any NaN/Inf term with 0 and
// counting how many replacements were made, so callers can flag the result.
type Accumulator struct {
	Total    float64
	Replaced int
}

// Add folds v into the running total, replacing it with 0 if it is not finite.
func (a *Accumulator) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		a.Replaced++
		return
	}
	a.Total += v
}

// Flagged reports whether any term was replaced during accumulation.
func (a *Accumulator) Flagged() bool {
	return a.Replaced > 0
}

// Sum adds every value through an Accumulator and returns the safe total
// plus whether any term required replacement.
func Sum(values ...float64) (total float64, flagged bool) {
	var acc Accumulator
	for _, v := range values {
		acc.Add(v)
	}
	return acc.Total, acc.Flagged()
}

// Safe returns v, or 0 if v is NaN/Inf, alongside whether it was replaced.
func Safe(v float64) (safe float64, replaced bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true
	}
	return v, false
}
