// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dimval implements the dimensioned value: a scalar with optional
// nominal, minimum and maximum bounds, used throughout the data model for
// any tolerance-bearing quantity (turns ratios, inductance targets, ...).
package dimval

import (
	"math"

	"github.com/OpenMagnetics/mkf-sub006/merr"
)

// Value is a scalar that may carry a nominal value and/or a min/max range.
type Value struct {
	Nominal *float64 `json:"nominal,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// Exact builds a Value with only a nominal component.
func Exact(v float64) Value {
	return Value{Nominal: &v}
}

// Range builds a Value with a minimum and maximum.
func Range(min, max float64) Value {
	return Value{Minimum: &min, Maximum: &max}
}

// RangeAround builds a Value with the given nominal and [min,max] bounds;
// the nominal is stored as given, not recentred.
func RangeAround(nominal, min, max float64) Value {
	return Value{Nominal: &nominal, Minimum: &min, Maximum: &max}
}

// Validate checks the invariants: min <= max, and nominal (if present) lies
// within [min,max] when both bounds are present.
func (v Value) Validate() error {
	if v.Minimum != nil && v.Maximum != nil && *v.Minimum > *v.Maximum {
		return merr.New(merr.InvalidInput, "dimval.Validate", "minimum %v exceeds maximum %v", *v.Minimum, *v.Maximum)
	}
	if v.Nominal != nil {
		if v.Minimum != nil && *v.Nominal < *v.Minimum {
			return merr.New(merr.InvalidInput, "dimval.Validate", "nominal %v is below minimum %v", *v.Nominal, *v.Minimum)
		}
		if v.Maximum != nil && *v.Nominal > *v.Maximum {
			return merr.New(merr.InvalidInput, "dimval.Validate", "nominal %v is above maximum %v", *v.Nominal, *v.Maximum)
		}
	}
	return nil
}

// Resolve picks a single representative scalar: the nominal if present,
// else the midpoint of [min,max], else whichever bound is set. Reports
// false if no field is set at all.
func (v Value) Resolve() (float64, bool) {
	if v.Nominal != nil {
		return *v.Nominal, true
	}
	if v.Minimum != nil && v.Maximum != nil {
		return (*v.Minimum + *v.Maximum) / 2, true
	}
	if v.Minimum != nil {
		return *v.Minimum, true
	}
	if v.Maximum != nil {
		return *v.Maximum, true
	}
	return 0, false
}

// HasBounds reports whether both minimum and maximum are set.
func (v Value) HasBounds() bool {
	return v.Minimum != nil && v.Maximum != nil
}

// Scale multiplies every set field by k, preserving which fields are set.
func (v Value) Scale(k float64) Value {
	out := Value{}
	if v.Nominal != nil {
		n := *v.Nominal * k
		out.Nominal = &n
	}
	if v.Minimum != nil && v.Maximum != nil && k < 0 {
		// scaling by a negative factor flips the ordering of the bounds
		mn, mx := *v.Maximum*k, *v.Minimum*k
		out.Minimum, out.Maximum = &mn, &mx
	} else {
		if v.Minimum != nil {
			m := *v.Minimum * k
			out.Minimum = &m
		}
		if v.Maximum != nil {
			m := *v.Maximum * k
			out.Maximum = &m
		}
	}
	return out
}

// Add adds two Values field-wise; a field absent in either operand is
// treated as absent in the result (tolerance propagation is worst-case:
// mins add with mins, maxes add with maxes).
func Add(a, b Value) Value {
	out := Value{}
	if a.Nominal != nil && b.Nominal != nil {
		n := *a.Nominal + *b.Nominal
		out.Nominal = &n
	}
	if a.Minimum != nil && b.Minimum != nil {
		m := *a.Minimum + *b.Minimum
		out.Minimum = &m
	}
	if a.Maximum != nil && b.Maximum != nil {
		m := *a.Maximum + *b.Maximum
		out.Maximum = &m
	}
	return out
}

// WithinTolerance reports whether got lies within relTol of the resolved
// representative of want (or of want.Minimum/Maximum bounds when set).
func WithinTolerance(got float64, want Value, relTol float64) bool {
	if want.Minimum != nil && got < *want.Minimum*(1-relTol) {
		return false
	}
	if want.Maximum != nil && got > *want.Maximum*(1+relTol) {
		return false
	}
	if want.Minimum == nil && want.Maximum == nil {
		resolved, ok := want.Resolve()
		if !ok {
			return true
		}
		if resolved == 0 {
			return math.Abs(got) < relTol
		}
		return math.Abs(got-resolved)/math.Abs(resolved) <= relTol
	}
	return true
}
