package dimval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_validateOrdering(tst *testing.T) {
	v := Range(5, 3)
	if err := v.Validate(); err == nil {
		tst.Errorf("Validate() = nil, want error for min > max")
	}
}

func Test_validateNominalWithinBounds(tst *testing.T) {
	v := RangeAround(10, 1, 2)
	if err := v.Validate(); err == nil {
		tst.Errorf("Validate() = nil, want error for nominal outside bounds")
	}
}

func Test_resolvePrefersNominal(tst *testing.T) {
	v := RangeAround(5, 1, 9)
	got, ok := v.Resolve()
	if !ok || got != 5 {
		tst.Errorf("Resolve() = (%v, %v), want (5, true)", got, ok)
	}
}

func Test_resolveMidpointWhenNoNominal(tst *testing.T) {
	v := Range(2, 8)
	got, ok := v.Resolve()
	if !ok || got != 5 {
		tst.Errorf("Resolve() = (%v, %v), want (5, true)", got, ok)
	}
}

func Test_resolveEmpty(tst *testing.T) {
	var v Value
	_, ok := v.Resolve()
	if ok {
		tst.Errorf("Resolve() ok = true, want false for empty value")
	}
}

func Test_addPropagatesBounds(tst *testing.T) {
	a := RangeAround(10, 9, 11)
	b := RangeAround(5, 4, 6)
	sum := Add(a, b)
	n, ok := sum.Resolve()
	require.True(tst, ok)
	require.Equal(tst, 15.0, n)
	require.Equal(tst, 13.0, *sum.Minimum)
	require.Equal(tst, 17.0, *sum.Maximum)
}

func Test_withinTolerance(tst *testing.T) {
	target := Exact(100)
	if !WithinTolerance(110, target, 0.25) {
		tst.Errorf("WithinTolerance(110, 100, 0.25) = false, want true")
	}
	if WithinTolerance(150, target, 0.25) {
		tst.Errorf("WithinTolerance(150, 100, 0.25) = true, want false")
	}
}
