package merr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_kindString(tst *testing.T) {
	cases := map[Kind]string{
		InvalidInput:         "InvalidInput",
		InvalidGeometry:      "InvalidGeometry",
		Saturation:           "Saturation",
		OverLoss:             "OverLoss",
		ResistanceTooHigh:    "ResistanceTooHigh",
		NumericalInstability: "NumericalInstability",
		CatalogueMiss:        "CatalogueMiss",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			tst.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func Test_newAndIs(tst *testing.T) {
	err := New(InvalidGeometry, "coil.Build", "gap %v exceeds column", 1.2)
	if !Is(err, InvalidGeometry) {
		tst.Errorf("Is(err, InvalidGeometry) = false, want true")
	}
	if Is(err, Saturation) {
		tst.Errorf("Is(err, Saturation) = true, want false")
	}
	if err.Error() == "" {
		tst.Errorf("Error() returned empty string")
	}
}

func Test_wrapUnwrap(tst *testing.T) {
	cause := New(CatalogueMiss, "catalogue.Get", "material %q not found", "3C97")
	err := Wrap(InvalidInput, "adviser.Run", cause, "cannot resolve candidate core")
	if err.Unwrap() != cause {
		tst.Errorf("Unwrap() did not return wrapped cause")
	}
}

func Test_wrapUnwrapWithRequire(tst *testing.T) {
	cause := New(CatalogueMiss, "catalogue.Get", "material %q not found", "3C97")
	err := Wrap(InvalidInput, "adviser.Run", cause, "cannot resolve candidate core")
	require.True(tst, Is(err, InvalidInput))
	require.Equal(tst, cause, err.Unwrap())
	require.False(tst, Is(err, Saturation))
}
