// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package settings implements the process-wide configuration knobs consumed
// by every physics kernel and adviser. Unlike the original implementation's
// singleton, Settings is an explicit struct passed by reference into every
// call; DefaultSettings exists only as an application-edge convenience.
package settings

// ReluctanceModel selects the reluctance kernel used by the reluctance
// package (spec.md §4.1).
type ReluctanceModel int

const (
	ReluctanceZhang ReluctanceModel = iota
	ReluctanceMu
	ReluctanceBalakrishnan
	ReluctancePartridge
	ReluctanceEffectiveArea
	ReluctanceEffectiveLength
	ReluctanceMuehlethaler
	ReluctanceStenglein
	ReluctanceClassic
)

// FieldModel selects the H(x,y) kernel used by the field package
// (spec.md §4.7).
type FieldModel int

const (
	FieldAlbach FieldModel = iota
	FieldBinnsLawrenson
	FieldWang
	FieldLammeraner
)

// FringingModel selects the gap-fringing correction used by field/losses.
type FringingModel int

const (
	FringingAlbach FringingModel = iota
	FringingRoshen
	FringingSullivan
)

// CoreMode selects whether the core adviser searches a standard catalogue
// or only manufacturer-available cores.
type CoreMode int

const (
	CoreModeStandard CoreMode = iota
	CoreModeAvailable
)

// Settings groups every process-wide flag named in spec.md §4.11 plus the
// model-selection enums of §4.1/§4.7. Kernels take *Settings explicitly;
// they must never mutate it.
type Settings struct {
	// inventory filters
	UseOnlyCoresInStock bool
	UseToroidalCores    bool
	UseConcentricCores  bool
	CoreMode            CoreMode

	// coil synthesis strategies
	CoilAllowMarginTape          bool
	CoilAllowInsulatedWire       bool
	CoilTryRewind                bool
	CoilFillSectionsWithMarginTape bool
	CoilMaximumLayersPlanar      int
	CoilAdviserMaximumNumberWires int

	// physics kernel selection
	ReluctanceModel                      ReluctanceModel
	MagneticFieldStrengthModel           FieldModel
	MagneticFieldStrengthFringingEffectModel FringingModel
	MagneticFieldMirroringDimension      int
	MagneticFieldIncludeFringing         bool

	// safety margins
	SaturationSafetyMargin float64
}

// NewDefaultSettings returns the documented default configuration.
func NewDefaultSettings() *Settings {
	s := &Settings{}
	s.Reset()
	return s
}

// Reset restores every field to its documented default, in place, so a
// shared *Settings can be reused across tests without constructing a new
// one each time.
func (s *Settings) Reset() {
	s.UseOnlyCoresInStock = false
	s.UseToroidalCores = true
	s.UseConcentricCores = true
	s.CoreMode = CoreModeStandard

	s.CoilAllowMarginTape = true
	s.CoilAllowInsulatedWire = true
	s.CoilTryRewind = false
	s.CoilFillSectionsWithMarginTape = false
	s.CoilMaximumLayersPlanar = 4
	s.CoilAdviserMaximumNumberWires = 10

	s.ReluctanceModel = ReluctanceZhang
	s.MagneticFieldStrengthModel = FieldAlbach
	s.MagneticFieldStrengthFringingEffectModel = FringingAlbach
	s.MagneticFieldMirroringDimension = 1
	s.MagneticFieldIncludeFringing = true

	s.SaturationSafetyMargin = 0.8
}

// DefaultSettings is a convenience instance for application-edge callers
// (CLIs, top-level orchestrators). Kernels must take their configuration
// as an explicit parameter instead of reading this global.
var DefaultSettings = NewDefaultSettings()
