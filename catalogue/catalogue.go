// Copyright 2024 The OpenMagnetics Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package catalogue implements the Registry of named cores, materials and
// wires that the advisers search over (SPEC_FULL.md §4.13), loaded from
// newline-delimited JSON the way the teacher's MatDb loads a materials
// database from a single JSON file, generalized into an explicit value
// instead of a package-level singleton so callers can hold several
// independent registries at once (spec.md §9 Design Notes).
package catalogue

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/OpenMagnetics/mkf-sub006/core"
	"github.com/OpenMagnetics/mkf-sub006/merr"
	"github.com/OpenMagnetics/mkf-sub006/wire"
)

// entryKind discriminates one line of the NDJSON stream.
type entryKind string

const (
	kindCore     entryKind = "core"
	kindMaterial entryKind = "material"
	kindWire     entryKind = "wire"
)

// record is the on-the-wire shape of one NDJSON line: a discriminator plus
// the payload for whichever kind it names.
type record struct {
	Kind     entryKind    `json:"kind"`
	Name     string       `json:"name"`
	Core     *core.Core   `json:"core,omitempty"`
	Material *core.Material `json:"material,omitempty"`
	Wire     *wire.Wire   `json:"wire,omitempty"`
}

// Registry is one independent catalogue of named cores, materials and
// wires.
type Registry struct {
	Cores     map[string]core.Core
	Materials map[string]core.Material
	Wires     map[string]wire.Wire
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		Cores:     make(map[string]core.Core),
		Materials: make(map[string]core.Material),
		Wires:     make(map[string]wire.Wire),
	}
}

// Load reads newline-delimited JSON records from r and merges them into
// the registry. Each line must decode as a record; malformed lines abort
// the whole load with the line number in the error.
func (reg *Registry) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return merr.Wrap(merr.InvalidInput, "catalogue.Load", err, "line %d: malformed record", lineNumber)
		}
		if rec.Name == "" {
			return merr.New(merr.InvalidInput, "catalogue.Load", "line %d: record has no name", lineNumber)
		}
		switch rec.Kind {
		case kindCore:
			if rec.Core == nil {
				return merr.New(merr.InvalidInput, "catalogue.Load", "line %d: core record %q has no core payload", lineNumber, rec.Name)
			}
			reg.Cores[rec.Name] = *rec.Core
		case kindMaterial:
			if rec.Material == nil {
				return merr.New(merr.InvalidInput, "catalogue.Load", "line %d: material record %q has no material payload", lineNumber, rec.Name)
			}
			reg.Materials[rec.Name] = *rec.Material
		case kindWire:
			if rec.Wire == nil {
				return merr.New(merr.InvalidInput, "catalogue.Load", "line %d: wire record %q has no wire payload", lineNumber, rec.Name)
			}
			reg.Wires[rec.Name] = *rec.Wire
		default:
			return merr.New(merr.InvalidInput, "catalogue.Load", "line %d: unknown kind %q", lineNumber, rec.Kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return merr.Wrap(merr.InvalidInput, "catalogue.Load", err, "scanning NDJSON stream")
	}
	return nil
}

// Clear empties every subset of the registry in place.
func (reg *Registry) Clear() {
	reg.Cores = make(map[string]core.Core)
	reg.Materials = make(map[string]core.Material)
	reg.Wires = make(map[string]wire.Wire)
}

// GetCore looks up a named core, returning a CatalogueMiss error if absent.
func (reg *Registry) GetCore(name string) (core.Core, error) {
	c, ok := reg.Cores[name]
	if !ok {
		return core.Core{}, merr.New(merr.CatalogueMiss, "catalogue.GetCore", "no core named %q", name)
	}
	return c, nil
}

// GetMaterial looks up a named material, returning a CatalogueMiss error
// if absent.
func (reg *Registry) GetMaterial(name string) (core.Material, error) {
	m, ok := reg.Materials[name]
	if !ok {
		return core.Material{}, merr.New(merr.CatalogueMiss, "catalogue.GetMaterial", "no material named %q", name)
	}
	return m, nil
}

// GetWire looks up a named wire, returning a CatalogueMiss error if absent.
func (reg *Registry) GetWire(name string) (wire.Wire, error) {
	w, ok := reg.Wires[name]
	if !ok {
		return wire.Wire{}, merr.New(merr.CatalogueMiss, "catalogue.GetWire", "no wire named %q", name)
	}
	return w, nil
}
