// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package config holds the process-wide constant tables referenced by
// spec.md §9: archive overlay priority, atlas region geometry, the
// region-suffix table, and the item-display tabular-record schema.
// These are compiled in. The archive priority list may additionally be
// supplied from a single YAML file (LoadOverrides) so that deployments
// targeting a different client locale or patch level do not need a code
// change; the region, suffix and schema tables have no YAML override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region identifies one of the eight body-texture rectangles that tile
// the character atlas (spec.md §3, Body-Region Atlas).
type Region int

const (
	ArmUpper Region = iota
	ArmLower
	Hand
	TorsoUpper
	TorsoLower
	LegUpper
	LegLower
	Foot
	numRegions
)

// String returns the JSON/region-map key used at the archive/JSON
// boundary (spec.md §6 input JSON, §4.3 projection).
func (r Region) String() string {
	if r < 0 || r >= numRegions {
		return ""
	}
	return regionNames[r]
}

var regionNames = [numRegions]string{
	"armUpper", "armLower", "hand", "torsoUpper", "torsoLower",
	"legUpper", "legLower", "foot",
}

// RegionFromName maps a JSON region key back to a Region, the second
// return value is false for an unrecognized name.
func RegionFromName(name string) (Region, bool) {
	for i, n := range regionNames {
		if n == name {
			return Region(i), true
		}
	}
	return 0, false
}

// RegionSuffix is the uppercased two-letter component-filename suffix
// that takes precedence over the JSON region key (spec.md §4.8 step 3,
// "Region inference from suffix").
var RegionSuffix = [numRegions]string{
	"_AU", "_AL", "_HA", "_TU", "_TL", "_LU", "_LL", "_FO",
}

// RegionFromSuffix returns the Region whose suffix the given
// (already-uppercased) token ends with.
func RegionFromSuffix(upperToken string) (Region, bool) {
	for i, suf := range RegionSuffix {
		if len(upperToken) >= len(suf) && upperToken[len(upperToken)-len(suf):] == suf {
			return Region(i), true
		}
	}
	return 0, false
}

// RegionComponentDir is the archive directory name that holds a
// region's overlay textures, e.g. `Item\TextureComponents\ArmUpperTexture`
// (spec.md §4.8 step 3, "CompDir").
var RegionComponentDir = [numRegions]string{
	"ArmUpperTexture", "ArmLowerTexture", "HandTexture", "TorsoUpperTexture",
	"TorsoLowerTexture", "LegUpperTexture", "LegLowerTexture", "FootTexture",
}

// Rect is an axis-aligned pixel rectangle within the 512x512 atlas.
type Rect struct {
	X, Y, W, H int
}

// AtlasSize is the fixed canvas dimension for the character atlas
// (spec.md §3, Body-Region Atlas).
const AtlasSize = 512

// Regions gives the fixed rectangle for every body region (spec.md §3
// table). Order matches the Region enumeration.
var Regions = [numRegions]Rect{
	ArmUpper:   {X: 0, Y: 0, W: 256, H: 128},
	ArmLower:   {X: 0, Y: 128, W: 256, H: 128},
	Hand:       {X: 0, Y: 256, W: 256, H: 64},
	TorsoUpper: {X: 0, Y: 320, W: 256, H: 128},
	TorsoLower: {X: 0, Y: 448, W: 256, H: 64},
	LegUpper:   {X: 256, Y: 0, W: 256, H: 128},
	LegLower:   {X: 256, Y: 128, W: 256, H: 128},
	Foot:       {X: 256, Y: 256, W: 256, H: 64},
}

// itemDisplaySchema gives the fixed DBC field positions consumed by the
// item-display projection (spec.md §4.3). The eight region-texture
// fields are contiguous: field TextureStart+i holds the texture for the
// region config.Region(i).
type itemDisplaySchema struct {
	ID               int
	ModelL, ModelR   int
	TexL, TexR       int
	IconL, IconR     int
	Geo1, Geo2       int
	Flags            int
	SpellVisual      int
	GroupSoundIndex  int
	HelmGeo1, HelmGeo2 int
	TextureStart     int // first of 8 contiguous region-texture fields
	ItemVisual       int
	ParticleColorID  int
}

// ItemDisplaySchema is the compiled-in WotLK 3.3.5a ItemDisplayInfo.dbc
// field layout (spec.md §4.3; cross-checked against
// original_source/tools/export_item_display.py).
var ItemDisplaySchema = itemDisplaySchema{
	ID:              0,
	ModelL:          1,
	ModelR:          2,
	TexL:            3,
	TexR:            4,
	IconL:           5,
	IconR:           6,
	Geo1:            7,
	Geo2:            8,
	Flags:           9,
	SpellVisual:     10,
	GroupSoundIndex: 11,
	HelmGeo1:        12,
	HelmGeo2:        13,
	TextureStart:    15,
	ItemVisual:      23,
	ParticleColorID: 24,
}

// Overrides is the shape of an optional YAML override file. Any zero
// field is left at its compiled-in default by LoadOverrides.
type Overrides struct {
	ArchivePriority []string `yaml:"archivePriority"`
}

// Config is the resolved process-wide configuration: compiled-in
// defaults merged with an optional YAML override file.
type Config struct {
	// ArchivePriority is the highest-priority-first archive filename
	// order passed to archive.NewOverlay (spec.md §9, Open Question 1).
	ArchivePriority []string
}

// Default returns the compiled-in configuration. There is no universal
// default archive list (it is client-install-specific) so callers
// normally follow Default() with LoadOverrides to supply one.
func Default() Config {
	return Config{}
}

// LoadOverrides reads a YAML file and merges it over cfg, returning the
// merged result. A missing file is not an error (it simply means no
// override is in effect, matching the archive-level "missing file is
// skipped, not fatal" policy of spec.md §7).
func LoadOverrides(cfg Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if len(ov.ArchivePriority) > 0 {
		cfg.ArchivePriority = ov.ArchivePriority
	}
	return cfg, nil
}
