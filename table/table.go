// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package table implements the tabular metadata record reader of
// spec.md §4.3 (C3): a generic WDBC-style fixed-width record file with
// an inline NUL-terminated string pool, plus a projection of the
// ItemDisplayInfo schema onto a typed Go struct.
//
// Shaped after load/iqm.go's "read a fixed header, bounds-check every
// table, materialize records" decode entry point.
package table

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/scarecr0w12/aowow/internal/bin"
	"github.com/scarecr0w12/aowow/internal/config"
)

// magic is the expected sentinel of a WDBC tabular record file
// (cross-checked against original_source/tools/export_item_display.py).
var magic = [4]byte{'W', 'D', 'B', 'C'}

const headerSize = 20

// Reader holds a parsed tabular record file: the raw record region, the
// string pool, and the field geometry needed to decode either (spec.md
// §3, Tabular Record File).
type Reader struct {
	recordCount uint32
	fieldCount  uint32
	recordSize  uint32
	records     []byte // recordCount * recordSize bytes
	strings     []byte
}

// Open reads the full blob from r and parses the WDBC header. size is
// the total byte length to read (the caller typically has it from an
// archive entry or os.File.Stat).
func Open(r io.ReaderAt, size int64) (*Reader, error) {
	blob := make([]byte, size)
	if _, err := r.ReadAt(blob, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("table: read: %w", err)
	}
	return Parse(blob)
}

// Parse parses an in-memory WDBC blob (spec.md §4.3 first paragraph).
func Parse(blob []byte) (*Reader, error) {
	if len(blob) < headerSize {
		return nil, fmt.Errorf("table: blob too short for header (%d bytes)", len(blob))
	}
	if !bytes.Equal(blob[0:4], magic[:]) {
		return nil, fmt.Errorf("table: bad magic %q, want WDBC", blob[0:4])
	}
	recordCount, _ := bin.U32(blob, 4)
	fieldCount, _ := bin.U32(blob, 8)
	recordSize, _ := bin.U32(blob, 12)
	stringPoolSize, _ := bin.U32(blob, 16)

	recordsStart := uint32(headerSize)
	co := bin.CountOffset{Count: recordCount, Offset: recordsStart}
	records, ok := co.Slice(blob, recordSize)
	if !ok {
		return nil, fmt.Errorf("table: record region out of range (count=%d size=%d)", recordCount, recordSize)
	}
	stringsStart := recordsStart + recordCount*recordSize
	if !bin.InRange(len(blob), stringsStart, stringPoolSize) {
		return nil, fmt.Errorf("table: string pool out of range")
	}
	strings := blob[stringsStart : stringsStart+stringPoolSize]

	return &Reader{
		recordCount: recordCount,
		fieldCount:  fieldCount,
		recordSize:  recordSize,
		records:     records,
		strings:     strings,
	}, nil
}

// RecordCount is the number of rows in the table.
func (r *Reader) RecordCount() uint32 { return r.recordCount }

// FieldCount is the number of u32 words per row.
func (r *Reader) FieldCount() uint32 { return r.fieldCount }

// Field returns the raw u32 value at (record, field), or 0 if either
// index is out of range.
func (r *Reader) Field(record, field uint32) uint32 {
	if record >= r.recordCount || field >= r.fieldCount {
		return 0
	}
	off := record*r.recordSize + field*4
	v, _ := bin.U32(r.records, off)
	return v
}

// LookupString decodes a string-pool field value (spec.md §4.3: offset
// 0 is the empty string, an out-of-range offset is also the empty
// string, otherwise bytes up to the first NUL are decoded lossily as
// UTF-8). Client locales other than enUS commonly store Windows-1252
// bytes in this pool; a result that fails UTF-8 validation is
// re-decoded through golang.org/x/text/encoding/charmap.Windows1252
// rather than surfacing mangled text.
func (r *Reader) LookupString(offset uint32) string {
	raw := bin.NulString(r.strings, offset)
	if raw == "" || utf8.ValidString(raw) {
		return raw
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ItemDisplay is the projected row shape consumed by the atlas
// compositor (spec.md §3, Item Display Record), plus the
// SpellVisualID/GroupSoundIndex fields the original tooling also read
// for diagnostics (SPEC_FULL.md §3).
type ItemDisplay struct {
	ID                 uint32
	ModelLeft          string
	ModelRight         string
	TextureLeft        string
	TextureRight       string
	IconLeft           string
	IconRight          string
	GeosetGroup1       uint32
	GeosetGroup2       uint32
	Flags              uint32
	SpellVisualID      uint32
	GroupSoundIndex    uint32
	HelmetGeoset1      uint32
	HelmetGeoset2      uint32
	RegionTexture      [8]string // indexed by config.Region
	ItemVisual         uint32
	ParticleColorID    uint32
}

// ItemDisplays decodes every row using the compiled-in
// config.ItemDisplaySchema field positions, keyed by display ID. A row
// whose ID field is 0 is skipped (spec.md §4.3 convention, mirrored
// from original_source/tools/export_item_display.py's "did == 0:
// continue").
func (r *Reader) ItemDisplays() map[uint32]ItemDisplay {
	s := config.ItemDisplaySchema
	out := make(map[uint32]ItemDisplay, r.recordCount)
	for i := uint32(0); i < r.recordCount; i++ {
		id := r.Field(i, uint32(s.ID))
		if id == 0 {
			continue
		}
		var d ItemDisplay
		d.ID = id
		d.ModelLeft = r.LookupString(r.Field(i, uint32(s.ModelL)))
		d.ModelRight = r.LookupString(r.Field(i, uint32(s.ModelR)))
		d.TextureLeft = r.LookupString(r.Field(i, uint32(s.TexL)))
		d.TextureRight = r.LookupString(r.Field(i, uint32(s.TexR)))
		d.IconLeft = r.LookupString(r.Field(i, uint32(s.IconL)))
		d.IconRight = r.LookupString(r.Field(i, uint32(s.IconR)))
		d.GeosetGroup1 = r.Field(i, uint32(s.Geo1))
		d.GeosetGroup2 = r.Field(i, uint32(s.Geo2))
		d.Flags = r.Field(i, uint32(s.Flags))
		d.SpellVisualID = r.Field(i, uint32(s.SpellVisual))
		d.GroupSoundIndex = r.Field(i, uint32(s.GroupSoundIndex))
		d.HelmetGeoset1 = r.Field(i, uint32(s.HelmGeo1))
		d.HelmetGeoset2 = r.Field(i, uint32(s.HelmGeo2))
		for t := 0; t < 8; t++ {
			d.RegionTexture[t] = r.LookupString(r.Field(i, uint32(s.TextureStart+t)))
		}
		d.ItemVisual = r.Field(i, uint32(s.ItemVisual))
		d.ParticleColorID = r.Field(i, uint32(s.ParticleColorID))
		out[id] = d
	}
	return out
}
