// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package skin implements the skin-companion parser of spec.md §4.5
// (C5): vertex-remap table, triangle list, submesh table, texture-unit
// table, and the submesh -> texture resolution join.
//
// Adapted from load/iqm.go's mesh/material join (the same "resolve a
// small index graph into flat per-submesh values once at parse time"
// shape as iqm's triangle/material association), with header field
// offsets matching the well-known WotLK .skin layout (magic, then four
// count+offset table headers in declared order, then a trailing bone
// count field the core does not consume).
package skin

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/scarecr0w12/aowow/internal/bin"
	"github.com/scarecr0w12/aowow/model"
)

var magic = [4]byte{'S', 'K', 'I', 'N'}

const (
	indicesField     = 4  // vertex-remap table: u16 -> model vertex index
	trianglesField   = 12 // triangle-index list: u16, indexes the remap table
	submeshesField   = 20 // submesh table: 48-byte records
	textureUnitField = 28 // texture-unit table: 24-byte records

	submeshRecordSize     = 48
	textureUnitRecordSize = 24
)

// Submesh is the core subset of a 48-byte submesh record (spec.md §3).
type Submesh struct {
	MeshPartID uint16
	VertStart  uint16
	VertCount  uint16
	TriStart   uint16
	TriCount   uint16

	// TextureIndex is the resolved texture-definition index for this
	// submesh (spec.md §4.5 submesh -> texture resolution), already
	// folded through the texture-lookup/direct-indexing fallback.
	TextureIndex uint16
}

// Skin is the decoded subset of a .skin companion file.
type Skin struct {
	VertexRemap []uint16 // index -> model vertex index
	Triangles   []uint16 // model-vertex-indexed triangle list
	Submeshes   []Submesh
}

// textureUnit is the core subset of a 24-byte texture-unit record.
type textureUnit struct {
	submeshIndex uint16
	textureID    uint16
}

// Parse decodes a .skin blob joined against the owning model's
// texture-lookup and texture-definition tables (spec.md §4.5).
func Parse(blob []byte, m *model.Model) (*Skin, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("skin: blob too short for magic")
	}
	if !bytes.Equal(blob[0:4], magic[:]) {
		return nil, fmt.Errorf("skin: bad magic %q, want SKIN", blob[0:4])
	}

	s := &Skin{}

	remapCO, err := bin.ReadCountOffset(blob, indicesField)
	if err != nil {
		return nil, fmt.Errorf("skin: vertex-remap header: %w", err)
	}
	remapData, ok := remapCO.Slice(blob, 2)
	if !ok {
		slog.Warn("skin: vertex-remap table out of range, yielding empty", "count", remapCO.Count)
	} else {
		s.VertexRemap = decodeU16Array(remapData, remapCO.Count)
	}

	triCO, err := bin.ReadCountOffset(blob, trianglesField)
	if err != nil {
		return nil, fmt.Errorf("skin: triangle-index header: %w", err)
	}
	triData, ok := triCO.Slice(blob, 2)
	if !ok {
		slog.Warn("skin: triangle-index table out of range, yielding empty", "count", triCO.Count)
	} else {
		raw := decodeU16Array(triData, triCO.Count)
		s.Triangles = make([]uint16, len(raw))
		for i, ri := range raw {
			if int(ri) < len(s.VertexRemap) {
				s.Triangles[i] = s.VertexRemap[ri]
			}
		}
	}

	var units []textureUnit
	unitCO, err := bin.ReadCountOffset(blob, textureUnitField)
	if err == nil {
		if data, ok := unitCO.Slice(blob, textureUnitRecordSize); ok {
			units = decodeTextureUnits(data, unitCO.Count)
		} else {
			slog.Warn("skin: texture-unit table out of range, yielding empty", "count", unitCO.Count)
		}
	}

	subCO, err := bin.ReadCountOffset(blob, submeshesField)
	if err != nil {
		return nil, fmt.Errorf("skin: submesh header: %w", err)
	}
	subData, ok := subCO.Slice(blob, submeshRecordSize)
	if !ok {
		slog.Warn("skin: submesh table out of range, yielding empty", "count", subCO.Count)
	} else {
		s.Submeshes = decodeSubmeshes(subData, subCO.Count, units, m)
	}

	return s, nil
}

func decodeU16Array(data []byte, count uint32) []uint16 {
	out := make([]uint16, count)
	for i := uint32(0); i < count; i++ {
		v, _ := bin.U16(data, i*2)
		out[i] = v
	}
	return out
}

func decodeTextureUnits(data []byte, count uint32) []textureUnit {
	out := make([]textureUnit, count)
	for i := uint32(0); i < count; i++ {
		off := i * textureUnitRecordSize
		subIdx, _ := bin.U16(data, off)
		texID, _ := bin.U16(data, off+2)
		out[i] = textureUnit{submeshIndex: subIdx, textureID: texID}
	}
	return out
}

func decodeSubmeshes(data []byte, count uint32, units []textureUnit, m *model.Model) []Submesh {
	out := make([]Submesh, count)
	for i := uint32(0); i < count; i++ {
		off := i * submeshRecordSize
		meshPartID, _ := bin.U16(data, off)
		vertStart, _ := bin.U16(data, off+2)
		vertCount, _ := bin.U16(data, off+4)
		triStart, _ := bin.U16(data, off+6)
		triCount, _ := bin.U16(data, off+8)

		sub := Submesh{
			MeshPartID: meshPartID,
			VertStart:  vertStart,
			VertCount:  vertCount,
			TriStart:   triStart,
			TriCount:   triCount,
		}
		sub.TextureIndex = resolveSubmeshTexture(uint16(i), units, m)
		out[i] = sub
	}
	return out
}

// resolveSubmeshTexture implements spec.md §4.5's submesh -> texture
// resolution: the first texture unit in encounter order whose
// submeshIndex matches wins. Its textureID indexes the texture-lookup
// table, falling back to direct texture-definition indexing when the
// lookup table is shorter (spec.md §9, "observed to matter for certain
// assets"). A submesh with no matching unit resolves to texture 0.
func resolveSubmeshTexture(submeshIndex uint16, units []textureUnit, m *model.Model) uint16 {
	for _, u := range units {
		if u.submeshIndex != submeshIndex {
			continue
		}
		if m != nil && int(u.textureID) < len(m.TextureLookup) {
			return m.TextureLookup[u.textureID]
		}
		return u.textureID
	}
	return 0
}
