// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package model implements the skeletal model parser of spec.md §4.4
// (C4): it reads an M2 blob's vertex array, texture-definition array,
// and texture-lookup array into plain Go slices.
//
// Adapted from load/iqm.go's header-offset-table decode shape (count+
// offset pairs resolved against a single in-memory blob, every table
// bounds-checked and treated as absent rather than failing the whole
// parse).
package model

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/scarecr0w12/aowow/internal/bin"
)

var magic = [4]byte{'M', 'D', '2', '0'}

const (
	vertexOffsetField  = 60
	textureDefField    = 80
	textureLookupField = 88

	vertexRecordSize    = 48
	textureDefRecordSize = 16
)

// Vertex is one M2 vertex record (spec.md §3).
type Vertex struct {
	Position    [3]float32
	BoneWeights [4]uint8
	BoneIndices [4]uint8
	Normal      [3]float32
	UV0         [2]float32
	UV1         [2]float32
}

// TextureDefinition is one M2 texture-definition record (spec.md §4.4).
// Type 0 carries an embedded filename; any other type is
// runtime-resolved and Name is empty.
type TextureDefinition struct {
	Type  uint32
	Flags uint32
	Name  string
}

// Model is the decoded subset of an M2 blob the core consumes.
type Model struct {
	Vertices      []Vertex
	TextureDefs   []TextureDefinition
	TextureLookup []uint16 // indices into TextureDefs
}

// Parse decodes an M2 blob (spec.md §4.4). Validates the magic, reads
// the three (count, offset) header pairs at byte offsets 60/80/88, and
// materializes each table. A table whose stated region lies outside the
// blob is treated as absent (the model still yields whatever tables
// did parse rather than failing outright).
func Parse(blob []byte) (*Model, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("model: blob too short for magic")
	}
	if !bytes.Equal(blob[0:4], magic[:]) {
		return nil, fmt.Errorf("model: bad magic %q, want MD20", blob[0:4])
	}

	m := &Model{}

	if co, err := bin.ReadCountOffset(blob, vertexOffsetField); err == nil {
		if data, ok := co.Slice(blob, vertexRecordSize); ok {
			m.Vertices = decodeVertices(data, co.Count)
		} else {
			slog.Warn("model: vertex array out of range, yielding empty", "count", co.Count, "offset", co.Offset)
		}
	}

	if co, err := bin.ReadCountOffset(blob, textureDefField); err == nil {
		if data, ok := co.Slice(blob, textureDefRecordSize); ok {
			m.TextureDefs = decodeTextureDefs(blob, data, co.Count)
		} else {
			slog.Warn("model: texture-definition array out of range, yielding empty", "count", co.Count, "offset", co.Offset)
		}
	}

	if co, err := bin.ReadCountOffset(blob, textureLookupField); err == nil {
		if data, ok := co.Slice(blob, 2); ok {
			m.TextureLookup = decodeTextureLookup(data, co.Count)
		} else {
			slog.Warn("model: texture-lookup array out of range, yielding empty", "count", co.Count, "offset", co.Offset)
		}
	}

	return m, nil
}

func decodeVertices(data []byte, count uint32) []Vertex {
	out := make([]Vertex, count)
	for i := uint32(0); i < count; i++ {
		off := i * vertexRecordSize
		v := &out[i]
		for c := 0; c < 3; c++ {
			v.Position[c], _ = bin.F32(data, off+uint32(c*4))
		}
		for c := 0; c < 4; c++ {
			v.BoneWeights[c] = data[off+12+uint32(c)]
		}
		for c := 0; c < 4; c++ {
			v.BoneIndices[c] = data[off+16+uint32(c)]
		}
		for c := 0; c < 3; c++ {
			v.Normal[c], _ = bin.F32(data, off+20+uint32(c*4))
		}
		for c := 0; c < 2; c++ {
			v.UV0[c], _ = bin.F32(data, off+32+uint32(c*4))
		}
		for c := 0; c < 2; c++ {
			v.UV1[c], _ = bin.F32(data, off+40+uint32(c*4))
		}
	}
	return out
}

func decodeTextureDefs(blob, data []byte, count uint32) []TextureDefinition {
	out := make([]TextureDefinition, count)
	for i := uint32(0); i < count; i++ {
		off := i * textureDefRecordSize
		typ, _ := bin.U32(data, off)
		flags, _ := bin.U32(data, off+4)
		nameLen, _ := bin.U32(data, off+8)
		nameOffset, _ := bin.U32(data, off+12)

		def := TextureDefinition{Type: typ, Flags: flags}
		if typ == 0 && nameLen > 0 {
			end := uint64(nameOffset) + uint64(nameLen)
			if end <= uint64(len(blob)) {
				name := blob[nameOffset : nameOffset+nameLen]
				// embedded filenames are NUL-padded; trim trailing NULs.
				for len(name) > 0 && name[len(name)-1] == 0 {
					name = name[:len(name)-1]
				}
				def.Name = string(name)
			}
		}
		out[i] = def
	}
	return out
}

func decodeTextureLookup(data []byte, count uint32) []uint16 {
	out := make([]uint16, count)
	for i := uint32(0); i < count; i++ {
		v, _ := bin.U16(data, i*2)
		out[i] = v
	}
	return out
}
