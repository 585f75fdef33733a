// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package gltf implements the binary glTF serializer of spec.md §4.7
// (C7): it packs an assembled mesh.Mesh plus an optional PNG texture
// into a single chunked GLB container.
//
// Buffer packing is adapted from load/buffer.go's Stride/Count/Data
// byte-buffer shape; the document model itself is built directly on
// the real qmuntal/gltf library (the teacher's own internal/load/gltf
// package is this same library, inlined without a go.mod entry (see
// DESIGN.md) rather than reinvented, since no example in the pack
// ships its own glTF encoder.
package gltf

import (
	"encoding/binary"
	"math"

	"github.com/scarecr0w12/aowow/mesh"
)

// packBuffer is the little-endian byte region for one accessor's worth
// of data, tracking element count and byte stride the way
// load/buffer.go's Buffer does.
type packBuffer struct {
	Data   []byte
	Count  uint32
	Stride uint32
}

// f32Buffer packs a flat slice of float32 components into little-endian
// bytes, dimension components per element (3 for vec3, 2 for vec2).
func f32Buffer(flat []float32, dimension uint32) packBuffer {
	data := make([]byte, len(flat)*4)
	for i, v := range flat {
		binary.LittleEndian.PutUint32(data[i*4:i*4+4], math.Float32bits(v))
	}
	return packBuffer{Data: data, Count: uint32(len(flat)) / dimension, Stride: 4 * dimension}
}

// u16Buffer packs a slice of uint16 indices into little-endian bytes.
func u16Buffer(indexes []uint16) packBuffer {
	data := make([]byte, len(indexes)*2)
	for i, v := range indexes {
		binary.LittleEndian.PutUint16(data[i*2:i*2+2], v)
	}
	return packBuffer{Data: data, Count: uint32(len(indexes)), Stride: 2}
}

// positionsFlat, normalsFlat, and uvsFlat de-interleave mesh.Vertex into
// the three flat per-attribute float32 slices a glTF accessor expects.
func positionsFlat(verts []mesh.Vertex) []float32 {
	out := make([]float32, 0, len(verts)*3)
	for _, v := range verts {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
	}
	return out
}

func normalsFlat(verts []mesh.Vertex) []float32 {
	out := make([]float32, 0, len(verts)*3)
	for _, v := range verts {
		out = append(out, v.Normal[0], v.Normal[1], v.Normal[2])
	}
	return out
}

func uvsFlat(verts []mesh.Vertex) []float32 {
	out := make([]float32, 0, len(verts)*2)
	for _, v := range verts {
		out = append(out, v.UV[0], v.UV[1])
	}
	return out
}

// pad4 returns n rounded up to the next multiple of 4, and the number
// of zero padding bytes needed (spec.md §4.7: every buffer-view
// sub-region is padded to a 4-byte boundary before the next begins).
func pad4(n int) (rounded, padding int) {
	rem := n % 4
	if rem == 0 {
		return n, 0
	}
	return n + (4 - rem), 4 - rem
}
