// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package model

import (
	"encoding/binary"
	"math"
	"testing"
)

func putF32(b []byte, off int, f float32) {
	binary.LittleEndian.PutUint32(b[off:off+4], math.Float32bits(f))
}

// buildM2 assembles a minimal M2 blob with exactly one vertex, one
// embedded texture definition, and a one-entry texture lookup.
func buildM2() []byte {
	const headerLen = 200
	buf := make([]byte, headerLen)
	copy(buf[0:4], magic[:])

	vertexOffset := uint32(headerLen)
	binary.LittleEndian.PutUint32(buf[vertexOffsetField:vertexOffsetField+4], 1)
	binary.LittleEndian.PutUint32(buf[vertexOffsetField+4:vertexOffsetField+8], vertexOffset)

	vertex := make([]byte, vertexRecordSize)
	putF32(vertex, 0, 1.0)
	putF32(vertex, 4, 2.0)
	putF32(vertex, 8, 3.0)
	vertex[12] = 255 // bone weight 0
	vertex[16] = 7   // bone index 0
	putF32(vertex, 20, 0.0)
	putF32(vertex, 24, 1.0)
	putF32(vertex, 28, 0.0)
	putF32(vertex, 32, 0.5)
	putF32(vertex, 36, 0.5)
	buf = append(buf, vertex...)

	name := []byte("Textures\\Foo.blp\x00")
	texDefOffset := uint32(len(buf))
	binary.LittleEndian.PutUint32(buf[textureDefField:textureDefField+4], 1)
	binary.LittleEndian.PutUint32(buf[textureDefField+4:textureDefField+8], texDefOffset)

	texDef := make([]byte, textureDefRecordSize)
	binary.LittleEndian.PutUint32(texDef[0:4], 0) // type 0: embedded
	binary.LittleEndian.PutUint32(texDef[4:8], 0)
	binary.LittleEndian.PutUint32(texDef[8:12], uint32(len(name)))
	nameOffset := uint32(len(buf) + len(texDef))
	binary.LittleEndian.PutUint32(texDef[12:16], nameOffset)
	buf = append(buf, texDef...)
	buf = append(buf, name...)

	lookupOffset := uint32(len(buf))
	binary.LittleEndian.PutUint32(buf[textureLookupField:textureLookupField+4], 1)
	binary.LittleEndian.PutUint32(buf[textureLookupField+4:textureLookupField+8], lookupOffset)
	lookup := make([]byte, 2)
	binary.LittleEndian.PutUint16(lookup, 0)
	buf = append(buf, lookup...)

	return buf
}

func TestParse_BadMagic(t *testing.T) {
	blob := make([]byte, 4)
	copy(blob, "NOPE")
	if _, err := Parse(blob); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParse_VertexAndTexture(t *testing.T) {
	blob := buildM2()
	m, err := Parse(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Vertices) != 1 {
		t.Fatalf("expected 1 vertex, got %d", len(m.Vertices))
	}
	v := m.Vertices[0]
	if v.Position != [3]float32{1, 2, 3} {
		t.Fatalf("unexpected position: %v", v.Position)
	}
	if v.BoneWeights[0] != 255 || v.BoneIndices[0] != 7 {
		t.Fatalf("unexpected bone data: %v %v", v.BoneWeights, v.BoneIndices)
	}
	if len(m.TextureDefs) != 1 || m.TextureDefs[0].Name != `Textures\Foo.blp` {
		t.Fatalf("unexpected texture def: %+v", m.TextureDefs)
	}
	if len(m.TextureLookup) != 1 || m.TextureLookup[0] != 0 {
		t.Fatalf("unexpected texture lookup: %v", m.TextureLookup)
	}
}

func TestParse_NonEmbeddedTextureHasEmptyName(t *testing.T) {
	const headerLen = 100
	buf := make([]byte, headerLen)
	copy(buf[0:4], magic[:])
	texDefOffset := uint32(headerLen)
	binary.LittleEndian.PutUint32(buf[textureDefField:textureDefField+4], 1)
	binary.LittleEndian.PutUint32(buf[textureDefField+4:textureDefField+8], texDefOffset)
	texDef := make([]byte, textureDefRecordSize)
	binary.LittleEndian.PutUint32(texDef[0:4], 2) // runtime-resolved type
	buf = append(buf, texDef...)

	m, err := Parse(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.TextureDefs) != 1 || m.TextureDefs[0].Name != "" {
		t.Fatalf("expected empty name for non-embedded texture, got %+v", m.TextureDefs)
	}
}

func TestParse_OutOfRangeTableYieldsEmpty(t *testing.T) {
	const headerLen = 100
	buf := make([]byte, headerLen)
	copy(buf[0:4], magic[:])
	// vertex table claims a huge offset beyond the blob.
	binary.LittleEndian.PutUint32(buf[vertexOffsetField:vertexOffsetField+4], 5)
	binary.LittleEndian.PutUint32(buf[vertexOffsetField+4:vertexOffsetField+8], 999999)

	m, err := Parse(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Vertices) != 0 {
		t.Fatalf("expected empty vertex array for out-of-range table, got %d", len(m.Vertices))
	}
}
