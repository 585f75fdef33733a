// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package skin

import (
	"encoding/binary"
	"testing"

	"github.com/scarecr0w12/aowow/model"
)

func putCountOffset(buf []byte, field int, count, offset uint32) {
	binary.LittleEndian.PutUint32(buf[field:field+4], count)
	binary.LittleEndian.PutUint32(buf[field+4:field+8], offset)
}

func putU16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

func buildSkin(remap []uint16, rawTriangles []uint16, submeshCount uint32, units []textureUnit) []byte {
	const headerLen = 40
	buf := make([]byte, headerLen)
	copy(buf[0:4], magic[:])

	remapOff := uint32(len(buf))
	remapBytes := make([]byte, len(remap)*2)
	for i, v := range remap {
		putU16(remapBytes, i*2, v)
	}
	buf = append(buf, remapBytes...)
	putCountOffset(buf[:headerLen], indicesField, uint32(len(remap)), remapOff)

	triOff := uint32(len(buf))
	triBytes := make([]byte, len(rawTriangles)*2)
	for i, v := range rawTriangles {
		putU16(triBytes, i*2, v)
	}
	buf = append(buf, triBytes...)
	putCountOffset(buf[:headerLen], trianglesField, uint32(len(rawTriangles)), triOff)

	unitOff := uint32(len(buf))
	unitBytes := make([]byte, len(units)*textureUnitRecordSize)
	for i, u := range units {
		off := i * textureUnitRecordSize
		putU16(unitBytes, off, u.submeshIndex)
		putU16(unitBytes, off+2, u.textureID)
	}
	buf = append(buf, unitBytes...)
	putCountOffset(buf[:headerLen], textureUnitField, uint32(len(units)), unitOff)

	subOff := uint32(len(buf))
	subBytes := make([]byte, int(submeshCount)*submeshRecordSize)
	for i := uint32(0); i < submeshCount; i++ {
		off := int(i) * submeshRecordSize
		putU16(subBytes, off, uint16(i))   // meshPartId
		putU16(subBytes, off+2, 0)         // vertStart
		putU16(subBytes, off+4, 1)         // vertCount
		putU16(subBytes, off+6, 0)         // triStart
		putU16(subBytes, off+8, 3)         // triCount
	}
	buf = append(buf, subBytes...)
	putCountOffset(buf[:headerLen], submeshesField, submeshCount, subOff)

	return buf
}

func TestParse_BadMagic(t *testing.T) {
	blob := make([]byte, 40)
	copy(blob, "NOPE")
	if _, err := Parse(blob, nil); err == nil {
		t.Fatal("expected error for bad magic")
	}
}

func TestParse_TriangleRemap(t *testing.T) {
	remap := []uint16{10, 20, 30}
	rawTriangles := []uint16{0, 1, 2}
	blob := buildSkin(remap, rawTriangles, 0, nil)

	s, err := Parse(blob, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint16{10, 20, 30}
	for i, w := range want {
		if s.Triangles[i] != w {
			t.Fatalf("triangle %d: got %d want %d", i, s.Triangles[i], w)
		}
	}
}

func TestResolveSubmeshTexture_LookupFallback(t *testing.T) {
	m := &model.Model{TextureLookup: []uint16{7, 8}}
	units := []textureUnit{{submeshIndex: 0, textureID: 1}}
	got := resolveSubmeshTexture(0, units, m)
	if got != 8 {
		t.Fatalf("expected lookup-resolved texture 8, got %d", got)
	}
}

func TestResolveSubmeshTexture_DirectFallbackWhenLookupShort(t *testing.T) {
	m := &model.Model{TextureLookup: []uint16{7}}
	// textureID 5 is beyond the 1-entry lookup table: falls through to
	// direct definition indexing (spec.md §9).
	units := []textureUnit{{submeshIndex: 0, textureID: 5}}
	got := resolveSubmeshTexture(0, units, m)
	if got != 5 {
		t.Fatalf("expected direct-index fallback to 5, got %d", got)
	}
}

func TestResolveSubmeshTexture_NoMatchResolvesToZero(t *testing.T) {
	units := []textureUnit{{submeshIndex: 9, textureID: 3}}
	got := resolveSubmeshTexture(0, units, nil)
	if got != 0 {
		t.Fatalf("expected unmatched submesh to resolve to 0, got %d", got)
	}
}

func TestParse_SubmeshTextureResolution(t *testing.T) {
	remap := []uint16{0, 1, 2}
	rawTriangles := []uint16{0, 1, 2}
	units := []textureUnit{{submeshIndex: 0, textureID: 4}}
	blob := buildSkin(remap, rawTriangles, 1, units)
	m := &model.Model{TextureLookup: []uint16{99, 99, 99, 99, 42}}

	s, err := Parse(blob, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Submeshes) != 1 {
		t.Fatalf("expected 1 submesh, got %d", len(s.Submeshes))
	}
	if s.Submeshes[0].TextureIndex != 42 {
		t.Fatalf("expected resolved texture index 42, got %d", s.Submeshes[0].TextureIndex)
	}
}
