// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package bin provides small bounds-checked little-endian readers shared
// by the table, model, and skin packages. Each of those three binary
// formats (DBC-style tabular records, M2, .skin) names a region of a
// single in-memory blob by a (count, offset) or (offset, size) pair;
// this package centralizes "does that region actually fit in the blob"
// so the three parsers don't reimplement the same overflow arithmetic
// (grounded on load/iqm.go's readVertexData bounds-checked helper).
package bin

import (
	"encoding/binary"
	"fmt"
	"math"
)

// InRange reports whether [offset, offset+size) lies entirely within a
// blob of the given length, without overflowing on 32-bit offset math.
func InRange(blobLen int, offset, size uint32) bool {
	if size == 0 {
		return uint64(offset) <= uint64(blobLen)
	}
	end := uint64(offset) + uint64(size)
	return end <= uint64(blobLen)
}

// U16 reads a little-endian uint16 at the given byte offset. ok is false
// if the read would go out of bounds.
func U16(blob []byte, offset uint32) (v uint16, ok bool) {
	if !InRange(len(blob), offset, 2) {
		return 0, false
	}
	return binary.LittleEndian.Uint16(blob[offset:]), true
}

// U32 reads a little-endian uint32 at the given byte offset. ok is false
// if the read would go out of bounds.
func U32(blob []byte, offset uint32) (v uint32, ok bool) {
	if !InRange(len(blob), offset, 4) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(blob[offset:]), true
}

// F32 reads a little-endian IEEE-754 float32 at the given byte offset.
func F32(blob []byte, offset uint32) (v float32, ok bool) {
	raw, ok := U32(blob, offset)
	if !ok {
		return 0, false
	}
	return math.Float32frombits(raw), true
}

// CountOffset is the recurring (count, offset) header pair used by both
// the M2 and .skin formats (spec.md §3/§4.4/§4.5).
type CountOffset struct {
	Count  uint32
	Offset uint32
}

// ReadCountOffset reads a CountOffset pair at the given header byte
// offset.
func ReadCountOffset(blob []byte, at uint32) (CountOffset, error) {
	count, ok := U32(blob, at)
	if !ok {
		return CountOffset{}, fmt.Errorf("bin: count field at %d out of range", at)
	}
	offset, ok := U32(blob, at+4)
	if !ok {
		return CountOffset{}, fmt.Errorf("bin: offset field at %d out of range", at+4)
	}
	return CountOffset{Count: count, Offset: offset}, nil
}

// Slice returns the byte range a CountOffset describes for an array of
// elemSize-byte elements, or ok=false if it doesn't fit in blob (the
// caller then treats the array as absent rather than failing outright,
// per spec.md §4.4: "treated as absent... yields an empty array").
func (co CountOffset) Slice(blob []byte, elemSize uint32) (data []byte, ok bool) {
	total := co.Count * elemSize
	if co.Count != 0 && total/co.Count != elemSize {
		return nil, false // overflow
	}
	if !InRange(len(blob), co.Offset, total) {
		return nil, false
	}
	return blob[co.Offset : co.Offset+total], true
}

// NulString decodes bytes from pool starting at offset up to the first
// NUL (or the end of pool). offset 0 yields the empty string, the
// tabular-record string-pool convention (spec.md §3). M2 embedded
// filenames are sliced by (offset, length) in model and do not use it.
func NulString(pool []byte, offset uint32) string {
	if offset == 0 || int(offset) >= len(pool) {
		return ""
	}
	end := offset
	for int(end) < len(pool) && pool[end] != 0 {
		end++
	}
	return string(pool[offset:end])
}
