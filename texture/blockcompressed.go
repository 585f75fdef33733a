// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package texture

import "fmt"

// decodeBlockCompressed implements spec.md §4.2 encoding 2: select the
// block codec by AlphaEncoding (0 -> BC1, 1 -> BC2, 7 -> BC3, anything
// else falls back to BC1), decode mip 0 into BGRA, then swap to RGBA.
// This swap is the single channel reorder on the block-compressed path
// (the paletted path reorders its BGRA palette entries as it writes each
// pixel, see paletted.go); spec.md §9 pins BGRA-internal/RGBA-at-the-boundary as the chosen
// convention (see blockcompressed_test.go TestDecode_ChannelOrder).
//
// The block-iteration and bit-unpacking shape (RGB565 expansion, 2-bit
// index table, four/three-color mode selection by c0 vs c1, the
// alpha-ramp interpolation in decodeBC3Block) follows
// other_examples/a33c32ef_heisthecat31-evrFileTools__cmd-texconv-main.go.go's
// decompressBC1/decompressBC3.
func decodeBlockCompressed(h *Header, payload []byte) (*Pixels, error) {
	w, ht := int(h.Width), int(h.Height)
	bgra := make([]byte, w*ht*4)

	blocksX := (w + 3) / 4
	blocksY := (ht + 3) / 4

	var blockSize int
	var decodeBlock func(block []byte, out *[16][4]byte)
	switch h.AlphaEncoding {
	case 1:
		blockSize = 16
		decodeBlock = decodeBC2Block
	case 7:
		blockSize = 16
		decodeBlock = decodeBC3Block
	default: // 0, or any unrecognized value falls back to BC1.
		blockSize = 8
		decodeBlock = decodeBC1Block
	}

	needed := blocksX * blocksY * blockSize
	if len(payload) < needed {
		return nil, fmt.Errorf("texture: block-compressed payload too short: have %d want %d", len(payload), needed)
	}

	var texel [16][4]byte
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			blockOff := (by*blocksX + bx) * blockSize
			decodeBlock(payload[blockOff:blockOff+blockSize], &texel)
			for ty := 0; ty < 4; ty++ {
				py := by*4 + ty
				if py >= ht {
					continue
				}
				for tx := 0; tx < 4; tx++ {
					px := bx*4 + tx
					if px >= w {
						continue
					}
					t := texel[ty*4+tx]
					off := (py*w + px) * 4
					bgra[off+0] = t[0] // B
					bgra[off+1] = t[1] // G
					bgra[off+2] = t[2] // R
					bgra[off+3] = t[3] // A
				}
			}
		}
	}

	rgba := make([]byte, len(bgra))
	for i := 0; i < len(bgra); i += 4 {
		rgba[i+0] = bgra[i+2] // R <- B
		rgba[i+1] = bgra[i+1] // G
		rgba[i+2] = bgra[i+0] // B <- R
		rgba[i+3] = bgra[i+3] // A
	}
	return &Pixels{Width: h.Width, Height: h.Height, Pix: rgba}, nil
}

// rgb565 expands a packed 16-bit 5:6:5 color to 8-bit B,G,R (BGR order,
// matching this package's internal block-decode convention).
func rgb565(c uint16) (b, g, r byte) {
	r = byte(uint32((c>>11)&0x1F) * 255 / 31)
	g = byte(uint32((c>>5)&0x3F) * 255 / 63)
	b = byte(uint32(c&0x1F) * 255 / 31)
	return b, g, r
}

// decodeBC1Block decodes one 8-byte BC1 (DXT1) block into 16 BGRA
// texels in row-major order.
func decodeBC1Block(block []byte, out *[16][4]byte) {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	idx := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24

	b0, g0, r0 := rgb565(c0)
	b1, g1, r1 := rgb565(c1)

	var colors [4][4]byte // B,G,R,A per entry
	colors[0] = [4]byte{b0, g0, r0, 255}
	colors[1] = [4]byte{b1, g1, r1, 255}
	if c0 > c1 {
		colors[2] = lerpColor(colors[0], colors[1], 2, 3)
		colors[3] = lerpColor(colors[0], colors[1], 1, 3)
	} else {
		colors[2] = lerpColor(colors[0], colors[1], 1, 2)
		colors[3] = [4]byte{0, 0, 0, 0} // transparent black
	}

	for i := 0; i < 16; i++ {
		sel := (idx >> uint(i*2)) & 0x3
		out[i] = colors[sel]
	}
}

// decodeBC2Block decodes one 16-byte BC2 (DXT3) block: 8 bytes explicit
// 4-bit alpha followed by an 8-byte BC1-shaped color block always
// interpreted in four-color mode (alpha is carried separately).
func decodeBC2Block(block []byte, out *[16][4]byte) {
	alphaBytes := block[0:8]
	decodeBC1ColorAlwaysFourColor(block[8:16], out)
	for i := 0; i < 16; i++ {
		byteIdx := i / 2
		var nibble byte
		if i%2 == 0 {
			nibble = alphaBytes[byteIdx] & 0x0F
		} else {
			nibble = (alphaBytes[byteIdx] >> 4) & 0x0F
		}
		out[i][3] = nibble * 17
	}
}

// decodeBC3Block decodes one 16-byte BC3 (DXT5) block: an 8-byte
// interpolated alpha block followed by an 8-byte BC1-shaped color block
// always interpreted in four-color mode.
func decodeBC3Block(block []byte, out *[16][4]byte) {
	a0, a1 := block[0], block[1]
	var alphaValues [8]byte
	alphaValues[0], alphaValues[1] = a0, a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			alphaValues[1+i] = byte((uint16(7-i)*uint16(a0) + uint16(i)*uint16(a1)) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			alphaValues[1+i] = byte((uint16(5-i)*uint16(a0) + uint16(i)*uint16(a1)) / 5)
		}
		alphaValues[6] = 0
		alphaValues[7] = 255
	}

	// 48 bits of 3-bit indices across block[2:8].
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << uint(8*i)
	}

	decodeBC1ColorAlwaysFourColor(block[8:16], out)
	for i := 0; i < 16; i++ {
		sel := (bits >> uint(i*3)) & 0x7
		out[i][3] = alphaValues[sel]
	}
}

// decodeBC1ColorAlwaysFourColor decodes the RGB portion of a BC1-shaped
// block without ever switching to the 1-bit-transparency 3-color mode
// (used by BC2/BC3 whose alpha is stored separately).
func decodeBC1ColorAlwaysFourColor(block []byte, out *[16][4]byte) {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	idx := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24

	b0, g0, r0 := rgb565(c0)
	b1, g1, r1 := rgb565(c1)

	var colors [4][4]byte
	colors[0] = [4]byte{b0, g0, r0, 255}
	colors[1] = [4]byte{b1, g1, r1, 255}
	colors[2] = lerpColor(colors[0], colors[1], 2, 3)
	colors[3] = lerpColor(colors[0], colors[1], 1, 3)

	for i := 0; i < 16; i++ {
		sel := (idx >> uint(i*2)) & 0x3
		c := colors[sel]
		out[i] = [4]byte{c[0], c[1], c[2], 255}
	}
}

// lerpColor blends a and b weighted wa:wb (wa+wb is the implied total),
// carrying alpha as fully opaque.
func lerpColor(a, b [4]byte, wa, wTotal int) [4]byte {
	wb := wTotal - wa
	mix := func(x, y byte) byte {
		return byte((int(x)*wa + int(y)*wb) / wTotal)
	}
	return [4]byte{mix(a[0], b[0]), mix(a[1], b[1]), mix(a[2], b[2]), 255}
}
