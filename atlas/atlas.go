// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package atlas implements the character atlas compositor of spec.md
// §4.8 (C8): it resolves a base skin texture, resizes it onto a
// 512x512 canvas, then overlays per-item region textures in
// caller-supplied order.
//
// Resize is grounded on the same golang.org/x/image/draw high-quality
// filter SPEC_FULL.md wires into the gltf package's embedded-texture
// resize; the straight-alpha "over" compositing loop is plain arithmetic
// per spec.md §4.8 step 3 (no reference implementation in the pack
// performs region-rectangle alpha compositing).
package atlas

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"

	"github.com/scarecr0w12/aowow/archive"
	"github.com/scarecr0w12/aowow/internal/config"
	"github.com/scarecr0w12/aowow/table"
	"github.com/scarecr0w12/aowow/texture"
)

// Inputs bundles the per-character parameters spec.md §4.8 names.
type Inputs struct {
	Race        string
	Sex         string // "F" or "M"
	SkinColor   int    // two-digit skin-colour index
	ModelDir    string // e.g. `Character\Human\Female`
	Model       string // base model token, e.g. "HumanFemale"
	ItemOrder   []uint32
	ItemDisplay map[uint32]table.ItemDisplay
	Overlay     *archive.Overlay
	// FallbackColor is used to fill the canvas when no base skin resolves
	// (spec.md §4.8 step 1, "race-specific fallback opaque colour").
	FallbackColor color.NRGBA
}

// Composite assembles the full 512x512 character atlas (spec.md §4.8).
func Composite(in Inputs) (*texture.Pixels, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, config.AtlasSize, config.AtlasSize))
	fillBaseSkin(canvas, in)

	for _, itemID := range in.ItemOrder {
		disp, ok := in.ItemDisplay[itemID]
		if !ok {
			continue
		}
		applyItem(canvas, in, disp)
	}

	return &texture.Pixels{
		Width:  config.AtlasSize,
		Height: config.AtlasSize,
		Pix:    canvas.Pix,
	}, nil
}

// fillBaseSkin implements spec.md §4.8 steps 1-2: resolve a base skin
// candidate, resize it onto the canvas, or fall back to a solid color.
func fillBaseSkin(canvas *image.NRGBA, in Inputs) {
	blob, ok := resolveBaseSkin(in)
	if !ok {
		fillSolid(canvas, in.FallbackColor)
		return
	}
	px, err := texture.Decode(blob)
	if err != nil {
		fillSolid(canvas, in.FallbackColor)
		return
	}
	src := &image.NRGBA{Pix: px.Pix, Stride: int(px.Width) * 4, Rect: image.Rect(0, 0, int(px.Width), int(px.Height))}
	draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, src.Bounds(), draw.Src, nil)
}

func fillSolid(canvas *image.NRGBA, c color.NRGBA) {
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// resolveBaseSkin implements spec.md §4.8 step 1's candidate filename
// list, falling back to a substring search.
func resolveBaseSkin(in Inputs) ([]byte, bool) {
	nn := fmt.Sprintf("%02d", in.SkinColor)
	candidates := []string{
		fmt.Sprintf(`%s\%sSkin00_%s.blp`, in.ModelDir, in.Model, nn),
		fmt.Sprintf(`%s\%sSkin%s_00.blp`, in.ModelDir, in.Model, nn),
		fmt.Sprintf(`%s\%s_skin.blp`, in.ModelDir, in.Model),
		fmt.Sprintf(`%s\%s.blp`, in.ModelDir, in.Model),
	}
	for _, c := range candidates {
		if data, ok := in.Overlay.Read(c); ok {
			return data, true
		}
	}

	substr := strings.ToLower(fmt.Sprintf(`%s\%sskin`, in.ModelDir, in.Model))
	matches := in.Overlay.List(substr)
	var best string
	for _, m := range matches {
		if !strings.HasSuffix(m, ".blp") {
			continue
		}
		if best == "" || m < best {
			best = m
		}
	}
	if best == "" {
		return nil, false
	}
	return in.Overlay.Read(best)
}

// applyItem implements spec.md §4.8 step 3: for each non-empty region
// texture token, resolve the actual target region (suffix takes
// precedence over the schema key), find the overlay texture, decode,
// resize, and alpha-composite onto that region's rectangle.
func applyItem(canvas *image.NRGBA, in Inputs, disp table.ItemDisplay) {
	for key := 0; key < 8; key++ {
		token := disp.RegionTexture[key]
		if token == "" {
			continue
		}
		region := config.Region(key)
		if inferred, ok := config.RegionFromSuffix(strings.ToUpper(token)); ok {
			region = inferred
		}

		blob, ok := findComponentTexture(in, region, token)
		if !ok {
			continue
		}
		px, err := texture.Decode(blob)
		if err != nil {
			continue
		}
		compositeRegion(canvas, px, config.Regions[region])
	}
}

// findComponentTexture implements the suffix search order of spec.md
// §4.8 step 3: `S = _F or _M` (by sex), then `_U`, then no suffix.
func findComponentTexture(in Inputs, region config.Region, token string) ([]byte, bool) {
	dir := config.RegionComponentDir[region]
	sexSuffix := "_F"
	if strings.EqualFold(in.Sex, "M") {
		sexSuffix = "_M"
	}
	suffixes := []string{sexSuffix, "_U", ""}
	for _, s := range suffixes {
		path := fmt.Sprintf(`Item\TextureComponents\%s\%s%s.blp`, dir, token, s)
		if data, ok := in.Overlay.Read(path); ok {
			return data, true
		}
	}
	return nil, false
}

// compositeRegion resizes px to fit r and alpha-composites it onto that
// rectangle using straight-alpha "over" (spec.md §4.8 step 3).
func compositeRegion(canvas *image.NRGBA, px *texture.Pixels, r config.Rect) {
	src := &image.NRGBA{Pix: px.Pix, Stride: int(px.Width) * 4, Rect: image.Rect(0, 0, int(px.Width), int(px.Height))}
	resized := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	draw.CatmullRom.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Src, nil)

	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			si := resized.PixOffset(x, y)
			s := resized.Pix[si : si+4]
			di := canvas.PixOffset(r.X+x, r.Y+y)
			d := canvas.Pix[di : di+4]
			overWrite(d, s)
		}
	}
}

// overWrite implements straight-alpha over with src and dst both
// straight (non-premultiplied) RGBA: each colour channel becomes
// src*src.a + dst*(1-src.a), and alpha becomes src.a + dst.a*(1-src.a).
// The colour blend does not weight dst by dst.a.
func overWrite(dst, src []byte) {
	sa := float64(src[3]) / 255
	for c := 0; c < 3; c++ {
		out := float64(src[c])*sa + float64(dst[c])*(1-sa)
		dst[c] = byte(out)
	}
	oa := sa + (float64(dst[3])/255)*(1-sa)
	dst[3] = byte(oa * 255)
}
