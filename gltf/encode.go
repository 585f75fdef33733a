// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package gltf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	qgltf "github.com/qmuntal/gltf"
	"golang.org/x/image/draw"

	"github.com/scarecr0w12/aowow/mesh"
)

// maxTextureSide is the longer-side clamp applied to an embedded
// texture before PNG encode (spec.md §4.7).
const maxTextureSide = 512

// Options configures the optional texture attached to the mesh.
type Options struct {
	// Texture, if non-nil, is embedded as the mesh's base color texture.
	// Width/Height describe Pix (RGBA, 4 bytes/pixel).
	Texture       []byte
	TextureWidth  int
	TextureHeight int
}

// Encode packs m (and, if supplied, opts.Texture) into a binary glTF
// 2.0 container (spec.md §4.7). Exactly one buffer, four buffer views
// (five with a texture), four accessors, one mesh/primitive/node/scene.
func Encode(m *mesh.Mesh, opts Options) ([]byte, error) {
	if len(m.Vertices) == 0 || len(m.Triangles) == 0 {
		return nil, fmt.Errorf("gltf: cannot encode an empty mesh")
	}

	idxBuf := u16Buffer(m.Triangles)
	posBuf := f32Buffer(positionsFlat(m.Vertices), 3)
	normBuf := f32Buffer(normalsFlat(m.Vertices), 3)
	uvBuf := f32Buffer(uvsFlat(m.Vertices), 2)

	var combined []byte
	var views []qgltf.BufferView

	appendRegion := func(b packBuffer, target qgltf.Target) uint32 {
		offset := uint32(len(combined))
		rounded, _ := pad4(len(b.Data))
		padded := make([]byte, rounded)
		copy(padded, b.Data)
		combined = append(combined, padded...)
		views = append(views, qgltf.BufferView{
			Buffer:     0,
			ByteOffset: offset,
			ByteLength: uint32(len(b.Data)),
			Target:     target,
		})
		return uint32(len(views) - 1)
	}

	idxViewIdx := appendRegion(idxBuf, qgltf.TargetElementArrayBuffer)
	posViewIdx := appendRegion(posBuf, qgltf.TargetArrayBuffer)
	normViewIdx := appendRegion(normBuf, qgltf.TargetArrayBuffer)
	uvViewIdx := appendRegion(uvBuf, qgltf.TargetArrayBuffer)

	posMin, posMax := bboxSlices(m.Min, m.Max)
	idxMin, idxMax := indexMinMax(m.Triangles)

	accessors := []*qgltf.Accessor{
		{ // 0: indices
			BufferView:    &idxViewIdx,
			ComponentType: qgltf.ComponentUshort,
			Type:          qgltf.AccessorScalar,
			Count:         idxBuf.Count,
			Min:           idxMin,
			Max:           idxMax,
		},
		{ // 1: positions
			BufferView:    &posViewIdx,
			ComponentType: qgltf.ComponentFloat,
			Type:          qgltf.AccessorVec3,
			Count:         posBuf.Count,
			Min:           posMin,
			Max:           posMax,
		},
		{ // 2: normals
			BufferView:    &normViewIdx,
			ComponentType: qgltf.ComponentFloat,
			Type:          qgltf.AccessorVec3,
			Count:         normBuf.Count,
		},
		{ // 3: uvs
			BufferView:    &uvViewIdx,
			ComponentType: qgltf.ComponentFloat,
			Type:          qgltf.AccessorVec2,
			Count:         uvBuf.Count,
		},
	}

	doc := &qgltf.Document{
		Asset: qgltf.Asset{Version: "2.0"},
	}

	var material qgltf.Material
	var images []*qgltf.Image
	var samplers []*qgltf.Sampler
	var textures []*qgltf.Texture

	if len(opts.Texture) > 0 {
		pngBytes, err := encodePNG(opts.Texture, opts.TextureWidth, opts.TextureHeight)
		if err != nil {
			return nil, fmt.Errorf("gltf: texture encode: %w", err)
		}
		imgOffset := uint32(len(combined))
		rounded, _ := pad4(len(pngBytes))
		padded := make([]byte, rounded)
		copy(padded, pngBytes)
		combined = append(combined, padded...)
		imgViewIdx := uint32(len(views))
		views = append(views, qgltf.BufferView{
			Buffer:     0,
			ByteOffset: imgOffset,
			ByteLength: uint32(len(pngBytes)),
		})

		images = []*qgltf.Image{{MimeType: "image/png", BufferView: &imgViewIdx}}
		samplers = []*qgltf.Sampler{{
			MagFilter: qgltf.MagLinear,
			MinFilter: qgltf.MinLinearMipMapLinear,
			WrapS:     qgltf.WrapRepeat,
			WrapT:     qgltf.WrapRepeat,
		}}
		imgIdx := uint32(0)
		samplerIdx := uint32(0)
		textures = []*qgltf.Texture{{Source: &imgIdx, Sampler: &samplerIdx}}

		texIdx := uint32(0)
		metallic := 0.0
		roughness := 0.8
		material = qgltf.Material{
			DoubleSided: true,
			PBRMetallicRoughness: &qgltf.PBRMetallicRoughness{
				BaseColorTexture: &qgltf.TextureInfo{Index: texIdx},
				MetallicFactor:   &metallic,
				RoughnessFactor:  &roughness,
			},
		}
	} else {
		metallic := 0.0
		roughness := 0.8
		material = qgltf.Material{
			DoubleSided: true,
			PBRMetallicRoughness: &qgltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float32{0.8, 0.7, 0.6, 1.0},
				MetallicFactor:  &metallic,
				RoughnessFactor: &roughness,
			},
		}
	}

	doc.Buffers = []*qgltf.Buffer{{ByteLength: uint32(len(combined)), Data: combined}}
	doc.BufferViews = views
	doc.Accessors = accessors
	doc.Images = images
	doc.Samplers = samplers
	doc.Textures = textures
	doc.Materials = []*qgltf.Material{&material}

	idx0, pos, norm, uv := uint32(0), uint32(1), uint32(2), uint32(3)
	matIdx := uint32(0)
	doc.Meshes = []*qgltf.Mesh{{
		Primitives: []*qgltf.Primitive{{
			Indices: &idx0,
			Attributes: map[string]uint32{
				"POSITION":   pos,
				"NORMAL":     norm,
				"TEXCOORD_0": uv,
			},
			Material: &matIdx,
		}},
	}}
	meshIdx := uint32(0)
	doc.Nodes = []*qgltf.Node{{Mesh: &meshIdx}}
	doc.Scenes = []*qgltf.Scene{{Nodes: []uint32{0}}}
	sceneIdx := uint32(0)
	doc.Scene = &sceneIdx

	var buf bytes.Buffer
	enc := qgltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("gltf: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func bboxSlices(min, max [3]float32) ([]float64, []float64) {
	toF64 := func(v [3]float32) []float64 {
		return []float64{float64(v[0]), float64(v[1]), float64(v[2])}
	}
	return toF64(min), toF64(max)
}

func indexMinMax(tris []uint16) ([]float64, []float64) {
	min, max := tris[0], tris[0]
	for _, t := range tris {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	return []float64{float64(min)}, []float64{float64(max)}
}

// encodePNG conditionally resizes an RGBA pixel buffer so its longer
// side is at most maxTextureSide, then encodes it as PNG (spec.md
// §4.7). Resize uses golang.org/x/image/draw's high-quality
// Catmull-Rom filter.
func encodePNG(pix []byte, w, h int) ([]byte, error) {
	src := &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}

	dstW, dstH := w, h
	if longer := max(w, h); longer > maxTextureSide {
		scale := float64(maxTextureSide) / float64(longer)
		dstW = int(float64(w) * scale)
		dstH = int(float64(h) * scale)
		if dstW < 1 {
			dstW = 1
		}
		if dstH < 1 {
			dstH = 1
		}
	}

	var out image.Image = src
	if dstW != w || dstH != h {
		dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
