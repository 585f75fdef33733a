// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package mesh implements the mesh assembler of spec.md §4.6 (C6): it
// compacts the model's full vertex set down to only the vertices a
// submesh's triangle list actually references, applies the Z-up to
// Y-up axis conversion, and computes the axis-aligned bounding box.
//
// This is plain array arithmetic rather than an adaptation of the
// teacher's math/lin package: the spec needs only per-component min/max
// and a fixed axis swap, none of math/lin's matrix/quaternion
// machinery, so carrying that dependency would mean importing a large
// coupled library to exercise a handful of its functions (see
// DESIGN.md).
package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/scarecr0w12/aowow/model"
)

// Vertex is one compacted mesh vertex after the Z-up -> Y-up
// conversion (spec.md §3, Mesh (assembled)).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// Mesh is the assembler's output: a compact vertex buffer, a triangle
// index list indexing it, and the resulting bounding box.
type Mesh struct {
	Vertices  []Vertex
	Triangles []uint16
	Min, Max  [3]float32
}

// zUpToYUp applies spec.md §3's axis conversion (x, y, z) -> (x, z, -y).
func zUpToYUp(v [3]float32) [3]float32 {
	return [3]float32{v[0], v[2], -v[1]}
}

// Assemble builds a compact Mesh from the model's full vertex array and
// a (model-vertex-indexed) triangle list, such as skin.Skin.Triangles
// (spec.md §4.6). An empty triangle list, an empty source vertex
// array, or a triangle list none of whose indices lies inside the
// source array is a hard failure.
func Assemble(vertices []model.Vertex, triangles []uint16) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, fmt.Errorf("mesh: empty triangle list")
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("mesh: empty vertex set")
	}

	// Collect the set of referenced original indices, in ascending order.
	referenced := make(map[uint16]struct{})
	for _, idx := range triangles {
		referenced[idx] = struct{}{}
	}
	ordered := make([]uint16, 0, len(referenced))
	for idx := range referenced {
		ordered = append(ordered, idx)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	lookup := make(map[uint16]uint16, len(ordered))
	out := &Mesh{Vertices: make([]Vertex, 0, len(ordered))}
	for _, origIdx := range ordered {
		if int(origIdx) >= len(vertices) {
			// A triangle referencing a vertex beyond the source array is
			// unresolvable: it gets no dense entry, and the rewrite below
			// maps it to index 0.
			continue
		}
		lookup[origIdx] = uint16(len(out.Vertices))
		src := vertices[origIdx]
		out.Vertices = append(out.Vertices, Vertex{
			Position: zUpToYUp(src.Position),
			Normal:   zUpToYUp(src.Normal),
			UV:       src.UV0,
		})
	}
	if len(out.Vertices) == 0 {
		return nil, fmt.Errorf("mesh: no triangle index resolves to a source vertex")
	}

	out.Triangles = make([]uint16, len(triangles))
	for i, origIdx := range triangles {
		if dense, ok := lookup[origIdx]; ok {
			out.Triangles[i] = dense
		} else {
			out.Triangles[i] = 0
		}
	}

	out.Min, out.Max = boundingBox(out.Vertices)
	return out, nil
}

func boundingBox(verts []Vertex) (min, max [3]float32) {
	min = [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max = [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, v := range verts {
		for c := 0; c < 3; c++ {
			if v.Position[c] < min[c] {
				min[c] = v.Position[c]
			}
			if v.Position[c] > max[c] {
				max[c] = v.Position[c]
			}
		}
	}
	return min, max
}
