// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package mesh

import (
	"math"
	"testing"

	"github.com/scarecr0w12/aowow/model"
)

func TestAssemble_EmptyTrianglesIsHardFailure(t *testing.T) {
	verts := []model.Vertex{{}}
	if _, err := Assemble(verts, nil); err == nil {
		t.Fatal("expected error for empty triangle list")
	}
}

func TestAssemble_EmptyVerticesIsHardFailure(t *testing.T) {
	if _, err := Assemble(nil, []uint16{0, 1, 2}); err == nil {
		t.Fatal("expected error for empty vertex set")
	}
}

func TestAssemble_AxisConversion(t *testing.T) {
	verts := []model.Vertex{
		{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}},
	}
	m, err := Assemble(verts, []uint16{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [3]float32{1, 3, -2}
	if m.Vertices[0].Position != want {
		t.Fatalf("got %v want %v", m.Vertices[0].Position, want)
	}
}

func TestAssemble_CompactsAndRewritesIndices(t *testing.T) {
	verts := make([]model.Vertex, 10)
	for i := range verts {
		verts[i].Position = [3]float32{float32(i), 0, 0}
	}
	// Only vertices 3, 7 are referenced.
	tris := []uint16{3, 7, 3}
	m, err := Assemble(verts, tris)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Vertices) != 2 {
		t.Fatalf("expected 2 compacted vertices, got %d", len(m.Vertices))
	}
	for _, idx := range m.Triangles {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("triangle index %d out of range of %d vertices", idx, len(m.Vertices))
		}
	}
}

func TestAssemble_UnresolvableIndexRewritesToZero(t *testing.T) {
	verts := []model.Vertex{{Position: [3]float32{1, 1, 1}}}
	// vertex index 5 is referenced but does not exist in the source set.
	tris := []uint16{0, 5}
	m, err := Assemble(verts, tris)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Triangles[1] != 0 {
		t.Fatalf("expected unresolvable index to rewrite to 0, got %d", m.Triangles[1])
	}
}

func TestAssemble_BoundingBoxOrder(t *testing.T) {
	verts := []model.Vertex{
		{Position: [3]float32{-1, 2, -3}},
		{Position: [3]float32{4, -5, 6}},
	}
	m, err := Assemble(verts, []uint16{0, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for c := 0; c < 3; c++ {
		if m.Min[c] > m.Max[c] {
			t.Fatalf("component %d: min %f > max %f", c, m.Min[c], m.Max[c])
		}
	}
}

func TestAssemble_PositionsFinite(t *testing.T) {
	verts := []model.Vertex{{Position: [3]float32{1, 2, 3}}}
	m, err := Assemble(verts, []uint16{0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range m.Vertices {
		for _, c := range v.Position {
			if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
				t.Fatalf("non-finite position component: %v", v.Position)
			}
		}
	}
}
