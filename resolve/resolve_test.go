// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package resolve

import (
	"testing"

	"github.com/scarecr0w12/aowow/archive"
	"github.com/scarecr0w12/aowow/model"
)

type fakeReader struct {
	files map[string][]byte
}

type fakeHandle struct{}

func (f *fakeReader) Open(path string) (archive.Handle, error) { return &fakeHandle{}, nil }
func (f *fakeReader) Files(h archive.Handle) []string {
	names := make([]string, 0, len(f.files))
	for n := range f.files {
		names = append(names, n)
	}
	return names
}
func (f *fakeReader) Read(h archive.Handle, name string) ([]byte, error) {
	data, ok := f.files[name]
	if !ok {
		return nil, errNotFound(name)
	}
	return data, nil
}
func (f *fakeReader) Close(h archive.Handle) error { return nil }

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

func TestResolve_Creature_DirectHit(t *testing.T) {
	reader := &fakeReader{files: map[string][]byte{
		`Creature\Murloc\Murloc.blp`: []byte("x"),
	}}
	ov := archive.NewOverlay(reader, "", []string{"a.mpq"})

	data, path, ok := Resolve(Creature, Target{ModelDir: `Creature\Murloc`, Model: "Murloc"}, ov, nil)
	if !ok || string(data) != "x" || path != `Creature\Murloc\Murloc.blp` {
		t.Fatalf("expected direct hit, got ok=%v path=%q", ok, path)
	}
}

func TestResolve_Item_PrefersEmbeddedTexture(t *testing.T) {
	reader := &fakeReader{files: map[string][]byte{
		`Item\ObjectComponents\Weapon\Sword.blp`: []byte("embedded"),
	}}
	ov := archive.NewOverlay(reader, "", []string{"a.mpq"})
	m := &model.Model{TextureDefs: []model.TextureDefinition{
		{Type: 1, Name: ""},
		{Type: 0, Name: `Item\ObjectComponents\Weapon\Sword.blp`},
	}}

	data, _, ok := Resolve(Item, Target{}, ov, m)
	if !ok || string(data) != "embedded" {
		t.Fatalf("expected embedded texture to win, got ok=%v data=%q", ok, data)
	}
}

func TestResolve_Item_FallsBackToCreatureOrdering(t *testing.T) {
	reader := &fakeReader{files: map[string][]byte{
		`Item\Sword.blp`: []byte("fallback"),
	}}
	ov := archive.NewOverlay(reader, "", []string{"a.mpq"})
	m := &model.Model{TextureDefs: []model.TextureDefinition{{Type: 1, Name: ""}}}

	data, _, ok := Resolve(Item, Target{ModelDir: "Item", Model: "Sword"}, ov, m)
	if !ok || string(data) != "fallback" {
		t.Fatalf("expected creature-ordering fallback, got ok=%v", ok)
	}
}

func TestResolve_SubstringFallback(t *testing.T) {
	reader := &fakeReader{files: map[string][]byte{
		`Character\Human\HumanSkin01.blp`: []byte("skin"),
	}}
	ov := archive.NewOverlay(reader, "", []string{"a.mpq"})

	data, _, ok := Resolve(Character, Target{ModelDir: `Character\Human`, Model: "Human", SkinColor: 0}, ov, nil)
	if !ok || string(data) != "skin" {
		t.Fatalf("expected substring-search fallback to hit, got ok=%v", ok)
	}
}

func TestResolve_NoMatchReturnsFalse(t *testing.T) {
	reader := &fakeReader{files: map[string][]byte{}}
	ov := archive.NewOverlay(reader, "", nil)
	_, _, ok := Resolve(Creature, Target{ModelDir: "X", Model: "Y"}, ov, nil)
	if ok {
		t.Fatal("expected no match")
	}
}
