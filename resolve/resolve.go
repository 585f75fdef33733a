// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package resolve implements the asset resolver of spec.md §4.9 (C9):
// given a base model path and an asset class, it tries an ordered list
// of filename patterns against the archive overlay and returns the
// first hit.
package resolve

import (
	"fmt"
	"strings"

	"github.com/scarecr0w12/aowow/archive"
	"github.com/scarecr0w12/aowow/model"
)

// Class is the asset-class policy selector of spec.md §4.9.
type Class int

const (
	Character Class = iota
	Creature
	Object
	Item
)

// ModelDir and Model together name the base model path the way C8's
// base-skin resolution does: `{ModelDir}\{Model}...`.
type Target struct {
	ModelDir  string
	Model     string
	SkinColor int
}

// Resolve tries Class's ordered filename patterns against ov, returning
// the first archive hit (spec.md §4.9). For Item, m (the model's
// texture definitions) is consulted first; a nil m simply skips that
// step and falls through to the creature ordering.
func Resolve(class Class, t Target, ov *archive.Overlay, m *model.Model) ([]byte, string, bool) {
	if class == Item {
		if m != nil {
			for _, def := range m.TextureDefs {
				if def.Type == 0 && def.Name != "" {
					if data, ok := ov.Read(def.Name); ok {
						return data, def.Name, true
					}
				}
			}
		}
		class = Creature
	}

	var candidates []string
	switch class {
	case Character:
		nn := fmt.Sprintf("%02d", t.SkinColor)
		candidates = []string{
			fmt.Sprintf(`%s\%sSkin00_%s.blp`, t.ModelDir, t.Model, nn),
			fmt.Sprintf(`%s\%sSkin%s_00.blp`, t.ModelDir, t.Model, nn),
			fmt.Sprintf(`%s\%s_skin.blp`, t.ModelDir, t.Model),
			fmt.Sprintf(`%s\%s.blp`, t.ModelDir, t.Model),
		}
	case Creature, Object:
		candidates = []string{
			fmt.Sprintf(`%s\%s.blp`, t.ModelDir, t.Model),
			fmt.Sprintf(`%s\%s_skin.blp`, t.ModelDir, t.Model),
			fmt.Sprintf(`%s\%sSkin.blp`, t.ModelDir, t.Model),
			fmt.Sprintf(`%s\%s00.blp`, t.ModelDir, t.Model),
			fmt.Sprintf(`%s\%s_00.blp`, t.ModelDir, t.Model),
		}
	}

	for _, c := range candidates {
		if data, ok := ov.Read(c); ok {
			return data, c, true
		}
	}

	substr := strings.ToLower(fmt.Sprintf(`%s\%sskin`, t.ModelDir, t.Model))
	matches := ov.List(substr)
	var best string
	for _, mch := range matches {
		if !strings.HasSuffix(mch, ".blp") {
			continue
		}
		if best == "" || mch < best {
			best = mch
		}
	}
	if best == "" {
		return nil, "", false
	}
	data, ok := ov.Read(best)
	return data, best, ok
}
