// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package archive implements the layered game-archive reader of
// spec.md §4.1 (C1): it opens an ordered list of archives and presents
// them as a single case-insensitive virtual filesystem, with earlier
// archives in the list taking priority over later ones.
//
// Adapted from load/locator.go's Locator, which resolved a single
// zip-backed resource bundle by directory convention. Generalized here
// to N archives with an explicit priority order and a normalized path
// index, per spec.md §3's Virtual Path / Archive Entry data model.
package archive

import (
	"log/slog"
	"path"
	"strings"
	"sync"
)

// Reader is the minimal third-party archive-reading contract spec.md §6
// requires: open a file, list its member names, read one member's bytes.
// archive.ZipReader is the concrete implementation this module ships;
// any format with an equivalent capability set (MPQ, a game's bespoke
// container, ...) can satisfy this interface instead.
type Reader interface {
	// Open opens the archive at path, returning an opaque handle.
	Open(path string) (Handle, error)
	// Files lists every member name the archive contains, in the
	// archive's own original casing.
	Files(h Handle) []string
	// Read returns the raw bytes of the named member.
	Read(h Handle, name string) ([]byte, error)
	// Close releases any resources held by the handle.
	Close(h Handle) error
}

// Handle is an opaque per-archive handle returned by Reader.Open.
type Handle interface{}

// entry records where a normalized path key was found: which archive
// (by dense index into Overlay.archives) and the original-cased path
// to pass back to that archive's Reader.
type entry struct {
	archiveID int
	original  string
}

// Overlay presents an ordered set of archives as one virtual,
// case-insensitive filesystem (spec.md §4.1). Build once; safe for
// concurrent reads afterwards (spec.md §5) since the index never
// mutates post-construction.
type Overlay struct {
	reader  Reader
	handles []Handle // dense, index == archiveID
	names   []string // archive path used to open handles[i], for diagnostics
	index   map[string]entry
	readMu  []*sync.Mutex // per-archive read lock; reads are not assumed reentrant
}

// NewOverlay opens every archive named in dir+files, in the given
// order, and builds the priority index. files MUST be supplied
// highest-priority-first (spec.md §9, Open Question 1): the index keeps
// "first writer wins", so the first archive in the list that defines a
// given virtual path is the one served for that path.
//
// An archive file that fails to open is logged and skipped (spec.md §7,
// archive-level errors are never fatal at this layer).
func NewOverlay(reader Reader, dir string, files []string) *Overlay {
	ov := &Overlay{reader: reader, index: map[string]entry{}}
	for _, name := range files {
		full := path.Join(dir, name)
		h, err := reader.Open(full)
		if err != nil {
			slog.Warn("archive: skipping archive that failed to open", "archive", full, "err", err)
			continue
		}
		id := len(ov.handles)
		ov.handles = append(ov.handles, h)
		ov.names = append(ov.names, full)
		ov.readMu = append(ov.readMu, &sync.Mutex{})

		for _, orig := range reader.Files(h) {
			key := normalize(orig)
			if _, exists := ov.index[key]; exists {
				continue // first writer wins: a higher-priority archive already claimed this path.
			}
			ov.index[key] = entry{archiveID: id, original: orig}
		}
	}
	return ov
}

// normalize implements the Virtual Path equality rule of spec.md §3:
// lowercase, with '/' rewritten to '\\'.
func normalize(p string) string {
	p = strings.ToLower(p)
	return strings.ReplaceAll(p, "/", `\`)
}

// Archives returns the opened archive paths in priority order, for
// driver-side diagnostics only; no core decode path depends on it.
func (ov *Overlay) Archives() []string {
	out := make([]string, len(ov.names))
	copy(out, ov.names)
	return out
}

// Read looks up path in the virtual index and returns the owning
// archive's bytes for it. A missing path returns ok=false rather than
// an error, matching spec.md §4.1's "returns a missing-file signal; it
// never panics".
func (ov *Overlay) Read(vpath string) (data []byte, ok bool) {
	e, found := ov.index[normalize(vpath)]
	if !found {
		return nil, false
	}
	mu := ov.readMu[e.archiveID]
	mu.Lock()
	defer mu.Unlock()
	data, err := ov.reader.Read(ov.handles[e.archiveID], e.original)
	if err != nil {
		slog.Warn("archive: read failed for indexed path", "path", vpath, "err", err)
		return nil, false
	}
	return data, true
}

// List returns the original-cased paths whose normalized key contains
// substr (case-insensitive), per spec.md §4.1's list operation.
func (ov *Overlay) List(substr string) []string {
	needle := normalize(substr)
	var out []string
	for key, e := range ov.index {
		if strings.Contains(key, needle) {
			out = append(out, e.original)
		}
	}
	return out
}

// Close releases every opened archive handle.
func (ov *Overlay) Close() {
	for _, h := range ov.handles {
		if err := ov.reader.Close(h); err != nil {
			slog.Warn("archive: close failed", "err", err)
		}
	}
}
