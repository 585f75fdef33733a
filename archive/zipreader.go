// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package archive

import (
	"archive/zip"
	"fmt"
	"io"
)

// ZipReader implements Reader over the standard library's zip format.
// Adapted directly from load/locator.go, which already opened
// *zip.ReadCloser instances to serve packaged engine resources; here the
// same opened-reader-as-handle pattern serves N archives instead of one.
type ZipReader struct{}

// zipHandle wraps an open zip archive as an opaque Handle.
type zipHandle struct {
	rc *zip.ReadCloser
}

// Open opens the zip file at path.
func (ZipReader) Open(path string) (Handle, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	return &zipHandle{rc: rc}, nil
}

// Files lists every member name in its original casing.
func (ZipReader) Files(h Handle) []string {
	zh := h.(*zipHandle)
	names := make([]string, 0, len(zh.rc.File))
	for _, f := range zh.rc.File {
		names = append(names, f.Name)
	}
	return names
}

// Read returns the raw bytes of the named member.
func (ZipReader) Read(h Handle, name string) ([]byte, error) {
	zh := h.(*zipHandle)
	for _, f := range zh.rc.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("archive: open member %s: %w", name, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("archive: read member %s: %w", name, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("archive: member not found: %s", name)
}

// Close releases the underlying zip reader.
func (ZipReader) Close(h Handle) error {
	zh := h.(*zipHandle)
	return zh.rc.Close()
}
