// Copyright (c) 2026 The chm Authors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of chm.
//
// chm is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// chm is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with chm.  If not, see <https://www.gnu.org/licenses/>.

// Package archive provides read access to the ZIP, 7z, and RAR containers
// that cmd/chm pack can pull source files from, plus Walk for plain directory
// trees, when building a CHM archive's entry list for Pack.
package archive

import (
	"io"
	"path/filepath"
	"strings"
)

// FileInfo describes one file inside a container.
type FileInfo struct {
	Name string // full path within the container
	Size int64  // uncompressed size
}

// Source provides read access to files within a container.
type Source interface {
	// List returns every file in the container.
	List() ([]FileInfo, error)

	// Open opens a file within the container for reading, returning the
	// reader and its uncompressed size.
	Open(internalPath string) (io.ReadCloser, int64, error)

	// Close closes the container.
	Close() error
}

// Open opens a container file based on its extension. Supported formats:
// .zip, .7z, .rar.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".zip":
		return OpenZIP(path)
	case ".7z":
		return OpenSevenZip(path)
	case ".rar":
		return OpenRAR(path)
	default:
		return nil, FormatError{Format: ext}
	}
}
