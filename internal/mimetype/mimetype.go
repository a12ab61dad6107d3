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

// Package mimetype maps stored archive paths to a content type, for the
// CLI's stat output.
package mimetype

import (
	"mime"
	"path/filepath"
	"strings"
)

// chmTypes fills in the handful of CHM-specific extensions mime's built-in
// table doesn't know about.
var chmTypes = map[string]string{
	".hhc": "text/html",
	".hhk": "text/html",
	".hhp": "text/plain",
}

// For looks up name's content type by extension, falling back to
// application/octet-stream when unknown.
func For(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := chmTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}
