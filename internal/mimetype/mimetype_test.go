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

package mimetype

import (
	"strings"
	"testing"
)

func TestForKnownExtensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"index.hhc", "text/html"},
		{"keywords.hhk", "text/html"},
		{"project.hhp", "text/plain"},
	}
	for _, tt := range tests {
		if got := For(tt.name); got != tt.want {
			t.Errorf("For(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestForFallsBackToStdlibMime checks the non-CHM-specific path without
// pinning an exact charset suffix, since that detail depends on the host's
// mime.types database.
func TestForFallsBackToStdlibMime(t *testing.T) {
	t.Parallel()

	if got := For("page.html"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("For(page.html) = %q, want text/html prefix", got)
	}
	if got := For("style.css"); !strings.HasPrefix(got, "text/css") {
		t.Errorf("For(style.css) = %q, want text/css prefix", got)
	}
}

func TestForUnknownExtensionFallsBackToOctetStream(t *testing.T) {
	t.Parallel()

	if got := For("binary.weirdext"); got != "application/octet-stream" {
		t.Errorf("For(unknown) = %q, want application/octet-stream", got)
	}
}

func TestForIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	if got := For("INDEX.HHC"); got != "text/html" {
		t.Errorf("For(upper-case .HHC) = %q, want text/html", got)
	}
}
