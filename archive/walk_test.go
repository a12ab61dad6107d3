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

package archive

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
)

func TestWalkCollectsFilesSortedByName(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	files := map[string][]byte{
		"/src/index.html":      []byte("<html></html>"),
		"/src/images/logo.png": {0x89, 0x50, 0x4e, 0x47},
		"/src/css/style.css":   []byte("body{}"),
	}
	for path, data := range files {
		if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}

	entries, err := Walk(fsys, "/src")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != len(files) {
		t.Fatalf("Walk returned %d entries, want %d", len(entries), len(files))
	}

	for i := 1; i < len(entries); i++ {
		if entries[i].Name < entries[i-1].Name {
			t.Fatalf("entries not sorted: %q before %q", entries[i-1].Name, entries[i].Name)
		}
	}

	want := map[string][]byte{
		"index.html":       files["/src/index.html"],
		"images/logo.png":  files["/src/images/logo.png"],
		"css/style.css":    files["/src/css/style.css"],
	}
	for _, e := range entries {
		data, ok := want[e.Name]
		if !ok {
			t.Fatalf("unexpected entry name %q", e.Name)
		}
		if !bytes.Equal(e.Data, data) {
			t.Errorf("entry %q data mismatch", e.Name)
		}
	}
}

func TestWalkEmptyDirectory(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/empty", 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	entries, err := Walk(fsys, "/empty")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Walk of empty directory returned %d entries, want 0", len(entries))
	}
}
