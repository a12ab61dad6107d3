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
	"errors"
	"testing"
)

func TestOpenRejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := Open("/tmp/archive.tar.gz")
	var fe FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want FormatError", err)
	}
	if fe.Format != ".gz" {
		t.Errorf("FormatError.Format = %q, want %q", fe.Format, ".gz")
	}
}

func TestFormatErrorMessage(t *testing.T) {
	t.Parallel()

	withoutReason := FormatError{Format: ".foo"}
	if got, want := withoutReason.Error(), "unsupported archive format: .foo"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withReason := FormatError{Format: ".foo", Reason: "corrupt central directory"}
	if got, want := withReason.Error(), "unsupported archive format .foo: corrupt central directory"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFileNotFoundErrorMessage(t *testing.T) {
	t.Parallel()

	err := FileNotFoundError{Archive: "help.zip", InternalPath: "docs/index.html"}
	want := `file "docs/index.html" not found in archive "help.zip"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
