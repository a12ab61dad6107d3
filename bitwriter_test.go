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

package chm

import (
	"bytes"
	"testing"
)

func TestBitWriterMatchesBitReader(t *testing.T) {
	t.Parallel()

	w := &bitWriter{}
	w.writeBits(0b101, 3)
	w.writeBits(0b11001, 5)
	w.writeBits(0b0, 8)

	r := newBitReader(w.bytes())
	if v, err := r.readBits(3); err != nil || v != 0b101 {
		t.Fatalf("readBits(3) = %v, %v", v, err)
	}
	if v, err := r.readBits(5); err != nil || v != 0b11001 {
		t.Fatalf("readBits(5) = %v, %v", v, err)
	}
	if v, err := r.readBits(8); err != nil || v != 0 {
		t.Fatalf("readBits(8) = %v, %v", v, err)
	}
}

func TestBitWriterAlignPads(t *testing.T) {
	t.Parallel()

	w := &bitWriter{}
	w.writeBits(0b1, 1)
	w.align()
	if len(w.buf) != 1 {
		t.Fatalf("len(buf) after align = %d, want 1", len(w.buf))
	}
	if w.buf[0] != 0x80 {
		t.Fatalf("buf[0] = %#x, want 0x80", w.buf[0])
	}
}

func TestBitWriterWriteBytesAligns(t *testing.T) {
	t.Parallel()

	w := &bitWriter{}
	w.writeBits(0b1, 1)
	w.writeBytes([]byte{0xAA, 0xBB})

	want := []byte{0x80, 0xAA, 0xBB}
	if !bytes.Equal(w.bytes(), want) {
		t.Fatalf("bytes() = % x, want % x", w.bytes(), want)
	}
}
