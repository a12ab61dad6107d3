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

func TestENCINTEncodeKnownValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		v    uint64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"single byte max", 0x7f, []byte{0x7f}},
		{"two byte min", 0x80, []byte{0x81, 0x00}},
		{"two byte", 0x3fff, []byte{0xff, 0x7f}},
		{"three byte min", 0x4000, []byte{0x81, 0x80, 0x00}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := appendENCINT(nil, tt.v)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("appendENCINT(%d) = % x, want % x", tt.v, got, tt.want)
			}
		})
	}
}

func TestENCINTRoundTrip(t *testing.T) {
	t.Parallel()

	values := []uint64{0, 1, 127, 128, 255, 16384, 1 << 20, 1 << 35, 1<<63 - 1}
	for _, v := range values {
		v := v
		buf := appendENCINT(nil, v)
		r := newBitReader(buf)
		got, err := readENCINT(r)
		if err != nil {
			t.Fatalf("readENCINT(%d) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d got %d", v, got)
		}
		if r.remainingBits() != 0 {
			t.Errorf("value %d left %d bits unread", v, r.remainingBits())
		}
	}
}

func TestENCINTTruncated(t *testing.T) {
	t.Parallel()

	// A continuation byte with nothing following.
	r := newBitReader([]byte{0x80})
	if _, err := readENCINT(r); err == nil {
		t.Fatal("readENCINT on truncated input: want error, got nil")
	}
}

func TestENCINTTooLong(t *testing.T) {
	t.Parallel()

	// Ten continuation bytes is one past the 9-byte ceiling.
	r := newBitReader(bytes.Repeat([]byte{0x80}, 10))
	if _, err := readENCINT(r); err == nil {
		t.Fatal("readENCINT over 9 bytes: want error, got nil")
	}
}
