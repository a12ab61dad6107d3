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
	"errors"
	"testing"
)

func TestBuildHuffmanTableRejectsIncompleteTree(t *testing.T) {
	t.Parallel()

	// Two symbols of length 1 would be complete; length 2 each leaves the
	// tree half empty.
	_, err := buildHuffmanTable([]int{2, 2})
	if !errors.Is(err, ErrInvalidHuffman) {
		t.Fatalf("err = %v, want ErrInvalidHuffman", err)
	}
}

func TestBuildHuffmanTableAcceptsCompleteTree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lens []int
	}{
		{"single bit pair", []int{1, 1}},
		{"three symbols", []int{1, 2, 2}},
		{"four equal lengths", []int{2, 2, 2, 2}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := buildHuffmanTable(tt.lens); err != nil {
				t.Fatalf("buildHuffmanTable(%v): %v", tt.lens, err)
			}
		})
	}
}

func TestHuffmanDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	lens := []int{2, 2, 2, 2}
	table, err := buildHuffmanTable(lens)
	if err != nil {
		t.Fatalf("buildHuffmanTable: %v", err)
	}

	w := &bitWriter{}
	for sym := range lens {
		w.writeBits(uint32(table.codes[sym]), table.lengths[sym])
	}

	r := newBitReader(w.bytes())
	for sym := range lens {
		got, err := table.decode(r)
		if err != nil {
			t.Fatalf("decode symbol %d: %v", sym, err)
		}
		if got != sym {
			t.Errorf("decode = %d, want %d", got, sym)
		}
	}
}

func TestHuffmanDecodeEmptyTable(t *testing.T) {
	t.Parallel()

	table, err := buildHuffmanTable([]int{0, 0, 0})
	if err != nil {
		t.Fatalf("buildHuffmanTable: %v", err)
	}
	r := newBitReader([]byte{0xff})
	if _, err := table.decode(r); err == nil {
		t.Fatal("decode on empty table: want error, got nil")
	}
}
