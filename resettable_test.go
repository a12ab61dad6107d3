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

func TestResetTableRoundTrip(t *testing.T) {
	t.Parallel()

	blocks := []ResetTableBlock{
		{CompressedOffset: 0, UncompressedOffset: 0},
		{CompressedOffset: 1000, UncompressedOffset: 0x10000},
		{CompressedOffset: 2100, UncompressedOffset: 0x20000},
	}
	raw := serializeResetTable(blocks, 0x10000, 0x28000, 3200)

	got, err := parseResetTable(raw)
	if err != nil {
		t.Fatalf("parseResetTable: %v", err)
	}
	if got.BlockCount != uint32(len(blocks)) {
		t.Errorf("BlockCount = %d, want %d", got.BlockCount, len(blocks))
	}
	if got.TotalUncompressedLen != 0x28000 {
		t.Errorf("TotalUncompressedLen = %d, want %d", got.TotalUncompressedLen, 0x28000)
	}
	for i, want := range blocks {
		if got.Blocks[i] != want {
			t.Errorf("Blocks[%d] = %+v, want %+v", i, got.Blocks[i], want)
		}
	}
}

func TestResetTableRejectsNonMonotonic(t *testing.T) {
	t.Parallel()

	blocks := []ResetTableBlock{
		{CompressedOffset: 0, UncompressedOffset: 0},
		{CompressedOffset: 500, UncompressedOffset: 0x10000},
		{CompressedOffset: 400, UncompressedOffset: 0x20000}, // compressed offset goes backward
	}
	raw := serializeResetTable(blocks, 0x10000, 0x28000, 400)

	if _, err := parseResetTable(raw); !errors.Is(err, ErrResetTableCorrupt) {
		t.Fatalf("err = %v, want ErrResetTableCorrupt", err)
	}
}

func TestResetTableRejectsLastEntryPastTotals(t *testing.T) {
	t.Parallel()

	blocks := []ResetTableBlock{
		{CompressedOffset: 0, UncompressedOffset: 0},
		{CompressedOffset: 1000, UncompressedOffset: 0x10000},
	}
	// Declared totals are smaller than the last block's own offsets.
	raw := serializeResetTable(blocks, 0x10000, 0x8000, 500)

	if _, err := parseResetTable(raw); !errors.Is(err, ErrResetTableCorrupt) {
		t.Fatalf("err = %v, want ErrResetTableCorrupt", err)
	}
}

func TestFindBlockPicksGreatestNotExceeding(t *testing.T) {
	t.Parallel()

	tbl := &ResetTable{Blocks: []ResetTableBlock{
		{CompressedOffset: 0, UncompressedOffset: 0},
		{CompressedOffset: 100, UncompressedOffset: 1000},
		{CompressedOffset: 200, UncompressedOffset: 2000},
	}}

	tests := []struct {
		target uint64
		want   uint64 // expected UncompressedOffset of the chosen block
	}{
		{0, 0},
		{500, 0},
		{1000, 1000},
		{1999, 1000},
		{2500, 2000},
	}
	for _, tt := range tests {
		got := tbl.findBlock(tt.target)
		if got.UncompressedOffset != tt.want {
			t.Errorf("findBlock(%d).UncompressedOffset = %d, want %d", tt.target, got.UncompressedOffset, tt.want)
		}
	}
}
