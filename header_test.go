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

func TestITSFHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := &ITSFHeader{
		Version:         itsfVersion,
		HeaderLength:    itsfHeaderSize,
		Timestamp:       12345,
		LanguageID:      1033,
		DirectoryOffset: itsfHeaderSize + 1,
		DirectoryLength: 64,
	}
	buf := serializeITSFHeader(h)
	if len(buf) != itsfHeaderSize {
		t.Fatalf("serialized length = %d, want %d", len(buf), itsfHeaderSize)
	}

	got, err := parseITSFHeader(newBitReader(buf))
	if err != nil {
		t.Fatalf("parseITSFHeader: %v", err)
	}
	if *got != *h {
		t.Errorf("round trip = %+v, want %+v", *got, *h)
	}
}

func TestITSFHeaderRejectsBadSignature(t *testing.T) {
	t.Parallel()

	buf := make([]byte, itsfHeaderSize)
	copy(buf, "XXXX")
	_, err := parseITSFHeader(newBitReader(buf))
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestITSPHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := &ITSPHeader{
		Version:        itspVersion,
		HeaderLength:   itspHeaderSize,
		ChunkSize:      4096,
		Density:        2,
		Depth:          1,
		RootChunkIndex: 0,
		FirstPMGL:      0,
		LastPMGL:       2,
		NumChunks:      3,
		LanguageID:     1033,
	}
	buf := serializeITSPHeader(h)
	got, err := parseITSPHeader(newBitReader(buf))
	if err != nil {
		t.Fatalf("parseITSPHeader: %v", err)
	}
	if *got != *h {
		t.Errorf("round trip = %+v, want %+v", *got, *h)
	}
}

func TestITSPHeaderRejectsNonPowerOfTwoChunkSize(t *testing.T) {
	t.Parallel()

	h := &ITSPHeader{
		Version:      itspVersion,
		HeaderLength: itspHeaderSize,
		ChunkSize:    100,
		FirstPMGL:    0,
		LastPMGL:     0,
	}
	buf := serializeITSPHeader(h)
	_, err := parseITSPHeader(newBitReader(buf))
	if !errors.Is(err, ErrInvalidHeaderField) {
		t.Fatalf("err = %v, want ErrInvalidHeaderField", err)
	}
}

func TestLZXCHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := &LZXCHeader{
		Version:       lzxcVersion,
		ResetInterval: 0x10000,
		WindowSize:    0x10000,
		CacheSize:     0,
	}
	buf := serializeLZXCHeader(h)
	got, err := parseLZXCHeader(newBitReader(buf))
	if err != nil {
		t.Fatalf("parseLZXCHeader: %v", err)
	}
	if *got != *h {
		t.Errorf("round trip = %+v, want %+v", *got, *h)
	}
}

func TestLZXCHeaderRejectsBadWindowSize(t *testing.T) {
	t.Parallel()

	h := &LZXCHeader{Version: lzxcVersion, ResetInterval: 0x8000, WindowSize: 0x1234}
	buf := serializeLZXCHeader(h)
	_, err := parseLZXCHeader(newBitReader(buf))
	if !errors.Is(err, ErrWindowTooSmall) {
		t.Fatalf("err = %v, want ErrWindowTooSmall", err)
	}
}
