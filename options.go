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

const (
	defaultWindowSize    = 0x10000 // 64 KiB
	defaultResetInterval = 0x10000
	defaultChunkSize     = 4096
	defaultBlockCache    = 16
)

// OpenOptions configures Open. The zero value does exact-name lookup only
// (no normalized-path or case-insensitive fallback), skips directory-sort
// verification, and uses the default block cache size.
type OpenOptions struct {
	// Strict enables directory-sort verification (DirectoryUnsorted). Reset
	// table invariants are checked whether or not Strict is set.
	Strict bool

	// NormalizedLookup enables the facade-level fallback lookup policy of
	// §4.5: leading "/" insertion, backslash folding, and collapsing
	// repeated separators before falling back to a case-insensitive scan.
	NormalizedLookup bool

	// BlockCacheSize bounds the number of decoded reset-interval blocks kept
	// in the LRU cache (0 uses defaultBlockCache).
	BlockCacheSize int
}

// PackOptions configures Pack.
type PackOptions struct {
	// WindowSize is the LZX sliding window size, a power of two from 32 KiB
	// to 2 MiB (0 uses defaultWindowSize).
	WindowSize uint32

	// ResetInterval is the number of uncompressed bytes between LZX reset
	// points (0 uses defaultResetInterval). Must be a positive multiple of
	// 0x8000.
	ResetInterval uint32

	// ChunkSize is the PMGL directory page size in bytes (0 uses
	// defaultChunkSize).
	ChunkSize uint32

	// LanguageID is stamped into the ITSF/ITSP headers verbatim.
	LanguageID uint32
}

// Entry is one file to be packed: Name is its stored path (forward-slash
// separated), Data its raw uncompressed bytes.
type Entry struct {
	Name string
	Data []byte
}

// Stat describes one archive entry's location and size.
type Stat struct {
	Name    string
	Length  uint64
	Section int
	Offset  uint64
}

// Info summarizes an open archive's header fields.
type Info struct {
	WindowSize    uint32
	ResetInterval uint32
	ChunkSize     uint32
	EntryCount    int
	LanguageID    uint32
}

func (o OpenOptions) blockCacheSize() int {
	if o.BlockCacheSize > 0 {
		return o.BlockCacheSize
	}
	return defaultBlockCache
}

func (o PackOptions) windowSize() uint32 {
	if o.WindowSize != 0 {
		return o.WindowSize
	}
	return defaultWindowSize
}

func (o PackOptions) resetInterval() uint32 {
	if o.ResetInterval != 0 {
		return o.ResetInterval
	}
	return defaultResetInterval
}

func (o PackOptions) chunkSize() uint32 {
	if o.ChunkSize != 0 {
		return o.ChunkSize
	}
	return defaultChunkSize
}
