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
	"fmt"
	"io"
)

// Pack writes a CHM archive containing entries to w, compressing their
// concatenated bytes as a single LZX section 1 stream. Every entry is
// stored compressed; there are no section 0 (uncompressed) file entries in
// the archives this library produces, matching §4.7's "pack always targets
// one LZX content stream" design choice.
func Pack(w io.Writer, entries []Entry, opts PackOptions) error {
	windowSize := opts.windowSize()
	if !allowedWindowSizes[windowSize] {
		return wrapErr(ErrWindowTooSmall, 0, "unsupported pack window size")
	}
	resetInterval := opts.resetInterval()
	chunkSize := opts.chunkSize()

	var plain []byte
	dirEntries := make([]DirectoryEntry, 0, len(entries)+2)
	for _, e := range entries {
		dirEntries = append(dirEntries, DirectoryEntry{
			Name:      e.Name,
			SectionID: sectionLZX,
			Offset:    uint64(len(plain)),
			Length:    uint64(len(e.Data)),
		})
		plain = append(plain, e.Data...)
	}

	compressed, blocks, err := encodeSection(plain, windowSize, resetInterval)
	if err != nil {
		return err
	}
	resetTableBytes := serializeResetTable(blocks, uint64(resetInterval), uint64(len(plain)), uint64(len(compressed)))

	// Section 0 holds only the two named control streams; everything else
	// is stored compressed in section 1.
	section0 := append([]byte{}, compressed...)
	contentOffset := uint64(0)
	contentLength := uint64(len(compressed))
	resetTableOffset := uint64(len(section0))
	section0 = append(section0, resetTableBytes...)

	dirEntries = append(dirEntries,
		DirectoryEntry{Name: contentStreamName, SectionID: sectionUncompressed, Offset: contentOffset, Length: contentLength},
		DirectoryEntry{Name: resetTableStreamName, SectionID: sectionUncompressed, Offset: resetTableOffset, Length: uint64(len(resetTableBytes))},
	)

	dirBytes, itsp := serializeDirectory(dirEntries, chunkSize)
	itsp.LanguageID = opts.LanguageID

	directoryOffset := uint64(itsfHeaderSize + itspHeaderSize + lzxcHeaderSize)
	itsf := &ITSFHeader{
		Version:         itsfVersion,
		HeaderLength:    itsfHeaderSize,
		LanguageID:      opts.LanguageID,
		DirectoryOffset: uint32(directoryOffset), //nolint:gosec // bounded by fixed header sizes
		DirectoryLength: uint32(len(dirBytes)),   //nolint:gosec // bounded by entry count limits
	}
	lzxc := &LZXCHeader{
		Version:       lzxcVersion,
		ResetInterval: resetInterval,
		WindowSize:    windowSize,
	}

	if _, err := w.Write(serializeITSFHeader(itsf)); err != nil {
		return fmt.Errorf("chm: write ITSF header: %w", err)
	}
	if _, err := w.Write(serializeITSPHeader(itsp)); err != nil {
		return fmt.Errorf("chm: write ITSP header: %w", err)
	}
	if _, err := w.Write(serializeLZXCHeader(lzxc)); err != nil {
		return fmt.Errorf("chm: write LZXC header: %w", err)
	}
	if _, err := w.Write(dirBytes); err != nil {
		return fmt.Errorf("chm: write directory: %w", err)
	}
	if _, err := w.Write(section0); err != nil {
		return fmt.Errorf("chm: write content section: %w", err)
	}

	return nil
}
