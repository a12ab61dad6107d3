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
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/litchm/chm/internal/binary"
)

const (
	contentStreamName    = "::DataSpace/Storage/MSCompressed/Content"
	resetTableStreamName = "::DataSpace/Storage/MSCompressed/ControlData/ResetTable"

	headProbeSize = 4096
)

// Archive is the parsed form of a CHM file held in memory: the three fixed
// headers, the entry map, the reset table, and the file offsets at which
// sections 0 and 1 begin. It corresponds to §3's ArchiveView: built during
// Open, immutable and read-only afterward, released on Close.
type Archive struct {
	source io.ReaderAt
	size   int64
	opts   OpenOptions

	itsf *ITSFHeader
	itsp *ITSPHeader
	lzxc *LZXCHeader

	entries    map[string]DirectoryEntry
	resetTable *ResetTable

	section0Base   uint64
	contentOffset1 uint64
	contentLength1 uint64
	compressed     []byte // the section 1 blob, read once at Open

	cache *lru.Cache[uint64, []byte]
}

// Open reads a CHM's headers, directory, and reset table out of source (a
// caller-owned random-access reader of size bytes) and returns a ready
// Archive. Opening multiple archives concurrently is safe; an individual
// Archive is not (§5).
func Open(source io.ReaderAt, size int64, opts OpenOptions) (*Archive, error) {
	a := &Archive{source: source, size: size, opts: opts}
	if err := a.init(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	probeLen := headProbeSize
	if int64(probeLen) > a.size {
		probeLen = int(a.size)
	}
	head, err := binary.ReadBytesAt(a.source, 0, probeLen)
	if err != nil {
		return fmt.Errorf("chm: read header probe: %w", err)
	}

	r := newBitReader(head)
	if a.itsf, err = parseITSFHeader(r); err != nil {
		return err
	}
	if a.itsp, err = parseITSPHeader(r); err != nil {
		return err
	}
	if a.lzxc, err = parseLZXCHeader(r); err != nil {
		return err
	}

	if int64(a.itsf.DirectoryLength) > MaxDirectoryLength {
		return wrapErr(ErrDirectoryCorrupt, int64(a.itsf.DirectoryOffset), "directory length exceeds limit")
	}
	dirBuf, err := binary.ReadBytesAt(a.source, int64(a.itsf.DirectoryOffset), int(a.itsf.DirectoryLength))
	if err != nil {
		return fmt.Errorf("chm: read directory: %w", err)
	}
	if a.entries, err = parseDirectory(dirBuf, a.itsp, a.opts.Strict); err != nil {
		return err
	}

	a.section0Base = uint64(a.itsf.DirectoryOffset) + uint64(a.itsf.DirectoryLength)

	contentEntry, ok := a.entries[contentStreamName]
	if !ok {
		return wrapErr(ErrEntryNotFound, 0, "missing "+contentStreamName)
	}
	resetEntry, ok := a.entries[resetTableStreamName]
	if !ok {
		return wrapErr(ErrEntryNotFound, 0, "missing "+resetTableStreamName)
	}

	a.contentOffset1 = a.section0Base + contentEntry.Offset
	a.contentLength1 = contentEntry.Length
	a.compressed, err = binary.ReadBytesAt(a.source, int64(a.contentOffset1), int(a.contentLength1)) //nolint:gosec // bounded by archive size
	if err != nil {
		return fmt.Errorf("chm: read content section: %w", err)
	}

	resetBuf, err := binary.ReadBytesAt(a.source, int64(a.section0Base+resetEntry.Offset), int(resetEntry.Length)) //nolint:gosec // bounded by archive size
	if err != nil {
		return fmt.Errorf("chm: read reset table: %w", err)
	}
	if a.resetTable, err = parseResetTable(resetBuf); err != nil {
		return err
	}

	cache, err := lru.New[uint64, []byte](a.opts.blockCacheSize())
	if err != nil {
		return fmt.Errorf("chm: create block cache: %w", err)
	}
	a.cache = cache

	return nil
}

// Close releases the Archive's in-memory state. The backing source is owned
// by the caller and is not closed here.
func (a *Archive) Close() error {
	a.compressed = nil
	a.cache.Purge()
	return nil
}

// List returns every stored user-entry name, sorted. The two internal
// control streams (the LZX content blob and its reset table) are never
// user-visible files and are excluded.
func (a *Archive) List() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		if isControlStreamName(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isControlStreamName reports whether name is one of the archive's two
// internal directory entries rather than a packed user file.
func isControlStreamName(name string) bool {
	return name == contentStreamName || name == resetTableStreamName
}

// Stat returns an entry's location and size.
func (a *Archive) Stat(name string) (Stat, error) {
	e, ok := a.lookup(name)
	if !ok {
		return Stat{}, wrapErr(ErrEntryNotFound, 0, name)
	}
	return Stat{Name: e.Name, Length: e.Length, Section: e.SectionID, Offset: e.Offset}, nil
}

// Exists reports whether name is present.
func (a *Archive) Exists(name string) bool {
	_, ok := a.lookup(name)
	return ok
}

// Info summarizes the open archive's header fields.
func (a *Archive) Info() Info {
	return Info{
		WindowSize:    a.lzxc.WindowSize,
		ResetInterval: a.lzxc.ResetInterval,
		ChunkSize:     a.itsp.ChunkSize,
		EntryCount:    len(a.entries) - 2, // excludes the content and reset-table control streams
		LanguageID:    a.itsf.LanguageID,
	}
}

// lookup implements §4.5's facade-level fallback policy: exact match first,
// then (if NormalizedLookup is set) a normalized-path retry and a
// case-insensitive scan.
func (a *Archive) lookup(name string) (DirectoryEntry, bool) {
	if isControlStreamName(name) {
		return DirectoryEntry{}, false
	}
	if e, ok := a.entries[name]; ok {
		return e, true
	}
	if !a.opts.NormalizedLookup {
		return DirectoryEntry{}, false
	}

	norm := normalizeEntryPath(name)
	if e, ok := a.entries[norm]; ok {
		return e, true
	}
	for stored, e := range a.entries {
		if strings.EqualFold(stored, name) || strings.EqualFold(stored, norm) {
			return e, true
		}
	}
	return DirectoryEntry{}, false
}

func normalizeEntryPath(name string) string {
	p := strings.ReplaceAll(name, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Extract returns name's decoded contents in full.
func (a *Archive) Extract(name string) ([]byte, error) {
	e, ok := a.lookup(name)
	if !ok {
		return nil, wrapErr(ErrEntryNotFound, 0, name)
	}
	return a.ExtractRange(e.Name, 0, int64(e.Length))
}

// ExtractRange returns length bytes of name's decoded contents starting at
// off.
func (a *Archive) ExtractRange(name string, off, length int64) ([]byte, error) {
	e, ok := a.lookup(name)
	if !ok {
		return nil, wrapErr(ErrEntryNotFound, 0, name)
	}
	if off < 0 || length < 0 || uint64(off+length) > e.Length { //nolint:gosec // guarded by the length check above
		return nil, wrapErr(ErrInvalidHeaderField, 0, "range exceeds entry length")
	}

	start := e.Offset + uint64(off) //nolint:gosec // validated above
	switch e.SectionID {
	case sectionUncompressed:
		buf := make([]byte, length)
		if _, err := a.source.ReadAt(buf, int64(a.section0Base+start)); err != nil { //nolint:gosec // bounded by archive size
			return nil, fmt.Errorf("chm: read uncompressed entry: %w", err)
		}
		return buf, nil
	case sectionLZX:
		return a.extractCompressed(start, uint64(length)) //nolint:gosec // validated above
	default:
		return nil, wrapErr(ErrInvalidHeaderField, 0, "unknown section id")
	}
}

// extractCompressed decodes [start, start+length) of the section 1
// uncompressed stream, walking across as many reset-interval blocks as
// needed and caching each block's fully decoded bytes for reuse by
// subsequent calls (the facade's LRU cache; the decoder itself never
// memoizes, per §5's resource policy).
func (a *Archive) extractCompressed(start, length uint64) ([]byte, error) {
	out := make([]byte, 0, length)
	for length > 0 {
		block, end := a.resetTable.blockRange(start)
		buf, err := a.decodedBlock(block, end)
		if err != nil {
			return nil, err
		}
		localOff := start - block.UncompressedOffset
		if localOff > uint64(len(buf)) {
			return nil, wrapErr(ErrTruncatedBlock, 0, "decoded block shorter than expected")
		}
		avail := uint64(len(buf)) - localOff
		take := length
		if take > avail {
			take = avail
		}
		out = append(out, buf[localOff:localOff+take]...)
		start += take
		length -= take
	}
	return out, nil
}

func (a *Archive) decodedBlock(block ResetTableBlock, end uint64) ([]byte, error) {
	if buf, ok := a.cache.Get(block.UncompressedOffset); ok {
		return buf, nil
	}
	blockLen := end - block.UncompressedOffset
	buf, err := decodeRange(a.compressed, int(block.CompressedOffset)*8, a.lzxc.WindowSize, a.lzxc.ResetInterval, 0, int(blockLen)) //nolint:gosec // bounded by reset interval
	if err != nil {
		return nil, err
	}
	a.cache.Add(block.UncompressedOffset, buf)
	return buf, nil
}

// blockRange returns the reset-table entry covering target and the
// uncompressed-stream offset where its coverage ends (the next entry's
// start, or the section's total length for the last entry).
func (t *ResetTable) blockRange(target uint64) (ResetTableBlock, uint64) {
	for i, b := range t.Blocks {
		if b.UncompressedOffset > target {
			break
		}
		if i == len(t.Blocks)-1 {
			return b, t.TotalUncompressedLen
		}
		if t.Blocks[i+1].UncompressedOffset > target {
			return b, t.Blocks[i+1].UncompressedOffset
		}
	}
	return t.Blocks[0], t.TotalUncompressedLen
}
