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
	"encoding/binary"
	"sort"
)

const (
	chunkHeaderSize = 20 // signature + free-space-at-end + unknown + prev + next

	sectionUncompressed = 0
	sectionLZX          = 1
)

var (
	pmglSignature = [4]byte{'P', 'M', 'G', 'L'}
	pmgiSignature = [4]byte{'P', 'M', 'G', 'I'}
)

// DirectoryEntry is one record in a CHM's name->location map.
type DirectoryEntry struct {
	Name      string
	SectionID int
	Offset    uint64
	Length    uint64
}

// parseDirectory reads the chunk range described by itsf/itsp out of raw,
// a buffer holding exactly itsf.DirectoryLength bytes starting at
// itsf.DirectoryOffset. PMGI chunks are skipped: per §4.5 they are
// redundant for sequential enumeration, which is the only access pattern
// the directory codec needs to support.
func parseDirectory(raw []byte, itsp *ITSPHeader, strict bool) (map[string]DirectoryEntry, error) {
	chunkSize := int(itsp.ChunkSize)
	if chunkSize <= 0 {
		return nil, wrapErr(ErrDirectoryCorrupt, 0, "zero chunk size")
	}

	entries := make(map[string]DirectoryEntry)
	numChunks := len(raw) / chunkSize
	if max := int(itsp.LastPMGL) + 1; max > 0 && max < numChunks {
		numChunks = max
	}

	for i := 0; i < numChunks; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(raw) {
			return nil, wrapErr(ErrDirectoryCorrupt, int64(start), "chunk extends past directory region")
		}
		chunk := raw[start:end]

		switch {
		case bytesEqual4(chunk[0:4], pmglSignature[:]):
			if err := parsePMGL(chunk, chunkSize, strict, entries); err != nil {
				return nil, err
			}
		case bytesEqual4(chunk[0:4], pmgiSignature[:]):
			// Index chunk: redundant for sequential enumeration, skipped.
			continue
		default:
			return nil, wrapErr(ErrDirectoryCorrupt, int64(start), "unrecognized chunk signature")
		}

		if len(entries) > MaxEntryCount {
			return nil, wrapErr(ErrDirectoryCorrupt, int64(start), "too many directory entries")
		}
	}

	return entries, nil
}

func parsePMGL(chunk []byte, chunkSize int, strict bool, out map[string]DirectoryEntry) error {
	freeSpace := binary.LittleEndian.Uint32(chunk[4:8])
	if int(freeSpace) > chunkSize-chunkHeaderSize {
		return wrapErr(ErrDirectoryCorrupt, 0, "free space at end exceeds chunk capacity")
	}
	payloadEnd := chunkSize - int(freeSpace)

	r := newBitReader(chunk[chunkHeaderSize:payloadEnd])
	var lastName string
	for r.remainingBits() > 0 {
		nameLen, err := readENCINT(r)
		if err != nil {
			return err
		}
		nameBytes, err := r.readBytes(int(nameLen))
		if err != nil {
			return wrapErr(ErrDirectoryCorrupt, int64(r.bytePos()), "truncated entry name")
		}
		name := string(nameBytes)

		sectionID, err := readENCINT(r)
		if err != nil {
			return err
		}
		offset, err := readENCINT(r)
		if err != nil {
			return err
		}
		length, err := readENCINT(r)
		if err != nil {
			return err
		}

		if strict && lastName != "" && name < lastName {
			return wrapErr(ErrDirectoryUnsorted, int64(r.bytePos()), "entry "+name+" out of order")
		}
		lastName = name

		out[name] = DirectoryEntry{
			Name:      name,
			SectionID: int(sectionID),
			Offset:    offset,
			Length:    length,
		}
	}
	return nil
}

// serializeDirectory packs entries (which need not arrive pre-sorted; this
// function sorts a copy) into chunkSize PMGL pages. Depth is kept at 1: no
// PMGI index layer is emitted, since §4.5 already treats PMGI as optional
// for sequential enumeration and a flat leaf scan covers every archive size
// this library targets.
func serializeDirectory(entries []DirectoryEntry, chunkSize uint32) ([]byte, *ITSPHeader) {
	sorted := make([]DirectoryEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var chunks [][]byte
	var cur []byte
	flush := func() {
		if cur != nil || len(chunks) == 0 {
			chunks = append(chunks, cur)
		}
		cur = nil
	}

	capacity := int(chunkSize) - chunkHeaderSize
	var body []byte
	for _, e := range sorted {
		entryBytes := encodeEntry(e)
		if len(body)+len(entryBytes) > capacity && len(body) > 0 {
			cur = body
			flush()
			body = nil
		}
		body = append(body, entryBytes...)
	}
	cur = body
	flush()
	if len(chunks) == 0 {
		chunks = append(chunks, []byte{})
	}

	var out bytes.Buffer
	for i, body := range chunks {
		out.Write(serializePMGLChunk(body, chunkSize, i, len(chunks)))
	}

	itsp := &ITSPHeader{
		Version:        itspVersion,
		HeaderLength:   itspHeaderSize,
		ChunkSize:      chunkSize,
		Density:        2,
		Depth:          1,
		RootChunkIndex: 0,
		FirstPMGL:      0,
		LastPMGL:       uint32(len(chunks) - 1),
		NumChunks:      uint32(len(chunks)),
	}
	return out.Bytes(), itsp
}

func encodeEntry(e DirectoryEntry) []byte {
	var buf []byte
	buf = appendENCINT(buf, uint64(len(e.Name)))
	buf = append(buf, e.Name...)
	buf = appendENCINT(buf, uint64(e.SectionID))
	buf = appendENCINT(buf, e.Offset)
	buf = appendENCINT(buf, e.Length)
	return buf
}

func serializePMGLChunk(body []byte, chunkSize uint32, index, numChunks int) []byte {
	chunk := make([]byte, chunkSize)
	copy(chunk[0:4], pmglSignature[:])
	freeSpace := int(chunkSize) - chunkHeaderSize - len(body)
	binary.LittleEndian.PutUint32(chunk[4:8], uint32(freeSpace)) //nolint:gosec // bounded by chunkSize
	binary.LittleEndian.PutUint32(chunk[8:12], 0)                // unknown

	prev := uint32(0xffffffff)
	if index > 0 {
		prev = uint32(index - 1) //nolint:gosec // bounded by chunk count
	}
	next := uint32(0xffffffff)
	if index < numChunks-1 {
		next = uint32(index + 1) //nolint:gosec // bounded by chunk count
	}
	binary.LittleEndian.PutUint32(chunk[12:16], prev)
	binary.LittleEndian.PutUint32(chunk[16:20], next)

	copy(chunk[chunkHeaderSize:], body)
	return chunk
}
