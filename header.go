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

import "encoding/binary"

// Fixed header sizes, per §3 of the format (ITSF, ITSP, LZXC).
const (
	itsfHeaderSize = 96
	itspHeaderSize = 84
	lzxcHeaderSize = 40

	itsfVersion = 3
	itspVersion = 1
	lzxcVersion = 2
)

var (
	itsfSignature = [4]byte{'I', 'T', 'S', 'F'}
	itspSignature = [4]byte{'I', 'T', 'S', 'P'}
	lzxcSignature = [4]byte{'L', 'Z', 'X', 'C'}
)

// ITSFHeader is the 96-byte record opening a CHM file.
type ITSFHeader struct {
	Version         uint32
	HeaderLength    uint32
	Timestamp       uint32
	LanguageID      uint32
	DirectoryOffset uint32
	DirectoryLength uint32
}

func parseITSFHeader(r *bitReader) (*ITSFHeader, error) {
	sig, err := r.readBytes(4)
	if err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF signature")
	}
	if !bytesEqual4(sig, itsfSignature[:]) {
		return nil, wrapErr(ErrBadSignature, int64(r.bytePos()), "expected ITSF, got "+string(sig))
	}

	h := &ITSFHeader{}
	if h.Version, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF version")
	}
	if h.Version != itsfVersion {
		return nil, wrapErr(ErrUnsupportedVersion, int64(r.bytePos()), "ITSF version")
	}
	if h.HeaderLength, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF header length")
	}
	if h.HeaderLength < itsfHeaderSize {
		return nil, wrapErr(ErrInvalidHeaderField, int64(r.bytePos()), "ITSF header length below minimum")
	}
	if h.Timestamp, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF timestamp")
	}
	if h.LanguageID, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF language id")
	}
	if h.DirectoryOffset, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF directory offset")
	}
	if h.DirectoryLength, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF directory length")
	}
	if h.DirectoryOffset <= itsfHeaderSize {
		return nil, wrapErr(ErrInvalidHeaderField, int64(r.bytePos()), "ITSF directory offset must exceed header size")
	}
	if h.DirectoryLength == 0 {
		return nil, wrapErr(ErrInvalidHeaderField, int64(r.bytePos()), "ITSF directory length must be positive")
	}

	// Consume the remainder of the declared header length (reserved fields).
	consumed := 28
	if _, err := r.readBytes(int(h.HeaderLength) - consumed); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSF reserved fields")
	}

	return h, nil
}

func serializeITSFHeader(h *ITSFHeader) []byte {
	buf := make([]byte, h.HeaderLength)
	copy(buf[0:4], itsfSignature[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.HeaderLength)
	binary.LittleEndian.PutUint32(buf[12:16], h.Timestamp)
	binary.LittleEndian.PutUint32(buf[16:20], h.LanguageID)
	binary.LittleEndian.PutUint32(buf[20:24], h.DirectoryOffset)
	binary.LittleEndian.PutUint32(buf[24:28], h.DirectoryLength)
	return buf
}

// ITSPHeader is the 84-byte record describing the directory B-tree.
type ITSPHeader struct {
	Version        uint32
	HeaderLength   uint32
	ChunkSize      uint32
	Density        uint32
	Depth          uint32
	RootChunkIndex uint32
	FirstPMGL      uint32
	LastPMGL       uint32
	NumChunks      uint32
	LanguageID     uint32
}

func parseITSPHeader(r *bitReader) (*ITSPHeader, error) {
	sig, err := r.readBytes(4)
	if err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP signature")
	}
	if !bytesEqual4(sig, itspSignature[:]) {
		return nil, wrapErr(ErrBadSignature, int64(r.bytePos()), "expected ITSP, got "+string(sig))
	}

	h := &ITSPHeader{}
	fields := []*uint32{&h.Version, &h.HeaderLength}
	for _, f := range fields {
		if *f, err = r.readU32LE(); err != nil {
			return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP header")
		}
	}
	if h.Version != itspVersion {
		return nil, wrapErr(ErrUnsupportedVersion, int64(r.bytePos()), "ITSP version")
	}

	// unknown1 reserved field
	if _, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP reserved")
	}

	rest := []*uint32{
		&h.ChunkSize, &h.Density, &h.Depth, &h.RootChunkIndex,
		&h.FirstPMGL, &h.LastPMGL,
	}
	for _, f := range rest {
		if *f, err = r.readU32LE(); err != nil {
			return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP body")
		}
	}
	// unknown2 reserved field (-1 conventionally)
	if _, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP reserved2")
	}
	if h.NumChunks, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP num chunks")
	}
	if h.LanguageID, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP language id")
	}

	if h.ChunkSize == 0 || h.ChunkSize%8 != 0 || h.ChunkSize&(h.ChunkSize-1) != 0 {
		return nil, wrapErr(ErrInvalidHeaderField, int64(r.bytePos()), "ITSP chunk size must be a power of two multiple of 8")
	}
	if h.FirstPMGL > h.LastPMGL {
		return nil, wrapErr(ErrInvalidHeaderField, int64(r.bytePos()), "ITSP first_pmgl must not exceed last_pmgl")
	}

	consumed := 52
	if _, err := r.readBytes(int(h.HeaderLength) - consumed); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "ITSP reserved tail")
	}

	return h, nil
}

func serializeITSPHeader(h *ITSPHeader) []byte {
	buf := make([]byte, itspHeaderSize)
	copy(buf[0:4], itspSignature[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.HeaderLength)
	binary.LittleEndian.PutUint32(buf[12:16], 1) // unknown1
	binary.LittleEndian.PutUint32(buf[16:20], h.ChunkSize)
	binary.LittleEndian.PutUint32(buf[20:24], h.Density)
	binary.LittleEndian.PutUint32(buf[24:28], h.Depth)
	binary.LittleEndian.PutUint32(buf[28:32], h.RootChunkIndex)
	binary.LittleEndian.PutUint32(buf[32:36], h.FirstPMGL)
	binary.LittleEndian.PutUint32(buf[36:40], h.LastPMGL)
	binary.LittleEndian.PutUint32(buf[40:44], 0xffffffff) // unknown2
	binary.LittleEndian.PutUint32(buf[44:48], h.NumChunks)
	binary.LittleEndian.PutUint32(buf[48:52], h.LanguageID)
	return buf
}

// LZXCHeader is the 40-byte record describing the compressed content section.
type LZXCHeader struct {
	Version       uint32
	ResetInterval uint32
	WindowSize    uint32
	CacheSize     uint32
}

func parseLZXCHeader(r *bitReader) (*LZXCHeader, error) {
	sig, err := r.readBytes(4)
	if err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "LZXC signature")
	}
	if !bytesEqual4(sig, lzxcSignature[:]) {
		return nil, wrapErr(ErrBadSignature, int64(r.bytePos()), "expected LZXC, got "+string(sig))
	}

	h := &LZXCHeader{}
	if h.Version, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "LZXC version")
	}
	if h.Version != lzxcVersion {
		return nil, wrapErr(ErrUnsupportedVersion, int64(r.bytePos()), "LZXC version")
	}
	if h.ResetInterval, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "LZXC reset interval")
	}
	if h.WindowSize, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "LZXC window size")
	}
	if h.CacheSize, err = r.readU32LE(); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "LZXC cache size")
	}

	if !allowedWindowSizes[h.WindowSize] {
		return nil, wrapErr(ErrWindowTooSmall, int64(r.bytePos()), "LZXC window size not in allowed set")
	}
	if h.ResetInterval == 0 || h.ResetInterval%0x8000 != 0 {
		return nil, wrapErr(ErrInvalidHeaderField, int64(r.bytePos()), "LZXC reset interval must be a positive multiple of 0x8000")
	}

	if _, err := r.readBytes(lzxcHeaderSize - 20); err != nil {
		return nil, wrapErr(ErrHeaderTruncated, int64(r.bytePos()), "LZXC reserved tail")
	}

	return h, nil
}

func serializeLZXCHeader(h *LZXCHeader) []byte {
	buf := make([]byte, lzxcHeaderSize)
	copy(buf[0:4], lzxcSignature[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.ResetInterval)
	binary.LittleEndian.PutUint32(buf[12:16], h.WindowSize)
	binary.LittleEndian.PutUint32(buf[16:20], h.CacheSize)
	return buf
}

func bytesEqual4(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
