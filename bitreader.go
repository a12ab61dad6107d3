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

	"github.com/icza/bitio"
)

// bitReader is a random-access cursor over an in-memory byte buffer with
// MSB-first bit extraction, mirroring the ITSF/ITSP/LZXC/PMGL/LZX encodings'
// shared need for both byte-aligned little-endian fields and bit-packed LZX
// block data. The MSB-first bit accumulation itself is delegated to
// icza/bitio.Reader (an indirect dependency of the archive source adapters,
// promoted here to direct use) rather than hand-rolled, since bitio's
// ReadBits is exactly the "network byte order" bit reader the LZX block
// format expects.
type bitReader struct {
	data   []byte
	cursor int // absolute bit offset from the start of data
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (r *bitReader) bytePos() int { return r.cursor / 8 }
func (r *bitReader) bitPos() int  { return r.cursor % 8 }

func (r *bitReader) remainingBits() int {
	return len(r.data)*8 - r.cursor
}

// peekOrReadBits implements both peek_bits and read_bits: it always computes
// the value from the current cursor, advancing the cursor only when advance
// is true.
func (r *bitReader) peekOrReadBits(n int, advance bool) (uint64, error) {
	if n < 1 || n > 32 {
		return 0, wrapErr(ErrEndOfStream, int64(r.bytePos()), "bit count out of range")
	}
	if r.remainingBits() < n {
		return 0, wrapErr(ErrEndOfStream, int64(r.bytePos()), "not enough bits remaining")
	}

	byteOff := r.bytePos()
	bitOff := r.bitPos()

	br := bitio.NewReader(bytes.NewReader(r.data[byteOff:]))
	if bitOff > 0 {
		if _, err := br.ReadBits(uint8(bitOff)); err != nil {
			return 0, wrapErr(ErrEndOfStream, int64(byteOff), "realigning bit cursor")
		}
	}
	val, err := br.ReadBits(uint8(n))
	if err != nil {
		return 0, wrapErr(ErrEndOfStream, int64(byteOff), "reading bits")
	}

	if advance {
		r.cursor += n
	}
	return val, nil
}

// readBits returns the next n bits (1 <= n <= 32) as an unsigned integer,
// advancing the cursor.
func (r *bitReader) readBits(n int) (uint32, error) {
	val, err := r.peekOrReadBits(n, true)
	return uint32(val), err
}

// peekBits returns the next n bits without advancing the cursor.
func (r *bitReader) peekBits(n int) (uint32, error) {
	val, err := r.peekOrReadBits(n, false)
	return uint32(val), err
}

// skipBits advances the cursor by n bits without producing a value.
func (r *bitReader) skipBits(n int) error {
	_, err := r.peekOrReadBits(n, true)
	return err
}

// align advances to the next byte boundary if the cursor is mid-byte.
func (r *bitReader) align() {
	if r.bitPos() != 0 {
		r.cursor += 8 - r.bitPos()
	}
}

func (r *bitReader) requireAligned() error {
	if r.bitPos() != 0 {
		return wrapErr(ErrMisaligned, int64(r.bytePos()), "byte-aligned read requested mid-byte")
	}
	return nil
}

// readBytes returns a byte-aligned copy of the next n bytes.
func (r *bitReader) readBytes(n int) ([]byte, error) {
	if err := r.requireAligned(); err != nil {
		return nil, err
	}
	start := r.bytePos()
	if start+n > len(r.data) {
		return nil, wrapErr(ErrEndOfStream, int64(start), "not enough bytes remaining")
	}
	out := make([]byte, n)
	copy(out, r.data[start:start+n])
	r.cursor += n * 8
	return out, nil
}

func (r *bitReader) readU8() (uint8, error) {
	b, err := r.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *bitReader) readU16LE() (uint16, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *bitReader) readU32LE() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *bitReader) readU64LE() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// setBytePos performs random access, resetting bitPos to 0.
func (r *bitReader) setBytePos(p int) {
	r.cursor = p * 8
}
