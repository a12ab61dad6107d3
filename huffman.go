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

import "sort"

// huffmanTable is a canonical Huffman decode table built from a vector of
// code lengths, one entry per symbol (0 meaning "symbol absent"). The
// construction follows MAME's canonical assignment as seen in
// chd/bitstream.go's huffmanDecoder.buildLookup: stable-sort symbols by
// (length, symbol index) ascending, then assign codes starting from 0,
// left-shifting by the length delta whenever the length increases.
type huffmanTable struct {
	codes   []uint16 // canonical code per symbol, valid where lengths[i] > 0
	lengths []int
	lookup  []uint16 // flat table indexed by the next maxLen bits peeked: (symbol<<5)|length
	maxLen  int
}

// buildHuffmanTable constructs a decode table from code lengths. It fails
// with ErrInvalidHuffman unless the lengths form a complete binary tree:
// sum(2^(maxLen-L[i])) for L[i] > 0 must equal 2^maxLen.
func buildHuffmanTable(lengths []int) (*huffmanTable, error) {
	maxLen := 0
	for _, l := range lengths {
		if l > maxLen {
			maxLen = l
		}
	}
	if maxLen == 0 {
		return &huffmanTable{lengths: lengths}, nil
	}
	if maxLen > MaxHuffmanCodeBits {
		return nil, wrapErr(ErrInvalidHuffman, 0, "code length exceeds 16 bits")
	}

	type symLen struct {
		sym int
		len int
	}
	order := make([]symLen, 0, len(lengths))
	for sym, l := range lengths {
		if l > 0 {
			order = append(order, symLen{sym, l})
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].len != order[j].len {
			return order[i].len < order[j].len
		}
		return order[i].sym < order[j].sym
	})

	codes := make([]uint16, len(lengths))
	var code uint32
	var sumLeaves uint64
	prevLen := 0
	for _, e := range order {
		if e.len != prevLen {
			code <<= uint(e.len - prevLen)
			prevLen = e.len
		}
		codes[e.sym] = uint16(code)
		sumLeaves += 1 << uint(maxLen-e.len)
		code++
	}
	if sumLeaves != 1<<uint(maxLen) {
		return nil, wrapErr(ErrInvalidHuffman, 0, "code lengths do not form a complete tree")
	}

	lookup := make([]uint16, 1<<uint(maxLen))
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		entry := uint16(sym<<5) | uint16(l) //nolint:gosec // symbol bounded by LZX alphabet sizes (<=656)
		shift := maxLen - l
		base := int(codes[sym]) << shift
		end := (int(codes[sym]) + 1) << shift
		for i := base; i < end; i++ {
			lookup[i] = entry
		}
	}

	return &huffmanTable{codes: codes, lengths: lengths, lookup: lookup, maxLen: maxLen}, nil
}

// decode reads one symbol from r. It peeks maxLen bits (bounded by §4.2's
// 16-bit ceiling for LZX), looks up the matching (symbol, length) pair, and
// consumes exactly the matched length. A code of length 0 ("absent") can
// never be produced by lookup construction, so a zero entry always means
// "no symbol matched".
func (t *huffmanTable) decode(r *bitReader) (int, error) {
	if t.maxLen == 0 {
		return 0, wrapErr(ErrInvalidHuffmanCode, int64(r.bytePos()), "empty huffman table")
	}

	avail := t.maxLen
	if r.remainingBits() < avail {
		avail = r.remainingBits()
	}
	if avail <= 0 {
		return 0, wrapErr(ErrInvalidHuffmanCode, int64(r.bytePos()), "no bits remaining")
	}

	peeked, err := r.peekBits(avail)
	if err != nil {
		return 0, err
	}
	// Pad missing trailing bits with zero, matching the table's right-padded
	// index space when fewer than maxLen bits remain in the stream.
	idx := int(peeked) << uint(t.maxLen-avail)
	entry := t.lookup[idx]
	length := int(entry & 0x1f)
	if length == 0 || length > avail {
		return 0, wrapErr(ErrInvalidHuffmanCode, int64(r.bytePos()), "no matching code within 16 bits")
	}
	if err := r.skipBits(length); err != nil {
		return 0, err
	}
	return int(entry >> 5), nil
}
