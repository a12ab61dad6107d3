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

const hashChainLen = 3 // bytes hashed per chain bucket

// lzxMatcher is a hash-chain LZ77 match finder over one reset interval's
// plaintext, in the spirit of the windowed brute-force search in
// xyproto-vibe67's Compressor.Compress, generalized with a hash chain so the
// search window (up to 2 MiB) doesn't turn every position into an O(W) scan.
type lzxMatcher struct {
	data  []byte
	chain []int32
	head  map[uint32]int32
}

func newLZXMatcher(data []byte) *lzxMatcher {
	return &lzxMatcher{
		data:  data,
		chain: make([]int32, len(data)),
		head:  make(map[uint32]int32, len(data)),
	}
}

func hash3(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// insert records pos in its 3-byte hash bucket's chain.
func (m *lzxMatcher) insert(pos int) {
	if pos+hashChainLen > len(m.data) {
		return
	}
	h := hash3(m.data[pos : pos+hashChainLen])
	prev, ok := m.head[h]
	if !ok {
		prev = -1
	}
	m.chain[pos] = prev
	m.head[h] = int32(pos) //nolint:gosec // bounded by reset-interval size
}

// findMatch returns the longest match at pos (length, distance), or
// (0, 0) if no match of at least minMatchLen bytes exists.
func (m *lzxMatcher) findMatch(pos int) (length, distance int) {
	if pos+hashChainLen > len(m.data) {
		return 0, 0
	}
	h := hash3(m.data[pos : pos+hashChainLen])
	cand, ok := m.head[h]
	if !ok {
		return 0, 0
	}

	bestLen, bestDist := 0, 0
	tries := 0
	for c := cand; c >= 0 && tries < 64; c = m.chain[c] {
		tries++
		cpos := int(c)
		if cpos >= pos {
			continue
		}
		l := matchLength(m.data, cpos, pos)
		if l > bestLen {
			bestLen = l
			bestDist = pos - cpos
		}
		if bestLen >= maxMatchLen {
			break
		}
	}
	if bestLen < minMatchLen {
		return 0, 0
	}
	if bestLen > maxMatchLen {
		bestLen = maxMatchLen
	}
	return bestLen, bestDist
}

func matchLength(data []byte, a, b int) int {
	n := 0
	for b+n < len(data) && data[a+n] == data[b+n] {
		n++
		if n >= maxMatchLen {
			break
		}
	}
	return n
}

// lzxToken is one emitted symbol of a verbatim block: either a literal byte
// (isMatch false) or a length/distance pair already decomposed into its
// main-tree symbol, optional length-tree overflow, and raw offset bits.
type lzxToken struct {
	isMatch      bool
	literal      byte
	mainSym      int
	lenOverflow  int // value fed to the length tree, valid when lenHeader==7
	hasOverflow  bool
	offsetBits   int
	offsetExtra  uint32
}

// encodeInterval runs the matcher over one reset interval's plaintext and
// returns its token stream plus the frequency tables needed to build this
// block's Huffman trees.
func encodeInterval(data []byte, footerBits []int, basePosition []uint32, numSlots int) (tokens []lzxToken, mainFreq, lenFreq []int) {
	mainTreeSize := mainTreeSplit + 8*numSlots
	mainFreq = make([]int, mainTreeSize)
	lenFreq = make([]int, lenTreeSymbols)

	matcher := newLZXMatcher(data)
	lru := [3]uint32{1, 1, 1}

	pos := 0
	for pos < len(data) {
		length, distance := matcher.findMatch(pos)
		if length >= minMatchLen {
			tok, lruNext := encodeMatch(uint32(length), uint32(distance), lru, footerBits, basePosition, numSlots)
			lru = lruNext
			tokens = append(tokens, tok)
			mainFreq[tok.mainSym]++
			if tok.hasOverflow {
				lenFreq[tok.lenOverflow]++
			}
			for i := 0; i < length; i++ {
				matcher.insert(pos + i)
			}
			pos += length
			continue
		}

		tokens = append(tokens, lzxToken{isMatch: false, literal: data[pos], mainSym: int(data[pos])})
		mainFreq[data[pos]]++
		matcher.insert(pos)
		pos++
	}
	return tokens, mainFreq, lenFreq
}

// encodeMatch decomposes (length, distance) into a main-tree symbol, any
// length-tree overflow, and raw offset bits, updating the LRU set exactly as
// the decoder's move-to-front logic expects.
func encodeMatch(length, distance uint32, lru [3]uint32, footerBits []int, basePosition []uint32, numSlots int) (lzxToken, [3]uint32) {
	lenHeader := length - 2
	hasOverflow := false
	overflow := 0
	if lenHeader >= 7 {
		overflow = int(lenHeader - 7)
		lenHeader = 7
		hasOverflow = true
	}

	var slot int
	var offsetBits int
	var offsetExtra uint32
	switch distance {
	case lru[0]:
		slot = 0
	case lru[1]:
		slot = 1
		lru[1] = lru[0]
		lru[0] = distance
	case lru[2]:
		slot = 2
		lru[2] = lru[0]
		lru[0] = distance
	default:
		target := distance + 2
		s := 3
		for s+1 < numSlots && basePosition[s+1] <= target {
			s++
		}
		slot = s
		offsetBits = footerBits[slot]
		offsetExtra = target - basePosition[slot]
		lru[2] = lru[1]
		lru[1] = lru[0]
		lru[0] = distance
	}

	tok := lzxToken{
		isMatch:     true,
		mainSym:     mainTreeSplit + slot*8 + int(lenHeader),
		lenOverflow: overflow,
		hasOverflow: hasOverflow,
		offsetBits:  offsetBits,
		offsetExtra: offsetExtra,
	}
	return tok, lru
}

// assignBalancedLengths builds a complete canonical code over n present
// symbols without needing a priority-queue Huffman build: n symbols split
// between lengths L and L-1 (L = ceil(log2 n)) always form a complete binary
// tree. Frequency order only biases which symbols get the shorter length;
// compression ratio is not part of the contract (§4.7), so this is
// deliberately simpler than an optimal Huffman construction.
func assignBalancedLengths(freq []int) []int {
	type symFreq struct {
		sym  int
		freq int
	}
	var present []symFreq
	for sym, f := range freq {
		if f > 0 {
			present = append(present, symFreq{sym, f})
		}
	}

	lens := make([]int, len(freq))
	if len(present) == 0 {
		return lens
	}
	if len(present) == 1 {
		lens[present[0].sym] = 1
		// Pick any other symbol index as a phantom partner so the tree is
		// complete; it is never emitted by the encoder.
		for sym := range lens {
			if sym != present[0].sym {
				lens[sym] = 1
				break
			}
		}
		return lens
	}

	sort.Slice(present, func(i, j int) bool { return present[i].freq > present[j].freq })

	n := len(present)
	l := 1
	for (1 << uint(l)) < n {
		l++
	}
	shortCount := (1 << uint(l)) - n
	for i, sf := range present {
		if i < shortCount {
			lens[sf.sym] = l - 1
		} else {
			lens[sf.sym] = l
		}
	}
	return lens
}

// encodeTreeLengths emits lens (one length per symbol, 0 meaning unused)
// using the pre-tree delta protocol: every symbol is coded literally via its
// delta (mod 17) from the decoder's previous length at the same index, never
// using the 17/18/19 run codes. Every encoded block opens a fresh reset
// interval, so that previous length is always 0. This is correct but leaves
// run-length compression on the table, consistent with the encoder's
// correctness-first mandate.
func encodeTreeLengths(w *bitWriter, lens []byte) error {
	deltaFreq := make([]int, pretreeSymbols)
	for _, l := range lens {
		c := mod17(17 - int(l))
		if c > 16 {
			c = 0
		}
		deltaFreq[c]++
	}
	preLens := assignBalancedLengths(deltaFreq)
	preTree, err := buildHuffmanTable(preLens)
	if err != nil {
		return err
	}

	for i := range preLens {
		w.writeBits(uint32(preLens[i]), 4)
	}

	for _, l := range lens {
		c := mod17(17 - int(l))
		code := preTree.codes[c]
		w.writeBits(uint32(code), preTree.lengths[c])
	}
	return nil
}

// encodeBlock produces one verbatim (type 1) LZX block for data, a single
// reset interval's worth of plaintext.
func encodeBlock(data []byte, footerBits []int, basePosition []uint32, numSlots int) ([]byte, error) {
	tokens, mainFreq, lenFreq := encodeInterval(data, footerBits, basePosition, numSlots)

	mainLens := assignBalancedLengths(mainFreq)
	mainTree, err := buildHuffmanTable(mainLens)
	if err != nil {
		return nil, err
	}
	lenLens := assignBalancedLengths(lenFreq)
	lenTree, err := buildHuffmanTable(lenLens)
	if err != nil {
		return nil, err
	}

	w := &bitWriter{}
	w.writeBits(blockVerbatim, 3)
	w.writeBits(uint32(len(data)>>8), 16)
	w.writeBits(uint32(len(data)&0xff), 8)

	if err := encodeTreeLengths(w, byteLens(mainLens[:mainTreeSplit])); err != nil {
		return nil, err
	}
	if err := encodeTreeLengths(w, byteLens(mainLens[mainTreeSplit:])); err != nil {
		return nil, err
	}
	if err := encodeTreeLengths(w, byteLens(lenLens)); err != nil {
		return nil, err
	}

	for _, tok := range tokens {
		code := mainTree.codes[tok.mainSym]
		w.writeBits(uint32(code), mainTree.lengths[tok.mainSym])
		if !tok.isMatch {
			continue
		}
		if tok.hasOverflow {
			lcode := lenTree.codes[tok.lenOverflow]
			w.writeBits(uint32(lcode), lenTree.lengths[tok.lenOverflow])
		}
		if tok.offsetBits > 0 {
			w.writeBits(tok.offsetExtra, tok.offsetBits)
		}
	}

	return w.bytes(), nil
}

func byteLens(in []int) []byte {
	out := make([]byte, len(in))
	for i, v := range in {
		out[i] = byte(v)
	}
	return out
}

// encodeSection compresses the full uncompressed stream into LZX blocks, one
// verbatim block per resetInterval-byte chunk, returning the concatenated
// compressed bytes and the reset-table entries marking each chunk's start.
func encodeSection(data []byte, windowSize, resetInterval uint32) ([]byte, []ResetTableBlock, error) {
	numSlots := numPositionSlots[windowSize]
	footerBits, basePosition := lzxPositionTables(numSlots)

	var out []byte
	var blocks []ResetTableBlock
	for start := 0; start < len(data); start += int(resetInterval) {
		end := start + int(resetInterval)
		if end > len(data) {
			end = len(data)
		}
		blocks = append(blocks, ResetTableBlock{
			CompressedOffset:   uint64(len(out)),
			UncompressedOffset: uint64(start),
		})

		block, err := encodeBlock(data[start:end], footerBits, basePosition, numSlots)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, block...)
	}
	if len(blocks) == 0 {
		blocks = append(blocks, ResetTableBlock{})
	}
	return out, blocks, nil
}
