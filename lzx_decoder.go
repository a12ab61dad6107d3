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
	blockVerbatim     = 1
	blockAlignedOff   = 2
	blockUncompressed = 3

	pretreeSymbols = 20
	alignedSymbols = 8
	lenTreeSymbols = 249
	mainTreeSplit  = 256

	maxMatchLen = 257
	minMatchLen = 3
)

// numPositionSlots maps an LZXC window size to the number of position-slot
// symbols the main tree must allocate, per the table implied by the 30-slot,
// 32KiB case the WIM variant of LZX hardcodes (mainTreeSplit=256,
// maincodecount=496 => 30 slots); larger CHM window sizes need
// proportionally more slots to address the full window.
var numPositionSlots = map[uint32]int{
	0x8000:   30,
	0x10000:  32,
	0x20000:  34,
	0x40000:  36,
	0x80000:  38,
	0x100000: 42,
	0x200000: 50,
}

// footerBitsTable and basePositionTable are generated once per window size
// by lzxPositionTables, following the recurrence visible in the reference
// footerBits/basePosition arrays: footer bits grow by one every two slots
// (capped at 17 so the verbatim+aligned split never exceeds 32 bits), and
// each slot's base position is the previous slot's base plus 2^footerBits.
func lzxPositionTables(numSlots int) (footerBits []int, basePosition []uint32) {
	footerBits = make([]int, numSlots)
	basePosition = make([]uint32, numSlots)
	for s := 0; s < numSlots; s++ {
		switch {
		case s < 2:
			footerBits[s] = 0
		default:
			fb := s/2 - 1
			if fb > 17 {
				fb = 17
			}
			if fb < 0 {
				fb = 0
			}
			footerBits[s] = fb
		}
		if s == 0 {
			basePosition[s] = 0
		} else {
			basePosition[s] = basePosition[s-1] + (1 << uint(footerBits[s-1]))
		}
	}
	return
}

// lzxDecoderState carries the window, Huffman trees, and LRU distances that
// persist across blocks within one reset interval and are wiped at every
// reset-interval boundary (§4.6).
type lzxDecoderState struct {
	window        *lzxWindow
	mainLens      []byte
	lenLens       []byte
	lru           [3]uint32
	numSlots      int
	mainTreeSize  int
	footerBits    []int
	basePosition  []uint32
	unalignedByte bool // pending realignment after an odd-size uncompressed block
}

func newLZXDecoderState(windowSize uint32) *lzxDecoderState {
	numSlots := numPositionSlots[windowSize]
	footerBits, basePosition := lzxPositionTables(numSlots)
	s := &lzxDecoderState{
		window:       newLZXWindow(windowSize),
		numSlots:     numSlots,
		mainTreeSize: mainTreeSplit + 8*numSlots,
		footerBits:   footerBits,
		basePosition: basePosition,
	}
	s.resetInterval()
	return s
}

// resetInterval performs the full reset prescribed at reset-interval
// boundaries: window contents zeroed, trees cleared (so the next block's
// delta-length codes are read relative to all-zero, per §4.6), and LRU
// distances reinitialized to {1, 1, 1}.
func (s *lzxDecoderState) resetInterval() {
	s.window.reset()
	s.mainLens = make([]byte, s.mainTreeSize)
	s.lenLens = make([]byte, lenTreeSymbols)
	s.lru = [3]uint32{1, 1, 1}
	s.unalignedByte = false
}

// mod17 wraps b into [0,17), matching the delta-length protocol's "subtract
// from 17" convention for representing negative deltas.
func mod17(b int) int {
	for b < 0 {
		b += 17
	}
	for b >= 17 {
		b -= 17
	}
	return b
}

// readTreeLengths decodes lens in place using a freshly-read pre-tree,
// applying the delta-length protocol: codes 0-16 are deltas from the
// previous length at that index (mod 17), 17/18 are zero-runs, 19 is a
// same-value run whose value is itself delta-coded.
func readTreeLengths(r *bitReader, lens []byte) error {
	pretreeLen := make([]int, pretreeSymbols)
	for i := range pretreeLen {
		v, err := r.readBits(4)
		if err != nil {
			return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "pretree lengths")
		}
		pretreeLen[i] = int(v)
	}
	pretree, err := buildHuffmanTable(pretreeLen)
	if err != nil {
		return err
	}

	for i := 0; i < len(lens); {
		c, err := pretree.decode(r)
		if err != nil {
			return err
		}
		switch {
		case c <= 16:
			lens[i] = byte(mod17(int(lens[i]) + 17 - c))
			i++
		case c == 17:
			n, err := r.readBits(4)
			if err != nil {
				return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "zero run length")
			}
			zeroes := int(n) + 4
			if i+zeroes > len(lens) {
				return wrapErr(ErrDirectoryCorrupt, int64(r.bytePos()), "zero run overruns tree")
			}
			for j := 0; j < zeroes; j++ {
				lens[i+j] = 0
			}
			i += zeroes
		case c == 18:
			n, err := r.readBits(5)
			if err != nil {
				return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "zero run length")
			}
			zeroes := int(n) + 20
			if i+zeroes > len(lens) {
				return wrapErr(ErrDirectoryCorrupt, int64(r.bytePos()), "zero run overruns tree")
			}
			for j := 0; j < zeroes; j++ {
				lens[i+j] = 0
			}
			i += zeroes
		case c == 19:
			n, err := r.readBits(1)
			if err != nil {
				return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "same run length")
			}
			same := int(n) + 4
			if i+same > len(lens) {
				return wrapErr(ErrDirectoryCorrupt, int64(r.bytePos()), "same run overruns tree")
			}
			c2, err := pretree.decode(r)
			if err != nil {
				return err
			}
			if c2 > 16 {
				return wrapErr(ErrInvalidHuffman, int64(r.bytePos()), "same-run value out of range")
			}
			l := byte(mod17(int(lens[i]) + 17 - c2))
			for j := 0; j < same; j++ {
				lens[i+j] = l
			}
			i += same
		default:
			return wrapErr(ErrUnknownBlockType, int64(r.bytePos()), "invalid pretree symbol")
		}
	}
	return nil
}

// decodeBlock decodes one LZX block starting at the state's current window
// position, producing exactly blockSize uncompressed bytes.
func (s *lzxDecoderState) decodeBlock(r *bitReader, blockType int, blockSize int) error {
	if blockType == blockUncompressed {
		r.align()
		lo, err := r.readU32LE()
		if err != nil {
			return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "uncompressed lru[0]")
		}
		mid, err := r.readU32LE()
		if err != nil {
			return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "uncompressed lru[1]")
		}
		hi, err := r.readU32LE()
		if err != nil {
			return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "uncompressed lru[2]")
		}
		s.lru = [3]uint32{lo, mid, hi}

		raw, err := r.readBytes(blockSize)
		if err != nil {
			return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "uncompressed payload")
		}
		for _, b := range raw {
			s.window.writeByte(b)
		}
		s.unalignedByte = blockSize%2 == 1
		return nil
	}

	var alignedTree *huffmanTable
	if blockType == blockAlignedOff {
		alignedLen := make([]int, alignedSymbols)
		for i := range alignedLen {
			v, err := r.readBits(3)
			if err != nil {
				return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "aligned tree lengths")
			}
			alignedLen[i] = int(v)
		}
		var err error
		alignedTree, err = buildHuffmanTable(alignedLen)
		if err != nil {
			return err
		}
	} else if blockType != blockVerbatim {
		return wrapErr(ErrUnknownBlockType, int64(r.bytePos()), "")
	}

	if err := readTreeLengths(r, s.mainLens[:mainTreeSplit]); err != nil {
		return err
	}
	if err := readTreeLengths(r, s.mainLens[mainTreeSplit:]); err != nil {
		return err
	}
	mainTree, err := buildHuffmanTable(intLens(s.mainLens))
	if err != nil {
		return err
	}
	if err := readTreeLengths(r, s.lenLens); err != nil {
		return err
	}
	lenTree, err := buildHuffmanTable(intLens(s.lenLens))
	if err != nil {
		return err
	}

	produced := 0
	for produced < blockSize {
		sym, err := mainTree.decode(r)
		if err != nil {
			return err
		}
		if sym < mainTreeSplit {
			s.window.writeByte(byte(sym))
			produced++
			continue
		}

		rel := sym - mainTreeSplit
		lenHeader := rel % 8
		slot := rel / 8
		if slot >= s.numSlots {
			return wrapErr(ErrInvalidMatch, int64(r.bytePos()), "position slot out of range")
		}

		matchLen := lenHeader
		if lenHeader == 7 {
			extra, err := lenTree.decode(r)
			if err != nil {
				return err
			}
			matchLen = extra + 7
		}
		matchLen += 2

		var distance uint32
		switch {
		case slot < 3:
			distance = s.lru[slot]
			s.lru[slot] = s.lru[0]
			s.lru[0] = distance
		default:
			fb := s.footerBits[slot]
			var verbatimBits, alignedBits uint32
			if fb > 0 {
				if alignedTree != nil && fb >= 3 {
					if fb > 3 {
						v, err := r.readBits(fb - 3)
						if err != nil {
							return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "verbatim offset bits")
						}
						verbatimBits = v * 8
					}
					a, err := alignedTree.decode(r)
					if err != nil {
						return err
					}
					alignedBits = uint32(a)
				} else {
					v, err := r.readBits(fb)
					if err != nil {
						return wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "verbatim offset bits")
					}
					verbatimBits = v
				}
			}
			distance = s.basePosition[slot] + verbatimBits + alignedBits - 2
			s.lru[2] = s.lru[1]
			s.lru[1] = s.lru[0]
			s.lru[0] = distance
		}

		if produced+matchLen > blockSize {
			return wrapErr(ErrOutputOverflow, int64(r.bytePos()), "match extends past block boundary")
		}
		if err := s.window.copyMatch(int(distance), matchLen); err != nil {
			return err
		}
		produced += matchLen
	}
	return nil
}

func intLens(b []byte) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}

// readBlockHeader reads a block's 3-bit type and 24-bit uncompressed size
// (16 high bits followed by 8 low bits, per §4.6).
func readBlockHeader(r *bitReader) (blockType int, size int, err error) {
	t, err := r.readBits(3)
	if err != nil {
		return 0, 0, wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "block type")
	}
	hi, err := r.readBits(16)
	if err != nil {
		return 0, 0, wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "block size high")
	}
	lo, err := r.readBits(8)
	if err != nil {
		return 0, 0, wrapErr(ErrTruncatedBlock, int64(r.bytePos()), "block size low")
	}
	blockType = int(t)
	size = int(hi)<<8 | int(lo)
	if blockType < blockVerbatim || blockType > blockUncompressed {
		return 0, 0, wrapErr(ErrUnknownBlockType, int64(r.bytePos()), "")
	}
	return blockType, size, nil
}

// decodeRange decodes the LZX section beginning at seekBit (an absolute bit
// offset into compressed, which must fall on a reset-interval boundary per
// the random-access contract of §4.6), producing uncompressed bytes until at
// least discard+length bytes exist, then returns the requested slice.
func decodeRange(compressed []byte, seekBit int, windowSize, resetInterval uint32, discard, length int) ([]byte, error) {
	r := newBitReader(compressed)
	r.cursor = seekBit

	state := newLZXDecoderState(windowSize)
	var output []byte
	needed := discard + length
	sinceReset := 0

	for len(output) < needed {
		if sinceReset == 0 {
			state.resetInterval()
		}

		blockStart := int64(r.bytePos())
		blockType, blockSize, err := readBlockHeader(r)
		if err != nil {
			return nil, err
		}
		if sinceReset+blockSize > int(resetInterval) {
			return nil, wrapErr(ErrOutputOverflow, int64(r.bytePos()), "block exceeds reset interval")
		}

		if err := state.decodeBlock(r, blockType, blockSize); err != nil {
			if ce, ok := err.(*CodecError); ok && ce.Block == nil {
				ce.Block = &BlockHeader{Type: blockType, UncompressedSize: blockSize, Offset: blockStart}
			}
			return nil, err
		}
		output = append(output, state.window.lastBytes(blockSize)...)

		sinceReset += blockSize
		if sinceReset == int(resetInterval) {
			sinceReset = 0
		}
	}

	if discard+length > len(output) {
		return nil, wrapErr(ErrTruncatedBlock, int64(len(output)), "section ended before requested range")
	}
	return output[discard : discard+length], nil
}
