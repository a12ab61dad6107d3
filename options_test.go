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

import "testing"

func TestOpenOptionsBlockCacheSizeDefault(t *testing.T) {
	t.Parallel()

	var o OpenOptions
	if got := o.blockCacheSize(); got != defaultBlockCache {
		t.Errorf("blockCacheSize() = %d, want %d", got, defaultBlockCache)
	}

	o.BlockCacheSize = 64
	if got := o.blockCacheSize(); got != 64 {
		t.Errorf("blockCacheSize() = %d, want 64", got)
	}
}

func TestPackOptionsDefaults(t *testing.T) {
	t.Parallel()

	var o PackOptions
	if got := o.windowSize(); got != defaultWindowSize {
		t.Errorf("windowSize() = %#x, want %#x", got, defaultWindowSize)
	}
	if got := o.resetInterval(); got != defaultResetInterval {
		t.Errorf("resetInterval() = %#x, want %#x", got, defaultResetInterval)
	}
	if got := o.chunkSize(); got != defaultChunkSize {
		t.Errorf("chunkSize() = %d, want %d", got, defaultChunkSize)
	}
}

func TestPackOptionsExplicitValuesOverrideDefaults(t *testing.T) {
	t.Parallel()

	o := PackOptions{WindowSize: 0x20000, ResetInterval: 0x20000, ChunkSize: 8192}
	if got := o.windowSize(); got != 0x20000 {
		t.Errorf("windowSize() = %#x, want 0x20000", got)
	}
	if got := o.resetInterval(); got != 0x20000 {
		t.Errorf("resetInterval() = %#x, want 0x20000", got)
	}
	if got := o.chunkSize(); got != 8192 {
		t.Errorf("chunkSize() = %d, want 8192", got)
	}
}
