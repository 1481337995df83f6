// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package transform

import (
	"sort"

	"github.com/dsnet/fcodec/internal/xerrors"
)

// Block is the maximum number of bytes a single BWT/MTF frame may
// transform. BWT does not materialize a Block*Block rotation table: it
// sorts rotation offsets into a doubled copy of the block (2*Block bytes),
// and each rotation comparison may scan up to Block bytes.
const Block = 4096

// indexWidth is the number of bytes used to record the BWT origin index.
// Spec section 4.2 ties this to Block: blocks no larger than 256 bytes
// only need a single index byte, everything above needs two (little
// endian). The implementation in scope always uses Block = 4096, so this
// is always 2, but the conditional is kept so a smaller Block constant
// continues to produce a correct frame.
func indexWidth() int {
	if Block <= 256 {
		return 1
	}
	return 2
}

// FrameSize is the number of bytes a BWT frame occupies on disk for a
// full Block-sized input chunk: the permuted bytes plus the origin index.
var FrameSize = Block + indexWidth()

// BWT performs the forward Burrows-Wheeler Transform on b, which must
// contain at most Block bytes. It returns the transformed bytes (the
// last column of the sorted rotation matrix) followed by the
// little-endian (or single-byte, per indexWidth) origin index.
//
// BWT does not mutate b.
func BWT(b []byte) []byte {
	l := len(b)
	if l == 0 {
		out := make([]byte, indexWidth())
		return out
	}
	if l > Block {
		xerrors.Panicf(xerrors.CorruptedInput, "BWT block of %d bytes exceeds maximum of %d", l, Block)
	}

	// Build all rotations as indices into a doubled copy of b, so that a
	// rotation starting at i is simply doubled[i:i+l] without any
	// per-rotation allocation.
	doubled := make([]byte, 2*l)
	copy(doubled, b)
	copy(doubled[l:], b)

	rotIdx := make([]int, l)
	for i := range rotIdx {
		rotIdx[i] = i
	}
	sort.Slice(rotIdx, func(x, y int) bool {
		a := doubled[rotIdx[x] : rotIdx[x]+l]
		c := doubled[rotIdx[y] : rotIdx[y]+l]
		for k := 0; k < l; k++ {
			if a[k] != c[k] {
				return a[k] < c[k]
			}
		}
		return false
	})

	out := make([]byte, l+indexWidth())
	originIdx := 0
	for rank, start := range rotIdx {
		out[rank] = doubled[start+l-1]
		if start == 0 {
			originIdx = rank
		}
	}
	putIndex(out[l:], originIdx)
	return out
}

// InverseBWT reconstructs the original block from a BWT frame (the last
// column followed by the origin index, as produced by BWT) using the
// standard sort-and-follow algorithm.
func InverseBWT(frame []byte) []byte {
	w := indexWidth()
	if len(frame) < w {
		xerrors.Panicf(xerrors.CorruptedInput, "BWT frame of %d bytes is shorter than the index width %d", len(frame), w)
	}
	l := len(frame) - w
	if l == 0 {
		return nil
	}
	lastCol := frame[:l]
	origin := getIndex(frame[l:])
	if origin < 0 || origin >= l {
		xerrors.Panicf(xerrors.CorruptedInput, "BWT origin index %d out of range for block of %d bytes", origin, l)
	}

	type posByte struct {
		pos  int
		byte byte
	}
	enumerated := make([]posByte, l)
	for i, c := range lastCol {
		enumerated[i] = posByte{pos: i, byte: c}
	}
	sort.SliceStable(enumerated, func(x, y int) bool {
		return enumerated[x].byte < enumerated[y].byte
	})

	table := make([]int, l)
	for rank, pb := range enumerated {
		table[rank] = pb.pos
	}

	out := make([]byte, l)
	pos := origin
	for i := 0; i < l; i++ {
		pos = table[pos]
		out[i] = lastCol[pos]
	}
	return out
}

func putIndex(dst []byte, v int) {
	if len(dst) == 1 {
		dst[0] = byte(v)
		return
	}
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

func getIndex(src []byte) int {
	if len(src) == 1 {
		return int(src[0])
	}
	return int(src[0]) | int(src[1])<<8
}
