// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package huffman implements the static two-pass Huffman codec: a
// frequency scan over the whole input, a canonical tree build with a
// pinned tie-break rule, and a bit-packed code stream preceded by the
// full 256-entry frequency table.
package huffman

import (
	"encoding/binary"
	"sort"

	"github.com/dsnet/fcodec/bitio"
	"github.com/dsnet/fcodec/internal/xerrors"
)

// headerSize is the on-disk size of the persisted frequency table: 256
// entries of 32-bit little-endian counts.
const headerSize = 256 * 4

// node is a Huffman tree node. It has either a byte value (a leaf) or
// both children (an internal node); it is never both or neither, save for
// a tree consisting of a single leaf.
type node struct {
	weight uint32
	value  byte
	isLeaf bool
	left   *node
	right  *node
}

// code is a single symbol's bit pattern, stored LSB-first: the first bit
// of the code occupies bit 0 of pattern[0]. Only symbols with a nonzero
// frequency ever get a code with Len > 0.
type code struct {
	pattern [32]byte // up to 256 bits
	len     int
}

// Options configures the Huffman codec. It is presently empty — the
// static codec in scope has no tunables — but is kept as an explicit
// struct so a future option doesn't change either constructor's
// signature.
type Options struct {
	_ struct{}
}

// buildTree constructs the Huffman tree for freq using the tie-break rule
// pinned by the specification: nodes are combined in order of a stable
// sort by weight, with leaves inserted in ascending byte-value order
// before any internal node exists, and internal nodes appended to the end
// of the queue as they are created. Running the same algorithm on the
// same frequency table on both the encoder and the decoder reproduces an
// identical tree shape, even though the persisted frequency table alone
// does not uniquely determine one.
func buildTree(freq [256]uint32) *node {
	var queue []*node
	for i := 0; i < 256; i++ {
		if freq[i] != 0 {
			queue = append(queue, &node{weight: freq[i], value: byte(i), isLeaf: true})
		}
	}
	if len(queue) == 0 {
		return nil
	}
	for len(queue) > 1 {
		sort.SliceStable(queue, func(a, b int) bool {
			return queue[a].weight < queue[b].weight
		})
		left, right := queue[0], queue[1]
		queue = queue[2:]
		queue = append(queue, &node{
			weight: left.weight + right.weight,
			left:   left,
			right:  right,
		})
	}
	return queue[0]
}

// codesFromTree walks root and returns one code per byte value. A tree
// with exactly one leaf (the degenerate case where every input byte is
// identical) assigns that leaf a single-bit code of value 0, per the
// specification.
func codesFromTree(root *node) (codes [256]code) {
	if root == nil {
		return codes
	}
	if root.isLeaf {
		codes[root.value] = code{len: 1}
		return codes
	}

	type frame struct {
		n      *node
		bits   [32]byte
		bitLen int
	}
	stack := []frame{{n: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n.isLeaf {
			codes[f.n.value] = code{pattern: f.bits, len: f.bitLen}
			continue
		}
		if f.bitLen >= 256 {
			xerrors.Panicf(xerrors.CorruptedInput, "huffman code exceeds maximum length of 256 bits")
		}
		leftBits := f.bits
		stack = append(stack, frame{n: f.n.left, bits: leftBits, bitLen: f.bitLen + 1})

		rightBits := f.bits
		rightBits[f.bitLen/8] |= 1 << uint(f.bitLen%8)
		stack = append(stack, frame{n: f.n.right, bits: rightBits, bitLen: f.bitLen + 1})
	}
	return codes
}

// Encode reads every byte of the input BitStream, builds a static Huffman
// code for it, and writes the frequency-table header followed by the
// bit-packed code stream to the output BitStream. The input stream must
// support rewinding; Encode rewinds it once, between the frequency scan
// and the encoding pass.
func Encode(in, out *bitio.BitStream, _ Options) (err error) {
	defer xerrors.Recover(&err)

	var freq [256]uint32
	for {
		b, rerr := in.ReadBits(8)
		if rerr != nil {
			xerrors.Panic(rerr)
		}
		if len(b) == 0 {
			break
		}
		freq[b[0]]++
	}
	if rerr := in.RewindRead(); rerr != nil {
		xerrors.Panic(rerr)
	}

	root := buildTree(freq)
	codes := codesFromTree(root)

	var hdr [headerSize]byte
	for i := 0; i < 256; i++ {
		binary.LittleEndian.PutUint32(hdr[i*4:i*4+4], freq[i])
	}
	if werr := out.WriteBits(hdr[:], headerSize*8); werr != nil {
		xerrors.Panic(werr)
	}

	for {
		b, rerr := in.ReadBits(8)
		if rerr != nil {
			xerrors.Panic(rerr)
		}
		if len(b) == 0 {
			break
		}
		c := codes[b[0]]
		if c.len == 0 {
			continue // byte never appears; spec requires this to be a no-op
		}
		if werr := out.WriteBits(c.pattern[:], c.len); werr != nil {
			xerrors.Panic(werr)
		}
	}

	if ferr := out.Flush(); ferr != nil {
		xerrors.Panic(ferr)
	}
	return nil
}

// Decode reads a frequency-table header and a bit-packed code stream from
// in, rebuilds the identical tree Encode built, and writes the decoded
// bytes to out.
func Decode(in, out *bitio.BitStream, _ Options) (err error) {
	defer xerrors.Recover(&err)

	hdr, rerr := in.ReadBits(headerSize * 8)
	if rerr != nil {
		xerrors.Panic(rerr)
	}
	if len(hdr) != headerSize {
		xerrors.Panicf(xerrors.CorruptedInput, "truncated frequency table: got %d of %d bytes", len(hdr), headerSize)
	}

	var freq [256]uint32
	var total uint64
	for i := 0; i < 256; i++ {
		freq[i] = binary.LittleEndian.Uint32(hdr[i*4 : i*4+4])
		total += uint64(freq[i])
	}

	root := buildTree(freq)
	if total == 0 {
		if ferr := out.Flush(); ferr != nil {
			xerrors.Panic(ferr)
		}
		return nil
	}

	cur := root
	for total > 0 {
		bit, rerr := in.ReadBits(1)
		if rerr != nil {
			xerrors.Panic(rerr)
		}
		if len(bit) == 0 {
			break // stream exhausted before the expected symbol count
		}
		if cur.isLeaf {
			// A single-leaf tree assigns a 1-bit code without ever
			// branching; every bit read resolves directly to the leaf.
		} else if bit[0]&1 == 0 {
			if cur.left == nil {
				xerrors.Panicf(xerrors.CorruptedInput, "huffman tree has no left child for the bit just read")
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				xerrors.Panicf(xerrors.CorruptedInput, "huffman tree has no right child for the bit just read")
			}
			cur = cur.right
		}
		if cur.isLeaf {
			if werr := out.WriteBits([]byte{cur.value}, 8); werr != nil {
				xerrors.Panic(werr)
			}
			cur = root
			total--
		}
	}

	if ferr := out.Flush(); ferr != nil {
		xerrors.Panic(ferr)
	}
	return nil
}
