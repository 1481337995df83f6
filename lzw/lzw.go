// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lzw implements an enhanced LZW codec: an append-only
// linked-list dictionary with a reverse index for O(1) membership checks,
// 16-bit little-endian codes, and an optional dictionary-reset sentinel
// once the dictionary fills up.
package lzw

import (
	"encoding/binary"

	"github.com/dsnet/fcodec/internal/xerrors"
)

// clearSymbol is the reserved code that signals the decoder to
// reinitialize its dictionary. It is never assignable as a real
// dictionary index.
const clearSymbol = 0xFFFF

// maxMaxDictSize is the largest dictionary size the encoder will ever
// configure; it leaves clearSymbol unused as a real index.
const maxMaxDictSize = 0xFFFF

// noPredecessor marks a dictionary entry with no predecessor (the base
// 256-entry alphabet). Go has no built-in optional-integer type, so -1 is
// used, keeping entry a plain comparable struct that also serves as the
// reverse index's map key; it mirrors Option<u16>::None in the source
// this was distilled from.
const noPredecessor = -1

// entry is a single dictionary entry: a trailing byte and an optional
// predecessor index. Entries 0..255 are the base alphabet with no
// predecessor; entry i >= 256 encodes the string obtained by following
// predecessor links back to a base entry and reversing.
type entry struct {
	trailing    byte
	predecessor int32 // noPredecessor, or an index into dict
}

// dictionary is the append-only LZW dictionary plus its reverse index.
type dictionary struct {
	entries []entry
	index   map[entry]int // entry -> dictionary index holding it
	max     int
}

func newDictionary(max int) *dictionary {
	d := &dictionary{max: max}
	d.reset()
	return d
}

func (d *dictionary) reset() {
	d.entries = make([]entry, 256, d.max)
	d.index = make(map[entry]int, d.max)
	for i := 0; i < 256; i++ {
		e := entry{trailing: byte(i), predecessor: noPredecessor}
		d.entries[i] = e
		d.index[e] = i
	}
}

// find returns the dictionary index holding (c, pred), if any.
func (d *dictionary) find(c byte, pred int32) (int, bool) {
	idx, ok := d.index[entry{trailing: c, predecessor: pred}]
	return idx, ok
}

// add appends (c, pred) to the dictionary and returns true, or returns
// false without modifying the dictionary if it is already at capacity.
func (d *dictionary) add(c byte, pred int32) bool {
	if len(d.entries) >= d.max {
		return false
	}
	e := entry{trailing: c, predecessor: pred}
	d.index[e] = len(d.entries)
	d.entries = append(d.entries, e)
	return true
}

func (d *dictionary) lastIndex() int32 { return int32(len(d.entries) - 1) }

// sequence walks predecessor links from idx back to a base entry and
// returns the resulting byte string in forward order.
func (d *dictionary) sequence(idx int32) ([]byte, bool) {
	if int(idx) < 0 || int(idx) >= len(d.entries) {
		return nil, false
	}
	var rev []byte
	for {
		e := d.entries[idx]
		rev = append(rev, e.trailing)
		if e.predecessor == noPredecessor {
			break
		}
		idx = e.predecessor
	}
	out := make([]byte, len(rev))
	for i, b := range rev {
		out[len(rev)-1-i] = b
	}
	return out, true
}

// Options configures the LZW codec's dictionary-reset behavior.
type Options struct {
	// ResetOnFull, when true, makes a full encoder dictionary emit the
	// 0xFFFF sentinel and start over from the base alphabet instead of
	// freezing. The decoder always honors whichever choice the header
	// records, regardless of this field.
	ResetOnFull bool
}

// Encode compresses in (already run through any preprocessing transform
// the caller wants applied) and returns the on-disk byte sequence: a
// 3-byte header followed by 16-bit little-endian codes.
func Encode(in []byte, opts Options) []byte {
	var out []byte
	flags := byte(0)
	if opts.ResetOnFull {
		flags = 1
	}
	out = append(out, flags)
	var maxBuf [2]byte
	binary.LittleEndian.PutUint16(maxBuf[:], uint16(maxMaxDictSize-1))
	out = append(out, maxBuf[:]...)

	dict := newDictionary(maxMaxDictSize)

	var cur int32 = noPredecessor
	haveCur := false
	emit := func(code int32) {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(code))
		out = append(out, b[:]...)
	}

	for _, c := range in {
		if haveCur {
			if idx, ok := dict.find(c, cur); ok {
				cur = int32(idx)
				continue
			}
			emit(cur)
			added := dict.add(c, cur)
			if !added && opts.ResetOnFull {
				dict.reset()
				emit(clearSymbol)
			}
			cur = int32(c)
		} else {
			cur = int32(c)
			haveCur = true
		}
	}
	if haveCur {
		emit(cur)
	}
	return out
}

// Decode reverses Encode, reading the 3-byte header from in to learn the
// dictionary-reset flag and maximum dictionary size.
func Decode(in []byte) (out []byte, err error) {
	defer xerrors.Recover(&err)

	if len(in) < 3 {
		xerrors.Panicf(xerrors.CorruptedInput, "lzw stream shorter than its 3-byte header")
	}
	resetOnFull := in[0] != 0
	maxDictSize := int(binary.LittleEndian.Uint16(in[1:3])) + 1
	if maxDictSize > 65536 {
		maxDictSize = 65536
	}
	_ = resetOnFull // the decoder honors the sentinel whenever it appears regardless of this flag

	codes := in[3:]
	if len(codes)%2 != 0 {
		xerrors.Panicf(xerrors.CorruptedInput, "lzw code stream has an odd number of bytes")
	}

	dict := newDictionary(maxDictSize)

	readCode := func(i int) int32 {
		return int32(binary.LittleEndian.Uint16(codes[i : i+2]))
	}

	n := len(codes) / 2
	if n == 0 {
		return nil, nil
	}

	var oldI int32
	isFirst := true
	for i := 0; i < n; i++ {
		code := readCode(i * 2)

		if isFirst {
			seq, ok := dict.sequence(code)
			if !ok || len(seq) != 1 {
				xerrors.Panicf(xerrors.CorruptedInput, "first lzw code %d not in base dictionary", code)
			}
			out = append(out, seq...)
			oldI = code
			isFirst = false
			continue
		}

		if code == clearSymbol {
			dict.reset()
			isFirst = true
			continue
		}

		if seq, ok := dict.sequence(code); ok {
			out = append(out, seq...)
			dict.add(seq[0], oldI)
			oldI = code
			continue
		}

		// Classic LZW cover case: code not yet in the dictionary.
		oldSeq, ok := dict.sequence(oldI)
		if !ok {
			xerrors.Panicf(xerrors.CorruptedInput, "lzw code %d references a missing predecessor", code)
		}
		out = append(out, oldSeq...)
		out = append(out, oldSeq[0])
		dict.add(oldSeq[0], oldI)
		oldI = dict.lastIndex()
	}
	return out, nil
}
