// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package transform

// moveToFront implements the Move-To-Front transform over the full
// 256-byte alphabit, as used by the file-level transform wrappers. Its
// state is a single 256-entry table that reset restores to identity
// order; MTF and InverseMTF drive it. There is no run-length-of-zeros
// stage: this MTF is the plain transform, one output byte per input byte.
type moveToFront struct {
	table [256]byte
}

func newMoveToFront() *moveToFront {
	m := new(moveToFront)
	m.reset()
	return m
}

func (m *moveToFront) reset() {
	for i := range m.table {
		m.table[i] = byte(i)
	}
}

// MTF runs the Move-To-Front transform over in, returning one output byte
// per input byte: the current position of that byte in a self-adjusting
// 256-entry alphabet, after which the byte is moved to the front.
func MTF(in []byte) []byte {
	m := newMoveToFront()
	out := make([]byte, len(in))
	for i, c := range in {
		idx := m.indexOf(c)
		out[i] = byte(idx)
		m.moveToFront(idx)
	}
	return out
}

// InverseMTF reverses MTF: for each index in in, it looks up the byte
// currently occupying that position, emits it, and moves it to the front.
func InverseMTF(in []byte) []byte {
	m := newMoveToFront()
	out := make([]byte, len(in))
	for i, idx := range in {
		c := m.table[idx]
		out[i] = c
		m.moveToFront(int(idx))
	}
	return out
}

func (m *moveToFront) indexOf(c byte) int {
	for i, v := range m.table {
		if v == c {
			return i
		}
	}
	panic("moveToFront: byte missing from table") // unreachable: table holds all 256 byte values
}

func (m *moveToFront) moveToFront(idx int) {
	c := m.table[idx]
	copy(m.table[1:idx+1], m.table[:idx])
	m.table[0] = c
}
