// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitio

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "stream.bin")
}

// TestWriteReadScenario is scenario S1 from the specification: write a 3-bit
// pattern, a 5-bit pattern, and a full byte, and check the exact on-disk
// layout as well as the values read back.
func TestWriteReadScenario(t *testing.T) {
	path := tempPath(t)

	w, err := OpenWrite(path)
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if err := w.ClearOutput(); err != nil {
		t.Fatalf("ClearOutput: %v", err)
	}
	if err := w.WriteBits([]byte{0b101}, 3); err != nil {
		t.Fatalf("WriteBits 3: %v", err)
	}
	if err := w.WriteBits([]byte{0b01101}, 5); err != nil {
		t.Fatalf("WriteBits 5: %v", err)
	}
	if err := w.WriteBits([]byte{0xAB}, 8); err != nil {
		t.Fatalf("WriteBits 8: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	w.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []byte{0x6D, 0xAB}
	if len(raw) != len(want) || raw[0] != want[0] || raw[1] != want[1] {
		t.Fatalf("file contents = %08b, want %08b", raw, want)
	}

	r, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()

	got3, err := r.ReadBits(3)
	if err != nil || len(got3) != 1 || got3[0] != 0b101 {
		t.Fatalf("ReadBits(3) = %v, %v, want [0b101]", got3, err)
	}
	got5, err := r.ReadBits(5)
	if err != nil || len(got5) != 1 || got5[0] != 0b01101 {
		t.Fatalf("ReadBits(5) = %v, %v, want [0b01101]", got5, err)
	}
	got8, err := r.ReadBits(8)
	if err != nil || len(got8) != 1 || got8[0] != 0xAB {
		t.Fatalf("ReadBits(8) = %v, %v, want [0xAB]", got8, err)
	}
}

func TestWrongDirection(t *testing.T) {
	path := tempPath(t)
	w, err := OpenWrite(path)
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	defer w.Close()
	if _, err := w.ReadBits(1); err == nil {
		t.Fatalf("ReadBits on write-mode stream: want error, got nil")
	}
	if err := w.RewindRead(); err == nil {
		t.Fatalf("RewindRead on write-mode stream: want error, got nil")
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	r, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()
	if err := r.ClearOutput(); err == nil {
		t.Fatalf("ClearOutput on read-mode stream: want error, got nil")
	}
	if err := r.WriteBits([]byte{1}, 1); err == nil {
		t.Fatalf("WriteBits on read-mode stream: want error, got nil")
	}
}

func TestReadPastEOF(t *testing.T) {
	path := tempPath(t)
	w, _ := OpenWrite(path)
	w.ClearOutput()
	w.WriteBits([]byte{0xFF}, 4)
	w.Flush()
	w.Close()

	r, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()

	got, err := r.ReadBits(4)
	if err != nil || len(got) != 1 || got[0] != 0x0F {
		t.Fatalf("ReadBits(4) = %v, %v, want [0x0F]", got, err)
	}
	// Only 4 bits were ever written, so the file holds one byte whose high
	// 4 bits are zero padding; asking for 100 more must return whatever is
	// available (those 4 zero bits, as one byte), not an error.
	got, err = r.ReadBits(100)
	if err != nil {
		t.Fatalf("ReadBits past EOF: %v", err)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("ReadBits past EOF = %v, want [0x00]", got)
	}
}

// TestInvolution is the universal bit-stream involution property: writing
// a sequence of (bits, len) pairs and reading them back in the same
// lengths reproduces the same bits, for sequences crossing many
// read-buffer refill boundaries.
func TestInvolution(t *testing.T) {
	path := tempPath(t)
	rng := rand.New(rand.NewSource(1))

	type write struct {
		data []byte
		n    int
	}
	var writes []write
	total := 0
	for total < 200000 {
		n := 1 + rng.Intn(40)
		data := make([]byte, (n+7)/8)
		rng.Read(data)
		// Clear the unused high bits so comparisons below are exact.
		if rem := n % 8; rem != 0 {
			data[len(data)-1] &= byte(1<<uint(rem) - 1)
		}
		writes = append(writes, write{data: data, n: n})
		total += n
	}

	w, err := OpenWrite(path)
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}
	if err := w.ClearOutput(); err != nil {
		t.Fatalf("ClearOutput: %v", err)
	}
	for _, wr := range writes {
		if err := w.WriteBits(wr.data, wr.n); err != nil {
			t.Fatalf("WriteBits: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	w.Close()

	r, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()
	for i, wr := range writes {
		got, err := r.ReadBits(wr.n)
		if err != nil {
			t.Fatalf("ReadBits #%d: %v", i, err)
		}
		if len(got) != len(wr.data) {
			t.Fatalf("ReadBits #%d length = %d, want %d", i, len(got), len(wr.data))
		}
		for j := range got {
			if got[j] != wr.data[j] {
				t.Fatalf("ReadBits #%d byte %d = %#x, want %#x", i, j, got[j], wr.data[j])
			}
		}
	}
}

func TestRewindRead(t *testing.T) {
	path := tempPath(t)
	w, _ := OpenWrite(path)
	w.ClearOutput()
	w.WriteBits([]byte{0x12, 0x34}, 16)
	w.Flush()
	w.Close()

	r, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()

	first, _ := r.ReadBits(16)
	if err := r.RewindRead(); err != nil {
		t.Fatalf("RewindRead: %v", err)
	}
	second, _ := r.ReadBits(16)
	if len(first) != len(second) || first[0] != second[0] || first[1] != second[1] {
		t.Fatalf("rewound read = %v, want %v", second, first)
	}
}
