// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package transform implements the reversible block-level preprocessing
// stages fcodec can apply ahead of an entropy coder: the Burrows-Wheeler
// Transform, Move-To-Front, their composition, and the file-level framing
// that chunks an arbitrary-length file into Block-sized units.
package transform

import (
	"io"
	"os"

	"github.com/dsnet/fcodec/internal/xerrors"
)

// Selector names a preprocessing pipeline. It is agreed out of band
// between an encoder and a decoder; it is never persisted in a compressed
// file (see spec section 4.2 and SPEC_FULL.md section 5).
type Selector int

const (
	// None applies no preprocessing.
	None Selector = iota
	// BWTMTF runs BWT followed by MTF.
	BWTMTF
	// BWTOnly runs BWT alone.
	BWTOnly
	// MTFOnly runs MTF alone.
	MTFOnly
)

func (s Selector) String() string {
	switch s {
	case None:
		return "none"
	case BWTMTF:
		return "bwt+mtf"
	case BWTOnly:
		return "bwt"
	case MTFOnly:
		return "mtf"
	default:
		return "unknown"
	}
}

// BWTThenMTF runs BWT on b and MTF on the result, including the trailing
// index bytes BWT appends.
func BWTThenMTF(b []byte) []byte {
	return MTF(BWT(b))
}

// InverseMTFThenBWT inverts BWTThenMTF.
func InverseMTFThenBWT(b []byte) []byte {
	return InverseBWT(InverseMTF(b))
}

// Apply runs the pipeline named by sel over a single block of at most
// Block bytes. For sel == None it returns in unchanged.
func Apply(in []byte, sel Selector) []byte {
	switch sel {
	case None:
		return in
	case BWTMTF:
		return BWTThenMTF(in)
	case BWTOnly:
		return BWT(in)
	case MTFOnly:
		return MTF(in)
	default:
		xerrors.Panicf(xerrors.CorruptedInput, "unknown transform selector: %d", sel)
		panic("unreachable")
	}
}

// Inverse runs the inverse of the pipeline named by sel over a single
// transformed block.
func Inverse(in []byte, sel Selector) []byte {
	switch sel {
	case None:
		return in
	case BWTMTF:
		return InverseMTFThenBWT(in)
	case BWTOnly:
		return InverseBWT(in)
	case MTFOnly:
		return InverseMTF(in)
	default:
		xerrors.Panicf(xerrors.CorruptedInput, "unknown transform selector: %d", sel)
		panic("unreachable")
	}
}

// inputBlockSize is the chunk size read from the untransformed input,
// regardless of selector: every pipeline consumes up to Block raw bytes
// per chunk, growing only on output (BWT appends its index bytes).
func inputBlockSize() int { return Block }

// TransformFile reads path in Block-sized chunks, applies sel to each
// chunk independently (the final, possibly short, chunk is transformed at
// its actual length), and writes the concatenated result to a newly
// created or truncated file at outPath.
func TransformFile(path, outPath string, sel Selector) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return xerrors.Wrap(xerrors.IO, err, "open %q", path)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return xerrors.Wrap(xerrors.IO, err, "create %q", outPath)
	}
	defer out.Close()

	defer xerrors.Recover(&err)

	buf := make([]byte, inputBlockSize())
	for {
		n, rerr := io.ReadFull(in, buf)
		if n > 0 {
			block := Apply(buf[:n], sel)
			if _, werr := out.Write(block); werr != nil {
				xerrors.Panic(xerrors.Wrap(xerrors.IO, werr, "write transformed chunk"))
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr == io.ErrUnexpectedEOF {
			return nil
		}
		if rerr != nil {
			return xerrors.Wrap(xerrors.IO, rerr, "read %q", path)
		}
	}
}

// frameSize returns the on-disk size of a full transformed chunk for sel,
// used by InverseTransformFile to know how many bytes make up one frame.
func frameSize(sel Selector) int {
	switch sel {
	case BWTMTF, BWTOnly:
		return FrameSize
	default:
		return Block
	}
}

// InverseTransformFile reverses TransformFile: it reads path in
// frameSize(sel)-byte frames, applies the inverse of sel to each, and
// writes the concatenated result to outPath. The final frame may be
// shorter than a full frame and is inverse-transformed at its actual
// length.
func InverseTransformFile(path, outPath string, sel Selector) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return xerrors.Wrap(xerrors.IO, err, "open %q", path)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return xerrors.Wrap(xerrors.IO, err, "create %q", outPath)
	}
	defer out.Close()

	defer xerrors.Recover(&err)

	buf := make([]byte, frameSize(sel))
	for {
		n, rerr := io.ReadFull(in, buf)
		if n > 0 {
			block := Inverse(buf[:n], sel)
			if _, werr := out.Write(block); werr != nil {
				xerrors.Panic(xerrors.Wrap(xerrors.IO, werr, "write detransformed chunk"))
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr == io.ErrUnexpectedEOF {
			return nil
		}
		if rerr != nil {
			return xerrors.Wrap(xerrors.IO, rerr, "read %q", path)
		}
	}
}
