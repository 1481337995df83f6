// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package fcodec is a file compression/decompression toolkit combining
// static Huffman and enhanced LZW entropy coders with optional BWT/MTF
// block preprocessing.
//
// The entropy coders and the preprocessing transforms are implemented in
// the huffman, lzw, and transform subpackages; this package is the thin
// file-to-file orchestration layer spec section 6 describes as the
// "Huffman-compressed file" and "LZW-compressed file" formats. The
// transform selector used to compress a file is never persisted in the
// output — callers must pass the same transform.Selector to decompress
// that they used to compress.
package fcodec

import (
	"os"

	"github.com/dsnet/fcodec/bitio"
	"github.com/dsnet/fcodec/huffman"
	"github.com/dsnet/fcodec/internal/xerrors"
	"github.com/dsnet/fcodec/lzw"
	"github.com/dsnet/fcodec/transform"
)

// CompressHuffman compresses the file at inPath into outPath using the
// static Huffman codec, after optionally running it through the given
// transform. outPath is truncated if it already exists.
func CompressHuffman(inPath, outPath string, sel transform.Selector) error {
	src := inPath
	if sel != transform.None {
		tmp := outPath + ".transform.tmp"
		if err := transform.TransformFile(inPath, tmp, sel); err != nil {
			return err
		}
		defer os.Remove(tmp)
		src = tmp
	}

	in, err := bitio.OpenRead(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := bitio.OpenWrite(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.ClearOutput(); err != nil {
		return err
	}

	return huffman.Encode(in, out, huffman.Options{})
}

// DecompressHuffman reverses CompressHuffman. sel must be the same
// selector that was used to compress the file.
func DecompressHuffman(inPath, outPath string, sel transform.Selector) error {
	in, err := bitio.OpenRead(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	dst := outPath
	if sel != transform.None {
		dst = outPath + ".transform.tmp"
	}

	out, err := bitio.OpenWrite(dst)
	if err != nil {
		return err
	}
	if err := out.ClearOutput(); err != nil {
		out.Close()
		return err
	}
	if err := huffman.Decode(in, out, huffman.Options{}); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if sel != transform.None {
		defer os.Remove(dst)
		return transform.InverseTransformFile(dst, outPath, sel)
	}
	return nil
}

// CompressLZW compresses the file at inPath into outPath using the
// enhanced LZW codec, after optionally running it through the given
// transform. outPath is truncated if it already exists.
func CompressLZW(inPath, outPath string, sel transform.Selector, opts lzw.Options) (err error) {
	defer xerrors.Recover(&err)

	src := inPath
	if sel != transform.None {
		tmp := outPath + ".transform.tmp"
		if terr := transform.TransformFile(inPath, tmp, sel); terr != nil {
			xerrors.Panic(terr)
		}
		defer os.Remove(tmp)
		src = tmp
	}

	data, rerr := os.ReadFile(src)
	if rerr != nil {
		xerrors.Panic(xerrors.Wrap(xerrors.IO, rerr, "read %q", src))
	}

	encoded := lzw.Encode(data, opts)

	if werr := os.WriteFile(outPath, encoded, 0644); werr != nil {
		xerrors.Panic(xerrors.Wrap(xerrors.IO, werr, "write %q", outPath))
	}
	return nil
}

// DecompressLZW reverses CompressLZW. sel must be the same selector that
// was used to compress the file.
func DecompressLZW(inPath, outPath string, sel transform.Selector) (err error) {
	defer xerrors.Recover(&err)

	data, rerr := os.ReadFile(inPath)
	if rerr != nil {
		xerrors.Panic(xerrors.Wrap(xerrors.IO, rerr, "read %q", inPath))
	}

	decoded, derr := lzw.Decode(data)
	if derr != nil {
		xerrors.Panic(derr)
	}

	if sel == transform.None {
		if werr := os.WriteFile(outPath, decoded, 0644); werr != nil {
			xerrors.Panic(xerrors.Wrap(xerrors.IO, werr, "write %q", outPath))
		}
		return nil
	}

	tmp := outPath + ".transform.tmp"
	if werr := os.WriteFile(tmp, decoded, 0644); werr != nil {
		xerrors.Panic(xerrors.Wrap(xerrors.IO, werr, "write %q", tmp))
	}
	defer os.Remove(tmp)

	if terr := transform.InverseTransformFile(tmp, outPath, sel); terr != nil {
		xerrors.Panic(terr)
	}
	return nil
}
