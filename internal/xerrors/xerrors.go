// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package xerrors provides the Kind-tagged error type shared by every
// codec package in fcodec, along with a small panic/recover convention
// that keeps decode loops free of explicit error threading.
package xerrors

import (
	"fmt"
	"runtime"
)

// Kind classifies an Error to let callers branch on failure category
// without string matching.
type Kind uint8

const (
	// Other is the zero value; it is not produced by this module but
	// exists so a zero Error is not mistaken for a specific kind.
	Other Kind = iota

	// WrongDirection indicates a read API was invoked on a write-mode
	// BitStream, or vice versa.
	WrongDirection

	// IO indicates the underlying file I/O failed; the triggering error
	// is available via Unwrap.
	IO

	// CorruptedInput indicates the decoder observed data it cannot make
	// sense of: an LZW code absent from the dictionary, a Huffman walk
	// into a missing child, or a malformed transform frame.
	CorruptedInput

	// DictionaryFull names the condition of an LZW dictionary insertion
	// refused because the dictionary has reached its configured maximum
	// size. The lzw package handles that condition (freeze or reset)
	// through a boolean result and never creates an error of this kind.
	DictionaryFull
)

func (k Kind) String() string {
	switch k {
	case WrongDirection:
		return "wrong direction"
	case IO:
		return "I/O error"
	case CorruptedInput:
		return "corrupted input"
	case DictionaryFull:
		return "dictionary full"
	default:
		return "error"
	}
}

// Error is the error type produced by every fcodec package.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("fcodec: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("fcodec: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a new Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a new Error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Panic panics with err so that a deferred Recover can turn it back into
// a normal error return. Codecs use this to write straight-line decode
// loops instead of threading an error out of every helper call.
func Panic(err error) {
	panic(err)
}

// Panicf is a convenience wrapper combining New and Panic.
func Panicf(kind Kind, format string, args ...interface{}) {
	panic(New(kind, format, args...))
}

// Recover must be called via defer at the top of any function that calls
// Panic or Panicf internally. On a panic carrying an *Error (or any
// error), it stores the error into *errp and stops the panic. Any other
// panic value (including a runtime.Error) propagates unchanged, since it
// indicates a genuine bug rather than an expected failure mode.
func Recover(errp *error) {
	switch v := recover().(type) {
	case nil:
		return
	case runtime.Error:
		panic(v)
	case error:
		*errp = v
	default:
		panic(v)
	}
}
