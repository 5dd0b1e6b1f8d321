// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zenbitmaps

import "math"

// byteReader is a bounds-checked cursor over an immutable byte slice. Every
// read fails with ErrTruncated when fewer bytes remain than requested;
// position never advances past the end of data.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader {
	return &byteReader{data: data}
}

// remaining returns the number of unread bytes.
func (r *byteReader) remaining() int {
	return len(r.data) - r.pos
}

// position returns the current cursor offset.
func (r *byteReader) position() int {
	return r.pos
}

// require fails with ErrTruncated unless at least n bytes remain, guarding
// against pos+n overflowing an int.
func (r *byteReader) require(n int) error {
	if n < 0 || r.pos > len(r.data)-n {
		return ErrTruncated
	}
	return nil
}

func (r *byteReader) readU8() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *byteReader) readU16LE() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := uint16(r.data[r.pos]) | uint16(r.data[r.pos+1])<<8
	r.pos += 2
	return v, nil
}

func (r *byteReader) readU16BE() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v, nil
}

func (r *byteReader) readU32LE() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos]) | uint32(r.data[r.pos+1])<<8 |
		uint32(r.data[r.pos+2])<<16 | uint32(r.data[r.pos+3])<<24
	r.pos += 4
	return v, nil
}

func (r *byteReader) readU32BE() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := uint32(r.data[r.pos])<<24 | uint32(r.data[r.pos+1])<<16 |
		uint32(r.data[r.pos+2])<<8 | uint32(r.data[r.pos+3])
	r.pos += 4
	return v, nil
}

func (r *byteReader) readI32LE() (int32, error) {
	v, err := r.readU32LE()
	return int32(v), err
}

func (r *byteReader) readF32LE() (float32, error) {
	v, err := r.readU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *byteReader) readF32BE() (float32, error) {
	v, err := r.readU32BE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// readSlice returns the next n bytes as a subslice of the underlying data
// (no copy) and advances the cursor.
func (r *byteReader) readSlice(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	s := r.data[r.pos : r.pos+n]
	r.pos += n
	return s, nil
}

// skip advances the cursor by n bytes without returning them.
func (r *byteReader) skip(n int) error {
	if err := r.require(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// seekTo moves the cursor to an absolute offset, which must lie within data.
func (r *byteReader) seekTo(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return ErrTruncated
	}
	r.pos = offset
	return nil
}

// peekU8 returns the next byte without advancing the cursor.
func (r *byteReader) peekU8() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	return r.data[r.pos], nil
}
