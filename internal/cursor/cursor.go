// Package cursor implements a bounds-checked reader over an in-memory,
// fully-buffered input. It is the sole way the rest of the decoder touches
// the caller's input bytes: every read or seek is checked against the
// buffer's size, and callers never see a slice that extends past it.
package cursor

import "errors"

// ErrOverrun is returned when a read or seek would advance past the end of
// the input buffer.
var ErrOverrun = errors.New("cursor: read past end of input")

// ErrPadding is returned by Align4 when a non-zero byte is found in the
// padding region.
var ErrPadding = errors.New("cursor: non-zero padding byte")

// Cursor is a read-only, offset-advancing view over a byte slice.
//
// It holds no copy of the data: buf is borrowed from the caller for the
// lifetime of the decode. The zero value is not usable; construct with New.
type Cursor struct {
	buf    []byte
	offset int
}

// New creates a Cursor over buf, positioned at offset zero.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the total size of the input buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Offset returns the current read offset.
func (c *Cursor) Offset() int {
	return c.offset
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.offset
}

// Seek returns a slice of n bytes starting at the current offset and
// advances the offset by n. It fails if fewer than n bytes remain.
func (c *Cursor) Seek(n int) ([]byte, error) {
	if n < 0 || c.offset+n > len(c.buf) {
		return nil, ErrOverrun
	}
	b := c.buf[c.offset : c.offset+n]
	c.offset += n
	return b, nil
}

// Read returns the next byte and advances the offset by one.
func (c *Cursor) Read() (byte, error) {
	b, err := c.Seek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Slice returns the bytes in [from, to) of the input buffer without moving
// the current offset. Used by callers that need to recompute a checksum
// over a region already consumed via Read/Seek, mirroring the reference
// decoder's habit of saving a raw pointer before and after parsing a
// structure and hashing the span between them.
func (c *Cursor) Slice(from, to int) ([]byte, error) {
	if from < 0 || to > len(c.buf) || from > to {
		return nil, ErrOverrun
	}
	return c.buf[from:to], nil
}

// Align4 reads bytes until the offset is a multiple of four. Every byte read
// this way must be zero, matching the XZ format's zero-padding requirement.
func (c *Cursor) Align4() error {
	for c.offset&3 != 0 {
		b, err := c.Read()
		if err != nil {
			return err
		}
		if b != 0 {
			return ErrPadding
		}
	}
	return nil
}
