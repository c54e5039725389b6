// Package dictionary implements the LZMA2 sliding window: the rolling
// history of produced output bytes that literals are appended to and that
// LZ77 matches copy from.
//
// Unlike a classic ring buffer, this window is backed by the caller's full
// output buffer (the decoder is fully buffered, never streaming — see
// spec.md §1 Non-goals), so "history" is simply "everything written so far
// in this buffer". A per-chunk limit bounds how far a single LZMA2 chunk is
// allowed to write.
package dictionary

import "errors"

// ErrFull is returned by Put when the window has already reached its
// current limit.
var ErrFull = errors.New("dictionary: write would exceed chunk limit")

// ErrLimitExceedsCapacity is returned by SetLimit when the requested limit
// would write past the end of the output buffer.
var ErrLimitExceedsCapacity = errors.New("dictionary: limit exceeds output capacity")

// ErrDistance is returned by CopyMatch when the requested distance reaches
// further back than any byte produced so far.
var ErrDistance = errors.New("dictionary: match distance exceeds history")

// Window is the sliding-window dictionary, Component B of the decoder.
type Window struct {
	buf        []byte
	writePos   int
	limit      int
	chunkStart int // writePos as of the most recent SetLimit call
}

// New creates a Window over buf. writePos and limit both start at zero: no
// chunk may write until SetLimit is called.
func New(buf []byte) *Window {
	return &Window{buf: buf}
}

// WritePos returns the current write position (bytes produced so far).
func (w *Window) WritePos() int {
	return w.writePos
}

// Cap returns the total capacity of the output buffer.
func (w *Window) Cap() int {
	return len(w.buf)
}

// SetLimit extends how far the window may be written for the upcoming
// chunk. It fails if writePos+n would exceed the output buffer's capacity.
func (w *Window) SetLimit(n int) error {
	if n < 0 || w.writePos+n > len(w.buf) {
		return ErrLimitExceedsCapacity
	}
	w.chunkStart = w.writePos
	w.limit = w.writePos + n
	return nil
}

// Put appends a single literal byte.
func (w *Window) Put(b byte) error {
	if w.writePos == w.limit {
		return ErrFull
	}
	w.buf[w.writePos] = b
	w.writePos++
	return nil
}

// GetByte returns the byte at the given distance behind the current write
// position (distance 0 is the most recently written byte). ok is false if
// distance reaches further back than any byte produced so far.
func (w *Window) GetByte(distance int) (b byte, ok bool) {
	if distance >= w.writePos {
		return 0, false
	}
	return w.buf[w.writePos-1-distance], true
}

// CopyMatch copies length bytes from distance behind the write position,
// one byte at a time so that overlapping copies (distance < length) replay
// correctly — this is what lets a match encode a long run from a short
// repeated pattern.
func (w *Window) CopyMatch(distance, length int) error {
	if distance >= w.writePos {
		return ErrDistance
	}
	if w.writePos+length > w.limit {
		return ErrFull
	}
	for i := 0; i < length; i++ {
		w.buf[w.writePos] = w.buf[w.writePos-1-distance]
		w.writePos++
	}
	return nil
}

// IsComplete reports whether the window has been filled exactly to its
// current limit, and returns the number of bytes written since the most
// recent SetLimit call (i.e. the size of the chunk just finished).
func (w *Window) IsComplete() (complete bool, written int) {
	return w.writePos == w.limit, w.writePos - w.chunkStart
}

// Bytes returns the produced output so far, from the start of the buffer up
// to the current write position. Used by the container layer to compute a
// checksum over the whole decompressed block.
func (w *Window) Bytes() []byte {
	return w.buf[:w.writePos]
}
