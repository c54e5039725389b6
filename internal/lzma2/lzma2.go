// Package lzma2 implements the LZMA2 chunk driver: parsing the control
// byte, uncompressed/compressed size fields and reset mode of each chunk,
// and dispatching to either a raw copy-through or the LZMA sequence
// decoder.
//
// The chunk layout and reset semantics are grounded on
// original_source/minlzlib/lzma2dec.c (Lz2DecodeStream, Lz2DecodeChunk),
// extended here to also support uncompressed chunks and the
// StateReset/PropertyReset modes that minlzlib's single-reset-only driver
// does not implement.
package lzma2

import (
	"errors"

	"github.com/ionescu007/minlzma/internal/cursor"
	"github.com/ionescu007/minlzma/internal/dictionary"
	"github.com/ionescu007/minlzma/internal/lzma"
	"github.com/ionescu007/minlzma/internal/rangecoder"
)

// ErrSequenceTooLarge is returned when a chunk's declared compressed size
// cannot possibly hold a single LZMA sequence's worst case encoding,
// mirroring minlzlib's LZMA_MAX_SEQUENCE_SIZE guard.
var ErrSequenceTooLarge = errors.New("lzma2: compressed size below minimum sequence size")

// ErrUnexpectedReset is returned when a chunk requests a reset mode that is
// invalid in context, such as the very first chunk not being a full reset,
// or a StateReset/PropertyReset/NoReset chunk appearing before any full
// reset has established LZMA state.
var ErrUnexpectedReset = errors.New("lzma2: first chunk must be a full reset")

// ErrRangeDesync is returned when the range coder does not end exactly on
// a zero residual code at the chunk's declared compressed size.
var ErrRangeDesync = errors.New("lzma2: range coder did not terminate cleanly")

// ErrDictionaryMismatch is returned when a chunk does not write exactly as
// many bytes as it declared.
var ErrDictionaryMismatch = errors.New("lzma2: uncompressed size mismatch")

// ErrBadControlByte is returned for a control byte in the unused
// 0x03-0x7F range (uncompressed chunk marker with reserved bits set).
var ErrBadControlByte = errors.New("lzma2: invalid control byte")

// lzmaMaxSequenceSize is the largest number of input bytes a single LZMA
// sequence (the worst-case literal/match/rep packet) can consume; minlzlib
// uses it as a sanity floor on a compressed chunk's declared size.
const lzmaMaxSequenceSize = 21

// resetMode is the two-bit reset field of a LZMA chunk's control byte.
type resetMode int

const (
	noReset resetMode = iota
	stateReset
	propertyReset
	fullReset
)

// Decoder drives the LZMA2 chunk stream, owning the single persistent LZMA
// sequence decoder that survives across NoReset and StateReset chunks.
type Decoder struct {
	lz            *lzma.Decoder
	sawChunk      bool
	haveLZMAState bool // true once a full or property reset has run
}

// New creates a chunk driver with no LZMA state yet; the first chunk
// encountered must be a full reset.
func New() *Decoder {
	return &Decoder{}
}

// Size reads LZMA2 chunks from cur until the terminating zero control
// byte, validating framing and reset ordering without running the range
// coder or LZMA decoder, and returns the total uncompressed size.
func (d *Decoder) Size(cur *cursor.Cursor) (int, error) {
	total := 0
	for {
		control, err := cur.Read()
		if err != nil {
			return 0, err
		}
		if control == 0 {
			return total, nil
		}
		if control&0x80 == 0 {
			n, err := d.sizeUncompressedChunk(cur, control)
			if err != nil {
				return 0, err
			}
			total += n
			continue
		}
		n, err := d.sizeLZMAChunk(cur, control)
		if err != nil {
			return 0, err
		}
		total += n
	}
}

// DecodeStream reads LZMA2 chunks from cur, writing decoded output into
// win, until the terminating zero control byte.
func (d *Decoder) DecodeStream(cur *cursor.Cursor, win *dictionary.Window) error {
	for {
		control, err := cur.Read()
		if err != nil {
			return err
		}
		if control == 0 {
			return nil
		}
		if control&0x80 == 0 {
			if err := d.decodeUncompressedChunk(cur, win, control); err != nil {
				return err
			}
			continue
		}
		if err := d.decodeLZMAChunk(cur, win, control); err != nil {
			return err
		}
	}
}

func uncompressedChunkSize(cur *cursor.Cursor, control byte) (int, error) {
	if control != 0x01 && control != 0x02 {
		return 0, ErrBadControlByte
	}
	sizeBytes, err := cur.Seek(2)
	if err != nil {
		return 0, err
	}
	return int(sizeBytes[0])<<8 + int(sizeBytes[1]) + 1, nil
}

func (d *Decoder) sizeUncompressedChunk(cur *cursor.Cursor, control byte) (int, error) {
	n, err := uncompressedChunkSize(cur, control)
	if err != nil {
		return 0, err
	}
	if _, err := cur.Seek(n); err != nil {
		return 0, err
	}
	d.haveLZMAState = false
	return n, nil
}

// decodeUncompressedChunk handles control bytes 0x01 (dictionary reset) and
// 0x02 (no dictionary reset): a literal copy of UncompressedSize bytes.
func (d *Decoder) decodeUncompressedChunk(cur *cursor.Cursor, win *dictionary.Window, control byte) error {
	n, err := uncompressedChunkSize(cur, control)
	if err != nil {
		return err
	}
	if err := win.SetLimit(n); err != nil {
		return err
	}
	raw, err := cur.Seek(n)
	if err != nil {
		return err
	}
	for _, b := range raw {
		if err := win.Put(b); err != nil {
			return err
		}
	}
	complete, written := win.IsComplete()
	if !complete || written != n {
		return ErrDictionaryMismatch
	}

	// An uncompressed chunk carries no LZMA state of its own; the reference
	// decoder requires the next LZMA chunk (if any) to start with a fresh
	// reset rather than resuming stale state or properties.
	d.haveLZMAState = false
	return nil
}

// lzmaChunkHeader is the parsed information-byte header common to both the
// sizing and decoding paths of a 0x80-0xFF control byte.
type lzmaChunkHeader struct {
	mode             resetMode
	uncompressedSize int
	compressedSize   int
}

func readLZMAChunkHeader(cur *cursor.Cursor, control byte) (lzmaChunkHeader, error) {
	var h lzmaChunkHeader
	h.mode = resetMode((control >> 5) & 0x3)
	uncompressedSizeHigh := uint32(control & 0x1F)

	info, err := cur.Seek(4)
	if err != nil {
		return h, err
	}
	h.uncompressedSize = int(uncompressedSizeHigh<<16) + int(info[0])<<8 + int(info[1]) + 1
	h.compressedSize = int(info[2])<<8 + int(info[3]) + 1
	return h, nil
}

func (d *Decoder) sizeLZMAChunk(cur *cursor.Cursor, control byte) (int, error) {
	h, err := readLZMAChunkHeader(cur, control)
	if err != nil {
		return 0, err
	}
	if !d.sawChunk && h.mode != fullReset {
		return 0, ErrUnexpectedReset
	}
	d.sawChunk = true

	if h.mode == fullReset || h.mode == propertyReset {
		propByte, err := cur.Read()
		if err != nil {
			return 0, err
		}
		if _, err := lzma.ParseProperties(propByte); err != nil {
			return 0, err
		}
		d.haveLZMAState = true
	} else if !d.haveLZMAState {
		return 0, ErrUnexpectedReset
	}

	if _, err := cur.Seek(h.compressedSize); err != nil {
		return 0, err
	}
	return h.uncompressedSize, nil
}

// decodeLZMAChunk handles control bytes 0x80-0xFF: an LZMA-compressed
// chunk with an information-byte size header, an optional reset, and an
// arithmetic-coded body.
func (d *Decoder) decodeLZMAChunk(cur *cursor.Cursor, win *dictionary.Window, control byte) error {
	h, err := readLZMAChunkHeader(cur, control)
	if err != nil {
		return err
	}
	if !d.sawChunk && h.mode != fullReset {
		return ErrUnexpectedReset
	}
	d.sawChunk = true

	switch h.mode {
	case fullReset:
		propByte, err := cur.Read()
		if err != nil {
			return err
		}
		props, err := lzma.ParseProperties(propByte)
		if err != nil {
			return err
		}
		d.lz = lzma.New(props)
	case propertyReset:
		propByte, err := cur.Read()
		if err != nil {
			return err
		}
		props, err := lzma.ParseProperties(propByte)
		if err != nil {
			return err
		}
		if d.lz == nil {
			return ErrUnexpectedReset
		}
		d.lz.ResetStateAndProperties(props)
	case stateReset:
		if d.lz == nil {
			return ErrUnexpectedReset
		}
		d.lz.ResetState()
	case noReset:
		if d.lz == nil {
			return ErrUnexpectedReset
		}
	}

	if h.compressedSize < lzmaMaxSequenceSize {
		return ErrSequenceTooLarge
	}
	if err := win.SetLimit(h.uncompressedSize); err != nil {
		return err
	}

	rc, err := rangecoder.Init(cur, h.compressedSize)
	if err != nil {
		return err
	}
	if err := d.lz.DecodeChunk(rc, win); err != nil {
		return err
	}

	complete, consumed := rc.IsComplete()
	if !complete || consumed != h.compressedSize {
		return ErrRangeDesync
	}
	complete, written := win.IsComplete()
	if !complete || written != h.uncompressedSize {
		return ErrDictionaryMismatch
	}
	return nil
}
