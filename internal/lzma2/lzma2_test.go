package lzma2

import (
	"errors"
	"testing"

	"github.com/ionescu007/minlzma/internal/cursor"
	"github.com/ionescu007/minlzma/internal/dictionary"
	"github.com/ionescu007/minlzma/internal/rangecoder"
)

// literalEncoder is a minimal range encoder that emits an all-literal LZMA1
// stream (lc=0, lp=0, pb=0), just enough to build known-good LZMA2 chunk
// bodies for these tests without depending on internal/lzma's unexported
// test helpers.
type literalEncoder struct {
	low       uint64
	rng       uint32
	cache     byte
	cacheSize uint64
	out       []byte
}

func newLiteralEncoder() *literalEncoder {
	return &literalEncoder{rng: 0xFFFFFFFF, cacheSize: 1}
}

func (e *literalEncoder) shiftLow() {
	if uint32(e.low>>32) != 0 || e.low < 0xFF000000 {
		temp := e.cache
		for {
			e.out = append(e.out, temp+byte(e.low>>32))
			temp = 0xFF
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = byte(e.low >> 24)
	}
	e.cacheSize++
	e.low = (e.low << 8) & 0xFFFFFFFF
}

func (e *literalEncoder) normalize() {
	for e.rng < 1<<24 {
		e.rng <<= 8
		e.shiftLow()
	}
}

func (e *literalEncoder) encodeBit(p *rangecoder.Prob, bit uint32) {
	bound := (e.rng >> 11) * uint32(*p)
	if bit == 0 {
		e.rng = bound
		*p += rangecoder.Prob((2048 - uint32(*p)) >> 5)
	} else {
		e.low += uint64(bound)
		e.rng -= bound
		*p -= rangecoder.Prob(uint32(*p) >> 5)
	}
	e.normalize()
}

func (e *literalEncoder) flush() []byte {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
	return e.out
}

// encodeAllLiterals builds a full LZMA1 raw stream for data using only
// literal packets (pb=0 so isMatch has a single context), matching
// Decoder.DecodeChunk's literal path with state held at 0 throughout (every
// literal transitions state back to 0).
func encodeAllLiterals(data []byte) []byte {
	e := newLiteralEncoder()
	isMatch := rangecoder.Prob(1 << 10)
	litProbs := rangecoder.NewProbSlice(0x300) // lc=0, lp=0: one litState

	var prev byte
	for _, b := range data {
		e.encodeBit(&isMatch, 0)
		symbol := uint32(1)
		for i := 7; i >= 0; i-- {
			bit := (uint32(b) >> uint(i)) & 1
			e.encodeBit(&litProbs[symbol], bit)
			symbol = symbol<<1 | bit
		}
		prev = b
	}
	_ = prev
	return e.flush()
}

// buildLZMAChunk assembles one full-reset LZMA2 chunk (control byte,
// information bytes, properties byte, compressed body) for an all-literal
// payload with properties byte 0 (lc=0, lp=0, pb=0).
func buildLZMAChunk(t *testing.T, data []byte) []byte {
	t.Helper()
	body := encodeAllLiterals(data)

	uncompressedSize := len(data) - 1
	compressedSize := len(body) - 1

	chunk := []byte{
		0xE0, // fullReset (0b111 -> mode bits 11), uncompressedSize high bits = 0
		byte(uncompressedSize >> 8), byte(uncompressedSize),
		byte(compressedSize >> 8), byte(compressedSize),
		0x00, // properties byte: lc=0, lp=0, pb=0
	}
	return append(chunk, body...)
}

func buildUncompressedChunk(control byte, data []byte) []byte {
	n := len(data) - 1
	chunk := []byte{control, byte(n >> 8), byte(n)}
	return append(chunk, data...)
}

func TestDecodeStreamUncompressedChunk(t *testing.T) {
	t.Parallel()

	data := []byte("raw passthrough data")
	stream := append(buildUncompressedChunk(0x01, data), 0x00)

	out := make([]byte, len(data))
	win := dictionary.New(out)
	cur := cursor.New(stream)
	d := New()
	if err := d.DecodeStream(cur, win); err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}
	if string(out) != string(data) {
		t.Fatalf("decoded = %q; want %q", out, data)
	}
}

func TestDecodeStreamLZMAChunk(t *testing.T) {
	t.Parallel()

	data := []byte("Hello, World! Hello, World!")
	stream := append(buildLZMAChunk(t, data), 0x00)

	out := make([]byte, len(data))
	win := dictionary.New(out)
	cur := cursor.New(stream)
	d := New()
	if err := d.DecodeStream(cur, win); err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}
	if string(out) != string(data) {
		t.Fatalf("decoded = %q; want %q", out, data)
	}
}

func TestDecodeStreamMixedChunks(t *testing.T) {
	t.Parallel()

	raw := []byte("raw-prefix-")
	lzmaData := []byte("compressed-suffix")

	var stream []byte
	stream = append(stream, buildUncompressedChunk(0x01, raw)...)
	stream = append(stream, buildLZMAChunk(t, lzmaData)...)
	stream = append(stream, 0x00)

	out := make([]byte, len(raw)+len(lzmaData))
	win := dictionary.New(out)
	cur := cursor.New(stream)
	d := New()
	if err := d.DecodeStream(cur, win); err != nil {
		t.Fatalf("DecodeStream error: %v", err)
	}
	want := string(raw) + string(lzmaData)
	if string(out) != want {
		t.Fatalf("decoded = %q; want %q", out, want)
	}
}

func TestSizeMatchesDecode(t *testing.T) {
	t.Parallel()

	raw := []byte("raw-prefix-")
	lzmaData := []byte("compressed-suffix")

	var stream []byte
	stream = append(stream, buildUncompressedChunk(0x01, raw)...)
	stream = append(stream, buildLZMAChunk(t, lzmaData)...)
	stream = append(stream, 0x00)

	sizeCur := cursor.New(stream)
	n, err := New().Size(sizeCur)
	if err != nil {
		t.Fatalf("Size error: %v", err)
	}
	want := len(raw) + len(lzmaData)
	if n != want {
		t.Fatalf("Size() = %d; want %d", n, want)
	}
}

func TestDecodeStreamFirstChunkMustFullReset(t *testing.T) {
	t.Parallel()

	// control byte 0xA0: state reset (0b101 -> mode bits 01) as the very
	// first chunk, which must be rejected.
	stream := []byte{0xA0, 0x00, 0x00, 0x00, 0x04}

	out := make([]byte, 1)
	win := dictionary.New(out)
	cur := cursor.New(stream)
	d := New()
	if err := d.DecodeStream(cur, win); !errors.Is(err, ErrUnexpectedReset) {
		t.Fatalf("DecodeStream error = %v; want ErrUnexpectedReset", err)
	}
}

func TestDecodeStreamSequenceTooLarge(t *testing.T) {
	t.Parallel()

	// A full-reset chunk declaring a tiny compressed size (1 byte), below
	// the minimum sequence size floor.
	stream := []byte{0xE0, 0x00, 0x00, 0x00, 0x00, 0x00}

	out := make([]byte, 1)
	win := dictionary.New(out)
	cur := cursor.New(stream)
	d := New()
	if err := d.DecodeStream(cur, win); !errors.Is(err, ErrSequenceTooLarge) {
		t.Fatalf("DecodeStream error = %v; want ErrSequenceTooLarge", err)
	}
}
