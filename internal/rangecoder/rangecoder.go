// Package rangecoder implements the binary arithmetic (range) decoder that
// sits between the input cursor and the LZMA probability model.
//
// The algorithm and constants follow the reference LZMA SDK exactly:
// 11-bit probabilities, a 5-bit adaptation shift, and renormalization
// whenever the range drops below 1<<24. See
// other_examples/89aeb82f_TrueFurby-xz__lzma-decoder.go.go and
// google-wuffs/lib/litonlylzma for the same shape in other Go codecs.
package rangecoder

import (
	"errors"

	"github.com/ionescu007/minlzma/internal/cursor"
)

// ErrBadInit is returned when the first byte read during initialization is
// not zero, as the LZMA range coder requires.
var ErrBadInit = errors.New("rangecoder: first init byte must be zero")

// ErrShortInput is returned when the cursor does not have enough bytes left
// for the chunk's declared compressed size.
var ErrShortInput = errors.New("rangecoder: not enough input for declared size")

const (
	// probBits is the width of a probability variable: values range over
	// [0, 1<<probBits].
	probBits = 11
	probInit = 1 << (probBits - 1)
	probMax  = 1 << probBits

	// adaptShift controls how fast a probability slides towards 0 or 1
	// after each decoded bit.
	adaptShift = 5

	topValue = 1 << 24
)

// Prob is a single adaptive probability variable: the likelihood (out of
// 1<<probBits) that the next bit decoded against it is 0.
type Prob uint16

// NewProbSlice returns a slice of n probability variables, each initialized
// to 0.5 (the spec's "2^10" for 11-bit probabilities).
func NewProbSlice(n int) []Prob {
	p := make([]Prob, n)
	ResetProbSlice(p)
	return p
}

// ResetProbSlice reinitializes every entry of p to 0.5. Used on a LZMA2
// StateReset, where probability tables are not reallocated, only rewound.
func ResetProbSlice(p []Prob) {
	for i := range p {
		p[i] = probInit
	}
}

// Decoder is the range (arithmetic) decoder, Component C.
type Decoder struct {
	cur   *cursor.Cursor
	code  uint32
	rng   uint32
	count int // bytes consumed from cur since Init
}

// Init reads the 5-byte initialization sequence (a mandatory zero byte
// followed by a big-endian 32-bit code) and verifies that at least
// compressedSize-5 bytes remain in cur for the chunk body and tail.
func Init(cur *cursor.Cursor, compressedSize int) (*Decoder, error) {
	if compressedSize < 5 || cur.Remaining() < compressedSize {
		return nil, ErrShortInput
	}
	b, err := cur.Seek(5)
	if err != nil {
		return nil, err
	}
	if b[0] != 0 {
		return nil, ErrBadInit
	}
	d := &Decoder{
		cur:  cur,
		rng:  0xFFFFFFFF,
		code: uint32(b[1])<<24 | uint32(b[2])<<16 | uint32(b[3])<<8 | uint32(b[4]),
	}
	d.count = 5
	return d, nil
}

// normalize restores the invariant range >= 1<<24 by shifting in input
// bytes as needed.
func (d *Decoder) normalize() error {
	for d.rng < topValue {
		b, err := d.cur.Read()
		if err != nil {
			return err
		}
		d.rng <<= 8
		d.code = d.code<<8 | uint32(b)
		d.count++
	}
	return nil
}

// DecodeBit decodes one bit against the adaptive probability *p, updating
// it in place.
func (d *Decoder) DecodeBit(p *Prob) (uint32, error) {
	bound := (d.rng >> probBits) * uint32(*p)
	var bit uint32
	if d.code < bound {
		d.rng = bound
		*p += Prob((probMax - uint32(*p)) >> adaptShift)
		bit = 0
	} else {
		d.code -= bound
		d.rng -= bound
		*p -= Prob(uint32(*p) >> adaptShift)
		bit = 1
	}
	if err := d.normalize(); err != nil {
		return 0, err
	}
	return bit, nil
}

// DecodeDirect decodes n bits with a fixed (non-adaptive) 50/50 split,
// used for the raw high-order bits of long match distances.
func (d *Decoder) DecodeDirect(n int) (uint32, error) {
	var value uint32
	for i := 0; i < n; i++ {
		d.rng >>= 1
		d.code -= d.rng
		t := 0 - (d.code >> 31)
		d.code += d.rng & t
		value = value<<1 + (t + 1)
		if err := d.normalize(); err != nil {
			return 0, err
		}
	}
	return value, nil
}

// DecodeBitTree walks a binary tree of 1<<n-1 probability variables,
// most-significant-bit first, and returns the decoded n-bit symbol.
func (d *Decoder) DecodeBitTree(probs []Prob, n int) (uint32, error) {
	m := uint32(1)
	for i := 0; i < n; i++ {
		bit, err := d.DecodeBit(&probs[m])
		if err != nil {
			return 0, err
		}
		m = m<<1 | bit
	}
	return m - (1 << uint(n)), nil
}

// DecodeReverseBitTree is DecodeBitTree but with bits assembled
// least-significant-bit first; used for low-order position/align bits.
func (d *Decoder) DecodeReverseBitTree(probs []Prob, n int) (uint32, error) {
	m := uint32(1)
	var value uint32
	for i := 0; i < n; i++ {
		bit, err := d.DecodeBit(&probs[m])
		if err != nil {
			return 0, err
		}
		m = m<<1 | bit
		value |= bit << uint(i)
	}
	return value, nil
}

// IsComplete reports whether the decoder's final normalization tail has
// been fully consumed (code == 0), and returns the number of input bytes
// read since Init.
func (d *Decoder) IsComplete() (complete bool, consumed int) {
	return d.code == 0, d.count
}
