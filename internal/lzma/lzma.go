// Package lzma implements the LZMA sequence decoder: the 12-state
// literal/match/rep state machine that sits on top of the range coder and
// drives the sliding-window dictionary.
//
// The state machine, probability layout and bit-tree shapes follow the
// reference LZMA SDK exactly, the same shape used by
// other_examples/89aeb82f_TrueFurby-xz__lzma-decoder.go.go and
// other_examples/ab37e7f1_ulikunitz-xz__lzma-raw_reader.go.go.
package lzma

import (
	"errors"

	"github.com/ionescu007/minlzma/internal/dictionary"
	"github.com/ionescu007/minlzma/internal/rangecoder"
)

// ErrInvalidProperties is returned when a properties byte decodes to an
// out-of-range (lc, lp, pb) triple.
var ErrInvalidProperties = errors.New("lzma: invalid properties byte")

// ErrBadDistance is returned when a decoded match or rep distance points
// further back than the dictionary has produced so far.
var ErrBadDistance = errors.New("lzma: match distance exceeds history")

const (
	numStates      = 12
	numPosBitsMax  = 4
	numPosStatesMax = 1 << numPosBitsMax

	minMatchLen = 2

	numPosSlotBits    = 6
	numLenToPosStates = 4
	numAlignBits      = 4
	alignTableSize    = 1 << numAlignBits
	startPosModelIdx  = 4
	endPosModelIdx    = 14
	numFullDistances  = 1 << (endPosModelIdx >> 1)
	// specPosSize includes one unused slot at index 0: DecodeReverseBitTree
	// never touches index m=0 of the slice it is given, only m=1 upward.
	specPosSize = numFullDistances - endPosModelIdx + 1

	// endOfStreamDistance is the sentinel raw distance value (all bits
	// set) that marks an explicit end-of-stream marker in place of a
	// real match.
	endOfStreamDistance = 1<<32 - 1
)

// Properties holds the three LZMA model parameters packed into the
// properties byte that precedes every full reset: literal context bits,
// literal position bits and position bits.
type Properties struct {
	LC int
	LP int
	PB int
}

// ParseProperties decodes a properties byte as (pb*5+lp)*9+lc and verifies
// that lc+lp does not exceed 4, the limit minlzma enforces on its literal
// probability table size.
func ParseProperties(b byte) (Properties, error) {
	var p Properties
	v := int(b)
	if v >= 9*5*5 {
		return p, ErrInvalidProperties
	}
	p.LC = v % 9
	v /= 9
	p.LP = v % 5
	v /= 5
	p.PB = v
	if p.PB > 4 || p.LC+p.LP > 4 {
		return p, ErrInvalidProperties
	}
	return p, nil
}

// lenCoder decodes a match length: 2-9 via Low, 10-17 via Mid, 18-273 via
// High, selected by the two Choice bits.
type lenCoder struct {
	choice  rangecoder.Prob
	choice2 rangecoder.Prob
	low     []rangecoder.Prob // numPosStatesMax * 8
	mid     []rangecoder.Prob // numPosStatesMax * 8
	high    []rangecoder.Prob // 256
}

func newLenCoder() *lenCoder {
	l := &lenCoder{
		low:  rangecoder.NewProbSlice(numPosStatesMax * 8),
		mid:  rangecoder.NewProbSlice(numPosStatesMax * 8),
		high: rangecoder.NewProbSlice(256),
	}
	l.reset()
	return l
}

func (l *lenCoder) reset() {
	l.choice = rangecoder.Prob(1 << 10)
	l.choice2 = rangecoder.Prob(1 << 10)
	rangecoder.ResetProbSlice(l.low)
	rangecoder.ResetProbSlice(l.mid)
	rangecoder.ResetProbSlice(l.high)
}

func (l *lenCoder) Decode(rc *rangecoder.Decoder, posState uint32) (uint32, error) {
	bit, err := rc.DecodeBit(&l.choice)
	if err != nil {
		return 0, err
	}
	if bit == 0 {
		v, err := rc.DecodeBitTree(l.low[posState*8:posState*8+8], 3)
		return v, err
	}
	bit, err = rc.DecodeBit(&l.choice2)
	if err != nil {
		return 0, err
	}
	if bit == 0 {
		v, err := rc.DecodeBitTree(l.mid[posState*8:posState*8+8], 3)
		if err != nil {
			return 0, err
		}
		return 8 + v, nil
	}
	v, err := rc.DecodeBitTree(l.high, 8)
	if err != nil {
		return 0, err
	}
	return 16 + v, nil
}

// distCoder decodes a match distance: a 6-bit position slot, then either a
// reverse bit-tree (short distances), or raw direct bits plus a 4-bit
// aligned reverse bit-tree (long distances).
type distCoder struct {
	posSlot []rangecoder.Prob // numLenToPosStates * 64
	specPos []rangecoder.Prob // specPosSize
	align   []rangecoder.Prob // alignTableSize
}

func newDistCoder() *distCoder {
	d := &distCoder{
		posSlot: rangecoder.NewProbSlice(numLenToPosStates * 64),
		specPos: rangecoder.NewProbSlice(specPosSize),
		align:   rangecoder.NewProbSlice(alignTableSize),
	}
	return d
}

func (d *distCoder) reset() {
	rangecoder.ResetProbSlice(d.posSlot)
	rangecoder.ResetProbSlice(d.specPos)
	rangecoder.ResetProbSlice(d.align)
}

func (d *distCoder) Decode(rc *rangecoder.Decoder, length uint32) (uint32, error) {
	lenState := length
	if lenState >= numLenToPosStates {
		lenState = numLenToPosStates - 1
	}
	posSlot, err := rc.DecodeBitTree(d.posSlot[lenState*64:lenState*64+64], numPosSlotBits)
	if err != nil {
		return 0, err
	}
	if posSlot < startPosModelIdx {
		return posSlot, nil
	}
	numDirectBits := (posSlot >> 1) - 1
	dist := (2 | (posSlot & 1)) << numDirectBits
	if posSlot < endPosModelIdx {
		base := dist - posSlot
		rev, err := rc.DecodeReverseBitTree(d.specPos[base:], int(numDirectBits))
		if err != nil {
			return 0, err
		}
		dist += rev
		return dist, nil
	}
	direct, err := rc.DecodeDirect(int(numDirectBits - numAlignBits))
	if err != nil {
		return 0, err
	}
	dist += direct << numAlignBits
	align, err := rc.DecodeReverseBitTree(d.align, numAlignBits)
	if err != nil {
		return 0, err
	}
	dist += align
	return dist, nil
}

// Decoder is the LZMA sequence decoder, Component D. It owns the
// probability model and the 12-state machine; it does not own the range
// coder or the dictionary. The caller reinitializes the range coder and
// sets a new dictionary limit for each LZMA2 chunk.
type Decoder struct {
	props Properties

	state uint32
	reps  [4]uint32

	isMatch     []rangecoder.Prob // numStates * numPosStatesMax
	isRep       []rangecoder.Prob // numStates
	isRepG0     []rangecoder.Prob // numStates
	isRepG1     []rangecoder.Prob // numStates
	isRepG2     []rangecoder.Prob // numStates
	isRepG0Long []rangecoder.Prob // numStates * numPosStatesMax

	litProbs []rangecoder.Prob // 0x300 << (lc+lp)

	lenCoder    *lenCoder
	repLenCoder *lenCoder
	distCoder   *distCoder
}

// New creates a Decoder for the given initial properties, matching a
// chunk's FullReset.
func New(props Properties) *Decoder {
	d := &Decoder{
		isMatch:     rangecoder.NewProbSlice(numStates * numPosStatesMax),
		isRep:       rangecoder.NewProbSlice(numStates),
		isRepG0:     rangecoder.NewProbSlice(numStates),
		isRepG1:     rangecoder.NewProbSlice(numStates),
		isRepG2:     rangecoder.NewProbSlice(numStates),
		isRepG0Long: rangecoder.NewProbSlice(numStates * numPosStatesMax),
		lenCoder:    newLenCoder(),
		repLenCoder: newLenCoder(),
		distCoder:   newDistCoder(),
	}
	d.setProperties(props)
	return d
}

func (d *Decoder) setProperties(props Properties) {
	d.props = props
	d.litProbs = rangecoder.NewProbSlice(0x300 << uint(props.LC+props.LP))
}

// ResetState clears the state machine, the last-distances and every
// probability table, keeping the current properties. This is a LZMA2
// StateReset.
func (d *Decoder) ResetState() {
	d.state = 0
	d.reps = [4]uint32{}
	rangecoder.ResetProbSlice(d.isMatch)
	rangecoder.ResetProbSlice(d.isRep)
	rangecoder.ResetProbSlice(d.isRepG0)
	rangecoder.ResetProbSlice(d.isRepG1)
	rangecoder.ResetProbSlice(d.isRepG2)
	rangecoder.ResetProbSlice(d.isRepG0Long)
	rangecoder.ResetProbSlice(d.litProbs)
	d.lenCoder.reset()
	d.repLenCoder.reset()
	d.distCoder.reset()
}

// ResetStateAndProperties is ResetState plus adopting new properties,
// reallocating the literal probability table for the new lc+lp. This is a
// LZMA2 PropertyReset.
func (d *Decoder) ResetStateAndProperties(props Properties) {
	d.setProperties(props)
	d.ResetState()
}

// Properties returns the decoder's current LZMA properties.
func (d *Decoder) Properties() Properties {
	return d.props
}

func (d *Decoder) updateStateLiteral() {
	switch {
	case d.state < 4:
		d.state = 0
	case d.state < 10:
		d.state -= 3
	default:
		d.state -= 6
	}
}

func (d *Decoder) updateStateMatch() {
	if d.state < 7 {
		d.state = 7
	} else {
		d.state = 10
	}
}

func (d *Decoder) updateStateRep() {
	if d.state < 7 {
		d.state = 8
	} else {
		d.state = 11
	}
}

func (d *Decoder) updateStateShortRep() {
	if d.state < 7 {
		d.state = 9
	} else {
		d.state = 11
	}
}

func (d *Decoder) decodeLiteral(rc *rangecoder.Decoder, win *dictionary.Window, litState uint32) error {
	offset := litState * 0x300
	symbol := uint32(1)
	if d.state >= 7 {
		matchByte, ok := win.GetByte(int(d.reps[0]))
		if !ok {
			return ErrBadDistance
		}
		for symbol < 0x100 {
			matchBit := (uint32(matchByte) >> 7) & 1
			matchByte <<= 1
			bit, err := rc.DecodeBit(&d.litProbs[offset+((1+matchBit)<<8)+symbol])
			if err != nil {
				return err
			}
			symbol = symbol<<1 | bit
			if matchBit != bit {
				break
			}
		}
	}
	for symbol < 0x100 {
		bit, err := rc.DecodeBit(&d.litProbs[offset+symbol])
		if err != nil {
			return err
		}
		symbol = symbol<<1 | bit
	}
	d.updateStateLiteral()
	return win.Put(byte(symbol))
}

// DecodeChunk decodes sequences from rc into win until win reaches its
// current chunk limit, or an explicit end-of-stream distance marker is
// decoded. The range coder and dictionary are both owned by the caller,
// which reinitializes the range coder and sets the dictionary limit per
// LZMA2 chunk.
func (d *Decoder) DecodeChunk(rc *rangecoder.Decoder, win *dictionary.Window) error {
	posMask := uint32(1<<uint(d.props.PB)) - 1
	litPosMask := uint32(1<<uint(d.props.LP)) - 1

	for {
		complete, _ := win.IsComplete()
		if complete {
			return nil
		}

		posState := uint32(win.WritePos()) & posMask
		state2 := d.state<<numPosBitsMax | posState

		bit, err := rc.DecodeBit(&d.isMatch[state2])
		if err != nil {
			return err
		}
		if bit == 0 {
			var prevByte byte
			if win.WritePos() > 0 {
				prevByte, _ = win.GetByte(0)
			}
			litState := ((uint32(win.WritePos()) & litPosMask) << uint(d.props.LC)) |
				(uint32(prevByte) >> uint(8-d.props.LC))
			if err := d.decodeLiteral(rc, win, litState); err != nil {
				return err
			}
			continue
		}

		bit, err = rc.DecodeBit(&d.isRep[d.state])
		if err != nil {
			return err
		}
		if bit == 0 {
			d.reps[3], d.reps[2], d.reps[1] = d.reps[2], d.reps[1], d.reps[0]
			lenSym, err := d.lenCoder.Decode(rc, posState)
			if err != nil {
				return err
			}
			dist, err := d.distCoder.Decode(rc, lenSym)
			if err != nil {
				return err
			}
			if dist == endOfStreamDistance {
				return nil
			}
			d.reps[0] = dist
			d.updateStateMatch()
			if err := win.CopyMatch(int(dist), int(lenSym+minMatchLen)); err != nil {
				return err
			}
			continue
		}

		bit, err = rc.DecodeBit(&d.isRepG0[d.state])
		if err != nil {
			return err
		}
		dist := d.reps[0]
		if bit == 0 {
			bit, err = rc.DecodeBit(&d.isRepG0Long[state2])
			if err != nil {
				return err
			}
			if bit == 0 {
				d.updateStateShortRep()
				if err := win.CopyMatch(int(dist), 1); err != nil {
					return err
				}
				continue
			}
		} else {
			bit, err = rc.DecodeBit(&d.isRepG1[d.state])
			if err != nil {
				return err
			}
			if bit == 0 {
				dist = d.reps[1]
			} else {
				bit, err = rc.DecodeBit(&d.isRepG2[d.state])
				if err != nil {
					return err
				}
				if bit == 0 {
					dist = d.reps[2]
				} else {
					dist = d.reps[3]
					d.reps[3] = d.reps[2]
				}
				d.reps[2] = d.reps[1]
			}
			d.reps[1] = d.reps[0]
			d.reps[0] = dist
		}
		lenSym, err := d.repLenCoder.Decode(rc, posState)
		if err != nil {
			return err
		}
		d.updateStateRep()
		if err := win.CopyMatch(int(dist), int(lenSym+minMatchLen)); err != nil {
			return err
		}
	}
}
