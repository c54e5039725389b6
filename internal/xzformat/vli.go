package xzformat

import "github.com/ionescu007/minlzma/internal/cursor"

// vliBytesMax is the largest number of 7-bit groups a canonical VLI may
// use; a 10th group could only encode bit 63 and beyond, which this format
// never needs.
const vliBytesMax = 9

// decodeVLI reads a little-endian base-128 variable-length integer: each
// byte contributes its low 7 bits, MSB set means another byte follows.
// Rejects encodings longer than vliBytesMax groups and any continuation
// byte equal to zero, since a canonical encoding never pads with a
// redundant all-zero high group.
func decodeVLI(cur *cursor.Cursor) (uint64, error) {
	b, err := cur.Read()
	if err != nil {
		return 0, err
	}
	value := uint64(b & 0x7F)
	bitPos := uint(7)
	for b&0x80 != 0 {
		b, err = cur.Read()
		if err != nil {
			return 0, err
		}
		if bitPos == 7*vliBytesMax || b == 0 {
			return 0, ErrBadVLI
		}
		value |= uint64(b&0x7F) << bitPos
		bitPos += 7
	}
	return value, nil
}
