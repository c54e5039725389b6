package xzformat

import (
	"encoding/binary"

	"github.com/ionescu007/minlzma/internal/cursor"
)

const streamHeaderSize = 12

// streamMagic is the fixed 6-byte prefix every XZ stream starts with.
var streamMagic = [6]byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// parseStreamHeader reads and validates the 12-byte stream header, returning
// the declared check type.
func parseStreamHeader(cur *cursor.Cursor, cs Checksummer) (CheckType, error) {
	b, err := cur.Seek(streamHeaderSize)
	if err != nil {
		return 0, err
	}
	for i, m := range streamMagic {
		if b[i] != m {
			return 0, ErrBadMagic
		}
	}
	if b[6] != 0 {
		return 0, ErrBadStreamFlags
	}
	checkType := CheckType(b[7])
	if checkType != CheckNone && checkType != CheckCRC32 {
		return 0, ErrUnsupportedCheckType
	}
	crcWant := binary.LittleEndian.Uint32(b[8:12])
	if cs.Sum(b[6:8]) != crcWant {
		return 0, ErrIntegrity
	}
	return checkType, nil
}
