package xzformat

import (
	"encoding/binary"

	"github.com/ionescu007/minlzma/internal/cursor"
)

const streamFooterSize = 12

// parseStreamFooter reads and validates the 12-byte stream footer: its own
// CRC-32, a backward-size field that must name the index's exact size in
// units of 4 bytes, flags matching the stream header's check type, and the
// trailing "YZ" magic.
func parseStreamFooter(cur *cursor.Cursor, cs Checksummer, checkType CheckType, indexSize int) error {
	b, err := cur.Seek(streamFooterSize)
	if err != nil {
		return err
	}
	crcWant := binary.LittleEndian.Uint32(b[0:4])
	backwardSize := binary.LittleEndian.Uint32(b[4:8])
	reserved := b[8]
	gotCheckType := CheckType(b[9])

	if b[10] != 'Y' || b[11] != 'Z' {
		return ErrBadFooterMagic
	}
	if reserved != 0 || gotCheckType != checkType {
		return ErrBadFooterFlags
	}
	if int(backwardSize)*4 != indexSize {
		return ErrFooterSizeMismatch
	}
	if cs.Sum(b[4:10]) != crcWant {
		return ErrIntegrity
	}
	return nil
}
