package xzformat

import (
	"encoding/binary"

	"github.com/ionescu007/minlzma/internal/cursor"
)

// parseIndex reads the one-record index (this profile only ever has a
// single block): a null byte, a VLI block count of 1, the VLI unpadded and
// uncompressed block sizes (both cross-checked against what the block
// decoder actually produced), alignment padding, and a trailing CRC-32 over
// everything before it. Returns the index's total size including padding,
// for the footer's backward-size check.
//
// marker is the index's leading null byte, already read by the caller while
// deciding whether a block or the index came next; it is not re-read here.
func parseIndex(cur *cursor.Cursor, cs Checksummer, marker byte, unpaddedSize, uncompressedSize int) (int, error) {
	start := cur.Offset() - 1
	if marker != 0 {
		return 0, ErrBadIndex
	}

	count, err := decodeVLI(cur)
	if err != nil {
		return 0, err
	}
	if count != 1 {
		return 0, ErrBadIndex
	}

	gotUnpadded, err := decodeVLI(cur)
	if err != nil {
		return 0, err
	}
	if gotUnpadded != uint64(unpaddedSize) {
		return 0, ErrBadIndex
	}

	gotUncompressed, err := decodeVLI(cur)
	if err != nil {
		return 0, err
	}
	if gotUncompressed != uint64(uncompressedSize) {
		return 0, ErrBadIndex
	}

	if err := cur.Align4(); err != nil {
		return 0, err
	}
	end := cur.Offset()

	crcBytes, err := cur.Seek(4)
	if err != nil {
		return 0, err
	}
	payload, err := cur.Slice(start, end)
	if err != nil {
		return 0, err
	}
	if cs.Sum(payload) != binary.LittleEndian.Uint32(crcBytes) {
		return 0, ErrIntegrity
	}

	return end - start, nil
}

// parseIndexEmpty reads the index for the zero-block case: a real xz stream
// for empty input never emits a block at all, so the index immediately
// follows the stream header with a block count of 0 and no per-block
// entries. marker is the index's leading null byte, already read by the
// caller.
func parseIndexEmpty(cur *cursor.Cursor, cs Checksummer, marker byte) (int, error) {
	start := cur.Offset() - 1
	if marker != 0 {
		return 0, ErrBadIndex
	}

	count, err := decodeVLI(cur)
	if err != nil {
		return 0, err
	}
	if count != 0 {
		return 0, ErrBadIndex
	}

	if err := cur.Align4(); err != nil {
		return 0, err
	}
	end := cur.Offset()

	crcBytes, err := cur.Seek(4)
	if err != nil {
		return 0, err
	}
	payload, err := cur.Slice(start, end)
	if err != nil {
		return 0, err
	}
	if cs.Sum(payload) != binary.LittleEndian.Uint32(crcBytes) {
		return 0, ErrIntegrity
	}

	return end - start, nil
}
