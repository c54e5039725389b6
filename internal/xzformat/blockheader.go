package xzformat

import (
	"encoding/binary"

	"github.com/ionescu007/minlzma/internal/cursor"
)

// blockHeaderInfo is what the rest of the container needs from the block
// header once it has been validated.
type blockHeaderInfo struct {
	headerSize int // always 12 in this profile, kept explicit for the index size check
}

// parseBlockHeader validates the fixed-shape block header this profile
// accepts: header size 12, no block flags, a single LZMA2 filter with a
// one-byte dictionary-size property. sizeByte is the header's first byte,
// already read by the caller while deciding whether a block or the index
// came next (a zero byte there means no block is present at all).
//
// The dictionary-size property is validated for range only (≤ 39), not
// against the output buffer's capacity: real xz output always encodes its
// preset's full dictionary size (commonly several MiB) regardless of how
// small the actual payload is, and this decoder's window is the caller's
// whole output buffer rather than a fixed-size ring sized off this field —
// a match's distance is already bounded by how much has been written so
// far (see dictionary.Window.CopyMatch), so the property never needs to
// fit inside the output to decode correctly.
func parseBlockHeader(cur *cursor.Cursor, cs Checksummer, sizeByte byte) (blockHeaderInfo, error) {
	headerSize := (int(sizeByte) + 1) * 4
	if headerSize != 12 {
		return blockHeaderInfo{}, ErrBadBlockHeaderSize
	}

	rest, err := cur.Seek(headerSize - 1)
	if err != nil {
		return blockHeaderInfo{}, err
	}
	flags := rest[0]
	if flags != 0 {
		return blockHeaderInfo{}, ErrBadBlockFlags
	}
	filterID := rest[1]
	if filterID != 0x21 {
		return blockHeaderInfo{}, ErrBadFilterID
	}
	filterPropsSize := rest[2]
	if filterPropsSize != 1 {
		return blockHeaderInfo{}, ErrBadFilterPropsSize
	}
	dictProp := rest[3]
	if dictProp > 39 {
		return blockHeaderInfo{}, ErrBadDictionarySize
	}

	crcWant := binary.LittleEndian.Uint32(rest[7:11])
	headerBytes := make([]byte, 0, headerSize-4)
	headerBytes = append(headerBytes, sizeByte)
	headerBytes = append(headerBytes, rest[:7]...)
	if cs.Sum(headerBytes) != crcWant {
		return blockHeaderInfo{}, ErrIntegrity
	}

	return blockHeaderInfo{headerSize: headerSize}, nil
}
