// Package xzformat implements the XZ stream container restricted to the
// single-stream, single-block, LZMA2-only profile: stream header, block
// header, block body framing, the optional index and stream footer, and the
// variable-length integer encoding those structures share.
//
// Grounded on original_source/minlzlib/xzstream.c (XzDecode,
// XzDecodeStreamHeader, XzDecodeBlockHeader, XzDecodeBlock, XzDecodeIndex,
// XzDecodeStreamFooter, XzDecodeVli), which this package follows
// structure-for-structure while replacing its compile-time
// MINLZ_META_CHECKS/MINLZ_INTEGRITY_CHECKS toggles with code that always
// validates framing and checksums (see DESIGN.md, Open Questions).
package xzformat

import (
	"encoding/binary"
	"errors"

	"github.com/ionescu007/minlzma/internal/cursor"
	"github.com/ionescu007/minlzma/internal/dictionary"
	"github.com/ionescu007/minlzma/internal/lzma2"
)

// Sentinel errors, one per structural check this package performs. Each
// maps onto one of the error kinds in the public API's documentation
// (integrity for ErrIntegrity, framing for the rest); the root package classifies them
// rather than this package exposing a separate taxonomy.
var (
	ErrBadMagic             = errors.New("xzformat: bad stream header magic")
	ErrBadStreamFlags       = errors.New("xzformat: stream header flags byte must be zero")
	ErrUnsupportedCheckType = errors.New("xzformat: unsupported integrity check type")
	ErrBadBlockHeaderSize   = errors.New("xzformat: block header size is not the minimal LZMA2-only size")
	ErrBadBlockFlags        = errors.New("xzformat: block header flags must be zero")
	ErrBadFilterID          = errors.New("xzformat: filter id is not LZMA2 (0x21)")
	ErrBadFilterPropsSize   = errors.New("xzformat: filter properties size must be 1")
	ErrBadDictionarySize    = errors.New("xzformat: dictionary size property exceeds 39")
	ErrBadIndex             = errors.New("xzformat: malformed index")
	ErrBadVLI               = errors.New("xzformat: non-canonical variable-length integer")
	ErrBadFooterMagic       = errors.New("xzformat: bad stream footer magic")
	ErrBadFooterFlags       = errors.New("xzformat: stream footer flags do not match header")
	ErrFooterSizeMismatch   = errors.New("xzformat: footer backward size does not match index")
	ErrIntegrity            = errors.New("xzformat: checksum mismatch")
)

// IsIntegrityError reports whether err is (or wraps) ErrIntegrity, the
// CRC-32 mismatch this package returns for a corrupt header, block payload,
// index, or footer.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// CheckType is the integrity-check algorithm declared in the stream header
// and footer. This profile accepts only None and CRC-32.
type CheckType byte

const (
	CheckNone  CheckType = 0
	CheckCRC32 CheckType = 1
)

// size returns the number of checksum bytes a block trailer carries for t.
func (t CheckType) size() int {
	return int(t) * 4
}

// Decode parses a full XZ stream from cur — header, optional block, index,
// footer — decompressing its single LZMA2 block (if present) into win and
// verifying every checksum along the way. A stream compressing zero bytes of
// input carries no block at all: the index immediately declares a block
// count of 0, matching what the reference `xz` CLI actually emits for empty
// input.
func Decode(cur *cursor.Cursor, win *dictionary.Window, cs Checksummer) error {
	checkType, err := parseStreamHeader(cur, cs)
	if err != nil {
		return err
	}

	marker, err := cur.Read()
	if err != nil {
		return err
	}
	if marker == 0 {
		indexSize, err := parseIndexEmpty(cur, cs, marker)
		if err != nil {
			return err
		}
		return parseStreamFooter(cur, cs, checkType, indexSize)
	}

	bh, err := parseBlockHeader(cur, cs, marker)
	if err != nil {
		return err
	}

	blockStart := cur.Offset()
	if err := lzma2.New().DecodeStream(cur, win); err != nil {
		return err
	}
	blockBodySize := cur.Offset() - blockStart

	if err := cur.Align4(); err != nil {
		return err
	}

	checksumSize := checkType.size()
	if checksumSize > 0 {
		crcBytes, err := cur.Seek(checksumSize)
		if err != nil {
			return err
		}
		if cs.Sum(win.Bytes()) != binary.LittleEndian.Uint32(crcBytes) {
			return ErrIntegrity
		}
	}

	unpaddedSize := bh.headerSize + blockBodySize + checksumSize
	indexMarker, err := cur.Read()
	if err != nil {
		return err
	}
	indexSize, err := parseIndex(cur, cs, indexMarker, unpaddedSize, win.WritePos())
	if err != nil {
		return err
	}
	return parseStreamFooter(cur, cs, checkType, indexSize)
}

// Size walks the same structures as Decode but only accumulates the
// uncompressed size; it never touches a dictionary and so cannot verify the
// block payload's checksum (there is no decoded data to hash yet). Framing,
// header/index/footer checksums, and size cross-checks are still validated.
func Size(cur *cursor.Cursor, cs Checksummer) (int, error) {
	checkType, err := parseStreamHeader(cur, cs)
	if err != nil {
		return 0, err
	}

	marker, err := cur.Read()
	if err != nil {
		return 0, err
	}
	if marker == 0 {
		indexSize, err := parseIndexEmpty(cur, cs, marker)
		if err != nil {
			return 0, err
		}
		if err := parseStreamFooter(cur, cs, checkType, indexSize); err != nil {
			return 0, err
		}
		return 0, nil
	}

	bh, err := parseBlockHeader(cur, cs, marker)
	if err != nil {
		return 0, err
	}

	blockStart := cur.Offset()
	n, err := lzma2.New().Size(cur)
	if err != nil {
		return 0, err
	}
	blockBodySize := cur.Offset() - blockStart

	if err := cur.Align4(); err != nil {
		return 0, err
	}

	checksumSize := checkType.size()
	if checksumSize > 0 {
		if _, err := cur.Seek(checksumSize); err != nil {
			return 0, err
		}
	}

	unpaddedSize := bh.headerSize + blockBodySize + checksumSize
	indexMarker, err := cur.Read()
	if err != nil {
		return 0, err
	}
	indexSize, err := parseIndex(cur, cs, indexMarker, unpaddedSize, n)
	if err != nil {
		return 0, err
	}
	if err := parseStreamFooter(cur, cs, checkType, indexSize); err != nil {
		return 0, err
	}
	return n, nil
}
