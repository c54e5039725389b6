package minlzma

import (
	"io"

	"github.com/ionescu007/minlzma/internal/cursor"
	"github.com/ionescu007/minlzma/internal/dictionary"
	"github.com/ionescu007/minlzma/internal/xzformat"
)

// Decode decompresses the XZ stream in input into output, returning the
// number of bytes written. output must be at least as large as the value
// Size(input) would return; a shorter buffer surfaces as an error rather
// than a short write.
func Decode(input, output []byte) (int, error) {
	cur := cursor.New(input)
	win := dictionary.New(output)
	if err := xzformat.Decode(cur, win, xzformat.DefaultChecksummer); err != nil {
		return 0, err
	}
	return win.WritePos(), nil
}

// Size reports the number of bytes input decompresses to, without writing
// any output. It validates every structural and checksum element of the
// stream except the block payload's own CRC-32, which has nothing to hash
// against until the block is actually decoded.
func Size(input []byte) (int, error) {
	return xzformat.Size(cursor.New(input), xzformat.DefaultChecksummer)
}

// DecodeAll sizes input, allocates an exact-length buffer, and decodes into
// it in one call.
func DecodeAll(input []byte) ([]byte, error) {
	n, err := Size(input)
	if err != nil {
		return nil, err
	}
	output := make([]byte, n)
	if _, err := Decode(input, output); err != nil {
		return nil, err
	}
	return output, nil
}

// DecodeReader reads r to completion and decodes the result as a single XZ
// stream. It has no streaming logic of its own: the whole input must fit in
// memory, matching this decoder's fully-buffered design.
func DecodeReader(r io.Reader) ([]byte, error) {
	input, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeAll(input)
}

// IsChecksumError reports whether err is specifically a CRC-32 mismatch, as
// opposed to a framing, truncation, or semantic failure.
func IsChecksumError(err error) bool {
	return xzformat.IsIntegrityError(err)
}
