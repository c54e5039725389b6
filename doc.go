/*
Package minlzma decodes the restricted XZ profile this module targets: a
single stream, a single LZMA2-filtered block, and an optional CRC-32
integrity check. It does not encode, and it does not handle multi-block
streams, multiple filters, or any check type other than None/CRC-32.

# Decode

The core entry point mirrors the reference decoder's two-pass convention:
call Size first to learn how much output a stream decompresses to, then
Decode into a buffer of exactly that size.

	n, err := minlzma.Size(input)
	out := make([]byte, n)
	n, err = minlzma.Decode(input, out)

DecodeAll does both steps for you:

	out, err := minlzma.DecodeAll(input)

DecodeReader reads a stream fully before decoding it:

	out, err := minlzma.DecodeReader(r)

# Errors

Decode and Size fail closed: on error the output is not meaningful and no
partial result is returned. IsChecksumError reports whether a failure was
specifically a CRC-32 mismatch, mirroring the reference decoder's
last_checksum_error query.
*/
package minlzma
