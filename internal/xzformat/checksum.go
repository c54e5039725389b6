package xzformat

import "hash/crc32"

// Checksummer computes a checksum over a byte slice. The XZ format names
// this per-structure hook "Check"; this profile only ever needs CRC-32, but
// the interface keeps the container logic above from hard-coding a specific
// algorithm.
type Checksummer interface {
	Sum(data []byte) uint32
}

// crc32Checksummer is the stdlib IEEE CRC-32 implementation, the only
// non-None check type this profile accepts.
type crc32Checksummer struct{}

func (crc32Checksummer) Sum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// DefaultChecksummer is used wherever a caller does not supply its own.
var DefaultChecksummer Checksummer = crc32Checksummer{}
