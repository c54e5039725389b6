package minlzma

import (
	"errors"

	"github.com/ionescu007/minlzma/internal/cursor"
	"github.com/ionescu007/minlzma/internal/dictionary"
	"github.com/ionescu007/minlzma/internal/lzma"
	"github.com/ionescu007/minlzma/internal/lzma2"
	"github.com/ionescu007/minlzma/internal/rangecoder"
	"github.com/ionescu007/minlzma/internal/xzformat"
)

// ErrorKind classifies a decode failure into one of the categories the
// reference decoder distinguishes, without exposing the internal package
// that actually detected it.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTruncation
	KindFraming
	KindCapacity
	KindRangeDesync
	KindLZMASemantic
	KindIntegrity
	KindPadding
)

func (k ErrorKind) String() string {
	switch k {
	case KindTruncation:
		return "truncation"
	case KindFraming:
		return "framing"
	case KindCapacity:
		return "capacity"
	case KindRangeDesync:
		return "range-desync"
	case KindLZMASemantic:
		return "lzma-semantic"
	case KindIntegrity:
		return "integrity"
	case KindPadding:
		return "padding"
	default:
		return "unknown"
	}
}

// Classify reports which error kind err belongs to. Checksum mismatches are
// classified ahead of the framing catch-all so a corrupt CRC is never
// reported as a plain framing failure. A nil err classifies as KindUnknown.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, xzformat.ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, cursor.ErrOverrun):
		return KindTruncation
	case errors.Is(err, cursor.ErrPadding):
		return KindPadding
	case errors.Is(err, dictionary.ErrLimitExceedsCapacity):
		return KindCapacity
	case errors.Is(err, rangecoder.ErrBadInit),
		errors.Is(err, rangecoder.ErrShortInput),
		errors.Is(err, lzma2.ErrRangeDesync):
		return KindRangeDesync
	case errors.Is(err, lzma.ErrInvalidProperties),
		errors.Is(err, lzma.ErrBadDistance),
		errors.Is(err, dictionary.ErrDistance),
		errors.Is(err, dictionary.ErrFull),
		errors.Is(err, lzma2.ErrSequenceTooLarge),
		errors.Is(err, lzma2.ErrDictionaryMismatch):
		return KindLZMASemantic
	default:
		return KindFraming
	}
}
