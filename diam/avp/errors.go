package avp

import (
	"errors"
	"fmt"
)

// ErrDecode is the root of every decode failure reported by this package
var ErrDecode = errors.New("avp: decode error")

var (
	ErrInvalidLength     = fmt.Errorf("%w: invalid length", ErrDecode)
	ErrTruncated         = fmt.Errorf("%w: truncated data", ErrDecode)
	ErrUnsupportedFamily = fmt.Errorf("%w: unsupported address family", ErrDecode)
	ErrUnknownType       = fmt.Errorf("%w: unknown value type", ErrDecode)

	// ErrUnsupportedValue is returned for well formed values this codec cannot
	// represent yet (E.164 addresses). Decoders wrap it together with ErrDecode.
	ErrUnsupportedValue = errors.New("avp: unsupported value type")
	ErrValueTooLarge    = errors.New("avp: value too large")
	ErrNilValue         = errors.New("avp: attribute has no value")
	ErrNilAVP           = errors.New("avp: nil nested attribute")
)
