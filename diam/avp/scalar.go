package avp

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Integer32 is a signed 32 bit value
type Integer32 int32

// Integer64 is a signed 64 bit value
type Integer64 int64

// Unsigned32 is an unsigned 32 bit value
type Unsigned32 uint32

// Unsigned64 is an unsigned 64 bit value
type Unsigned64 uint64

// Enumerated is an Integer32 whose meaning is defined per attribute
type Enumerated int32

// Time is the number of seconds since 1900-01-01 00:00 UTC (NTP timestamp seconds)
type Time uint32

// ntpEpochOffset is the number of seconds between 1900-01-01 and 1970-01-01
const ntpEpochOffset = 2208988800

// NewTime converts t to a Diameter Time value.
// Times outside the 32 bit NTP era 0 are truncated to it.
func NewTime(t time.Time) Time {
	return Time(uint32(t.Unix() + ntpEpochOffset))
}

// AsTime converts the value back to a time.Time in UTC
func (v Time) AsTime() time.Time {
	return time.Unix(int64(v)-ntpEpochOffset, 0).UTC()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see avp.Value)
// --------------------------------------------------------------------------

func (v Integer32) Type() Type               { return TypeInteger32 }
func (v Integer32) Len() uint32              { return 4 }
func (v Integer32) Encode(w io.Writer) error { return writeUint32(w, uint32(v)) }
func (v Integer32) String() string           { return strconv.FormatInt(int64(v), 10) }

func (v Integer64) Type() Type               { return TypeInteger64 }
func (v Integer64) Len() uint32              { return 8 }
func (v Integer64) Encode(w io.Writer) error { return writeUint64(w, uint64(v)) }
func (v Integer64) String() string           { return strconv.FormatInt(int64(v), 10) }

func (v Unsigned32) Type() Type               { return TypeUnsigned32 }
func (v Unsigned32) Len() uint32              { return 4 }
func (v Unsigned32) Encode(w io.Writer) error { return writeUint32(w, uint32(v)) }
func (v Unsigned32) String() string           { return strconv.FormatUint(uint64(v), 10) }

func (v Unsigned64) Type() Type               { return TypeUnsigned64 }
func (v Unsigned64) Len() uint32              { return 8 }
func (v Unsigned64) Encode(w io.Writer) error { return writeUint64(w, uint64(v)) }
func (v Unsigned64) String() string           { return strconv.FormatUint(uint64(v), 10) }

func (v Enumerated) Type() Type               { return TypeEnumerated }
func (v Enumerated) Len() uint32              { return 4 }
func (v Enumerated) Encode(w io.Writer) error { return writeUint32(w, uint32(v)) }
func (v Enumerated) String() string           { return strconv.FormatInt(int64(v), 10) }

func (v Time) Type() Type               { return TypeTime }
func (v Time) Len() uint32              { return 4 }
func (v Time) Encode(w io.Writer) error { return writeUint32(w, uint32(v)) }
func (v Time) String() string           { return v.AsTime().Format(time.RFC3339) }

// --------------------------------------------------------------------------
// Decoders
// --------------------------------------------------------------------------

func DecodeInteger32(data []byte) (Integer32, error) {
	if err := checkFixed(data, 4, TypeInteger32); err != nil {
		return 0, err
	}
	return Integer32(binary.BigEndian.Uint32(data)), nil
}

func DecodeInteger64(data []byte) (Integer64, error) {
	if err := checkFixed(data, 8, TypeInteger64); err != nil {
		return 0, err
	}
	return Integer64(binary.BigEndian.Uint64(data)), nil
}

func DecodeUnsigned32(data []byte) (Unsigned32, error) {
	if err := checkFixed(data, 4, TypeUnsigned32); err != nil {
		return 0, err
	}
	return Unsigned32(binary.BigEndian.Uint32(data)), nil
}

func DecodeUnsigned64(data []byte) (Unsigned64, error) {
	if err := checkFixed(data, 8, TypeUnsigned64); err != nil {
		return 0, err
	}
	return Unsigned64(binary.BigEndian.Uint64(data)), nil
}

func DecodeEnumerated(data []byte) (Enumerated, error) {
	if err := checkFixed(data, 4, TypeEnumerated); err != nil {
		return 0, err
	}
	return Enumerated(binary.BigEndian.Uint32(data)), nil
}

func DecodeTime(data []byte) (Time, error) {
	if err := checkFixed(data, 4, TypeTime); err != nil {
		return 0, err
	}
	return Time(binary.BigEndian.Uint32(data)), nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func checkFixed(data []byte, size int, t Type) error {
	if len(data) != size {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidLength, t, size, len(data))
	}
	return nil
}

func writeUint32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}
