package avp

import (
	"fmt"
	"io"
	"strings"
)

// Type identifies the data format of an attribute value
type Type uint8

const (
	TypeOctetString Type = iota + 1
	TypeUTF8String
	TypeDiameterIdentity
	TypeAddress
	TypeInteger32
	TypeInteger64
	TypeUnsigned32
	TypeUnsigned64
	TypeEnumerated
	TypeTime
	TypeGrouped
)

var typeNames = map[Type]string{
	TypeOctetString:      "OctetString",
	TypeUTF8String:       "UTF8String",
	TypeDiameterIdentity: "DiameterIdentity",
	TypeAddress:          "Address",
	TypeInteger32:        "Integer32",
	TypeInteger64:        "Integer64",
	TypeUnsigned32:       "Unsigned32",
	TypeUnsigned64:       "Unsigned64",
	TypeEnumerated:       "Enumerated",
	TypeTime:             "Time",
	TypeGrouped:          "Grouped",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// ParseType resolves a type name (case insensitive) as used in dictionary files
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("avp: unknown type name %q", name)
}

// Value is a typed attribute value.
// Every implementation follows the same contract: Len reports exactly the number
// of bytes Encode writes, and the matching decoder rejects any data whose length
// does not fit the format.
type Value interface {
	// Type returns the data format of the value
	Type() Type
	// Len returns the encoded size in bytes (without padding)
	Len() uint32
	// Encode writes the value bytes to w
	Encode(w io.Writer) error
	// String returns a human-readable representation
	String() string
}

// DecodeValue decodes data as a value of type t.
// len(data) is the value length declared by the enclosing attribute.
// The dictionary is only consulted for grouped values.
func DecodeValue(t Type, data []byte, dict *Dictionary) (Value, error) {
	switch t {
	case TypeOctetString:
		return DecodeOctetString(data), nil
	case TypeUTF8String:
		return DecodeUTF8String(data)
	case TypeDiameterIdentity:
		return DecodeDiameterIdentity(data)
	case TypeAddress:
		return DecodeAddress(data)
	case TypeInteger32:
		return DecodeInteger32(data)
	case TypeInteger64:
		return DecodeInteger64(data)
	case TypeUnsigned32:
		return DecodeUnsigned32(data)
	case TypeUnsigned64:
		return DecodeUnsigned64(data)
	case TypeEnumerated:
		return DecodeEnumerated(data)
	case TypeTime:
		return DecodeTime(data)
	case TypeGrouped:
		return DecodeGrouped(data, dict)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}
