package avp

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Flag bits of the attribute header
const (
	FlagVendor    uint8 = 0x80
	FlagMandatory uint8 = 0x40
	FlagProtected uint8 = 0x20
)

// Header sizes without and with the Vendor-Id field
const (
	HeaderLen       = 8
	HeaderLenVendor = 12

	// maxLen is the largest length representable in the 24 bit length field
	maxLen = 1<<24 - 1
)

// AVP is one attribute record of a message:
//
//	code (4) | flags (1) | length (3) | [vendor-id (4)] | value | padding
//
// The length field covers header and value but not the padding that aligns the
// next attribute to a 4 byte boundary.
type AVP struct {
	Code     uint32
	Flags    uint8
	VendorID uint32
	Value    Value
}

// New creates an attribute. A non-zero vendorID sets the vendor flag.
func New(code uint32, vendorID uint32, value Value, mandatory bool) *AVP {
	a := &AVP{Code: code, VendorID: vendorID, Value: value}
	if vendorID != 0 {
		a.Flags |= FlagVendor
	}
	if mandatory {
		a.Flags |= FlagMandatory
	}
	return a
}

// IsMandatory reports whether the M bit is set
func (a *AVP) IsMandatory() bool { return a.Flags&FlagMandatory != 0 }

// HasVendor reports whether the attribute carries a Vendor-Id
func (a *AVP) HasVendor() bool { return a.Flags&FlagVendor != 0 || a.VendorID != 0 }

// HeaderLen returns the size of the attribute header
func (a *AVP) HeaderLen() uint32 {
	if a.HasVendor() {
		return HeaderLenVendor
	}
	return HeaderLen
}

// Len returns the value of the length field: header plus value bytes
func (a *AVP) Len() uint32 {
	if a.Value == nil {
		return a.HeaderLen()
	}
	return a.HeaderLen() + a.Value.Len()
}

// PaddedLen returns the number of bytes the attribute occupies on the wire
func (a *AVP) PaddedLen() uint32 {
	return pad4(a.Len())
}

// Encode writes the attribute including padding to w
func (a *AVP) Encode(w io.Writer) error {
	if a.Value == nil {
		return fmt.Errorf("%w: code %d", ErrNilValue, a.Code)
	}

	length := a.Len()
	if length > maxLen {
		return fmt.Errorf("%w: attribute %d is %d bytes", ErrValueTooLarge, a.Code, length)
	}

	flags := a.Flags
	if a.HasVendor() {
		flags |= FlagVendor
	}

	var header [HeaderLenVendor]byte
	binary.BigEndian.PutUint32(header[0:4], a.Code)
	binary.BigEndian.PutUint32(header[4:8], length)
	header[4] = flags
	if a.HasVendor() {
		binary.BigEndian.PutUint32(header[8:12], a.VendorID)
	}
	if _, err := w.Write(header[:a.HeaderLen()]); err != nil {
		return err
	}

	if err := a.Value.Encode(w); err != nil {
		return err
	}

	if padding := a.PaddedLen() - length; padding > 0 {
		var zeros [3]byte
		if _, err := w.Write(zeros[:padding]); err != nil {
			return err
		}
	}
	return nil
}

func (a *AVP) String() string {
	return a.format(nil, 0)
}

// format renders the attribute with dictionary names, grouped values are indented
func (a *AVP) format(dict *Dictionary, indent int) string {
	if dict == nil {
		dict = DefaultDictionary()
	}

	var sb strings.Builder
	prefix := strings.Repeat("  ", indent)
	name := dict.Name(a.Code, a.VendorID)

	flags := ""
	if a.Flags&FlagVendor != 0 {
		flags += "V"
	}
	if a.Flags&FlagMandatory != 0 {
		flags += "M"
	}
	if a.Flags&FlagProtected != 0 {
		flags += "P"
	}

	sb.WriteString(fmt.Sprintf("%s%-28s %5d %-3s", prefix, name, a.Code, flags))
	if a.VendorID != 0 {
		sb.WriteString(fmt.Sprintf(" vendor=%d", a.VendorID))
	}

	switch v := a.Value.(type) {
	case nil:
		sb.WriteString(" <nil>")
	case Grouped:
		sb.WriteString(" Grouped")
		for _, child := range v {
			if child == nil {
				continue
			}
			sb.WriteString("\n")
			sb.WriteString(child.format(dict, indent+1))
		}
	default:
		sb.WriteString(fmt.Sprintf(" %-16s %s", v.Type(), v.String()))
	}
	return sb.String()
}

// Format renders the attribute using the names of dict
func (a *AVP) Format(dict *Dictionary) string {
	return a.format(dict, 0)
}

// --------------------------------------------------------------------------
// Decoders
// --------------------------------------------------------------------------

// DecodeAVP decodes the attribute at the start of data and returns it together
// with the number of bytes consumed (including padding). The dictionary selects
// the value type; a nil dictionary means DefaultDictionary.
func DecodeAVP(data []byte, dict *Dictionary) (*AVP, int, error) {
	if dict == nil {
		dict = DefaultDictionary()
	}

	if len(data) < HeaderLen {
		return nil, 0, fmt.Errorf("%w: attribute header needs %d bytes, got %d", ErrTruncated, HeaderLen, len(data))
	}

	a := &AVP{
		Code:  binary.BigEndian.Uint32(data[0:4]),
		Flags: data[4],
	}
	length := int(binary.BigEndian.Uint32(data[4:8]) & maxLen)

	headerLen := HeaderLen
	if a.Flags&FlagVendor != 0 {
		headerLen = HeaderLenVendor
		if len(data) < HeaderLenVendor {
			return nil, 0, fmt.Errorf("%w: attribute %d vendor header", ErrTruncated, a.Code)
		}
		a.VendorID = binary.BigEndian.Uint32(data[8:12])
	}

	if length < headerLen {
		return nil, 0, fmt.Errorf("%w: attribute %d declares %d bytes, header alone is %d", ErrInvalidLength, a.Code, length, headerLen)
	}
	if length > len(data) {
		return nil, 0, fmt.Errorf("%w: attribute %d declares %d bytes, only %d left", ErrTruncated, a.Code, length, len(data))
	}

	value, err := DecodeValue(dict.TypeOf(a.Code, a.VendorID), data[headerLen:length], dict)
	if err != nil {
		return nil, 0, fmt.Errorf("attribute %d: %w", a.Code, err)
	}
	a.Value = value

	// the padding of the last attribute may be missing
	consumed := int(pad4(uint32(length)))
	if consumed > len(data) {
		consumed = len(data)
	}
	return a, consumed, nil
}

// DecodeAVPs decodes attributes until data is exhausted
func DecodeAVPs(data []byte, dict *Dictionary) ([]*AVP, error) {
	avps := make([]*AVP, 0, 8)
	for pos := 0; pos < len(data); {
		a, n, err := DecodeAVP(data[pos:], dict)
		if err != nil {
			return nil, err
		}
		avps = append(avps, a)
		pos += n
	}
	return avps, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func pad4(n uint32) uint32 {
	return (n + 3) &^ 3
}
