package avp

import (
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"
)

// OctetString is an arbitrary byte sequence.
// Attributes missing from the dictionary are decoded as OctetString.
type OctetString []byte

// UTF8String is a UTF-8 encoded text
type UTF8String string

// DiameterIdentity is the FQDN of a Diameter node (Origin-Host, Origin-Realm, ...)
type DiameterIdentity string

// --------------------------------------------------------------------------
// Interface Methods (docu see avp.Value)
// --------------------------------------------------------------------------

func (v OctetString) Type() Type  { return TypeOctetString }
func (v OctetString) Len() uint32 { return uint32(len(v)) }
func (v OctetString) Encode(w io.Writer) error {
	_, err := w.Write(v)
	return err
}
func (v OctetString) String() string { return "0x" + hex.EncodeToString(v) }

func (v UTF8String) Type() Type  { return TypeUTF8String }
func (v UTF8String) Len() uint32 { return uint32(len(v)) }
func (v UTF8String) Encode(w io.Writer) error {
	_, err := io.WriteString(w, string(v))
	return err
}
func (v UTF8String) String() string { return string(v) }

func (v DiameterIdentity) Type() Type  { return TypeDiameterIdentity }
func (v DiameterIdentity) Len() uint32 { return uint32(len(v)) }
func (v DiameterIdentity) Encode(w io.Writer) error {
	_, err := io.WriteString(w, string(v))
	return err
}
func (v DiameterIdentity) String() string { return string(v) }

// --------------------------------------------------------------------------
// Decoders
// --------------------------------------------------------------------------

// DecodeOctetString copies data, the caller may reuse its buffer
func DecodeOctetString(data []byte) OctetString {
	out := make(OctetString, len(data))
	copy(out, data)
	return out
}

func DecodeUTF8String(data []byte) (UTF8String, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: UTF8String is not valid UTF-8", ErrDecode)
	}
	return UTF8String(data), nil
}

func DecodeDiameterIdentity(data []byte) (DiameterIdentity, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: DiameterIdentity is not valid UTF-8", ErrDecode)
	}
	return DiameterIdentity(data), nil
}
