// Package avp implements the typed attribute codec of the Diameter protocol.
//
// Every attribute value type follows the same contract: a decoder that takes
// the value bytes of one attribute (so the declared attribute length is always
// len(data)), an Encode method writing exactly Len() bytes, and strict length
// checks - a value whose declared length does not fit its format is a decode
// error, never a silent truncation.
//
// Key Components:
//
//   - Value: Interface implemented by all value types (Address, OctetString,
//     UTF8String, DiameterIdentity, Integer32/64, Unsigned32/64, Enumerated,
//     Time and Grouped).
//
//   - Address: IPv4/IPv6 address tagged with a 2 byte family. E.164 addresses
//     are recognised but rejected with ErrUnsupportedValue in both directions.
//
//   - AVP: One attribute record (code, flags, optional vendor id, value) with
//     4 byte alignment padding.
//
//   - Dictionary: Maps attribute codes to names and value types. The defaults
//     cover the base protocol and credit-control attributes and can be extended
//     from TOML files.
//
// Errors:
//
//	All decode failures wrap ErrDecode and one of ErrInvalidLength, ErrTruncated,
//	ErrUnsupportedFamily, ErrUnknownType or ErrUnsupportedValue, so callers can
//	inspect them with errors.Is.
package avp
