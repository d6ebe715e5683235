package avp

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
)

// AddressFamily is the IANA address family number carried in the first two bytes of an Address value
type AddressFamily uint16

const (
	FamilyIPv4 AddressFamily = 1
	FamilyIPv6 AddressFamily = 2
	FamilyE164 AddressFamily = 8
)

// Encoded sizes including the family discriminator
const (
	ipv4AddressLen = 2 + 4
	ipv6AddressLen = 2 + 16
)

func (f AddressFamily) String() string {
	switch f {
	case FamilyIPv4:
		return "IPv4"
	case FamilyIPv6:
		return "IPv6"
	case FamilyE164:
		return "E164"
	default:
		return fmt.Sprintf("AddressFamily(%d)", uint16(f))
	}
}

// Address is the Diameter Address value: an IPv4 or IPv6 address, or an E.164
// number. E.164 values can be constructed and displayed but are not encoded or
// decoded: both directions fail with ErrUnsupportedValue.
type Address struct {
	family AddressFamily
	ip     netip.Addr
	e164   string
}

// NewAddress creates an IPv4 or IPv6 address value. IPv4-mapped IPv6 addresses
// are kept as IPv6.
func NewAddress(ip netip.Addr) Address {
	if ip.Is4() {
		return Address{family: FamilyIPv4, ip: ip}
	}
	return Address{family: FamilyIPv6, ip: ip}
}

// NewE164Address creates an E.164 address value
func NewE164Address(number string) Address {
	return Address{family: FamilyE164, e164: number}
}

// ParseAddress parses a textual IPv4 or IPv6 address
func ParseAddress(s string) (Address, error) {
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Address{}, err
	}
	return NewAddress(ip), nil
}

// Family returns the address family
func (a Address) Family() AddressFamily { return a.family }

// IP returns the IP address (invalid for E.164 values)
func (a Address) IP() netip.Addr { return a.ip }

// E164 returns the number of an E.164 value
func (a Address) E164() string { return a.e164 }

// --------------------------------------------------------------------------
// Interface Methods (docu see avp.Value)
// --------------------------------------------------------------------------

func (a Address) Type() Type { return TypeAddress }

func (a Address) Len() uint32 {
	switch a.family {
	case FamilyIPv4:
		return ipv4AddressLen
	case FamilyIPv6:
		return ipv6AddressLen
	default:
		return 2 + uint32(len(a.e164))
	}
}

func (a Address) Encode(w io.Writer) error {
	var buf [ipv6AddressLen]byte
	binary.BigEndian.PutUint16(buf[:2], uint16(a.family))

	switch a.family {
	case FamilyIPv4:
		ip := a.ip.As4()
		copy(buf[2:], ip[:])
		_, err := w.Write(buf[:ipv4AddressLen])
		return err
	case FamilyIPv6:
		ip := a.ip.As16()
		copy(buf[2:], ip[:])
		_, err := w.Write(buf[:ipv6AddressLen])
		return err
	default:
		return fmt.Errorf("%w: address family %s", ErrUnsupportedValue, a.family)
	}
}

func (a Address) String() string {
	if a.family == FamilyE164 {
		return a.e164
	}
	return a.ip.String()
}

// --------------------------------------------------------------------------
// Decoder
// --------------------------------------------------------------------------

// DecodeAddress decodes an Address value. len(data) is the declared value
// length and must match the family exactly: 6 bytes for IPv4, 18 for IPv6.
func DecodeAddress(data []byte) (Address, error) {
	if len(data) < 2 {
		return Address{}, fmt.Errorf("%w: address needs 2 bytes for the family, got %d", ErrTruncated, len(data))
	}

	family := AddressFamily(binary.BigEndian.Uint16(data[:2]))
	switch family {
	case FamilyIPv4:
		if len(data) != ipv4AddressLen {
			return Address{}, fmt.Errorf("%w: IPv4 address must be %d bytes, got %d", ErrInvalidLength, ipv4AddressLen, len(data))
		}
		return NewAddress(netip.AddrFrom4([4]byte(data[2:ipv4AddressLen]))), nil
	case FamilyIPv6:
		if len(data) != ipv6AddressLen {
			return Address{}, fmt.Errorf("%w: IPv6 address must be %d bytes, got %d", ErrInvalidLength, ipv6AddressLen, len(data))
		}
		return NewAddress(netip.AddrFrom16([16]byte(data[2:ipv6AddressLen]))), nil
	case FamilyE164:
		return Address{}, fmt.Errorf("%w: %w: E164 address", ErrDecode, ErrUnsupportedValue)
	default:
		return Address{}, fmt.Errorf("%w: %d", ErrUnsupportedFamily, uint16(family))
	}
}
