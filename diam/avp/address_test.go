package avp

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/netip"
	"testing"
)

func encodeValue(t *testing.T, v Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, v.Encode(&buf))
	return buf.Bytes()
}

// TestAddressRoundTrip checks decode(encode(v)) == v and that Len matches the encoded size
func TestAddressRoundTrip(t *testing.T) {
	addrs := []string{
		"127.0.0.1",
		"0.0.0.0",
		"255.255.255.255",
		"10.20.30.40",
		"::1",
		"::",
		"2001:db8::8a2e:370:7334",
		"fe80::1:2:3:4",
		"::ffff:192.0.2.1",
	}

	for _, s := range addrs {
		t.Run(s, func(t *testing.T) {
			addr, err := ParseAddress(s)
			require.NoError(t, err)

			encoded := encodeValue(t, addr)
			assert.Equal(t, int(addr.Len()), len(encoded))

			decoded, err := DecodeAddress(encoded)
			require.NoError(t, err)
			assert.Equal(t, addr.Family(), decoded.Family())
			assert.Equal(t, addr.IP(), decoded.IP())
			assert.Equal(t, s, decoded.String())
		})
	}
}

// TestAddressWireFormat checks the exact bytes of the loopback addresses
func TestAddressWireFormat(t *testing.T) {
	v4 := encodeValue(t, NewAddress(netip.MustParseAddr("127.0.0.1")))
	assert.Equal(t, []byte{0x00, 0x01, 0x7F, 0x00, 0x00, 0x01}, v4)

	v6 := encodeValue(t, NewAddress(netip.MustParseAddr("::1")))
	want := append([]byte{0x00, 0x02}, make([]byte, 15)...)
	want = append(want, 0x01)
	assert.Equal(t, want, v6)

	assert.Equal(t, uint32(6), NewAddress(netip.MustParseAddr("127.0.0.1")).Len())
	assert.Equal(t, uint32(18), NewAddress(netip.MustParseAddr("::1")).Len())
}

// TestAddressLengthMismatch checks that the declared length must match the family exactly
func TestAddressLengthMismatch(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"ipv4 short", []byte{0, 1, 127, 0, 0}},
		{"ipv4 long", []byte{0, 1, 127, 0, 0, 1, 0, 0}},
		{"ipv4 with ipv6 length", append([]byte{0, 1}, make([]byte, 16)...)},
		{"ipv6 short", append([]byte{0, 2}, make([]byte, 15)...)},
		{"ipv6 long", append([]byte{0, 2}, make([]byte, 17)...)},
		{"ipv6 with ipv4 length", []byte{0, 2, 0, 0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeAddress(tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidLength)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

// TestAddressUnsupportedFamily checks unknown discriminators and short input
func TestAddressUnsupportedFamily(t *testing.T) {
	_, err := DecodeAddress([]byte{0, 3, 1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrUnsupportedFamily)
	assert.ErrorIs(t, err, ErrDecode)

	// only the family is present, no payload read may happen
	_, err = DecodeAddress([]byte{0, 3})
	assert.ErrorIs(t, err, ErrUnsupportedFamily)

	_, err = DecodeAddress([]byte{0})
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeAddress(nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

// TestAddressE164 checks that E.164 fails explicitly in both directions
func TestAddressE164(t *testing.T) {
	_, err := DecodeAddress([]byte{0, 8, '4', '9', '1', '7', '0'})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	assert.ErrorIs(t, err, ErrDecode)

	addr := NewE164Address("4917012345")
	assert.Equal(t, FamilyE164, addr.Family())
	assert.Equal(t, "4917012345", addr.String())

	var buf bytes.Buffer
	err = addr.Encode(&buf)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
	assert.Zero(t, buf.Len())
}
