package avp

import (
	"bytes"
	"encoding/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/netip"
	"testing"
	"time"
)

func encodeAVP(t *testing.T, a *AVP) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, a.Encode(&buf))
	return buf.Bytes()
}

// TestAVPRoundTrip encodes attributes of every value type and decodes them again
func TestAVPRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		avp  *AVP
	}{
		{"address", New(CodeHostIPAddress, 0, NewAddress(netip.MustParseAddr("192.168.1.1")), true)},
		{"identity", New(CodeOriginHost, 0, DiameterIdentity("client.example.com"), true)},
		{"utf8", New(CodeSessionID, 0, UTF8String("client.example.com;1;2"), true)},
		{"unsigned32", New(CodeResultCode, 0, Unsigned32(2001), true)},
		{"unsigned64", New(CodeCCTotalOctets, 0, Unsigned64(1<<40), true)},
		{"integer32", New(9001, 0, Integer32(-5), false)},
		{"enumerated", New(CodeCCRequestType, 0, Enumerated(1), true)},
		{"time", New(CodeEventTimestamp, 0, NewTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)), false)},
		{"octets", New(CodeProxyState, 0, OctetString{1, 2, 3}, false)},
		{"vendor", New(CodeVendorID, 10415, Unsigned32(10415), false)},
		{"grouped", New(CodeSubscriptionID, 0, Grouped{
			New(CodeSubscriptionIDType, 0, Enumerated(0), true),
			New(CodeSubscriptionIDData, 0, UTF8String("4917012345"), true),
		}, true)},
	}

	dict := NewDictionary()
	dict.Add(Definition{Code: 9001, Name: "Test-Integer", Type: TypeInteger32})
	dict.Add(Definition{Code: CodeVendorID, VendorID: 10415, Name: "Test-Vendor", Type: TypeUnsigned32})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := encodeAVP(t, tt.avp)
			assert.Equal(t, int(tt.avp.PaddedLen()), len(encoded))
			assert.Zero(t, len(encoded)%4, "attributes are 4 byte aligned")

			// the length field excludes padding
			assert.Equal(t, tt.avp.Len(), binary.BigEndian.Uint32(encoded[4:8])&0xFFFFFF)

			decoded, n, err := DecodeAVP(encoded, dict)
			require.NoError(t, err)
			assert.Equal(t, len(encoded), n)
			assert.Equal(t, tt.avp.Code, decoded.Code)
			assert.Equal(t, tt.avp.Flags, decoded.Flags)
			assert.Equal(t, tt.avp.VendorID, decoded.VendorID)
			assert.Equal(t, tt.avp.Value.String(), decoded.Value.String())
			assert.Equal(t, tt.avp.Value.Type(), decoded.Value.Type())
		})
	}
}

// TestAVPHeaderLayout checks the exact encoding of a vendor specific attribute
func TestAVPHeaderLayout(t *testing.T) {
	a := New(1032, 10415, Enumerated(1004), true)
	encoded := encodeAVP(t, a)

	want := []byte{
		0x00, 0x00, 0x04, 0x08, // code 1032
		0xC0,             // V and M
		0x00, 0x00, 0x10, // length 16
		0x00, 0x00, 0x28, 0xAF, // vendor 10415
		0x00, 0x00, 0x03, 0xEC, // 1004
	}
	assert.Equal(t, want, encoded)
}

// TestAVPPadding checks that padding is written and skipped
func TestAVPPadding(t *testing.T) {
	a := New(CodeHostIPAddress, 0, NewAddress(netip.MustParseAddr("127.0.0.1")), true)
	encoded := encodeAVP(t, a)

	// 8 header + 6 value + 2 padding
	assert.Equal(t, uint32(14), a.Len())
	assert.Len(t, encoded, 16)
	assert.Equal(t, []byte{0, 0}, encoded[14:])

	// a trailing attribute without padding is still accepted
	decoded, n, err := DecodeAVP(encoded[:14], nil)
	require.NoError(t, err)
	assert.Equal(t, 14, n)
	assert.Equal(t, "127.0.0.1", decoded.Value.String())
}

// TestAVPDecodeErrors checks the boundary handling of the attribute decoder
func TestAVPDecodeErrors(t *testing.T) {
	valid := encodeAVP(t, New(CodeResultCode, 0, Unsigned32(2001), true))

	withLength := func(length uint32) []byte {
		b := append([]byte(nil), valid...)
		binary.BigEndian.PutUint32(b[4:8], length)
		b[4] = FlagMandatory
		return b
	}

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"short header", valid[:5], ErrTruncated},
		{"length below header", withLength(4), ErrInvalidLength},
		{"length past data", withLength(64), ErrTruncated},
		{"fixed width mismatch", withLength(10), ErrInvalidLength},
		{"vendor header truncated", []byte{0, 0, 1, 10, FlagVendor, 0, 0, 12, 0, 0}, ErrTruncated},
		{"address family mismatch", encodeAVP(t, &AVP{Code: CodeHostIPAddress, Value: OctetString{0, 1, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}}), ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeAVP(tt.data, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

// TestAVPEncodeErrors checks that broken attributes are rejected before anything is written
func TestAVPEncodeErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, (&AVP{Code: 1}).Encode(&buf), ErrNilValue)
	assert.Zero(t, buf.Len())

	big := New(CodeProxyState, 0, make(OctetString, 1<<24), false)
	assert.ErrorIs(t, big.Encode(&buf), ErrValueTooLarge)
	assert.Zero(t, buf.Len())
}

// TestGroupedNilChild checks that a nil nested attribute is an error instead of a panic
func TestGroupedNilChild(t *testing.T) {
	g := Grouped{New(CodeSubscriptionIDType, 0, Enumerated(0), true), nil}
	assert.Equal(t, uint32(12), g.Len())

	var buf bytes.Buffer
	assert.ErrorIs(t, g.Encode(&buf), ErrNilAVP)
	assert.Zero(t, buf.Len())

	a := New(CodeSubscriptionID, 0, g, true)
	assert.ErrorIs(t, a.Encode(&buf), ErrNilAVP)

	_, ok := g.Find(CodeSubscriptionID)
	assert.False(t, ok)
	assert.NotPanics(t, func() {
		_ = g.String()
		_ = a.String()
	})
}

// TestDecodeAVPs walks a sequence of attributes and a nested grouped value
func TestDecodeAVPs(t *testing.T) {
	var buf bytes.Buffer
	in := []*AVP{
		New(CodeOriginHost, 0, DiameterIdentity("a.example"), true),
		New(CodeVendorSpecificApplicationID, 0, Grouped{
			New(CodeVendorID, 0, Unsigned32(10415), true),
			New(CodeAuthApplicationID, 0, Unsigned32(16777251), true),
		}, true),
		New(CodeHostIPAddress, 0, NewAddress(netip.MustParseAddr("::1")), true),
	}
	for _, a := range in {
		require.NoError(t, a.Encode(&buf))
	}

	out, err := DecodeAVPs(buf.Bytes(), nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	group, ok := out[1].Value.(Grouped)
	require.True(t, ok)
	app, ok := group.Find(CodeAuthApplicationID)
	require.True(t, ok)
	assert.Equal(t, Unsigned32(16777251), app.Value)
	assert.Equal(t, "::1", out[2].Value.String())

	// cutting the stream inside the last attribute must fail
	_, err = DecodeAVPs(buf.Bytes()[:buf.Len()-12], nil)
	assert.ErrorIs(t, err, ErrTruncated)
}

// TestUnknownAttributeIsOctetString checks the dictionary fallback
func TestUnknownAttributeIsOctetString(t *testing.T) {
	encoded := encodeAVP(t, New(60000, 0, UTF8String("hello"), false))
	decoded, _, err := DecodeAVP(encoded, nil)
	require.NoError(t, err)
	assert.Equal(t, OctetString("hello"), decoded.Value)
}

// TestTimeConversion checks the NTP epoch conversion
func TestTimeConversion(t *testing.T) {
	ts := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, ts, NewTime(ts).AsTime())
	assert.Equal(t, Time(2208988800), NewTime(time.Unix(0, 0)))
}
