package message

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"io"
	"strings"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message is one Diameter message: the fixed header followed by attributes in order.
// The hop-by-hop id is the key used to match an answer to its request on a connection.
type Message struct {
	Header Header
	AVPs   []*avp.AVP
}

// New creates a message with an empty attribute list
func New(command CommandCode, application ApplicationID, flags uint8, hopByHop, endToEnd uint32) *Message {
	return &Message{
		Header: Header{
			Version:       Version,
			Flags:         flags,
			CommandCode:   command,
			ApplicationID: application,
			HopByHopID:    hopByHop,
			EndToEndID:    endToEnd,
		},
	}
}

// NewAnswer creates the answer skeleton for req: same command, application
// and identifiers, request bit cleared, proxiable bit kept
func NewAnswer(req *Message) *Message {
	return New(
		req.Header.CommandCode,
		req.Header.ApplicationID,
		req.Header.Flags&FlagProxiable,
		req.Header.HopByHopID,
		req.Header.EndToEndID,
	)
}

// Add appends attributes to the message
func (m *Message) Add(avps ...*avp.AVP) {
	m.AVPs = append(m.AVPs, avps...)
}

// FindAVP returns the first top level attribute with the given code
func (m *Message) FindAVP(code uint32) (*avp.AVP, bool) {
	for _, a := range m.AVPs {
		if a.Code == code {
			return a, true
		}
	}
	return nil, false
}

// FindAVPs returns all top level attributes with the given code
func (m *Message) FindAVPs(code uint32) []*avp.AVP {
	var out []*avp.AVP
	for _, a := range m.AVPs {
		if a.Code == code {
			out = append(out, a)
		}
	}
	return out
}

func (m *Message) IsRequest() bool              { return m.Header.Flags&FlagRequest != 0 }
func (m *Message) IsError() bool                { return m.Header.Flags&FlagError != 0 }
func (m *Message) HopByHopID() uint32           { return m.Header.HopByHopID }
func (m *Message) EndToEndID() uint32           { return m.Header.EndToEndID }
func (m *Message) CommandCode() CommandCode     { return m.Header.CommandCode }
func (m *Message) ApplicationID() ApplicationID { return m.Header.ApplicationID }

// Len returns the encoded size of the message computed from its attributes
func (m *Message) Len() uint32 {
	length := uint32(HeaderLen)
	for _, a := range m.AVPs {
		if a != nil {
			length += a.PaddedLen()
		}
	}
	return length
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// MarshalBinary encodes the message into one contiguous buffer.
// The length field is computed from the attributes, Header.Length is ignored.
func (m *Message) MarshalBinary() ([]byte, error) {
	if uint32(m.Header.CommandCode) > maxLen {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCommand, m.Header.CommandCode)
	}

	length := m.Len()
	if length > maxLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}

	buf := bytes.NewBuffer(make([]byte, HeaderLen, length))
	for i, a := range m.AVPs {
		if a == nil {
			return nil, fmt.Errorf("%w: index %d", ErrNilAVP, i)
		}
		if err := a.Encode(buf); err != nil {
			return nil, err
		}
	}

	result := buf.Bytes()
	if uint32(len(result)) != length {
		return nil, fmt.Errorf("%w: computed %d, encoded %d", ErrLengthMismatch, length, len(result))
	}
	encodeHeader(result, m.Header, length)
	return result, nil
}

// Encode writes the message to w with a single Write call
func (m *Message) Encode(w io.Writer) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// Decode decodes one complete message. The declared length must equal len(data)
// and the attributes must consume the body exactly.
func Decode(data []byte, dict *avp.Dictionary) (*Message, error) {
	if len(data) < HeaderLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidLength, len(data))
	}

	h := decodeHeader(data)
	if int(h.Length) != len(data) {
		return nil, fmt.Errorf("%w: header declares %d bytes, got %d", ErrInvalidLength, h.Length, len(data))
	}

	avps, err := avp.DecodeAVPs(data[HeaderLen:], dict)
	if err != nil {
		return nil, err
	}
	return &Message{Header: h, AVPs: avps}, nil
}

// --------------------------------------------------------------------------
// Display
// --------------------------------------------------------------------------

func (m *Message) String() string {
	return m.Format(nil)
}

// Format renders the header and all attributes using the names of dict
func (m *Message) Format(dict *avp.Dictionary) string {
	var sb strings.Builder

	flags := ""
	for _, f := range []struct {
		bit  uint8
		name string
	}{{FlagRequest, "R"}, {FlagProxiable, "P"}, {FlagError, "E"}, {FlagRetransmit, "T"}} {
		if m.Header.Flags&f.bit != 0 {
			flags += f.name
		}
	}

	sb.WriteString(fmt.Sprintf("%s(%d) flags=%s app=%d hop-by-hop=0x%08x end-to-end=0x%08x length=%d\n",
		m.Header.CommandCode.Name(m.IsRequest()),
		uint32(m.Header.CommandCode),
		flags,
		uint32(m.Header.ApplicationID),
		m.Header.HopByHopID,
		m.Header.EndToEndID,
		m.Len(),
	))
	for _, a := range m.AVPs {
		sb.WriteString("  ")
		sb.WriteString(strings.ReplaceAll(a.Format(dict), "\n", "\n  "))
		sb.WriteString("\n")
	}
	return sb.String()
}
