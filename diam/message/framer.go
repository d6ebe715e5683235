package message

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"io"
)

// ReadMessage reads exactly one message from r.
//
// The first four bytes carry the version (ignored) and the 24 bit total length.
// Lengths above MaxMessageSize are rejected with ErrMessageTooLarge before any
// body buffer is allocated. I/O errors are returned as they are, so a clean
// close of the stream between two messages yields io.EOF.
func ReadMessage(r io.Reader, dict *avp.Dictionary) (*Message, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(prefix[:]) & maxLen
	if length > MaxMessageSize {
		return nil, fmt.Errorf("%w: peer declared %d bytes, limit is %d", ErrMessageTooLarge, length, MaxMessageSize)
	}
	if length < HeaderLen {
		return nil, fmt.Errorf("%w: peer declared %d bytes, header alone is %d", ErrInvalidLength, length, HeaderLen)
	}

	buf := make([]byte, length)
	copy(buf, prefix[:])
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	return Decode(buf, dict)
}

// WriteMessage encodes m into one buffer and writes it to w
func WriteMessage(w io.Writer, m *Message) error {
	return m.Encode(w)
}
