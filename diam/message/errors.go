package message

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
)

var (
	// ErrMessageTooLarge is returned when a peer declares a message above MaxMessageSize
	// or when a message to be sent does not fit the 24 bit length field
	ErrMessageTooLarge = errors.New("message: message too large")

	ErrInvalidLength  = fmt.Errorf("%w: invalid message length", avp.ErrDecode)
	ErrLengthMismatch = errors.New("message: encoded length does not match computed length")
	ErrInvalidCommand = errors.New("message: command code does not fit 24 bits")
	ErrNilAVP         = errors.New("message: nil attribute")
)
