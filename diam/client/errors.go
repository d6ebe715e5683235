package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a request is created or sent while the
	// client has no running connection
	ErrNotConnected = errors.New("client: not connected")

	// ErrAlreadyConnected is returned by Connect while a connection is running
	// or being established
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrConnectionFaulted is wrapped by every FaultError
	ErrConnectionFaulted = errors.New("client: connection faulted")

	// ErrClosed is delivered to requests still pending when Close is called
	ErrClosed = errors.New("client: connection closed")

	// ErrResponseTaken is returned by the second call to Request.Response
	ErrResponseTaken = errors.New("client: response already consumed")

	// ErrRequestCancelled is returned by Request.Response when its context ends
	// before the answer arrives
	ErrRequestCancelled = errors.New("client: request cancelled")

	// ErrNoPendingRequest is attached to the event emitted for an answer whose
	// hop-by-hop id matches no pending request
	ErrNoPendingRequest = errors.New("client: no pending request for answer")

	// ErrNilMessage is returned when a request is created without a message
	ErrNilMessage = errors.New("client: nil message")
)

// FaultError reports that the connection failed while reading or writing.
// It matches ErrConnectionFaulted with errors.Is and exposes the cause.
type FaultError struct {
	Endpoint string
	Cause    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("client: connection to %s faulted: %v", e.Endpoint, e.Cause)
}

func (e *FaultError) Unwrap() []error {
	return []error{ErrConnectionFaulted, e.Cause}
}

// TransportError reports a failed socket operation ("dial", "upgrade", "write")
type TransportError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("client: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
