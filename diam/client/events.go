package client

import (
	"github.com/ValentinKolb/dDiam/diam/message"
)

// EventType classifies an Event
type EventType int

const (
	// EventConnected is emitted once the reader runs
	EventConnected EventType = iota
	// EventRequestSent is emitted after a request was written
	EventRequestSent
	// EventAnswerDelivered is emitted after an answer was handed to its request
	EventAnswerDelivered
	// EventUnmatchedAnswer is emitted for an answer without pending request; the answer is dropped
	EventUnmatchedAnswer
	// EventPeerRequest is emitted for a request sent by the peer; it is dropped
	EventPeerRequest
	// EventRequestCancelled is emitted when a request left the table without an answer
	EventRequestCancelled
	// EventFaulted is emitted once when the connection faults
	EventFaulted
	// EventClosed is emitted once when the connection is closed
	EventClosed
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventRequestSent:
		return "request_sent"
	case EventAnswerDelivered:
		return "answer_delivered"
	case EventUnmatchedAnswer:
		return "unmatched_answer"
	case EventPeerRequest:
		return "peer_request"
	case EventRequestCancelled:
		return "request_cancelled"
	case EventFaulted:
		return "faulted"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event describes something that happened on a connection.
// HopByHopID and CommandCode are set for message related events; Pending is the
// size of the pending table after the event (for EventFaulted and EventClosed it
// is the number of requests that were failed).
type Event struct {
	Type        EventType
	Endpoint    string
	HopByHopID  uint32
	CommandCode message.CommandCode
	Pending     int
	Err         error
}

// EventSink receives the events of a client. HandleEvent is called synchronously,
// partly from the reader goroutine, so it must not block.
type EventSink interface {
	HandleEvent(e Event)
}

// EventSinkFunc adapts a function to the EventSink interface
type EventSinkFunc func(e Event)

func (f EventSinkFunc) HandleEvent(e Event) { f(e) }

// NopSink discards all events
type NopSink struct{}

func (NopSink) HandleEvent(Event) {}
