package client

import (
	"bufio"
	"context"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/message"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"sync"
)

const readBufferSize = 64 * 1024

// result is what a pending slot receives: an answer or the error that ended the request
type result struct {
	msg *message.Message
	err error
}

// connection is one established stream. A client creates a new connection per
// Connect, requests stay bound to the connection they were created on.
//
// Two resources are locked independently: the pending table (xsync.MapOf) and
// the writer (writeMu, held only for a single Write). stateMu orders table
// inserts against the fault sweep: inserts hold the read lock while checking the
// state, the sweep starts after the state left Running under the write lock, so
// no insert can slip in behind it.
type connection struct {
	conn     net.Conn
	endpoint string
	dict     *avp.Dictionary
	sink     EventSink

	pending *xsync.MapOf[uint32, chan result]
	writeMu sync.Mutex

	stateMu sync.RWMutex
	state   State
	err     error

	done       chan struct{}
	doneOnce   sync.Once
	readerDone chan struct{}
}

func newConnection(conn net.Conn, endpoint string, dict *avp.Dictionary, sink EventSink) *connection {
	return &connection{
		conn:       conn,
		endpoint:   endpoint,
		dict:       dict,
		sink:       sink,
		pending:    xsync.NewMapOf[uint32, chan result](),
		state:      StateConnectedIdle,
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}
}

// start moves the connection to Running and spawns the reader. EventConnected
// is emitted before the reader can report anything.
func (c *connection) start() {
	c.stateMu.Lock()
	running := c.state == StateConnectedIdle
	if running {
		c.state = StateConnectedRunning
	}
	c.stateMu.Unlock()

	if running {
		c.emit(Event{Type: EventConnected})
	}
	go c.readLoop()
}

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

func (c *connection) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *connection) Err() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.err
}

// terminalErr is the error reported to requests that outlived the connection
func (c *connection) terminalErr() error {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if c.err != nil && c.err != ErrClosed {
		return &FaultError{Endpoint: c.endpoint, Cause: c.err}
	}
	return ErrClosed
}

// usableLocked maps the state to the error returned to callers. Requires stateMu.
func (c *connection) usableLocked() error {
	switch c.state {
	case StateConnectedRunning:
		return nil
	case StateFaulted:
		return &FaultError{Endpoint: c.endpoint, Cause: c.err}
	default:
		return ErrNotConnected
	}
}

// --------------------------------------------------------------------------
// Pending table
// --------------------------------------------------------------------------

// register inserts a fresh slot for the hop-by-hop id. An existing entry with
// the same id is replaced.
func (c *connection) register(id uint32) (chan result, error) {
	slot := make(chan result, 1)

	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	if err := c.usableLocked(); err != nil {
		return nil, err
	}
	c.pending.Store(id, slot)
	return slot, nil
}

// remove deletes the entry for id if it still holds slot
func (c *connection) remove(id uint32, slot chan result) bool {
	removed := false
	c.pending.Compute(id, func(current chan result, loaded bool) (chan result, bool) {
		if !loaded || current != slot {
			return current, !loaded
		}
		removed = true
		return current, true
	})
	return removed
}

// fail removes the entry for id if it still holds slot and completes it with err
func (c *connection) fail(id uint32, slot chan result, err error) {
	if c.remove(id, slot) {
		slot <- result{err: err}
	}
}

// sweep completes every pending request with err and returns their number
func (c *connection) sweep(err error) int {
	n := 0
	c.pending.Range(func(id uint32, _ chan result) bool {
		// the reader or a canceller may race for the same entry
		if slot, ok := c.pending.LoadAndDelete(id); ok {
			slot <- result{err: err}
			n++
		}
		return true
	})
	return n
}

// --------------------------------------------------------------------------
// Reader and writer
// --------------------------------------------------------------------------

// readLoop reads messages until the stream fails and hands every answer to the
// request waiting for its hop-by-hop id
func (c *connection) readLoop() {
	defer close(c.readerDone)

	r := bufio.NewReaderSize(c.conn, readBufferSize)
	for {
		msg, err := message.ReadMessage(r, c.dict)
		if err != nil {
			c.fault(err)
			return
		}

		if msg.IsRequest() {
			c.emit(Event{Type: EventPeerRequest, HopByHopID: msg.HopByHopID(), CommandCode: msg.CommandCode()})
			continue
		}

		slot, ok := c.pending.LoadAndDelete(msg.HopByHopID())
		if !ok {
			c.emit(Event{
				Type:        EventUnmatchedAnswer,
				HopByHopID:  msg.HopByHopID(),
				CommandCode: msg.CommandCode(),
				Err:         ErrNoPendingRequest,
			})
			continue
		}

		slot <- result{msg: msg}
		c.emit(Event{Type: EventAnswerDelivered, HopByHopID: msg.HopByHopID(), CommandCode: msg.CommandCode()})
	}
}

// write sends one encoded message. A ctx deadline becomes the write deadline.
// Any write error faults the connection since a partial write leaves the peer
// unable to find the next message boundary.
func (c *connection) write(ctx context.Context, b []byte) error {
	c.stateMu.RLock()
	err := c.usableLocked()
	c.stateMu.RUnlock()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_, err = c.conn.Write(b)
	c.writeMu.Unlock()

	if err != nil {
		werr := &TransportError{Op: "write", Endpoint: c.endpoint, Err: err}
		if c.fault(werr) {
			return &FaultError{Endpoint: c.endpoint, Cause: werr}
		}

		// closed or faulted concurrently
		c.stateMu.RLock()
		defer c.stateMu.RUnlock()
		if c.state == StateDisconnected {
			return ErrClosed
		}
		return &FaultError{Endpoint: c.endpoint, Cause: c.err}
	}
	return nil
}

// --------------------------------------------------------------------------
// Termination
// --------------------------------------------------------------------------

// fault moves a live connection to Faulted, closes the socket and fails every
// pending request. Returns false if the connection was not live anymore.
func (c *connection) fault(cause error) bool {
	c.stateMu.Lock()
	if c.state != StateConnectedIdle && c.state != StateConnectedRunning {
		c.stateMu.Unlock()
		return false
	}
	c.state = StateFaulted
	c.err = cause
	c.stateMu.Unlock()

	_ = c.conn.Close()
	n := c.sweep(&FaultError{Endpoint: c.endpoint, Cause: cause})
	c.emit(Event{Type: EventFaulted, Pending: n, Err: cause})
	c.doneOnce.Do(func() { close(c.done) })
	return true
}

// close shuts the connection down and fails every pending request with
// ErrClosed. It waits for the reader to exit.
func (c *connection) close() {
	c.stateMu.Lock()
	previous := c.state
	c.state = StateDisconnected
	if previous != StateFaulted {
		c.err = ErrClosed
	}
	c.stateMu.Unlock()

	if previous == StateDisconnected {
		return
	}

	_ = c.conn.Close()
	<-c.readerDone

	n := c.sweep(ErrClosed)
	c.emit(Event{Type: EventClosed, Pending: n})
	c.doneOnce.Do(func() { close(c.done) })
}

func (c *connection) emit(e Event) {
	e.Endpoint = c.endpoint
	if e.Type != EventFaulted && e.Type != EventClosed {
		e.Pending = c.pending.Size()
	}
	c.sink.HandleEvent(e)
}
