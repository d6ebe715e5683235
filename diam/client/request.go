package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/message"
	"sync/atomic"
)

// Request is the handle of one registered request. Its slot is completed
// exactly once: by the matching answer, by a fault or close sweep, or by a
// failed encode. Cancel and an ended Response context remove the slot instead.
type Request struct {
	conn  *connection
	msg   *message.Message
	id    uint32
	slot  chan result
	taken atomic.Bool

	cancelled atomic.Bool
}

// Message returns the request message. It must not be modified after Send.
func (r *Request) Message() *message.Message {
	return r.msg
}

// Send encodes the message and writes it to the connection. Send is not
// idempotent: calling it twice sends the message twice. An encode error
// completes the request with that error; a write error faults the connection.
func (r *Request) Send(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRequestCancelled, err)
	}

	b, err := r.msg.MarshalBinary()
	if err != nil {
		r.conn.fail(r.id, r.slot, err)
		return err
	}

	if err := r.conn.write(ctx, b); err != nil {
		return err
	}
	r.conn.emit(Event{Type: EventRequestSent, HopByHopID: r.id, CommandCode: r.msg.CommandCode()})
	return nil
}

// Response waits for the answer. It may be called once; later calls return
// ErrResponseTaken. When ctx ends first the request is removed from the pending
// table and the returned error wraps ErrRequestCancelled and ctx.Err().
//
// A request that no longer owns its table entry (cancelled or replaced by a
// request with the same hop-by-hop id) still fails once the connection faults
// or closes. A cancelled request without a delivered answer returns
// ErrRequestCancelled right away.
func (r *Request) Response(ctx context.Context) (*message.Message, error) {
	if !r.taken.CompareAndSwap(false, true) {
		return nil, ErrResponseTaken
	}

	if r.cancelled.Load() {
		select {
		case res := <-r.slot:
			return res.msg, res.err
		default:
			return nil, ErrRequestCancelled
		}
	}

	select {
	case res := <-r.slot:
		return res.msg, res.err
	case <-r.conn.done:
		// the sweep completes slots before done is closed
		select {
		case res := <-r.slot:
			return res.msg, res.err
		default:
			return nil, r.conn.terminalErr()
		}
	case <-ctx.Done():
		r.Cancel()
		return nil, fmt.Errorf("%w: %w", ErrRequestCancelled, ctx.Err())
	}
}

// Cancel drops the request from the pending table. A late answer is then
// reported as unmatched. Calling Cancel more than once is harmless.
func (r *Request) Cancel() {
	r.cancelled.Store(true)
	if r.conn.remove(r.id, r.slot) {
		r.conn.emit(Event{Type: EventRequestCancelled, HopByHopID: r.id, CommandCode: r.msg.CommandCode()})
	}
}
