package client

import (
	"context"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/common"
	"github.com/ValentinKolb/dDiam/diam/message"
	"github.com/ValentinKolb/dDiam/diam/transport"
	"sync"
	"time"
)

// closedCh is returned by Done when the client never connected
var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Client multiplexes concurrent requests over one Diameter connection.
// Answers are matched to requests by hop-by-hop id, so they may arrive in any
// order. The client does not retry, reconnect or time requests out; callers
// layer that on top with contexts.
type Client struct {
	connector transport.IClientConnector
	config    common.ClientConfig
	sink      EventSink
	dict      *avp.Dictionary

	mu         sync.RWMutex
	conn       *connection
	connecting bool
}

// Option configures a Client
type Option func(*Client)

// WithEventSink sets the receiver of connection events (default: NopSink)
func WithEventSink(sink EventSink) Option {
	return func(c *Client) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithDictionary sets the dictionary used to decode answers (default: avp.DefaultDictionary)
func WithDictionary(dict *avp.Dictionary) Option {
	return func(c *Client) {
		if dict != nil {
			c.dict = dict
		}
	}
}

// NewClient creates a disconnected client using the connector to dial
func NewClient(connector transport.IClientConnector, config common.ClientConfig, opts ...Option) *Client {
	c := &Client{
		connector: connector,
		config:    config,
		sink:      NopSink{},
		dict:      avp.DefaultDictionary(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --------------------------------------------------------------------------
// Connection lifecycle
// --------------------------------------------------------------------------

// Connect dials the endpoint, applies the socket settings of the configuration
// and starts the reader. An empty endpoint falls back to config.Endpoint.
// config.TimeoutSecond bounds the dial in addition to ctx.
//
// A client whose previous connection faulted or was closed may connect again;
// requests created on the old connection stay failed.
func (c *Client) Connect(ctx context.Context, endpoint string) error {
	if endpoint == "" {
		endpoint = c.config.Endpoint
	}

	c.mu.Lock()
	if c.connecting || (c.conn != nil && c.conn.State() == StateConnectedRunning) {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.connecting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	if c.config.TimeoutSecond > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.config.TimeoutSecond)*time.Second)
		defer cancel()
	}

	netConn, err := c.connector.Dial(ctx, endpoint)
	if err != nil {
		return &TransportError{Op: "dial", Endpoint: endpoint, Err: err}
	}

	if err := c.connector.UpgradeConnection(netConn, c.config); err != nil {
		_ = netConn.Close()
		return &TransportError{Op: "upgrade", Endpoint: endpoint, Err: err}
	}

	conn := newConnection(netConn, endpoint, c.dict, c.sink)
	conn.start()

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// Close closes the connection. Requests still pending fail with ErrClosed.
// Closing a disconnected client is a no-op.
func (c *Client) Close() error {
	if conn := c.current(); conn != nil {
		conn.close()
	}
	return nil
}

// current returns the connection of the last successful Connect, or nil
func (c *Client) current() *connection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}

// --------------------------------------------------------------------------
// Requests
// --------------------------------------------------------------------------

// Request registers msg under its hop-by-hop id and returns the handle used to
// send it and wait for the answer. The caller owns id uniqueness: a request
// with the id of one still pending replaces it, and the replaced request never
// receives an answer.
func (c *Client) Request(msg *message.Message) (*Request, error) {
	if msg == nil {
		return nil, ErrNilMessage
	}

	conn := c.current()
	if conn == nil {
		return nil, ErrNotConnected
	}

	id := msg.HopByHopID()
	slot, err := conn.register(id)
	if err != nil {
		return nil, err
	}
	return &Request{conn: conn, msg: msg, id: id, slot: slot}, nil
}

// SendMessage sends msg and waits for its answer or the end of ctx
func (c *Client) SendMessage(ctx context.Context, msg *message.Message) (*message.Message, error) {
	req, err := c.Request(msg)
	if err != nil {
		return nil, err
	}
	if err := req.Send(ctx); err != nil {
		req.Cancel()
		return nil, err
	}
	return req.Response(ctx)
}

// --------------------------------------------------------------------------
// Introspection
// --------------------------------------------------------------------------

// State returns the state of the current connection
func (c *Client) State() State {
	if conn := c.current(); conn != nil {
		return conn.State()
	}
	return StateDisconnected
}

// Pending returns the number of requests waiting for an answer
func (c *Client) Pending() int {
	if conn := c.current(); conn != nil {
		return conn.pending.Size()
	}
	return 0
}

// Done returns a channel that is closed when the current connection faulted or
// was closed. For a client that never connected the channel is already closed.
func (c *Client) Done() <-chan struct{} {
	if conn := c.current(); conn != nil {
		return conn.done
	}
	return closedCh
}

// Err returns the fault cause of the current connection, ErrClosed after
// Close, or nil while it is running
func (c *Client) Err() error {
	if conn := c.current(); conn != nil {
		return conn.Err()
	}
	return nil
}

// Endpoint returns the endpoint of the current connection
func (c *Client) Endpoint() string {
	if conn := c.current(); conn != nil {
		return conn.endpoint
	}
	return ""
}
