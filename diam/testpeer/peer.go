package testpeer

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/common"
	"github.com/ValentinKolb/dDiam/diam/message"
	"github.com/ValentinKolb/dDiam/diam/transport"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net"
	"sync"
)

var Logger = logger.GetLogger(common.LoggerTestPeer)

// HandlerFunc processes one request received on a session. Answers (or any other
// bytes) are written through the session, so a handler may answer later, out of
// order, several times or never.
type HandlerFunc func(s *Session, req *message.Message)

// Peer is a simulated Diameter peer: it accepts connections, reads messages and
// passes every request to its handler
type Peer struct {
	connector transport.IServerConnector
	handler   HandlerFunc
	dict      *avp.Dictionary
	workers   int

	listener net.Listener

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// Option configures a Peer
type Option func(*Peer)

// WithWorkers lets up to n handler calls run concurrently per session.
// The default of 0 calls the handler inline, in the order requests arrive.
func WithWorkers(n int) Option {
	return func(p *Peer) { p.workers = n }
}

// WithDictionary sets the dictionary used to decode requests
func WithDictionary(dict *avp.Dictionary) Option {
	return func(p *Peer) { p.dict = dict }
}

// New creates a peer that listens through connector and answers with handler
func New(connector transport.IServerConnector, handler HandlerFunc, opts ...Option) *Peer {
	p := &Peer{
		connector: connector,
		handler:   handler,
		dict:      avp.DefaultDictionary(),
		sessions:  make(map[*Session]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Start listens on endpoint and accepts connections in the background
func (p *Peer) Start(endpoint string) error {
	listener, err := p.connector.Listen(endpoint)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	p.listener = listener

	Logger.Infof("Starting %s test peer on %s", p.connector.GetName(), listener.Addr())

	p.wg.Add(1)
	go p.acceptLoop()
	return nil
}

// Addr returns the address the peer listens on
func (p *Peer) Addr() string {
	return p.listener.Addr().String()
}

// Close stops accepting, closes all sessions and waits for their goroutines
func (p *Peer) Close() error {
	p.mu.Lock()
	p.closed = true
	sessions := make([]*Session, 0, len(p.sessions))
	for s := range p.sessions {
		sessions = append(sessions, s)
	}
	p.mu.Unlock()

	var err error
	if p.listener != nil {
		err = p.listener.Close()
	}
	for _, s := range sessions {
		_ = s.Close()
	}
	p.wg.Wait()
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (p *Peer) acceptLoop() {
	defer p.wg.Done()
	for {
		conn, err := p.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		s := &Session{conn: conn}
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			_ = conn.Close()
			return
		}
		p.sessions[s] = struct{}{}
		p.wg.Add(1)
		p.mu.Unlock()

		go p.handleSession(s)
	}
}

// handleSession reads requests of one connection until it fails
func (p *Peer) handleSession(s *Session) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		delete(p.sessions, s)
		p.mu.Unlock()
		_ = s.Close()
	}()

	// counting semaphore limiting concurrent handler calls
	var semaphore chan struct{}
	if p.workers > 0 {
		semaphore = make(chan struct{}, p.workers)
	}
	var workers sync.WaitGroup
	defer workers.Wait()

	for {
		msg, err := message.ReadMessage(s.conn, p.dict)
		if errors.Is(err, io.EOF) {
			Logger.Infof("Connection closed by client")
			return
		}
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				Logger.Errorf("Error reading request: %v", err)
			}
			return
		}
		Logger.Debugf("Received %s hop-by-hop=0x%08x", msg.CommandCode().Name(msg.IsRequest()), msg.HopByHopID())

		if semaphore == nil {
			p.handler(s, msg)
			continue
		}

		semaphore <- struct{}{}
		workers.Add(1)
		go func() {
			defer func() {
				<-semaphore
				workers.Done()
			}()
			p.handler(s, msg)
		}()
	}
}

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// Session is one accepted connection. Writes are serialized.
type Session struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// Send writes a message
func (s *Session) Send(m *message.Message) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return s.WriteRaw(b)
}

// WriteRaw writes arbitrary bytes, e.g. a corrupt frame
func (s *Session) WriteRaw(b []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.Write(b)
	return err
}

// Close hangs up the connection
func (s *Session) Close() error {
	return s.conn.Close()
}
