package client

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/common"
	"github.com/ValentinKolb/dDiam/diam/message"
	"github.com/ValentinKolb/dDiam/diam/testpeer"
	"github.com/ValentinKolb/dDiam/diam/transport/tcp"
	"github.com/ValentinKolb/dDiam/diam/transport/unix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// recorder is an EventSink that keeps every event
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) find(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == t {
			return e, true
		}
	}
	return Event{}, false
}

// ids returns the hop-by-hop ids of all events of type t in emit order
func (r *recorder) ids(t EventType) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint32
	for _, e := range r.events {
		if e.Type == t {
			ids = append(ids, e.HopByHopID)
		}
	}
	return ids
}

func (r *recorder) waitFor(t *testing.T, typ EventType) Event {
	t.Helper()
	var found Event
	require.Eventually(t, func() bool {
		e, ok := r.find(typ)
		found = e
		return ok
	}, 5*time.Second, 5*time.Millisecond, "event %s", typ)
	return found
}

func testConfig() common.ClientConfig {
	config := common.DefaultClientConfig()
	config.TimeoutSecond = 5
	return config
}

// connect starts a peer with handler and returns a client connected to it
func connect(t *testing.T, handler testpeer.HandlerFunc, opts ...testpeer.Option) (*Client, *recorder) {
	t.Helper()

	peer := testpeer.New(tcp.NewServerConnector(), handler, opts...)
	require.NoError(t, peer.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = peer.Close() })

	rec := &recorder{}
	c := NewClient(tcp.NewClientConnector(), testConfig(), WithEventSink(rec))
	require.NoError(t, c.Connect(context.Background(), peer.Addr()))
	t.Cleanup(func() { _ = c.Close() })
	return c, rec
}

func dwr(hopByHop uint32) *message.Message {
	m := message.New(message.CommandDeviceWatchdog, message.ApplicationCommon, message.FlagRequest, hopByHop, hopByHop+0x10000)
	m.Add(
		avp.New(avp.CodeOriginHost, 0, avp.DiameterIdentity("client.localdomain"), true),
		avp.New(avp.CodeOriginRealm, 0, avp.DiameterIdentity("localdomain"), true),
	)
	return m
}

func waitDone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("connection did not terminate")
	}
}

func ctxTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// --------------------------------------------------------------------------
// Connection lifecycle
// --------------------------------------------------------------------------

func TestConnectAndSendMessage(t *testing.T) {
	c, rec := connect(t, testpeer.AnswerAll(message.ResultSuccess))

	assert.Equal(t, StateConnectedRunning, c.State())
	assert.NotEmpty(t, c.Endpoint())
	assert.NoError(t, c.Err())
	rec.waitFor(t, EventConnected)

	ans, err := c.SendMessage(ctxTimeout(t), dwr(7))
	require.NoError(t, err)
	assert.False(t, ans.IsRequest())
	assert.Equal(t, uint32(7), ans.HopByHopID())
	assert.Equal(t, uint32(7+0x10000), ans.EndToEndID())
	assert.Equal(t, message.CommandDeviceWatchdog, ans.CommandCode())

	code, ok := message.ResultCode(ans)
	require.True(t, ok)
	assert.Equal(t, message.ResultSuccess, code)
	assert.Zero(t, c.Pending())

	rec.waitFor(t, EventRequestSent)
	rec.waitFor(t, EventAnswerDelivered)
}

func TestRequestBeforeConnect(t *testing.T) {
	c := NewClient(tcp.NewClientConnector(), testConfig())

	_, err := c.Request(dwr(1))
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = c.SendMessage(context.Background(), dwr(1))
	assert.ErrorIs(t, err, ErrNotConnected)

	assert.Equal(t, StateDisconnected, c.State())
	assert.Zero(t, c.Pending())
	assert.Empty(t, c.Endpoint())
	assert.NoError(t, c.Close())

	select {
	case <-c.Done():
	default:
		t.Fatal("Done of an unconnected client must be closed")
	}
}

func TestRequestNilMessage(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())
	_, err := c.Request(nil)
	assert.ErrorIs(t, err, ErrNilMessage)
}

func TestConnectTwice(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())
	err := c.Connect(context.Background(), c.Endpoint())
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestDialError(t *testing.T) {
	// find a free port and release it again
	peer := testpeer.New(tcp.NewServerConnector(), testpeer.Silent())
	require.NoError(t, peer.Start("127.0.0.1:0"))
	addr := peer.Addr()
	require.NoError(t, peer.Close())

	c := NewClient(tcp.NewClientConnector(), testConfig())
	err := c.Connect(context.Background(), addr)

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "dial", terr.Op)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConnectUsesConfiguredEndpoint(t *testing.T) {
	peer := testpeer.New(tcp.NewServerConnector(), testpeer.AnswerAll(message.ResultSuccess))
	require.NoError(t, peer.Start("127.0.0.1:0"))
	defer peer.Close()

	config := testConfig()
	config.Endpoint = peer.Addr()
	c := NewClient(tcp.NewClientConnector(), config)
	require.NoError(t, c.Connect(context.Background(), ""))
	defer c.Close()

	assert.Equal(t, peer.Addr(), c.Endpoint())
}

func TestUnixTransport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diameter.sock")
	peer := testpeer.New(unix.NewServerConnector(), testpeer.AnswerAll(message.ResultSuccess))
	require.NoError(t, peer.Start(path))
	defer peer.Close()

	c := NewClient(unix.NewClientConnector(), testConfig())
	require.NoError(t, c.Connect(context.Background(), path))
	defer c.Close()

	ans, err := c.SendMessage(ctxTimeout(t), dwr(99))
	require.NoError(t, err)
	assert.Equal(t, uint32(99), ans.HopByHopID())
}

// --------------------------------------------------------------------------
// Correlation
// --------------------------------------------------------------------------

func TestConcurrentRequestsReverseOrder(t *testing.T) {
	const n = 16
	arrived := make(chan []uint32, 1)
	c, rec := connect(t, testpeer.Collect(n, func(s *testpeer.Session, reqs []*message.Message) {
		ids := make([]uint32, len(reqs))
		for i, req := range reqs {
			ids[i] = req.HopByHopID()
		}
		arrived <- ids
		for i := len(reqs) - 1; i >= 0; i-- {
			_ = s.Send(testpeer.Answer(reqs[i], message.ResultSuccess))
		}
	}))

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			req, err := c.Request(dwr(id))
			if err != nil {
				errs <- err
				return
			}
			if err := req.Send(ctx); err != nil {
				errs <- err
				return
			}
			ans, err := req.Response(ctx)
			if err != nil {
				errs <- err
				return
			}
			if ans.HopByHopID() != id || ans.EndToEndID() != req.Message().EndToEndID() {
				errs <- fmt.Errorf("request %d got answer %d/%d", id, ans.HopByHopID(), ans.EndToEndID())
			}
		}(uint32(1000 + i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	var order []uint32
	select {
	case order = <-arrived:
	default:
		t.Fatal("peer did not see all requests")
	}
	reversed := make([]uint32, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	assert.Equal(t, reversed, rec.ids(EventAnswerDelivered))
	assert.Zero(t, c.Pending())
}

func TestConcurrentSenders(t *testing.T) {
	c, _ := connect(t, testpeer.AnswerAll(message.ResultSuccess), testpeer.WithWorkers(8))

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id uint32) {
			defer wg.Done()
			ans, err := c.SendMessage(context.Background(), dwr(id))
			if err != nil {
				errs <- err
				return
			}
			if ans.HopByHopID() != id {
				errs <- fmt.Errorf("request %d got answer %d", id, ans.HopByHopID())
			}
		}(uint32(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Zero(t, c.Pending())
}

func TestUnmatchedAnswerThenValid(t *testing.T) {
	handler := func(s *testpeer.Session, req *message.Message) {
		stray := testpeer.Answer(req, message.ResultSuccess)
		stray.Header.HopByHopID += 1000
		_ = s.Send(stray)
		_ = s.Send(testpeer.Answer(req, message.ResultSuccess))
	}
	c, rec := connect(t, handler)

	ans, err := c.SendMessage(ctxTimeout(t), dwr(5))
	require.NoError(t, err)
	assert.Equal(t, uint32(5), ans.HopByHopID())

	e := rec.waitFor(t, EventUnmatchedAnswer)
	assert.Equal(t, uint32(1005), e.HopByHopID)
	assert.ErrorIs(t, e.Err, ErrNoPendingRequest)
	assert.Equal(t, StateConnectedRunning, c.State())
}

func TestPeerRequestIsDropped(t *testing.T) {
	handler := func(s *testpeer.Session, req *message.Message) {
		_ = s.Send(message.New(message.CommandDeviceWatchdog, message.ApplicationCommon, message.FlagRequest, req.HopByHopID(), 1))
		_ = s.Send(testpeer.Answer(req, message.ResultSuccess))
	}
	c, rec := connect(t, handler)

	ans, err := c.SendMessage(ctxTimeout(t), dwr(8))
	require.NoError(t, err)
	assert.False(t, ans.IsRequest())
	rec.waitFor(t, EventPeerRequest)
}

func TestHopByHopCollisionReplaces(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	_, err := c.Request(dwr(3))
	require.NoError(t, err)
	second, err := c.Request(dwr(3))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Pending())

	second.Cancel()
	assert.Zero(t, c.Pending())
}

func TestStaleCancelKeepsReplacement(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	first, err := c.Request(dwr(3))
	require.NoError(t, err)
	_, err = c.Request(dwr(3))
	require.NoError(t, err)

	// the replaced request no longer owns the entry
	first.Cancel()
	assert.Equal(t, 1, c.Pending())
}

// --------------------------------------------------------------------------
// Response handle
// --------------------------------------------------------------------------

func TestResponseTakenOnce(t *testing.T) {
	c, _ := connect(t, testpeer.AnswerAll(message.ResultSuccess))

	req, err := c.Request(dwr(11))
	require.NoError(t, err)
	require.NoError(t, req.Send(ctxTimeout(t)))

	_, err = req.Response(ctxTimeout(t))
	require.NoError(t, err)

	_, err = req.Response(ctxTimeout(t))
	assert.ErrorIs(t, err, ErrResponseTaken)
}

func TestResponseContextCancel(t *testing.T) {
	c, rec := connect(t, testpeer.Silent())

	req, err := c.Request(dwr(12))
	require.NoError(t, err)
	require.NoError(t, req.Send(ctxTimeout(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = req.Response(ctx)
	assert.ErrorIs(t, err, ErrRequestCancelled)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, c.Pending())

	rec.waitFor(t, EventRequestCancelled)
	assert.Equal(t, StateConnectedRunning, c.State())
}

func TestSendCancelledContext(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SendMessage(ctx, dwr(13))
	assert.ErrorIs(t, err, ErrRequestCancelled)
	assert.Zero(t, c.Pending())
	assert.Equal(t, StateConnectedRunning, c.State())
}

func TestCancelThenLateAnswer(t *testing.T) {
	type received struct {
		s   *testpeer.Session
		req *message.Message
	}
	got := make(chan received, 1)
	c, rec := connect(t, func(s *testpeer.Session, req *message.Message) {
		got <- received{s, req}
	})

	req, err := c.Request(dwr(21))
	require.NoError(t, err)
	require.NoError(t, req.Send(ctxTimeout(t)))

	r := <-got
	req.Cancel()
	req.Cancel()
	assert.Zero(t, c.Pending())

	require.NoError(t, r.s.Send(testpeer.Answer(r.req, message.ResultSuccess)))
	e := rec.waitFor(t, EventUnmatchedAnswer)
	assert.Equal(t, uint32(21), e.HopByHopID)
	assert.Equal(t, StateConnectedRunning, c.State())
}

func TestEncodeErrorCompletesRequest(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	m := dwr(31)
	m.Add(avp.New(avp.CodeHostIPAddress, 0, avp.NewE164Address("4930123456"), true))

	req, err := c.Request(m)
	require.NoError(t, err)
	assert.ErrorIs(t, req.Send(ctxTimeout(t)), avp.ErrUnsupportedValue)

	_, err = req.Response(ctxTimeout(t))
	assert.ErrorIs(t, err, avp.ErrUnsupportedValue)
	assert.Zero(t, c.Pending())
	assert.Equal(t, StateConnectedRunning, c.State())
}

// --------------------------------------------------------------------------
// Faults and close
// --------------------------------------------------------------------------

func TestOversizedAnswerFaults(t *testing.T) {
	handler := func(s *testpeer.Session, req *message.Message) {
		if req.HopByHopID() != 2 {
			return
		}
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], 2<<20)
		prefix[0] = message.Version
		_ = s.WriteRaw(prefix[:])
	}
	c, rec := connect(t, handler)

	first, err := c.Request(dwr(1))
	require.NoError(t, err)
	require.NoError(t, first.Send(ctxTimeout(t)))

	second, err := c.Request(dwr(2))
	require.NoError(t, err)
	require.NoError(t, second.Send(ctxTimeout(t)))

	waitDone(t, c)
	assert.Equal(t, StateFaulted, c.State())
	assert.ErrorIs(t, c.Err(), message.ErrMessageTooLarge)
	assert.Zero(t, c.Pending())

	for _, req := range []*Request{first, second} {
		_, err := req.Response(ctxTimeout(t))
		assert.ErrorIs(t, err, ErrConnectionFaulted)
		assert.ErrorIs(t, err, message.ErrMessageTooLarge)

		var fault *FaultError
		require.ErrorAs(t, err, &fault)
		assert.Equal(t, c.Endpoint(), fault.Endpoint)
	}

	e := rec.waitFor(t, EventFaulted)
	assert.Equal(t, 2, e.Pending)

	// nothing can be sent on a faulted connection
	_, err = c.Request(dwr(3))
	assert.ErrorIs(t, err, ErrConnectionFaulted)
	assert.ErrorIs(t, first.Send(ctxTimeout(t)), ErrConnectionFaulted)
}

func TestPeerHangupFailsPending(t *testing.T) {
	c, _ := connect(t, testpeer.Collect(3, func(s *testpeer.Session, _ []*message.Message) {
		_ = s.Close()
	}))

	reqs := make([]*Request, 3)
	for i := range reqs {
		req, err := c.Request(dwr(uint32(40 + i)))
		require.NoError(t, err)
		require.NoError(t, req.Send(ctxTimeout(t)))
		reqs[i] = req
	}

	waitDone(t, c)
	for _, req := range reqs {
		_, err := req.Response(ctxTimeout(t))
		assert.ErrorIs(t, err, ErrConnectionFaulted)
		assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF), "cause: %v", err)
	}
	assert.Equal(t, StateFaulted, c.State())
}

func TestCloseFailsPending(t *testing.T) {
	c, rec := connect(t, testpeer.Silent())

	req, err := c.Request(dwr(51))
	require.NoError(t, err)
	require.NoError(t, req.Send(ctxTimeout(t)))

	require.NoError(t, c.Close())
	waitDone(t, c)

	_, err = req.Response(ctxTimeout(t))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, StateDisconnected, c.State())
	assert.ErrorIs(t, c.Err(), ErrClosed)

	e := rec.waitFor(t, EventClosed)
	assert.Equal(t, 1, e.Pending)

	_, err = c.Request(dwr(52))
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, req.Send(ctxTimeout(t)), ErrNotConnected)

	// a second close is a no-op
	assert.NoError(t, c.Close())
}

func TestCancelledRequestFailsAfterFault(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	req, err := c.Request(dwr(71))
	require.NoError(t, err)
	require.NoError(t, req.Send(ctxTimeout(t)))
	req.Cancel()

	cause := errors.New("stream broken")
	c.current().fault(cause)
	waitDone(t, c)

	start := time.Now()
	_, err = req.Response(ctxTimeout(t))
	assert.ErrorIs(t, err, ErrRequestCancelled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestReplacedRequestFailsAfterFault(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	first, err := c.Request(dwr(9))
	require.NoError(t, err)
	second, err := c.Request(dwr(9))
	require.NoError(t, err)

	cause := errors.New("stream broken")
	c.current().fault(cause)
	waitDone(t, c)

	for _, req := range []*Request{first, second} {
		start := time.Now()
		_, err := req.Response(ctxTimeout(t))
		assert.ErrorIs(t, err, ErrConnectionFaulted)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrRequestCancelled)
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestReplacedRequestFailsAfterClose(t *testing.T) {
	c, _ := connect(t, testpeer.Silent())

	first, err := c.Request(dwr(10))
	require.NoError(t, err)
	_, err = c.Request(dwr(10))
	require.NoError(t, err)

	require.NoError(t, c.Close())

	_, err = first.Response(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConnectedEmittedBeforeFault(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	go func() {
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], 2<<20)
		prefix[0] = message.Version
		_, _ = remote.Write(prefix[:])
	}()

	rec := &recorder{}
	conn := newConnection(local, "pipe", avp.DefaultDictionary(), rec)
	conn.start()

	select {
	case <-conn.done:
	case <-time.After(5 * time.Second):
		t.Fatal("connection did not fault")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 2)
	assert.Equal(t, EventConnected, rec.events[0].Type)
	assert.Equal(t, EventFaulted, rec.events[1].Type)
	assert.ErrorIs(t, rec.events[1].Err, message.ErrMessageTooLarge)
}

func TestReconnectAfterClose(t *testing.T) {
	c, _ := connect(t, testpeer.AnswerAll(message.ResultSuccess))
	endpoint := c.Endpoint()
	require.NoError(t, c.Close())

	require.NoError(t, c.Connect(context.Background(), endpoint))
	assert.Equal(t, StateConnectedRunning, c.State())

	ans, err := c.SendMessage(ctxTimeout(t), dwr(61))
	require.NoError(t, err)
	assert.Equal(t, uint32(61), ans.HopByHopID())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Disconnected", StateDisconnected.String())
	assert.Equal(t, "Connected-Idle", StateConnectedIdle.String())
	assert.Equal(t, "Connected-Running", StateConnectedRunning.String())
	assert.Equal(t, "Faulted", StateFaulted.String())
	assert.Equal(t, "unmatched_answer", EventUnmatchedAnswer.String())
}
