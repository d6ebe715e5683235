package testpeer

import (
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/message"
	"github.com/ValentinKolb/dDiam/diam/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"testing"
)

func startPeer(t *testing.T, handler HandlerFunc, opts ...Option) (*Peer, net.Conn) {
	t.Helper()
	peer := New(tcp.NewServerConnector(), handler, opts...)
	require.NoError(t, peer.Start("127.0.0.1:0"))
	t.Cleanup(func() { _ = peer.Close() })

	conn, err := net.Dial("tcp", peer.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return peer, conn
}

// TestAnswerAll checks that a capability exchange is answered with the peer identity
func TestAnswerAll(t *testing.T) {
	_, conn := startPeer(t, AnswerAll(message.ResultSuccess))

	req := message.New(message.CommandCapabilitiesExchange, message.ApplicationCommon, message.FlagRequest, 42, 43)
	require.NoError(t, message.WriteMessage(conn, req))

	ans, err := message.ReadMessage(conn, nil)
	require.NoError(t, err)
	assert.False(t, ans.IsRequest())
	assert.Equal(t, uint32(42), ans.HopByHopID())
	assert.Equal(t, uint32(43), ans.EndToEndID())

	code, ok := message.ResultCode(ans)
	require.True(t, ok)
	assert.Equal(t, message.ResultSuccess, code)

	host, ok := ans.FindAVP(avp.CodeOriginHost)
	require.True(t, ok)
	assert.Equal(t, OriginHost, host.Value.String())
	_, ok = ans.FindAVP(avp.CodeHostIPAddress)
	assert.True(t, ok)
}

// TestReverse checks that a batch is answered last-in first-out
func TestReverse(t *testing.T) {
	_, conn := startPeer(t, Reverse(3))

	for i := uint32(1); i <= 3; i++ {
		req := message.New(message.CommandDeviceWatchdog, message.ApplicationCommon, message.FlagRequest, i, i)
		require.NoError(t, message.WriteMessage(conn, req))
	}

	for want := uint32(3); want >= 1; want-- {
		ans, err := message.ReadMessage(conn, nil)
		require.NoError(t, err)
		assert.Equal(t, want, ans.HopByHopID())
	}
}

// TestWorkersAnswerAll checks the concurrent handler mode
func TestWorkersAnswerAll(t *testing.T) {
	_, conn := startPeer(t, AnswerAll(message.ResultSuccess), WithWorkers(4))

	const n = 20
	for i := uint32(0); i < n; i++ {
		req := message.New(message.CommandDeviceWatchdog, message.ApplicationCommon, message.FlagRequest, i, i)
		require.NoError(t, message.WriteMessage(conn, req))
	}

	seen := make(map[uint32]bool)
	for i := 0; i < n; i++ {
		ans, err := message.ReadMessage(conn, nil)
		require.NoError(t, err)
		seen[ans.HopByHopID()] = true
	}
	assert.Len(t, seen, n)
}

// TestCloseHangsUp checks that closing the peer ends open sessions
func TestCloseHangsUp(t *testing.T) {
	peer, conn := startPeer(t, Silent())

	// make sure the session is registered before closing
	req := message.New(message.CommandDeviceWatchdog, message.ApplicationCommon, message.FlagRequest, 1, 1)
	require.NoError(t, message.WriteMessage(conn, req))

	require.NoError(t, peer.Close())
	_, err := message.ReadMessage(conn, nil)
	assert.Error(t, err)
}
