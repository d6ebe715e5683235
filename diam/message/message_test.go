package message

import (
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestNewAnswer(t *testing.T) {
	req := New(CommandCreditControl, ApplicationCreditControl, FlagRequest|FlagProxiable, 7, 8)
	ans := NewAnswer(req)

	assert.False(t, ans.IsRequest())
	assert.Equal(t, FlagProxiable, ans.Header.Flags)
	assert.Equal(t, req.CommandCode(), ans.CommandCode())
	assert.Equal(t, req.ApplicationID(), ans.ApplicationID())
	assert.Equal(t, req.HopByHopID(), ans.HopByHopID())
	assert.Equal(t, req.EndToEndID(), ans.EndToEndID())
}

func TestResultCode(t *testing.T) {
	m := New(CommandCreditControl, ApplicationCreditControl, 0, 1, 1)
	_, ok := ResultCode(m)
	assert.False(t, ok)

	m.Add(avp.New(avp.CodeResultCode, 0, avp.Unsigned32(ResultSuccess), true))
	code, ok := ResultCode(m)
	require.True(t, ok)
	assert.Equal(t, ResultSuccess, code)
	assert.True(t, IsSuccess(code))

	m = New(CommandCreditControl, ApplicationCreditControl, 0, 1, 1)
	m.Add(avp.New(avp.CodeExperimentalResult, 0, avp.Grouped{
		avp.New(avp.CodeVendorID, 0, avp.Unsigned32(10415), true),
		avp.New(avp.CodeExperimentalResultCode, 0, avp.Unsigned32(5030), true),
	}, true))
	code, ok = ResultCode(m)
	require.True(t, ok)
	assert.Equal(t, uint32(5030), code)
	assert.False(t, IsSuccess(code))
}

func TestFormat(t *testing.T) {
	out := testRequest().String()
	assert.True(t, strings.HasPrefix(out, "CER(257) flags=R"))
	assert.Contains(t, out, "Origin-Host")
	assert.Contains(t, out, "127.0.0.1")
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator()
	first := g.NextHopByHop()
	assert.Equal(t, first+1, g.NextHopByHop())

	e := g.NextEndToEnd()
	assert.Equal(t, e+1, g.NextEndToEnd())
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID("client.example.com")
	b := NewSessionID("client.example.com")

	assert.NotEqual(t, a, b)
	parts := strings.Split(a, ";")
	require.Len(t, parts, 4)
	assert.Equal(t, "client.example.com", parts[0])
	assert.Len(t, parts[3], 36)
}
