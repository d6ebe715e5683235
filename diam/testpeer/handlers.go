package testpeer

import (
	"github.com/ValentinKolb/dDiam/diam/avp"
	"github.com/ValentinKolb/dDiam/diam/message"
	"net/netip"
	"sync"
)

// Identity of the simulated peer announced in answers
const (
	OriginHost  = "testpeer.localdomain"
	OriginRealm = "localdomain"
	ProductName = "dDiam test peer"
)

// Answer builds the answer to req carrying resultCode and the peer identity.
// Session-Id is echoed, capability exchange answers also carry Host-IP-Address,
// Vendor-Id and Product-Name.
func Answer(req *message.Message, resultCode uint32) *message.Message {
	ans := message.NewAnswer(req)
	if sid, ok := req.FindAVP(avp.CodeSessionID); ok {
		ans.Add(avp.New(avp.CodeSessionID, 0, sid.Value, true))
	}
	ans.Add(
		avp.New(avp.CodeResultCode, 0, avp.Unsigned32(resultCode), true),
		avp.New(avp.CodeOriginHost, 0, avp.DiameterIdentity(OriginHost), true),
		avp.New(avp.CodeOriginRealm, 0, avp.DiameterIdentity(OriginRealm), true),
	)

	switch req.CommandCode() {
	case message.CommandCapabilitiesExchange:
		ans.Add(
			avp.New(avp.CodeHostIPAddress, 0, avp.NewAddress(netip.MustParseAddr("127.0.0.1")), true),
			avp.New(avp.CodeVendorID, 0, avp.Unsigned32(0), true),
			avp.New(avp.CodeProductName, 0, avp.UTF8String(ProductName), false),
		)
	case message.CommandCreditControl:
		for _, code := range []uint32{avp.CodeAuthApplicationID, avp.CodeCCRequestType, avp.CodeCCRequestNumber} {
			if a, ok := req.FindAVP(code); ok {
				ans.Add(avp.New(code, 0, a.Value, true))
			}
		}
	}
	return ans
}

// AnswerAll answers every request immediately with resultCode
func AnswerAll(resultCode uint32) HandlerFunc {
	return func(s *Session, req *message.Message) {
		if err := s.Send(Answer(req, resultCode)); err != nil {
			Logger.Errorf("Failed to write answer: %v", err)
		}
	}
}

// Collect buffers requests until n arrived and then passes them to fn.
// The buffer starts over afterwards.
func Collect(n int, fn func(s *Session, reqs []*message.Message)) HandlerFunc {
	var mu sync.Mutex
	var reqs []*message.Message
	return func(s *Session, req *message.Message) {
		mu.Lock()
		reqs = append(reqs, req)
		if len(reqs) < n {
			mu.Unlock()
			return
		}
		batch := reqs
		reqs = nil
		mu.Unlock()

		fn(s, batch)
	}
}

// Reverse answers every batch of n requests in reverse order of arrival
func Reverse(n int) HandlerFunc {
	return Collect(n, func(s *Session, reqs []*message.Message) {
		for i := len(reqs) - 1; i >= 0; i-- {
			if err := s.Send(Answer(reqs[i], message.ResultSuccess)); err != nil {
				Logger.Errorf("Failed to write answer: %v", err)
				return
			}
		}
	})
}

// Silent never answers
func Silent() HandlerFunc {
	return func(*Session, *message.Message) {}
}
