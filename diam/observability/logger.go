package observability

import (
	"github.com/ValentinKolb/dDiam/diam/client"
	"github.com/lni/dragonboat/v4/logger"
)

// LoggerSink renders client events through a dragonboat logger
type LoggerSink struct {
	log logger.ILogger
}

// NewLoggerSink creates a sink writing to log, e.g. logger.GetLogger(common.LoggerClient)
func NewLoggerSink(log logger.ILogger) *LoggerSink {
	return &LoggerSink{log: log}
}

func (s *LoggerSink) HandleEvent(e client.Event) {
	switch e.Type {
	case client.EventConnected:
		s.log.Infof("Connected to %s", e.Endpoint)
	case client.EventRequestSent:
		s.log.Debugf("Sent %s hop-by-hop=0x%08x (%d pending)", e.CommandCode.Name(true), e.HopByHopID, e.Pending)
	case client.EventAnswerDelivered:
		s.log.Debugf("Delivered %s hop-by-hop=0x%08x (%d pending)", e.CommandCode.Name(false), e.HopByHopID, e.Pending)
	case client.EventUnmatchedAnswer:
		s.log.Warningf("Dropped %s from %s with unknown hop-by-hop=0x%08x", e.CommandCode.Name(false), e.Endpoint, e.HopByHopID)
	case client.EventPeerRequest:
		s.log.Warningf("Dropped %s sent by peer %s", e.CommandCode.Name(true), e.Endpoint)
	case client.EventRequestCancelled:
		s.log.Debugf("Cancelled request hop-by-hop=0x%08x", e.HopByHopID)
	case client.EventFaulted:
		s.log.Errorf("Connection to %s faulted, failed %d pending requests: %v", e.Endpoint, e.Pending, e.Err)
	case client.EventClosed:
		s.log.Infof("Closed connection to %s, failed %d pending requests", e.Endpoint, e.Pending)
	}
}
