package observability

import (
	"github.com/ValentinKolb/dDiam/diam/client"
	"github.com/rs/zerolog"
	"io"
	"time"
)

// NewZerolog creates a zerolog logger for the CLI. Format "json" writes one JSON
// object per line, anything else a human readable console format.
func NewZerolog(app, format string, w io.Writer) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(w).With().Timestamp().Str("app", app).Logger()
}

// ZerologSink writes client events as structured log entries
type ZerologSink struct {
	log zerolog.Logger
}

// NewZerologSink creates a sink writing to log
func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

func (s *ZerologSink) HandleEvent(e client.Event) {
	var event *zerolog.Event
	switch e.Type {
	case client.EventFaulted:
		event = s.log.Error()
	case client.EventUnmatchedAnswer, client.EventPeerRequest:
		event = s.log.Warn()
	case client.EventConnected, client.EventClosed:
		event = s.log.Info()
	default:
		event = s.log.Debug()
	}

	event = event.
		Str("endpoint", e.Endpoint).
		Int("pending", e.Pending)
	if e.HopByHopID != 0 || e.CommandCode != 0 {
		event = event.
			Uint32("hop_by_hop", e.HopByHopID).
			Uint32("command", uint32(e.CommandCode))
	}
	if e.Err != nil {
		event = event.Err(e.Err)
	}
	event.Msg(e.Type.String())
}
