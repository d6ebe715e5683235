package observability

import "github.com/ValentinKolb/dDiam/diam/client"

type multiSink []client.EventSink

func (m multiSink) HandleEvent(e client.Event) {
	for _, s := range m {
		s.HandleEvent(e)
	}
}

// Multi fans every event out to all sinks in order. Nil sinks are skipped.
func Multi(sinks ...client.EventSink) client.EventSink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
