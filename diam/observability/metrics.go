package observability

import (
	"fmt"
	"github.com/ValentinKolb/dDiam/diam/client"
	vm "github.com/VictoriaMetrics/metrics"
	"sync/atomic"
)

// MetricsSink counts client events in a VictoriaMetrics set:
//
//	ddiam_client_events_total{type="...",endpoint="..."}
//	ddiam_client_pending_requests
type MetricsSink struct {
	set     *vm.Set
	pending atomic.Int64
}

// NewMetricsSink registers the metrics of the sink in set
func NewMetricsSink(set *vm.Set) *MetricsSink {
	s := &MetricsSink{set: set}
	set.NewGauge("ddiam_client_pending_requests", func() float64 {
		return float64(s.pending.Load())
	})
	return s
}

func (s *MetricsSink) HandleEvent(e client.Event) {
	s.set.GetOrCreateCounter(fmt.Sprintf(`ddiam_client_events_total{type=%q,endpoint=%q}`, e.Type.String(), e.Endpoint)).Inc()

	switch e.Type {
	case client.EventFaulted, client.EventClosed:
		s.pending.Store(0)
	default:
		s.pending.Store(int64(e.Pending))
	}
}

// Count returns the number of events of one type seen for endpoint
func (s *MetricsSink) Count(t client.EventType, endpoint string) uint64 {
	return s.set.GetOrCreateCounter(fmt.Sprintf(`ddiam_client_events_total{type=%q,endpoint=%q}`, t.String(), endpoint)).Get()
}

// Pending returns the last observed size of the pending table
func (s *MetricsSink) Pending() int64 {
	return s.pending.Load()
}
