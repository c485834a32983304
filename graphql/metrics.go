package graphql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics holds Prometheus metrics for the GraphQL endpoint.
type serverMetrics struct {
	requestsTotal   prometheus.Counter
	requestsFailed  prometheus.Counter
	depthRejections prometheus.Counter
	duration        prometheus.Histogram
}

// newServerMetrics creates and registers endpoint metrics with the provided
// registerer. A nil registerer disables metrics.
func newServerMetrics(reg prometheus.Registerer) (*serverMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &serverMetrics{
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usergraph",
			Subsystem: "graphql",
			Name:      "requests_total",
			Help:      "Total number of GraphQL requests",
		}),
		requestsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usergraph",
			Subsystem: "graphql",
			Name:      "requests_failed_total",
			Help:      "Total number of GraphQL requests that returned errors",
		}),
		depthRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "usergraph",
			Subsystem: "graphql",
			Name:      "depth_rejections_total",
			Help:      "Total number of documents rejected by the depth guard",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "usergraph",
			Subsystem: "graphql",
			Name:      "request_duration_seconds",
			Help:      "GraphQL request duration",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.requestsTotal, m.requestsFailed, m.depthRejections, m.duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// record tracks one finished request.
func (m *serverMetrics) record(resp *Response, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.Inc()
	if len(resp.Errors) > 0 {
		m.requestsFailed.Inc()
	}
	if sentinel, ok := resp.Data.(string); ok && sentinel == DepthLimitSentinel {
		m.depthRejections.Inc()
	}
	m.duration.Observe(elapsed.Seconds())
}
